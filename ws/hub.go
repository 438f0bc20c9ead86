package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"memory-match/auth"
	"memory-match/game"
	"memory-match/storage"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins for development; restrict in production.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// RoundRecorder persists finished rounds.
type RoundRecorder interface {
	RecordRound(ctx context.Context, rec storage.RoundRecord) error
}

// Hub maintains the set of active clients. Each client owns one game.Session.
type Hub struct {
	Clients    map[*Client]bool
	Register   chan *Client
	Unregister chan *Client

	Options   game.Options
	Scheduler game.Scheduler
	// Names returns the name store for a host session id. Optional.
	Names     func(sessionID string) game.NameStore
	Auth      *auth.Validator
	Telemetry game.TelemetrySink
	History   RoundRecorder

	done chan struct{}
}

// NewHub creates a new Hub that deals boards with opts.
func NewHub(opts game.Options) *Hub {
	return &Hub{
		Clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Options:    opts,
		Scheduler:  game.NewTimerScheduler(),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. Should be run as a goroutine.
// When ctx is cancelled (e.g. on server shutdown), Run closes every session and returns.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			slog.Info("shutdown signal received, stopping", "tag", "ws")
			for client := range h.Clients {
				h.drop(client)
			}
			return
		case client := <-h.Register:
			h.Clients[client] = true
			slog.Info("client connected", "tag", "ws", "session", client.SessionID, "clients", len(h.Clients))

		case client := <-h.Unregister:
			if _, ok := h.Clients[client]; ok {
				h.drop(client)
				slog.Info("client disconnected", "tag", "ws", "session", client.SessionID, "clients", len(h.Clients))
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	delete(h.Clients, client)
	client.session.Close()
	close(client.Send)
}

// ServeWS handles WebSocket upgrade requests and creates a new Client.
// The optional ?session= query reuses a host session id; anything that is not
// a UUID gets a fresh one.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = uuid.NewString()
	}

	var names game.NameStore
	if h.Names != nil {
		names = h.Names(sessionID)
	}
	sess, err := game.NewSession(sessionID, h.Options, h.Scheduler, names)
	if err != nil {
		slog.Error("cannot create session", "tag", "ws", "err", err)
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade error", "tag", "ws", "err", err)
		return
	}

	client := &Client{
		Hub:       h,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		SessionID: sessionID,
		session:   sess,
	}
	sess.Telemetry = h.Telemetry
	sess.OnChange = client.sendState
	sess.OnRoundEnd = client.recordRound

	select {
	case h.Register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	client.send(HelloMsg{Type: "hello", SessionID: sessionID})
	go sess.Run(context.Background())
	go client.WritePump()
	go client.ReadPump()
}
