package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"memory-match/game"
	"memory-match/storage"
	"memory-match/wsutil"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096

	recordTimeout = 5 * time.Second
)

// Client is a middleman between the websocket connection and its game session.
type Client struct {
	Hub       *Hub
	Conn      *websocket.Conn
	Send      chan []byte
	SessionID string

	session *game.Session

	mu     sync.Mutex
	userID string
}

// UserID returns the authenticated host id, or "" before a successful auth message.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// ReadPump pumps messages from the websocket connection to the session.
// It runs in its own goroutine per connection.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.Hub.Unregister <- c:
		case <-c.Hub.done:
		}
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Warn("websocket read error", "tag", "ws", "session", c.SessionID, "err", err)
			}
			break
		}

		c.handleMessage(message)
	}
}

// WritePump pumps messages from the send channel to the websocket connection.
// It runs in its own goroutine per connection.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(data []byte) {
	var envelope InboundEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		c.sendError("Invalid message format.")
		return
	}

	switch envelope.Type {
	case "auth":
		c.handleAuth(envelope.Raw)
	case "submit_name":
		c.handleSubmitName(envelope.Raw)
	case "select_first_player":
		c.handleSelectFirstPlayer(envelope.Raw)
	case "flip_card":
		c.handleFlipCard(envelope.Raw)
	case "reset":
		c.session.Reset()
	default:
		c.sendError("Unknown message type: " + envelope.Type)
	}
}

func (c *Client) handleAuth(raw json.RawMessage) {
	var msg AuthMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid auth message.")
		return
	}
	if !c.Hub.Auth.Enabled() {
		c.sendError("Server auth not configured.")
		return
	}
	userID, err := c.Hub.Auth.UserID(msg.Token)
	if err != nil {
		slog.Debug("auth rejected", "tag", "ws", "session", c.SessionID, "err", err)
		c.sendError("Invalid or expired token.")
		return
	}

	c.mu.Lock()
	c.userID = userID
	c.mu.Unlock()
	c.send(AuthOKMsg{Type: "auth_ok", UserID: userID})
}

func (c *Client) handleSubmitName(raw json.RawMessage) {
	var msg SubmitNameMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid submit_name message.")
		return
	}
	// Blank names are ignored by the session and leave the phase unchanged.
	c.session.SubmitName(msg.Name)
}

func (c *Client) handleSelectFirstPlayer(raw json.RawMessage) {
	var msg SelectFirstPlayerMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid select_first_player message.")
		return
	}
	tag, ok := game.ParsePlayerTag(msg.Player)
	if !ok {
		c.sendError("Player must be player1 or player2.")
		return
	}
	c.session.SelectFirstPlayer(tag)
}

func (c *Client) handleFlipCard(raw json.RawMessage) {
	var msg FlipCardMsg
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.sendError("Invalid flip_card message.")
		return
	}
	c.session.FlipCard(msg.ID)
}

// sendState runs on the session goroutine after every change.
func (c *Client) sendState(st game.SessionState) {
	c.send(game.BuildView(st))
}

// recordRound runs on the session goroutine; the write happens in the background.
func (c *Client) recordRound(result game.RoundResult, d time.Duration) {
	if c.Hub.History == nil {
		return
	}
	rec := storage.RoundRecord{
		HostUserID: c.UserID(),
		SessionID:  c.SessionID,
		Result:     result,
		PairCount:  c.Hub.Options.PairCount,
		Duration:   d,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := c.Hub.History.RecordRound(ctx, rec); err != nil {
			slog.Error("record round failed", "tag", "ws", "session", c.SessionID, "err", err)
		}
	}()
}

func (c *Client) send(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshal outbound message", "tag", "ws", "err", err)
		return
	}
	if !wsutil.SafeSend(c.Send, data) {
		slog.Debug("dropped outbound message", "tag", "ws", "session", c.SessionID)
	}
}

func (c *Client) sendError(message string) {
	c.send(ErrorMsg{Type: "error", Message: message})
}
