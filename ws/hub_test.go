package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"memory-match/game"
	"memory-match/names"
	"memory-match/storage"
)

type fakeRecorder struct {
	mu   sync.Mutex
	recs []storage.RoundRecord
	got  chan struct{}
}

func (f *fakeRecorder) RecordRound(_ context.Context, rec storage.RoundRecord) error {
	f.mu.Lock()
	f.recs = append(f.recs, rec)
	f.mu.Unlock()
	f.got <- struct{}{}
	return nil
}

type inbound struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Message   string          `json:"message"`
	Phase     string          `json:"phase"`
	Winner    string          `json:"winner"`
	Suggested [2]string       `json:"suggested"`
	Cards     []game.CardView `json:"cards"`
}

func newTestServer(t *testing.T, history RoundRecorder) (*httptest.Server, *names.Book) {
	t.Helper()
	hub := NewHub(game.Options{
		PairCount:     1,
		Symbols:       []string{"A"},
		RevealDelay:   20 * time.Millisecond,
		GameOverDelay: 20 * time.Millisecond,
		MaxNameLength: 16,
	})
	book := names.NewBook()
	hub.Names = func(id string) game.NameStore { return book.Scope(id) }
	hub.History = history

	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, book
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, pred func(inbound) bool) inbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if pred(msg) {
			return msg
		}
	}
}

func write(t *testing.T, conn *websocket.Conn, v any) {
	t.Helper()
	if err := conn.WriteJSON(v); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func isType(typ string) func(inbound) bool {
	return func(m inbound) bool { return m.Type == typ }
}

func isPhase(phase string) func(inbound) bool {
	return func(m inbound) bool { return m.Type == "session_state" && m.Phase == phase }
}

func TestHelloComesFirst(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	const id = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"

	conn := dial(t, srv, "?session="+id)
	var first inbound
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatal(err)
	}
	if first.Type != "hello" || first.SessionID != id {
		t.Errorf("expected hello with session %s, got %+v", id, first)
	}
	state := readUntil(t, conn, isType("session_state"))
	if state.Phase != "collecting_first_name" {
		t.Errorf("expected collecting_first_name, got %q", state.Phase)
	}
}

func TestInvalidSessionIDIsReplaced(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	conn := dial(t, srv, "?session=not-a-uuid")
	hello := readUntil(t, conn, isType("hello"))
	if hello.SessionID == "" || hello.SessionID == "not-a-uuid" {
		t.Errorf("expected a fresh session id, got %q", hello.SessionID)
	}
}

func TestMalformedMessages(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	conn := dial(t, srv, "")
	readUntil(t, conn, isType("session_state"))

	tests := []struct {
		send string
		want string
	}{
		{`not json`, "Invalid message format."},
		{`{"type":"dance"}`, "Unknown message type: dance"},
		{`{"type":"select_first_player","player":"player3"}`, "Player must be player1 or player2."},
		{`{"type":"auth","token":"x"}`, "Server auth not configured."},
	}
	for _, test := range tests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(test.send)); err != nil {
			t.Fatal(err)
		}
		msg := readUntil(t, conn, isType("error"))
		if msg.Message != test.want {
			t.Errorf("%s: expected %q, got %q", test.send, test.want, msg.Message)
		}
	}
}

func TestBlankNameIsIgnored(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	conn := dial(t, srv, "")
	readUntil(t, conn, isType("session_state"))

	write(t, conn, SubmitNameMsg{Type: "submit_name", Name: "   "})
	write(t, conn, FlipCardMsg{Type: "flip_card", ID: 0})
	write(t, conn, map[string]string{"type": "dance"})

	// Errors are sent from the read loop in order, so an error for the blank
	// name would arrive before the one for the unknown type.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		var msg inbound
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read: %v", err)
		}
		if msg.Type == "session_state" && msg.Phase != "collecting_first_name" {
			t.Errorf("blank name moved the session to %q", msg.Phase)
		}
		if msg.Type == "error" {
			if msg.Message != "Unknown message type: dance" {
				t.Errorf("blank name produced error %q", msg.Message)
			}
			break
		}
	}

	write(t, conn, SubmitNameMsg{Type: "submit_name", Name: "Alice"})
	readUntil(t, conn, isPhase("collecting_second_name"))
}

func TestPlaysRoundAndRemembersNames(t *testing.T) {
	rec := &fakeRecorder{got: make(chan struct{}, 1)}
	srv, book := newTestServer(t, rec)

	conn := dial(t, srv, "")
	hello := readUntil(t, conn, isType("hello"))

	write(t, conn, SubmitNameMsg{Type: "submit_name", Name: "Alice"})
	readUntil(t, conn, isPhase("collecting_second_name"))
	write(t, conn, SubmitNameMsg{Type: "submit_name", Name: "Bob"})
	readUntil(t, conn, isPhase("selecting_first_player"))
	write(t, conn, SelectFirstPlayerMsg{Type: "select_first_player", Player: "player1"})
	playing := readUntil(t, conn, isPhase("playing"))
	for _, c := range playing.Cards {
		if c.Value != "" {
			t.Errorf("face-down card %d leaked its value", c.ID)
		}
	}

	write(t, conn, FlipCardMsg{Type: "flip_card", ID: 0})
	write(t, conn, FlipCardMsg{Type: "flip_card", ID: 1})
	over := readUntil(t, conn, isPhase("game_over"))
	if over.Winner != "player1" {
		t.Errorf("expected player1 to win, got %q", over.Winner)
	}

	select {
	case <-rec.got:
	case <-time.After(2 * time.Second):
		t.Fatal("round was not recorded")
	}
	rec.mu.Lock()
	r := rec.recs[0]
	rec.mu.Unlock()
	if r.SessionID != hello.SessionID || r.Result.Names != [2]string{"Alice", "Bob"} || r.PairCount != 1 {
		t.Errorf("unexpected record %+v", r)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		v, _ := book.Scope(hello.SessionID).Get("player2")
		if v == "Bob" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected Bob remembered for player2, got %q", v)
		}
		time.Sleep(5 * time.Millisecond)
	}

	again := dial(t, srv, "?session="+hello.SessionID)
	state := readUntil(t, again, isType("session_state"))
	if state.Suggested != [2]string{"Alice", "Bob"} {
		t.Errorf("expected suggested names on reconnect, got %v", state.Suggested)
	}
}
