package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"memory-match/auth"
	"memory-match/storage"
)

type fakeStore struct {
	entries []storage.LeaderboardEntry
	limit   int
	offset  int
}

func (f *fakeStore) ListByHost(context.Context, string, int) ([]storage.RoundSummary, error) {
	return []storage.RoundSummary{}, nil
}

func (f *fakeStore) ListLeaderboard(_ context.Context, limit, offset int) ([]storage.LeaderboardEntry, error) {
	f.limit, f.offset = limit, offset
	return f.entries, nil
}

func (f *fakeStore) GetStats(_ context.Context, name string) (*storage.LeaderboardEntry, error) {
	for i := range f.entries {
		if f.entries[i].DisplayName == name {
			return &f.entries[i], nil
		}
	}
	return nil, nil
}

func (f *fakeStore) RecordRound(context.Context, storage.RoundRecord) error { return nil }

func (f *fakeStore) Close() {}

func newTestHandler(store storage.HistoryStore) *Handler {
	v, _ := auth.NewValidator("")
	return NewHandler(v, store)
}

func TestHistoryRequiresAuth(t *testing.T) {
	h := newTestHandler(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/history", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	rec := httptest.NewRecorder()
	h.History(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestLeaderboardWithoutStore(t *testing.T) {
	h := newTestHandler(nil)

	rec := httptest.NewRecorder()
	h.Leaderboard(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard", nil), nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp LeaderboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Entries == nil || len(resp.Entries) != 0 {
		t.Errorf("expected an empty list, got %v", resp.Entries)
	}
}

func TestLeaderboardPaging(t *testing.T) {
	store := &fakeStore{entries: []storage.LeaderboardEntry{
		{DisplayName: "Alice", Wins: 3},
		{DisplayName: "Bob", Wins: 1, Losses: 2},
	}}
	h := newTestHandler(store)

	rec := httptest.NewRecorder()
	h.Leaderboard(rec, httptest.NewRequest(http.MethodGet, "/api/leaderboard?limit=5&offset=-3&name=Bob", nil), nil)

	if store.limit != 5 || store.offset != 0 {
		t.Errorf("expected limit=5 offset=0, got limit=%d offset=%d", store.limit, store.offset)
	}
	var resp LeaderboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(resp.Entries))
	}
	if resp.Player == nil || resp.Player.DisplayName != "Bob" {
		t.Errorf("expected Bob's entry, got %+v", resp.Player)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestHandler(nil)
	rec := httptest.NewRecorder()
	h.Leaderboard(rec, httptest.NewRequest(http.MethodOptions, "/api/leaderboard", nil), nil)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestQR(t *testing.T) {
	h := newTestHandler(nil)

	rec := httptest.NewRecorder()
	h.QR(rec, httptest.NewRequest(http.MethodGet, "/qr", nil), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("expected image/png, got %q", ct)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")) {
		t.Error("body is not a PNG")
	}
	if rec.Header().Get("X-Session-Id") == "" {
		t.Error("expected a minted session id")
	}

	rec = httptest.NewRecorder()
	h.QR(rec, httptest.NewRequest(http.MethodGet, "/qr?session=nope", nil), nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid session: expected 400, got %d", rec.Code)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestHandler(nil).Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil), nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "Ok\n" {
		t.Errorf("unexpected health response %d %q", rec.Code, rec.Body.String())
	}
}
