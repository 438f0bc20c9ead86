package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"

	"memory-match/auth"
	"memory-match/storage"
)

const qrSize = 320

// Handler holds dependencies for API handlers.
type Handler struct {
	Auth         *auth.Validator
	HistoryStore storage.HistoryStore
}

// NewHandler creates a new API handler with the given dependencies.
// historyStore may be nil, in which case list endpoints return empty results.
func NewHandler(validator *auth.Validator, historyStore storage.HistoryStore) *Handler {
	return &Handler{
		Auth:         validator,
		HistoryStore: historyStore,
	}
}

// CORS sets CORS headers on the response. Call before writing body.
func CORS(w http.ResponseWriter, r *http.Request) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return true
	}
	return false
}

// Preflight answers OPTIONS requests for the API routes.
func (h *Handler) Preflight(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	CORS(w, r)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encode response", "tag", "api", "err", err)
	}
}

// History returns the rounds hosted by the authenticated user.
func (h *Handler) History(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if CORS(w, r) {
		return
	}

	userID, err := h.Auth.UserID(auth.BearerToken(r))
	if err != nil {
		http.Error(w, "authorization required", http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	list := []storage.RoundSummary{}
	if h.HistoryStore != nil {
		list, err = h.HistoryStore.ListByHost(r.Context(), userID, limit)
		if err != nil {
			slog.Error("ListByHost failed", "tag", "api", "err", err)
			http.Error(w, "failed to load history", http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, list)
}

// LeaderboardResponse is the JSON structure for /api/leaderboard.
type LeaderboardResponse struct {
	Entries []storage.LeaderboardEntry `json:"entries"`
	// Player is set when the request names a player with ?name=.
	Player *storage.LeaderboardEntry `json:"player,omitempty"`
}

// Leaderboard returns display names ranked by wins.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if CORS(w, r) {
		return
	}

	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = 20
	}
	offset, _ := strconv.Atoi(q.Get("offset"))
	if offset < 0 {
		offset = 0
	}

	resp := LeaderboardResponse{Entries: []storage.LeaderboardEntry{}}
	if h.HistoryStore != nil {
		entries, err := h.HistoryStore.ListLeaderboard(r.Context(), limit, offset)
		if err != nil {
			slog.Error("ListLeaderboard failed", "tag", "api", "err", err)
			http.Error(w, "failed to load leaderboard", http.StatusInternalServerError)
			return
		}
		resp.Entries = entries
		if name := q.Get("name"); name != "" {
			if resp.Player, err = h.HistoryStore.GetStats(r.Context(), name); err != nil {
				slog.Warn("GetStats failed", "tag", "api", "name", name, "err", err)
			}
		}
	}
	writeJSON(w, resp)
}

// Health reports that the server is up.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("Ok\n"))
}

// QR returns a PNG QR code of the websocket URL for ?session=, so another
// device can reopen the same host session. A new session id is minted when
// none is given.
func (h *Handler) QR(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	session := r.URL.Query().Get("session")
	if session == "" {
		session = uuid.NewString()
	} else if _, err := uuid.Parse(session); err != nil {
		http.Error(w, "invalid session id", http.StatusBadRequest)
		return
	}

	scheme := "ws"
	if r.TLS != nil {
		scheme = "wss"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto == "https" {
		scheme = "wss"
	}
	url := scheme + "://" + r.Host + "/ws?session=" + session

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Session-Id", session)
	_, _ = w.Write(png)
}
