package main

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"memory-match/api"
	"memory-match/ws"
)

func newRouter(h *api.Handler, hub *ws.Hub, metricsHandler http.Handler) *httprouter.Router {
	mux := httprouter.New()

	mux.PanicHandler = func(w http.ResponseWriter, r *http.Request, i any) {
		slog.Error("handler panic", "tag", "api", "path", r.URL.Path, "panic", i)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "An error has occurred. Please try again.\n")
	}

	mux.GET("/healthz", h.Health)
	mux.GET("/qr", h.QR)

	mux.GET("/api/history", h.History)
	mux.OPTIONS("/api/history", h.Preflight)
	mux.GET("/api/leaderboard", h.Leaderboard)
	mux.OPTIONS("/api/leaderboard", h.Preflight)

	mux.Handler(http.MethodGet, "/metrics", metricsHandler)
	mux.HandlerFunc(http.MethodGet, "/ws", hub.ServeWS)

	return mux
}
