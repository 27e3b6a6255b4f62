// Package api exposes the development server's HTTP surface.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/scene-hunter/scenehunter/internal/devserver/auth"
	"github.com/scene-hunter/scenehunter/internal/devserver/room"
	"github.com/scene-hunter/scenehunter/internal/devserver/sse"
)

// RouterConfig holds the services the router dispatches to
type RouterConfig struct {
	Logger      *slog.Logger
	AuthService *auth.Service
	RoomService *room.Service
	HubManager  *sse.HubManager
}

// NewRouter creates the API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	h := &handlers{
		auth:  cfg.AuthService,
		rooms: cfg.RoomService,
		hubs:  cfg.HubManager,
	}

	r.Use(recoveryMiddleware(cfg.Logger))
	r.Use(loggingMiddleware(cfg.Logger))

	// Token issuance is the only unauthenticated endpoint
	r.HandleFunc("/token", h.issueToken).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	authed := r.NewRoute().Subrouter()
	authed.Use(authMiddleware(cfg.AuthService))

	authed.HandleFunc("/user", h.getUser).Methods(http.MethodGet)

	authed.HandleFunc("/room/create", h.createRoom).Methods(http.MethodPost)
	authed.HandleFunc("/room/join", h.joinRoom).Methods(http.MethodPost)
	authed.HandleFunc("/room/users", h.roomUsers).Methods(http.MethodGet)
	authed.HandleFunc("/room/username", h.renameUser).Methods(http.MethodPut)
	authed.HandleFunc("/room/exit", h.exitRoom).Methods(http.MethodDelete)

	authed.HandleFunc("/game/start", h.startGame).Methods(http.MethodPut)
	authed.HandleFunc("/game/upload", h.uploadPhoto).Methods(http.MethodPost)
	authed.HandleFunc("/game/description", h.description).Methods(http.MethodGet)
	authed.HandleFunc("/game/score", h.scores).Methods(http.MethodGet)

	authed.HandleFunc("/notification", h.notifications).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
