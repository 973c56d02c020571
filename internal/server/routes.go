package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/mux"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := mux.NewRouter()

	// Apply CORS middleware
	r.Use(s.corsMiddleware)

	r.HandleFunc("/", s.HealthHandler).Methods(http.MethodGet)
	r.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.HealthHandler).Methods(http.MethodGet)

	api.HandleFunc("/auth/session", s.CreateSession).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/auth/session", s.GetSession).Methods(http.MethodGet)
	api.HandleFunc("/auth/session", s.DeleteSession).Methods(http.MethodDelete)
	api.HandleFunc("/auth/validate", s.ValidateUsername).Methods(http.MethodPost, http.MethodOptions)

	// Static room paths have to be registered before the {roomId} routes.
	api.HandleFunc("/rooms/create", s.CreateRoom).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rooms/list", s.ListRooms).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomId}", s.GetRoom).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{roomId}/join", s.JoinRoom).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rooms/{roomId}/leave", s.LeaveRoom).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/rooms/{roomId}/status", s.RoomStatus).Methods(http.MethodGet)
	api.HandleFunc("/game/stats", s.GameStats).Methods(http.MethodGet)

	r.HandleFunc("/ws", s.ServeWS)

	return r
}

// CORS middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, PATCH")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Session-ID")

		// If it's a websocket upgrade, skip further CORS checks
		if strings.ToLower(r.Header.Get("Upgrade")) == "websocket" {
			next.ServeHTTP(w, r)
			return
		}

		// Handle preflight OPTIONS requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) originAllowed(origin string) bool {
	if slices.Contains(s.cfg.CORSOrigins, "*") {
		return true
	}
	return slices.Contains(s.cfg.CORSOrigins, origin)
}

func (s *Server) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"rooms":   s.reg.RoomCount(),
		"players": s.reg.PlayerCount(),
	})
}

// ServeWS upgrades the connection. A session carried in the cookie, header
// or query string binds the socket immediately; otherwise the client must
// send an authenticate event.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r, s.sessionID(r))
}
