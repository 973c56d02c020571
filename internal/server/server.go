package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/config"
	"github.com/skribly/skribly-backend/internal/game"
	"github.com/skribly/skribly-backend/internal/registry"
	"github.com/skribly/skribly-backend/internal/words"
	"github.com/skribly/skribly-backend/internal/ws"
)

const sessionCookie = "skribly_session_id"

type Server struct {
	cfg    config.Config
	reg    *registry.Registry
	words  *words.Service
	hub    *ws.Hub
	engine *game.Engine
}

func New(cfg config.Config, reg *registry.Registry, w *words.Service, hub *ws.Hub, engine *game.Engine) *http.Server {
	s := &Server{
		cfg:    cfg,
		reg:    reg,
		words:  w,
		hub:    hub,
		engine: engine,
	}

	return &http.Server{
		Addr:         cfg.Addr(),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// writeJSON sends data with "success": true merged in. Every handler
// responds through this or writeError so clients always get the same
// envelope.
func writeJSON(w http.ResponseWriter, status int, data map[string]any) {
	body := map[string]any{"success": true}
	for k, v := range data {
		body[k] = v
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[writeJSON] error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, format string, args ...any) {
	writeErrorCode(w, status, "", format, args...)
}

// writeErrorCode attaches a machine-usable code alongside the human
// message, for failures clients branch on (ROOM_FULL, GAME_IN_PROGRESS).
func writeErrorCode(w http.ResponseWriter, status int, code, format string, args ...any) {
	body := map[string]any{
		"success": false,
		"error":   fmt.Sprintf(format, args...),
	}
	if code != "" {
		body["code"] = code
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[writeError] error encoding response: %v", err)
	}
}

// sessionID pulls the caller's session from the cookie, the X-Session-ID
// header, or the session_id query parameter, in that order.
func (s *Server) sessionID(r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("X-Session-ID"); h != "" {
		return h
	}
	return r.URL.Query().Get("session_id")
}

// currentUser resolves the caller to a registered user, or writes a 401.
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) (internal.User, bool) {
	sid := s.sessionID(r)
	if sid == "" {
		writeError(w, http.StatusUnauthorized, "no session")
		return internal.User{}, false
	}
	user, ok := s.reg.GetUser(sid)
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid session")
		return internal.User{}, false
	}
	return user, true
}

func setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int((7 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
