package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/skribly/skribly-backend/internal/registry"
)

type createSessionRequest struct {
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url"`
}

// CreateSession registers a username and hands back the session ID that
// every other call authenticates with.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.reg.CreateUser(req.Username, req.AvatarURL)
	if err != nil {
		switch {
		case errors.Is(err, registry.ErrInvalidUsername), errors.Is(err, registry.ErrUsernameTaken):
			writeError(w, http.StatusBadRequest, "%s", err)
		default:
			writeError(w, http.StatusInternalServerError, "could not create session")
		}
		return
	}

	setSessionCookie(w, user.SessionID)
	log.Printf("[Server.CreateSession] user %s created (session=%s)", user.Username, user.SessionID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"session_id": user.SessionID,
		"user":       user,
	})
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

// DeleteSession logs out: the user leaves their room, the identity is
// dropped, and the cookie is cleared.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	if user.CurrentRoom != "" {
		if err := s.engine.LeaveRoom(user.SessionID, user.CurrentRoom); err != nil {
			log.Printf("[Server.DeleteSession] leave room failed for %s: %v", user.Username, err)
		}
	}
	s.reg.DeleteUser(user.SessionID)
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"message": "session ended"})
}

type validateUsernameRequest struct {
	Username string `json:"username"`
}

// ValidateUsername lets the client check a name before committing to a
// session, so the signup form can flag conflicts inline.
func (s *Server) ValidateUsername(w http.ResponseWriter, r *http.Request) {
	var req validateUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.reg.ValidateUsername(req.Username); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		if encErr := json.NewEncoder(w).Encode(map[string]any{
			"valid": false,
			"error": err.Error(),
		}); encErr != nil {
			log.Printf("[Server.ValidateUsername] error encoding response: %v", encErr)
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"valid": true})
}
