package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/registry"
)

type createRoomRequest struct {
	Name           string  `json:"name"`
	Rounds         *int    `json:"rounds"`
	DrawTime       *int    `json:"draw_time"`
	WordDifficulty *string `json:"word_difficulty"`
	MaxPlayers     *int    `json:"max_players"`
}

// CreateRoom makes a room with the caller as host. Settings arrive flat in
// the body; omitted ones fall back to the defaults.
func (s *Server) CreateRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	settings := internal.DefaultSettings()
	if req.Rounds != nil {
		settings.Rounds = *req.Rounds
	}
	if req.DrawTime != nil {
		settings.DrawTime = *req.DrawTime
	}
	if req.WordDifficulty != nil {
		settings.WordDifficulty = internal.WordDifficulty(*req.WordDifficulty)
	}
	if req.MaxPlayers != nil {
		settings.MaxPlayers = *req.MaxPlayers
	}
	if err := settings.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "%s", err)
		return
	}

	room, err := s.reg.CreateRoom(user.SessionID, settings, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not create room")
		return
	}
	s.reg.UpdateUser(user.SessionID, func(u *internal.User) {
		u.CurrentRoom = room.ID
	})

	log.Printf("[Server.CreateRoom] room=%s created by %s", room.ID, user.Username)
	writeJSON(w, http.StatusCreated, map[string]any{"room": s.reg.Enrich(room)})
}

func (s *Server) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms := s.reg.WaitingRooms()
	listings := make([]internal.RoomListing, 0, len(rooms))
	totalPlayers := 0
	for _, room := range rooms {
		totalPlayers += len(room.Players)
		listings = append(listings, internal.RoomListing{
			ID:         room.ID,
			Name:       room.Name,
			Players:    len(room.Players),
			MaxPlayers: room.MaxPlayers,
			Status:     room.Status,
			Host:       s.reg.Username(room.Host),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rooms":         listings,
		"total_rooms":   len(listings),
		"total_players": totalPlayers,
	})
}

func (s *Server) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	enriched, ok := s.reg.EnrichedRoom(roomID)
	if !ok {
		writeError(w, http.StatusNotFound, "room %s not found", roomID)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"room": enriched})
}

// JoinRoom adds the caller to a waiting room. The socket-level join_room
// event afterwards attaches their connection to the room's broadcasts.
func (s *Server) JoinRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	roomID := mux.Vars(r)["roomId"]

	err := s.reg.AddPlayer(roomID, user.SessionID)
	switch {
	case errors.Is(err, registry.ErrRoomNotFound):
		writeError(w, http.StatusNotFound, "room %s not found", roomID)
		return
	case errors.Is(err, registry.ErrRoomFull):
		writeErrorCode(w, http.StatusBadRequest, "ROOM_FULL", "%s", err)
		return
	case errors.Is(err, registry.ErrGameInProgress):
		writeErrorCode(w, http.StatusBadRequest, "GAME_IN_PROGRESS", "%s", err)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not join room")
		return
	}

	s.reg.UpdateUser(user.SessionID, func(u *internal.User) {
		u.CurrentRoom = roomID
	})

	enriched, _ := s.reg.EnrichedRoom(roomID)
	log.Printf("[Server.JoinRoom] room=%s: %s joined", roomID, user.Username)
	writeJSON(w, http.StatusOK, map[string]any{
		"room":    enriched,
		"message": "joined room " + roomID,
	})
}

func (s *Server) LeaveRoom(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(w, r)
	if !ok {
		return
	}
	roomID := mux.Vars(r)["roomId"]

	if err := s.engine.LeaveRoom(user.SessionID, roomID); err != nil {
		switch {
		case errors.Is(err, registry.ErrRoomNotFound):
			writeError(w, http.StatusNotFound, "room %s not found", roomID)
		case errors.Is(err, registry.ErrNotInRoom):
			writeError(w, http.StatusConflict, "%s", err)
		default:
			writeError(w, http.StatusInternalServerError, "could not leave room")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "left room"})
}

// RoomStatus is a lightweight poll target: phase, round, and clock without
// the full room payload.
func (s *Server) RoomStatus(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomId"]
	room, ok := s.reg.GetRoom(roomID)
	if !ok {
		writeError(w, http.StatusNotFound, "room %s not found", roomID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"room_id":        room.ID,
		"status":         room.Status,
		"phase":          room.Game.Phase,
		"current_round":  room.Game.CurrentRound,
		"total_rounds":   room.Settings.Rounds,
		"players":        len(room.Players),
		"time_remaining": int(s.engine.Timers().Remaining(roomID).Seconds()),
	})
}

func (s *Server) GameStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"active_rooms":   s.reg.RoomCount(),
		"active_players": s.reg.PlayerCount(),
		"word_lists":     s.words.Stats(),
	})
}
