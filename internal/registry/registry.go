package registry

import (
	"errors"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/skribly/skribly-backend/internal"
)

var (
	ErrInvalidUsername = errors.New("username must be 3-20 characters")
	ErrUsernameTaken   = errors.New("username is already taken")
	ErrUserNotFound    = errors.New("user not found")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrGameInProgress  = errors.New("game is already in progress")
	ErrNotInRoom       = errors.New("user not in room")
)

const roomIDChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Registry is the in-memory store for users and rooms. The top-level RWMutex
// guards the maps; each room additionally carries its own lock, and all room
// mutations serialize through it via Update.
type Registry struct {
	mu    sync.RWMutex
	users map[string]*internal.User
	rooms map[string]*roomEntry
}

type roomEntry struct {
	mu   sync.Mutex
	room internal.Room
}

func New() *Registry {
	return &Registry{
		users: make(map[string]*internal.User),
		rooms: make(map[string]*roomEntry),
	}
}

// =============================================================================
// USERS
// =============================================================================

// ValidateUsername checks length and case-insensitive uniqueness against all
// live users.
func (r *Registry) ValidateUsername(username string) error {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < internal.MinUsernameLen || n > internal.MaxUsernameLen {
		return ErrInvalidUsername
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	lower := strings.ToLower(username)
	for _, u := range r.users {
		if strings.ToLower(u.Username) == lower {
			return ErrUsernameTaken
		}
	}
	return nil
}

// CreateUser registers a new session-backed user.
func (r *Registry) CreateUser(username, avatarURL string) (internal.User, error) {
	username = strings.TrimSpace(username)
	if err := r.ValidateUsername(username); err != nil {
		return internal.User{}, err
	}

	user := internal.User{
		SessionID: uuid.NewString(),
		Username:  username,
		AvatarURL: avatarURL,
		CreatedAt: time.Now().UTC(),
	}

	r.mu.Lock()
	r.users[user.SessionID] = &user
	r.mu.Unlock()

	log.Printf("[Registry.CreateUser] created session for %s (%s)", username, user.SessionID)
	return user, nil
}

func (r *Registry) GetUser(sessionID string) (internal.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[sessionID]
	if !ok {
		return internal.User{}, false
	}
	return *u, true
}

// UpdateUser applies fn to the stored user under the registry lock.
func (r *Registry) UpdateUser(sessionID string, fn func(*internal.User)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[sessionID]
	if !ok {
		return false
	}
	fn(u)
	return true
}

func (r *Registry) DeleteUser(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[sessionID]; ok {
		log.Printf("[Registry.DeleteUser] removed session for %s (%s)", u.Username, sessionID)
		delete(r.users, sessionID)
	}
}

// Username resolves a session ID to its username, or "Unknown".
func (r *Registry) Username(sessionID string) string {
	if u, ok := r.GetUser(sessionID); ok {
		return u.Username
	}
	return "Unknown"
}

// =============================================================================
// ROOMS
// =============================================================================

// CreateRoom creates a room with the host as first player and a fresh,
// collision-checked 6-character ID.
func (r *Registry) CreateRoom(hostSession string, settings internal.RoomSettings, name string) (internal.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[hostSession]; !ok {
		return internal.Room{}, ErrUserNotFound
	}

	id := generateRoomID()
	for {
		if _, taken := r.rooms[id]; !taken {
			break
		}
		id = generateRoomID()
	}

	room := internal.Room{
		ID:         id,
		Name:       name,
		Host:       hostSession,
		Status:     internal.StatusWaiting,
		Players:    []string{hostSession},
		MaxPlayers: settings.MaxPlayers,
		Settings:   settings,
		Game: internal.GameState{
			Phase:     internal.PhaseWaiting,
			WordsUsed: make(map[string]bool),
			Scores:    map[string]int{hostSession: 0},
		},
		CreatedAt: time.Now().UTC(),
	}
	r.rooms[id] = &roomEntry{room: room}

	log.Printf("[Registry.CreateRoom] created room %s (host=%s)", id, hostSession)
	return room.Clone(), nil
}

func generateRoomID() string {
	b := make([]byte, 6)
	for i := range b {
		b[i] = roomIDChars[rand.Intn(len(roomIDChars))]
	}
	return string(b)
}

func (r *Registry) entry(roomID string) (*roomEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.rooms[roomID]
	return e, ok
}

// GetRoom returns a deep copy of the room.
func (r *Registry) GetRoom(roomID string) (internal.Room, bool) {
	e, ok := r.entry(roomID)
	if !ok {
		return internal.Room{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.room.Clone(), true
}

// Update runs fn on the room under its lock. fn sees the live room; an error
// from fn aborts nothing already applied, so fn should validate first.
func (r *Registry) Update(roomID string, fn func(*internal.Room) error) error {
	e, ok := r.entry(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(&e.room)
}

// AddPlayer admits a player to a waiting room. Re-adding an existing player
// is an idempotent success.
func (r *Registry) AddPlayer(roomID, sessionID string) error {
	e, ok := r.entry(roomID)
	if !ok {
		return ErrRoomNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.room.HasPlayer(sessionID) {
		return nil
	}
	if e.room.Status != internal.StatusWaiting {
		return ErrGameInProgress
	}
	if len(e.room.Players) >= e.room.MaxPlayers {
		return ErrRoomFull
	}
	e.room.Players = append(e.room.Players, sessionID)
	e.room.Game.Scores[sessionID] = 0
	log.Printf("[Registry.AddPlayer] added %s to room %s (%d/%d)",
		sessionID, roomID, len(e.room.Players), e.room.MaxPlayers)
	return nil
}

// RemovePlayer takes a player out of a room, promoting a new host if needed.
// Returns nil (and deletes the room) when the last player leaves.
func (r *Registry) RemovePlayer(roomID, sessionID string) (*internal.Room, error) {
	e, ok := r.entry(roomID)
	if !ok {
		return nil, ErrRoomNotFound
	}

	e.mu.Lock()
	if !e.room.HasPlayer(sessionID) {
		e.mu.Unlock()
		return nil, ErrNotInRoom
	}

	players := make([]string, 0, len(e.room.Players)-1)
	for _, p := range e.room.Players {
		if p != sessionID {
			players = append(players, p)
		}
	}
	e.room.Players = players
	delete(e.room.Game.Scores, sessionID)

	if e.room.Host == sessionID && len(players) > 0 {
		e.room.Host = players[0]
		log.Printf("[Registry.RemovePlayer] room %s: new host %s", roomID, e.room.Host)
	}

	if len(players) == 0 {
		e.mu.Unlock()
		r.DeleteRoom(roomID)
		return nil, nil
	}

	snapshot := e.room.Clone()
	e.mu.Unlock()
	log.Printf("[Registry.RemovePlayer] removed %s from room %s", sessionID, roomID)
	return &snapshot, nil
}

func (r *Registry) DeleteRoom(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rooms[roomID]; ok {
		delete(r.rooms, roomID)
		log.Printf("[Registry.DeleteRoom] deleted room %s", roomID)
	}
}

// RoomPlayers returns the current player session IDs of a room. Used by the
// broadcaster to resolve fan-out targets.
func (r *Registry) RoomPlayers(roomID string) []string {
	room, ok := r.GetRoom(roomID)
	if !ok {
		return nil
	}
	return room.Players
}

// WaitingRooms snapshots every room still accepting players.
func (r *Registry) WaitingRooms() []internal.Room {
	r.mu.RLock()
	entries := make([]*roomEntry, 0, len(r.rooms))
	for _, e := range r.rooms {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	out := make([]internal.Room, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if e.room.Status == internal.StatusWaiting {
			out = append(out, e.room.Clone())
		}
		e.mu.Unlock()
	}
	return out
}

func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// PlayerCount totals the players across all rooms.
func (r *Registry) PlayerCount() int {
	r.mu.RLock()
	entries := make([]*roomEntry, 0, len(r.rooms))
	for _, e := range r.rooms {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	total := 0
	for _, e := range entries {
		e.mu.Lock()
		total += len(e.room.Players)
		e.mu.Unlock()
	}
	return total
}

// CleanupStaleRooms deletes empty rooms and rooms older than maxAge,
// returning the IDs removed so the caller can cancel their timers.
func (r *Registry) CleanupStaleRooms(maxAge time.Duration) []string {
	cutoff := time.Now().UTC().Add(-maxAge)

	r.mu.RLock()
	entries := make(map[string]*roomEntry, len(r.rooms))
	for id, e := range r.rooms {
		entries[id] = e
	}
	r.mu.RUnlock()

	var stale []string
	for id, e := range entries {
		e.mu.Lock()
		if len(e.room.Players) == 0 || e.room.CreatedAt.Before(cutoff) {
			stale = append(stale, id)
		}
		e.mu.Unlock()
	}

	r.mu.Lock()
	for _, id := range stale {
		delete(r.rooms, id)
	}
	r.mu.Unlock()

	if len(stale) > 0 {
		log.Printf("[Registry.CleanupStaleRooms] removed %d stale rooms", len(stale))
	}
	return stale
}

// Enrich resolves player session IDs into public identities.
func (r *Registry) Enrich(room internal.Room) internal.EnrichedRoom {
	players := make([]internal.PlayerInfo, 0, len(room.Players))
	for _, sid := range room.Players {
		players = append(players, internal.PlayerInfo{
			SessionID: sid,
			Username:  r.Username(sid),
		})
	}
	return internal.EnrichedRoom{
		ID:         room.ID,
		Name:       room.Name,
		Host:       room.Host,
		Status:     room.Status,
		Players:    players,
		MaxPlayers: room.MaxPlayers,
		Settings:   room.Settings,
		Game:       room.Game,
		CreatedAt:  room.CreatedAt,
	}
}

// EnrichedRoom fetches and enriches a room in one step.
func (r *Registry) EnrichedRoom(roomID string) (internal.EnrichedRoom, bool) {
	room, ok := r.GetRoom(roomID)
	if !ok {
		return internal.EnrichedRoom{}, false
	}
	return r.Enrich(room), true
}
