package internal

import (
	"fmt"
	"slices"
	"time"
)

const (
	MinUsernameLen = 3
	MaxUsernameLen = 20

	MinPlayersToStart = 2
	MinPlayers        = 2
	MaxPlayers        = 12
	MinRounds         = 1
	MaxRounds         = 10
	MinDrawTime       = 30
	MaxDrawTime       = 300

	DefaultRounds     = 3
	DefaultDrawTime   = 80
	DefaultMaxPlayers = 8

	MaxChatMessageLen = 200

	// Rooms older than this are garbage-collected regardless of state.
	RoomMaxAge = 24 * time.Hour
)

type RoomStatus string

const (
	StatusWaiting RoomStatus = "waiting"
	StatusPlaying RoomStatus = "playing"
	StatusEnded   RoomStatus = "ended"
)

// Phase is the per-room game phase. The same values name the timer kinds
// broadcast in timer_update events.
type Phase string

const (
	PhaseWaiting       Phase = "waiting"
	PhaseWordSelection Phase = "word_selection"
	PhaseDrawing       Phase = "drawing"
	PhaseResults       Phase = "results"
	PhaseIntermission  Phase = "intermission"
	PhaseEnded         Phase = "ended"
)

type WordDifficulty string

const (
	DifficultyEasy   WordDifficulty = "easy"
	DifficultyMedium WordDifficulty = "medium"
	DifficultyHard   WordDifficulty = "hard"
)

func (d WordDifficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// User is a logical identity bound to one or more sockets via its SessionID.
// A user transiently losing their socket is not destroyed.
type User struct {
	SessionID   string    `json:"session_id"`
	Username    string    `json:"username"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	CurrentRoom string    `json:"current_room,omitempty"`
}

type RoomSettings struct {
	Rounds         int            `json:"rounds"`
	DrawTime       int            `json:"draw_time"`
	WordDifficulty WordDifficulty `json:"word_difficulty"`
	MaxPlayers     int            `json:"max_players"`
}

func DefaultSettings() RoomSettings {
	return RoomSettings{
		Rounds:         DefaultRounds,
		DrawTime:       DefaultDrawTime,
		WordDifficulty: DifficultyMedium,
		MaxPlayers:     DefaultMaxPlayers,
	}
}

func (s RoomSettings) Validate() error {
	if s.Rounds < MinRounds || s.Rounds > MaxRounds {
		return fmt.Errorf("rounds must be between %d and %d", MinRounds, MaxRounds)
	}
	if s.DrawTime < MinDrawTime || s.DrawTime > MaxDrawTime {
		return fmt.Errorf("draw time must be between %d and %d seconds", MinDrawTime, MaxDrawTime)
	}
	if !s.WordDifficulty.Valid() {
		return fmt.Errorf("invalid word difficulty %q", s.WordDifficulty)
	}
	if s.MaxPlayers < MinPlayers || s.MaxPlayers > MaxPlayers {
		return fmt.Errorf("max players must be between %d and %d", MinPlayers, MaxPlayers)
	}
	return nil
}

// GameState holds the per-room game machinery. CurrentWord and WordOptions
// are server-only secrets and never serialized.
type GameState struct {
	Phase              Phase           `json:"phase"`
	CurrentRound       int             `json:"current_round"`
	DrawerOrder        []string        `json:"drawer_order"`
	CurrentDrawerIndex int             `json:"current_drawer_index"`
	CurrentDrawer      string          `json:"current_drawer,omitempty"`
	CurrentWord        string          `json:"-"`
	WordOptions        []string        `json:"-"`
	TurnStartTime      time.Time       `json:"-"`
	WordsUsed          map[string]bool `json:"-"`
	Scores             map[string]int  `json:"scores"`
	PlayersGuessed     []string        `json:"players_guessed"`
}

func (g *GameState) HasGuessed(sessionID string) bool {
	return slices.Contains(g.PlayersGuessed, sessionID)
}

type Room struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Host       string       `json:"host"`
	Status     RoomStatus   `json:"status"`
	Players    []string     `json:"players"`
	MaxPlayers int          `json:"max_players"`
	Settings   RoomSettings `json:"settings"`
	Game       GameState    `json:"game_state"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (r *Room) HasPlayer(sessionID string) bool {
	return slices.Contains(r.Players, sessionID)
}

// GuesserCount is the number of players eligible to guess this turn.
func (r *Room) GuesserCount() int {
	n := len(r.Players)
	if r.Game.CurrentDrawer != "" && r.HasPlayer(r.Game.CurrentDrawer) {
		n--
	}
	return n
}

// AllGuessed reports whether every non-drawer has guessed correctly.
func (r *Room) AllGuessed() bool {
	return r.GuesserCount() > 0 && len(r.Game.PlayersGuessed) >= r.GuesserCount()
}

// Clone returns a deep copy so callers never alias registry-internal state.
func (r *Room) Clone() Room {
	c := *r
	c.Players = slices.Clone(r.Players)
	c.Game.DrawerOrder = slices.Clone(r.Game.DrawerOrder)
	c.Game.WordOptions = slices.Clone(r.Game.WordOptions)
	c.Game.PlayersGuessed = slices.Clone(r.Game.PlayersGuessed)
	if r.Game.Scores != nil {
		c.Game.Scores = make(map[string]int, len(r.Game.Scores))
		for k, v := range r.Game.Scores {
			c.Game.Scores[k] = v
		}
	}
	if r.Game.WordsUsed != nil {
		c.Game.WordsUsed = make(map[string]bool, len(r.Game.WordsUsed))
		for k, v := range r.Game.WordsUsed {
			c.Game.WordsUsed[k] = v
		}
	}
	return c
}

// PlayerInfo is the public identity of a room member.
type PlayerInfo struct {
	SessionID string `json:"session_id"`
	Username  string `json:"username"`
}

// EnrichedRoom mirrors Room but carries resolved player identities instead of
// bare session IDs. This is the shape sent over HTTP and in socket events.
type EnrichedRoom struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Host       string       `json:"host"`
	Status     RoomStatus   `json:"status"`
	Players    []PlayerInfo `json:"players"`
	MaxPlayers int          `json:"max_players"`
	Settings   RoomSettings `json:"settings"`
	Game       GameState    `json:"game_state"`
	CreatedAt  time.Time    `json:"created_at"`
}

// RoomListing is the reduced public shape used by the room list endpoint.
type RoomListing struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Players    int        `json:"players"`
	MaxPlayers int        `json:"max_players"`
	Status     RoomStatus `json:"status"`
	Host       string     `json:"host"`
}

// Now returns the current time as float seconds since epoch, the timestamp
// format used in every socket payload.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
