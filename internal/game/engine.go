package game

import (
	"context"
	"sync"
	"time"

	"github.com/skribly/skribly-backend/internal/registry"
	"github.com/skribly/skribly-backend/internal/words"
)

// Timings are the fixed inter-phase delays. Draw time comes from room
// settings instead.
type Timings struct {
	WordSelection time.Duration
	ResultDisplay time.Duration
	Intermission  time.Duration
}

func DefaultTimings() Timings {
	return Timings{
		WordSelection: 10 * time.Second,
		ResultDisplay: 5 * time.Second,
		Intermission:  3 * time.Second,
	}
}

// Engine drives the turn state machine for every room. All state mutation
// goes through registry.Update so a room's transitions are serialized;
// broadcasts and timer starts happen after the lock is released.
type Engine struct {
	reg     *registry.Registry
	words   *words.Service
	bc      Broadcaster
	timers  *TimerService
	timings Timings

	hintMu      sync.Mutex
	hintCancels map[string]context.CancelFunc
}

func NewEngine(reg *registry.Registry, w *words.Service, bc Broadcaster, timings Timings) *Engine {
	return &Engine{
		reg:         reg,
		words:       w,
		bc:          bc,
		timers:      NewTimerService(reg, bc),
		timings:     timings,
		hintCancels: make(map[string]context.CancelFunc),
	}
}

// Timers exposes the room timer service for remaining-time queries.
func (e *Engine) Timers() *TimerService { return e.timers }

// CleanupRoom tears down timers and hint schedulers for a room that no
// longer exists. Called by the stale-room sweeper.
func (e *Engine) CleanupRoom(roomID string) {
	e.timers.Stop(roomID)
	e.stopHints(roomID)
}

// roomFor resolves the caller's current room.
func (e *Engine) roomFor(sessionID string) (string, error) {
	user, ok := e.reg.GetUser(sessionID)
	if !ok || user.CurrentRoom == "" {
		return "", ErrNotInRoom
	}
	return user.CurrentRoom, nil
}

