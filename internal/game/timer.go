package game

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/registry"
)

// Broadcaster is the event fan-out surface the engine and timers write to.
// *ws.Hub satisfies it; tests substitute a recorder.
type Broadcaster interface {
	ToRoom(roomID, event string, payload any)
	ToRoomExcept(roomID, exceptSession, event string, payload any)
	ToSession(sessionID, event string, payload any)
}

// TimerService runs at most one timer per room. Each timer ticks a
// timer_update to the room every second and fires its expiry callback on a
// dedicated goroutine. Starting a new timer for a room cancels the previous
// one; a cancelled timer never fires its callback.
type TimerService struct {
	reg *registry.Registry
	bc  Broadcaster

	mu     sync.Mutex
	timers map[string]*roomTimer
}

type roomTimer struct {
	kind     internal.Phase
	duration time.Duration
	start    time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewTimerService(reg *registry.Registry, bc Broadcaster) *TimerService {
	return &TimerService{
		reg:    reg,
		bc:     bc,
		timers: make(map[string]*roomTimer),
	}
}

// Start replaces any running timer for the room.
func (t *TimerService) Start(roomID string, duration time.Duration, kind internal.Phase, onExpire func()) {
	ctx, cancel := context.WithCancel(context.Background())
	rt := &roomTimer{
		kind:     kind,
		duration: duration,
		start:    time.Now(),
		ctx:      ctx,
		cancel:   cancel,
	}

	t.mu.Lock()
	if prev, ok := t.timers[roomID]; ok {
		prev.cancel()
	}
	t.timers[roomID] = rt
	t.mu.Unlock()

	log.Printf("[TimerService.Start] room=%s: %s timer started (%s)", roomID, kind, duration)
	go t.run(roomID, rt, onExpire)
}

// Stop cancels the room's timer, if any. Safe to call when none is active.
func (t *TimerService) Stop(roomID string) {
	t.mu.Lock()
	rt, ok := t.timers[roomID]
	if ok {
		rt.cancel()
		delete(t.timers, roomID)
	}
	t.mu.Unlock()
	if ok {
		log.Printf("[TimerService.Stop] room=%s: %s timer cancelled", roomID, rt.kind)
	}
}

// Remaining reports how much of the active timer is left, or zero.
func (t *TimerService) Remaining(roomID string) time.Duration {
	t.mu.Lock()
	rt, ok := t.timers[roomID]
	t.mu.Unlock()
	if !ok {
		return 0
	}
	remaining := rt.duration - time.Since(rt.start)
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// removeIfCurrent unregisters rt and reports whether it was still the room's
// active timer. A timer that lost the race to a replacement must not fire.
func (t *TimerService) removeIfCurrent(roomID string, rt *roomTimer) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timers[roomID] != rt {
		return false
	}
	delete(t.timers, roomID)
	return true
}

func (t *TimerService) run(roomID string, rt *roomTimer, onExpire func()) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	expire := time.NewTimer(rt.duration)
	defer expire.Stop()

	for {
		select {
		case <-rt.ctx.Done():
			return

		case <-expire.C:
			if !t.removeIfCurrent(roomID, rt) {
				return
			}
			select {
			case <-rt.ctx.Done():
				return
			default:
			}
			log.Printf("[TimerService.run] room=%s: %s timer expired", roomID, rt.kind)
			// Expiry callbacks run off the tick goroutine, never under
			// the room lock.
			go onExpire()
			return

		case <-ticker.C:
			if _, ok := t.reg.GetRoom(roomID); !ok {
				log.Printf("[TimerService.run] room=%s no longer exists, stopping %s timer", roomID, rt.kind)
				t.removeIfCurrent(roomID, rt)
				return
			}
			remaining := int(rt.duration.Seconds() - time.Since(rt.start).Seconds())
			if remaining < 0 {
				remaining = 0
			}
			t.bc.ToRoom(roomID, internal.EventTimerUpdate, internal.TimerUpdateData{
				TimeRemaining: remaining,
				Phase:         rt.kind,
				RoomID:        roomID,
			})
		}
	}
}
