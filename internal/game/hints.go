package game

import (
	"context"
	"log"
	"time"

	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/words"
)

// startHints runs the per-turn letter reveal loop. Reveals land at 10s, 20s
// and 30s into the drawing phase; the loop exits when the turn ends, the
// word changes, or the room disappears.
func (e *Engine) startHints(roomID, word, drawer string, drawTime int, turnStart time.Time) {
	ctx, cancel := context.WithCancel(context.Background())

	e.hintMu.Lock()
	if prev, ok := e.hintCancels[roomID]; ok {
		prev()
	}
	e.hintCancels[roomID] = cancel
	e.hintMu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()

		sent := 0
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			elapsed := time.Since(turnStart).Seconds()
			if elapsed >= float64(drawTime) {
				return
			}

			n := words.RevealCount(elapsed)
			if n <= sent {
				continue
			}

			room, ok := e.reg.GetRoom(roomID)
			if !ok || room.Game.Phase != internal.PhaseDrawing || room.Game.CurrentWord != word {
				return
			}

			hint := words.ProgressiveHint(word, elapsed)
			log.Printf("[Engine.startHints] room=%s: hint %d revealed", roomID, n)
			e.bc.ToRoom(roomID, internal.EventHintUpdate, internal.HintUpdateData{
				WordHint:    hint,
				WordLength:  len(word),
				ElapsedTime: round1(elapsed),
				DrawerID:    drawer,
			})

			sent = n
			if sent >= 3 {
				return
			}
		}
	}()
}

// stopHints cancels the room's hint loop, if any.
func (e *Engine) stopHints(roomID string) {
	e.hintMu.Lock()
	if cancel, ok := e.hintCancels[roomID]; ok {
		cancel()
		delete(e.hintCancels, roomID)
	}
	e.hintMu.Unlock()
}
