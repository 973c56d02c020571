package game

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/skribly/skribly-backend/internal"
)

// SubmitGuess scores a guess against the current word. Correct guesses earn
// 100 points plus 5 per whole second left on the draw clock; wrong guesses
// fall through to chat so the room still sees them.
func (e *Engine) SubmitGuess(sessionID, guess string) error {
	roomID, err := e.roomFor(sessionID)
	if err != nil {
		return err
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if guess == "" {
		return ErrEmptyGuess
	}

	var (
		correct       bool
		score         int
		speedBonus    int
		word          string
		scores        map[string]int
		timeElapsed   float64
		timeRemaining float64
		allGuessed    bool
	)
	err = e.reg.Update(roomID, func(room *internal.Room) error {
		if room.Status != internal.StatusPlaying {
			return ErrGameNotInProgress
		}
		g := &room.Game
		if g.CurrentDrawer == sessionID {
			return ErrDrawerCannotGuess
		}
		if g.HasGuessed(sessionID) {
			return ErrAlreadyGuessed
		}
		if g.Phase != internal.PhaseDrawing || g.CurrentWord == "" {
			return nil
		}
		if guess != g.CurrentWord {
			return nil
		}

		correct = true
		word = g.CurrentWord
		timeElapsed = time.Since(g.TurnStartTime).Seconds()
		timeRemaining = float64(room.Settings.DrawTime) - timeElapsed
		if timeRemaining < 0 {
			timeRemaining = 0
		}
		score, speedBonus = guessScore(timeRemaining)

		g.Scores[sessionID] += score
		g.PlayersGuessed = append(g.PlayersGuessed, sessionID)
		scores = copyScores(g.Scores)
		allGuessed = room.AllGuessed()
		return nil
	})
	if err != nil {
		return err
	}

	if !correct {
		// Wrong guess doubles as chat so the room sees the attempt.
		e.bc.ToRoom(roomID, internal.EventChatMessage, internal.ChatMessageData{
			User:      e.reg.Username(sessionID),
			UserID:    sessionID,
			Message:   guess,
			Type:      "guess",
			Timestamp: internal.Now(),
		})
		return nil
	}

	username := e.reg.Username(sessionID)
	log.Printf("[Engine.SubmitGuess] room=%s: %s guessed correctly (+%d)", roomID, username, score)

	e.bc.ToRoom(roomID, internal.EventCorrectGuess, internal.CorrectGuessData{
		Player:        username,
		PlayerID:      sessionID,
		Word:          word,
		Score:         score,
		SpeedBonus:    speedBonus,
		Scores:        scores,
		TimeElapsed:   round1(timeElapsed),
		TimeRemaining: round1(timeRemaining),
	})
	e.bc.ToSession(sessionID, internal.EventGuessCorrect, internal.GuessCorrectData{
		Message: fmt.Sprintf("You guessed it! The word was '%s'", word),
		Score:   score,
		Word:    word,
	})

	if allGuessed {
		log.Printf("[Engine.SubmitGuess] room=%s: everyone guessed, ending turn early", roomID)
		e.EndTurn(roomID, false)
	}
	return nil
}

// SendChat relays a plain chat message to the room.
func (e *Engine) SendChat(sessionID, message string) error {
	roomID, err := e.roomFor(sessionID)
	if err != nil {
		return err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrEmptyMessage
	}
	if len(message) > internal.MaxChatMessageLen {
		return ErrMessageTooLong
	}

	e.bc.ToRoom(roomID, internal.EventChatMessage, internal.ChatMessageData{
		User:      e.reg.Username(sessionID),
		UserID:    sessionID,
		Message:   message,
		Type:      "chat",
		Timestamp: internal.Now(),
	})
	return nil
}
