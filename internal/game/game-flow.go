package game

import (
	"log"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/words"
)

// StartGame moves a waiting room into play. Only the host may start, and at
// least two players must be present. Drawer order is a fresh shuffle of the
// current membership.
func (e *Engine) StartGame(sessionID string) error {
	roomID, err := e.roomFor(sessionID)
	if err != nil {
		return err
	}

	var totalRounds int
	err = e.reg.Update(roomID, func(room *internal.Room) error {
		if room.Host != sessionID {
			return ErrNotHost
		}
		if room.Status != internal.StatusWaiting {
			return ErrGameInProgress
		}
		if len(room.Players) < internal.MinPlayersToStart {
			return ErrNotEnoughPlayers
		}

		order := slices.Clone(room.Players)
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		scores := make(map[string]int, len(room.Players))
		for _, sid := range room.Players {
			scores[sid] = 0
		}

		room.Status = internal.StatusPlaying
		room.Game = internal.GameState{
			Phase:        internal.PhaseWaiting,
			CurrentRound: 1,
			DrawerOrder:  order,
			Scores:       scores,
			WordsUsed:    make(map[string]bool),
		}
		totalRounds = room.Settings.Rounds
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("[Engine.StartGame] room=%s: game started by host %s", roomID, sessionID)

	enriched, ok := e.reg.EnrichedRoom(roomID)
	if ok {
		e.bc.ToRoom(roomID, internal.EventGameStarted, internal.GameStartedData{
			RoomID:       roomID,
			Room:         enriched,
			CurrentRound: 1,
			TotalRounds:  totalRounds,
		})
		e.bc.ToRoom(roomID, internal.EventRoomUpdated, internal.RoomUpdatedData{
			Room:  enriched,
			Event: internal.EventGameStarted,
		})
	}

	e.startRound(roomID)
	return nil
}

// startRound begins the next turn: picks the drawer, deals word options, and
// arms the selection timer.
func (e *Engine) startRound(roomID string) {
	var (
		drawer      string
		round       int
		totalRounds int
		options     []string
		gameOver    bool
	)
	err := e.reg.Update(roomID, func(room *internal.Room) error {
		if room.Status != internal.StatusPlaying {
			return errSkip
		}
		g := &room.Game
		if len(g.DrawerOrder) == 0 || g.CurrentRound > room.Settings.Rounds {
			gameOver = true
			return errSkip
		}
		// Skip drawers who left the room since the order was dealt.
		for g.CurrentDrawerIndex < len(g.DrawerOrder) && !room.HasPlayer(g.DrawerOrder[g.CurrentDrawerIndex]) {
			g.CurrentDrawerIndex++
		}
		if g.CurrentDrawerIndex >= len(g.DrawerOrder) {
			g.CurrentDrawerIndex = 0
			g.CurrentRound++
			if g.CurrentRound > room.Settings.Rounds {
				gameOver = true
				return errSkip
			}
		}

		drawer = g.DrawerOrder[g.CurrentDrawerIndex]
		g.CurrentDrawer = drawer
		g.Phase = internal.PhaseWordSelection
		g.CurrentWord = ""
		g.WordOptions = e.words.RandomWords(room.Settings.WordDifficulty, 3)
		g.TurnStartTime = time.Time{}
		g.PlayersGuessed = nil

		options = slices.Clone(g.WordOptions)
		round = g.CurrentRound
		totalRounds = room.Settings.Rounds
		return nil
	})
	if err != nil {
		if gameOver {
			e.endGame(roomID)
		}
		return
	}

	drawerName := e.reg.Username(drawer)
	log.Printf("[Engine.startRound] room=%s: round %d/%d, drawer=%s", roomID, round, totalRounds, drawerName)

	e.bc.ToRoom(roomID, internal.EventRoundStarted, internal.RoundStartedData{
		Round:       round,
		Drawer:      drawer,
		DrawerName:  drawerName,
		TotalRounds: totalRounds,
	})

	// The slate goes to the whole room; clients only surface it to the drawer.
	e.bc.ToRoom(roomID, internal.EventWordSelectionStarted, internal.WordSelectionStartedData{
		DrawerID:   drawer,
		DrawerName: drawerName,
		Words:      options,
		TimeLimit:  int(e.timings.WordSelection.Seconds()),
		Phase:      internal.PhaseWordSelection,
	})

	e.timers.Start(roomID, e.timings.WordSelection, internal.PhaseWordSelection, func() {
		e.autoSelectWord(roomID)
	})
}

// SelectWord is the drawer choosing from the dealt options. The word must
// exist in the room's difficulty list.
func (e *Engine) SelectWord(sessionID, word string) error {
	roomID, err := e.roomFor(sessionID)
	if err != nil {
		return err
	}
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return ErrWordRequired
	}

	var (
		drawer   string
		drawTime int
	)
	err = e.reg.Update(roomID, func(room *internal.Room) error {
		if room.Status != internal.StatusPlaying {
			return ErrGameNotInProgress
		}
		g := &room.Game
		if g.CurrentDrawer != sessionID {
			return ErrNotYourTurn
		}
		if g.Phase != internal.PhaseWordSelection {
			return ErrNotDrawing
		}
		if !e.words.IsValid(word, room.Settings.WordDifficulty) {
			return ErrInvalidWord
		}

		g.CurrentWord = word
		if g.WordsUsed == nil {
			g.WordsUsed = make(map[string]bool)
		}
		g.WordsUsed[word] = true
		g.Phase = internal.PhaseDrawing
		g.TurnStartTime = time.Now()
		g.PlayersGuessed = nil

		drawer = g.CurrentDrawer
		drawTime = room.Settings.DrawTime
		return nil
	})
	if err != nil {
		return err
	}

	e.timers.Stop(roomID)
	log.Printf("[Engine.SelectWord] room=%s: drawer %s selected word (%d letters)", roomID, drawer, len(word))

	e.announceWord(roomID, word, drawer, drawTime, false)
	e.beginDrawing(roomID, word, drawer, drawTime)
	return nil
}

// autoSelectWord fires when the selection timer expires with no choice made.
// Picks randomly from the dealt options.
func (e *Engine) autoSelectWord(roomID string) {
	var (
		word     string
		drawer   string
		drawTime int
	)
	err := e.reg.Update(roomID, func(room *internal.Room) error {
		if room.Status != internal.StatusPlaying {
			return errSkip
		}
		g := &room.Game
		if g.Phase != internal.PhaseWordSelection || g.CurrentWord != "" {
			return errSkip
		}

		if len(g.WordOptions) > 0 {
			word = g.WordOptions[rand.Intn(len(g.WordOptions))]
		} else {
			word = e.words.RandomWord(room.Settings.WordDifficulty)
		}

		g.CurrentWord = word
		if g.WordsUsed == nil {
			g.WordsUsed = make(map[string]bool)
		}
		g.WordsUsed[word] = true
		g.Phase = internal.PhaseDrawing
		g.TurnStartTime = time.Now()
		g.PlayersGuessed = nil

		drawer = g.CurrentDrawer
		drawTime = room.Settings.DrawTime
		return nil
	})
	if err != nil {
		return
	}

	e.timers.Stop(roomID)
	log.Printf("[Engine.autoSelectWord] room=%s: auto-selected word for drawer %s", roomID, drawer)

	e.announceWord(roomID, word, drawer, drawTime, true)
	e.beginDrawing(roomID, word, drawer, drawTime)
}

// announceWord sends word_selected in two renditions: the drawer sees the
// word, everyone else sees the masked hint.
func (e *Engine) announceWord(roomID, word, drawer string, drawTime int, auto bool) {
	e.bc.ToSession(drawer, internal.EventWordSelected, internal.WordSelectedData{
		Word:         word,
		TimeLimit:    drawTime,
		DrawerID:     drawer,
		Phase:        internal.PhaseDrawing,
		AutoSelected: auto,
	})
	e.bc.ToRoomExcept(roomID, drawer, internal.EventWordSelected, internal.WordSelectedData{
		WordHint:     words.MaskedWord(word),
		WordLength:   len(word),
		TimeLimit:    drawTime,
		DrawerID:     drawer,
		Phase:        internal.PhaseDrawing,
		AutoSelected: auto,
	})
}

// beginDrawing arms the draw timer and the hint scheduler for the turn.
func (e *Engine) beginDrawing(roomID, word, drawer string, drawTime int) {
	room, ok := e.reg.GetRoom(roomID)
	if !ok {
		return
	}

	e.bc.ToRoom(roomID, internal.EventDrawingStarted, internal.DrawingStartedData{
		DrawerID:   drawer,
		DrawerName: e.reg.Username(drawer),
		WordHint:   words.MaskedWord(word),
		WordLength: len(word),
		TimeLimit:  drawTime,
		Phase:      internal.PhaseDrawing,
	})

	e.startHints(roomID, word, drawer, drawTime, room.Game.TurnStartTime)

	e.timers.Start(roomID, time.Duration(drawTime)*time.Second, internal.PhaseDrawing, func() {
		e.EndTurn(roomID, true)
	})
}

// EndTurn closes the drawing phase, settles scores, and schedules the next
// turn after the result display window. Safe to call twice for the same
// turn; the second call is a no-op.
func (e *Engine) EndTurn(roomID string, timeout bool) {
	var (
		word       string
		drawer     string
		scores     map[string]int
		allGuessed bool
	)
	err := e.reg.Update(roomID, func(room *internal.Room) error {
		if room.Status != internal.StatusPlaying {
			return errSkip
		}
		g := &room.Game
		if g.Phase != internal.PhaseDrawing && g.Phase != internal.PhaseWordSelection {
			return errSkip
		}

		allGuessed = room.AllGuessed()
		if allGuessed && g.CurrentDrawer != "" {
			// Drawer bonus lands before the snapshot so turn_ended shows it.
			g.Scores[g.CurrentDrawer] += drawerAllGuessedBonus
		}

		g.Phase = internal.PhaseResults
		word = g.CurrentWord
		drawer = g.CurrentDrawer
		scores = copyScores(g.Scores)
		return nil
	})
	if err != nil {
		return
	}

	e.stopHints(roomID)
	e.timers.Stop(roomID)
	log.Printf("[Engine.EndTurn] room=%s: turn over (timeout=%t all_guessed=%t)", roomID, timeout, allGuessed)

	if timeout {
		e.bc.ToRoom(roomID, internal.EventTurnTimeout, internal.TurnTimeoutData{RoomID: roomID})
	}
	e.bc.ToRoom(roomID, internal.EventTurnEnded, internal.TurnEndedData{
		Word:        word,
		Drawer:      drawer,
		DrawerName:  e.reg.Username(drawer),
		Results:     e.resolveResults(scores),
		Scores:      scores,
		Timeout:     timeout,
		AllGuessed:  allGuessed,
		NextPhaseIn: int(e.timings.ResultDisplay.Seconds()),
	})

	e.timers.Start(roomID, e.timings.ResultDisplay, internal.PhaseResults, func() {
		e.advanceTurn(roomID)
	})
}

// advanceTurn moves to the next drawer, wrapping into a new round (with a
// short intermission) when every player has drawn.
func (e *Engine) advanceTurn(roomID string) {
	var (
		nextRound int
		wrapped   bool
		gameOver  bool
	)
	err := e.reg.Update(roomID, func(room *internal.Room) error {
		if room.Status != internal.StatusPlaying {
			return errSkip
		}
		g := &room.Game
		if g.Phase != internal.PhaseResults {
			return errSkip
		}

		g.CurrentDrawerIndex++
		if g.CurrentDrawerIndex >= len(g.DrawerOrder) {
			g.CurrentDrawerIndex = 0
			g.CurrentRound++
			wrapped = true
		}
		if g.CurrentRound > room.Settings.Rounds {
			gameOver = true
			return nil
		}
		if wrapped {
			g.Phase = internal.PhaseIntermission
		}
		nextRound = g.CurrentRound
		return nil
	})
	if err != nil {
		return
	}

	if gameOver {
		e.endGame(roomID)
		return
	}

	if wrapped {
		e.bc.ToRoom(roomID, internal.EventRoundComplete, internal.RoundCompleteData{
			NextRound:        nextRound,
			IntermissionTime: int(e.timings.Intermission.Seconds()),
		})
		e.timers.Start(roomID, e.timings.Intermission, internal.PhaseIntermission, func() {
			e.startRound(roomID)
		})
		return
	}

	e.startRound(roomID)
}

// endGame settles the final leaderboard and freezes the room.
func (e *Engine) endGame(roomID string) {
	var (
		scores      map[string]int
		totalRounds int
	)
	err := e.reg.Update(roomID, func(room *internal.Room) error {
		if room.Status == internal.StatusEnded {
			return errSkip
		}
		room.Status = internal.StatusEnded
		room.Game.Phase = internal.PhaseEnded
		room.Game.CurrentDrawer = ""
		room.Game.CurrentWord = ""
		scores = copyScores(room.Game.Scores)
		totalRounds = room.Settings.Rounds
		return nil
	})

	e.timers.Stop(roomID)
	e.stopHints(roomID)
	if err != nil {
		return
	}

	results := e.resolveResults(scores)
	var winner *internal.TurnResult
	if len(results) > 0 {
		w := results[0]
		winner = &w
	}

	log.Printf("[Engine.endGame] room=%s: game over, %d players on the board", roomID, len(results))
	e.bc.ToRoom(roomID, internal.EventGameEnded, internal.GameEndedData{
		Winner:       winner,
		FinalResults: results,
		TotalRounds:  totalRounds,
	})
}
