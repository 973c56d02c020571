package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/registry"
	"github.com/skribly/skribly-backend/internal/words"
)

// recorder captures broadcasts for assertions in place of the socket hub.
type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	target  string
	event   string
	payload any
}

func (r *recorder) record(target, event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{target: target, event: event, payload: payload})
}

func (r *recorder) ToRoom(roomID, event string, payload any) {
	r.record("room:"+roomID, event, payload)
}

func (r *recorder) ToRoomExcept(roomID, exceptSession, event string, payload any) {
	r.record("room:"+roomID+":except:"+exceptSession, event, payload)
}

func (r *recorder) ToSession(sessionID, event string, payload any) {
	r.record("session:"+sessionID, event, payload)
}

func (r *recorder) ofType(event string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// newTestEngine builds an engine whose phase timers are effectively frozen,
// so tests drive transitions by calling the expiry paths directly.
func newTestEngine(t *testing.T) (*Engine, *registry.Registry, *recorder) {
	t.Helper()
	reg := registry.New()
	rec := &recorder{}
	e := NewEngine(reg, words.New(t.TempDir()), rec, Timings{
		WordSelection: time.Hour,
		ResultDisplay: time.Hour,
		Intermission:  time.Hour,
	})
	return e, reg, rec
}

// setupRoom creates n users in one room, host first, with everyone's
// CurrentRoom bound.
func setupRoom(t *testing.T, reg *registry.Registry, names ...string) (string, []internal.User) {
	t.Helper()
	users := make([]internal.User, 0, len(names))
	for _, name := range names {
		u, err := reg.CreateUser(name, "")
		require.NoError(t, err)
		users = append(users, u)
	}

	settings := internal.DefaultSettings()
	settings.Rounds = 1
	room, err := reg.CreateRoom(users[0].SessionID, settings, "test room")
	require.NoError(t, err)

	for _, u := range users[1:] {
		require.NoError(t, reg.AddPlayer(room.ID, u.SessionID))
	}
	for _, u := range users {
		require.True(t, reg.UpdateUser(u.SessionID, func(user *internal.User) {
			user.CurrentRoom = room.ID
		}))
	}
	return room.ID, users
}

func currentRoom(t *testing.T, reg *registry.Registry, roomID string) internal.Room {
	t.Helper()
	room, ok := reg.GetRoom(roomID)
	require.True(t, ok)
	return room
}

func TestStartGameValidation(t *testing.T) {
	e, reg, _ := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")

	assert.ErrorIs(t, e.StartGame(users[1].SessionID), ErrNotHost)

	solo, err := reg.CreateUser("carol", "")
	require.NoError(t, err)
	soloRoom, err := reg.CreateRoom(solo.SessionID, internal.DefaultSettings(), "")
	require.NoError(t, err)
	reg.UpdateUser(solo.SessionID, func(u *internal.User) { u.CurrentRoom = soloRoom.ID })
	assert.ErrorIs(t, e.StartGame(solo.SessionID), ErrNotEnoughPlayers)

	require.NoError(t, e.StartGame(users[0].SessionID))
	assert.ErrorIs(t, e.StartGame(users[0].SessionID), ErrGameInProgress)
	e.CleanupRoom(roomID)
	e.CleanupRoom(soloRoom.ID)
}

func TestStartGameDealsFirstTurn(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	require.NoError(t, e.StartGame(users[0].SessionID))

	room := currentRoom(t, reg, roomID)
	assert.Equal(t, internal.StatusPlaying, room.Status)
	assert.Equal(t, internal.PhaseWordSelection, room.Game.Phase)
	assert.Equal(t, 1, room.Game.CurrentRound)
	assert.Len(t, room.Game.DrawerOrder, 2)
	assert.Contains(t, room.Game.DrawerOrder, users[0].SessionID)
	assert.Contains(t, room.Game.DrawerOrder, users[1].SessionID)
	assert.Equal(t, room.Game.DrawerOrder[0], room.Game.CurrentDrawer)
	assert.Len(t, room.Game.WordOptions, 3)

	require.Len(t, rec.ofType(internal.EventGameStarted), 1)
	require.Len(t, rec.ofType(internal.EventRoundStarted), 1)

	// The slate is broadcast to the room; clients gate who sees it.
	selections := rec.ofType(internal.EventWordSelectionStarted)
	require.Len(t, selections, 1)
	data := selections[0].payload.(internal.WordSelectionStartedData)
	assert.Equal(t, "room:"+roomID, selections[0].target)
	assert.Equal(t, room.Game.CurrentDrawer, data.DrawerID)
	assert.Len(t, data.Words, 3)
}

func TestSelectWord(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	require.NoError(t, e.StartGame(users[0].SessionID))
	room := currentRoom(t, reg, roomID)
	drawer := room.Game.CurrentDrawer
	other := users[0].SessionID
	if drawer == other {
		other = users[1].SessionID
	}
	word := room.Game.WordOptions[0]

	assert.ErrorIs(t, e.SelectWord(other, word), ErrNotYourTurn)
	assert.ErrorIs(t, e.SelectWord(drawer, ""), ErrWordRequired)
	assert.ErrorIs(t, e.SelectWord(drawer, "nosuchword"), ErrInvalidWord)

	rec.reset()
	require.NoError(t, e.SelectWord(drawer, word))

	room = currentRoom(t, reg, roomID)
	assert.Equal(t, internal.PhaseDrawing, room.Game.Phase)
	assert.Equal(t, word, room.Game.CurrentWord)
	assert.True(t, room.Game.WordsUsed[word])
	assert.False(t, room.Game.TurnStartTime.IsZero())

	// The drawer sees the word, everyone else the mask.
	selected := rec.ofType(internal.EventWordSelected)
	require.Len(t, selected, 2)
	for _, ev := range selected {
		data := ev.payload.(internal.WordSelectedData)
		if ev.target == "session:"+drawer {
			assert.Equal(t, word, data.Word)
			assert.False(t, data.AutoSelected)
		} else {
			assert.Empty(t, data.Word)
			assert.Equal(t, words.MaskedWord(word), data.WordHint)
			assert.Equal(t, len(word), data.WordLength)
		}
	}
	require.Len(t, rec.ofType(internal.EventDrawingStarted), 1)

	// A second selection is rejected once drawing began.
	assert.ErrorIs(t, e.SelectWord(drawer, word), ErrNotDrawing)
}

func TestAutoSelectWord(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	require.NoError(t, e.StartGame(users[0].SessionID))
	room := currentRoom(t, reg, roomID)
	options := room.Game.WordOptions

	rec.reset()
	e.autoSelectWord(roomID)

	room = currentRoom(t, reg, roomID)
	assert.Equal(t, internal.PhaseDrawing, room.Game.Phase)
	assert.Contains(t, options, room.Game.CurrentWord)

	selected := rec.ofType(internal.EventWordSelected)
	require.Len(t, selected, 2)
	for _, ev := range selected {
		assert.True(t, ev.payload.(internal.WordSelectedData).AutoSelected)
	}

	// A late expiry after the word is chosen is a no-op.
	rec.reset()
	e.autoSelectWord(roomID)
	assert.Empty(t, rec.ofType(internal.EventWordSelected))
}

// startDrawingPhase fast-forwards a fresh game into the drawing phase and
// returns the drawer and word.
func startDrawingPhase(t *testing.T, e *Engine, reg *registry.Registry, roomID string, host internal.User) (string, string) {
	t.Helper()
	require.NoError(t, e.StartGame(host.SessionID))
	drawer := currentRoom(t, reg, roomID).Game.CurrentDrawer
	word := currentRoom(t, reg, roomID).Game.WordOptions[0]
	require.NoError(t, e.SelectWord(drawer, word))
	return drawer, word
}

func TestSubmitGuessScoring(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby", "carol")
	defer e.CleanupRoom(roomID)

	drawer, word := startDrawingPhase(t, e, reg, roomID, users[0])

	var guesser internal.User
	for _, u := range users {
		if u.SessionID != drawer {
			guesser = u
			break
		}
	}

	assert.ErrorIs(t, e.SubmitGuess(drawer, word), ErrDrawerCannotGuess)
	assert.ErrorIs(t, e.SubmitGuess(guesser.SessionID, ""), ErrEmptyGuess)

	// Pin the turn clock so the speed bonus is predictable: 29.5s elapsed
	// of an 80s turn leaves 50.5s, worth 50*5 bonus points.
	require.NoError(t, reg.Update(roomID, func(room *internal.Room) error {
		room.Game.TurnStartTime = time.Now().Add(-29500 * time.Millisecond)
		return nil
	}))

	rec.reset()
	require.NoError(t, e.SubmitGuess(guesser.SessionID, "  "+word+"  "))

	correct := rec.ofType(internal.EventCorrectGuess)
	require.Len(t, correct, 1)
	data := correct[0].payload.(internal.CorrectGuessData)
	assert.Equal(t, guesser.SessionID, data.PlayerID)
	assert.Equal(t, word, data.Word)
	assert.Equal(t, 350, data.Score)
	assert.Equal(t, 250, data.SpeedBonus)
	assert.Equal(t, 350, data.Scores[guesser.SessionID])

	personal := rec.ofType(internal.EventGuessCorrect)
	require.Len(t, personal, 1)
	assert.Equal(t, "session:"+guesser.SessionID, personal[0].target)

	// Guessing again is rejected.
	assert.ErrorIs(t, e.SubmitGuess(guesser.SessionID, word), ErrAlreadyGuessed)

	// One guesser correct out of two: turn keeps going.
	assert.Empty(t, rec.ofType(internal.EventTurnEnded))
	assert.Equal(t, internal.PhaseDrawing, currentRoom(t, reg, roomID).Game.Phase)
}

func TestSubmitGuessWrongBecomesChat(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	drawer, _ := startDrawingPhase(t, e, reg, roomID, users[0])
	guesser := users[0].SessionID
	if guesser == drawer {
		guesser = users[1].SessionID
	}

	rec.reset()
	require.NoError(t, e.SubmitGuess(guesser, "Definitely Wrong"))

	chats := rec.ofType(internal.EventChatMessage)
	require.Len(t, chats, 1)
	data := chats[0].payload.(internal.ChatMessageData)
	assert.Equal(t, "guess", data.Type)
	assert.Equal(t, "definitely wrong", data.Message)
	assert.Empty(t, rec.ofType(internal.EventCorrectGuess))
}

func TestAllGuessedEndsTurnWithDrawerBonus(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	drawer, word := startDrawingPhase(t, e, reg, roomID, users[0])
	guesser := users[0].SessionID
	if guesser == drawer {
		guesser = users[1].SessionID
	}

	rec.reset()
	require.NoError(t, e.SubmitGuess(guesser, word))

	ended := rec.ofType(internal.EventTurnEnded)
	require.Len(t, ended, 1)
	data := ended[0].payload.(internal.TurnEndedData)
	assert.True(t, data.AllGuessed)
	assert.False(t, data.Timeout)
	assert.Equal(t, word, data.Word)
	assert.Equal(t, 50, data.Scores[drawer], "drawer bonus must land before the snapshot")
	assert.Equal(t, internal.PhaseResults, currentRoom(t, reg, roomID).Game.Phase)
}

func TestEndTurnIdempotent(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	startDrawingPhase(t, e, reg, roomID, users[0])

	rec.reset()
	e.EndTurn(roomID, true)
	e.EndTurn(roomID, true)

	ended := rec.ofType(internal.EventTurnEnded)
	require.Len(t, ended, 1)
	assert.True(t, ended[0].payload.(internal.TurnEndedData).Timeout)
}

func TestAdvanceTurnRotatesAndEndsGame(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	firstDrawer, _ := startDrawingPhase(t, e, reg, roomID, users[0])
	e.EndTurn(roomID, true)

	rec.reset()
	e.advanceTurn(roomID)

	room := currentRoom(t, reg, roomID)
	assert.Equal(t, internal.PhaseWordSelection, room.Game.Phase)
	assert.NotEqual(t, firstDrawer, room.Game.CurrentDrawer)
	assert.Equal(t, 1, room.Game.CurrentRound)

	// Second drawer finishes; with rounds=1 the game is over.
	word := room.Game.WordOptions[0]
	require.NoError(t, e.SelectWord(room.Game.CurrentDrawer, word))
	e.EndTurn(roomID, true)

	rec.reset()
	e.advanceTurn(roomID)

	room = currentRoom(t, reg, roomID)
	assert.Equal(t, internal.StatusEnded, room.Status)
	assert.Equal(t, internal.PhaseEnded, room.Game.Phase)

	endedEvents := rec.ofType(internal.EventGameEnded)
	require.Len(t, endedEvents, 1)
	data := endedEvents[0].payload.(internal.GameEndedData)
	require.NotNil(t, data.Winner)
	assert.Len(t, data.FinalResults, 2)
	assert.Equal(t, 1, data.TotalRounds)
}

func TestLeaveRoomDrawerDeparture(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby", "carol")
	defer e.CleanupRoom(roomID)

	drawer, _ := startDrawingPhase(t, e, reg, roomID, users[0])

	rec.reset()
	require.NoError(t, e.LeaveRoom(drawer, roomID))

	room := currentRoom(t, reg, roomID)
	assert.Len(t, room.Players, 2)
	assert.NotContains(t, room.Game.DrawerOrder, drawer)
	assert.Equal(t, internal.PhaseResults, room.Game.Phase)

	require.Len(t, rec.ofType(internal.EventPlayerLeft), 1)
	ended := rec.ofType(internal.EventTurnEnded)
	require.Len(t, ended, 1)
	assert.True(t, ended[0].payload.(internal.TurnEndedData).Timeout)
}

func TestLeaveRoomBelowMinimumEndsGame(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	startDrawingPhase(t, e, reg, roomID, users[0])

	rec.reset()
	require.NoError(t, e.LeaveRoom(users[1].SessionID, roomID))

	room := currentRoom(t, reg, roomID)
	assert.Equal(t, internal.StatusEnded, room.Status)
	require.Len(t, rec.ofType(internal.EventGameEnded), 1)
}

func TestLeaveRoomLastPlayerDeletesRoom(t *testing.T) {
	e, reg, _ := newTestEngine(t)

	user, err := reg.CreateUser("alice", "")
	require.NoError(t, err)
	room, err := reg.CreateRoom(user.SessionID, internal.DefaultSettings(), "")
	require.NoError(t, err)
	reg.UpdateUser(user.SessionID, func(u *internal.User) { u.CurrentRoom = room.ID })

	require.NoError(t, e.LeaveRoom(user.SessionID, room.ID))

	_, ok := reg.GetRoom(room.ID)
	assert.False(t, ok)
	got, _ := reg.GetUser(user.SessionID)
	assert.Empty(t, got.CurrentRoom)
}
