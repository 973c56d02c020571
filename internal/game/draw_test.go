package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skribly/skribly-backend/internal"
)

func f(v float64) *float64 { return &v }

func TestDrawStartPermissionsAndValidation(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	drawer, _ := startDrawingPhase(t, e, reg, roomID, users[0])
	other := users[0].SessionID
	if other == drawer {
		other = users[1].SessionID
	}

	stroke := StrokeInput{X: f(10), Y: f(20), Color: "#ff0000", Size: f(5), Tool: "brush"}

	assert.ErrorIs(t, e.DrawStart(other, stroke), ErrNotYourTurnDraw)
	assert.ErrorIs(t, e.DrawStart(drawer, StrokeInput{X: f(10)}), ErrInvalidStroke)
	assert.ErrorIs(t, e.DrawStart(drawer, StrokeInput{X: f(1), Y: f(1), Size: f(200)}), ErrInvalidBrushSize)
	assert.ErrorIs(t, e.DrawStart(drawer, StrokeInput{X: f(1), Y: f(1), Tool: "flamethrower"}), ErrInvalidTool)

	rec.reset()
	require.NoError(t, e.DrawStart(drawer, stroke))
	require.NoError(t, e.DrawMove(drawer, StrokeInput{X: f(11), Y: f(21)}))
	require.NoError(t, e.DrawEnd(drawer))

	relayed := rec.ofType(internal.EventDrawData)
	require.Len(t, relayed, 3)
	for _, ev := range relayed {
		// The drawer never receives their own strokes back.
		assert.Equal(t, "room:"+roomID+":except:"+drawer, ev.target)
	}
	assert.Equal(t, "start", relayed[0].payload.(internal.DrawData).Type)
	assert.Equal(t, "move", relayed[1].payload.(internal.DrawData).Type)
	assert.Equal(t, "end", relayed[2].payload.(internal.DrawData).Type)
}

func TestDrawOutsideDrawingPhase(t *testing.T) {
	e, reg, _ := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	// Game not started yet.
	err := e.DrawStart(users[0].SessionID, StrokeInput{X: f(1), Y: f(1)})
	assert.ErrorIs(t, err, ErrGameNotInProgress)
}

func TestClearCanvas(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby", "carol")
	defer e.CleanupRoom(roomID)

	drawer, _ := startDrawingPhase(t, e, reg, roomID, users[0])

	var bystander internal.User
	for _, u := range users {
		if u.SessionID != drawer && u.SessionID != users[0].SessionID {
			bystander = u
			break
		}
	}
	if bystander.SessionID != "" {
		assert.ErrorIs(t, e.ClearCanvas(bystander.SessionID), ErrCannotClear)
	}

	rec.reset()
	require.NoError(t, e.ClearCanvas(drawer))
	// Host may clear too, even when not drawing.
	require.NoError(t, e.ClearCanvas(users[0].SessionID))

	cleared := rec.ofType(internal.EventCanvasCleared)
	require.NotEmpty(t, cleared)
	assert.Equal(t, "room:"+roomID, cleared[0].target)
}

func TestChangeTool(t *testing.T) {
	e, reg, rec := newTestEngine(t)
	roomID, users := setupRoom(t, reg, "alice", "bobby")
	defer e.CleanupRoom(roomID)

	drawer, _ := startDrawingPhase(t, e, reg, roomID, users[0])

	assert.ErrorIs(t, e.ChangeTool(drawer, StrokeInput{Tool: "chainsaw"}), ErrInvalidTool)

	rec.reset()
	require.NoError(t, e.ChangeTool(drawer, StrokeInput{Tool: "eraser", Size: f(12)}))

	changed := rec.ofType(internal.EventToolChanged)
	require.Len(t, changed, 1)
	data := changed[0].payload.(internal.ToolChangedData)
	assert.Equal(t, "eraser", data.Tool)
	assert.Equal(t, 12.0, data.Size)
}
