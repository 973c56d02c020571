package game

import (
	"github.com/skribly/skribly-backend/internal"
)

// StrokeInput is an inbound draw event payload. Pointer fields distinguish
// absent from zero so missing coordinates can be rejected.
type StrokeInput struct {
	X     *float64 `json:"x"`
	Y     *float64 `json:"y"`
	Color string   `json:"color"`
	Size  *float64 `json:"size"`
	Tool  string   `json:"tool"`
}

const (
	minBrushSize = 1
	maxBrushSize = 50
)

func validTool(tool string) bool {
	return tool == "brush" || tool == "eraser"
}

// drawerRoom resolves the caller's room and verifies they hold the pen.
func (e *Engine) drawerRoom(sessionID string) (internal.Room, error) {
	roomID, err := e.roomFor(sessionID)
	if err != nil {
		return internal.Room{}, err
	}
	room, ok := e.reg.GetRoom(roomID)
	if !ok {
		return internal.Room{}, ErrNotInRoom
	}
	if room.Status != internal.StatusPlaying || room.Game.Phase != internal.PhaseDrawing {
		return internal.Room{}, ErrGameNotInProgress
	}
	if room.Game.CurrentDrawer != sessionID {
		return internal.Room{}, ErrNotYourTurnDraw
	}
	return room, nil
}

// DrawStart begins a stroke. Coordinates are required; color, size and tool
// carry the stroke style to every other player.
func (e *Engine) DrawStart(sessionID string, in StrokeInput) error {
	room, err := e.drawerRoom(sessionID)
	if err != nil {
		return err
	}
	if in.X == nil || in.Y == nil {
		return ErrInvalidStroke
	}
	if in.Size != nil && (*in.Size < minBrushSize || *in.Size > maxBrushSize) {
		return ErrInvalidBrushSize
	}
	if in.Tool != "" && !validTool(in.Tool) {
		return ErrInvalidTool
	}

	size := 5.0
	if in.Size != nil {
		size = *in.Size
	}
	tool := in.Tool
	if tool == "" {
		tool = "brush"
	}

	e.bc.ToRoomExcept(room.ID, sessionID, internal.EventDrawData, internal.DrawData{
		Type:      "start",
		X:         in.X,
		Y:         in.Y,
		Color:     in.Color,
		Size:      size,
		Tool:      tool,
		Timestamp: internal.Now(),
	})
	return nil
}

// DrawMove extends the current stroke.
func (e *Engine) DrawMove(sessionID string, in StrokeInput) error {
	room, err := e.drawerRoom(sessionID)
	if err != nil {
		return err
	}
	if in.X == nil || in.Y == nil {
		return ErrInvalidStroke
	}

	e.bc.ToRoomExcept(room.ID, sessionID, internal.EventDrawData, internal.DrawData{
		Type:      "move",
		X:         in.X,
		Y:         in.Y,
		Timestamp: internal.Now(),
	})
	return nil
}

// DrawEnd closes the current stroke.
func (e *Engine) DrawEnd(sessionID string) error {
	room, err := e.drawerRoom(sessionID)
	if err != nil {
		return err
	}

	e.bc.ToRoomExcept(room.ID, sessionID, internal.EventDrawData, internal.DrawData{
		Type:      "end",
		Timestamp: internal.Now(),
	})
	return nil
}

// ClearCanvas wipes the board. Allowed for the drawer and the host.
func (e *Engine) ClearCanvas(sessionID string) error {
	roomID, err := e.roomFor(sessionID)
	if err != nil {
		return err
	}
	room, ok := e.reg.GetRoom(roomID)
	if !ok {
		return ErrNotInRoom
	}
	if sessionID != room.Game.CurrentDrawer && sessionID != room.Host {
		return ErrCannotClear
	}

	e.bc.ToRoom(roomID, internal.EventCanvasCleared, internal.CanvasClearedData{
		Timestamp: internal.Now(),
		ClearedBy: e.reg.Username(sessionID),
	})
	return nil
}

// ChangeTool switches the drawer's tool or stroke style mid-turn.
func (e *Engine) ChangeTool(sessionID string, in StrokeInput) error {
	room, err := e.drawerRoom(sessionID)
	if err != nil {
		return err
	}
	if in.Tool != "" && !validTool(in.Tool) {
		return ErrInvalidTool
	}
	if in.Size != nil && (*in.Size < minBrushSize || *in.Size > maxBrushSize) {
		return ErrInvalidBrushSize
	}

	out := internal.ToolChangedData{
		Tool:  in.Tool,
		Color: in.Color,
		User:  e.reg.Username(sessionID),
	}
	if in.Size != nil {
		out.Size = *in.Size
	}
	e.bc.ToRoomExcept(room.ID, sessionID, internal.EventToolChanged, out)
	return nil
}
