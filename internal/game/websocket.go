package game

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/registry"
	"github.com/skribly/skribly-backend/internal/ws"
)

// Router turns raw socket events into engine calls. It is the ws.Handler
// for the hub.
type Router struct {
	reg    *registry.Registry
	hub    *ws.Hub
	engine *Engine
}

func NewRouter(reg *registry.Registry, hub *ws.Hub, engine *Engine) *Router {
	return &Router{reg: reg, hub: hub, engine: engine}
}

// Inbound payloads. Kept tiny and local; outbound shapes live in internal.
type (
	authPayload struct {
		UserID string `json:"user_id"`
	}
	roomPayload struct {
		RoomID string `json:"room_id"`
	}
	wordPayload struct {
		Word string `json:"word"`
	}
	guessPayload struct {
		Guess string `json:"guess"`
	}
	chatPayload struct {
		Message string `json:"message"`
	}
)

func (rt *Router) HandleConnect(c *ws.Client) {
	sid := c.Session()
	if sid != "" {
		if user, ok := rt.reg.GetUser(sid); ok {
			c.Send(internal.EventConnectionConfirmed, internal.ConnectionConfirmedData{
				Message:  "Connected to game server",
				UserID:   user.SessionID,
				Username: user.Username,
				Status:   "connected",
			})
			return
		}
	}
	c.Send(internal.EventConnectionConfirmed, internal.ConnectionConfirmedData{
		Message: "Connected, authentication required",
		Status:  "connected_anonymous",
	})
}

// HandleDisconnect only announces the drop. The user stays in the room so a
// reconnect picks up where they left off; leaving is always explicit.
func (rt *Router) HandleDisconnect(c *ws.Client) {
	sid := c.Session()
	if sid == "" {
		return
	}
	user, ok := rt.reg.GetUser(sid)
	if !ok || user.CurrentRoom == "" {
		return
	}
	log.Printf("[Router.HandleDisconnect] room=%s: %s disconnected", user.CurrentRoom, user.Username)
	rt.hub.ToRoom(user.CurrentRoom, internal.EventPlayerDisconnected, internal.PlayerDisconnectedData{
		PlayerID: sid,
		Username: user.Username,
	})
}

func (rt *Router) HandleEvent(c *ws.Client, event string, data json.RawMessage) {
	switch event {
	case internal.EventAuthenticate:
		rt.authenticate(c, data)
		return
	}

	sid := c.Session()
	if sid == "" {
		rt.sendError(c, "Authentication required, send authenticate first")
		return
	}

	var err error
	switch event {
	case internal.EventJoinRoom:
		err = rt.joinRoom(c, sid, data)
	case internal.EventLeaveRoom:
		err = rt.leaveRoom(c, sid, data)
	case internal.EventGetRoomInfo:
		err = rt.roomInfo(c, data)
	case internal.EventStartGame:
		err = rt.engine.StartGame(sid)
	case internal.EventSelectWord:
		var p wordPayload
		if err = json.Unmarshal(data, &p); err == nil {
			err = rt.engine.SelectWord(sid, p.Word)
		}
	case internal.EventSubmitGuess:
		var p guessPayload
		if err = json.Unmarshal(data, &p); err == nil {
			err = rt.engine.SubmitGuess(sid, p.Guess)
		}
	case internal.EventSendChat:
		var p chatPayload
		if err = json.Unmarshal(data, &p); err == nil {
			err = rt.engine.SendChat(sid, p.Message)
		}
	case internal.EventDrawStart:
		var in StrokeInput
		if err = json.Unmarshal(data, &in); err == nil {
			err = rt.engine.DrawStart(sid, in)
		}
	case internal.EventDrawMove:
		var in StrokeInput
		if err = json.Unmarshal(data, &in); err == nil {
			err = rt.engine.DrawMove(sid, in)
		}
	case internal.EventDrawEnd:
		err = rt.engine.DrawEnd(sid)
	case internal.EventClearCanvas:
		err = rt.engine.ClearCanvas(sid)
	case internal.EventChangeTool:
		var in StrokeInput
		if err = json.Unmarshal(data, &in); err == nil {
			err = rt.engine.ChangeTool(sid, in)
		}
	case internal.EventTurnTimeout:
		err = rt.turnTimeout(sid, data)
	default:
		rt.sendError(c, "Unknown event: "+event)
		return
	}

	if err != nil {
		rt.sendError(c, err.Error())
	}
}

func (rt *Router) authenticate(c *ws.Client, data json.RawMessage) {
	var p authPayload
	if err := json.Unmarshal(data, &p); err != nil || p.UserID == "" {
		c.Send(internal.EventAuthFailed, internal.ErrorData{Message: "user_id is required"})
		return
	}
	user, ok := rt.reg.GetUser(p.UserID)
	if !ok {
		c.Send(internal.EventAuthFailed, internal.ErrorData{Message: "Unknown session, create one over HTTP first"})
		return
	}
	rt.hub.Bind(c, user.SessionID)
	log.Printf("[Router.authenticate] socket=%s bound to user %s", c.ID(), user.Username)
	c.Send(internal.EventAuthSuccess, internal.AuthSuccessData{
		Message: "Authenticated as " + user.Username,
		User:    user,
	})
}

func (rt *Router) joinRoom(c *ws.Client, sid string, data json.RawMessage) error {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return errors.New("room_id is required")
	}
	enriched, err := rt.engine.AttachToRoom(sid, p.RoomID)
	if err != nil {
		if errors.Is(err, registry.ErrNotInRoom) {
			return errors.New("join the room over HTTP before connecting")
		}
		return err
	}
	user, _ := rt.reg.GetUser(sid)
	c.Send(internal.EventRoomJoined, internal.RoomJoinedData{Room: enriched, User: user})
	return nil
}

func (rt *Router) leaveRoom(c *ws.Client, sid string, data json.RawMessage) error {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return errors.New("room_id is required")
	}
	roomID := p.RoomID
	if roomID == "" {
		if user, ok := rt.reg.GetUser(sid); ok {
			roomID = user.CurrentRoom
		}
	}
	if roomID == "" {
		return ErrNotInRoom
	}
	if err := rt.engine.LeaveRoom(sid, roomID); err != nil {
		return err
	}
	c.Send(internal.EventRoomLeft, internal.RoomLeftData{Success: true, RoomID: roomID})
	return nil
}

func (rt *Router) roomInfo(c *ws.Client, data json.RawMessage) error {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return errors.New("room_id is required")
	}
	enriched, ok := rt.reg.EnrichedRoom(p.RoomID)
	if !ok {
		return registry.ErrRoomNotFound
	}
	c.Send(internal.EventRoomInfo, internal.RoomInfoData{Room: enriched})
	return nil
}

// turnTimeout lets a client report an expired draw clock. The server clock
// is authoritative; this only ends the turn when it really is over.
func (rt *Router) turnTimeout(sid string, data json.RawMessage) error {
	var p roomPayload
	if err := json.Unmarshal(data, &p); err != nil || p.RoomID == "" {
		return errors.New("room_id is required")
	}
	room, ok := rt.reg.GetRoom(p.RoomID)
	if !ok {
		return registry.ErrRoomNotFound
	}
	if !room.HasPlayer(sid) {
		return ErrNotInRoom
	}
	if room.Game.Phase != internal.PhaseDrawing {
		return nil
	}
	if rt.engine.Timers().Remaining(p.RoomID) > time.Second {
		return nil
	}
	rt.engine.EndTurn(p.RoomID, true)
	return nil
}

func (rt *Router) sendError(c *ws.Client, message string) {
	c.Send(internal.EventError, internal.ErrorData{Message: message})
}
