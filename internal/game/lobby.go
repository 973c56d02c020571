package game

import (
	"log"

	"github.com/skribly/skribly-backend/internal"
	"github.com/skribly/skribly-backend/internal/registry"
)

// AttachToRoom binds an authenticated session to a room it already joined
// over HTTP, then announces the arrival. Returns the enriched room for the
// caller's room_joined reply.
func (e *Engine) AttachToRoom(sessionID, roomID string) (internal.EnrichedRoom, error) {
	room, ok := e.reg.GetRoom(roomID)
	if !ok {
		return internal.EnrichedRoom{}, registry.ErrRoomNotFound
	}
	if !room.HasPlayer(sessionID) {
		return internal.EnrichedRoom{}, registry.ErrNotInRoom
	}

	e.reg.UpdateUser(sessionID, func(u *internal.User) {
		u.CurrentRoom = roomID
	})

	enriched := e.reg.Enrich(room)
	e.bc.ToRoomExcept(roomID, sessionID, internal.EventPlayerJoined, internal.PlayerJoinedData{
		PlayerID: sessionID,
		Username: e.reg.Username(sessionID),
		Room:     enriched,
	})
	e.bc.ToRoomExcept(roomID, sessionID, internal.EventRoomUpdated, internal.RoomUpdatedData{
		Room:  enriched,
		Event: internal.EventPlayerJoined,
	})
	return enriched, nil
}

// LeaveRoom removes a player and repairs the game around the hole they
// leave: drawer departure ends the turn, dropping below two players ends
// the game, and an emptied room is torn down with its timers.
func (e *Engine) LeaveRoom(sessionID, roomID string) error {
	username := e.reg.Username(sessionID)

	before, ok := e.reg.GetRoom(roomID)
	if !ok {
		return registry.ErrRoomNotFound
	}
	wasDrawer := before.Game.CurrentDrawer == sessionID
	midTurn := before.Game.Phase == internal.PhaseDrawing || before.Game.Phase == internal.PhaseWordSelection

	updated, err := e.reg.RemovePlayer(roomID, sessionID)
	if err != nil {
		return err
	}
	e.reg.UpdateUser(sessionID, func(u *internal.User) {
		if u.CurrentRoom == roomID {
			u.CurrentRoom = ""
		}
	})

	if updated == nil {
		log.Printf("[Engine.LeaveRoom] room=%s: last player left, room deleted", roomID)
		e.CleanupRoom(roomID)
		return nil
	}

	// Drop the leaver from the drawer rotation.
	e.reg.Update(roomID, func(room *internal.Room) error {
		g := &room.Game
		for i, sid := range g.DrawerOrder {
			if sid == sessionID {
				g.DrawerOrder = append(g.DrawerOrder[:i], g.DrawerOrder[i+1:]...)
				if i < g.CurrentDrawerIndex {
					g.CurrentDrawerIndex--
				}
				break
			}
		}
		return nil
	})

	newHost := ""
	if before.Host == sessionID {
		newHost = updated.Host
	}
	e.bc.ToRoom(roomID, internal.EventPlayerLeft, internal.PlayerLeftData{
		PlayerID: sessionID,
		Username: username,
		NewHost:  newHost,
	})
	if enriched, ok := e.reg.EnrichedRoom(roomID); ok {
		e.bc.ToRoom(roomID, internal.EventRoomUpdated, internal.RoomUpdatedData{
			Room:  enriched,
			Event: internal.EventPlayerLeft,
		})
	}

	if updated.Status != internal.StatusPlaying {
		return nil
	}

	if len(updated.Players) < internal.MinPlayersToStart {
		log.Printf("[Engine.LeaveRoom] room=%s: too few players left, ending game", roomID)
		e.endGame(roomID)
		return nil
	}
	if wasDrawer && midTurn {
		log.Printf("[Engine.LeaveRoom] room=%s: drawer left mid-turn, ending turn", roomID)
		e.EndTurn(roomID, true)
	}
	return nil
}
