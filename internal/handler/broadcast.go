package handler

import (
	"github.com/steerstone/server/internal/core/event"
	"github.com/steerstone/server/internal/net/packet"
	"github.com/steerstone/server/internal/room"
)

// SubscribeBroadcasts turns room events into packets for everyone in the
// room. Events are delivered one tick after they were emitted, so each
// subscriber re-reads live state and skips what has gone since.
func SubscribeBroadcasts(deps *Deps) {
	event.Subscribe(deps.Bus, func(e event.ActorEntered) {
		rm := deps.Rooms.Get(e.RoomID)
		if rm == nil {
			return
		}
		h := rm.Actor(e.ActorID)
		if h == nil {
			return
		}
		broadcastToRoom(deps, e.RoomID, buildUserUpdate(deps, h, h.IsWalking()))
	})

	event.Subscribe(deps.Bus, func(e event.ActorLeft) {
		broadcastToRoom(deps, e.RoomID, buildUserRemove(deps, e.ActorID))
	})

	event.Subscribe(deps.Bus, func(e event.ActorWalked) {
		w := packet.NewWriter(packet.S_OPCODE_USER_UPDATE, deps.Enc)
		name := ""
		if p := deps.World.GetByActor(e.ActorID); p != nil {
			name = p.Name
		}
		writeUser(w, e.ActorID, name, e.X, e.Y, e.Z, e.Heading, e.Moving)
		broadcastToRoom(deps, e.RoomID, w.Bytes())
	})

	event.Subscribe(deps.Bus, func(e event.ItemPlaced) {
		rm := deps.Rooms.Get(e.RoomID)
		if rm == nil {
			return
		}
		f := rm.Item(e.ItemID)
		if f == nil {
			return
		}
		broadcastToRoom(deps, e.RoomID, buildItemAdd(deps, rm, f))
	})

	event.Subscribe(deps.Bus, func(e event.ItemRemoved) {
		w := packet.NewWriter(packet.S_OPCODE_ITEM_REMOVE, deps.Enc)
		w.WriteD(e.ItemID)
		broadcastToRoom(deps, e.RoomID, w.Bytes())
	})

	event.Subscribe(deps.Bus, func(e event.ItemUpdated) {
		rm := deps.Rooms.Get(e.RoomID)
		if rm == nil {
			return
		}
		f := rm.Item(e.ItemID)
		if f == nil {
			return
		}
		w := packet.NewWriter(packet.S_OPCODE_ITEM_UPDATE, deps.Enc)
		w.WriteD(f.ID)
		w.WriteD(f.State())
		w.WriteBool(f.CanBeWalkedOn())
		broadcastToRoom(deps, e.RoomID, w.Bytes())
	})

	event.Subscribe(deps.Bus, func(e event.PathBlocked) {
		p := deps.World.GetBySession(e.SessionID)
		if p == nil || p.Session == nil {
			return
		}
		sendPathBlocked(p.Session, deps, e.GoalX, e.GoalY)
	})
}

// broadcastToRoom sends data to every player with an avatar in the room.
func broadcastToRoom(deps *Deps, roomID int32, data []byte) {
	for _, p := range deps.World.InRoom(roomID) {
		if p.Session != nil {
			p.Session.Send(data)
		}
	}
}

func writeUser(w *packet.Writer, id room.ActorID, name string, x, y int32, z float64, heading int32, moving bool) {
	w.WriteD(int32(id))
	w.WriteS(name)
	w.WriteD(x)
	w.WriteD(y)
	w.WriteF(z)
	w.WriteC(byte(heading))
	w.WriteBool(moving)
}

// buildUserUpdate builds USER_UPDATE for an avatar's current position.
func buildUserUpdate(deps *Deps, h *room.Habbo, moving bool) []byte {
	w := packet.NewWriter(packet.S_OPCODE_USER_UPDATE, deps.Enc)
	pos := h.Position()
	writeUser(w, h.ID(), h.Name, pos.X, pos.Y, h.Z(), h.Heading(), moving)
	return w.Bytes()
}

func buildUserRemove(deps *Deps, id room.ActorID) []byte {
	w := packet.NewWriter(packet.S_OPCODE_USER_REMOVE, deps.Enc)
	w.WriteD(int32(id))
	return w.Bytes()
}

// buildItemAdd builds ITEM_ADD. The height sent is the tile height the item
// rests on.
func buildItemAdd(deps *Deps, rm *room.Room, f *room.Furniture) []byte {
	base := 0.0
	if t, err := rm.Grid().Tile(f.X, f.Y); err == nil {
		base = t.GetTileHeight()
	}
	w := packet.NewWriter(packet.S_OPCODE_ITEM_ADD, deps.Enc)
	w.WriteD(f.ID)
	w.WriteD(f.DefID)
	w.WriteD(f.X)
	w.WriteD(f.Y)
	w.WriteF(base)
	w.WriteD(f.State())
	w.WriteBool(f.CanBeWalkedOn())
	w.WriteS(f.OwnerName)
	return w.Bytes()
}
