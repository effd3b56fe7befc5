package handler

import (
	"errors"

	"github.com/steerstone/server/internal/core/event"
	"github.com/steerstone/server/internal/net"
	"github.com/steerstone/server/internal/net/packet"
	"github.com/steerstone/server/internal/room"
	"github.com/steerstone/server/internal/world"
	"go.uber.org/zap"
)

// HandleEnterRoom processes ENTER_ROOM.
// Format: [opcode][D room id]
func HandleEnterRoom(sess *net.Session, r *packet.Reader, deps *Deps) {
	roomID := r.ReadD()

	p := deps.World.GetBySession(sess.ID)
	if p == nil {
		return
	}
	rm := deps.Rooms.Get(roomID)
	if rm == nil {
		sendRoomError(sess, deps, packet.RoomErrNotFound)
		return
	}
	if p.InRoom() {
		leaveRoom(p, deps)
	}

	h := deps.World.NewHabbo(p, rm.ID)
	if err := rm.Enter(h); err != nil {
		deps.World.ClearHabbo(p)
		sess.SetState(packet.StateAuthenticated)
		if errors.Is(err, room.ErrTileOccupied) {
			sendRoomError(sess, deps, packet.RoomErrDoorOccupied)
		} else {
			deps.Log.Error("進入房間失敗", zap.Int32("room", rm.ID), zap.Error(err))
			sendRoomError(sess, deps, packet.RoomErrInternal)
		}
		return
	}
	sess.SetState(packet.StateInRoom)

	sendRoomReady(sess, deps, rm, h)
	for _, other := range rm.Actors() {
		if other.ID() != h.ID() {
			sess.Send(buildUserUpdate(deps, other, other.IsWalking()))
		}
	}
	for _, f := range rm.Items() {
		sess.Send(buildItemAdd(deps, rm, f))
	}

	event.Emit(deps.Bus, event.ActorEntered{RoomID: rm.ID, ActorID: h.ID(), SessionID: sess.ID})
	deps.Log.Debug("玩家進入房間", zap.String("name", p.Name), zap.Int32("room", rm.ID))
}

// HandleLeaveRoom processes LEAVE_ROOM. No payload.
func HandleLeaveRoom(sess *net.Session, _ *packet.Reader, deps *Deps) {
	p := deps.World.GetBySession(sess.ID)
	if p == nil || !p.InRoom() {
		return
	}
	leaveRoom(p, deps)
	sess.SetState(packet.StateAuthenticated)
}

// leaveRoom removes p's avatar from its room and announces it.
func leaveRoom(p *world.Player, deps *Deps) {
	roomID := p.RoomID
	h := p.Habbo
	if rm := deps.Rooms.Get(roomID); rm != nil {
		rm.Leave(h.ID())
	}
	deps.World.ClearHabbo(p)
	event.Emit(deps.Bus, event.ActorLeft{RoomID: roomID, ActorID: h.ID(), SessionID: p.SessionID})
}

// sendRoomReady sends the room header, the caller's own avatar ID and the
// tile map in row-major order.
func sendRoomReady(sess *net.Session, deps *Deps, rm *room.Room, h *room.Habbo) {
	g := rm.Grid()
	door := rm.Door()

	w := packet.NewWriter(packet.S_OPCODE_ROOM_READY, deps.Enc)
	w.WriteD(rm.ID)
	w.WriteS(rm.Name)
	w.WriteD(int32(h.ID()))
	w.WriteD(g.Width())
	w.WriteD(g.Height())
	w.WriteD(door.X)
	w.WriteD(door.Y)
	w.WriteC(byte(h.Heading()))
	g.Each(func(t *room.TileInstance) {
		w.WriteC(byte(t.GetTileState()))
		w.WriteF(t.GetTileHeight())
	})
	sess.Send(w.Bytes())
}

func sendRoomError(sess *net.Session, deps *Deps, reason byte) {
	w := packet.NewWriter(packet.S_OPCODE_ROOM_ERROR, deps.Enc)
	w.WriteC(reason)
	sess.Send(w.Bytes())
}

// roomErrorCode maps room errors to ROOM_ERROR reasons.
func roomErrorCode(err error) byte {
	switch {
	case errors.Is(err, room.ErrTileNotFound):
		return packet.RoomErrTileNotFound
	case errors.Is(err, room.ErrTileClosed):
		return packet.RoomErrTileClosed
	case errors.Is(err, room.ErrTileOccupied):
		return packet.RoomErrTileOccupied
	case errors.Is(err, room.ErrItemStacked):
		return packet.RoomErrItemStacked
	case errors.Is(err, room.ErrItemNotFound):
		return packet.RoomErrItemNotFound
	default:
		return packet.RoomErrInternal
	}
}
