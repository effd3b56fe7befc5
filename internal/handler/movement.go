package handler

import (
	"github.com/steerstone/server/internal/net"
	"github.com/steerstone/server/internal/net/packet"
	"github.com/steerstone/server/internal/pathfinder"
	"go.uber.org/zap"
)

// HandleMoveTo processes MOVE_TO.
// Format: [opcode][D x][D y]
//
// The current walk stops and a search is queued from the avatar's present
// tile; MovementSystem picks up the result and walks it one tile per tick.
func HandleMoveTo(sess *net.Session, r *packet.Reader, deps *Deps) {
	x := r.ReadD()
	y := r.ReadD()

	p, rm := playerRoom(sess, deps)
	if rm == nil {
		return
	}
	if _, err := rm.Grid().OpenTile(x, y); err != nil {
		sendRoomError(sess, deps, roomErrorCode(err))
		return
	}

	h := p.Habbo
	h.StopWalking()
	h.Goal.X, h.Goal.Y = x, y

	id, ok := deps.Paths.Submit(pathfinder.Request{
		RoomID: rm.ID,
		Actor:  h.ID(),
		Grid:   rm.Grid(),
		Start:  h.Position(),
		Goal:   h.Goal,
	})
	if !ok {
		sess.Log().Warn("尋路佇列已滿", zap.Int32("room", rm.ID))
		p.PathRequest = ""
		sendPathBlocked(sess, deps, x, y)
		return
	}
	p.PathRequest = id
}

func sendPathBlocked(sess *net.Session, deps *Deps, x, y int32) {
	w := packet.NewWriter(packet.S_OPCODE_PATH_BLOCKED, deps.Enc)
	w.WriteD(x)
	w.WriteD(y)
	sess.Send(w.Bytes())
}
