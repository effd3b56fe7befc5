package handler

import (
	"context"

	"github.com/steerstone/server/internal/catalogue"
	"github.com/steerstone/server/internal/config"
	"github.com/steerstone/server/internal/core/event"
	"github.com/steerstone/server/internal/data"
	"github.com/steerstone/server/internal/net"
	"github.com/steerstone/server/internal/net/packet"
	"github.com/steerstone/server/internal/pathfinder"
	"github.com/steerstone/server/internal/persist"
	"github.com/steerstone/server/internal/room"
	"github.com/steerstone/server/internal/scripting"
	"github.com/steerstone/server/internal/world"
	"go.uber.org/zap"
	"golang.org/x/text/encoding"
)

// AccountStore is the account persistence used by login and disconnect.
// *persist.AccountRepo satisfies it.
type AccountStore interface {
	Load(ctx context.Context, name string) (*persist.AccountRow, error)
	Create(ctx context.Context, name, rawPassword, ip string) (*persist.AccountRow, error)
	UpdateLastActive(ctx context.Context, name, ip string) error
	SetOnline(ctx context.Context, name string, online bool) error
}

// ItemStore persists placed furniture. *persist.ItemRepo satisfies it.
type ItemStore interface {
	Insert(ctx context.Context, it persist.ItemRow) (int32, error)
	Delete(ctx context.Context, id int32) error
	UpdateState(ctx context.Context, id, state int32) error
}

// PathQueue accepts path searches. *pathfinder.Pool satisfies it.
type PathQueue interface {
	Submit(req pathfinder.Request) (string, bool)
}

// Deps holds shared dependencies injected into all packet handlers.
type Deps struct {
	Accounts  AccountStore
	Items     ItemStore
	Config    *config.Config
	Log       *zap.Logger
	World     *world.State
	Rooms     *room.Manager
	Paths     PathQueue
	Furniture *data.FurnitureTable
	Catalogue *catalogue.Manager
	Scripting *scripting.Engine // nil = static can_walk flags only
	Bus       *event.Bus
	Enc       encoding.Encoding // client string encoding
}

// RegisterAll registers all packet handlers into the registry.
func RegisterAll(reg *packet.Registry, deps *Deps) {
	reg.Register(packet.C_OPCODE_LOGIN,
		[]packet.SessionState{packet.StateConnected},
		func(sess any, r *packet.Reader) {
			HandleLogin(sess.(*net.Session), r, deps)
		},
	)

	lobbyStates := []packet.SessionState{packet.StateAuthenticated, packet.StateInRoom}

	reg.Register(packet.C_OPCODE_ENTER_ROOM, lobbyStates,
		func(sess any, r *packet.Reader) {
			HandleEnterRoom(sess.(*net.Session), r, deps)
		},
	)

	inRoomStates := []packet.SessionState{packet.StateInRoom}

	reg.Register(packet.C_OPCODE_LEAVE_ROOM, inRoomStates,
		func(sess any, r *packet.Reader) {
			HandleLeaveRoom(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_MOVE_TO, inRoomStates,
		func(sess any, r *packet.Reader) {
			HandleMoveTo(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_PLACE_ITEM, inRoomStates,
		func(sess any, r *packet.Reader) {
			HandlePlaceItem(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_PICKUP_ITEM, inRoomStates,
		func(sess any, r *packet.Reader) {
			HandlePickupItem(sess.(*net.Session), r, deps)
		},
	)
	reg.Register(packet.C_OPCODE_USE_ITEM, inRoomStates,
		func(sess any, r *packet.Reader) {
			HandleUseItem(sess.(*net.Session), r, deps)
		},
	)
}

// playerRoom returns the player's room, or nils when the session is not in one.
func playerRoom(sess *net.Session, deps *Deps) (*world.Player, *room.Room) {
	p := deps.World.GetBySession(sess.ID)
	if p == nil || !p.InRoom() {
		return nil, nil
	}
	r := deps.Rooms.Get(p.RoomID)
	if r == nil {
		return p, nil
	}
	return p, r
}
