package handler

import (
	"context"
	"time"

	"github.com/steerstone/server/internal/core/event"
	"github.com/steerstone/server/internal/data"
	"github.com/steerstone/server/internal/net"
	"github.com/steerstone/server/internal/net/packet"
	"github.com/steerstone/server/internal/persist"
	"github.com/steerstone/server/internal/room"
	"github.com/steerstone/server/internal/scripting"
	"github.com/steerstone/server/internal/world"
	"go.uber.org/zap"
)

// HandlePlaceItem processes PLACE_ITEM: buy a catalogue offer and put it on
// a tile.
// Format: [opcode][D offer id][D x][D y]
func HandlePlaceItem(sess *net.Session, r *packet.Reader, deps *Deps) {
	offerID := r.ReadD()
	x := r.ReadD()
	y := r.ReadD()

	p, rm := playerRoom(sess, deps)
	if rm == nil {
		return
	}
	offer := deps.Catalogue.Offer(offerID)
	if offer == nil {
		sendRoomError(sess, deps, packet.RoomErrUnknownOffer)
		return
	}

	// Check the tile before touching the database.
	t, err := rm.Grid().OpenTile(x, y)
	if err != nil {
		sendRoomError(sess, deps, roomErrorCode(err))
		return
	}
	if t.GetItem() != nil {
		sendRoomError(sess, deps, packet.RoomErrItemStacked)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	id, err := deps.Items.Insert(ctx, persist.ItemRow{
		RoomID:    rm.ID,
		DefID:     offer.Def.ID,
		OwnerName: p.Name,
		X:         x,
		Y:         y,
	})
	if err != nil {
		deps.Log.Error("家具存檔失敗", zap.Int32("room", rm.ID), zap.Error(err))
		sendRoomError(sess, deps, packet.RoomErrInternal)
		return
	}

	f := NewRoomFurniture(deps, id, offer.Def, p.Name, x, y, 0)
	if err := rm.PlaceItem(f); err != nil {
		if derr := deps.Items.Delete(ctx, id); derr != nil {
			deps.Log.Error("家具回滾失敗", zap.Int32("item", id), zap.Error(derr))
		}
		sendRoomError(sess, deps, roomErrorCode(err))
		return
	}

	event.Emit(deps.Bus, event.ItemPlaced{RoomID: rm.ID, ItemID: f.ID})
}

// HandlePickupItem processes PICKUP_ITEM. Owners and staff only.
// Format: [opcode][D item id]
func HandlePickupItem(sess *net.Session, r *packet.Reader, deps *Deps) {
	itemID := r.ReadD()

	p, rm := playerRoom(sess, deps)
	if rm == nil {
		return
	}
	f := rm.Item(itemID)
	if f == nil {
		sendRoomError(sess, deps, packet.RoomErrItemNotFound)
		return
	}
	if !canManage(p, f, deps) {
		sendRoomError(sess, deps, packet.RoomErrNotOwner)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := deps.Items.Delete(ctx, itemID); err != nil {
		deps.Log.Error("家具刪除失敗", zap.Int32("item", itemID), zap.Error(err))
		sendRoomError(sess, deps, packet.RoomErrInternal)
		return
	}
	if _, err := rm.RemoveItem(itemID); err != nil {
		sendRoomError(sess, deps, roomErrorCode(err))
		return
	}

	event.Emit(deps.Bus, event.ItemRemoved{RoomID: rm.ID, ItemID: itemID})
}

// HandleUseItem processes USE_ITEM: advance the furniture's interaction
// state and recompute whether it can be walked on.
// Format: [opcode][D item id]
func HandleUseItem(sess *net.Session, r *packet.Reader, deps *Deps) {
	itemID := r.ReadD()

	_, rm := playerRoom(sess, deps)
	if rm == nil {
		return
	}
	f := rm.Item(itemID)
	if f == nil {
		sendRoomError(sess, deps, packet.RoomErrItemNotFound)
		return
	}
	def := deps.Furniture.Get(f.DefID)
	if def == nil {
		sendRoomError(sess, deps, packet.RoomErrInternal)
		return
	}

	next := int32(0)
	if deps.Scripting != nil {
		next = int32(deps.Scripting.NextFurnitureState(furnitureContext(def, f.State())))
	} else if def.States > 1 {
		next = (f.State() + 1) % def.States
	}
	if next == f.State() {
		return
	}
	f.SetState(next)
	f.SetWalkable(furnitureWalkable(deps, def, next))

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := deps.Items.UpdateState(ctx, f.ID, next); err != nil {
		deps.Log.Warn("家具狀態存檔失敗", zap.Int32("item", f.ID), zap.Error(err))
	}

	event.Emit(deps.Bus, event.ItemUpdated{RoomID: rm.ID, ItemID: f.ID, State: next})
}

// NewRoomFurniture builds placed furniture from its definition with the
// walkable flag already resolved. Also used when rooms are loaded at startup.
func NewRoomFurniture(deps *Deps, id int32, def *data.FurnitureDef, owner string, x, y, state int32) *room.Furniture {
	f := room.NewFurniture(id, def.ID, x, y, furnitureWalkable(deps, def, state))
	f.OwnerName = owner
	f.Height = def.StackHeight
	f.Interact = def.Interaction
	f.SetState(state)
	return f
}

func furnitureContext(def *data.FurnitureDef, state int32) scripting.FurnitureContext {
	return scripting.FurnitureContext{
		DefID:       int(def.ID),
		Interaction: def.Interaction,
		State:       int(state),
		States:      int(def.States),
		CanWalk:     def.CanWalk,
	}
}

func furnitureWalkable(deps *Deps, def *data.FurnitureDef, state int32) bool {
	if deps.Scripting == nil {
		return def.CanWalk
	}
	return deps.Scripting.FurnitureWalkable(furnitureContext(def, state))
}

func canManage(p *world.Player, f *room.Furniture, deps *Deps) bool {
	return f.OwnerName == p.Name || p.Rank >= deps.Config.Server.StaffRank
}
