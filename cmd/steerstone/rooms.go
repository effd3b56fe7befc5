package main

import (
	"context"
	"fmt"

	"github.com/steerstone/server/internal/handler"
	"github.com/steerstone/server/internal/persist"
	"github.com/steerstone/server/internal/room"
	"go.uber.org/zap"
)

// defaultRoom is created on first boot so a fresh database has somewhere to
// walk: a 10x10 floor with a raised platform and a closed pillar.
func defaultRoom() *persist.RoomRow {
	rm := &persist.RoomRow{
		Name:        "Welcome Lobby",
		OwnerName:   "steerstone",
		Width:       10,
		Height:      10,
		DoorX:       0,
		DoorY:       0,
		DoorHeading: 2,
	}
	for y := int32(0); y < rm.Height; y++ {
		for x := int32(0); x < rm.Width; x++ {
			t := persist.RoomTileRow{X: x, Y: y, State: int16(room.TileStateOpen)}
			if x >= 7 && y >= 7 {
				t.Height = 1
			}
			if x == 4 && y == 4 {
				t.State = int16(room.TileStateClosed)
			}
			rm.Tiles = append(rm.Tiles, t)
		}
	}
	return rm
}

// loadRooms builds every stored room and places its furniture. Items whose
// definition or tile is gone are skipped.
func loadRooms(ctx context.Context, roomRepo *persist.RoomRepo, itemRepo *persist.ItemRepo, deps *handler.Deps) (int, int, error) {
	rows, err := roomRepo.LoadAll(ctx)
	if err != nil {
		return 0, 0, err
	}
	if len(rows) == 0 {
		seed := defaultRoom()
		if _, err := roomRepo.Create(ctx, seed); err != nil {
			return 0, 0, fmt.Errorf("seed default room: %w", err)
		}
		deps.Log.Info("已建立預設房間", zap.Int32("room", seed.ID), zap.String("name", seed.Name))
		rows = append(rows, seed)
	}

	items := 0
	for _, row := range rows {
		rm, err := deps.Rooms.Load(row.ID, row.Name, layoutFromRow(row))
		if err != nil {
			return 0, 0, fmt.Errorf("room %d: %w", row.ID, err)
		}

		placed, err := itemRepo.LoadByRoom(ctx, row.ID)
		if err != nil {
			return 0, 0, fmt.Errorf("room %d items: %w", row.ID, err)
		}
		for _, it := range placed {
			def := deps.Furniture.Get(it.DefID)
			if def == nil {
				deps.Log.Warn("房間家具引用未知定義", zap.Int32("item", it.ID), zap.Int32("def", it.DefID))
				continue
			}
			f := handler.NewRoomFurniture(deps, it.ID, def, it.OwnerName, it.X, it.Y, it.State)
			if err := rm.PlaceItem(f); err != nil {
				deps.Log.Warn("房間家具放置失敗", zap.Int32("item", it.ID), zap.Int32("room", row.ID), zap.Error(err))
				continue
			}
			items++
		}
	}
	return len(rows), items, nil
}

func layoutFromRow(row *persist.RoomRow) room.Layout {
	layout := room.Layout{
		Width:       row.Width,
		Height:      row.Height,
		DoorX:       row.DoorX,
		DoorY:       row.DoorY,
		DoorHeading: int32(row.DoorHeading),
		Tiles:       make([]room.TileSpec, 0, len(row.Tiles)),
	}
	for _, t := range row.Tiles {
		layout.Tiles = append(layout.Tiles, room.TileSpec{
			X:      t.X,
			Y:      t.Y,
			Height: t.Height,
			State:  room.TileState(t.State),
		})
	}
	return layout
}
