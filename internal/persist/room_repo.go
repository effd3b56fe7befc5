package persist

import (
	"context"
	"fmt"
)

// RoomRow represents a row from the rooms table plus its tiles.
type RoomRow struct {
	ID          int32
	Name        string
	OwnerName   string
	Width       int32
	Height      int32
	DoorX       int32
	DoorY       int32
	DoorHeading int16
	Tiles       []RoomTileRow
}

// RoomTileRow is one row of room_tiles. State uses the same values as
// room.TileState (0 closed, 1 open).
type RoomTileRow struct {
	X, Y   int32
	Height float64
	State  int16
}

type RoomRepo struct {
	db *DB
}

func NewRoomRepo(db *DB) *RoomRepo {
	return &RoomRepo{db: db}
}

// LoadAll loads every room and its tiles. Called at server startup.
func (r *RoomRepo) LoadAll(ctx context.Context) ([]*RoomRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, name, owner_name, width, height, door_x, door_y, door_heading
		 FROM rooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []*RoomRow
	byID := make(map[int32]*RoomRow)
	for rows.Next() {
		rm := &RoomRow{}
		if err := rows.Scan(
			&rm.ID, &rm.Name, &rm.OwnerName, &rm.Width, &rm.Height,
			&rm.DoorX, &rm.DoorY, &rm.DoorHeading,
		); err != nil {
			return nil, err
		}
		rooms = append(rooms, rm)
		byID[rm.ID] = rm
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tileRows, err := r.db.Pool.Query(ctx,
		`SELECT room_id, x, y, height, state FROM room_tiles ORDER BY room_id, y, x`)
	if err != nil {
		return nil, err
	}
	defer tileRows.Close()

	for tileRows.Next() {
		var roomID int32
		var t RoomTileRow
		if err := tileRows.Scan(&roomID, &t.X, &t.Y, &t.Height, &t.State); err != nil {
			return nil, err
		}
		rm, ok := byID[roomID]
		if !ok {
			continue
		}
		rm.Tiles = append(rm.Tiles, t)
	}
	return rooms, tileRows.Err()
}

// Load loads a single room with its tiles.
func (r *RoomRepo) Load(ctx context.Context, id int32) (*RoomRow, error) {
	rm := &RoomRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, name, owner_name, width, height, door_x, door_y, door_heading
		 FROM rooms WHERE id = $1`, id,
	).Scan(&rm.ID, &rm.Name, &rm.OwnerName, &rm.Width, &rm.Height, &rm.DoorX, &rm.DoorY, &rm.DoorHeading)
	if err != nil {
		return nil, notFound(err)
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT x, y, height, state FROM room_tiles WHERE room_id = $1 ORDER BY y, x`, id)
	if err != nil {
		return nil, fmt.Errorf("room %d tiles: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var t RoomTileRow
		if err := rows.Scan(&t.X, &t.Y, &t.Height, &t.State); err != nil {
			return nil, err
		}
		rm.Tiles = append(rm.Tiles, t)
	}
	return rm, rows.Err()
}

// Create inserts a room and all of its tiles in one transaction and returns
// the new room ID.
func (r *RoomRepo) Create(ctx context.Context, rm *RoomRow) (int32, error) {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("room begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var id int32
	if err := tx.QueryRow(ctx,
		`INSERT INTO rooms (name, owner_name, width, height, door_x, door_y, door_heading)
		 VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
		rm.Name, rm.OwnerName, rm.Width, rm.Height, rm.DoorX, rm.DoorY, rm.DoorHeading,
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("room insert: %w", err)
	}

	for _, t := range rm.Tiles {
		if _, err := tx.Exec(ctx,
			`INSERT INTO room_tiles (room_id, x, y, height, state) VALUES ($1, $2, $3, $4, $5)`,
			id, t.X, t.Y, t.Height, t.State,
		); err != nil {
			return 0, fmt.Errorf("room tile insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	rm.ID = id
	return id, nil
}
