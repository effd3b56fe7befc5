package persist

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ItemRow represents a furniture item placed in a room.
type ItemRow struct {
	ID        int32
	RoomID    int32
	DefID     int32
	OwnerName string
	X         int32
	Y         int32
	State     int32
}

type ItemRepo struct {
	db *DB
}

func NewItemRepo(db *DB) *ItemRepo {
	return &ItemRepo{db: db}
}

// LoadByRoom returns all furniture placed in a room.
func (r *ItemRepo) LoadByRoom(ctx context.Context, roomID int32) ([]ItemRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, room_id, def_id, owner_name, x, y, state
		 FROM room_items WHERE room_id = $1 ORDER BY id`, roomID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(&it.ID, &it.RoomID, &it.DefID, &it.OwnerName, &it.X, &it.Y, &it.State); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

// Insert stores a newly placed item and returns its ID.
func (r *ItemRepo) Insert(ctx context.Context, it ItemRow) (int32, error) {
	var id int32
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO room_items (room_id, def_id, owner_name, x, y, state)
		 VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		it.RoomID, it.DefID, it.OwnerName, it.X, it.Y, it.State,
	).Scan(&id)
	return id, err
}

// Delete removes a picked-up item.
func (r *ItemRepo) Delete(ctx context.Context, id int32) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM room_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateState saves an item's interaction state.
func (r *ItemRepo) UpdateState(ctx context.Context, id, state int32) error {
	_, err := r.db.Pool.Exec(ctx, `UPDATE room_items SET state = $2 WHERE id = $1`, id, state)
	return err
}

// MaxID returns the highest item ID in use, or 0 when the table is empty.
func (r *ItemRepo) MaxID(ctx context.Context) (int32, error) {
	var id int32
	err := r.db.Pool.QueryRow(ctx, `SELECT COALESCE(MAX(id), 0) FROM room_items`).Scan(&id)
	return id, err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
