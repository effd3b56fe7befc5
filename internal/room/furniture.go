package room

import "sync/atomic"

// Furniture is an item instance placed in a room. The room owns it; tiles only
// borrow it.
type Furniture struct {
	ID        int32
	DefID     int32
	OwnerName string
	X, Y      int32
	Height    float64 // stack height added on top of the tile
	Interact  string  // interaction type from the furniture definition

	state    atomic.Int32
	walkable atomic.Bool
}

// NewFurniture creates a furniture instance with its initial walkability.
func NewFurniture(id, defID int32, x, y int32, walkable bool) *Furniture {
	f := &Furniture{ID: id, DefID: defID, X: x, Y: y}
	f.walkable.Store(walkable)
	return f
}

// CanBeWalkedOn implements Item. It reads a cached flag so the check is safe
// inside a tile's critical section.
func (f *Furniture) CanBeWalkedOn() bool { return f.walkable.Load() }

// SetWalkable updates the cached flag after a state change.
func (f *Furniture) SetWalkable(v bool) { f.walkable.Store(v) }

// State is the interaction state (0 = default; e.g. a gate uses 0 closed / 1 open).
func (f *Furniture) State() int32 { return f.state.Load() }

func (f *Furniture) SetState(s int32) { f.state.Store(s) }
