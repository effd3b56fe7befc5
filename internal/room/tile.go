package room

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

// TileState is the standing walkability state of a cell, set by the grid owner
// from the room layout. It is independent of occupancy and stacked items.
type TileState uint32

const (
	TileStateClosed  TileState = iota // never walkable (zero value, matches a fresh tile)
	TileStateOpen                     // walkable, subject to CanWalkOnTile
	TileStateBlocked                  // reserved: blocked for a non-layout reason
	TileStateInvalid                  // reserved: outside the playable model
)

func (s TileState) String() string {
	switch s {
	case TileStateClosed:
		return "Closed"
	case TileStateOpen:
		return "Open"
	case TileStateBlocked:
		return "Blocked"
	case TileStateInvalid:
		return "Invalid"
	default:
		return fmt.Sprintf("Unknown(%d)", uint32(s))
	}
}

// ActorID is a non-owning handle to an actor. Zero means "no actor".
type ActorID uint32

// Actor is anything that can stand on a tile. Position accessors must be safe
// for concurrent use; the tile reads them while the room loop moves the actor.
type Actor interface {
	ID() ActorID
	GetPositionX() int32
	GetPositionY() int32
}

// ActorLookup resolves an occupant handle to the live actor. Returning false
// means the actor is gone (left the room or disconnected).
type ActorLookup interface {
	LookupActor(id ActorID) (Actor, bool)
}

// Item is something stacked on a tile.
type Item interface {
	CanBeWalkedOn() bool
}

// TileInstance is one addressable cell of a room grid.
//
// The mutex guards occupant and item. Height and state are atomics so the
// pathfinder can read them without taking the lock. A tile never acquires
// another tile's lock and never performs I/O while holding its own.
type TileInstance struct {
	x, y   int32
	height atomic.Uint64 // math.Float64bits
	state  atomic.Uint32 // TileState

	mu       sync.Mutex
	item     Item
	occupant ActorID

	actors ActorLookup
}

// NewTileInstance creates a closed tile at height 0 with no item or occupant.
func NewTileInstance(x, y int32, actors ActorLookup) *TileInstance {
	return &TileInstance{x: x, y: y, actors: actors}
}

// GetTilePositionX returns the tile's X coordinate.
func (t *TileInstance) GetTilePositionX() int32 { return t.x }

// GetTilePositionY returns the tile's Y coordinate.
func (t *TileInstance) GetTilePositionY() int32 { return t.y }

// GetTileHeight returns the tile's floor height.
func (t *TileInstance) GetTileHeight() float64 {
	return math.Float64frombits(t.height.Load())
}

// SetTileHeight is called by the grid owner while loading the layout.
func (t *TileInstance) SetTileHeight(h float64) {
	t.height.Store(math.Float64bits(h))
}

// GetTileState returns the standing state. CanWalkOnTile does not look at it;
// a path step validator must check both.
func (t *TileInstance) GetTileState() TileState {
	return TileState(t.state.Load())
}

// SetTileState is called by the grid owner.
func (t *TileInstance) SetTileState(s TileState) {
	t.state.Store(uint32(s))
}

// AddItem stacks an item on the tile, replacing any previous one.
func (t *TileInstance) AddItem(item Item) {
	t.mu.Lock()
	t.item = item
	t.mu.Unlock()
}

// RemoveItem detaches the stacked item and returns it.
func (t *TileInstance) RemoveItem() Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	it := t.item
	t.item = nil
	return it
}

// TryAddItem stacks item only when the tile is empty.
func (t *TileInstance) TryAddItem(item Item) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.item != nil {
		return false
	}
	t.item = item
	return true
}

// RemoveItemIf detaches the stacked item only if it is item.
func (t *TileInstance) RemoveItemIf(item Item) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.item == nil || t.item != item {
		return false
	}
	t.item = nil
	return true
}

// GetItem returns the stacked item, or nil.
func (t *TileInstance) GetItem() Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.item
}

// SetOccupied marks the tile as occupied by actor, or clears it. Passing a nil
// actor with occupied=true also clears it.
func (t *TileInstance) SetOccupied(occupied bool, actor Actor) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if occupied && actor != nil {
		t.occupant = actor.ID()
	} else {
		t.occupant = 0
	}
}

// Occupant returns the raw occupant handle without staleness correction.
func (t *TileInstance) Occupant() (ActorID, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.occupant, t.occupant != 0
}

// CanWalkOnTile reports whether an actor may currently enter the tile.
// A stale occupant is cleared in the same critical section before the item
// check runs.
func (t *TileInstance) CanWalkOnTile() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.walkableLocked()
}

// TryOccupy claims the tile for actor if it is walkable right now. The
// decision and the claim happen under one lock acquisition.
func (t *TileInstance) TryOccupy(actor Actor) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.occupant == actor.ID() {
		return true
	}
	if !t.walkableLocked() {
		return false
	}
	t.occupant = actor.ID()
	return true
}

// Release clears the occupant only if it is actor. Returns false when someone
// else (or nobody) holds the tile.
func (t *TileInstance) Release(actor Actor) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.occupant == 0 || t.occupant != actor.ID() {
		return false
	}
	t.occupant = 0
	return true
}

// walkableLocked must be called with t.mu held.
func (t *TileInstance) walkableLocked() bool {
	if t.occupant != 0 {
		a, ok := t.lookup(t.occupant)
		if ok && a.GetPositionX() == t.x && a.GetPositionY() == t.y {
			return false
		}
		// actor moved away or is gone
		t.occupant = 0
	}
	if t.item != nil && !t.item.CanBeWalkedOn() {
		return false
	}
	return true
}

func (t *TileInstance) lookup(id ActorID) (Actor, bool) {
	if t.actors == nil {
		return nil, false
	}
	return t.actors.LookupActor(id)
}
