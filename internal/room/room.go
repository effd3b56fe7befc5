package room

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrActorNotInRoom = errors.New("actor not in room")
	ErrItemNotFound   = errors.New("item not found")
)

// TileSpec describes one cell of a room layout.
type TileSpec struct {
	X, Y   int32
	Height float64
	State  TileState
}

// Layout is everything needed to build a room's grid. Cells not listed stay
// closed.
type Layout struct {
	Width, Height int32
	DoorX, DoorY  int32
	DoorHeading   int32
	Tiles         []TileSpec
}

// Room owns one tile grid plus the actor and furniture registries.
//
// The actor registry doubles as the grid's ActorLookup: tiles call
// LookupActor while holding their own lock, so the registry lock must never be
// held while a tile lock is being acquired.
type Room struct {
	ID   int32
	Name string

	grid        *TileGrid
	doorX       int32
	doorY       int32
	doorHeading int32

	mu     sync.RWMutex
	actors map[ActorID]*Habbo
	items  map[int32]*Furniture
}

// New builds a room from its layout. The door must be an open tile.
func New(id int32, name string, layout Layout) (*Room, error) {
	r := &Room{
		ID:          id,
		Name:        name,
		doorX:       layout.DoorX,
		doorY:       layout.DoorY,
		doorHeading: layout.DoorHeading,
		actors:      make(map[ActorID]*Habbo),
		items:       make(map[int32]*Furniture),
	}
	r.grid = NewTileGrid(layout.Width, layout.Height, r)
	for _, spec := range layout.Tiles {
		t, err := r.grid.Tile(spec.X, spec.Y)
		if err != nil {
			return nil, fmt.Errorf("room %d tile (%d,%d): %w", id, spec.X, spec.Y, err)
		}
		t.SetTileHeight(spec.Height)
		t.SetTileState(spec.State)
	}
	if _, err := r.grid.OpenTile(r.doorX, r.doorY); err != nil {
		return nil, fmt.Errorf("room %d door (%d,%d): %w", id, r.doorX, r.doorY, err)
	}
	return r, nil
}

// Grid returns the room's tile grid.
func (r *Room) Grid() *TileGrid { return r.grid }

// Door returns the door coordinate.
func (r *Room) Door() Point { return Point{X: r.doorX, Y: r.doorY} }

// LookupActor implements ActorLookup.
func (r *Room) LookupActor(id ActorID) (Actor, bool) {
	r.mu.RLock()
	h, ok := r.actors[id]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return h, true
}

// Actor returns a registered avatar.
func (r *Room) Actor(id ActorID) *Habbo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.actors[id]
}

// Actors returns a snapshot of everyone in the room.
func (r *Room) Actors() []*Habbo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Habbo, 0, len(r.actors))
	for _, h := range r.actors {
		out = append(out, h)
	}
	return out
}

// ActorCount returns the number of avatars in the room.
func (r *Room) ActorCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.actors)
}

// Enter places h on the door tile. Fails with ErrTileOccupied when someone is
// standing in the doorway.
func (r *Room) Enter(h *Habbo) error {
	door, err := r.grid.OpenTile(r.doorX, r.doorY)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.actors[h.ID()] = h
	r.mu.Unlock()

	// Position first: a tile judges its occupant against the live position.
	h.StopWalking()
	h.SetPosition(r.doorX, r.doorY)
	h.SetHeading(r.doorHeading)
	if !door.TryOccupy(h) {
		r.mu.Lock()
		delete(r.actors, h.ID())
		r.mu.Unlock()
		return ErrTileOccupied
	}
	h.SetZ(standHeight(door))
	return nil
}

// Leave removes the avatar and frees its tile. Returns nil when the actor was
// not in the room.
func (r *Room) Leave(id ActorID) *Habbo {
	r.mu.Lock()
	h, ok := r.actors[id]
	if ok {
		delete(r.actors, id)
	}
	r.mu.Unlock()
	if !ok {
		return nil
	}
	h.StopWalking()
	if t, err := r.grid.Tile(h.GetPositionX(), h.GetPositionY()); err == nil {
		t.Release(h)
	}
	return h
}

// StepActor moves h one tile to (x, y). The caller validates adjacency and
// height; StepActor enforces the tile state and occupancy.
//
// Order matters: the position is updated before the destination is claimed so
// the claim is never mistaken for a stale occupant. If the claim fails the
// position is restored and the source tile re-claimed.
func (r *Room) StepActor(h *Habbo, x, y int32) error {
	if r.Actor(h.ID()) == nil {
		return ErrActorNotInRoom
	}
	next, err := r.grid.OpenTile(x, y)
	if err != nil {
		return err
	}
	prevX, prevY := h.GetPositionX(), h.GetPositionY()
	prev, err := r.grid.Tile(prevX, prevY)
	if err != nil {
		return err
	}

	h.SetPosition(x, y)
	if !next.TryOccupy(h) {
		h.SetPosition(prevX, prevY)
		prev.SetOccupied(true, h)
		return ErrTileOccupied
	}
	prev.Release(h)
	h.SetHeading(HeadingTo(prevX, prevY, x, y))
	h.SetZ(standHeight(next))
	return nil
}

// PlaceItem stacks f on its tile and registers it.
func (r *Room) PlaceItem(f *Furniture) error {
	t, err := r.grid.OpenTile(f.X, f.Y)
	if err != nil {
		return err
	}
	if !t.TryAddItem(f) {
		return ErrItemStacked
	}
	r.mu.Lock()
	r.items[f.ID] = f
	r.mu.Unlock()
	return nil
}

// RemoveItem detaches furniture from its tile and the registry.
func (r *Room) RemoveItem(id int32) (*Furniture, error) {
	r.mu.Lock()
	f, ok := r.items[id]
	if ok {
		delete(r.items, id)
	}
	r.mu.Unlock()
	if !ok {
		return nil, ErrItemNotFound
	}
	if t, err := r.grid.Tile(f.X, f.Y); err == nil {
		t.RemoveItemIf(f)
	}
	return f, nil
}

// Item returns placed furniture by ID.
func (r *Room) Item(id int32) *Furniture {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.items[id]
}

// Items returns a snapshot of all placed furniture.
func (r *Room) Items() []*Furniture {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Furniture, 0, len(r.items))
	for _, f := range r.items {
		out = append(out, f)
	}
	return out
}

// standHeight is where an avatar's feet end up on t.
func standHeight(t *TileInstance) float64 {
	h := t.GetTileHeight()
	if f, ok := t.GetItem().(*Furniture); ok && f != nil {
		h += f.Height
	}
	return h
}
