package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openLayout builds a w*h layout with every tile open at height 0.
func openLayout(w, h int32) Layout {
	l := Layout{Width: w, Height: h}
	for y := int32(0); y < h; y++ {
		for x := int32(0); x < w; x++ {
			l.Tiles = append(l.Tiles, TileSpec{X: x, Y: y, State: TileStateOpen})
		}
	}
	return l
}

func TestTileGrid_Lookup(t *testing.T) {
	g := NewTileGrid(4, 3, nil)

	tile, err := g.Tile(3, 2)
	require.NoError(t, err)
	assert.Equal(t, int32(3), tile.GetTilePositionX())
	assert.Equal(t, int32(2), tile.GetTilePositionY())

	for _, p := range []Point{{-1, 0}, {0, -1}, {4, 0}, {0, 3}} {
		_, err := g.Tile(p.X, p.Y)
		assert.ErrorIs(t, err, ErrTileNotFound, "point %v", p)
	}

	count := 0
	g.Each(func(*TileInstance) { count++ })
	assert.Equal(t, 12, count)
}

func TestTileGrid_OpenTileDistinguishesClosed(t *testing.T) {
	g := NewTileGrid(2, 2, nil)

	_, err := g.OpenTile(1, 1)
	assert.ErrorIs(t, err, ErrTileClosed)
	_, err = g.OpenTile(5, 5)
	assert.ErrorIs(t, err, ErrTileNotFound)

	tile, _ := g.Tile(1, 1)
	tile.SetTileState(TileStateOpen)
	_, err = g.OpenTile(1, 1)
	assert.NoError(t, err)
}

func TestNew_RejectsBadDoor(t *testing.T) {
	l := Layout{Width: 2, Height: 2, DoorX: 0, DoorY: 0}
	_, err := New(1, "closed door", l)
	assert.ErrorIs(t, err, ErrTileClosed)

	l = openLayout(2, 2)
	l.DoorX = 7
	_, err = New(1, "door outside", l)
	assert.ErrorIs(t, err, ErrTileNotFound)
}

func TestNew_RejectsTileOutsideGrid(t *testing.T) {
	l := openLayout(2, 2)
	l.Tiles = append(l.Tiles, TileSpec{X: 2, Y: 0, State: TileStateOpen})
	_, err := New(1, "bad", l)
	assert.ErrorIs(t, err, ErrTileNotFound)
}

func TestRoom_EnterAndLeave(t *testing.T) {
	l := openLayout(5, 5)
	l.DoorX, l.DoorY, l.DoorHeading = 0, 2, 2
	r, err := New(1, "lobby", l)
	require.NoError(t, err)

	h := NewHabbo(10, "alice", 1)
	require.NoError(t, r.Enter(h))
	assert.Equal(t, Point{0, 2}, h.Position())
	assert.Equal(t, int32(2), h.Heading())
	assert.Equal(t, 1, r.ActorCount())

	door, _ := r.Grid().Tile(0, 2)
	assert.False(t, door.CanWalkOnTile())

	// Someone else in the doorway is refused.
	bob := NewHabbo(11, "bob", 2)
	assert.ErrorIs(t, r.Enter(bob), ErrTileOccupied)
	assert.Nil(t, r.Actor(bob.ID()))

	assert.Same(t, h, r.Leave(h.ID()))
	assert.True(t, door.CanWalkOnTile())
	assert.Nil(t, r.Leave(h.ID()))
	assert.Zero(t, r.ActorCount())
}

func TestRoom_StepActor(t *testing.T) {
	l := openLayout(3, 3)
	l.Tiles[4].Height = 1 // (1,1)
	r, err := New(1, "r", l)
	require.NoError(t, err)

	h := NewHabbo(1, "a", 1)
	require.NoError(t, r.Enter(h))

	require.NoError(t, r.StepActor(h, 1, 1))
	assert.Equal(t, Point{1, 1}, h.Position())
	assert.Equal(t, int32(3), h.Heading()) // SE
	assert.Equal(t, 1.0, h.Z())

	origin, _ := r.Grid().Tile(0, 0)
	assert.True(t, origin.CanWalkOnTile())
	here, _ := r.Grid().Tile(1, 1)
	assert.False(t, here.CanWalkOnTile())
}

func TestRoom_StepActorBlocked(t *testing.T) {
	l := openLayout(3, 1)
	l.Tiles[2].State = TileStateClosed
	r, err := New(1, "r", l)
	require.NoError(t, err)

	a := NewHabbo(1, "a", 1)
	require.NoError(t, r.Enter(a))
	require.NoError(t, r.StepActor(a, 1, 0))

	b := NewHabbo(2, "b", 2)
	require.NoError(t, r.Enter(b))

	// b cannot walk onto a.
	assert.ErrorIs(t, r.StepActor(b, 1, 0), ErrTileOccupied)
	assert.Equal(t, Point{0, 0}, b.Position())
	door, _ := r.Grid().Tile(0, 0)
	assert.False(t, door.CanWalkOnTile(), "b keeps its own tile after a failed step")

	assert.ErrorIs(t, r.StepActor(a, 2, 0), ErrTileClosed)
	assert.ErrorIs(t, r.StepActor(a, 3, 0), ErrTileNotFound)

	r.Leave(b.ID())
	assert.ErrorIs(t, r.StepActor(b, 0, 0), ErrActorNotInRoom)
}

func TestRoom_PlaceAndRemoveItem(t *testing.T) {
	r, err := New(1, "r", openLayout(3, 3))
	require.NoError(t, err)

	chair := NewFurniture(100, 5, 1, 1, true)
	chair.Height = 0.5
	require.NoError(t, r.PlaceItem(chair))
	assert.Same(t, chair, r.Item(100))

	assert.ErrorIs(t, r.PlaceItem(NewFurniture(101, 5, 1, 1, true)), ErrItemStacked)
	assert.ErrorIs(t, r.PlaceItem(NewFurniture(102, 5, 9, 9, true)), ErrTileNotFound)

	h := NewHabbo(1, "a", 1)
	require.NoError(t, r.Enter(h))
	require.NoError(t, r.StepActor(h, 1, 1))
	assert.Equal(t, 0.5, h.Z())

	wall := NewFurniture(103, 6, 2, 2, false)
	require.NoError(t, r.PlaceItem(wall))
	assert.ErrorIs(t, r.StepActor(h, 2, 2), ErrTileOccupied)

	removed, err := r.RemoveItem(103)
	require.NoError(t, err)
	assert.Same(t, wall, removed)
	assert.NoError(t, r.StepActor(h, 2, 2))

	_, err = r.RemoveItem(103)
	assert.ErrorIs(t, err, ErrItemNotFound)
	assert.Len(t, r.Items(), 1)
}

func TestFurniture_Walkable(t *testing.T) {
	gate := NewFurniture(1, 1, 0, 0, false)
	assert.False(t, gate.CanBeWalkedOn())
	gate.SetState(1)
	gate.SetWalkable(true)
	assert.True(t, gate.CanBeWalkedOn())
	assert.Equal(t, int32(1), gate.State())
}

func TestHeadingTo(t *testing.T) {
	assert.Equal(t, int32(0), HeadingTo(1, 1, 1, 0))
	assert.Equal(t, int32(2), HeadingTo(1, 1, 2, 1))
	assert.Equal(t, int32(5), HeadingTo(1, 1, 0, 2))
	assert.Equal(t, int32(7), HeadingTo(1, 1, 0, 0))
}

func TestManager(t *testing.T) {
	m := NewManager()
	_, err := m.Load(1, "a", openLayout(2, 2))
	require.NoError(t, err)
	_, err = m.Load(1, "a", openLayout(2, 2))
	assert.Error(t, err)

	assert.NotNil(t, m.Get(1))
	assert.Equal(t, 1, m.Count())
	assert.NotNil(t, m.Unload(1))
	assert.Nil(t, m.Get(1))
}
