package room

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testActor struct {
	id   ActorID
	x, y atomic.Int32
}

func newTestActor(id ActorID, x, y int32) *testActor {
	a := &testActor{id: id}
	a.x.Store(x)
	a.y.Store(y)
	return a
}

func (a *testActor) ID() ActorID         { return a.id }
func (a *testActor) GetPositionX() int32 { return a.x.Load() }
func (a *testActor) GetPositionY() int32 { return a.y.Load() }

type testLookup struct {
	mu     sync.RWMutex
	actors map[ActorID]Actor
}

func newTestLookup(actors ...Actor) *testLookup {
	l := &testLookup{actors: make(map[ActorID]Actor)}
	for _, a := range actors {
		l.actors[a.ID()] = a
	}
	return l
}

func (l *testLookup) LookupActor(id ActorID) (Actor, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	a, ok := l.actors[id]
	return a, ok
}

func (l *testLookup) remove(id ActorID) {
	l.mu.Lock()
	delete(l.actors, id)
	l.mu.Unlock()
}

type testItem struct{ walkable bool }

func (i *testItem) CanBeWalkedOn() bool { return i.walkable }

func TestTileState_String(t *testing.T) {
	assert.Equal(t, "Closed", TileStateClosed.String())
	assert.Equal(t, "Open", TileStateOpen.String())
	assert.Equal(t, "Unknown(9)", TileState(9).String())
}

func TestNewTileInstance_Defaults(t *testing.T) {
	tile := NewTileInstance(3, 4, newTestLookup())

	assert.Equal(t, int32(3), tile.GetTilePositionX())
	assert.Equal(t, int32(4), tile.GetTilePositionY())
	assert.Equal(t, TileStateClosed, tile.GetTileState())
	assert.Zero(t, tile.GetTileHeight())
	assert.Nil(t, tile.GetItem())
	_, occupied := tile.Occupant()
	assert.False(t, occupied)
}

func TestTileInstance_HeightAndState(t *testing.T) {
	tile := NewTileInstance(0, 0, nil)
	tile.SetTileHeight(2.5)
	tile.SetTileState(TileStateOpen)

	assert.Equal(t, 2.5, tile.GetTileHeight())
	assert.Equal(t, TileStateOpen, tile.GetTileState())
}

func TestCanWalkOnTile_Scenarios(t *testing.T) {
	t.Run("A: empty tile is walkable", func(t *testing.T) {
		tile := NewTileInstance(3, 4, newTestLookup())
		assert.True(t, tile.CanWalkOnTile())
	})

	t.Run("B: occupant standing on tile blocks", func(t *testing.T) {
		a := newTestActor(1, 3, 4)
		tile := NewTileInstance(3, 4, newTestLookup(a))
		tile.SetOccupied(true, a)

		assert.False(t, tile.CanWalkOnTile())
		id, ok := tile.Occupant()
		assert.True(t, ok)
		assert.Equal(t, ActorID(1), id)
	})

	t.Run("C: occupant that moved away is cleared", func(t *testing.T) {
		a := newTestActor(1, 3, 4)
		tile := NewTileInstance(3, 4, newTestLookup(a))
		tile.SetOccupied(true, a)
		a.x.Store(5)

		assert.True(t, tile.CanWalkOnTile())
		_, ok := tile.Occupant()
		assert.False(t, ok, "stale occupant must be cleared by the walkability query")
		assert.Nil(t, tile.GetItem())
		assert.True(t, tile.CanWalkOnTile())
	})

	t.Run("D: blocking item, then removed", func(t *testing.T) {
		tile := NewTileInstance(3, 4, newTestLookup())
		tile.AddItem(&testItem{walkable: false})
		assert.False(t, tile.CanWalkOnTile())

		tile.RemoveItem()
		assert.True(t, tile.CanWalkOnTile())
	})
}

func TestCanWalkOnTile_ItemRules(t *testing.T) {
	tile := NewTileInstance(0, 0, newTestLookup())

	tile.AddItem(&testItem{walkable: true})
	assert.True(t, tile.CanWalkOnTile())

	tile.AddItem(&testItem{walkable: false})
	assert.False(t, tile.CanWalkOnTile())
}

func TestCanWalkOnTile_StaleOccupantThenItemCheck(t *testing.T) {
	a := newTestActor(7, 1, 1)
	tile := NewTileInstance(1, 1, newTestLookup(a))
	tile.SetOccupied(true, a)
	tile.AddItem(&testItem{walkable: false})
	a.y.Store(2)

	// The vacated tile is immediately subject to the item rule.
	assert.False(t, tile.CanWalkOnTile())
	_, ok := tile.Occupant()
	assert.False(t, ok)
}

func TestCanWalkOnTile_OccupantGoneFromLookup(t *testing.T) {
	a := newTestActor(2, 0, 0)
	lookup := newTestLookup(a)
	tile := NewTileInstance(0, 0, lookup)
	tile.SetOccupied(true, a)

	lookup.remove(a.ID())

	assert.True(t, tile.CanWalkOnTile())
	_, ok := tile.Occupant()
	assert.False(t, ok)
}

func TestCanWalkOnTile_IgnoresState(t *testing.T) {
	tile := NewTileInstance(0, 0, newTestLookup())
	tile.SetTileState(TileStateClosed)
	assert.True(t, tile.CanWalkOnTile(), "state is checked by path validation, not here")
}

func TestSetOccupied_ClearIsIdempotent(t *testing.T) {
	tile := NewTileInstance(0, 0, newTestLookup())
	item := &testItem{walkable: true}
	tile.AddItem(item)

	tile.SetOccupied(false, nil)
	tile.SetOccupied(false, nil)

	assert.True(t, tile.CanWalkOnTile())
	assert.Same(t, item, tile.GetItem())
}

func TestSetOccupied_NilActorClears(t *testing.T) {
	a := newTestActor(1, 0, 0)
	tile := NewTileInstance(0, 0, newTestLookup(a))
	tile.SetOccupied(true, a)
	tile.SetOccupied(true, nil)

	_, ok := tile.Occupant()
	assert.False(t, ok)
}

func TestTryOccupyAndRelease(t *testing.T) {
	a := newTestActor(1, 0, 0)
	b := newTestActor(2, 0, 0)
	tile := NewTileInstance(0, 0, newTestLookup(a, b))

	require.True(t, tile.TryOccupy(a))
	assert.True(t, tile.TryOccupy(a), "re-claim by the occupant succeeds")
	assert.False(t, tile.TryOccupy(b))

	assert.False(t, tile.Release(b))
	assert.True(t, tile.Release(a))
	assert.True(t, tile.TryOccupy(b))
}

func TestTryOccupy_BlockedByItem(t *testing.T) {
	a := newTestActor(1, 0, 0)
	tile := NewTileInstance(0, 0, newTestLookup(a))
	tile.AddItem(&testItem{walkable: false})

	assert.False(t, tile.TryOccupy(a))
}

func TestTryAddItemAndRemoveItemIf(t *testing.T) {
	tile := NewTileInstance(0, 0, nil)
	first := &testItem{}
	second := &testItem{}

	require.True(t, tile.TryAddItem(first))
	assert.False(t, tile.TryAddItem(second))
	assert.False(t, tile.RemoveItemIf(second))
	assert.True(t, tile.RemoveItemIf(first))
	assert.Nil(t, tile.GetItem())
}

// Concurrent SetOccupied calls serialize: the final occupant is one of the
// written values, never a torn or foreign one.
func TestSetOccupied_Concurrent(t *testing.T) {
	const writers = 32
	actors := make([]Actor, writers)
	for i := range actors {
		actors[i] = newTestActor(ActorID(i+1), 0, 0)
	}
	tile := NewTileInstance(0, 0, newTestLookup(actors...))

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(a Actor) {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				tile.SetOccupied(true, a)
				_ = tile.CanWalkOnTile()
			}
		}(actors[i])
	}
	wg.Wait()

	id, ok := tile.Occupant()
	require.True(t, ok)
	assert.GreaterOrEqual(t, id, ActorID(1))
	assert.LessOrEqual(t, id, ActorID(writers))

	// The last write in the tile's order wins.
	tile.SetOccupied(true, actors[4])
	id, _ = tile.Occupant()
	assert.Equal(t, ActorID(5), id)
	assert.False(t, tile.CanWalkOnTile())
}

// Exactly one of many racing actors can claim a free tile.
func TestTryOccupy_SingleWinner(t *testing.T) {
	const racers = 64
	actors := make([]Actor, racers)
	for i := range actors {
		actors[i] = newTestActor(ActorID(i+1), 9, 9)
	}
	tile := NewTileInstance(9, 9, newTestLookup(actors...))

	var wins atomic.Int32
	var wg sync.WaitGroup
	for _, a := range actors {
		wg.Add(1)
		go func(a Actor) {
			defer wg.Done()
			if tile.TryOccupy(a) {
				wins.Add(1)
			}
		}(a)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.False(t, tile.CanWalkOnTile())
}
