package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBus_DeliversNextTick(t *testing.T) {
	b := NewBus()
	var got []int32
	Subscribe(b, func(e ItemPlaced) { got = append(got, e.ItemID) })

	Emit(b, ItemPlaced{ItemID: 1})
	b.DispatchAll()
	assert.Empty(t, got, "nothing delivered before swap")
	assert.Equal(t, 1, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int32{1}, got)
	assert.Equal(t, 0, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []int32{1}, got, "events are delivered once")
}

func TestBus_EmissionOrderAcrossTypes(t *testing.T) {
	b := NewBus()
	var order []string
	Subscribe(b, func(ActorEntered) { order = append(order, "entered") })
	Subscribe(b, func(ActorWalked) { order = append(order, "walked") })
	Subscribe(b, func(ActorLeft) { order = append(order, "left") })

	Emit(b, ActorEntered{})
	Emit(b, ActorWalked{})
	Emit(b, ActorWalked{})
	Emit(b, ActorLeft{})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, []string{"entered", "walked", "walked", "left"}, order)
}

func TestBus_EmitDuringDispatchWaitsForNextTick(t *testing.T) {
	b := NewBus()
	var removed int
	Subscribe(b, func(e ItemPlaced) { Emit(b, ItemRemoved{ItemID: e.ItemID}) })
	Subscribe(b, func(ItemRemoved) { removed++ })

	Emit(b, ItemPlaced{ItemID: 4})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 0, removed)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 1, removed)
}

func TestBus_MultipleSubscribers(t *testing.T) {
	b := NewBus()
	calls := 0
	Subscribe(b, func(PathBlocked) { calls++ })
	Subscribe(b, func(PathBlocked) { calls++ })
	Emit(b, PathBlocked{})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 2, calls)
}
