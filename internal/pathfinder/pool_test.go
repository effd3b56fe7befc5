package pathfinder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/steerstone/server/internal/room"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func newTestPool(workers, queue int) *Pool {
	return NewPool(New(Options{MaxStepHeight: 1}), workers, queue,
		noop.NewTracerProvider().Tracer("test"), zap.NewNop())
}

func TestPool_DeliversResults(t *testing.T) {
	r := buildRoom(t,
		".....",
		".....",
	)
	p := newTestPool(2, 8)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	id, ok := p.Submit(Request{RoomID: 1, Actor: 9, Grid: r.Grid(), Start: pt(0, 0), Goal: pt(4, 1)})
	require.True(t, ok)
	require.NotEmpty(t, id)

	select {
	case res := <-p.Results():
		assert.Equal(t, id, res.ID)
		assert.Equal(t, room.ActorID(9), res.Actor)
		require.NoError(t, res.Err)
		assert.Len(t, res.Path, 5)
		assert.Equal(t, pt(4, 1), res.Path[len(res.Path)-1])
	case <-time.After(2 * time.Second):
		t.Fatal("no result")
	}

	cancel()
	assert.NoError(t, <-done)
}

func TestPool_SubmitFullQueue(t *testing.T) {
	r := buildRoom(t, "..")
	p := newTestPool(1, 1) // not running: nothing drains the queue

	_, ok := p.Submit(Request{Grid: r.Grid(), Start: pt(0, 0), Goal: pt(1, 0)})
	assert.True(t, ok)
	_, ok = p.Submit(Request{Grid: r.Grid(), Start: pt(0, 0), Goal: pt(1, 0)})
	assert.False(t, ok)
}

// Workers search while another goroutine keeps toggling occupancy on the same
// tiles, the way the room loop does.
func TestPool_ConcurrentWithOccupancyChanges(t *testing.T) {
	rows := make([]string, 8)
	for i := range rows {
		rows[i] = "........"
	}
	r := buildRoom(t, rows...)
	p := newTestPool(4, 64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	walker := room.NewHabbo(1, "walker", 1)
	require.NoError(t, r.Enter(walker))

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			x := int32(1 + i%6)
			_ = r.StepActor(walker, x, 0)
			_ = r.StepActor(walker, x, 1)
		}
	}()

	const n = 40
	for i := 0; i < n; i++ {
		for {
			if _, ok := p.Submit(Request{Grid: r.Grid(), Start: pt(0, 7), Goal: pt(7, 7)}); ok {
				break
			}
			time.Sleep(time.Millisecond)
		}
	}
	for i := 0; i < n; i++ {
		select {
		case res := <-p.Results():
			require.NoError(t, res.Err)
			assert.Len(t, res.Path, 7)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for results")
		}
	}
	wg.Wait()
}
