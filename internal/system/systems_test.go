package system

import (
	"context"
	gonet "net"
	"testing"

	"github.com/steerstone/server/internal/core/event"
	coresys "github.com/steerstone/server/internal/core/system"
	"github.com/steerstone/server/internal/net"
	"github.com/steerstone/server/internal/net/packet"
	"github.com/steerstone/server/internal/world"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

func newTestSession(t *testing.T, id uint64) *net.Session {
	t.Helper()
	server, client := gonet.Pipe()
	s := net.NewSession(server, id, net.SessionOptions{InQueueSize: 8, OutQueueSize: 8}, zap.NewNop())
	t.Cleanup(func() {
		s.Close()
		client.Close()
	})
	return s
}

func TestInput_DispatchesQueuedPackets(t *testing.T) {
	reg := packet.NewRegistry(charmap.Windows1252, zap.NewNop())
	var got []byte
	reg.Register(packet.C_OPCODE_LOGIN, []packet.SessionState{packet.StateConnected}, func(_ any, r *packet.Reader) {
		got = append(got, r.ReadC())
	})

	store := net.NewSessionStore()
	sess := newTestSession(t, 1)
	store.Add(sess)
	sess.InQueue <- []byte{packet.C_OPCODE_LOGIN, 7}
	sess.InQueue <- []byte{packet.C_OPCODE_LOGIN, 8}
	sess.InQueue <- []byte{packet.C_OPCODE_LOGIN, 9}

	sys := NewInputSystem(nil, reg, store, 2, nil, zap.NewNop())
	assert.Equal(t, coresys.PhaseInput, sys.Phase())

	sys.Update(0)
	assert.Equal(t, []byte{7, 8}, got)
	sys.Update(0)
	assert.Equal(t, []byte{7, 8, 9}, got)
	assert.Equal(t, 1, sys.SessionCount())
}

func TestInput_CleansUpClosedSessions(t *testing.T) {
	reg := packet.NewRegistry(charmap.Windows1252, zap.NewNop())
	var dispatched int
	reg.Register(packet.C_OPCODE_LEAVE_ROOM, []packet.SessionState{packet.StateDisconnecting}, func(any, *packet.Reader) {
		dispatched++
	})

	store := net.NewSessionStore()
	sess := newTestSession(t, 1)
	store.Add(sess)
	sess.InQueue <- []byte{packet.C_OPCODE_LEAVE_ROOM}
	sess.Close()

	var gone []uint64
	sys := NewInputSystem(nil, reg, store, 8, func(s *net.Session) { gone = append(gone, s.ID) }, zap.NewNop())
	sys.Update(0)

	assert.Equal(t, 1, dispatched)
	assert.Equal(t, []uint64{1}, gone)
	assert.Zero(t, store.Count())

	sys.Update(0)
	assert.Len(t, gone, 1)
}

func TestOutput_FlushesBufferedPackets(t *testing.T) {
	store := net.NewSessionStore()
	sess := newTestSession(t, 1)
	store.Add(sess)
	sess.Send([]byte{1, 2})

	sys := NewOutputSystem(store)
	assert.Equal(t, coresys.PhaseOutput, sys.Phase())
	sys.Update(0)

	assert.Empty(t, sess.Pending())
	require.Len(t, sess.OutQueue, 1)
	assert.Equal(t, []byte{1, 2}, <-sess.OutQueue)
}

func TestEventDispatch_DeliversPreviousTick(t *testing.T) {
	bus := event.NewBus()
	var seen []uint64
	event.Subscribe(bus, func(e event.SessionClosed) { seen = append(seen, e.SessionID) })

	sys := NewEventDispatchSystem(bus)
	event.Emit(bus, event.SessionClosed{SessionID: 4})
	assert.Empty(t, seen)

	sys.Update(0)
	assert.Equal(t, []uint64{4}, seen)
	sys.Update(0)
	assert.Equal(t, []uint64{4}, seen)
}

type fakeActivity struct {
	names []string
}

func (f *fakeActivity) UpdateLastActive(_ context.Context, name, _ string) error {
	f.names = append(f.names, name)
	return nil
}

func TestPresence_RefreshesEveryInterval(t *testing.T) {
	ws := world.NewState()
	ws.AddPlayer(&world.Player{SessionID: 1, Name: "alice"})
	store := &fakeActivity{}

	sys := NewPresenceSystem(ws, store, zap.NewNop(), 3)
	sys.Update(0)
	sys.Update(0)
	assert.Empty(t, store.names)
	sys.Update(0)
	assert.Equal(t, []string{"alice"}, store.names)

	sys.RefreshAll()
	assert.Len(t, store.names, 2)
}
