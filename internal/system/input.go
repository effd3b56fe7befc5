package system

import (
	"time"

	coresys "github.com/steerstone/server/internal/core/system"
	"github.com/steerstone/server/internal/net"
	"github.com/steerstone/server/internal/net/packet"
	"go.uber.org/zap"
)

// InputSystem drains packet queues from all sessions and dispatches them
// through the packet registry. Phase 0 (Input).
type InputSystem struct {
	netServer    *net.Server
	registry     *packet.Registry
	store        *net.SessionStore
	maxPerTick   int
	onDisconnect func(*net.Session)
	log          *zap.Logger
}

// NewInputSystem builds the input stage. onDisconnect runs once per closed
// session after its remaining packets were dispatched.
func NewInputSystem(
	netServer *net.Server,
	registry *packet.Registry,
	store *net.SessionStore,
	maxPerTick int,
	onDisconnect func(*net.Session),
	log *zap.Logger,
) *InputSystem {
	return &InputSystem{
		netServer:    netServer,
		registry:     registry,
		store:        store,
		maxPerTick:   maxPerTick,
		onDisconnect: onDisconnect,
		log:          log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	if s.netServer != nil {
		s.acceptSessions()
	}

	for id, sess := range s.store.Raw() {
		if sess.IsClosed() {
			// packets sent just before the close still count
			s.drain(sess)
			sess.FlushOutput()
			if s.onDisconnect != nil {
				s.onDisconnect(sess)
			}
			if s.netServer != nil {
				s.netServer.NotifyDead(id)
			}
			s.store.Remove(id)
			continue
		}
		s.drain(sess)
	}

	// 提前 flush：Phase 0 產生的回應立即進入 OutQueue，
	// Phase 3 的 OutputSystem 再送出其餘封包。
	s.store.ForEach(func(sess *net.Session) {
		sess.FlushOutput()
	})
}

func (s *InputSystem) acceptSessions() {
	for {
		select {
		case sess := <-s.netServer.NewSessions():
			s.store.Add(sess)
		default:
			goto doneNew
		}
	}
doneNew:

	for {
		select {
		case id := <-s.netServer.DeadSessions():
			s.store.Remove(id)
		default:
			return
		}
	}
}

func (s *InputSystem) drain(sess *net.Session) {
	for i := 0; i < s.maxPerTick; i++ {
		select {
		case data := <-sess.InQueue:
			if err := s.registry.Dispatch(sess, sess.State(), data); err != nil {
				s.log.Debug("封包分派錯誤",
					zap.Uint64("session", sess.ID),
					zap.Error(err),
				)
			}
		default:
			return
		}
	}
}

// SessionCount returns the current number of active sessions.
func (s *InputSystem) SessionCount() int {
	return s.store.Count()
}
