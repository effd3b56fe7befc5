package system

import (
	"time"

	"github.com/steerstone/server/internal/core/event"
	coresys "github.com/steerstone/server/internal/core/system"
	"github.com/steerstone/server/internal/pathfinder"
	"github.com/steerstone/server/internal/room"
	"github.com/steerstone/server/internal/world"
	"go.uber.org/zap"
)

// PathService is the search side of movement. *pathfinder.Pool satisfies it.
type PathService interface {
	Submit(req pathfinder.Request) (string, bool)
	Results() <-chan pathfinder.Result
	Finder() *pathfinder.Finder
}

// MovementSystem applies finished path searches and walks every avatar one
// tile per tick. Phase 2 (Update).
//
// Each step is re-validated against the live grid. When the next tile has
// become blocked since the search, the walk is re-planned once from the
// current tile; a second block ends the walk with PathBlocked.
type MovementSystem struct {
	rooms *room.Manager
	world *world.State
	paths PathService
	bus   *event.Bus
	log   *zap.Logger
}

func NewMovementSystem(rooms *room.Manager, ws *world.State, paths PathService, bus *event.Bus, log *zap.Logger) *MovementSystem {
	return &MovementSystem{rooms: rooms, world: ws, paths: paths, bus: bus, log: log}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseUpdate }

func (s *MovementSystem) Update(_ time.Duration) {
	s.drainResults()
	s.rooms.Each(func(r *room.Room) {
		for _, h := range r.Actors() {
			if h.IsWalking() {
				s.step(r, h)
			}
		}
	})
}

func (s *MovementSystem) drainResults() {
	for {
		select {
		case res := <-s.paths.Results():
			s.applyResult(res)
		default:
			return
		}
	}
}

func (s *MovementSystem) applyResult(res pathfinder.Result) {
	p := s.world.GetByActor(res.Actor)
	if p == nil || p.PathRequest != res.ID || p.RoomID != res.RoomID {
		return // superseded or gone
	}
	p.PathRequest = ""
	h := p.Habbo
	if res.Err != nil {
		h.StopWalking()
		s.emitBlocked(p, h)
		return
	}
	h.Path = res.Path
}

func (s *MovementSystem) step(r *room.Room, h *room.Habbo) {
	from := h.Position()
	next := h.Path[0]

	err := errNotAdjacent
	if adjacent(from, next) {
		err = s.paths.Finder().CanStep(r.Grid(), from, next)
		if err == nil {
			err = r.StepActor(h, next.X, next.Y)
		}
	}
	if err != nil {
		s.blocked(r, h, err)
		return
	}

	h.Path = h.Path[1:]
	event.Emit(s.bus, event.ActorWalked{
		RoomID:  r.ID,
		ActorID: h.ID(),
		X:       next.X,
		Y:       next.Y,
		Z:       h.Z(),
		Heading: h.Heading(),
		Moving:  len(h.Path) > 0,
	})
	if len(h.Path) == 0 {
		h.StopWalking()
	}
}

// blocked handles a step that failed validation.
func (s *MovementSystem) blocked(r *room.Room, h *room.Habbo, cause error) {
	p := s.world.GetByActor(h.ID())
	if p == nil {
		h.StopWalking()
		return
	}
	if h.Replanned {
		h.StopWalking()
		s.emitBlocked(p, h)
		return
	}

	h.Path = nil
	h.Replanned = true
	id, ok := s.paths.Submit(pathfinder.Request{
		RoomID: r.ID,
		Actor:  h.ID(),
		Grid:   r.Grid(),
		Start:  h.Position(),
		Goal:   h.Goal,
	})
	if !ok {
		h.StopWalking()
		s.emitBlocked(p, h)
		return
	}
	p.PathRequest = id
	s.log.Debug("路徑受阻，重新尋路",
		zap.Uint32("actor", uint32(h.ID())),
		zap.Int32("room", r.ID),
		zap.Error(cause),
	)
}

func (s *MovementSystem) emitBlocked(p *world.Player, h *room.Habbo) {
	event.Emit(s.bus, event.PathBlocked{
		RoomID:    p.RoomID,
		ActorID:   h.ID(),
		SessionID: p.SessionID,
		GoalX:     h.Goal.X,
		GoalY:     h.Goal.Y,
	})
}

func adjacent(a, b room.Point) bool {
	dx, dy := a.X-b.X, a.Y-b.Y
	return dx >= -1 && dx <= 1 && dy >= -1 && dy <= 1 && (dx != 0 || dy != 0)
}
