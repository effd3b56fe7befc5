package room

import (
	"math"
	"sync/atomic"
)

// Point is a grid coordinate.
type Point struct {
	X, Y int32
}

// Habbo is a connected user's avatar inside a room.
//
// Position fields are atomics: tiles read them from pathfinder workers while
// the room loop writes them. Path, Goal and Replanned belong to the room loop
// goroutine and need no lock.
type Habbo struct {
	id        ActorID
	Name      string
	SessionID uint64

	x, y    atomic.Int32
	z       atomic.Uint64 // math.Float64bits
	heading atomic.Int32

	Path      []Point // remaining steps, next step first
	Goal      Point
	Replanned bool // one re-plan allowed per walk when the next step gets blocked
}

// NewHabbo creates an actor that is not yet in any room.
func NewHabbo(id ActorID, name string, sessionID uint64) *Habbo {
	return &Habbo{id: id, Name: name, SessionID: sessionID}
}

func (h *Habbo) ID() ActorID         { return h.id }
func (h *Habbo) GetPositionX() int32 { return h.x.Load() }
func (h *Habbo) GetPositionY() int32 { return h.y.Load() }

// Position returns both coordinates.
func (h *Habbo) Position() Point {
	return Point{X: h.x.Load(), Y: h.y.Load()}
}

// SetPosition moves the avatar. Only the room loop calls this.
func (h *Habbo) SetPosition(x, y int32) {
	h.x.Store(x)
	h.y.Store(y)
}

func (h *Habbo) Z() float64     { return math.Float64frombits(h.z.Load()) }
func (h *Habbo) SetZ(z float64) { h.z.Store(math.Float64bits(z)) }

func (h *Habbo) Heading() int32     { return h.heading.Load() }
func (h *Habbo) SetHeading(d int32) { h.heading.Store(d) }

// IsWalking reports whether the avatar still has steps queued.
func (h *Habbo) IsWalking() bool { return len(h.Path) > 0 }

// StopWalking drops the remaining path.
func (h *Habbo) StopWalking() {
	h.Path = nil
	h.Replanned = false
}

// HeadingTo returns the 8-way heading from (sx,sy) to (tx,ty).
// 0=N, 1=NE, 2=E, 3=SE, 4=S, 5=SW, 6=W, 7=NW.
func HeadingTo(sx, sy, tx, ty int32) int32 {
	dx := sign(tx - sx)
	dy := sign(ty - sy)
	for i := range headingDX {
		if headingDX[i] == dx && headingDY[i] == dy {
			return int32(i)
		}
	}
	return 0
}

// heading direction deltas: 0=N, 1=NE, 2=E, 3=SE, 4=S, 5=SW, 6=W, 7=NW
var headingDX = [8]int32{0, 1, 1, 1, 0, -1, -1, -1}
var headingDY = [8]int32{-1, -1, 0, 1, 1, 1, 0, -1}

func sign(v int32) int32 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
