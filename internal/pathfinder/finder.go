// Package pathfinder computes routes over a room grid. It is a consumer of the
// tile contract: every step is validated with the tile's standing state, its
// dynamic walkability and the height delta from the previous tile.
package pathfinder

import (
	"context"
	"errors"
	"math"

	"github.com/steerstone/server/internal/room"
	"github.com/zyedidia/generic/heap"
	"github.com/zyedidia/generic/mapset"
)

var (
	// ErrNoPath is returned when the goal cannot be reached.
	ErrNoPath = errors.New("no path")
	// ErrSearchLimit is returned when the search expands more than MaxNodes.
	ErrSearchLimit = errors.New("path search limit reached")
	// ErrStepTooHigh is returned when the height delta between two tiles is too large.
	ErrStepTooHigh = errors.New("step too high")
)

// Grid is what the search needs from a room grid.
type Grid interface {
	Tile(x, y int32) (*room.TileInstance, error)
	Width() int32
	Height() int32
}

// Options tune the search.
type Options struct {
	MaxStepHeight float64 // largest allowed height delta between adjacent tiles
	AllowDiagonal bool
	MaxNodes      int // 0 = width*height
}

// Finder is stateless and safe for concurrent use.
type Finder struct {
	opts Options
}

func New(opts Options) *Finder {
	return &Finder{opts: opts}
}

// Options returns the finder's configuration.
func (f *Finder) Options() Options { return f.opts }

const (
	costStraight = 1.0
	costDiagonal = math.Sqrt2
)

var (
	straightDX = [4]int32{0, 1, 0, -1}
	straightDY = [4]int32{-1, 0, 1, 0}
	diagonalDX = [4]int32{1, 1, -1, -1}
	diagonalDY = [4]int32{-1, 1, 1, -1}
)

// CanStep validates a single move from one tile to an adjacent one. The source
// tile is not checked for walkability: the mover stands on it.
func (f *Finder) CanStep(g Grid, from, to room.Point) error {
	src, err := g.Tile(from.X, from.Y)
	if err != nil {
		return err
	}
	dst, err := g.Tile(to.X, to.Y)
	if err != nil {
		return err
	}
	if dst.GetTileState() != room.TileStateOpen {
		return room.ErrTileClosed
	}
	if !dst.CanWalkOnTile() {
		return room.ErrTileOccupied
	}
	if math.Abs(dst.GetTileHeight()-src.GetTileHeight()) > f.opts.MaxStepHeight {
		return ErrStepTooHigh
	}
	dx, dy := to.X-from.X, to.Y-from.Y
	if dx != 0 && dy != 0 {
		if !f.opts.AllowDiagonal {
			return ErrNoPath
		}
		// no squeezing between two blocked corners
		if !f.walkable(g, room.Point{X: from.X + dx, Y: from.Y}) &&
			!f.walkable(g, room.Point{X: from.X, Y: from.Y + dy}) {
			return room.ErrTileOccupied
		}
	}
	return nil
}

func (f *Finder) walkable(g Grid, p room.Point) bool {
	t, err := g.Tile(p.X, p.Y)
	if err != nil {
		return false
	}
	return t.GetTileState() == room.TileStateOpen && t.CanWalkOnTile()
}

type node struct {
	p room.Point
	g float64
	f float64
}

// FindPath returns the steps from start (exclusive) to goal (inclusive).
// start == goal yields an empty path.
func (f *Finder) FindPath(ctx context.Context, g Grid, start, goal room.Point) ([]room.Point, error) {
	if _, err := g.Tile(start.X, start.Y); err != nil {
		return nil, err
	}
	goalTile, err := g.Tile(goal.X, goal.Y)
	if err != nil {
		return nil, err
	}
	if goalTile.GetTileState() != room.TileStateOpen {
		return nil, room.ErrTileClosed
	}
	if start == goal {
		return nil, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	limit := f.opts.MaxNodes
	if limit <= 0 {
		limit = int(g.Width()) * int(g.Height())
	}

	open := heap.New(func(a, b node) bool {
		if a.f == b.f {
			return a.g > b.g // prefer nodes closer to the goal
		}
		return a.f < b.f
	})
	closed := mapset.New[room.Point]()
	best := map[room.Point]float64{start: 0}
	parent := make(map[room.Point]room.Point)

	open.Push(node{p: start, g: 0, f: f.heuristic(start, goal)})
	expanded := 0

	for open.Size() > 0 {
		cur, _ := open.Pop()
		if closed.Has(cur.p) {
			continue
		}
		if cur.p == goal {
			return reconstruct(parent, start, goal), nil
		}
		closed.Put(cur.p)

		expanded++
		if expanded > limit {
			return nil, ErrSearchLimit
		}
		if expanded%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		for i := range straightDX {
			f.relax(g, open, closed, best, parent, cur, goal,
				room.Point{X: cur.p.X + straightDX[i], Y: cur.p.Y + straightDY[i]}, costStraight)
		}
		if f.opts.AllowDiagonal {
			for i := range diagonalDX {
				f.relax(g, open, closed, best, parent, cur, goal,
					room.Point{X: cur.p.X + diagonalDX[i], Y: cur.p.Y + diagonalDY[i]}, costDiagonal)
			}
		}
	}
	return nil, ErrNoPath
}

func (f *Finder) relax(g Grid, open *heap.Heap[node], closed mapset.Set[room.Point],
	best map[room.Point]float64, parent map[room.Point]room.Point,
	cur node, goal, next room.Point, cost float64) {

	if closed.Has(next) {
		return
	}
	if f.CanStep(g, cur.p, next) != nil {
		return
	}
	ng := cur.g + cost
	if old, seen := best[next]; seen && ng >= old {
		return
	}
	best[next] = ng
	parent[next] = cur.p
	open.Push(node{p: next, g: ng, f: ng + f.heuristic(next, goal)})
}

// heuristic is octile distance with diagonals, Manhattan without.
func (f *Finder) heuristic(a, b room.Point) float64 {
	dx := math.Abs(float64(a.X - b.X))
	dy := math.Abs(float64(a.Y - b.Y))
	if !f.opts.AllowDiagonal {
		return dx + dy
	}
	return costStraight*math.Max(dx, dy) + (costDiagonal-costStraight)*math.Min(dx, dy)
}

func reconstruct(parent map[room.Point]room.Point, start, goal room.Point) []room.Point {
	var rev []room.Point
	for p := goal; p != start; p = parent[p] {
		rev = append(rev, p)
	}
	path := make([]room.Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return path
}
