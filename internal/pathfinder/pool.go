package pathfinder

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/steerstone/server/internal/room"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Request asks for a route for one actor.
type Request struct {
	ID     string // assigned by Submit when empty
	RoomID int32
	Actor  room.ActorID
	Grid   Grid
	Start  room.Point
	Goal   room.Point
}

// Result is delivered on Pool.Results once a request has been searched.
type Result struct {
	Request
	Path []room.Point
	Err  error
	Took time.Duration
}

// Pool runs path searches on worker goroutines so the room update loop never
// blocks on a search. Workers read tiles concurrently with the loop mutating
// them; the tile locks make each query consistent.
type Pool struct {
	finder  *Finder
	workers int
	reqs    chan Request
	results chan Result
	tracer  trace.Tracer
	log     *zap.Logger
}

func NewPool(finder *Finder, workers, queueSize int, tracer trace.Tracer, log *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		finder:  finder,
		workers: workers,
		reqs:    make(chan Request, queueSize),
		results: make(chan Result, queueSize),
		tracer:  tracer,
		log:     log,
	}
}

// Finder returns the pool's finder (for single-step validation in the loop).
func (p *Pool) Finder() *Finder { return p.finder }

// Submit queues a request without blocking. Returns the request ID and false
// if the queue is full.
func (p *Pool) Submit(req Request) (string, bool) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	select {
	case p.reqs <- req:
		return req.ID, true
	default:
		return req.ID, false
	}
}

// Results returns the channel the room loop drains each tick.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Run starts the workers and blocks until ctx is cancelled.
func (p *Pool) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < p.workers; i++ {
		g.Go(func() error {
			return p.work(ctx)
		})
	}
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (p *Pool) work(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case req := <-p.reqs:
			res := p.search(ctx, req)
			select {
			case p.results <- res:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}

func (p *Pool) search(ctx context.Context, req Request) Result {
	ctx, span := p.tracer.Start(ctx, "pathfinder.search",
		trace.WithAttributes(
			attribute.String("request.id", req.ID),
			attribute.Int("room.id", int(req.RoomID)),
			attribute.Int("actor.id", int(req.Actor)),
		))
	defer span.End()

	start := time.Now()
	path, err := p.finder.FindPath(ctx, req.Grid, req.Start, req.Goal)
	took := time.Since(start)

	span.SetAttributes(attribute.Int("path.length", len(path)))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		p.log.Debug("尋路失敗",
			zap.String("request", req.ID),
			zap.Uint32("actor", uint32(req.Actor)),
			zap.Error(err),
		)
	}
	return Result{Request: req, Path: path, Err: err, Took: took}
}
