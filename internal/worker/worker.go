// Package worker drains the persisted request queue through the pipeline.
package worker

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/calendar-agent/internal/db"
	"github.com/jonathan/calendar-agent/internal/types"
)

// Store is the queue surface the pool needs from the database.
type Store interface {
	ClaimRequest(ctx context.Context) (*db.StoredRequest, error)
	SaveOutcome(ctx context.Context, outcome *types.PipelineOutcome) error
	FinishRequest(ctx context.Context, id uuid.UUID, status types.RequestStatus) error
}

// Runner runs one request through the pipeline to a terminal outcome.
type Runner interface {
	Run(ctx context.Context, rec types.RequestRecord, ref types.Reference) *types.PipelineOutcome
}

// Options holds configuration for the worker pool.
type Options struct {
	Workers      int           // concurrent workers (default 4)
	PollInterval time.Duration // idle wait between empty claims (default 2s)
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 2 * time.Second
	}
	return o
}

// Pool claims pending requests and processes them concurrently.
type Pool struct {
	store  Store
	runner Runner
	opts   Options
}

// New creates a worker pool over the given store and pipeline.
func New(store Store, runner Runner, opts Options) *Pool {
	return &Pool{store: store, runner: runner, opts: opts.withDefaults()}
}

// Run blocks until ctx is canceled, keeping Workers goroutines draining the
// queue. Cancellation is a graceful drain: in-flight requests finish and
// persist before the pool returns.
func (p *Pool) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)
	for i := 0; i < p.opts.Workers; i++ {
		id := i + 1
		g.Go(func() error {
			p.drain(gCtx, id)
			return nil
		})
	}
	return g.Wait()
}

func (p *Pool) drain(ctx context.Context, id int) {
	for {
		if ctx.Err() != nil {
			return
		}

		req, err := p.store.ClaimRequest(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker %d: claim failed: %v", id, err)
			if !p.idle(ctx) {
				return
			}
			continue
		}
		if req == nil {
			if !p.idle(ctx) {
				return
			}
			continue
		}

		p.process(ctx, req)
	}
}

// idle waits one jittered poll interval. Jitter spreads concurrent workers
// so an empty queue is not hit by every worker at once. Returns false when
// the context was canceled during the wait.
func (p *Pool) idle(ctx context.Context) bool {
	wait := p.opts.PollInterval + time.Duration(rand.Int63n(int64(p.opts.PollInterval/2)+1))
	select {
	case <-ctx.Done():
		return false
	case <-time.After(wait):
		return true
	}
}

func (p *Pool) process(ctx context.Context, req *db.StoredRequest) {
	outcome := p.runner.Run(ctx, req.Record(), types.ReferenceAt(req.ReferenceAt, req.Timezone))

	// Persistence must survive a shutdown that interrupted the run itself.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	if err := p.store.SaveOutcome(persistCtx, outcome); err != nil {
		log.Printf("worker: save outcome for %s: %v", req.ID, err)
	}
	if err := p.store.FinishRequest(persistCtx, req.ID, StatusForState(outcome.State)); err != nil {
		log.Printf("worker: finish request %s: %v", req.ID, err)
	}
}

// StatusForState maps a pipeline terminal state to the queue status recorded
// on the request row.
func StatusForState(state types.TerminalState) types.RequestStatus {
	switch state {
	case types.StateCompleted:
		return types.RequestStatusCompleted
	case types.StateRejected:
		return types.RequestStatusRejected
	default:
		return types.RequestStatusFailed
	}
}
