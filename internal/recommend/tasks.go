package recommend

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/venuerank/pkg/models"
)

type taskKind int

const (
	taskRecomputeActor taskKind = iota
	taskRebuildHotelHistory
)

type task struct {
	kind    taskKind
	actorID string
	role    models.ActorRole
	hotelID string
}

// taskQueue serializes background vector rebuilds. Enqueue never blocks:
// when the queue is full the task is dropped, because a later signal for
// the same actor triggers the same rebuild anyway.
type taskQueue struct {
	ch      chan task
	run     func(ctx context.Context, t task) error
	wg      sync.WaitGroup
	started atomic.Bool
	dropped atomic.Int64
}

func newTaskQueue(size int, run func(ctx context.Context, t task) error) *taskQueue {
	if size <= 0 {
		size = 256
	}
	return &taskQueue{ch: make(chan task, size), run: run}
}

// Start launches the single worker goroutine. The worker exits when ctx
// is cancelled.
func (q *taskQueue) Start(ctx context.Context) {
	if !q.started.CompareAndSwap(false, true) {
		return
	}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case t := <-q.ch:
				if err := q.run(ctx, t); err != nil && ctx.Err() == nil {
					log.Warn().Err(err).Int("kind", int(t.kind)).Msg("Vector rebuild failed")
				}
			}
		}
	}()
}

// Stop waits for the worker to exit. Call after cancelling the context
// passed to Start.
func (q *taskQueue) Stop() {
	if q.started.Load() {
		q.wg.Wait()
	}
}

// Enqueue submits a task, dropping it when the queue is full.
func (q *taskQueue) Enqueue(t task) {
	select {
	case q.ch <- t:
	default:
		n := q.dropped.Add(1)
		if n%100 == 1 {
			log.Warn().Int64("dropped", n).Msg("Vector rebuild queue full")
		}
	}
}

// Dropped returns how many tasks were discarded due to backpressure.
func (q *taskQueue) Dropped() int64 {
	return q.dropped.Load()
}

// runTask dispatches one queued rebuild.
func (s *Service) runTask(ctx context.Context, t task) error {
	switch t.kind {
	case taskRecomputeActor:
		return s.RecomputeActorVector(ctx, t.actorID, t.role)
	case taskRebuildHotelHistory:
		return s.RebuildHotelHistoryVector(ctx, t.hotelID)
	}
	return nil
}
