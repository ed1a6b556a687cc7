// Package saga implements the generic dependency-resolution work-graph
// orchestrator: a processor-parameterized engine that expands a work graph
// by discovery, deduplicates, dispatches to a worker pool, applies
// per-class results to a shared store which may surface further
// unresolved references, retries, and terminates exactly when the graph
// is closed.
package saga

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultMaxRetries is the retry budget per work key before the saga fails
// hard, per spec.
const DefaultMaxRetries = 3

// DefaultWorkersCount is the default worker-pool size.
const DefaultWorkersCount = 3

// Processor is the strategy contract a concrete saga (assets, market
// orders, ...) supplies. All engine state is expressed in terms of W
// (work type), K (the ordered dedup key derived from W), and R (the
// result of processing one work item).
type Processor[W any, K comparable, R any] interface {
	// KeyOf derives a work item's dedup identity. Payload fields
	// irrelevant to dedup must be excluded from K.
	KeyOf(work W) K

	// Process fetches/computes the result for one work item. Blocking
	// network calls belong here.
	Process(ctx context.Context, work W) (R, error)

	// Apply writes result to the shared store and returns any
	// newly-referenced work items it surfaced.
	Apply(ctx context.Context, result R) ([]W, error)
}

type workItem[W any, K comparable] struct {
	work       W
	key        K
	retryCount int
}

type outcome[W any, K comparable] struct {
	key      K
	produced []W
	err      error
}

// Engine is one instance of the generic saga orchestrator, parameterized
// over a concrete Processor.
type Engine[W any, K comparable, R any] struct {
	processor    Processor[W, K, R]
	workersCount int
	maxRetries   int
	RunID        uuid.UUID

	pending  map[K]workItem[W, K]
	inFlight map[K]workItem[W, K]
	resolved map[K]struct{}
}

// Option configures an Engine at construction time.
type Option[W any, K comparable, R any] func(*Engine[W, K, R])

// WithWorkersCount overrides DefaultWorkersCount.
func WithWorkersCount[W any, K comparable, R any](n int) Option[W, K, R] {
	return func(e *Engine[W, K, R]) { e.workersCount = n }
}

// WithMaxRetries overrides DefaultMaxRetries.
func WithMaxRetries[W any, K comparable, R any](n int) Option[W, K, R] {
	return func(e *Engine[W, K, R]) { e.maxRetries = n }
}

// New builds an Engine around processor.
func New[W any, K comparable, R any](processor Processor[W, K, R], opts ...Option[W, K, R]) *Engine[W, K, R] {
	e := &Engine[W, K, R]{
		processor:    processor,
		workersCount: DefaultWorkersCount,
		maxRetries:   DefaultMaxRetries,
		RunID:        uuid.New(),
		pending:      make(map[K]workItem[W, K]),
		inFlight:     make(map[K]workItem[W, K]),
		resolved:     make(map[K]struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FailedWorkError is returned by Run when a work key exhausts its retry
// budget or fails with a permanent error; the saga fails hard as a whole,
// attaching the key and the last error observed for it.
type FailedWorkError[K comparable] struct {
	Key K
	Err error
}

func (e *FailedWorkError[K]) Error() string {
	return fmt.Sprintf("saga: work key %v failed: %v", e.Key, e.Err)
}

func (e *FailedWorkError[K]) Unwrap() error { return e.Err }

// Run seeds the graph with seed, starts the worker pool, and drives the
// engine loop until the graph closes or a work key fails permanently or
// exhausts its retries. It returns only once every worker has exited.
func (e *Engine[W, K, R]) Run(ctx context.Context, seed []W) error {
	log.Info().Str("saga_run_id", e.RunID.String()).Int("seed_count", len(seed)).Msg("saga starting")

	for _, w := range seed {
		e.insertPending(w)
	}

	workCh := make(chan workItem[W, K])
	resultCh := make(chan outcome[W, K])

	var wg sync.WaitGroup
	for i := 0; i < e.workersCount; i++ {
		wg.Add(1)
		workerID := uuid.New()
		go e.runWorker(ctx, workerID, workCh, resultCh, &wg)
	}

	runErr := e.loop(ctx, workCh, resultCh)

	close(workCh)
	wg.Wait()

	if runErr != nil {
		log.Error().Str("saga_run_id", e.RunID.String()).Err(runErr).Msg("saga failed")
		return runErr
	}
	log.Info().Str("saga_run_id", e.RunID.String()).Msg("saga completed")
	return nil
}

func (e *Engine[W, K, R]) loop(ctx context.Context, workCh chan<- workItem[W, K], resultCh <-chan outcome[W, K]) error {
	for {
		if item, ok := e.nextDispatch(); ok {
			select {
			case workCh <- item:
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-resultCh:
			if !ok {
				return fmt.Errorf("saga: result channel closed unexpectedly")
			}
			if err := e.handleOutcome(msg); err != nil {
				return err
			}
		}

		if e.isComplete() {
			return nil
		}
	}
}

// nextDispatch pops the smallest-by-key pending item not already in
// flight or resolved, moving it into in_flight. Key ordering makes
// dispatch deterministic for testing; it is not a semantic guarantee.
func (e *Engine[W, K, R]) nextDispatch() (workItem[W, K], bool) {
	if len(e.pending) == 0 {
		return workItem[W, K]{}, false
	}

	keys := make([]K, 0, len(e.pending))
	for k := range e.pending {
		keys = append(keys, k)
	}
	// K need only be comparable, not ordered, so dispatch order is fixed
	// by a stable string projection — deterministic for testing, per
	// spec not a semantic guarantee; any fair ordering is substitutable.
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprintf("%+v", keys[i]) < fmt.Sprintf("%+v", keys[j])
	})

	key := keys[0]
	item := e.pending[key]
	delete(e.pending, key)

	e.inFlight[key] = item
	return item, true
}

func (e *Engine[W, K, R]) handleOutcome(msg outcome[W, K]) error {
	if msg.err != nil {
		return e.handleFailure(msg)
	}
	return e.handleSuccess(msg)
}

func (e *Engine[W, K, R]) handleSuccess(msg outcome[W, K]) error {
	delete(e.inFlight, msg.key)
	e.resolved[msg.key] = struct{}{}

	for _, produced := range msg.produced {
		key := e.processor.KeyOf(produced)
		if e.isResolvedOrInFlight(key) {
			continue
		}
		e.insertPending(produced)
	}
	return nil
}

func (e *Engine[W, K, R]) handleFailure(msg outcome[W, K]) error {
	item, ok := e.inFlight[msg.key]
	if !ok {
		return nil
	}
	delete(e.inFlight, msg.key)

	// An error that reports Temporary() == false is permanent and fails the
	// saga at once; every other error is retried within the budget.
	var temp interface{ Temporary() bool }
	permanent := errors.As(msg.err, &temp) && !temp.Temporary()

	item.retryCount++
	if !permanent && item.retryCount < e.maxRetries {
		log.Warn().Str("saga_run_id", e.RunID.String()).Any("work_key", msg.key).Int("retry", item.retryCount).Err(msg.err).Msg("retrying work item")
		e.pending[msg.key] = item
		return nil
	}

	return &FailedWorkError[K]{Key: msg.key, Err: msg.err}
}

func (e *Engine[W, K, R]) insertPending(w W) {
	key := e.processor.KeyOf(w)
	if e.isResolvedOrInFlight(key) {
		return
	}
	if _, exists := e.pending[key]; exists {
		return
	}
	e.pending[key] = workItem[W, K]{work: w, key: key}
}

func (e *Engine[W, K, R]) isResolvedOrInFlight(key K) bool {
	if _, ok := e.inFlight[key]; ok {
		return true
	}
	_, ok := e.resolved[key]
	return ok
}

func (e *Engine[W, K, R]) isComplete() bool {
	return len(e.pending) == 0 && len(e.inFlight) == 0
}

func (e *Engine[W, K, R]) runWorker(ctx context.Context, workerID uuid.UUID, workCh <-chan workItem[W, K], resultCh chan<- outcome[W, K], wg *sync.WaitGroup) {
	defer wg.Done()

	for item := range workCh {
		log.Debug().Str("worker_id", workerID.String()).Any("work_key", item.key).Msg("processing work item")

		result, err := e.processor.Process(ctx, item.work)
		if err != nil {
			resultCh <- outcome[W, K]{key: item.key, err: err}
			continue
		}

		produced, err := e.processor.Apply(ctx, result)
		if err != nil {
			resultCh <- outcome[W, K]{key: item.key, err: err}
			continue
		}

		resultCh <- outcome[W, K]{key: item.key, produced: produced}
	}
}
