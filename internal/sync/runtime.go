package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"tasksync/internal/store"
)

// RuntimeOptions tunes the sync runtime. Zero values fall back to the
// package defaults.
type RuntimeOptions struct {
	BatchSize    int
	PollInterval time.Duration
	Sink         Sink
	Logger       *slog.Logger
}

// Runtime ties the initial sync engine, the transaction processor and
// the connectivity monitor together and owns the initialization gate:
// Resync is refused with ErrNotInitialized until one initial sync has
// completed. Draining the pending queue needs no merge baseline, so an
// aborted initial sync never blocks it.
type Runtime struct {
	store       *store.Store
	engine      *Engine
	processor   *Processor
	monitor     Monitor
	log         *slog.Logger
	initialized atomic.Bool
}

func NewRuntime(st *store.Store, remote Remote, opts RuntimeOptions) *Runtime {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	proc := NewProcessor(st, remote, opts.Sink, logger)
	proc.SetBatchSize(opts.BatchSize)
	return &Runtime{
		store:     st,
		engine:    NewEngine(st, remote, logger),
		processor: proc,
		monitor:   NewPollMonitor(remote, opts.PollInterval, logger),
		log:       logger.With("component", "runtime"),
	}
}

// Initialized reports whether an initial sync has completed.
func (r *Runtime) Initialized() bool { return r.initialized.Load() }

// Start runs one initial sync attempt, then blocks watching
// connectivity until the context is cancelled. An aborted initial sync
// is tolerated: the runtime stays up, keeps draining queued mutations,
// and retries the sync when the backend next becomes reachable.
func (r *Runtime) Start(ctx context.Context) error {
	r.initialize(ctx)
	return r.monitor.Watch(ctx, func(online bool) {
		if !online {
			return
		}
		if !r.initialized.Load() {
			r.initialize(ctx)
			return
		}
		r.drain(ctx)
	})
}

func (r *Runtime) initialize(ctx context.Context) {
	err := r.engine.Run(ctx)
	if err != nil {
		var aborted *SyncAbortedError
		if errors.As(err, &aborted) {
			// The merge rolled back but the session proceeds on local
			// state, and queued mutations can still replay against the
			// backend's mutation endpoints.
			r.log.Warn("initial sync aborted, draining pending queue", "error", err)
			r.drain(ctx)
			return
		}
		r.log.Error("initial sync failed", "error", err)
		return
	}
	r.initialized.Store(true)
	r.drain(ctx)
}

func (r *Runtime) drain(ctx context.Context) {
	if err := r.processor.ProcessPending(ctx); err != nil {
		r.log.Warn("processing pass failed", "error", err)
	}
}

// ProcessNow runs one processing pass over the pending queue.
func (r *Runtime) ProcessNow(ctx context.Context) error {
	return r.processor.ProcessPending(ctx)
}

// Resync re-runs the initial sync merge against current remote state.
func (r *Runtime) Resync(ctx context.Context) error {
	if !r.initialized.Load() {
		return ErrNotInitialized
	}
	return r.engine.Run(ctx)
}
