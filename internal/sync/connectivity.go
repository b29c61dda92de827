package sync

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// DefaultPollInterval is how often the poll monitor probes the backend
// when no interval is configured.
const DefaultPollInterval = 30 * time.Second

// Monitor watches backend reachability. Watch blocks until the context
// is cancelled and invokes onChange on every transition.
type Monitor interface {
	Watch(ctx context.Context, onChange func(online bool)) error
}

// PollMonitor probes the backend health endpoint on a fixed interval.
// Repeated probes with the same outcome are deduplicated; onChange fires
// only when reachability flips.
type PollMonitor struct {
	remote   Remote
	interval time.Duration
	log      *slog.Logger
	online   atomic.Bool
}

func NewPollMonitor(remote Remote, interval time.Duration, logger *slog.Logger) *PollMonitor {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PollMonitor{
		remote:   remote,
		interval: interval,
		log:      logger.With("component", "connectivity"),
	}
}

func (m *PollMonitor) Watch(ctx context.Context, onChange func(online bool)) error {
	// Probe once up front so callers see a real state before the first
	// tick.
	m.probe(ctx, onChange)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.probe(ctx, onChange)
		}
	}
}

func (m *PollMonitor) probe(ctx context.Context, onChange func(online bool)) {
	err := m.remote.Ping(ctx)
	online := err == nil
	if m.online.Swap(online) == online {
		return
	}
	if online {
		m.log.Info("backend reachable")
	} else {
		m.log.Warn("backend unreachable", "error", err)
	}
	if onChange != nil {
		onChange(online)
	}
}
