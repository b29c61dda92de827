package sync

import "log/slog"

// Sink receives a notification after every settled mutation, keyed by
// entity table name, so read-side caches know to refetch.
type Sink interface {
	Invalidate(entityType string)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(entityType string)

func (f SinkFunc) Invalidate(entityType string) {
	f(entityType)
}

// NoopSink discards invalidation notifications.
type NoopSink struct{}

func (NoopSink) Invalidate(string) {}

// LogSink logs invalidations at debug level. Useful when no UI cache is
// attached.
type LogSink struct {
	Log *slog.Logger
}

func (s LogSink) Invalidate(entityType string) {
	logger := s.Log
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("cache invalidated", "entity", entityType)
}
