package main

import (
	"context"
	"errors"
	"net"

	"tasksync/internal/api"
	syncpkg "tasksync/internal/sync"
)

func formatCLIError(err error) []string {
	if err == nil {
		return nil
	}

	lines := []string{err.Error()}

	var remoteErr *api.RemoteError
	if errors.As(err, &remoteErr) {
		switch remoteErr.Code {
		case "unauthorized", "forbidden":
			lines = append(lines, "hint: verify TASKSYNC_API_TOKEN configuration.")
		}
		if remoteErr.Status == 0 {
			lines = append(lines,
				"hint: backend unreachable at TASKSYNC_API_URL; changes are queued locally.",
				"hint: run: tasksync sync once the backend is reachable.")
		}
		if remoteErr.Status >= 500 {
			lines = append(lines, "hint: backend returned an internal error; local changes stay queued until it recovers.")
		}
		return uniqueLines(lines)
	}

	if errors.Is(err, syncpkg.ErrNotInitialized) {
		lines = append(lines, "hint: run an initial sync first with: tasksync sync")
		return uniqueLines(lines)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		lines = append(lines, "hint: request timed out; check backend health or increase TASKSYNC_HTTP_TIMEOUT.")
		return uniqueLines(lines)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		lines = append(lines,
			"hint: backend unreachable at TASKSYNC_API_URL; changes are queued locally.",
			"hint: run: tasksync sync once the backend is reachable.",
		)
		return uniqueLines(lines)
	}

	return uniqueLines(lines)
}

func uniqueLines(lines []string) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		out = append(out, line)
	}
	return out
}
