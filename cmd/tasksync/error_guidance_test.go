package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"tasksync/internal/api"
	syncpkg "tasksync/internal/sync"
)

func TestFormatCLIErrorNil(t *testing.T) {
	if lines := formatCLIError(nil); lines != nil {
		t.Fatalf("expected nil, got %v", lines)
	}
}

func TestFormatCLIErrorAuthHint(t *testing.T) {
	err := &api.RemoteError{Status: 401, Code: "unauthorized", Message: "bad token"}
	lines := formatCLIError(err)
	if !containsSubstring(lines, "TASKSYNC_API_TOKEN") {
		t.Fatalf("expected auth hint, got %v", lines)
	}
}

func TestFormatCLIErrorTransportHint(t *testing.T) {
	err := &api.RemoteError{Message: "request failed", Err: errors.New("connection refused")}
	lines := formatCLIError(err)
	if !containsSubstring(lines, "queued locally") {
		t.Fatalf("expected offline hint, got %v", lines)
	}
}

func TestFormatCLIErrorNotInitialized(t *testing.T) {
	err := fmt.Errorf("sync: %w", syncpkg.ErrNotInitialized)
	lines := formatCLIError(err)
	if !containsSubstring(lines, "tasksync sync") {
		t.Fatalf("expected initial sync hint, got %v", lines)
	}
}

func TestFormatCLIErrorDeduplicates(t *testing.T) {
	err := &api.RemoteError{Status: 500, Message: "boom"}
	lines := formatCLIError(err)
	seen := make(map[string]bool)
	for _, line := range lines {
		if seen[line] {
			t.Fatalf("duplicate line %q in %v", line, lines)
		}
		seen[line] = true
	}
}

func containsSubstring(lines []string, substr string) bool {
	for _, line := range lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}
