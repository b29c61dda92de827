package main

import (
	"context"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"tasksync/internal/models"
	"tasksync/internal/store"
)

const seedYAML = `
projects:
  - Groceries
contexts:
  - home
  - errands
tasks:
  - name: Buy milk
    priority: 2
    project: Groceries
    contexts: [home, errands]
  - name: Water plants
`

func testImportStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func parseSeed(t *testing.T, raw string) seedFile {
	t.Helper()
	var seed seedFile
	if err := yaml.Unmarshal([]byte(raw), &seed); err != nil {
		t.Fatalf("parse seed: %v", err)
	}
	return seed
}

func TestImportSeedCreatesEntities(t *testing.T) {
	st := testImportStore(t)
	ctx := context.Background()

	summary, err := importSeed(ctx, st, parseSeed(t, seedYAML))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if summary.Projects != 1 || summary.Contexts != 2 || summary.Tasks != 2 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	tasks, err := st.ListTasksWithDetails(ctx)
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	for _, task := range tasks {
		switch task.Name {
		case "Buy milk":
			if task.Priority != 2 || task.ProjectName != "Groceries" || len(task.ContextNames) != 2 {
				t.Fatalf("unexpected task: %+v", task)
			}
		case "Water plants":
			if task.Priority != models.DefaultPriority {
				t.Fatalf("expected default priority, got %d", task.Priority)
			}
		default:
			t.Fatalf("unexpected task %q", task.Name)
		}
	}
}

func TestImportSeedIsRepeatable(t *testing.T) {
	st := testImportStore(t)
	ctx := context.Background()

	seed := parseSeed(t, "projects:\n  - Groceries\ncontexts:\n  - home\n")
	if _, err := importSeed(ctx, st, seed); err != nil {
		t.Fatalf("first import: %v", err)
	}
	summary, err := importSeed(ctx, st, seed)
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if summary.Projects != 0 || summary.Contexts != 0 {
		t.Fatalf("expected second import to skip existing names, got %+v", summary)
	}
}

func TestImportSeedRejectsUnknownReferences(t *testing.T) {
	st := testImportStore(t)
	ctx := context.Background()

	seed := parseSeed(t, "tasks:\n  - name: Orphan\n    project: Nowhere\n")
	if _, err := importSeed(ctx, st, seed); err == nil {
		t.Fatal("expected unknown project reference to fail")
	}
}

func TestValidateSeed(t *testing.T) {
	if err := validateSeed(seedFile{Tasks: []seedTask{{Name: ""}}}); err == nil {
		t.Fatal("expected unnamed task to fail")
	}
	if err := validateSeed(seedFile{Tasks: []seedTask{{Name: "x", Priority: 9}}}); err == nil {
		t.Fatal("expected invalid priority to fail")
	}
	if err := validateSeed(seedFile{Tasks: []seedTask{{Name: "x", Priority: 2}}}); err != nil {
		t.Fatalf("valid seed rejected: %v", err)
	}
}
