package models

import "testing"

func TestDecodePayloadSelectsVariant(t *testing.T) {
	payload, err := EncodePayload(CreateTaskPayload{Name: "Buy milk", Priority: 2, ProjectID: "proj_1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodePayload(Transaction{
		Type:       TxCreate,
		EntityType: TableTasks,
		Payload:    payload,
	})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	task, ok := decoded.(*CreateTaskPayload)
	if !ok {
		t.Fatalf("expected *CreateTaskPayload, got %T", decoded)
	}
	if task.Name != "Buy milk" || task.Priority != 2 || task.ProjectID != "proj_1" {
		t.Fatalf("unexpected payload: %+v", task)
	}
}

func TestDecodePayloadDeleteIgnoresEntityType(t *testing.T) {
	payload, err := EncodePayload(DeletePayload{ServerID: "srv-1"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	for _, entityType := range DependencyOrder {
		decoded, err := DecodePayload(Transaction{
			Type:       TxDelete,
			EntityType: entityType,
			Payload:    payload,
		})
		if err != nil {
			t.Fatalf("decode %s: %v", entityType, err)
		}
		del, ok := decoded.(*DeletePayload)
		if !ok || del.ServerID != "srv-1" {
			t.Fatalf("unexpected payload for %s: %#v", entityType, decoded)
		}
	}
}

func TestDecodePayloadRejectsUnknownCombination(t *testing.T) {
	if _, err := DecodePayload(Transaction{Type: TxUpdate, EntityType: TableProjects, Payload: "{}"}); err == nil {
		t.Fatal("expected unknown combination to fail")
	}
	if _, err := DecodePayload(Transaction{Type: "rename", EntityType: TableTasks, Payload: "{}"}); err == nil {
		t.Fatal("expected unknown type to fail")
	}
}

func TestParsePriority(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"urgent", PriorityUrgent, true},
		{"1", PriorityUrgent, true},
		{"LOW", PriorityLow, true},
		{" high ", PriorityHigh, true},
		{"", 0, false},
		{"5", 0, false},
		{"soon", 0, false},
	}
	for _, tc := range cases {
		got, err := ParsePriority(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("ParsePriority(%q) = %d, %v; want %d", tc.in, got, err, tc.want)
		}
		if !tc.ok && err == nil {
			t.Fatalf("ParsePriority(%q) succeeded, want error", tc.in)
		}
	}
}

func TestStalled(t *testing.T) {
	txn := Transaction{Status: TxPending, Retries: MaxRetries - 1}
	if txn.Stalled() {
		t.Fatal("below ceiling should not be stalled")
	}
	txn.Retries = MaxRetries
	if !txn.Stalled() {
		t.Fatal("at ceiling should be stalled")
	}
	txn.Status = TxCommitted
	if txn.Stalled() {
		t.Fatal("committed record is never stalled")
	}
}

func TestDependencyRank(t *testing.T) {
	if DependencyRank(TableProjects) >= DependencyRank(TableTasks) {
		t.Fatal("projects must rank before tasks")
	}
	if DependencyRank(TableTasks) >= DependencyRank(TableContextTasks) {
		t.Fatal("tasks must rank before associations")
	}
	if DependencyRank("widgets") != len(DependencyOrder) {
		t.Fatal("unknown table must rank last")
	}
}
