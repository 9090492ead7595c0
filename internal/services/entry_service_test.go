package services

import (
	"context"
	"errors"
	"testing"

	"soyte/internal/amqp"
	"soyte/internal/core"
	"soyte/internal/store"
)

type fakePublisher struct {
	calls []amqp.Op
	err   error
}

func (f *fakePublisher) PublishEntryChanged(_ context.Context, _, _, _ string, op amqp.Op) error {
	f.calls = append(f.calls, op)
	return f.err
}

var serviceMonth = core.Month{Year: 2024, Month: 1}

func testEntry(day int) core.Entry {
	return core.Entry{Employee: "Linh", Day: day, School: "S1", Class: "1A", Books: 3, Timestamp: 1}
}

func TestEntryServicePublishesChanges(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewEntryService(store.NewMemoryStore(), pub)
	ctx := context.Background()

	id, err := svc.CreateEntry(ctx, "u1", serviceMonth, testEntry(1))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := svc.UpdateEntry(ctx, "u1", serviceMonth, id, 7, "", 2); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := svc.DeleteEntry(ctx, "u1", serviceMonth, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []amqp.Op{amqp.OpCreated, amqp.OpUpdated, amqp.OpDeleted}
	if len(pub.calls) != len(want) {
		t.Fatalf("published ops = %v, want %v", pub.calls, want)
	}
	for i := range want {
		if pub.calls[i] != want[i] {
			t.Fatalf("published ops = %v, want %v", pub.calls, want)
		}
	}
}

func TestEntryServicePublishFailureDoesNotFailWrite(t *testing.T) {
	pub := &fakePublisher{err: errors.New("broker down")}
	mem := store.NewMemoryStore()
	svc := NewEntryService(mem, pub)
	ctx := context.Background()

	id, err := svc.CreateEntry(ctx, "u1", serviceMonth, testEntry(1))
	if err != nil {
		t.Fatalf("create must succeed despite publish error: %v", err)
	}

	entries, _ := mem.ListEntries(ctx, "u1", serviceMonth)
	if len(entries) != 1 || entries[0].ID != id {
		t.Fatalf("entry not persisted: %+v", entries)
	}
}

func TestEntryServiceWithoutPublisher(t *testing.T) {
	svc := NewEntryService(store.NewMemoryStore(), nil)

	if _, err := svc.CreateEntry(context.Background(), "u1", serviceMonth, testEntry(1)); err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestEntryServiceStoreErrorSkipsPublish(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewEntryService(store.NewMemoryStore(), pub)

	err := svc.UpdateEntry(context.Background(), "u1", serviceMonth, "missing", 1, "", 1)
	if err == nil {
		t.Fatal("expected store error")
	}
	if len(pub.calls) != 0 {
		t.Fatalf("publish must not happen on failed write, got %v", pub.calls)
	}
}
