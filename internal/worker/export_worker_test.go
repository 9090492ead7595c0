package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"soyte/internal/amqp"
	"soyte/internal/core"
	"soyte/internal/excel"
	"soyte/internal/store"
)

type fakeMirror struct {
	rows []string
	err  error
}

func (f *fakeMirror) AppendEntry(_ context.Context, _ string, _ core.Month, e core.Entry, op string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, e.ID+":"+op)
	return "Entries!A1:K1", nil
}

func seededStore(t *testing.T) (*store.MemoryStore, core.Month, string) {
	t.Helper()
	mem := store.NewMemoryStore()
	month := core.Month{Year: 2024, Month: 1}
	ctx := context.Background()

	if _, err := mem.CreateEmployee(ctx, "u1", core.Employee{Name: "Linh"}); err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	id, err := mem.CreateEntry(ctx, "u1", month, core.Entry{
		Employee: "Linh", Day: 2, School: "S1", Class: "1A", Books: 5, Timestamp: 1,
	})
	if err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return mem, month, id
}

func TestHandleEntryChangedWritesWorkbook(t *testing.T) {
	mem, month, entryID := seededStore(t)
	dir := t.TempDir()
	mirror := &fakeMirror{}
	w := NewExportWorker(mem, excel.Projector{Strategy: excel.FormulaLinked, Price: 3.5}, dir, mirror)

	msg := &amqp.EntryChangedMessage{UserID: "u1", Month: month.Key(), EntryID: entryID, Op: amqp.OpCreated}
	if err := w.HandleEntryChanged(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	path := filepath.Join(dir, excel.Filename(month))
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("workbook not written: %v", err)
	}
	if len(mirror.rows) != 1 || mirror.rows[0] != entryID+":created" {
		t.Fatalf("mirror rows = %v", mirror.rows)
	}
}

func TestHandleEntryChangedWithoutMirror(t *testing.T) {
	mem, month, entryID := seededStore(t)
	dir := t.TempDir()
	w := NewExportWorker(mem, excel.Projector{Strategy: excel.FormulaLinked, Price: 3.5}, dir, nil)

	msg := &amqp.EntryChangedMessage{UserID: "u1", Month: month.Key(), EntryID: entryID, Op: amqp.OpUpdated}
	if err := w.HandleEntryChanged(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
}

func TestHandleEntryChangedMirrorFailureRequeues(t *testing.T) {
	mem, month, entryID := seededStore(t)
	dir := t.TempDir()
	w := NewExportWorker(mem, excel.Projector{Strategy: excel.FormulaLinked, Price: 3.5}, dir, &fakeMirror{err: errors.New("quota")})

	msg := &amqp.EntryChangedMessage{UserID: "u1", Month: month.Key(), EntryID: entryID, Op: amqp.OpCreated}
	if err := w.HandleEntryChanged(context.Background(), msg); err == nil {
		t.Fatal("expected mirror error to propagate")
	}

	// The workbook itself was still regenerated before the mirror step.
	if _, err := os.Stat(filepath.Join(dir, excel.Filename(month))); err != nil {
		t.Fatalf("workbook missing: %v", err)
	}
}

func TestHandleEntryChangedRejectsBadMonth(t *testing.T) {
	mem, _, _ := seededStore(t)
	w := NewExportWorker(mem, excel.Projector{}, t.TempDir(), nil)

	msg := &amqp.EntryChangedMessage{UserID: "u1", Month: "01-2024", EntryID: "x", Op: amqp.OpCreated}
	if err := w.HandleEntryChanged(context.Background(), msg); err == nil {
		t.Fatal("expected month parse error")
	}
}

func TestHandleDeletedEntryMirrorsTombstone(t *testing.T) {
	mem, month, entryID := seededStore(t)
	if err := mem.DeleteEntry(context.Background(), "u1", month, entryID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	mirror := &fakeMirror{}
	w := NewExportWorker(mem, excel.Projector{Strategy: excel.StaticValues, Price: 3.5}, t.TempDir(), mirror)

	msg := &amqp.EntryChangedMessage{UserID: "u1", Month: month.Key(), EntryID: entryID, Op: amqp.OpDeleted}
	if err := w.HandleEntryChanged(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(mirror.rows) != 1 || mirror.rows[0] != entryID+":deleted" {
		t.Fatalf("mirror rows = %v", mirror.rows)
	}
}
