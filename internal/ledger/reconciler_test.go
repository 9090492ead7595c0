package ledger

import (
	"context"
	"errors"
	"testing"

	"soyte/internal/core"
	"soyte/internal/store"
)

const testUser = "u1"

var testMonth = core.Month{Year: 2024, Month: 1}

func confirm(core.Entry) bool { return true }
func deny(core.Entry) bool    { return false }

func newTestReconciler() (*Reconciler, *store.MemoryStore) {
	mem := store.NewMemoryStore()
	return NewReconciler(mem), mem
}

func candidate(books string) Candidate {
	return Candidate{Employee: "Linh", Day: 1, School: "S1", Class: "1A", Books: books}
}

func TestSubmitCreates(t *testing.T) {
	r, mem := newTestReconciler()

	res, err := r.Submit(context.Background(), testUser, testMonth, candidate("5"), nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if res.Outcome != Created {
		t.Fatalf("outcome = %s, want created", res.Outcome)
	}
	if res.EntryID == "" {
		t.Fatal("expected a fresh entry id")
	}

	entries, _ := mem.ListEntries(context.Background(), testUser, testMonth)
	if len(entries) != 1 || entries[0].Books != 5 {
		t.Fatalf("stored entries = %+v", entries)
	}
	if entries[0].Timestamp == 0 {
		t.Fatal("expected timestamp set on create")
	}
}

func TestSubmitCollisionConfirmMerges(t *testing.T) {
	r, mem := newTestReconciler()
	ctx := context.Background()

	if _, err := r.Submit(ctx, testUser, testMonth, candidate("5"), nil); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	res, err := r.Submit(ctx, testUser, testMonth, candidate("8"), confirm)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if res.Outcome != Updated {
		t.Fatalf("outcome = %s, want updated", res.Outcome)
	}
	if res.Existing == nil || res.Existing.Books != 5 {
		t.Fatalf("existing = %+v, want books=5", res.Existing)
	}

	entries, _ := mem.ListEntries(ctx, testUser, testMonth)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one stored entry, got %d", len(entries))
	}
	if entries[0].Books != 8 {
		t.Fatalf("merged books = %d, want 8", entries[0].Books)
	}
}

func TestSubmitCollisionDenyLeavesOriginal(t *testing.T) {
	r, mem := newTestReconciler()
	ctx := context.Background()

	if _, err := r.Submit(ctx, testUser, testMonth, candidate("5"), nil); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	res, err := r.Submit(ctx, testUser, testMonth, candidate("8"), deny)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if res.Outcome != Unchanged {
		t.Fatalf("outcome = %s, want unchanged", res.Outcome)
	}

	entries, _ := mem.ListEntries(ctx, testUser, testMonth)
	if len(entries) != 1 || entries[0].Books != 5 {
		t.Fatalf("entries after deny = %+v", entries)
	}
}

func TestSubmitCollisionPendingWithoutDecision(t *testing.T) {
	r, mem := newTestReconciler()
	ctx := context.Background()

	if _, err := r.Submit(ctx, testUser, testMonth, candidate("5"), nil); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	res, err := r.Submit(ctx, testUser, testMonth, candidate("8"), nil)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if res.Outcome != CollisionPending {
		t.Fatalf("outcome = %s, want collision_pending", res.Outcome)
	}
	if res.Existing == nil || res.Existing.Books != 5 {
		t.Fatalf("existing = %+v", res.Existing)
	}

	entries, _ := mem.ListEntries(ctx, testUser, testMonth)
	if len(entries) != 1 || entries[0].Books != 5 {
		t.Fatalf("pending collision must not write, got %+v", entries)
	}
}

func TestSubmitMergeRetainsNoteWhenCandidateEmpty(t *testing.T) {
	r, mem := newTestReconciler()
	ctx := context.Background()

	first := candidate("5")
	first.Note = "keep me"
	if _, err := r.Submit(ctx, testUser, testMonth, first, nil); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if _, err := r.Submit(ctx, testUser, testMonth, candidate("8"), confirm); err != nil {
		t.Fatalf("second submit: %v", err)
	}

	entries, _ := mem.ListEntries(ctx, testUser, testMonth)
	if entries[0].Note != "keep me" {
		t.Fatalf("note = %q, want retained", entries[0].Note)
	}

	third := candidate("9")
	third.Note = "replaced"
	if _, err := r.Submit(ctx, testUser, testMonth, third, confirm); err != nil {
		t.Fatalf("third submit: %v", err)
	}
	entries, _ = mem.ListEntries(ctx, testUser, testMonth)
	if entries[0].Note != "replaced" {
		t.Fatalf("note = %q, want replaced", entries[0].Note)
	}
}

func TestSubmitValidation(t *testing.T) {
	r, mem := newTestReconciler()
	ctx := context.Background()

	tests := []struct {
		name    string
		cand    Candidate
		wantErr error
	}{
		{"missing employee", Candidate{Day: 1, School: "S1", Class: "1A", Books: "1"}, core.ErrMissingField},
		{"day zero", Candidate{Employee: "L", Day: 0, School: "S1", Class: "1A", Books: "1"}, core.ErrDayOutOfRange},
		{"day past month end", Candidate{Employee: "L", Day: 32, School: "S1", Class: "1A", Books: "1"}, core.ErrDayOutOfRange},
		{"non-numeric books", Candidate{Employee: "L", Day: 1, School: "S1", Class: "1A", Books: "abc"}, core.ErrInvalidQuantity},
		{"negative books", Candidate{Employee: "L", Day: 1, School: "S1", Class: "1A", Books: "-2"}, core.ErrInvalidQuantity},
		{"empty books", Candidate{Employee: "L", Day: 1, School: "S1", Class: "1A", Books: ""}, core.ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Submit(ctx, testUser, testMonth, tt.cand, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Submit() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	entries, _ := mem.ListEntries(ctx, testUser, testMonth)
	if len(entries) != 0 {
		t.Fatalf("validation failures must not write, got %d entries", len(entries))
	}
}

func TestSubmitDayBoundsPerMonthLength(t *testing.T) {
	r, _ := newTestReconciler()
	ctx := context.Background()

	months := []core.Month{
		{Year: 2025, Month: 2}, // 28
		{Year: 2024, Month: 2}, // 29
		{Year: 2024, Month: 4}, // 30
		{Year: 2024, Month: 1}, // 31
	}
	for _, m := range months {
		days := m.DaysInMonth()
		over := Candidate{Employee: "L", Day: days + 1, School: "S1", Class: "1A", Books: "1"}
		if _, err := r.Submit(ctx, testUser, m, over, nil); !errors.Is(err, core.ErrDayOutOfRange) {
			t.Errorf("month %s day %d: error = %v, want ErrDayOutOfRange", m.Key(), days+1, err)
		}
	}
}

func TestEditQuantity(t *testing.T) {
	r, mem := newTestReconciler()
	ctx := context.Background()

	res, err := r.Submit(ctx, testUser, testMonth, candidate("5"), nil)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := r.EditQuantity(ctx, testUser, testMonth, res.EntryID, "12", "fixed"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	entries, _ := mem.ListEntries(ctx, testUser, testMonth)
	if entries[0].Books != 12 || entries[0].Note != "fixed" {
		t.Fatalf("after edit = %+v", entries[0])
	}

	if err := r.EditQuantity(ctx, testUser, testMonth, res.EntryID, "-1", ""); !errors.Is(err, core.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
}

func TestDeleteEntries(t *testing.T) {
	r, mem := newTestReconciler()
	ctx := context.Background()

	var ids []string
	for day := 1; day <= 3; day++ {
		c := Candidate{Employee: "L", Day: day, School: "S1", Class: "1A", Books: "1"}
		res, err := r.Submit(ctx, testUser, testMonth, c, nil)
		if err != nil {
			t.Fatalf("submit day %d: %v", day, err)
		}
		ids = append(ids, res.EntryID)
	}

	if err := r.DeleteEntries(ctx, testUser, testMonth, ids[:2]); err != nil {
		t.Fatalf("batch delete: %v", err)
	}
	entries, _ := mem.ListEntries(ctx, testUser, testMonth)
	if len(entries) != 1 || entries[0].ID != ids[2] {
		t.Fatalf("after batch delete: %+v", entries)
	}
}
