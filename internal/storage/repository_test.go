package storage

import (
	"context"
	"path/filepath"
	"testing"

	"soyte/internal/core"
	"soyte/internal/store"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "soyte.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestEmployeeRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	id, err := repo.CreateEmployee(ctx, "u1", core.Employee{Name: "Linh"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, err := repo.ListEmployees(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Linh" || got[0].ID != id {
		t.Fatalf("list = %+v", got)
	}

	other, _ := repo.ListEmployees(ctx, "u2")
	if len(other) != 0 {
		t.Fatalf("user isolation broken: %+v", other)
	}

	if err := repo.DeleteEmployee(ctx, "u1", id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	got, _ = repo.ListEmployees(ctx, "u1")
	if len(got) != 0 {
		t.Fatalf("expected empty roster, got %+v", got)
	}
}

func TestCreateEmployeeRejectsEmptyName(t *testing.T) {
	repo := newTestRepo(t)
	if _, err := repo.CreateEmployee(context.Background(), "u1", core.Employee{Name: "  "}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestClassesAreMonthScoped(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	jan := core.Month{Year: 2024, Month: 1}
	feb := core.Month{Year: 2024, Month: 2}

	if _, err := repo.CreateClass(ctx, "u1", jan, core.Class{School: "S1", Name: "1A"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	janClasses, _ := repo.ListClasses(ctx, "u1", jan)
	febClasses, _ := repo.ListClasses(ctx, "u1", feb)
	if len(janClasses) != 1 {
		t.Fatalf("jan = %+v", janClasses)
	}
	if len(febClasses) != 0 {
		t.Fatalf("feb must be empty, got %+v", febClasses)
	}
}

func TestEntryLifecycleAndOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	month := core.Month{Year: 2024, Month: 1}

	mk := func(day int, ts int64) string {
		id, err := repo.CreateEntry(ctx, "u1", month, core.Entry{
			Employee: "Linh", Day: day, School: "S1", Class: "1A", Books: 5, Timestamp: ts,
		})
		if err != nil {
			t.Fatalf("create day %d: %v", day, err)
		}
		return id
	}

	early := mk(2, 100)
	late := mk(2, 200)
	high := mk(9, 50)

	entries, err := repo.ListEntries(ctx, "u1", month)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d", len(entries))
	}
	// Day descending, then timestamp descending.
	if entries[0].ID != high || entries[1].ID != late || entries[2].ID != early {
		t.Fatalf("order = %s %s %s", entries[0].ID, entries[1].ID, entries[2].ID)
	}

	if err := repo.UpdateEntry(ctx, "u1", month, early, 9, "note", 300); err != nil {
		t.Fatalf("update: %v", err)
	}
	entries, _ = repo.ListEntries(ctx, "u1", month)
	for _, e := range entries {
		if e.ID == early && (e.Books != 9 || e.Note != "note" || e.Timestamp != 300) {
			t.Fatalf("updated entry = %+v", e)
		}
	}

	if err := repo.UpdateEntry(ctx, "u1", month, "missing", 1, "", 1); err == nil {
		t.Fatal("expected error for unknown entry id")
	}

	if err := repo.DeleteEntry(ctx, "u1", month, high); err != nil {
		t.Fatalf("delete: %v", err)
	}
	entries, _ = repo.ListEntries(ctx, "u1", month)
	if len(entries) != 2 {
		t.Fatalf("after delete len = %d", len(entries))
	}
}

func TestSubscribePushesSnapshots(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	month := core.Month{Year: 2024, Month: 1}

	var got []store.Snapshot
	cancel := repo.Subscribe("u1", month, store.CollectionEntries, func(s store.Snapshot) {
		got = append(got, s)
	})
	defer cancel()

	id, err := repo.CreateEntry(ctx, "u1", month, core.Entry{
		Employee: "Linh", Day: 1, School: "S1", Class: "1A", Books: 5, Timestamp: 1,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(got) != 1 || len(got[0].Entries) != 1 || got[0].Entries[0].ID != id {
		t.Fatalf("snapshot after create = %+v", got)
	}

	if err := repo.DeleteEntry(ctx, "u1", month, id); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(got) != 2 || len(got[1].Entries) != 0 {
		t.Fatalf("snapshot after delete = %+v", got)
	}

	cancel()
	if _, err := repo.CreateEntry(ctx, "u1", month, core.Entry{
		Employee: "Linh", Day: 2, School: "S1", Class: "1A", Books: 1, Timestamp: 2,
	}); err != nil {
		t.Fatalf("create after cancel: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("cancelled subscription still delivered, got %d snapshots", len(got))
	}
}
