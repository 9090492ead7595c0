package google

import (
	"context"
	"testing"

	"soyte/internal/core"
)

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error without GOOGLE_SPREADSHEET_ID")
	}
}

func TestNewFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestAppendEntryWithoutService(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetName: "Entries"}
	_, err := c.AppendEntry(context.Background(), "u1", core.Month{Year: 2024, Month: 1}, core.Entry{ID: "e1"}, "created")
	if err == nil {
		t.Fatal("expected error when service is not initialized")
	}
}

func TestEntryRowLayout(t *testing.T) {
	e := core.Entry{
		ID: "entry_1", Employee: "Linh", Day: 3,
		School: "S1", Class: "1A", Books: 7, Note: "đợt 2",
	}
	row := entryRow("u1", core.Month{Year: 2024, Month: 1}, e, "updated")

	if len(row) != 11 {
		t.Fatalf("row has %d cells, want 11", len(row))
	}
	want := []any{"u1", "2024-01", "entry_1", "updated", "Linh", 3, "S1", "1A", 7, "đợt 2"}
	for i, w := range want {
		if row[i] != w {
			t.Errorf("row[%d] = %v, want %v", i, row[i], w)
		}
	}
	if row[10] == "" {
		t.Error("mirrored-at timestamp missing")
	}
}
