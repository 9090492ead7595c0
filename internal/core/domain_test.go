package core

import (
	"errors"
	"testing"
)

func TestMonthDaysInMonth(t *testing.T) {
	cases := []struct {
		m    Month
		want int
	}{
		{Month{2024, 1}, 31},
		{Month{2024, 2}, 29}, // leap year
		{Month{2025, 2}, 28},
		{Month{2024, 4}, 30},
		{Month{2024, 12}, 31},
	}
	for i, tc := range cases {
		if got := tc.m.DaysInMonth(); got != tc.want {
			t.Fatalf("case %d: DaysInMonth(%s) = %d, want %d", i, tc.m.Key(), got, tc.want)
		}
	}
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-02")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if m.Year != 2024 || m.Month != 2 {
		t.Fatalf("unexpected month %+v", m)
	}
	if m.Key() != "2024-02" {
		t.Fatalf("Key() = %q", m.Key())
	}

	for _, bad := range []string{"", "2024", "2024-13", "02-2024", "abc"} {
		if _, err := ParseMonth(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestEntryValidate(t *testing.T) {
	good := Entry{Employee: "Linh", Day: 1, School: "S1", Class: "1A", Books: 5}
	if err := good.Validate(31); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	tests := []struct {
		name        string
		entry       Entry
		daysInMonth int
		wantErr     error
	}{
		{"missing employee", Entry{Day: 1, School: "S1", Class: "1A"}, 31, ErrMissingField},
		{"missing school", Entry{Employee: "Linh", Day: 1, Class: "1A"}, 31, ErrMissingField},
		{"missing class", Entry{Employee: "Linh", Day: 1, School: "S1"}, 31, ErrMissingField},
		{"day zero", Entry{Employee: "Linh", Day: 0, School: "S1", Class: "1A"}, 31, ErrDayOutOfRange},
		{"negative books", Entry{Employee: "Linh", Day: 1, School: "S1", Class: "1A", Books: -1}, 31, ErrInvalidQuantity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate(tt.daysInMonth)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Day upper bound follows the month length, one past is rejected for
	// every possible month length.
	for _, days := range []int{28, 29, 30, 31} {
		e := Entry{Employee: "Linh", Day: days, School: "S1", Class: "1A"}
		if err := e.Validate(days); err != nil {
			t.Fatalf("day=%d days=%d: expected ok, got %v", days, days, err)
		}
		e.Day = days + 1
		if err := e.Validate(days); !errors.Is(err, ErrDayOutOfRange) {
			t.Fatalf("day=%d days=%d: expected ErrDayOutOfRange, got %v", days+1, days, err)
		}
	}
}

func TestEntryValidateFebruary(t *testing.T) {
	feb := Month{2024, 2}
	e := Entry{Employee: "Linh", Day: 30, School: "S1", Class: "1A", Books: 1}
	if err := e.Validate(feb.DaysInMonth()); !errors.Is(err, ErrDayOutOfRange) {
		t.Fatalf("expected ErrDayOutOfRange for day 30 in 2024-02, got %v", err)
	}
	e.Day = 29
	if err := e.Validate(feb.DaysInMonth()); err != nil {
		t.Fatalf("expected day 29 valid in 2024-02, got %v", err)
	}
}

func TestSameIdentity(t *testing.T) {
	a := Entry{Employee: "Linh", Day: 1, School: "S1", Class: "1A", Books: 5}
	b := Entry{Employee: "Linh", Day: 1, School: "S1", Class: "1A", Books: 8, Note: "x"}
	if !a.SameIdentity(b) {
		t.Fatal("expected identity match regardless of books/note")
	}
	c := b
	c.Day = 2
	if a.SameIdentity(c) {
		t.Fatal("expected identity mismatch on day")
	}
}

func TestSchools(t *testing.T) {
	classes := []Class{
		{ID: "1", School: "S2", Name: "2A"},
		{ID: "2", School: "S1", Name: "1A"},
		{ID: "3", School: "S1", Name: "1B"},
		{ID: "4", School: "", Name: "ignored"},
	}
	got := Schools(classes)
	want := []string{"S1", "S2"}
	if len(got) != len(want) {
		t.Fatalf("Schools() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Schools() = %v, want %v", got, want)
		}
	}

	names := ClassesForSchool(classes, "S1")
	if len(names) != 2 || names[0] != "1A" || names[1] != "1B" {
		t.Fatalf("ClassesForSchool() = %v", names)
	}
	if ClassesForSchool(classes, "") != nil {
		t.Fatal("expected nil for empty school")
	}
}
