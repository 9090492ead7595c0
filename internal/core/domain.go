package core

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

type (
	// Employee is a staff member distributing health-record books.
	// Entries reference employees by name, not by ID, so renaming an
	// employee does not rewrite history and deleting one leaves the
	// entries it produced untouched.
	Employee struct {
		ID   string
		Name string
	}

	// Class is a school class declared for a reporting month. Schools are
	// not standalone entities; they are the distinct School values across
	// the month's classes.
	Class struct {
		ID     string
		School string
		Name   string
	}

	// Entry is one ledger record: books handed out by an employee on a
	// given day at a given school/class. The (Employee, Day, School,
	// Class) tuple is the identity key used for duplicate detection.
	Entry struct {
		ID        string
		Employee  string
		Day       int
		School    string
		Class     string
		Books     int
		Note      string
		Timestamp int64 // unix milliseconds of the last write
	}

	// Month is a reporting month. It scopes the visible classes and
	// entries and bounds the valid day range.
	Month struct {
		Year  int
		Month int // 1-12
	}
)

var (
	ErrMissingField    = errors.New("missing required field")
	ErrDayOutOfRange   = errors.New("day out of range for month")
	ErrInvalidQuantity = errors.New("invalid book quantity")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidMonth    = errors.New("invalid reporting month")
)

// CurrentMonth returns the reporting month for the current date.
func CurrentMonth() Month {
	now := time.Now()
	return Month{Year: now.Year(), Month: int(now.Month())}
}

// ParseMonth parses a "YYYY-MM" month key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: int(t.Month())}, nil
}

// Key returns the "YYYY-MM" form used in store paths and filenames.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Month)
}

// DaysInMonth returns the number of calendar days in the month (28-31).
func (m Month) DaysInMonth() int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(m.Year, time.Month(m.Month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func (m Month) Validate() error {
	if m.Year < 1 || m.Month < 1 || m.Month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

func (e Employee) Validate() error {
	if strings.TrimSpace(e.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (c Class) Validate() error {
	if strings.TrimSpace(c.School) == "" {
		return fmt.Errorf("%w: school", ErrMissingField)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: class name", ErrMissingField)
	}
	return nil
}

// Validate checks an entry against the active month's day count. Note is
// the only optional field.
func (e Entry) Validate(daysInMonth int) error {
	if strings.TrimSpace(e.Employee) == "" {
		return fmt.Errorf("%w: employee", ErrMissingField)
	}
	if strings.TrimSpace(e.School) == "" {
		return fmt.Errorf("%w: school", ErrMissingField)
	}
	if strings.TrimSpace(e.Class) == "" {
		return fmt.Errorf("%w: class", ErrMissingField)
	}
	if e.Day < 1 || e.Day > daysInMonth {
		return fmt.Errorf("%w: day %d not in 1..%d", ErrDayOutOfRange, e.Day, daysInMonth)
	}
	if e.Books < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, e.Books)
	}
	return nil
}

// SameIdentity reports whether two entries collide on the identity key.
func (e Entry) SameIdentity(other Entry) bool {
	return e.Employee == other.Employee &&
		e.Day == other.Day &&
		e.School == other.School &&
		e.Class == other.Class
}

// Schools derives the sorted distinct school names from a class list.
func Schools(classes []Class) []string {
	seen := make(map[string]struct{}, len(classes))
	var out []string
	for _, c := range classes {
		if c.School == "" {
			continue
		}
		if _, ok := seen[c.School]; ok {
			continue
		}
		seen[c.School] = struct{}{}
		out = append(out, c.School)
	}
	sort.Strings(out)
	return out
}

// ClassesForSchool returns the sorted class names declared for a school.
func ClassesForSchool(classes []Class, school string) []string {
	if school == "" {
		return nil
	}
	var out []string
	for _, c := range classes {
		if c.School == school {
			out = append(out, c.Name)
		}
	}
	sort.Strings(out)
	return out
}
