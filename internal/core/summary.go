package core

import "sort"

// MaxDays is the fixed length of the per-row day axis. Months shorter than
// 31 days leave the trailing slots at zero; consumers cut the axis at
// Month.DaysInMonth, never here.
const MaxDays = 31

type (
	// Contribution is one entry's share of a (school, class, day) cell,
	// kept for drill-down rendering.
	Contribution struct {
		Employee string
		Books    int
		Note     string
	}

	// SummaryRow is the per-(school, class) aggregate across all days of
	// the active month. Days is indexed 0-based: Days[d] holds the sum
	// for calendar day d+1.
	SummaryRow struct {
		School  string
		Class   string
		Days    [MaxDays]int
		Details [MaxDays][]Contribution
	}

	// DayDetailRow is one (employee, class) group inside a day+school
	// drill-down.
	DayDetailRow struct {
		Employee string
		Class    string
		Books    int
		Notes    []string
	}

	// DayDetail is the drill-down for one (day, school) cell.
	DayDetail struct {
		Day        int
		School     string
		TotalBooks int
		Rows       []DayDetailRow
	}
)

// Aggregate folds entries into one SummaryRow per distinct (school, class)
// pair. When employeeFilter is non-empty only that employee's entries are
// counted (exact name match). The result is a pure function of the entry
// set: rows are sorted by school then class and day sums are
// order-independent. Contribution order inside Details follows the input
// slice and is not contractual.
func Aggregate(entries []Entry, employeeFilter string) []SummaryRow {
	type groupKey struct{ school, class string }

	rows := make(map[groupKey]*SummaryRow)
	for _, e := range entries {
		if employeeFilter != "" && e.Employee != employeeFilter {
			continue
		}
		di := e.Day - 1
		if di < 0 || di >= MaxDays {
			continue
		}
		k := groupKey{e.School, e.Class}
		row, ok := rows[k]
		if !ok {
			row = &SummaryRow{School: e.School, Class: e.Class}
			rows[k] = row
		}
		row.Days[di] += e.Books
		row.Details[di] = append(row.Details[di], Contribution{
			Employee: e.Employee,
			Books:    e.Books,
			Note:     e.Note,
		})
	}

	out := make([]SummaryRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].School != out[j].School {
			return out[i].School < out[j].School
		}
		return out[i].Class < out[j].Class
	})
	return out
}

// EmployeeSummaries runs one aggregation per employee over the unfiltered
// entry set, keyed by employee name. Employees without entries are
// skipped.
func EmployeeSummaries(entries []Entry, employees []Employee) map[string][]SummaryRow {
	tables := make(map[string][]SummaryRow, len(employees))
	for _, emp := range employees {
		rows := Aggregate(entries, emp.Name)
		if len(rows) == 0 {
			continue
		}
		tables[emp.Name] = rows
	}
	return tables
}

// DetailsFor groups all entries matching (day, school) by (employee,
// class), summing books and collecting non-empty notes. Rows are sorted
// by employee then class.
func DetailsFor(entries []Entry, day int, school string) DayDetail {
	type groupKey struct{ employee, class string }

	groups := make(map[groupKey]*DayDetailRow)
	for _, e := range entries {
		if e.Day != day || e.School != school {
			continue
		}
		k := groupKey{e.Employee, e.Class}
		row, ok := groups[k]
		if !ok {
			row = &DayDetailRow{Employee: e.Employee, Class: e.Class}
			groups[k] = row
		}
		row.Books += e.Books
		if e.Note != "" {
			row.Notes = append(row.Notes, e.Note)
		}
	}

	detail := DayDetail{Day: day, School: school}
	for _, row := range groups {
		detail.Rows = append(detail.Rows, *row)
		detail.TotalBooks += row.Books
	}
	sort.Slice(detail.Rows, func(i, j int) bool {
		if detail.Rows[i].Employee != detail.Rows[j].Employee {
			return detail.Rows[i].Employee < detail.Rows[j].Employee
		}
		return detail.Rows[i].Class < detail.Rows[j].Class
	})
	return detail
}

// TotalBooks sums every day cell across the given rows.
func TotalBooks(rows []SummaryRow) int {
	total := 0
	for _, r := range rows {
		for _, v := range r.Days {
			total += v
		}
	}
	return total
}
