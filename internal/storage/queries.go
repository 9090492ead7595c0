package storage

import (
	"context"
	"database/sql"
)

// Queries wraps the raw SQL statements for the three ledger tables.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

type Employee struct {
	ID     string
	UserID string
	Name   string
}

type Class struct {
	ID     string
	UserID string
	Month  string
	School string
	Name   string
}

type Entry struct {
	ID        string
	UserID    string
	Month     string
	Employee  string
	Day       int64
	School    string
	Class     string
	Books     int64
	Note      string
	Timestamp int64
}

const createEmployee = `
INSERT INTO employees (id, user_id, name) VALUES (?, ?, ?)
`

type CreateEmployeeParams struct {
	ID     string
	UserID string
	Name   string
}

func (q *Queries) CreateEmployee(ctx context.Context, arg CreateEmployeeParams) error {
	_, err := q.db.ExecContext(ctx, createEmployee, arg.ID, arg.UserID, arg.Name)
	return err
}

const deleteEmployee = `
DELETE FROM employees WHERE user_id = ? AND id = ?
`

func (q *Queries) DeleteEmployee(ctx context.Context, userID, id string) error {
	_, err := q.db.ExecContext(ctx, deleteEmployee, userID, id)
	return err
}

const listEmployees = `
SELECT id, user_id, name FROM employees WHERE user_id = ? ORDER BY name
`

func (q *Queries) ListEmployees(ctx context.Context, userID string) ([]Employee, error) {
	rows, err := q.db.QueryContext(ctx, listEmployees, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Employee
	for rows.Next() {
		var e Employee
		if err := rows.Scan(&e.ID, &e.UserID, &e.Name); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const createClass = `
INSERT INTO classes (id, user_id, month, school, name) VALUES (?, ?, ?, ?, ?)
`

type CreateClassParams struct {
	ID     string
	UserID string
	Month  string
	School string
	Name   string
}

func (q *Queries) CreateClass(ctx context.Context, arg CreateClassParams) error {
	_, err := q.db.ExecContext(ctx, createClass, arg.ID, arg.UserID, arg.Month, arg.School, arg.Name)
	return err
}

const deleteClass = `
DELETE FROM classes WHERE user_id = ? AND month = ? AND id = ?
`

func (q *Queries) DeleteClass(ctx context.Context, userID, month, id string) error {
	_, err := q.db.ExecContext(ctx, deleteClass, userID, month, id)
	return err
}

const listClasses = `
SELECT id, user_id, month, school, name
FROM classes
WHERE user_id = ? AND month = ?
ORDER BY school, name
`

func (q *Queries) ListClasses(ctx context.Context, userID, month string) ([]Class, error) {
	rows, err := q.db.QueryContext(ctx, listClasses, userID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Class
	for rows.Next() {
		var c Class
		if err := rows.Scan(&c.ID, &c.UserID, &c.Month, &c.School, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const createEntry = `
INSERT INTO entries (id, user_id, month, employee, day, school, class, books, note, timestamp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type CreateEntryParams struct {
	ID        string
	UserID    string
	Month     string
	Employee  string
	Day       int64
	School    string
	Class     string
	Books     int64
	Note      string
	Timestamp int64
}

func (q *Queries) CreateEntry(ctx context.Context, arg CreateEntryParams) error {
	_, err := q.db.ExecContext(ctx, createEntry,
		arg.ID, arg.UserID, arg.Month, arg.Employee, arg.Day,
		arg.School, arg.Class, arg.Books, arg.Note, arg.Timestamp)
	return err
}

const updateEntry = `
UPDATE entries SET books = ?, note = ?, timestamp = ?
WHERE user_id = ? AND month = ? AND id = ?
`

type UpdateEntryParams struct {
	Books     int64
	Note      string
	Timestamp int64
	UserID    string
	Month     string
	ID        string
}

func (q *Queries) UpdateEntry(ctx context.Context, arg UpdateEntryParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateEntry,
		arg.Books, arg.Note, arg.Timestamp, arg.UserID, arg.Month, arg.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const deleteEntry = `
DELETE FROM entries WHERE user_id = ? AND month = ? AND id = ?
`

func (q *Queries) DeleteEntry(ctx context.Context, userID, month, id string) error {
	_, err := q.db.ExecContext(ctx, deleteEntry, userID, month, id)
	return err
}

const listEntries = `
SELECT id, user_id, month, employee, day, school, class, books, note, timestamp
FROM entries
WHERE user_id = ? AND month = ?
ORDER BY day DESC, timestamp DESC
`

func (q *Queries) ListEntries(ctx context.Context, userID, month string) ([]Entry, error) {
	rows, err := q.db.QueryContext(ctx, listEntries, userID, month)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Month, &e.Employee, &e.Day,
			&e.School, &e.Class, &e.Books, &e.Note, &e.Timestamp); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
