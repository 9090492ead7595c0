// Package storage is the SQLite persistence layer behind the store
// ports. Every write re-reads its collection and pushes a fresh
// snapshot to subscribers, so readers always see whole lists.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"soyte/internal/core"
	"soyte/internal/log"
	"soyte/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db       *sql.DB
	queries  *Queries
	notifier *Notifier
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{
		db:       db,
		queries:  New(db),
		notifier: NewNotifier(),
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) CreateEmployee(ctx context.Context, userID string, e core.Employee) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	id := e.ID
	if id == "" {
		id = "emp_" + uuid.NewString()
	}
	err := r.queries.CreateEmployee(ctx, CreateEmployeeParams{ID: id, UserID: userID, Name: e.Name})
	if err != nil {
		return "", fmt.Errorf("create employee: %w", err)
	}

	slog.InfoContext(ctx, "Employee saved to SQLite", "id", id, "name", e.Name)
	r.pushEmployees(ctx, userID)
	return id, nil
}

// DeleteEmployee removes the roster row only. Entries that reference
// the employee by name stay in the ledger.
func (r *SQLiteRepository) DeleteEmployee(ctx context.Context, userID, id string) error {
	if err := r.queries.DeleteEmployee(ctx, userID, id); err != nil {
		return fmt.Errorf("delete employee: %w", err)
	}
	r.pushEmployees(ctx, userID)
	return nil
}

func (r *SQLiteRepository) ListEmployees(ctx context.Context, userID string) ([]core.Employee, error) {
	rows, err := r.queries.ListEmployees(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list employees: %w", err)
	}
	out := make([]core.Employee, len(rows))
	for i, row := range rows {
		out[i] = core.Employee{ID: row.ID, Name: row.Name}
	}
	return out, nil
}

func (r *SQLiteRepository) CreateClass(ctx context.Context, userID string, month core.Month, c core.Class) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	id := c.ID
	if id == "" {
		id = "class_" + uuid.NewString()
	}
	err := r.queries.CreateClass(ctx, CreateClassParams{
		ID:     id,
		UserID: userID,
		Month:  month.Key(),
		School: c.School,
		Name:   c.Name,
	})
	if err != nil {
		return "", fmt.Errorf("create class: %w", err)
	}

	slog.InfoContext(ctx, "Class saved to SQLite",
		"id", id, log.FieldSchool, c.School, log.FieldClass, c.Name, log.FieldMonth, month.Key())
	r.pushClasses(ctx, userID, month)
	return id, nil
}

func (r *SQLiteRepository) DeleteClass(ctx context.Context, userID string, month core.Month, id string) error {
	if err := r.queries.DeleteClass(ctx, userID, month.Key(), id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	r.pushClasses(ctx, userID, month)
	return nil
}

func (r *SQLiteRepository) ListClasses(ctx context.Context, userID string, month core.Month) ([]core.Class, error) {
	rows, err := r.queries.ListClasses(ctx, userID, month.Key())
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	out := make([]core.Class, len(rows))
	for i, row := range rows {
		out[i] = core.Class{ID: row.ID, School: row.School, Name: row.Name}
	}
	return out, nil
}

func (r *SQLiteRepository) CreateEntry(ctx context.Context, userID string, month core.Month, e core.Entry) (string, error) {
	id := e.ID
	if id == "" {
		id = "entry_" + uuid.NewString()
	}
	err := r.queries.CreateEntry(ctx, CreateEntryParams{
		ID:        id,
		UserID:    userID,
		Month:     month.Key(),
		Employee:  e.Employee,
		Day:       int64(e.Day),
		School:    e.School,
		Class:     e.Class,
		Books:     int64(e.Books),
		Note:      e.Note,
		Timestamp: e.Timestamp,
	})
	if err != nil {
		return "", fmt.Errorf("create entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry saved to SQLite",
		"id", id,
		log.FieldEmployee, e.Employee,
		log.FieldDay, e.Day,
		log.FieldSchool, e.School,
		log.FieldClass, e.Class,
		log.FieldBooks, e.Books,
		log.FieldMonth, month.Key())
	r.pushEntries(ctx, userID, month)
	return id, nil
}

func (r *SQLiteRepository) UpdateEntry(ctx context.Context, userID string, month core.Month, id string, books int, note string, timestamp int64) error {
	affected, err := r.queries.UpdateEntry(ctx, UpdateEntryParams{
		Books:     int64(books),
		Note:      note,
		Timestamp: timestamp,
		UserID:    userID,
		Month:     month.Key(),
		ID:        id,
	})
	if err != nil {
		return fmt.Errorf("update entry: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("entry %s not found", id)
	}
	r.pushEntries(ctx, userID, month)
	return nil
}

func (r *SQLiteRepository) DeleteEntry(ctx context.Context, userID string, month core.Month, id string) error {
	if err := r.queries.DeleteEntry(ctx, userID, month.Key(), id); err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	r.pushEntries(ctx, userID, month)
	return nil
}

func (r *SQLiteRepository) ListEntries(ctx context.Context, userID string, month core.Month) ([]core.Entry, error) {
	rows, err := r.queries.ListEntries(ctx, userID, month.Key())
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	out := make([]core.Entry, len(rows))
	for i, row := range rows {
		out[i] = core.Entry{
			ID:        row.ID,
			Employee:  row.Employee,
			Day:       int(row.Day),
			School:    row.School,
			Class:     row.Class,
			Books:     int(row.Books),
			Note:      row.Note,
			Timestamp: row.Timestamp,
		}
	}
	return out, nil
}

// Subscribe implements store.Subscriber.
func (r *SQLiteRepository) Subscribe(userID string, month core.Month, col store.Collection, cb func(store.Snapshot)) func() {
	return r.notifier.Subscribe(userID, month, col, cb)
}

func (r *SQLiteRepository) pushEmployees(ctx context.Context, userID string) {
	employees, err := r.ListEmployees(ctx, userID)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to re-read employees for snapshot", log.FieldError, err)
		return
	}
	r.notifier.Publish(userID, core.Month{}, store.Snapshot{
		Collection: store.CollectionEmployees,
		Employees:  employees,
	})
}

func (r *SQLiteRepository) pushClasses(ctx context.Context, userID string, month core.Month) {
	classes, err := r.ListClasses(ctx, userID, month)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to re-read classes for snapshot", log.FieldError, err)
		return
	}
	r.notifier.Publish(userID, month, store.Snapshot{
		Collection: store.CollectionClasses,
		Classes:    classes,
	})
}

func (r *SQLiteRepository) pushEntries(ctx context.Context, userID string, month core.Month) {
	entries, err := r.ListEntries(ctx, userID, month)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to re-read entries for snapshot", log.FieldError, err)
		return
	}
	r.notifier.Publish(userID, month, store.Snapshot{
		Collection: store.CollectionEntries,
		Entries:    entries,
	})
}
