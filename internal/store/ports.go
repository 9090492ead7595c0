// Package store defines the ports the application core uses to talk to
// the persistent entry store. Collections live in a per-user namespace;
// classes and entries are additionally scoped by reporting month, so
// switching the active month swaps the whole visible set.
package store

import (
	"context"

	"soyte/internal/core"
)

// Collection names the three document collections of the store.
type Collection string

const (
	CollectionEmployees Collection = "employees"
	CollectionClasses   Collection = "classes"
	CollectionEntries   Collection = "entries"
)

type (
	EmployeeStore interface {
		CreateEmployee(ctx context.Context, userID string, e core.Employee) (id string, err error)
		DeleteEmployee(ctx context.Context, userID, id string) error
		ListEmployees(ctx context.Context, userID string) ([]core.Employee, error)
	}

	ClassStore interface {
		CreateClass(ctx context.Context, userID string, month core.Month, c core.Class) (id string, err error)
		DeleteClass(ctx context.Context, userID string, month core.Month, id string) error
		ListClasses(ctx context.Context, userID string, month core.Month) ([]core.Class, error)
	}

	EntryStore interface {
		CreateEntry(ctx context.Context, userID string, month core.Month, e core.Entry) (id string, err error)
		// UpdateEntry replaces books, note and timestamp of an existing
		// entry; the identity fields never change after creation.
		UpdateEntry(ctx context.Context, userID string, month core.Month, id string, books int, note string, timestamp int64) error
		DeleteEntry(ctx context.Context, userID string, month core.Month, id string) error
		ListEntries(ctx context.Context, userID string, month core.Month) ([]core.Entry, error)
	}

	// Snapshot is a full-collection push. Exactly one of the three
	// slices is populated, matching Collection. There is no incremental
	// patching: every change re-delivers the whole list.
	Snapshot struct {
		Collection Collection
		Employees  []core.Employee
		Classes    []core.Class
		Entries    []core.Entry
	}

	// Subscriber delivers Snapshots on every change to a collection.
	// The three collections notify independently; no ordering holds
	// between their streams. The returned function cancels the
	// subscription.
	Subscriber interface {
		Subscribe(userID string, month core.Month, col Collection, cb func(Snapshot)) (unsubscribe func())
	}

	// Store is the full contract the HTTP layer and the reconciler
	// depend on.
	Store interface {
		EmployeeStore
		ClassStore
		EntryStore
	}
)
