// Package ledger implements the write path of the entry ledger: identity
// key reconciliation on submit, direct quantity edits, and batch deletes.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"soyte/internal/core"
	"soyte/internal/log"
	"soyte/internal/store"
)

// Outcome classifies what a submit did to the stored entry set.
type Outcome string

const (
	// Created means a new entry was written.
	Created Outcome = "created"
	// Updated means an existing entry with the same identity key was
	// merged into.
	Updated Outcome = "updated"
	// Unchanged means a collision was denied and nothing was written.
	Unchanged Outcome = "unchanged"
	// CollisionPending means an identity-key collision was found and no
	// decision function was supplied; the caller must re-submit with an
	// explicit confirm or deny. Nothing was written.
	CollisionPending Outcome = "collision_pending"
)

type (
	// Candidate is an entry submission before reconciliation. Books is
	// kept as the raw form string so quantity parsing errors surface as
	// validation errors here, not in the transport layer.
	Candidate struct {
		Employee string
		Day      int
		School   string
		Class    string
		Books    string
		Note     string
	}

	// DecisionFunc resolves an identity-key collision: true merges the
	// candidate into the existing entry, false discards the candidate.
	DecisionFunc func(existing core.Entry) bool

	// Result reports the submit outcome. Existing is set for Updated,
	// Unchanged and CollisionPending so the caller can show the
	// conflicting quantity.
	Result struct {
		Outcome  Outcome
		EntryID  string
		Existing *core.Entry
	}
)

// Reconciler guards the (employee, day, school, class) identity key on
// the entry collection of one store.
//
// The collision check is read-then-write with no compare-and-swap, like
// the system it models: two near-simultaneous submissions with the same
// identity key can both pass the scan and create two logical duplicates.
type Reconciler struct {
	entries store.EntryStore
	now     func() time.Time
}

func NewReconciler(entries store.EntryStore) *Reconciler {
	return &Reconciler{entries: entries, now: time.Now}
}

// Submit validates a candidate, scans the month's entries for an
// identity-key match and either creates a fresh entry, merges into the
// match per decide, or reports the pending collision. At most one store
// write happens per call.
func (r *Reconciler) Submit(ctx context.Context, userID string, month core.Month, cand Candidate, decide DecisionFunc) (Result, error) {
	books, err := parseBooks(cand.Books)
	if err != nil {
		return Result{}, err
	}

	entry := core.Entry{
		Employee: strings.TrimSpace(cand.Employee),
		Day:      cand.Day,
		School:   strings.TrimSpace(cand.School),
		Class:    strings.TrimSpace(cand.Class),
		Books:    books,
		Note:     strings.TrimSpace(cand.Note),
	}
	if err := entry.Validate(month.DaysInMonth()); err != nil {
		return Result{}, err
	}

	existing, err := r.entries.ListEntries(ctx, userID, month)
	if err != nil {
		return Result{}, fmt.Errorf("list entries: %w", err)
	}

	for i := range existing {
		if !entry.SameIdentity(existing[i]) {
			continue
		}
		dup := existing[i]
		if decide == nil {
			return Result{Outcome: CollisionPending, EntryID: dup.ID, Existing: &dup}, nil
		}
		if !decide(dup) {
			slog.InfoContext(ctx, "Entry collision denied",
				log.FieldEntryID, dup.ID,
				log.FieldEmployee, dup.Employee,
				log.FieldDay, dup.Day,
				"existing_books", dup.Books,
				"candidate_books", entry.Books)
			return Result{Outcome: Unchanged, EntryID: dup.ID, Existing: &dup}, nil
		}
		// Merge: books replace, note replaces only when non-empty.
		note := entry.Note
		if note == "" {
			note = dup.Note
		}
		if err := r.entries.UpdateEntry(ctx, userID, month, dup.ID, entry.Books, note, r.now().UnixMilli()); err != nil {
			return Result{}, fmt.Errorf("merge entry %s: %w", dup.ID, err)
		}
		slog.InfoContext(ctx, "Entry collision merged",
			log.FieldEntryID, dup.ID,
			log.FieldEmployee, dup.Employee,
			log.FieldDay, dup.Day,
			log.FieldBooks, entry.Books)
		return Result{Outcome: Updated, EntryID: dup.ID, Existing: &dup}, nil
	}

	entry.Timestamp = r.now().UnixMilli()
	id, err := r.entries.CreateEntry(ctx, userID, month, entry)
	if err != nil {
		return Result{}, fmt.Errorf("create entry: %w", err)
	}
	slog.InfoContext(ctx, "Entry created",
		log.FieldEntryID, id,
		log.FieldEmployee, entry.Employee,
		log.FieldDay, entry.Day,
		log.FieldSchool, entry.School,
		log.FieldClass, entry.Class,
		log.FieldBooks, entry.Books)
	return Result{Outcome: Created, EntryID: id}, nil
}

// EditQuantity updates an existing entry's books and note in place. The
// id is already fixed, so no identity scan is needed.
func (r *Reconciler) EditQuantity(ctx context.Context, userID string, month core.Month, id string, books string, note string) error {
	n, err := parseBooks(books)
	if err != nil {
		return err
	}
	if err := r.entries.UpdateEntry(ctx, userID, month, id, n, strings.TrimSpace(note), r.now().UnixMilli()); err != nil {
		return fmt.Errorf("edit entry %s: %w", id, err)
	}
	return nil
}

// DeleteEntries issues one independent delete per id. There is no
// rollback: a failed delete does not stop the others, and the first
// error is reported after all deletes have run.
func (r *Reconciler) DeleteEntries(ctx context.Context, userID string, month core.Month, ids []string) error {
	var g errgroup.Group
	for _, id := range ids {
		g.Go(func() error {
			if err := r.entries.DeleteEntry(ctx, userID, month, id); err != nil {
				return fmt.Errorf("delete entry %s: %w", id, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func parseBooks(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", core.ErrInvalidQuantity)
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q", core.ErrInvalidQuantity, s)
	}
	return n, nil
}
