package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"soyte/internal/core"
)

// MemoryStore is an in-memory Store with snapshot subscriptions. It backs
// tests and the zero-configuration backend; nothing survives a restart.
type MemoryStore struct {
	mu        sync.Mutex
	employees map[string][]core.Employee      // userID -> employees
	classes   map[string][]core.Class         // userID/month -> classes
	entries   map[string][]core.Entry         // userID/month -> entries
	subs      map[string]map[int]func(Snapshot)
	nextSub   int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employees: make(map[string][]core.Employee),
		classes:   make(map[string][]core.Class),
		entries:   make(map[string][]core.Entry),
		subs:      make(map[string]map[int]func(Snapshot)),
	}
}

func monthKey(userID string, month core.Month) string {
	return userID + "/" + month.Key()
}

func subKey(userID string, month core.Month, col Collection) string {
	if col == CollectionEmployees {
		// Employees are month-independent.
		return userID + "/" + string(col)
	}
	return monthKey(userID, month) + "/" + string(col)
}

func (s *MemoryStore) CreateEmployee(_ context.Context, userID string, e core.Employee) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	if e.ID == "" {
		e.ID = "emp_" + uuid.NewString()
	}
	s.employees[userID] = append(s.employees[userID], e)
	snap := s.employeeSnapshotLocked(userID)
	cbs := s.callbacksLocked(subKey(userID, core.Month{}, CollectionEmployees))
	s.mu.Unlock()
	deliver(cbs, snap)
	return e.ID, nil
}

func (s *MemoryStore) DeleteEmployee(_ context.Context, userID, id string) error {
	s.mu.Lock()
	list := s.employees[userID]
	kept := list[:0]
	for _, e := range list {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.employees[userID] = kept
	snap := s.employeeSnapshotLocked(userID)
	cbs := s.callbacksLocked(subKey(userID, core.Month{}, CollectionEmployees))
	s.mu.Unlock()
	deliver(cbs, snap)
	return nil
}

func (s *MemoryStore) ListEmployees(_ context.Context, userID string) ([]core.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Employee(nil), s.employees[userID]...), nil
}

func (s *MemoryStore) CreateClass(_ context.Context, userID string, month core.Month, c core.Class) (string, error) {
	if err := c.Validate(); err != nil {
		return "", err
	}
	k := monthKey(userID, month)
	s.mu.Lock()
	if c.ID == "" {
		c.ID = "class_" + uuid.NewString()
	}
	s.classes[k] = append(s.classes[k], c)
	snap := s.classSnapshotLocked(k)
	cbs := s.callbacksLocked(subKey(userID, month, CollectionClasses))
	s.mu.Unlock()
	deliver(cbs, snap)
	return c.ID, nil
}

func (s *MemoryStore) DeleteClass(_ context.Context, userID string, month core.Month, id string) error {
	k := monthKey(userID, month)
	s.mu.Lock()
	list := s.classes[k]
	kept := list[:0]
	for _, c := range list {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.classes[k] = kept
	snap := s.classSnapshotLocked(k)
	cbs := s.callbacksLocked(subKey(userID, month, CollectionClasses))
	s.mu.Unlock()
	deliver(cbs, snap)
	return nil
}

func (s *MemoryStore) ListClasses(_ context.Context, userID string, month core.Month) ([]core.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Class(nil), s.classes[monthKey(userID, month)]...), nil
}

func (s *MemoryStore) CreateEntry(_ context.Context, userID string, month core.Month, e core.Entry) (string, error) {
	k := monthKey(userID, month)
	s.mu.Lock()
	if e.ID == "" {
		e.ID = "entry_" + uuid.NewString()
	}
	s.entries[k] = append(s.entries[k], e)
	snap := s.entrySnapshotLocked(k)
	cbs := s.callbacksLocked(subKey(userID, month, CollectionEntries))
	s.mu.Unlock()
	deliver(cbs, snap)
	return e.ID, nil
}

func (s *MemoryStore) UpdateEntry(_ context.Context, userID string, month core.Month, id string, books int, note string, timestamp int64) error {
	k := monthKey(userID, month)
	s.mu.Lock()
	found := false
	list := s.entries[k]
	for i := range list {
		if list[i].ID == id {
			list[i].Books = books
			list[i].Note = note
			list[i].Timestamp = timestamp
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return fmt.Errorf("entry %s not found", id)
	}
	snap := s.entrySnapshotLocked(k)
	cbs := s.callbacksLocked(subKey(userID, month, CollectionEntries))
	s.mu.Unlock()
	deliver(cbs, snap)
	return nil
}

func (s *MemoryStore) DeleteEntry(_ context.Context, userID string, month core.Month, id string) error {
	k := monthKey(userID, month)
	s.mu.Lock()
	list := s.entries[k]
	kept := list[:0]
	for _, e := range list {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.entries[k] = kept
	snap := s.entrySnapshotLocked(k)
	cbs := s.callbacksLocked(subKey(userID, month, CollectionEntries))
	s.mu.Unlock()
	deliver(cbs, snap)
	return nil
}

func (s *MemoryStore) ListEntries(_ context.Context, userID string, month core.Month) ([]core.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]core.Entry(nil), s.entries[monthKey(userID, month)]...)
	sortEntries(out)
	return out, nil
}

// Subscribe registers a snapshot callback for one collection stream.
func (s *MemoryStore) Subscribe(userID string, month core.Month, col Collection, cb func(Snapshot)) func() {
	key := subKey(userID, month, col)
	s.mu.Lock()
	if s.subs[key] == nil {
		s.subs[key] = make(map[int]func(Snapshot))
	}
	id := s.nextSub
	s.nextSub++
	s.subs[key][id] = cb
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs[key], id)
		s.mu.Unlock()
	}
}

func (s *MemoryStore) employeeSnapshotLocked(userID string) Snapshot {
	return Snapshot{
		Collection: CollectionEmployees,
		Employees:  append([]core.Employee(nil), s.employees[userID]...),
	}
}

func (s *MemoryStore) classSnapshotLocked(k string) Snapshot {
	return Snapshot{
		Collection: CollectionClasses,
		Classes:    append([]core.Class(nil), s.classes[k]...),
	}
}

func (s *MemoryStore) entrySnapshotLocked(k string) Snapshot {
	entries := append([]core.Entry(nil), s.entries[k]...)
	sortEntries(entries)
	return Snapshot{Collection: CollectionEntries, Entries: entries}
}

func (s *MemoryStore) callbacksLocked(key string) []func(Snapshot) {
	cbs := make([]func(Snapshot), 0, len(s.subs[key]))
	for _, cb := range s.subs[key] {
		cbs = append(cbs, cb)
	}
	return cbs
}

func deliver(cbs []func(Snapshot), snap Snapshot) {
	for _, cb := range cbs {
		cb(snap)
	}
}

// sortEntries orders newest-first: day descending, then timestamp
// descending. This matches what the entry table renders.
func sortEntries(entries []core.Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Day != entries[j].Day {
			return entries[i].Day > entries[j].Day
		}
		return entries[i].Timestamp > entries[j].Timestamp
	})
}
