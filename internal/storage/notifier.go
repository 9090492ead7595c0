package storage

import (
	"sync"

	"soyte/internal/core"
	"soyte/internal/store"
)

// Notifier fans whole-collection snapshots out to subscribers. Employee
// streams ignore the month; class and entry streams are month-scoped.
type Notifier struct {
	mu     sync.Mutex
	subs   map[string]map[int]func(store.Snapshot)
	nextID int
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[int]func(store.Snapshot))}
}

func streamKey(userID string, month core.Month, col store.Collection) string {
	if col == store.CollectionEmployees {
		return userID + "/" + string(col)
	}
	return userID + "/" + month.Key() + "/" + string(col)
}

func (n *Notifier) Subscribe(userID string, month core.Month, col store.Collection, cb func(store.Snapshot)) func() {
	key := streamKey(userID, month, col)
	n.mu.Lock()
	if n.subs[key] == nil {
		n.subs[key] = make(map[int]func(store.Snapshot))
	}
	id := n.nextID
	n.nextID++
	n.subs[key][id] = cb
	n.mu.Unlock()

	return func() {
		n.mu.Lock()
		delete(n.subs[key], id)
		n.mu.Unlock()
	}
}

// Publish delivers snap to every subscriber of the matching stream.
// Callbacks run outside the lock.
func (n *Notifier) Publish(userID string, month core.Month, snap store.Snapshot) {
	key := streamKey(userID, month, snap.Collection)
	n.mu.Lock()
	cbs := make([]func(store.Snapshot), 0, len(n.subs[key]))
	for _, cb := range n.subs[key] {
		cbs = append(cbs, cb)
	}
	n.mu.Unlock()

	for _, cb := range cbs {
		cb(snap)
	}
}
