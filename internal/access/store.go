package access

import (
	"slices"
	"sync"
	"time"
)

// Snapshot is one consistent state of the viewer's requests and files.
// The store, its listeners and Snapshot callers share the same slices, so a
// Snapshot is read-only once published.
type Snapshot struct {
	Version    uint64
	Session    Session
	Sent       []AccessRequest
	Received   []AccessRequest
	Views      []FileView
	Stats      Stats
	Mismatches []Mismatch
	// Stale is set when a mutation succeeded but the follow-up fetch failed,
	// so the lists may still show the request in its old state.
	Stale     bool
	FetchedAt time.Time
}

// FindRequest looks id up in both lists.
func (s Snapshot) FindRequest(id int64) (AccessRequest, bool) {
	for _, r := range s.Received {
		if r.ID == id {
			return r, true
		}
	}
	for _, r := range s.Sent {
		if r.ID == id {
			return r, true
		}
	}
	return AccessRequest{}, false
}

// View returns the projection of fileID, if the file is listed.
func (s Snapshot) View(fileID int64) (FileView, bool) {
	for _, v := range s.Views {
		if v.ID == fileID {
			return v, true
		}
	}
	return FileView{}, false
}

type Listener func(Snapshot)

// Store keeps the latest Snapshot and fans it out to listeners. State is
// replaced before any listener is called, and listeners are called in the
// order they subscribed.
type Store struct {
	notifyMu sync.Mutex // serializes Publish so listeners see versions in order

	mu        sync.RWMutex
	snap      Snapshot
	nextID    int
	listeners []subscription
}

type subscription struct {
	id int
	fn Listener
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers l and returns a function that removes it. Listeners
// must not call Publish.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: l})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Publish stores a copy of snap as the current state and then notifies
// listeners. The caller may keep modifying its own slices afterwards.
func (s *Store) Publish(snap Snapshot) Snapshot {
	snap.Sent = slices.Clone(snap.Sent)
	snap.Received = slices.Clone(snap.Received)
	snap.Views = slices.Clone(snap.Views)
	snap.Mismatches = slices.Clone(snap.Mismatches)

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	snap.Version = s.snap.Version + 1
	s.snap = snap
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.mu.Unlock()

	for _, sub := range subs {
		sub.fn(snap)
	}
	return snap
}

// Reset drops the state, e.g. on logout, and notifies listeners with an
// empty snapshot.
func (s *Store) Reset() {
	s.Publish(Snapshot{})
}
