// Package dashboard owns the per-category state of the movie dashboard and the
// orchestration of category fetches into it.
package dashboard

import (
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mmcdole/marquee/internal/domain"
)

// Change is published after every slot mutation
type Change struct {
	Category domain.Category
	Slot     domain.CategorySlot
	Status   domain.AggregateStatus
}

type slot struct {
	mu     sync.RWMutex
	state  domain.CategorySlot
	errSeq uint64 // store-wide sequence number of the last SetError, 0 if none
}

// CategoryStore holds one slot per category.
// Writes to a slot are serialized by that slot's lock only, so different
// categories never wait on each other. Reads always see a whole slot.
type CategoryStore struct {
	slots [domain.CategoryCount]*slot
	seq   atomic.Uint64

	// aggMu orders aggregate recomputation and change publication
	aggMu  sync.Mutex
	status atomic.Pointer[domain.AggregateStatus]

	subMu sync.RWMutex
	subs  map[int]chan Change
	next  int

	now func() time.Time
}

// NewCategoryStore creates a store with an empty slot for every category
func NewCategoryStore() *CategoryStore {
	s := &CategoryStore{
		subs: make(map[int]chan Change),
		now:  time.Now,
	}
	for _, c := range domain.Categories() {
		s.slots[c] = &slot{state: domain.CategorySlot{Category: c}}
	}
	s.status.Store(&domain.AggregateStatus{})
	return s
}

// Get returns a snapshot of the slot for c. Unknown categories yield an empty slot.
func (s *CategoryStore) Get(c domain.Category) domain.CategorySlot {
	if !c.Valid() {
		return domain.CategorySlot{Category: c}
	}
	sl := s.slots[c]
	sl.mu.RLock()
	defer sl.mu.RUnlock()
	return sl.state
}

// Snapshot returns every slot in category order
func (s *CategoryStore) Snapshot() []domain.CategorySlot {
	out := make([]domain.CategorySlot, 0, len(s.slots))
	for _, c := range domain.Categories() {
		out = append(out, s.Get(c))
	}
	return out
}

// Status returns the aggregate status as of the last mutation
func (s *CategoryStore) Status() domain.AggregateStatus {
	return *s.status.Load()
}

// SetLoading marks c as loading. Items and the last error stay visible.
func (s *CategoryStore) SetLoading(c domain.Category) {
	s.mutate(c, func(sl *slot) {
		sl.state.IsLoading = true
	})
}

// SetResult replaces the items of c and clears its loading flag and error
func (s *CategoryStore) SetResult(c domain.Category, items []domain.MovieSummary) {
	items = slices.Clone(items)
	s.mutate(c, func(sl *slot) {
		sl.state.Items = items
		sl.state.IsLoading = false
		sl.state.LastError = nil
		sl.state.UpdatedAt = s.now()
		sl.errSeq = 0
	})
}

// restore seeds c with persisted items, keeping their original timestamp.
// Slots that already hold items are left alone.
func (s *CategoryStore) restore(c domain.Category, items []domain.MovieSummary, savedAt time.Time) bool {
	restored := false
	items = slices.Clone(items)
	s.mutate(c, func(sl *slot) {
		if len(sl.state.Items) > 0 {
			return
		}
		sl.state.Items = items
		sl.state.UpdatedAt = savedAt
		restored = true
	})
	return restored
}

// SetError records err for c and clears its loading flag. Items are kept.
func (s *CategoryStore) SetError(c domain.Category, err error) {
	if err == nil {
		return
	}
	s.mutate(c, func(sl *slot) {
		sl.state.IsLoading = false
		sl.state.LastError = err
		sl.errSeq = s.seq.Add(1)
	})
}

func (s *CategoryStore) mutate(c domain.Category, fn func(*slot)) {
	if !c.Valid() {
		return
	}
	sl := s.slots[c]
	sl.mu.Lock()
	fn(sl)
	sl.mu.Unlock()

	s.publish(c)
}

// publish recomputes the aggregate from all slots and notifies subscribers.
// Every mutation ends here, so the aggregate is never older than the last write.
func (s *CategoryStore) publish(c domain.Category) {
	s.aggMu.Lock()
	defer s.aggMu.Unlock()

	var status domain.AggregateStatus
	var latest uint64
	var changed domain.CategorySlot
	for _, sl := range s.slots {
		sl.mu.RLock()
		if sl.state.IsLoading {
			status.AnyLoading = true
			status.LoadingCount++
		}
		if sl.state.LastError != nil && sl.errSeq > latest {
			latest = sl.errSeq
			status.LatestError = sl.state.LastError
			status.ErrorCategory = sl.state.Category
		}
		if sl.state.Category == c {
			changed = sl.state
		}
		sl.mu.RUnlock()
	}
	s.status.Store(&status)

	s.subMu.RLock()
	defer s.subMu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- Change{Category: c, Slot: changed, Status: status}:
		default: // Non-blocking if subscriber is behind
		}
	}
}

// Subscribe returns a channel of changes and a function that cancels the subscription.
// Sends never block; a slow subscriber misses intermediate changes, not the latest state,
// which it can always read back through Get and Status.
func (s *CategoryStore) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer < 1 {
		buffer = 1
	}
	ch := make(chan Change, buffer)

	s.subMu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
}
