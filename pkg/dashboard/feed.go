package dashboard

import (
	"sync"
	"time"
)

// FeedSnapshot is a read-only copy of one feed.
type FeedSnapshot[T any] struct {
	State      LoadingState `json:"state"`
	Data       T            `json:"data"`
	Error      string       `json:"error,omitempty"`
	Generation uint64       `json:"generation"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// Feed is the state machine behind one dashboard panel. Every Begin opens
// a new generation; results carrying an older generation are dropped.
type Feed[T any] struct {
	mu         sync.RWMutex
	state      LoadingState
	data       T
	err        string
	generation uint64
	updatedAt  time.Time

	clone func(T) T
	now   func() time.Time
}

func newFeed[T any](clone func(T) T, now func() time.Time) *Feed[T] {
	return &Feed[T]{clone: clone, now: now}
}

// Begin moves the feed to Loading and returns the new generation. The
// previous data stays visible until the fetch settles.
func (f *Feed[T]) Begin() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation++
	f.state = Loading
	f.err = ""
	f.updatedAt = f.now()
	return f.generation
}

// Succeed stores data if gen is still current.
func (f *Feed[T]) Succeed(gen uint64, data T) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		return false
	}
	f.state = Success
	f.data = data
	f.err = ""
	f.updatedAt = f.now()
	return true
}

// Fail records err if gen is still current.
func (f *Feed[T]) Fail(gen uint64, err error) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation {
		return false
	}
	f.state = Error
	if err != nil {
		f.err = err.Error()
	}
	f.updatedAt = f.now()
	return true
}

// abandon fails gen if it is current and still Loading.
func (f *Feed[T]) abandon(gen uint64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation || f.state != Loading {
		return
	}
	f.state = Error
	f.err = err.Error()
	f.updatedAt = f.now()
}

// settled returns the data of gen when it ended in Success.
func (f *Feed[T]) settled(gen uint64) (T, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if gen != f.generation || f.state != Success {
		var zero T
		return zero, false
	}
	return f.clone(f.data), true
}

// Snapshot copies the current state.
func (f *Feed[T]) Snapshot() FeedSnapshot[T] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return FeedSnapshot[T]{
		State:      f.state,
		Data:       f.clone(f.data),
		Error:      f.err,
		Generation: f.generation,
		UpdatedAt:  f.updatedAt,
	}
}
