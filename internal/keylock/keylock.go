// Package keylock provides readers/writer locks keyed by an arbitrary string.
//
// Each key maps to a weighted semaphore created on first use. Readers acquire one
// unit and writers acquire the full weight, so a writer waits for every reader and
// excludes everyone else. golang.org/x/sync/semaphore serves waiters in FIFO order:
// a queued writer blocks readers that arrive after it, and writers for the same key
// run in the order they started waiting.
//
// Entries are reference counted by holders and waiters and dropped once the last
// one releases, so the map does not grow with the number of distinct keys ever seen.
package keylock

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// DefaultMaxReaders bounds concurrent readers of a single key.
const DefaultMaxReaders = 1 << 16

// UnlockFunc releases a lock obtained from Locker. Calling it more than once is a no-op.
type UnlockFunc func()

type entry struct {
	sem  *semaphore.Weighted
	refs int
}

// Locker hands out per-key locks.
type Locker struct {
	mu         sync.Mutex
	entries    map[string]*entry
	maxReaders int64
}

// New creates a Locker that admits up to maxReaders concurrent readers per key.
// Non-positive values use DefaultMaxReaders.
func New(maxReaders int64) *Locker {
	if maxReaders <= 0 {
		maxReaders = DefaultMaxReaders
	}
	return &Locker{
		entries:    make(map[string]*entry),
		maxReaders: maxReaders,
	}
}

// Lock acquires exclusive access to key. It returns ctx.Err() if ctx is done
// before the lock is acquired, in which case nothing is held.
func (l *Locker) Lock(ctx context.Context, key string) (UnlockFunc, error) {
	return l.acquire(ctx, key, l.maxReaders)
}

// RLock acquires shared access to key.
func (l *Locker) RLock(ctx context.Context, key string) (UnlockFunc, error) {
	return l.acquire(ctx, key, 1)
}

// Len returns the number of keys currently held or waited on.
func (l *Locker) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Locker) acquire(ctx context.Context, key string, weight int64) (UnlockFunc, error) {
	e := l.ref(key)

	if err := e.sem.Acquire(ctx, weight); err != nil {
		l.unref(key, e)
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			e.sem.Release(weight)
			l.unref(key, e)
		})
	}, nil
}

func (l *Locker) ref(key string) *entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &entry{sem: semaphore.NewWeighted(l.maxReaders)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *Locker) unref(key string, e *entry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}
