package boundary

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/semaphore"
)

// keyLock hands out one exclusive lock per key. Entries are reference counted
// and dropped when nobody holds or waits for them.
type keyLock struct {
	mu    sync.Mutex
	locks map[string]*keyEntry
}

type keyEntry struct {
	sem  *semaphore.Weighted
	refs int
}

func newKeyLock() *keyLock {
	return &keyLock{locks: make(map[string]*keyEntry)}
}

func (k *keyLock) ref(key string) *keyEntry {
	k.mu.Lock()
	defer k.mu.Unlock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyEntry{sem: semaphore.NewWeighted(1)}
		k.locks[key] = e
	}
	e.refs++
	return e
}

func (k *keyLock) unref(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	e := k.locks[key]
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
}

// Lock acquires every key in sorted order, so two callers locking overlapping
// sets cannot deadlock. The returned func releases them all.
func (k *keyLock) Lock(ctx context.Context, keys ...string) (func(), error) {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	held := make([]*keyEntry, 0, len(keys))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].sem.Release(1)
			k.unref(keys[i])
		}
	}

	for _, key := range keys {
		e := k.ref(key)
		if err := e.sem.Acquire(ctx, 1); err != nil {
			k.unref(key)
			release()
			return nil, err
		}
		held = append(held, e)
	}
	return release, nil
}

// Len reports the number of keys currently held or awaited.
func (k *keyLock) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
