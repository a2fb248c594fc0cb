package dispatch

import (
	"context"
	"sync"
)

// hostLocks hands out one mutex per host ID. Entries are removed when the
// last holder or waiter releases them.
type hostLocks struct {
	mu    sync.Mutex
	locks map[string]*hostLock
}

type hostLock struct {
	ch   chan struct{}
	refs int
}

func newHostLocks() *hostLocks {
	return &hostLocks{locks: make(map[string]*hostLock)}
}

// acquire blocks until the lock for id is held or ctx is done. On success
// the returned function releases the lock.
func (l *hostLocks) acquire(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	hl, ok := l.locks[id]
	if !ok {
		hl = &hostLock{ch: make(chan struct{}, 1)}
		l.locks[id] = hl
	}
	hl.refs++
	l.mu.Unlock()

	select {
	case hl.ch <- struct{}{}:
		return func() {
			<-hl.ch
			l.drop(id, hl)
		}, nil
	case <-ctx.Done():
		l.drop(id, hl)
		return nil, ctx.Err()
	}
}

func (l *hostLocks) drop(id string, hl *hostLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	hl.refs--
	if hl.refs == 0 {
		delete(l.locks, id)
	}
}

// size reports how many hosts currently have a lock entry.
func (l *hostLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
