package lock

import (
	"context"
	"sync"
)

// LocalLocker serializes critical sections with one in-process mutex per
// key. Sufficient for the single-binary deployment; multi-instance setups
// configure the Redis locker instead.
type LocalLocker struct {
	mu   sync.Mutex
	keys map[string]*sync.Mutex
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{keys: make(map[string]*sync.Mutex)}
}

func (l *LocalLocker) keyMutex(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.keys[key]
	if !ok {
		m = &sync.Mutex{}
		l.keys[key] = m
	}
	return m
}

func (l *LocalLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	m := l.keyMutex(key)
	m.Lock()
	defer m.Unlock()
	return fn(ctx)
}
