package lock

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerSerializesPerKey(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	const workers = 50
	inside := 0
	maxInside := 0
	var track sync.Mutex

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.WithLock(ctx, "p1|2025-06-02|09:00", func(context.Context) error {
				track.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				track.Unlock()

				track.Lock()
				inside--
				track.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside, "critical sections for one key never overlap")
}

func TestLocalLockerPropagatesError(t *testing.T) {
	l := NewLocalLocker()
	want := ErrNotAcquired
	err := l.WithLock(context.Background(), "k", func(context.Context) error { return want })
	require.ErrorIs(t, err, want)
}

func TestLocalLockerIndependentKeys(t *testing.T) {
	l := NewLocalLocker()
	ctx := context.Background()

	// Holding one key must not block another
	release := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = l.WithLock(ctx, "a", func(context.Context) error {
			<-release
			return nil
		})
	}()
	go func() {
		_ = l.WithLock(ctx, "b", func(context.Context) error { return nil })
		close(done)
	}()

	<-done
	close(release)
}
