// Package lock guards the booking critical section: the availability
// re-check and the persist must not interleave for the same slot tuple.
package lock

import (
	"context"
	"errors"
)

var ErrNotAcquired = errors.New("slot lock not acquired")

// Locker serializes fn per key. Keys identify one bookable slot tuple,
// e.g. "psicologoId|fecha|hora".
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}
