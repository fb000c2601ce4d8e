package keylock

import (
	"context"
	"errors"
	"sort"
)

var (
	ErrLockTimeout = errors.New("keylock: timed out waiting for lock")
	ErrLockBackend = errors.New("keylock: lock backend failure")
)

// Locker acquires exclusive locks on a set of keys. The returned function
// releases every key and is safe to call more than once.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (func(), error)
}

// WithLock runs fn while holding all keys.
func WithLock(ctx context.Context, locker Locker, keys []string, fn func(ctx context.Context) error) error {
	unlock, err := locker.Lock(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlock()

	return fn(ctx)
}

// normalize sorts and de-duplicates keys so that every caller acquires
// locks in the same order.
func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func releaseAll(release []func()) func() {
	done := false
	return func() {
		if done {
			return
		}
		done = true
		for i := len(release) - 1; i >= 0; i-- {
			release[i]()
		}
	}
}
