// Package lazy provides build-once values for structures materialized on
// first access.
//
// Concurrent first callers share one construction through singleflight; the
// result is published with an atomic pointer, so later calls are a single
// load. A failed construction is not cached: the next caller retries.
// Construction runs on a context detached from the first caller, bounded by
// an optional timeout, so one caller giving up does not fail the others.
package lazy

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrTimeout is returned when a construction exceeds its timeout.
var ErrTimeout = errors.New("construction timed out")

// Value is a lazily constructed *T.
type Value[T any] struct {
	v      atomic.Pointer[T]
	group  singleflight.Group
	builds atomic.Int64
}

// Loaded returns the value if it has been constructed.
func (l *Value[T]) Loaded() (*T, bool) {
	v := l.v.Load()
	return v, v != nil
}

// Builds returns how many constructions have run, failed ones included.
func (l *Value[T]) Builds() int64 { return l.builds.Load() }

// Get returns the value, constructing it with build on first use. A
// timeout <= 0 disables the bound.
func (l *Value[T]) Get(ctx context.Context, timeout time.Duration, build func(context.Context) (*T, error)) (*T, error) {
	if v := l.v.Load(); v != nil {
		return v, nil
	}

	ch := l.group.DoChan("", func() (any, error) {
		if v := l.v.Load(); v != nil {
			return v, nil
		}
		bctx := context.WithoutCancel(ctx)
		if timeout > 0 {
			var cancel context.CancelFunc
			bctx, cancel = context.WithTimeout(bctx, timeout)
			defer cancel()
		}
		l.builds.Add(1)
		v, err := build(bctx)
		if err != nil {
			if errors.Is(bctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w after %s: %w", ErrTimeout, timeout, err)
			}
			return nil, err
		}
		if v == nil {
			return nil, errors.New("lazy: build returned nil")
		}
		l.v.Store(v)
		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*T), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Map is a set of lazily constructed values addressed by key.
type Map[K comparable, T any] struct {
	m sync.Map
}

// Get returns the value for key, constructing it with build on first use.
func (m *Map[K, T]) Get(ctx context.Context, key K, timeout time.Duration, build func(context.Context) (*T, error)) (*T, error) {
	return m.Value(key).Get(ctx, timeout, build)
}

// Value returns the slot for key.
func (m *Map[K, T]) Value(key K) *Value[T] {
	if v, ok := m.m.Load(key); ok {
		return v.(*Value[T])
	}
	v, _ := m.m.LoadOrStore(key, &Value[T]{})
	return v.(*Value[T])
}

// Range calls fn for every constructed value.
func (m *Map[K, T]) Range(fn func(key K, v *T) bool) {
	m.m.Range(func(k, v any) bool {
		if val, ok := v.(*Value[T]).Loaded(); ok {
			return fn(k.(K), val)
		}
		return true
	})
}
