package lazy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueBuildsOnceUnderConcurrency(t *testing.T) {
	var l Value[int]
	release := make(chan struct{})

	const callers = 32
	var wg sync.WaitGroup
	results := make([]*int, callers)
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.Get(context.Background(), 0, func(context.Context) (*int, error) {
				<-release
				n := 42
				return &n, nil
			})
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), l.Builds())
	for _, r := range results {
		assert.Same(t, results[0], r)
	}
}

func TestValueErrorIsNotCached(t *testing.T) {
	var l Value[string]
	boom := errors.New("boom")

	_, err := l.Get(context.Background(), 0, func(context.Context) (*string, error) { return nil, boom })
	require.ErrorIs(t, err, boom)
	_, ok := l.Loaded()
	assert.False(t, ok)

	v, err := l.Get(context.Background(), 0, func(context.Context) (*string, error) {
		s := "ok"
		return &s, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", *v)
	assert.Equal(t, int64(2), l.Builds())
}

func TestValueTimeout(t *testing.T) {
	var l Value[int]
	_, err := l.Get(context.Background(), 10*time.Millisecond, func(ctx context.Context) (*int, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCallerCancellationDoesNotAbortBuild(t *testing.T) {
	var l Value[int]
	started := make(chan struct{})
	release := make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() {
		_, err := l.Get(ctx, 0, func(bctx context.Context) (*int, error) {
			close(started)
			<-release
			if bctx.Err() != nil {
				return nil, bctx.Err()
			}
			n := 7
			return &n, nil
		})
		errc <- err
	}()

	<-started
	cancel()
	assert.ErrorIs(t, <-errc, context.Canceled)
	close(release)

	v, err := l.Get(context.Background(), 0, func(context.Context) (*int, error) {
		t.Fatal("second build")
		return nil, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, *v)
}

func TestMapKeysAreIndependent(t *testing.T) {
	var m Map[string, string]
	boom := errors.New("boom")

	_, err := m.Get(context.Background(), "bad", 0, func(context.Context) (*string, error) { return nil, boom })
	require.ErrorIs(t, err, boom)

	v, err := m.Get(context.Background(), "good", 0, func(context.Context) (*string, error) {
		s := "value"
		return &s, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "value", *v)

	var keys []string
	m.Range(func(k string, _ *string) bool {
		keys = append(keys, k)
		return true
	})
	assert.Equal(t, []string{"good"}, keys)
}
