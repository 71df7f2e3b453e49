package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cellex-webapp/cellex-storefront/pkg/commerce"
	"github.com/cellex-webapp/cellex-storefront/pkg/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubSearchBackend struct {
	calls int64
	delay time.Duration
}

func (b *stubSearchBackend) SearchProducts(_ context.Context, query commerce.ProductQuery) (*models.ProductPage, error) {
	atomic.AddInt64(&b.calls, 1)
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	return &models.ProductPage{
		Content: []models.Product{{ID: "P1", Name: query.Keyword}},
	}, nil
}

func TestDebouncerSupersedesOlderCall(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var wg sync.WaitGroup
	var first, second bool

	wg.Add(1)
	go func() {
		defer wg.Done()
		first = d.Wait(context.Background(), "s1")
	}()

	// The second keystroke lands inside the first call's settle window.
	time.Sleep(10 * time.Millisecond)
	wg.Add(1)
	go func() {
		defer wg.Done()
		second = d.Wait(context.Background(), "s1")
	}()

	wg.Wait()
	require.False(t, first, "older query must be superseded")
	require.True(t, second, "latest query must go through")
}

func TestDebouncerKeysAreIndependent(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i, key := range []string{"s1", "s2"} {
		wg.Add(1)
		go func(i int, key string) {
			defer wg.Done()
			results[i] = d.Wait(context.Background(), key)
		}(i, key)
	}
	wg.Wait()

	require.True(t, results[0])
	require.True(t, results[1])
}

func TestDebouncerCancelledContext(t *testing.T) {
	d := NewDebouncer(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.False(t, d.Wait(ctx, "s1"))
}

func TestSearchReturnsSupersededError(t *testing.T) {
	backend := &stubSearchBackend{}
	svc := NewService(backend, NewDebouncer(50*time.Millisecond), zap.NewNop())

	var wg sync.WaitGroup
	var firstErr error

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = svc.Search(context.Background(), "s1", commerce.ProductQuery{Keyword: "cel"})
	}()

	time.Sleep(15 * time.Millisecond)
	page, err := svc.Search(context.Background(), "s1", commerce.ProductQuery{Keyword: "cellex"})
	require.NoError(t, err)
	require.Equal(t, "cellex", page.Content[0].Name)

	wg.Wait()
	require.ErrorIs(t, firstErr, ErrSuperseded)
	require.EqualValues(t, 1, atomic.LoadInt64(&backend.calls), "superseded query must not hit the backend")
}

func TestSearchSharesInFlightIdenticalQueries(t *testing.T) {
	backend := &stubSearchBackend{delay: 100 * time.Millisecond}
	svc := NewService(backend, NewDebouncer(0), zap.NewNop())

	query := commerce.ProductQuery{Keyword: "cellex"}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := svc.Search(context.Background(), "session-a", query)
		require.NoError(t, err)
	}()

	// Let the first request reach the backend, then pile on identical
	// queries from other sessions while it is still in flight.
	time.Sleep(20 * time.Millisecond)
	for _, session := range []string{"session-b", "session-c", "session-d"} {
		wg.Add(1)
		go func(session string) {
			defer wg.Done()
			page, err := svc.Search(context.Background(), session, query)
			require.NoError(t, err)
			require.Len(t, page.Content, 1)
		}(session)
	}
	wg.Wait()

	require.EqualValues(t, 1, atomic.LoadInt64(&backend.calls), "identical in-flight queries should share one backend call")
}
