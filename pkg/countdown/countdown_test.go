package countdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock runs scheduled callbacks synchronously when the test advances
// it, one callback per simulated second.
type fakeClock struct {
	mu      sync.Mutex
	pending []*fakeTimer
}

type fakeTimer struct {
	f       func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := t.stopped
	t.stopped = true
	return !was
}

func (c *fakeClock) AfterFunc(_ time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{f: f}
	c.pending = append(c.pending, t)
	return t
}

func (c *fakeClock) advance(ticks int) {
	for i := 0; i < ticks; i++ {
		c.mu.Lock()
		var next *fakeTimer
		for len(c.pending) > 0 {
			t := c.pending[0]
			c.pending = c.pending[1:]
			if !t.stopped {
				next = t
				break
			}
		}
		c.mu.Unlock()
		if next == nil {
			return
		}
		next.f()
	}
}

func TestCountdownFiresOnceAfterAllTicks(t *testing.T) {
	clock := &fakeClock{}
	fires := 0
	var ticks []int

	cd := New(clock, func() { fires++ }, WithOnTick(func(remaining int) {
		ticks = append(ticks, remaining)
	}))

	cd.Start(6)
	require.Equal(t, Counting, cd.State())
	require.Equal(t, 6, cd.Remaining())

	// Five ticks in: still counting, nothing fired.
	clock.advance(5)
	require.Equal(t, Counting, cd.State())
	require.Equal(t, 1, cd.Remaining())
	require.Zero(t, fires)

	clock.advance(1)
	require.Equal(t, Fired, cd.State())
	require.Equal(t, 1, fires)
	require.Equal(t, []int{5, 4, 3, 2, 1, 0}, ticks)

	// Nothing left to run; firing is a one-shot.
	clock.advance(10)
	require.Equal(t, 1, fires)
}

func TestCountdownCancelPreventsFire(t *testing.T) {
	clock := &fakeClock{}
	fires := 0
	cd := New(clock, func() { fires++ })

	cd.Start(6)
	clock.advance(3)
	require.Equal(t, 3, cd.Remaining())

	require.True(t, cd.Cancel())
	require.Equal(t, Idle, cd.State())
	require.Zero(t, cd.Remaining())

	// Draining the clock must not resurrect the cancelled run.
	clock.advance(10)
	require.Equal(t, Idle, cd.State())
	require.Zero(t, fires)
}

func TestCountdownCancelWhenIdleIsNoop(t *testing.T) {
	cd := New(&fakeClock{}, func() {})
	require.False(t, cd.Cancel())
	require.Equal(t, Idle, cd.State())
}

func TestCountdownRestartSupersedesOldRun(t *testing.T) {
	clock := &fakeClock{}
	fires := 0
	cd := New(clock, func() { fires++ })

	cd.Start(6)
	clock.advance(2)

	// Restart discards the old run and its pending tick.
	cd.Start(3)
	require.Equal(t, 3, cd.Remaining())

	clock.advance(3)
	require.Equal(t, Fired, cd.State())
	require.Equal(t, 1, fires)
}

func TestCountdownRestartAfterCancel(t *testing.T) {
	clock := &fakeClock{}
	fires := 0
	cd := New(clock, func() { fires++ })

	cd.Start(6)
	clock.advance(1)
	require.True(t, cd.Cancel())

	cd.Start(2)
	clock.advance(2)
	require.Equal(t, Fired, cd.State())
	require.Equal(t, 1, fires)
}

func TestCountdownIgnoresNonPositiveSeconds(t *testing.T) {
	cd := New(&fakeClock{}, func() { t.Fatal("must not fire") })
	cd.Start(0)
	require.Equal(t, Idle, cd.State())
	cd.Start(-1)
	require.Equal(t, Idle, cd.State())
}
