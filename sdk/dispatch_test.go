package sdk

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDispatcherSerializesWork(t *testing.T) {
	t.Parallel()

	d := newDispatcher(16)
	defer d.stop()

	var seq []int
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.call(func() { seq = append(seq, i) })
		}()
	}
	wg.Wait()

	// No lost updates: every closure ran exactly once on one goroutine.
	require.Len(t, seq, 100)
	seen := make(map[int]bool)
	for _, v := range seq {
		require.False(t, seen[v])
		seen[v] = true
	}
}

func TestDispatcherCallWaits(t *testing.T) {
	t.Parallel()

	d := newDispatcher(1)
	defer d.stop()

	done := false
	d.call(func() { done = true })
	require.True(t, done)
}

func TestDispatcherDoRunsAsync(t *testing.T) {
	t.Parallel()

	d := newDispatcher(1)
	defer d.stop()

	ran := make(chan struct{})
	d.do(func() { close(ran) })
	<-ran
}

func TestDispatcherStopDuringActiveCalls(t *testing.T) {
	t.Parallel()

	d := newDispatcher(4)

	// Pumps keep calling while stop races them; nothing may panic and every
	// call must return.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				d.call(func() {})
			}
		}()
	}
	d.stop()
	wg.Wait()
}

func TestDispatcherNoOpAfterStop(t *testing.T) {
	t.Parallel()

	d := newDispatcher(1)
	d.stop()

	ran := false
	d.call(func() { ran = true })
	require.False(t, ran)
	d.do(func() {})
}

func TestDispatcherStopIsIdempotent(t *testing.T) {
	t.Parallel()

	d := newDispatcher(1)
	d.do(func() {})
	d.stop()
	d.stop()
}

func TestDispatcherNilWorkIsNoOp(t *testing.T) {
	t.Parallel()

	d := newDispatcher(1)
	defer d.stop()

	d.do(nil)
	d.call(nil)
}
