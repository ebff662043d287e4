package presence

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startDispatcher(t *testing.T, handle func(Inbound), queueSize int) *Dispatcher {
	t.Helper()
	d := NewDispatcher(handle, queueSize, &mockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)
	t.Cleanup(func() {
		cancel()
		d.Wait()
	})
	return d
}

func collect(t *testing.T, ch <-chan string, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for len(out) < n {
		select {
		case v := <-ch:
			out = append(out, v)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d events", len(out), n)
		}
	}
	return out
}

func TestDispatcher_PreservesArrivalOrder(t *testing.T) {
	seen := make(chan string, 100)
	d := startDispatcher(t, func(in Inbound) { seen <- in.Event }, 8)

	want := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		event := fmt.Sprintf("e%d", i)
		want = append(want, event)
		require.True(t, d.Dispatch(Inbound{ConnID: "A", Event: event}))
	}

	assert.Equal(t, want, collect(t, seen, 100))
}

func TestDispatcher_RecoversFromPanic(t *testing.T) {
	seen := make(chan string, 2)
	d := startDispatcher(t, func(in Inbound) {
		if in.Event == "boom" {
			panic("handler exploded")
		}
		seen <- in.Event
	}, 0)

	d.Dispatch(Inbound{Event: "boom"})
	d.Dispatch(Inbound{Event: "after"})

	assert.Equal(t, []string{"after"}, collect(t, seen, 1))
}

func TestDispatcher_RunsOneEventAtATime(t *testing.T) {
	var inFlight, maxInFlight, handled int32
	d := startDispatcher(t, func(Inbound) {
		n := atomic.AddInt32(&inFlight, 1)
		for {
			m := atomic.LoadInt32(&maxInFlight)
			if n <= m || atomic.CompareAndSwapInt32(&maxInFlight, m, n) {
				break
			}
		}
		time.Sleep(100 * time.Microsecond)
		atomic.AddInt32(&inFlight, -1)
		atomic.AddInt32(&handled, 1)
	}, 4)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				d.Dispatch(Inbound{ConnID: fmt.Sprintf("c%d", g), Event: "activity"})
			}
		}(g)
	}
	wg.Wait()

	assert.Eventually(t, func() bool { return atomic.LoadInt32(&handled) == 200 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInFlight))
}

func TestDispatcher_RejectsAfterStop(t *testing.T) {
	d := NewDispatcher(func(Inbound) {}, 1, &mockLogger{})
	ctx, cancel := context.WithCancel(context.Background())
	go d.Run(ctx)
	assert.True(t, d.Running())

	cancel()
	d.Wait()

	assert.False(t, d.Running())
	assert.False(t, d.Dispatch(Inbound{Event: "connect"}))
}

func TestDispatcher_DefaultQueueSize(t *testing.T) {
	d := NewDispatcher(func(Inbound) {}, 0, &mockLogger{})
	assert.Equal(t, 256, cap(d.queue))
}
