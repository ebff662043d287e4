package presence

import (
	"context"
	"fmt"

	"github.com/go-monolith/mono/pkg/types"
)

// Dispatcher runs inbound events one at a time, in arrival order, on a
// single goroutine. It is the only writer of the registry.
type Dispatcher struct {
	handle func(Inbound)
	queue  chan Inbound
	done   chan struct{}
	logger types.Logger
}

// NewDispatcher creates a dispatcher with a bounded queue.
func NewDispatcher(handle func(Inbound), queueSize int, logger types.Logger) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	return &Dispatcher{
		handle: handle,
		queue:  make(chan Inbound, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Run processes events until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	defer close(d.done)
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Dispatcher stopped", "pending", len(d.queue))
			return
		case in := <-d.queue:
			d.process(in)
		}
	}
}

// Dispatch enqueues in. It blocks while the queue is full and returns false
// once the dispatcher has stopped.
func (d *Dispatcher) Dispatch(in Inbound) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.queue <- in:
		return true
	case <-d.done:
		return false
	}
}

// Running reports whether Run has not yet returned.
func (d *Dispatcher) Running() bool {
	select {
	case <-d.done:
		return false
	default:
		return true
	}
}

// Wait blocks until Run has returned.
func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) process(in Inbound) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Event handler panicked",
				"connID", in.ConnID,
				"event", in.Event,
				"error", fmt.Errorf("panic: %v", r))
		}
	}()
	d.handle(in)
}
