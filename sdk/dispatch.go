package sdk

import "sync"

// dispatcher serializes all derived-state changes onto a single goroutine.
//
// The directory pump, the game pump and one-shot calls like SubmitTurn can
// run on different goroutines; funneling every state application through one
// mailbox keeps frame processing strictly in arrival order per stream and
// prevents races between streams and commands.
type dispatcher struct {
	q        chan func()
	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
}

func newDispatcher(queueSize int) *dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &dispatcher{
		q:       make(chan func(), queueSize),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go func() {
		defer close(d.done)
		for {
			select {
			case fn := <-d.q:
				if fn != nil {
					fn()
				}
			case <-d.stopped:
				return
			}
		}
	}()
	return d
}

// do enqueues fn without waiting for it to run. A no-op after stop.
func (d *dispatcher) do(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-d.stopped:
		return
	default:
	}
	select {
	case d.q <- fn:
	case <-d.stopped:
	}
}

// call runs fn on the dispatch goroutine and waits for it to finish. A
// no-op after stop, so in-flight pumps cannot crash a shutting-down client.
func (d *dispatcher) call(fn func()) {
	if fn == nil {
		return
	}
	select {
	case <-d.stopped:
		return
	default:
	}
	ran := make(chan struct{})
	select {
	case d.q <- func() {
		defer close(ran)
		fn()
	}:
	case <-d.stopped:
		return
	}
	select {
	case <-ran:
	case <-d.stopped:
	}
}

// stop shuts the goroutine down and discards queued work. Idempotent.
func (d *dispatcher) stop() {
	d.stopOnce.Do(func() {
		close(d.stopped)
		<-d.done
	})
}
