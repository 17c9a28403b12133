package pubsub

import (
	"container/heap"
	"context"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultQueueCapacity bounds a delivery queue when no capacity was given.
// Subscribers that expect bursts well beyond this should raise it with
// WithCapacity at subscribe time, otherwise the overflow policy drops the
// excess messages.
const DefaultQueueCapacity = 100

// buffer is the ordering strategy of a delivery queue: arrival order for
// the base broker, (priority, sequence) order for the priority broker.
// Callers hold the queue lock.
type buffer interface {
	push(Envelope)
	pop() (Envelope, bool)
	len() int
}

// Queue is the per-subscriber inbox of envelopes. It is created by
// Subscribe, owned by exactly one subscriber, and bounded: when it is full
// at publish time the new message is dropped for this subscriber only.
//
// A Queue is safe for one concurrent publisher-side push and one
// consumer-side receive; the owning subscriber must not share it.
type Queue struct {
	id       string
	channel  string
	capacity int

	mu     sync.Mutex
	buf    buffer
	closed bool

	// notify wakes the single blocked consumer after a push. Capacity 1 is
	// enough: receive loops re-check the buffer after every wakeup.
	notify chan struct{}

	closeOnce sync.Once
	onClose   func()

	// owner is the broker that created this queue; Broker.Unsubscribe
	// refuses queues that belong to another broker.
	owner *Broker
}

func newQueue(channel string, capacity int, prioritized bool, onClose func()) *Queue {
	var buf buffer
	if prioritized {
		buf = &priorityBuffer{}
	} else {
		buf = &fifoBuffer{}
	}
	return &Queue{
		id:       uuid.Must(uuid.NewV7()).String(),
		channel:  channel,
		capacity: capacity,
		buf:      buf,
		notify:   make(chan struct{}, 1),
		onClose:  onClose,
	}
}

// ID returns the unique identifier of this subscription.
func (q *Queue) ID() string { return q.id }

// Channel returns the channel this queue was subscribed to.
func (q *Queue) Channel() string { return q.channel }

// Len returns the number of envelopes currently buffered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.buf.len()
}

// Cap returns the queue capacity.
func (q *Queue) Cap() int { return q.capacity }

// push inserts an envelope respecting the queue ordering. A full queue
// drops the new envelope and reports ErrQueueFull; a closed queue ignores
// the push entirely.
func (q *Queue) push(env Envelope) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	if q.buf.len() >= q.capacity {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.buf.push(env)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Receive blocks until an envelope is available or ctx is done, then
// returns the next envelope in queue order. Each call consumes one
// envelope; call it in a loop for a never-ending stream.
func (q *Queue) Receive(ctx context.Context) (Envelope, error) {
	for {
		q.mu.Lock()
		env, ok := q.buf.pop()
		q.mu.Unlock()
		if ok {
			return env, nil
		}

		select {
		case <-ctx.Done():
			return Envelope{}, ctx.Err()
		case <-q.notify:
		}
	}
}

// TryReceive is the bounded-wait variant of Receive. It returns ErrEmpty
// once timeout elapses without an envelope becoming available. A
// non-positive timeout polls the queue without waiting.
func (q *Queue) TryReceive(timeout time.Duration) (Envelope, error) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for {
		q.mu.Lock()
		env, ok := q.buf.pop()
		q.mu.Unlock()
		if ok {
			return env, nil
		}
		if timeout <= 0 {
			return Envelope{}, ErrEmpty
		}

		select {
		case <-deadline.C:
			return Envelope{}, ErrEmpty
		case <-q.notify:
		}
	}
}

// Listen returns an iterator over the envelopes arriving on this queue.
// The sequence blocks between elements and never completes on its own; it
// ends only when ctx is cancelled or the caller stops iterating.
func (q *Queue) Listen(ctx context.Context) iter.Seq[Envelope] {
	return func(yield func(Envelope) bool) {
		for {
			env, err := q.Receive(ctx)
			if err != nil {
				return
			}
			if !yield(env) {
				return
			}
		}
	}
}

// Drain returns every envelope currently buffered, in queue order, without
// waiting for more. It is the non-blocking counterpart of Listen.
func (q *Queue) Drain() []Envelope {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]Envelope, 0, q.buf.len())
	for {
		env, ok := q.buf.pop()
		if !ok {
			return out
		}
		out = append(out, env)
	}
}

// Unsubscribe detaches the queue from its channel. Publishes after the
// call no longer reach it, but envelopes buffered before the call remain
// receivable until drained. Safe to call more than once.
func (q *Queue) Unsubscribe() {
	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		if q.onClose != nil {
			q.onClose()
		}
	})
}

// fifoBuffer delivers envelopes in arrival order.
type fifoBuffer struct {
	items []Envelope
}

func (b *fifoBuffer) push(env Envelope) {
	b.items = append(b.items, env)
}

func (b *fifoBuffer) pop() (Envelope, bool) {
	if len(b.items) == 0 {
		return Envelope{}, false
	}
	env := b.items[0]
	b.items = b.items[1:]
	return env, true
}

func (b *fifoBuffer) len() int { return len(b.items) }

// priorityBuffer delivers envelopes in (priority, sequence) order.
type priorityBuffer struct {
	items envelopeHeap
}

func (b *priorityBuffer) push(env Envelope) {
	heap.Push(&b.items, env)
}

func (b *priorityBuffer) pop() (Envelope, bool) {
	if b.items.Len() == 0 {
		return Envelope{}, false
	}
	return heap.Pop(&b.items).(Envelope), true
}

func (b *priorityBuffer) len() int { return b.items.Len() }

type envelopeHeap []Envelope

func (h envelopeHeap) Len() int           { return len(h) }
func (h envelopeHeap) Less(i, j int) bool { return h[i].Before(h[j]) }
func (h envelopeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *envelopeHeap) Push(x any)        { *h = append(*h, x.(Envelope)) }
func (h *envelopeHeap) Pop() any {
	old := *h
	n := len(old)
	env := old[n-1]
	*h = old[:n-1]
	return env
}
