package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/alphadose/haxmap"
	"github.com/fogfish/opts"

	"github.com/Thierry46/pubsub/internal/registry"
	"github.com/Thierry46/pubsub/pkg/slogx"
)

// Broker is the public façade of the in-process publish/subscribe system.
// Publishers post messages onto named channels; every queue subscribed to
// a channel receives its own copy of each message published after it
// subscribed. All methods are safe for concurrent use from any number of
// publisher and subscriber goroutines; unrelated channels never contend
// on a shared lock.
type Broker struct {
	registry *registry.Registry[*Queue]
	logger   *slog.Logger
	seq      atomic.Uint64

	// locks serializes sequence assignment plus fan-out per channel, so
	// every queue observes envelopes in sequence order. Publishes on
	// unrelated channels never contend. Pushes inside the critical
	// section cannot block: a full queue drops instead.
	locks *haxmap.Map[string, *sync.Mutex]

	capacity    int
	sequencing  bool
	prioritized bool
}

var (
	// WithLogger sets the logger used to report dropped messages.
	WithLogger = opts.ForName[Broker, *slog.Logger]("logger")

	// WithSequencing toggles sequence id assignment. When disabled every
	// envelope carries sequence 0.
	WithSequencing = opts.ForName[Broker, bool]("sequencing")
)

// WithQueueCapacity sets the default capacity of queues created by
// Subscribe. Individual subscribers can still override it per call with
// WithCapacity.
func WithQueueCapacity(capacity int) opts.Option[Broker] {
	return opts.Type[Broker](func(b *Broker) error {
		if capacity <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
		}
		b.capacity = capacity
		return nil
	})
}

// New creates a broker whose delivery queues release messages in arrival
// order.
func New(options ...opts.Option[Broker]) (*Broker, error) {
	b := &Broker{
		registry:   registry.New[*Queue](),
		logger:     slog.Default(),
		locks:      haxmap.New[string, *sync.Mutex](),
		capacity:   DefaultQueueCapacity,
		sequencing: true,
	}
	if err := opts.Apply(b, options); err != nil {
		return nil, err
	}
	return b, nil
}

type queueConfig struct {
	capacity int
}

// WithCapacity overrides the broker's default queue capacity for one
// Subscribe call.
func WithCapacity(capacity int) opts.Option[queueConfig] {
	return opts.Type[queueConfig](func(c *queueConfig) error {
		if capacity <= 0 {
			return fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
		}
		c.capacity = capacity
		return nil
	})
}

// Subscribe attaches a new delivery queue to channel and returns it. The
// queue only collects messages published after this call; there is no
// replay. Every call creates a fresh queue, so subscribing twice to the
// same channel yields two independent inboxes.
func (b *Broker) Subscribe(channel string, options ...opts.Option[queueConfig]) (*Queue, error) {
	if channel == "" {
		return nil, ErrEmptyChannel
	}
	cfg := queueConfig{capacity: b.capacity}
	if err := opts.Apply(&cfg, options); err != nil {
		return nil, err
	}

	var q *Queue
	q = newQueue(channel, cfg.capacity, b.prioritized, func() {
		b.registry.Remove(channel, q.id)
	})
	q.owner = b
	b.registry.Add(channel, q.id, q)
	return q, nil
}

// Unsubscribe detaches q from channel. Subsequent publishes no longer
// reach it, but envelopes already buffered stay receivable until drained.
// Unsubscribing an unknown queue or channel is a no-op.
func (b *Broker) Unsubscribe(channel string, q *Queue) {
	if q == nil || q.owner != b || q.channel != channel {
		return
	}
	q.Unsubscribe()
}

// Publish fans payload out to every queue currently subscribed to
// channel. A channel with no subscribers is a cheap no-op. A full queue
// drops the message for that subscriber only: the drop is logged and
// fan-out continues. Publish returns once every push has been attempted;
// it never waits for a subscriber to consume.
func (b *Broker) Publish(ctx context.Context, channel string, payload any) error {
	return b.publish(ctx, channel, payload, DefaultPriority)
}

func (b *Broker) publish(ctx context.Context, channel string, payload any, priority int) error {
	if channel == "" {
		return ErrEmptyChannel
	}
	if payload == nil {
		return ErrNilPayload
	}

	mu, _ := b.locks.GetOrCompute(channel, func() *sync.Mutex { return &sync.Mutex{} })
	mu.Lock()
	defer mu.Unlock()

	env := Envelope{Priority: priority, Payload: payload}
	if b.sequencing {
		env.Sequence = b.seq.Add(1) - 1
	}

	for _, q := range b.registry.Snapshot(channel) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := q.push(env); err != nil {
			b.logger.Warn("delivery queue full, message dropped for subscriber",
				slogx.Channel(channel),
				slogx.Queue(q.ID()),
				slogx.Sequence(env.Sequence),
				slog.Int("capacity", q.Cap()),
			)
		}
	}
	return nil
}

// Channels returns the names of all channels that have seen a subscriber,
// in no particular order.
func (b *Broker) Channels() []string {
	return b.registry.Channels()
}

// Subscribers returns the number of queues currently subscribed to
// channel.
func (b *Broker) Subscribers(channel string) int {
	return b.registry.Len(channel)
}
