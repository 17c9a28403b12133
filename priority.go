package pubsub

import (
	"context"
	"fmt"

	"github.com/fogfish/opts"
)

// PriorityBroker is a Broker whose delivery queues release messages in
// (priority, sequence) order instead of arrival order: lower priority
// values are delivered first, and the sequence id breaks ties so that
// equal-priority messages keep their publish order. Overflow and fan-out
// semantics are identical to the base broker.
type PriorityBroker struct {
	*Broker
}

// NewPriority creates a broker with priority-ordered delivery queues. Its
// Publish method stamps messages with DefaultPriority; use
// PublishPriority to set an explicit one.
func NewPriority(options ...opts.Option[Broker]) (*PriorityBroker, error) {
	b, err := New(options...)
	if err != nil {
		return nil, err
	}
	b.prioritized = true
	return &PriorityBroker{Broker: b}, nil
}

// PublishPriority publishes payload on channel with an explicit priority.
// Lower is more urgent; negative priorities are rejected.
func (b *PriorityBroker) PublishPriority(ctx context.Context, channel string, payload any, priority int) error {
	if priority < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, priority)
	}
	return b.publish(ctx, channel, payload, priority)
}
