package pubsub

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// DefaultPriority is the priority assigned to messages published without an
// explicit priority. Lower values are more urgent, so explicit priorities
// below DefaultPriority jump ahead of default-priority traffic and values
// above it queue behind.
const DefaultPriority = 100

// Envelope is the unit of delivery: the payload a publisher handed to the
// broker plus the metadata the broker stamped on it. Envelopes are values,
// constructed once during publish and never mutated afterwards.
type Envelope struct {
	// Sequence is a broker-wide counter value, strictly increasing in
	// assignment order and unique per published message.
	Sequence uint64

	// Priority orders delivery in priority queues. Lower is more urgent.
	// Base (FIFO) brokers stamp every envelope with DefaultPriority.
	Priority int

	// Payload is the publisher's value, opaque to the broker.
	Payload any
}

// Before reports whether e should be delivered ahead of other in a
// priority-ordered queue: first by priority (lower wins), then by sequence
// so that equal-priority messages keep their publish order.
func (e Envelope) Before(other Envelope) bool {
	if e.Priority != other.Priority {
		return e.Priority < other.Priority
	}
	return e.Sequence < other.Sequence
}

type envelopeJSON struct {
	Sequence uint64 `json:"sequence_id"`
	Priority int    `json:"priority"`
	Payload  any    `json:"payload"`
}

// MarshalJSON implements json.Marshaler for diagnostics output.
func (e Envelope) MarshalJSON() ([]byte, error) {
	return json.Marshal(envelopeJSON{
		Sequence: e.Sequence,
		Priority: e.Priority,
		Payload:  e.Payload,
	})
}

func (e Envelope) String() string {
	return fmt.Sprintf("envelope(seq=%d prio=%d payload=%v)", e.Sequence, e.Priority, e.Payload)
}
