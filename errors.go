package pubsub

import "errors"

var (
	// ErrEmptyChannel is returned when an operation names an empty channel.
	ErrEmptyChannel = errors.New("pubsub: channel name must not be empty")

	// ErrNilPayload is returned by Publish when the payload is nil.
	ErrNilPayload = errors.New("pubsub: payload must not be nil")

	// ErrQueueFull reports that a delivery queue was at capacity and the
	// message was dropped for that subscriber. Publish never surfaces it;
	// the broker logs the drop and continues fan-out.
	ErrQueueFull = errors.New("pubsub: delivery queue full, message dropped")

	// ErrEmpty is returned by TryReceive when no envelope arrived before
	// the timeout.
	ErrEmpty = errors.New("pubsub: no message available")

	// ErrInvalidCapacity rejects zero or negative queue capacities.
	ErrInvalidCapacity = errors.New("pubsub: queue capacity must be positive")

	// ErrInvalidPriority rejects negative priorities.
	ErrInvalidPriority = errors.New("pubsub: priority must not be negative")
)
