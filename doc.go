// Package pubsub implements an in-process publish/subscribe broker for
// decoupling the components of a concurrent application: publishers post
// messages onto named channels and every subscriber drains its own queued
// copy of each message published after it subscribed, so producers and
// consumers never call each other directly.
//
// Design decisions:
//   - Per-subscriber queues: fan-out copies an envelope into every
//     subscribed queue; a slow or stalled subscriber never stalls
//     publishers or its peers.
//   - Bounded inboxes: a queue at capacity drops the new message for that
//     subscriber only, with a logged warning; publishing continues.
//   - Broker-owned sequencing: each broker instance stamps envelopes from
//     its own atomic counter; ids are strictly increasing and unique.
//   - Two ordering variants: New gives arrival-order queues, NewPriority
//     gives (priority, sequence)-ordered queues, lower priority first.
//   - Best effort, single process: no persistence, no replay, no
//     cross-process delivery.
//
// Example usage:
//
//	broker, err := pubsub.New()
//	if err != nil {
//	    return err
//	}
//
//	queue, err := broker.Subscribe("news")
//	if err != nil {
//	    return err
//	}
//	defer queue.Unsubscribe()
//
//	if err := broker.Publish(ctx, "news", "Hello World !"); err != nil {
//	    return err
//	}
//
//	env, err := queue.Receive(ctx)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(env.Payload)
//
// Subscribers that want a stream instead of single receives can range
// over Listen:
//
//	for env := range queue.Listen(ctx) {
//	    handle(env)
//	}
package pubsub
