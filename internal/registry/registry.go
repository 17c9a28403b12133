// Package registry tracks which members are attached to which named
// channel. It backs the broker's fan-out: lookups return copy-on-read
// snapshots so an in-flight publish is unaffected by concurrent
// subscribe/unsubscribe calls.
package registry

import "github.com/alphadose/haxmap"

// Registry maps a channel name to its member set, keyed by member id.
// All operations are safe for concurrent use. A channel entry is created
// on first Add and kept afterwards; a channel with zero members is legal
// and cheap.
type Registry[T any] struct {
	channels *haxmap.Map[string, *haxmap.Map[string, T]]
}

func New[T any]() *Registry[T] {
	return &Registry[T]{
		channels: haxmap.New[string, *haxmap.Map[string, T]](),
	}
}

// Add registers member under channel, creating the channel entry if
// absent. Re-adding an existing id overwrites it in place, so Add is
// idempotent.
func (r *Registry[T]) Add(channel, id string, member T) {
	members, _ := r.channels.GetOrCompute(channel, func() *haxmap.Map[string, T] {
		return haxmap.New[string, T]()
	})
	members.Set(id, member)
}

// Remove deregisters the member with the given id. Removing from an
// unknown channel, or removing an id that is not a member, is a no-op.
func (r *Registry[T]) Remove(channel, id string) {
	if members, ok := r.channels.Get(channel); ok {
		members.Del(id)
	}
}

// Snapshot returns the current members of channel. The returned slice is
// a copy: later Add/Remove calls do not affect it, and iteration order is
// unspecified.
func (r *Registry[T]) Snapshot(channel string) []T {
	members, ok := r.channels.Get(channel)
	if !ok {
		return nil
	}
	out := make([]T, 0, members.Len())
	members.ForEach(func(_ string, member T) bool {
		out = append(out, member)
		return true
	})
	return out
}

// Channels returns the names of all channels seen so far, in no
// particular order.
func (r *Registry[T]) Channels() []string {
	out := make([]string, 0, r.channels.Len())
	r.channels.ForEach(func(name string, _ *haxmap.Map[string, T]) bool {
		out = append(out, name)
		return true
	})
	return out
}

// Len returns the number of members currently attached to channel.
func (r *Registry[T]) Len(channel string) int {
	members, ok := r.channels.Get(channel)
	if !ok {
		return 0
	}
	return int(members.Len())
}
