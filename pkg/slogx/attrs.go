// Package slogx provides slog attribute helpers shared by the broker and
// the binaries built on top of it.
package slogx

import "log/slog"

// Error returns a slog.Attr with the key "error" and the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Channel returns a slog.Attr identifying a pub/sub channel.
func Channel(name string) slog.Attr {
	return slog.String("channel", name)
}

// Queue returns a slog.Attr identifying a delivery queue by its id.
func Queue(id string) slog.Attr {
	return slog.String("queue", id)
}

// Sequence returns a slog.Attr carrying an envelope sequence id.
func Sequence(seq uint64) slog.Attr {
	return slog.Uint64("sequence_id", seq)
}
