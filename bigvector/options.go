package bigvector

import (
	"io"
	"log/slog"

	"github.com/aglyzov/storeds/store"
)

// Option configures a Vector.
type Option[T any] func(*options[T])

type options[T any] struct {
	buckets store.Store[uint64, []T]
	logger  *slog.Logger
}

// WithStore sets the store that keeps the pages. It must be empty and must
// not be shared with another vector. Defaults to a store.Map.
func WithStore[T any](s store.Store[uint64, []T]) Option[T] {
	return func(opts *options[T]) {
		opts.buckets = s
	}
}

// WithLogger sets a logger for page allocation and structural events.
// If not provided, no logging output will be produced.
func WithLogger[T any](logger *slog.Logger) Option[T] {
	return func(opts *options[T]) {
		opts.logger = logger
	}
}

func newOptions[T any](opts []Option[T]) options[T] {
	var o options[T]
	for _, opt := range opts {
		opt(&o)
	}
	if o.buckets == nil {
		o.buckets = store.NewMap[uint64, []T]()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o
}
