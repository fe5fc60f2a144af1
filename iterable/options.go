package iterable

import (
	"io"
	"log/slog"

	"github.com/aglyzov/storeds/store"
)

// Option configures a Table.
type Option[K comparable, V any] func(*options[K, V])

type options[K comparable, V any] struct {
	inner  store.Store[K, Node[K, V]]
	logger *slog.Logger
	clone  func(V) V
}

// WithStore sets the store that keeps the linked records. It must be empty
// and must not be shared with another table. Defaults to a store.Map.
func WithStore[K comparable, V any](s store.Store[K, Node[K, V]]) Option[K, V] {
	return func(opts *options[K, V]) {
		opts.inner = s
	}
}

// WithLogger sets a logger for structural events.
// If not provided, no logging output will be produced.
func WithLogger[K comparable, V any](logger *slog.Logger) Option[K, V] {
	return func(opts *options[K, V]) {
		opts.logger = logger
	}
}

// WithClone sets a deep-copy function for values. Atomic uses it to keep the
// prior state of values handed out by BorrowMut. Without it values are
// copied by assignment, which is enough unless V holds references.
func WithClone[K comparable, V any](clone func(V) V) Option[K, V] {
	return func(opts *options[K, V]) {
		opts.clone = clone
	}
}

func newOptions[K comparable, V any](opts []Option[K, V]) options[K, V] {
	var o options[K, V]
	for _, opt := range opts {
		opt(&o)
	}
	if o.inner == nil {
		o.inner = store.NewMap[K, Node[K, V]]()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.clone == nil {
		o.clone = func(v V) V { return v }
	}
	return o
}
