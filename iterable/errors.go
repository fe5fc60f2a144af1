package iterable

import (
	"github.com/cockroachdb/errors"

	"github.com/aglyzov/storeds/store"
)

var (
	// ErrKeyNotFound is returned for operations on an absent key.
	ErrKeyNotFound = store.ErrKeyNotFound
	// ErrDuplicateKey is returned by Add for a key that is already present.
	ErrDuplicateKey = store.ErrDuplicateKey
	// ErrTableNotEmpty is returned by DestroyEmpty on a non-empty table.
	ErrTableNotEmpty = errors.New("iterable: table is not empty")

	errSelfAppend = errors.New("iterable: cannot append a table to itself")
)
