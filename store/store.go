// Package store defines the keyed container that the paged and linked
// collections of this module are layered on, together with a few
// implementations of it.
//
// A Store maps keys to values and tracks its own length. All operations are
// point operations: there is no range query and no iteration in the contract
// itself. Implementations may offer traversal as an extra.
//
// At most one mutable handle into a store may be live at a time: a pointer
// returned by BorrowMut stays valid only until the next mutating call on the
// same store. Code that must touch two entries together extracts one of them
// with Remove, mutates both, and puts the extracted one back with Add.
package store

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrKeyNotFound is returned by Remove, Borrow and BorrowMut for an absent key.
	ErrKeyNotFound = errors.New("key not found")
	// ErrDuplicateKey is returned by Add when the key is already present.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotEmpty is returned by DestroyEmpty on a store that still holds entries.
	ErrNotEmpty = errors.New("store is not empty")
)

// Store is a keyed container with a tracked length.
type Store[K comparable, V any] interface {
	// Add inserts a new entry. It fails with ErrDuplicateKey if key is present.
	Add(key K, val V) error
	// Remove deletes an entry and hands its value back to the caller.
	Remove(key K) (V, error)
	// Borrow returns the value stored under key. The result must be treated
	// as read-only.
	Borrow(key K) (V, error)
	// BorrowMut returns a pointer to the value stored under key.
	BorrowMut(key K) (*V, error)
	Contains(key K) bool
	Len() uint64
	// DestroyEmpty releases the store. It fails with ErrNotEmpty unless Len is 0.
	DestroyEmpty() error
}

func keyNotFound[K any](key K) error {
	return errors.Wrapf(ErrKeyNotFound, "key %v", key)
}

func duplicateKey[K any](key K) error {
	return errors.Wrapf(ErrDuplicateKey, "key %v", key)
}

func notEmpty(n uint64) error {
	return errors.Wrapf(ErrNotEmpty, "%d entries left", n)
}
