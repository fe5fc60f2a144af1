package bigvector

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrIndexOutOfBounds is returned when an index is not below Len.
	ErrIndexOutOfBounds = errors.New("bigvector: index out of bounds")
	// ErrVectorEmpty is returned by PopBack on an empty vector.
	ErrVectorEmpty = errors.New("bigvector: vector is empty")
	// ErrVectorNotEmpty is returned by DestroyEmpty on a non-empty vector.
	ErrVectorNotEmpty = errors.New("bigvector: vector is not empty")
	// ErrZeroBucketSize is returned by the constructors for a zero bucket size.
	ErrZeroBucketSize = errors.New("bigvector: bucket size must be positive")

	errSelfAppend = errors.New("bigvector: cannot append a vector to itself")
)

func outOfBounds(i, n uint64) error {
	return errors.Wrapf(ErrIndexOutOfBounds, "index %d, length %d", i, n)
}
