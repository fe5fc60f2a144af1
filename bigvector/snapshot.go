package bigvector

import (
	"github.com/spf13/afero"

	"github.com/aglyzov/storeds/snapshot"
)

type image[T any] struct {
	BucketSize uint64
	Elems      []T
}

// Save writes the elements and bucket size of v to the snapshot file name.
// T must be encodable with encoding/gob.
func (v *Vector[T]) Save(fs afero.Fs, name string) error {
	elems, err := v.ToSlice()
	if err != nil {
		return err
	}
	return snapshot.Write(fs, name, image[T]{BucketSize: v.bucketSize, Elems: elems})
}

// Load rebuilds a vector from a snapshot written by Save.
func Load[T any](fs afero.Fs, name string, opts ...Option[T]) (*Vector[T], error) {
	var img image[T]
	if err := snapshot.Read(fs, name, &img); err != nil {
		return nil, err
	}
	v, err := Empty(img.BucketSize, opts...)
	if err != nil {
		return nil, err
	}
	for _, val := range img.Elems {
		if err := v.PushBack(val); err != nil {
			return nil, err
		}
	}
	return v, nil
}
