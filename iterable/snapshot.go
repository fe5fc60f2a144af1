package iterable

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"

	"github.com/aglyzov/storeds/snapshot"
)

type image[K comparable, V any] struct {
	Keys []K
	Vals []V
}

// Save writes the entries of t, in order, to the snapshot file name.
// K and V must be encodable with encoding/gob.
func (t *Table[K, V]) Save(fs afero.Fs, name string) error {
	img := image[K, V]{
		Keys: make([]K, 0, t.Len()),
		Vals: make([]V, 0, t.Len()),
	}
	t.Iter(func(key K, val V) bool {
		img.Keys = append(img.Keys, key)
		img.Vals = append(img.Vals, val)
		return true
	})
	if uint64(len(img.Keys)) != t.Len() {
		return errors.AssertionFailedf("traversal visited %d of %d entries", len(img.Keys), t.Len())
	}
	return snapshot.Write(fs, name, img)
}

// Load rebuilds a table from a snapshot written by Save, preserving order.
func Load[K comparable, V any](fs afero.Fs, name string, opts ...Option[K, V]) (*Table[K, V], error) {
	var img image[K, V]
	if err := snapshot.Read(fs, name, &img); err != nil {
		return nil, err
	}
	if len(img.Keys) != len(img.Vals) {
		return nil, errors.Wrapf(snapshot.ErrCorrupt, "%d keys, %d values", len(img.Keys), len(img.Vals))
	}
	t, err := New(opts...)
	if err != nil {
		return nil, err
	}
	for i, key := range img.Keys {
		if err := t.Add(key, img.Vals[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}
