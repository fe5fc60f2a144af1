// Package bigvector implements a growable vector whose elements are split
// into fixed-capacity pages kept in a store.Store.
//
// Page k holds the elements with indices [k*BucketSize, (k+1)*BucketSize) and
// is stored under key k. Every page but the last is full and the last page is
// never empty, so a vector of n elements always occupies exactly
// ceil(n/BucketSize) store entries.
//
// Operations that touch two pages at once extract one of them from the store
// (Remove), mutate both, and put it back (Add); at no point is more than one
// mutable handle into the store live.
package bigvector

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/aglyzov/storeds/internal/txn"
	"github.com/aglyzov/storeds/store"
)

// maxPrealloc caps the capacity reserved for a fresh page.
const maxPrealloc = 1024

// Vector is a paged sequence of T. The zero value is not usable; create one
// with Empty or Singleton.
type Vector[T any] struct {
	buckets    store.Store[uint64, []T]
	endIndex   uint64
	bucketSize uint64
	logger     *slog.Logger
	// tx is the all-or-nothing sequence v takes part in, if any
	tx *txn.Tx
}

// Empty creates a vector with pages of bucketSize elements.
func Empty[T any](bucketSize uint64, opts ...Option[T]) (*Vector[T], error) {
	if bucketSize == 0 {
		return nil, ErrZeroBucketSize
	}
	o := newOptions(opts)
	if n := o.buckets.Len(); n != 0 {
		return nil, errors.Wrapf(store.ErrNotEmpty, "page store holds %d entries", n)
	}
	return &Vector[T]{
		buckets:    o.buckets,
		bucketSize: bucketSize,
		logger:     o.logger,
	}, nil
}

// Singleton creates a vector holding a single element.
func Singleton[T any](val T, bucketSize uint64, opts ...Option[T]) (*Vector[T], error) {
	v, err := Empty(bucketSize, opts...)
	if err != nil {
		return nil, err
	}
	if err := v.PushBack(val); err != nil {
		return nil, err
	}
	return v, nil
}

// Len returns the number of elements.
func (v *Vector[T]) Len() uint64 {
	return v.endIndex
}

func (v *Vector[T]) IsEmpty() bool {
	return v.endIndex == 0
}

func (v *Vector[T]) BucketSize() uint64 {
	return v.bucketSize
}

func (v *Vector[T]) locate(i uint64) (bucket, offset uint64) {
	return i / v.bucketSize, i % v.bucketSize
}

// Borrow returns the element at index i.
func (v *Vector[T]) Borrow(i uint64) (val T, err error) {
	if i >= v.endIndex {
		return val, outOfBounds(i, v.endIndex)
	}
	b, off := v.locate(i)
	page, err := v.buckets.Borrow(b)
	if err != nil {
		return val, err
	}
	return page[off], nil
}

// BorrowMut returns a pointer to the element at index i. The pointer is
// valid until the next call that changes the vector.
func (v *Vector[T]) BorrowMut(i uint64) (*T, error) {
	if i >= v.endIndex {
		return nil, outOfBounds(i, v.endIndex)
	}
	b, off := v.locate(i)
	p, err := v.buckets.BorrowMut(b)
	if err != nil {
		return nil, err
	}
	return &(*p)[off], nil
}

// PushBack appends val. A new page is allocated once every BucketSize calls.
func (v *Vector[T]) PushBack(val T) error {
	num := v.buckets.Len()
	if v.endIndex == num*v.bucketSize {
		size := v.bucketSize
		if size > maxPrealloc {
			size = maxPrealloc
		}
		page := append(make([]T, 0, size), val)
		if err := v.buckets.Add(num, page); err != nil {
			return err
		}
		v.logger.Debug("page allocated", "bucket", num, "len", v.endIndex+1)
	} else {
		p, err := v.buckets.BorrowMut(num - 1)
		if err != nil {
			return err
		}
		*p = append(*p, val)
	}
	v.endIndex++
	return nil
}

// PopBack removes and returns the last element. The last page is released
// as soon as it becomes empty.
func (v *Vector[T]) PopBack() (val T, err error) {
	if v.endIndex == 0 {
		return val, ErrVectorEmpty
	}
	last := v.buckets.Len() - 1
	p, err := v.buckets.BorrowMut(last)
	if err != nil {
		return val, err
	}
	page := *p
	n := len(page)
	val = page[n-1]

	var zero T
	page[n-1] = zero
	*p = page[:n-1]

	if n == 1 {
		if _, err := v.buckets.Remove(last); err != nil {
			return val, err
		}
		v.logger.Debug("page released", "bucket", last, "len", v.endIndex-1)
	}
	v.endIndex--
	return val, nil
}

// Swap exchanges the elements at indices i and j.
func (v *Vector[T]) Swap(i, j uint64) error {
	if i >= v.endIndex {
		return outOfBounds(i, v.endIndex)
	}
	if j >= v.endIndex {
		return outOfBounds(j, v.endIndex)
	}
	bi, oi := v.locate(i)
	bj, oj := v.locate(j)

	if bi == bj {
		p, err := v.buckets.BorrowMut(bi)
		if err != nil {
			return err
		}
		(*p)[oi], (*p)[oj] = (*p)[oj], (*p)[oi]
		return nil
	}

	// pull page j out so that page i is the only handle into the store
	pj, err := v.buckets.Remove(bj)
	if err != nil {
		return err
	}
	pi, err := v.buckets.BorrowMut(bi)
	if err != nil {
		return errors.CombineErrors(err, v.buckets.Add(bj, pj))
	}
	(*pi)[oi], pj[oj] = pj[oj], (*pi)[oi]
	return v.buckets.Add(bj, pj)
}

// SwapRemove removes the element at index i and moves the last element into
// its place. It is O(1) but does not preserve the order of the remaining
// elements.
func (v *Vector[T]) SwapRemove(i uint64) (val T, err error) {
	if i >= v.endIndex {
		return val, outOfBounds(i, v.endIndex)
	}
	last, err := v.PopBack()
	if err != nil {
		return val, err
	}
	if i == v.endIndex {
		return last, nil
	}
	b, off := v.locate(i)
	p, err := v.buckets.BorrowMut(b)
	if err != nil {
		return val, err
	}
	val = (*p)[off]
	(*p)[off] = last
	return val, nil
}

// Remove removes the element at index i, shifting every later element down
// by one. This is O(n): each page after i's is extracted, loses its first
// element to the page before it and is put back.
func (v *Vector[T]) Remove(i uint64) (val T, err error) {
	if i >= v.endIndex {
		return val, outOfBounds(i, v.endIndex)
	}
	var (
		num    = v.buckets.Len()
		b, off = v.locate(i)
	)
	cur, err := v.buckets.Remove(b)
	if err != nil {
		return val, err
	}
	val = cur[off]
	copy(cur[off:], cur[off+1:])

	for k := b + 1; k < num; k++ {
		next, err := v.buckets.Remove(k)
		if err != nil {
			return val, err
		}
		cur[len(cur)-1] = next[0]
		copy(next, next[1:])
		if err := v.buckets.Add(k-1, cur); err != nil {
			return val, err
		}
		cur = next
	}

	// the tail slot of the last page is now a stale duplicate
	var zero T
	cur[len(cur)-1] = zero
	cur = cur[:len(cur)-1]
	if len(cur) > 0 {
		if err := v.buckets.Add(num-1, cur); err != nil {
			return val, err
		}
	} else {
		v.logger.Debug("page released", "bucket", num-1, "len", v.endIndex-1)
	}
	v.endIndex--
	return val, nil
}

// Reverse reverses the order of the elements in place.
func (v *Vector[T]) Reverse() error {
	n := v.endIndex
	for k := uint64(0); k < n/2; k++ {
		if err := v.Swap(k, n-1-k); err != nil {
			return err
		}
	}
	return nil
}

// IndexOfFunc returns the index of the first element satisfying pred, or
// (false, 0). This is a linear scan.
//
// A page the store fails to return ends the scan as not found; Verify
// reports such a vector as broken.
func (v *Vector[T]) IndexOfFunc(pred func(T) bool) (bool, uint64) {
	num := v.buckets.Len()
	for b := uint64(0); b < num; b++ {
		page, err := v.buckets.Borrow(b)
		if err != nil {
			return false, 0
		}
		for off, x := range page {
			if pred(x) {
				return true, b*v.bucketSize + uint64(off)
			}
		}
	}
	return false, 0
}

// IndexOf returns the index of the first element equal to val, or (false, 0).
// This is a linear scan.
func IndexOf[T comparable](v *Vector[T], val T) (bool, uint64) {
	return v.IndexOfFunc(func(x T) bool { return x == val })
}

// Contains reports whether val is an element of v. This is a linear scan.
func Contains[T comparable](v *Vector[T], val T) bool {
	if v.IsEmpty() {
		return false
	}
	found, _ := IndexOf(v, val)
	return found
}

// Append moves every element of other, in order, to the end of v and
// destroys other.
//
// The first half of other is drained with SwapRemove at increasing indices,
// which leaves the not yet moved tail of other reversed at its front; the
// rest is drained with PopBack, which then yields it in original order.
//
// Inside Atomic, other joins the sequence of v, so a rollback returns its
// elements to it.
func (v *Vector[T]) Append(other *Vector[T]) error {
	if other == v {
		return errSelfAppend
	}
	if v.tx != nil && other.tx == nil {
		other.enlist(v.tx)
	}
	var (
		n    = other.Len()
		half = n / 2
		i    uint64
	)
	for ; i < half; i++ {
		val, err := other.SwapRemove(i)
		if err != nil {
			return err
		}
		if err := v.PushBack(val); err != nil {
			return err
		}
	}
	for ; i < n; i++ {
		val, err := other.PopBack()
		if err != nil {
			return err
		}
		if err := v.PushBack(val); err != nil {
			return err
		}
	}
	v.logger.Debug("vector appended", "moved", n, "len", v.endIndex)
	return other.DestroyEmpty()
}

// DestroyEmpty releases the page store of an empty vector.
func (v *Vector[T]) DestroyEmpty() error {
	if v.endIndex != 0 {
		return errors.Wrapf(ErrVectorNotEmpty, "length %d", v.endIndex)
	}
	return v.buckets.DestroyEmpty()
}

// Destroy drops every element and releases the page store.
func (v *Vector[T]) Destroy() error {
	for b := v.buckets.Len(); b > 0; b-- {
		if _, err := v.buckets.Remove(b - 1); err != nil {
			return err
		}
	}
	v.endIndex = 0
	return v.buckets.DestroyEmpty()
}

// Iter calls handler for every element in index order.
// It returns whether all elements were visited, so a page the store fails to
// return shows up as an early false; Verify tells the two cases apart.
// The handler can continue the process by returning true or abort with false.
func (v *Vector[T]) Iter(handler func(uint64, T) bool) bool {
	num := v.buckets.Len()
	for b := uint64(0); b < num; b++ {
		page, err := v.buckets.Borrow(b)
		if err != nil {
			return false
		}
		for off, x := range page {
			if !handler(b*v.bucketSize+uint64(off), x) {
				return false
			}
		}
	}
	return true
}

// ToSlice returns a copy of all elements in index order.
func (v *Vector[T]) ToSlice() ([]T, error) {
	out := make([]T, 0, v.endIndex)
	num := v.buckets.Len()
	for b := uint64(0); b < num; b++ {
		page, err := v.buckets.Borrow(b)
		if err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}
