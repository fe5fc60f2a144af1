package bigvector

import (
	"github.com/cockroachdb/errors"
)

func (v *Vector[T]) pagesFor(n uint64) uint64 {
	pages := n / v.bucketSize
	if n%v.bucketSize != 0 {
		pages++
	}
	return pages
}

// Verify checks the paging invariant: pages are stored under keys 0..k-1
// with k = ceil(Len/BucketSize), every page but the last holds exactly
// BucketSize elements, the last holds between 1 and BucketSize, and page
// lengths add up to Len.
func (v *Vector[T]) Verify() error {
	if v.bucketSize == 0 {
		return errors.AssertionFailedf("bucket size is zero")
	}
	want := v.pagesFor(v.endIndex)
	if n := v.buckets.Len(); n != want {
		return errors.AssertionFailedf("store holds %d pages, length %d needs %d", n, v.endIndex, want)
	}

	var total uint64
	check := func(b, size uint64) error {
		switch {
		case b+1 < want && size != v.bucketSize:
			return errors.AssertionFailedf("page %d holds %d elements, want %d", b, size, v.bucketSize)
		case b+1 == want && (size == 0 || size > v.bucketSize):
			return errors.AssertionFailedf("last page %d holds %d elements, want 1..%d", b, size, v.bucketSize)
		}
		total += size
		return nil
	}

	for b := uint64(0); b < want; b++ {
		page, err := v.buckets.Borrow(b)
		if err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "page %d is missing", b)
		}
		if err := check(b, uint64(len(page))); err != nil {
			return err
		}
	}

	if total != v.endIndex {
		return errors.AssertionFailedf("pages hold %d elements, length is %d", total, v.endIndex)
	}
	return nil
}
