package iterable

import (
	"github.com/cockroachdb/errors"
)

// Verify checks the linkage invariant: head and tail are nil exactly when the
// table is empty, following Next from head visits every key once and ends at
// tail, every record's Prev names the key visited before it, and following
// Prev from tail visits the same number of keys.
func (t *Table[K, V]) Verify() error {
	n := t.inner.Len()
	if (t.head == nil) != (n == 0) || (t.tail == nil) != (n == 0) {
		return errors.AssertionFailedf("length %d, head set: %t, tail set: %t", n, t.head != nil, t.tail != nil)
	}

	var (
		seen  = make(map[K]struct{}, n)
		prev  *K
		count uint64
	)
	for key := t.head; key != nil; count++ {
		if _, dup := seen[*key]; dup {
			return errors.AssertionFailedf("key %v visited twice", *key)
		}
		seen[*key] = struct{}{}

		rec, err := t.inner.Borrow(*key)
		if err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "linked key %v is missing", *key)
		}
		if (rec.Prev == nil) != (prev == nil) || prev != nil && *rec.Prev != *prev {
			return errors.AssertionFailedf("key %v: prev link does not match traversal", *key)
		}
		prev, key = key, rec.Next
	}
	if count != n {
		return errors.AssertionFailedf("forward traversal visited %d keys, length is %d", count, n)
	}
	if prev != nil && *prev != *t.tail {
		return errors.AssertionFailedf("forward traversal ended at %v, tail is %v", *prev, *t.tail)
	}

	count = 0
	for key := t.tail; key != nil && count <= n; count++ {
		rec, err := t.inner.Borrow(*key)
		if err != nil {
			return errors.NewAssertionErrorWithWrappedErrf(err, "linked key %v is missing", *key)
		}
		if rec.Prev == nil && *key != *t.head {
			return errors.AssertionFailedf("backward traversal ended at %v, head is %v", *key, *t.head)
		}
		key = rec.Prev
	}
	if count != n {
		return errors.AssertionFailedf("backward traversal visited %d keys, length is %d", count, n)
	}
	return nil
}
