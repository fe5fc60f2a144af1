// Package iterable implements a keyed table that remembers insertion order.
//
// Every entry is stored in a store.Store as a Node that carries, next to the
// value, the keys of the previous and next entries. Together with the head
// and tail keys kept by the Table this forms a doubly linked list threaded
// through the store, so entries can be appended, unlinked from anywhere and
// traversed in order, each step in O(1).
package iterable

import (
	"log/slog"

	"github.com/cockroachdb/errors"

	"github.com/aglyzov/storeds/internal/txn"
	"github.com/aglyzov/storeds/store"
)

// Node is the record stored under every key. A nil Prev or Next marks an end
// of the list.
type Node[K comparable, V any] struct {
	Val  V
	Prev *K
	Next *K
}

// Table maps K to V and keeps the keys in insertion order.
type Table[K comparable, V any] struct {
	inner  store.Store[K, Node[K, V]]
	head   *K
	tail   *K
	logger *slog.Logger
	clone  func(V) V
	// tx is the all-or-nothing sequence t takes part in, if any
	tx *txn.Tx
}

// New returns an empty Table. It fails if the store given with WithStore
// already holds entries.
func New[K comparable, V any](opts ...Option[K, V]) (*Table[K, V], error) {
	o := newOptions(opts)
	if n := o.inner.Len(); n != 0 {
		return nil, errors.Wrapf(store.ErrNotEmpty, "record store holds %d entries", n)
	}
	return &Table[K, V]{
		inner:  o.inner,
		logger: o.logger,
		clone:  o.clone,
	}, nil
}

// keyRef returns a pointer to a private copy of key. Links are never shared
// between records or with callers.
func keyRef[K any](key K) *K {
	return &key
}

func copyKey[K any](p *K) *K {
	if p == nil {
		return nil
	}
	return keyRef(*p)
}

func isKey[K comparable](p *K, key K) bool {
	return p != nil && *p == key
}

func (t *Table[K, V]) Len() uint64 {
	return t.inner.Len()
}

func (t *Table[K, V]) Empty() bool {
	return t.inner.Len() == 0
}

func (t *Table[K, V]) Contains(key K) bool {
	return t.inner.Contains(key)
}

// HeadKey returns the first key in insertion order, or nil for an empty table.
func (t *Table[K, V]) HeadKey() *K {
	return copyKey(t.head)
}

// TailKey returns the last key in insertion order, or nil for an empty table.
func (t *Table[K, V]) TailKey() *K {
	return copyKey(t.tail)
}

// Add appends a new entry after the current tail.
func (t *Table[K, V]) Add(key K, val V) error {
	if t.inner.Contains(key) {
		return errors.Wrapf(ErrDuplicateKey, "key %v", key)
	}
	if err := t.inner.Add(key, Node[K, V]{Val: val, Prev: copyKey(t.tail)}); err != nil {
		return err
	}
	if t.tail != nil {
		p, err := t.inner.BorrowMut(*t.tail)
		if err != nil {
			return err
		}
		p.Next = keyRef(key)
	} else {
		t.head = keyRef(key)
	}
	t.tail = keyRef(key)
	return nil
}

// Borrow returns the value stored under key.
func (t *Table[K, V]) Borrow(key K) (val V, err error) {
	n, err := t.inner.Borrow(key)
	if err != nil {
		return val, err
	}
	return n.Val, nil
}

// BorrowMut returns a pointer to the value stored under key. The pointer is
// valid until the next call that changes the table.
func (t *Table[K, V]) BorrowMut(key K) (*V, error) {
	p, err := t.inner.BorrowMut(key)
	if err != nil {
		return nil, err
	}
	return &p.Val, nil
}

// BorrowIter returns the value stored under key together with the keys of
// its neighbours, for manual traversal.
func (t *Table[K, V]) BorrowIter(key K) (val V, prev, next *K, err error) {
	n, err := t.inner.Borrow(key)
	if err != nil {
		return val, nil, nil, err
	}
	return n.Val, copyKey(n.Prev), copyKey(n.Next), nil
}

// BorrowIterMut is BorrowIter with a mutable value.
func (t *Table[K, V]) BorrowIterMut(key K) (val *V, prev, next *K, err error) {
	p, err := t.inner.BorrowMut(key)
	if err != nil {
		return nil, nil, nil, err
	}
	return &p.Val, copyKey(p.Prev), copyKey(p.Next), nil
}

// BorrowMutWithDefault adds key with value def unless it is present, then
// returns a pointer to its value.
func (t *Table[K, V]) BorrowMutWithDefault(key K, def V) (*V, error) {
	if !t.inner.Contains(key) {
		if err := t.Add(key, def); err != nil {
			return nil, err
		}
	}
	return t.BorrowMut(key)
}

// Remove unlinks the entry for key and returns its value.
func (t *Table[K, V]) Remove(key K) (V, error) {
	val, _, _, err := t.RemoveIter(key)
	return val, err
}

// RemoveIter unlinks the entry for key and returns its value together with
// the keys that were its neighbours.
func (t *Table[K, V]) RemoveIter(key K) (val V, prev, next *K, err error) {
	n, err := t.inner.Remove(key)
	if err != nil {
		return val, nil, nil, err
	}
	if isKey(t.tail, key) {
		t.tail = copyKey(n.Prev)
	}
	if isKey(t.head, key) {
		t.head = copyKey(n.Next)
	}
	if n.Prev != nil {
		p, err := t.inner.BorrowMut(*n.Prev)
		if err != nil {
			return val, nil, nil, err
		}
		p.Next = copyKey(n.Next)
	}
	if n.Next != nil {
		p, err := t.inner.BorrowMut(*n.Next)
		if err != nil {
			return val, nil, nil, err
		}
		p.Prev = copyKey(n.Prev)
	}
	return n.Val, n.Prev, n.Next, nil
}

// Append moves every entry of other, in order, after the tail of t. other is
// left empty. It fails with ErrDuplicateKey, before moving anything, if the
// tables share a key.
//
// Inside Atomic, other joins the sequence of t, so a rollback returns its
// entries to it.
func (t *Table[K, V]) Append(other *Table[K, V]) error {
	if other == t {
		return errSelfAppend
	}
	for key := other.head; key != nil; {
		if t.inner.Contains(*key) {
			return errors.Wrapf(ErrDuplicateKey, "key %v", *key)
		}
		n, err := other.inner.Borrow(*key)
		if err != nil {
			return err
		}
		key = n.Next
	}
	if t.tx != nil && other.tx == nil {
		other.enlist(t.tx)
	}

	var moved int
	for key := other.HeadKey(); key != nil; moved++ {
		val, _, next, err := other.RemoveIter(*key)
		if err != nil {
			return err
		}
		if err := t.Add(*key, val); err != nil {
			return err
		}
		key = next
	}
	t.logger.Debug("table appended", "moved", moved, "len", t.Len())
	return nil
}

// DestroyEmpty releases the store of an empty table.
func (t *Table[K, V]) DestroyEmpty() error {
	if n := t.inner.Len(); n != 0 || t.head != nil || t.tail != nil {
		return errors.Wrapf(ErrTableNotEmpty, "%d entries left", n)
	}
	return t.inner.DestroyEmpty()
}

// Iter calls handler for every entry in insertion order.
// It returns whether all entries were visited.
// The handler can continue the process by returning true or abort with false.
func (t *Table[K, V]) Iter(handler func(K, V) bool) bool {
	for key := t.head; key != nil; {
		n, err := t.inner.Borrow(*key)
		if err != nil || !handler(*key, n.Val) {
			return false
		}
		key = n.Next
	}
	return true
}

// IterReverse is Iter from the tail towards the head.
func (t *Table[K, V]) IterReverse(handler func(K, V) bool) bool {
	for key := t.tail; key != nil; {
		n, err := t.inner.Borrow(*key)
		if err != nil || !handler(*key, n.Val) {
			return false
		}
		key = n.Prev
	}
	return true
}

// Keys returns all keys in insertion order.
func (t *Table[K, V]) Keys() []K {
	keys := make([]K, 0, t.Len())
	t.Iter(func(key K, _ V) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}
