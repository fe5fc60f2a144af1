package store

import (
	"github.com/cockroachdb/errors"
)

type undoKind uint8

const (
	undoAdd undoKind = iota + 1
	undoRemove
	undoMutate
)

type undoEntry[K comparable, V any] struct {
	kind undoKind
	key  K
	// prior value for undoRemove and undoMutate
	val V
}

// KeySet records the keys a Journal has already logged. Add reports whether
// key was absent before.
type KeySet[K comparable] interface {
	Add(key K) bool
}

type mapKeySet[K comparable] map[K]struct{}

func (s mapKeySet[K]) Add(key K) bool {
	if _, ok := s[key]; ok {
		return false
	}
	s[key] = struct{}{}
	return true
}

// JournalOption configures a Journal.
type JournalOption[K comparable, V any] func(*Journal[K, V])

// WithKeySet sets the constructor for the set of logged keys. A fresh set is
// created on every Commit and Rollback. Defaults to a Go map.
func WithKeySet[K comparable, V any](newSet func() KeySet[K]) JournalOption[K, V] {
	return func(j *Journal[K, V]) {
		j.newSet = newSet
	}
}

// Journal stages a sequence of mutations against a base Store so the whole
// sequence can be committed or discarded as a unit.
//
// Mutations are applied to the base immediately; the journal keeps an undo
// log holding a clone of every value it is about to lose (on Remove) or hand
// out for mutation (on BorrowMut). Rollback replays the log backwards.
// DestroyEmpty is deferred until Commit.
//
// A BorrowMut on a key that already has an undo entry is not logged again:
// replaying the earlier entry restores that key on its own.
type Journal[K comparable, V any] struct {
	base      Store[K, V]
	clone     func(V) V
	undo      []undoEntry[K, V]
	logged    KeySet[K]
	newSet    func() KeySet[K]
	destroyed bool
}

var _ Store[string, int] = (*Journal[string, int])(nil)

// NewJournal wraps base. clone must return a copy of a value that shares no
// mutable state with the original; nil means plain assignment is enough.
func NewJournal[K comparable, V any](base Store[K, V], clone func(V) V, opts ...JournalOption[K, V]) *Journal[K, V] {
	if clone == nil {
		clone = func(v V) V { return v }
	}
	j := &Journal[K, V]{base: base, clone: clone}
	for _, opt := range opts {
		opt(j)
	}
	if j.newSet == nil {
		j.newSet = func() KeySet[K] { return mapKeySet[K]{} }
	}
	j.logged = j.newSet()
	return j
}

// Base returns the wrapped store.
func (j *Journal[K, V]) Base() Store[K, V] {
	return j.base
}

// Pending returns the number of recorded undo entries.
func (j *Journal[K, V]) Pending() int {
	return len(j.undo)
}

func (j *Journal[K, V]) Add(key K, val V) error {
	if err := j.base.Add(key, val); err != nil {
		return err
	}
	j.destroyed = false
	j.logged.Add(key)
	j.undo = append(j.undo, undoEntry[K, V]{kind: undoAdd, key: key})
	return nil
}

func (j *Journal[K, V]) Remove(key K) (V, error) {
	val, err := j.base.Remove(key)
	if err != nil {
		return val, err
	}
	j.logged.Add(key)
	j.undo = append(j.undo, undoEntry[K, V]{kind: undoRemove, key: key, val: j.clone(val)})
	return val, nil
}

func (j *Journal[K, V]) Borrow(key K) (V, error) {
	return j.base.Borrow(key)
}

func (j *Journal[K, V]) BorrowMut(key K) (*V, error) {
	p, err := j.base.BorrowMut(key)
	if err != nil {
		return nil, err
	}
	if j.logged.Add(key) {
		j.undo = append(j.undo, undoEntry[K, V]{kind: undoMutate, key: key, val: j.clone(*p)})
	}
	return p, nil
}

func (j *Journal[K, V]) Contains(key K) bool {
	return j.base.Contains(key)
}

func (j *Journal[K, V]) Len() uint64 {
	return j.base.Len()
}

func (j *Journal[K, V]) DestroyEmpty() error {
	if n := j.base.Len(); n != 0 {
		return notEmpty(n)
	}
	j.destroyed = true
	return nil
}

// Commit makes the staged sequence permanent.
func (j *Journal[K, V]) Commit() error {
	j.undo = j.undo[:0]
	j.logged = j.newSet()
	if j.destroyed {
		j.destroyed = false
		return j.base.DestroyEmpty()
	}
	return nil
}

// Rollback restores the base store to the state it had when the journal was
// created (or last committed). Failures only happen if the base was modified
// behind the journal's back; they are collected and the replay continues.
func (j *Journal[K, V]) Rollback() error {
	var err error
	for i := len(j.undo) - 1; i >= 0; i-- {
		e := j.undo[i]
		switch e.kind {
		case undoAdd:
			if _, rerr := j.base.Remove(e.key); rerr != nil {
				err = errors.CombineErrors(err, errors.Wrap(rerr, "undo add"))
			}
		case undoRemove:
			if rerr := j.base.Add(e.key, e.val); rerr != nil {
				err = errors.CombineErrors(err, errors.Wrap(rerr, "undo remove"))
			}
		case undoMutate:
			p, rerr := j.base.BorrowMut(e.key)
			if rerr != nil {
				err = errors.CombineErrors(err, errors.Wrap(rerr, "undo mutate"))
				continue
			}
			*p = e.val
		}
	}
	j.undo = j.undo[:0]
	j.logged = j.newSet()
	j.destroyed = false
	return err
}
