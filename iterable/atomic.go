package iterable

import (
	"github.com/cockroachdb/errors"

	"github.com/aglyzov/storeds/internal/txn"
	"github.com/aglyzov/storeds/store"
)

// journal routes record mutations of t through a store.Journal until the
// returned function ends it.
func (t *Table[K, V]) journal() txn.EndFunc {
	var (
		saved     = t.inner
		savedHead = t.head
		savedTail = t.tail
		j         = store.NewJournal[K, Node[K, V]](saved, func(n Node[K, V]) Node[K, V] {
			n.Val = t.clone(n.Val)
			return n
		})
	)
	t.inner = j

	return func(commit bool) error {
		t.inner = saved
		if commit {
			return j.Commit()
		}
		t.head, t.tail = savedHead, savedTail
		undone := j.Pending()
		err := j.Rollback()
		t.logger.Debug("sequence rolled back", "undone", undone, "len", t.Len())
		return err
	}
}

// enlist journals t as a participant of tx.
func (t *Table[K, V]) enlist(tx *txn.Tx) {
	end := t.journal()
	t.tx = tx
	tx.Enlist(func(commit bool) error {
		t.tx = nil
		return end(commit)
	})
}

// Atomic runs fn as a single all-or-nothing sequence. If fn returns an error
// or panics, every change fn made to t, including head and tail, is undone.
//
// A table appended to t inside fn joins the sequence and is restored too.
// Other changes fn makes to other tables are not covered.
func (t *Table[K, V]) Atomic(fn func() error) (err error) {
	var (
		outer = t.tx
		tx    = txn.Begin(outer)
		end   = t.journal()
	)
	t.tx = tx

	defer func() {
		t.tx = outer
		r := recover()
		commit := r == nil && err == nil

		if terr := tx.End(commit); terr != nil {
			err = errors.CombineErrors(err, errors.Wrap(terr, "participants"))
		}
		if eerr := end(commit); eerr != nil {
			if commit {
				err = eerr
			} else {
				err = errors.CombineErrors(err, errors.Wrap(eerr, "rollback"))
			}
		}
		if r != nil {
			panic(r)
		}
	}()

	return fn()
}
