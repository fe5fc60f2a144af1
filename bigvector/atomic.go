package bigvector

import (
	"slices"

	"github.com/cockroachdb/errors"

	"github.com/aglyzov/storeds/internal/txn"
	"github.com/aglyzov/storeds/internal/vebset"
	"github.com/aglyzov/storeds/store"
)

func newPageSet() store.KeySet[uint64] {
	return vebset.New()
}

// journal routes page mutations of v through a store.Journal until the
// returned function ends it. Each page is cloned at most once per journal.
func (v *Vector[T]) journal() txn.EndFunc {
	var (
		saved    = v.buckets
		savedEnd = v.endIndex
		j        = store.NewJournal[uint64, []T](saved,
			func(p []T) []T { return slices.Clone(p) },
			store.WithKeySet[uint64, []T](newPageSet),
		)
	)
	v.buckets = j

	return func(commit bool) error {
		v.buckets = saved
		if commit {
			return j.Commit()
		}
		v.endIndex = savedEnd
		undone := j.Pending()
		err := j.Rollback()
		v.logger.Debug("sequence rolled back", "undone", undone, "len", v.endIndex)
		return err
	}
}

// enlist journals v as a participant of tx.
func (v *Vector[T]) enlist(tx *txn.Tx) {
	end := v.journal()
	v.tx = tx
	tx.Enlist(func(commit bool) error {
		v.tx = nil
		return end(commit)
	})
}

// Atomic runs fn as a single all-or-nothing sequence. While fn runs, page
// mutations go through a store.Journal; if fn returns an error or panics,
// the journal is rolled back and the length is restored, so none of fn's
// changes to v remain visible.
//
// A vector appended to v inside fn joins the sequence and is restored too.
// Other changes fn makes to other vectors are not covered.
func (v *Vector[T]) Atomic(fn func() error) (err error) {
	var (
		outer = v.tx
		tx    = txn.Begin(outer)
		end   = v.journal()
	)
	v.tx = tx

	defer func() {
		v.tx = outer
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
