// Package txn tracks the collections that join an all-or-nothing sequence
// besides its receiver, such as the source of an Append.
package txn

import (
	"github.com/cockroachdb/errors"
)

// EndFunc finishes the participation of one collection. It commits the
// collection's staged changes when commit is true and rolls them back
// otherwise.
type EndFunc func(commit bool) error

// Tx is one sequence. Nested sequences hand their participants to the parent
// on commit, so an outer rollback still reaches them.
type Tx struct {
	parent *Tx
	ends   []EndFunc
}

// Begin starts a sequence nested in parent, which may be nil.
func Begin(parent *Tx) *Tx {
	return &Tx{parent: parent}
}

// Enlist adds a participant.
func (t *Tx) Enlist(end EndFunc) {
	t.ends = append(t.ends, end)
}

// Len returns the number of participants.
func (t *Tx) Len() int {
	return len(t.ends)
}

// End finishes every participant in reverse enlistment order. A committed
// nested sequence passes its participants to the parent instead.
func (t *Tx) End(commit bool) error {
	ends := t.ends
	t.ends = nil
	if commit && t.parent != nil {
		t.parent.ends = append(t.parent.ends, ends...)
		return nil
	}
	var err error
	for i := len(ends) - 1; i >= 0; i-- {
		err = errors.CombineErrors(err, ends[i](commit))
	}
	return err
}
