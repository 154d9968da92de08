package content

import (
	"context"
)

// Resource performs create/update/delete for one record kind with a uniform
// reconciliation policy: merge the row the server returns, and refetch the
// whole list only when the server did not return one.
type Resource[T Record] struct {
	ctl  *Controller
	kind Kind
	coll *Collection[T]
	noun string
}

func newResource[T Record](ctl *Controller, kind Kind, coll *Collection[T], noun string) *Resource[T] {
	return &Resource[T]{ctl: ctl, kind: kind, coll: coll, noun: noun}
}

func (r *Resource[T]) Kind() Kind { return r.kind }

// Items returns the local copy.
func (r *Resource[T]) Items() []T { return r.coll.Items() }

// Create submits in. The server assigns the id; the local list only ever
// holds what the server returned.
func (r *Resource[T]) Create(ctx context.Context, in T) error {
	r.ctl.transition(r.kind, Submitting)

	var row T
	got, err := r.ctl.api.Create(ctx, string(r.kind), in, &row)
	if err == nil {
		if got && row.RecordID() != "" {
			err = r.ctl.apply(func() { r.coll.Append(row) })
		} else {
			err = r.refetch(ctx)
		}
	}
	return r.ctl.finish(r.kind, err, r.noun+" added.")
}

// Update merges patch into the locally held record and submits the full
// result. The returned row is spliced in place; other records keep their
// position.
func (r *Resource[T]) Update(ctx context.Context, id string, patch func(*T)) error {
	current, ok := r.coll.Get(id)
	if !ok {
		return ErrUnknownRecord
	}
	next := current
	if patch != nil {
		patch(&next)
	}

	r.ctl.transition(r.kind, Submitting)

	var row T
	got, err := r.ctl.api.Update(ctx, string(r.kind), id, next, &row)
	if err == nil {
		if got && row.RecordID() == id {
			err = r.ctl.apply(func() { r.coll.Splice(row) })
		} else {
			err = r.refetch(ctx)
		}
	}
	return r.ctl.finish(r.kind, err, r.noun+" updated.")
}

// Delete removes id on the server, then filters it out locally. Deleting
// the signed-in user is refused before any request is made.
func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	if r.kind == KindUsers {
		if me, ok := r.ctl.session.User(); ok && me.ID == id {
			r.ctl.notices.Show("You cannot delete your own account.")
			return ErrSelfDelete
		}
	}

	r.ctl.transition(r.kind, Submitting)
	err := r.ctl.api.Delete(ctx, string(r.kind), id)
	if err == nil {
		err = r.ctl.apply(func() { r.coll.Remove(id) })
	}
	return r.ctl.finish(r.kind, err, r.noun+" deleted.")
}

func (r *Resource[T]) refetch(ctx context.Context) error {
	var list []T
	if err := r.ctl.api.List(ctx, string(r.kind), &list); err != nil {
		return err
	}
	return r.ctl.apply(func() { r.coll.Replace(list) })
}
