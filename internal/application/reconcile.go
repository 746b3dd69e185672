package application

import (
	"context"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// ChangeOp is the kind of local change a mutation produced.
type ChangeOp int

const (
	// ChangeUpsert replaces the entity with the same ID, or appends it.
	ChangeUpsert ChangeOp = iota
	// ChangeRemove drops the entity with the given ID.
	ChangeRemove
)

// Change describes the effect of a successful mutation on a cached list.
// Entity is nil for ChangeRemove.
//
// Merge, when set, builds the patched entry from the cached one for
// mutations whose response does not carry the full entity. It is not called
// when the list holds no entry with the given ID; Entity is appended then.
type Change struct {
	Op     ChangeOp
	ID     uint
	Entity model.Entity
	Merge  func(cached model.Entity) model.Entity
}

// Reconcilable is a cached list that a Reconciler can bring back in line
// with the backend.
type Reconcilable interface {
	// ApplyChange patches the cached list in place and marks it provisional.
	ApplyChange(change Change)
	// Refresh replaces the cached list with the backend's current state.
	Refresh(ctx context.Context) error
}

// Reconciler is the policy a store uses to keep its cached list consistent
// with the backend after a successful mutation.
type Reconciler interface {
	Reconcile(ctx context.Context, target Reconcilable, change Change) error
}

// Refetch reloads the whole list after every mutation. It is the default
// policy: server-side side effects such as cascading ownership changes are
// always observed.
type Refetch struct{}

// Reconcile implements Reconciler.
func (Refetch) Reconcile(ctx context.Context, target Reconcilable, _ Change) error {
	return target.Refresh(ctx)
}

// LocalPatch splices the mutation result into the cached list without a
// network round trip. The list is marked provisional until the next
// successful fetch replaces it.
type LocalPatch struct{}

// Reconcile implements Reconciler.
func (LocalPatch) Reconcile(_ context.Context, target Reconcilable, change Change) error {
	target.ApplyChange(change)
	return nil
}

// MutationOption configures a single store mutation.
type MutationOption func(*mutationOptions)

type mutationOptions struct {
	reconciler Reconciler
}

// WithReconciler selects the reconciliation policy for one call.
func WithReconciler(r Reconciler) MutationOption {
	return func(o *mutationOptions) { o.reconciler = r }
}

func resolveReconciler(def Reconciler, opts []MutationOption) Reconciler {
	o := mutationOptions{reconciler: def}
	for _, opt := range opts {
		opt(&o)
	}
	if o.reconciler == nil {
		return Refetch{}
	}
	return o.reconciler
}
