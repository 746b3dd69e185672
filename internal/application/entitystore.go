package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// entityStore is the part common to the tower, provider and blankspot stores:
// a cached Collection, a fetch function and the reconciliation step that
// runs after every successful mutation.
type entityStore[T model.Entity] struct {
	name       string
	logger     *slog.Logger
	items      *Collection[T]
	fetch      func(ctx context.Context) ([]T, error)
	reconciler Reconciler
}

func newEntityStore[T model.Entity](name string, logger *slog.Logger, reconciler Reconciler, fetch func(ctx context.Context) ([]T, error)) *entityStore[T] {
	if logger == nil {
		logger = slog.Default()
	}
	if reconciler == nil {
		reconciler = Refetch{}
	}
	return &entityStore[T]{
		name:       name,
		logger:     logger,
		items:      NewCollection[T](),
		fetch:      fetch,
		reconciler: reconciler,
	}
}

// FetchAll replaces the cached list with the backend's. A response that was
// overtaken by a newer fetch or local patch is discarded.
func (s *entityStore[T]) FetchAll(ctx context.Context) error {
	gen := s.items.begin()

	items, err := s.fetch(ctx)
	if err != nil {
		s.fail("fetch_all", err)
		return err
	}

	if !s.items.replace(gen, items) {
		s.logger.Debug("discarded stale fetch", "store", s.name, "generation", gen)
		return nil
	}
	s.logger.Debug("fetched", "store", s.name, "count", len(items), "generation", gen)
	return nil
}

// Refresh implements Reconcilable.
func (s *entityStore[T]) Refresh(ctx context.Context) error {
	return s.FetchAll(ctx)
}

// ApplyChange implements Reconcilable.
func (s *entityStore[T]) ApplyChange(change Change) {
	s.items.apply(change)
}

// List returns a snapshot of the cached entities.
func (s *entityStore[T]) List() []T {
	return s.items.List()
}

// Get returns the cached entity with the given ID.
func (s *entityStore[T]) Get(id uint) (T, bool) {
	return s.items.Get(id)
}

// Provisional reports whether the cached list holds unconfirmed local patches.
func (s *entityStore[T]) Provisional() bool {
	return s.items.Provisional()
}

// reconcile runs the selected policy after a successful mutation.
func (s *entityStore[T]) reconcile(ctx context.Context, op string, change Change, opts []MutationOption) error {
	r := resolveReconciler(s.reconciler, opts)
	if err := r.Reconcile(ctx, s, change); err != nil {
		s.logger.Error("reconcile after mutation failed", "store", s.name, "op", op, "error", err)
		return err
	}
	return nil
}

// upsert reconciles a mutation that returned entity.
func (s *entityStore[T]) upsert(ctx context.Context, op string, entity T, opts []MutationOption) error {
	return s.reconcile(ctx, op, Change{Op: ChangeUpsert, ID: entity.EntityID(), Entity: entity}, opts)
}

// patch reconciles a mutation whose response covers only part of entity.
// Under LocalPatch, merge derives the new cached entry from the current one.
func (s *entityStore[T]) patch(ctx context.Context, op string, entity T, merge func(cached T) T, opts []MutationOption) error {
	change := Change{
		Op:     ChangeUpsert,
		ID:     entity.EntityID(),
		Entity: entity,
		Merge: func(cached model.Entity) model.Entity {
			c, ok := cached.(T)
			if !ok {
				return entity
			}
			return merge(c)
		},
	}
	return s.reconcile(ctx, op, change, opts)
}

// remove reconciles a deletion of id.
func (s *entityStore[T]) remove(ctx context.Context, op string, id uint, opts []MutationOption) error {
	return s.reconcile(ctx, op, Change{Op: ChangeRemove, ID: id}, opts)
}

func (s *entityStore[T]) fail(op string, err error) {
	s.logger.Error("store operation failed", "store", s.name, "op", op, "error", err)
}
