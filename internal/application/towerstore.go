package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

// TowerStore caches the tower list and performs tower mutations.
//
// Mutations return the entity the backend reported. When the mutation
// succeeds but reconciliation fails, the entity is returned together with
// the reconciliation error.
//
// Update, relocate and dismantle responses do not include the tower's
// providers, and the ownership response predates the change. Under
// LocalPatch these mutations are merged field by field into the cached
// tower instead of replacing it.
type TowerStore struct {
	*entityStore[model.Tower]
	api       driven.TowerAPI
	providers func(id uint) (model.Provider, bool)
}

// NewTowerStore creates a TowerStore. A nil reconciler selects Refetch.
func NewTowerStore(api driven.TowerAPI, reconciler Reconciler, logger *slog.Logger) *TowerStore {
	s := &TowerStore{api: api}
	s.entityStore = newEntityStore("towers", logger, reconciler, func(ctx context.Context) ([]model.Tower, error) {
		// Towers change through several side-effecting endpoints, so list
		// reads always bypass the HTTP cache.
		return api.ListTowers(ctx, true)
	})
	return s
}

// SetProviderLookup sets how ChangeOwnership resolves the new provider when
// patching the cached tower locally. ProviderStore.Get fits. Without a
// lookup the patched tower lists the provider by ID only.
func (s *TowerStore) SetProviderLookup(lookup func(id uint) (model.Provider, bool)) {
	s.providers = lookup
}

// Create submits a new tower.
func (s *TowerStore) Create(ctx context.Context, in model.TowerInput, opts ...MutationOption) (model.Tower, error) {
	tower, err := s.api.CreateTower(ctx, in)
	if err != nil {
		s.fail("create", err)
		return model.Tower{}, err
	}
	return tower, s.upsert(ctx, "create", tower, opts)
}

// Update replaces the details of tower id.
func (s *TowerStore) Update(ctx context.Context, id uint, in model.TowerInput, opts ...MutationOption) (model.Tower, error) {
	tower, err := s.api.UpdateTower(ctx, id, in)
	if err != nil {
		s.fail("update", err)
		return model.Tower{}, err
	}
	return tower, s.patch(ctx, "update", tower, func(cached model.Tower) model.Tower {
		merged := tower
		if merged.Providers == nil {
			merged.Providers = cached.Providers
		}
		return merged
	}, opts)
}

// Delete removes tower id.
func (s *TowerStore) Delete(ctx context.Context, id uint, opts ...MutationOption) error {
	if err := s.api.DeleteTower(ctx, id); err != nil {
		s.fail("delete", err)
		return err
	}
	return s.remove(ctx, "delete", id, opts)
}

// ChangeOwnership transfers tower id to newProviderID.
func (s *TowerStore) ChangeOwnership(ctx context.Context, id, newProviderID uint, opts ...MutationOption) (model.Tower, error) {
	tower, err := s.api.ChangeOwnership(ctx, id, newProviderID)
	if err != nil {
		s.fail("change_ownership", err)
		return model.Tower{}, err
	}
	return tower, s.patch(ctx, "change_ownership", tower, func(cached model.Tower) model.Tower {
		owner := model.Provider{ID: newProviderID}
		if s.providers != nil {
			if p, ok := s.providers(newProviderID); ok {
				owner = p
			}
		}
		cached.Providers = []model.Provider{owner}
		cached.UpdatedAt = tower.UpdatedAt
		return cached
	}, opts)
}

// Relocate moves tower id to the given coordinates.
func (s *TowerStore) Relocate(ctx context.Context, id uint, latitude, longitude float64, opts ...MutationOption) (model.Tower, error) {
	tower, err := s.api.RelocateTower(ctx, id, latitude, longitude)
	if err != nil {
		s.fail("relocate", err)
		return model.Tower{}, err
	}
	return tower, s.patch(ctx, "relocate", tower, func(cached model.Tower) model.Tower {
		cached.Latitude, cached.Longitude = tower.Latitude, tower.Longitude
		cached.UpdatedAt = tower.UpdatedAt
		return cached
	}, opts)
}

// Dismantle marks tower id as dismantled.
func (s *TowerStore) Dismantle(ctx context.Context, id uint, opts ...MutationOption) (model.Tower, error) {
	tower, err := s.api.DismantleTower(ctx, id)
	if err != nil {
		s.fail("dismantle", err)
		return model.Tower{}, err
	}
	return tower, s.patch(ctx, "dismantle", tower, func(cached model.Tower) model.Tower {
		cached.Status = tower.Status
		cached.UpdatedAt = tower.UpdatedAt
		return cached
	}, opts)
}

// Fetch reads tower id from the backend without touching the cached list.
func (s *TowerStore) Fetch(ctx context.Context, id uint) (model.Tower, error) {
	tower, err := s.api.GetTower(ctx, id)
	if err != nil {
		s.fail("fetch", err)
		return model.Tower{}, err
	}
	return tower, nil
}

// FetchHistory returns the events of tower id. History is never cached.
func (s *TowerStore) FetchHistory(ctx context.Context, id uint) ([]model.TowerEvent, error) {
	events, err := s.api.TowerHistory(ctx, id)
	if err != nil {
		s.fail("fetch_history", err)
		return nil, err
	}
	return events, nil
}
