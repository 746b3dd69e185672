package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

// ProviderStore caches the provider list and performs provider mutations.
type ProviderStore struct {
	*entityStore[model.Provider]
	api driven.ProviderAPI
}

// NewProviderStore creates a ProviderStore. A nil reconciler selects Refetch.
func NewProviderStore(api driven.ProviderAPI, reconciler Reconciler, logger *slog.Logger) *ProviderStore {
	return &ProviderStore{
		entityStore: newEntityStore("providers", logger, reconciler, api.ListProviders),
		api:         api,
	}
}

// Create submits a new provider.
func (s *ProviderStore) Create(ctx context.Context, in model.ProviderInput, opts ...MutationOption) (model.Provider, error) {
	provider, err := s.api.CreateProvider(ctx, in)
	if err != nil {
		s.fail("create", err)
		return model.Provider{}, err
	}
	return provider, s.upsert(ctx, "create", provider, opts)
}

// Update replaces provider id.
func (s *ProviderStore) Update(ctx context.Context, id uint, in model.ProviderInput, opts ...MutationOption) (model.Provider, error) {
	provider, err := s.api.UpdateProvider(ctx, id, in)
	if err != nil {
		s.fail("update", err)
		return model.Provider{}, err
	}
	return provider, s.upsert(ctx, "update", provider, opts)
}

// Delete removes provider id.
func (s *ProviderStore) Delete(ctx context.Context, id uint, opts ...MutationOption) error {
	if err := s.api.DeleteProvider(ctx, id); err != nil {
		s.fail("delete", err)
		return err
	}
	return s.remove(ctx, "delete", id, opts)
}
