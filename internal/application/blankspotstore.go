package application

import (
	"context"
	"log/slog"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

// BlankspotStore caches blankspot areas and performs their mutations.
type BlankspotStore struct {
	*entityStore[model.BlankspotArea]
	api driven.BlankspotAPI
}

// NewBlankspotStore creates a BlankspotStore. A nil reconciler selects Refetch.
func NewBlankspotStore(api driven.BlankspotAPI, reconciler Reconciler, logger *slog.Logger) *BlankspotStore {
	return &BlankspotStore{
		entityStore: newEntityStore("blankspots", logger, reconciler, api.ListBlankspots),
		api:         api,
	}
}

// Create submits a new blankspot area.
func (s *BlankspotStore) Create(ctx context.Context, in model.BlankspotInput, opts ...MutationOption) (model.BlankspotArea, error) {
	area, err := s.api.CreateBlankspot(ctx, in)
	if err != nil {
		s.fail("create", err)
		return model.BlankspotArea{}, err
	}
	return area, s.upsert(ctx, "create", area, opts)
}

// Update replaces blankspot area id.
func (s *BlankspotStore) Update(ctx context.Context, id uint, in model.BlankspotInput, opts ...MutationOption) (model.BlankspotArea, error) {
	area, err := s.api.UpdateBlankspot(ctx, id, in)
	if err != nil {
		s.fail("update", err)
		return model.BlankspotArea{}, err
	}
	return area, s.upsert(ctx, "update", area, opts)
}

// Delete removes blankspot area id.
func (s *BlankspotStore) Delete(ctx context.Context, id uint, opts ...MutationOption) error {
	if err := s.api.DeleteBlankspot(ctx, id); err != nil {
		s.fail("delete", err)
		return err
	}
	return s.remove(ctx, "delete", id, opts)
}
