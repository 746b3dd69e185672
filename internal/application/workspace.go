package application

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Workspace groups the data stores that share one authenticated session.
type Workspace struct {
	Towers     *TowerStore
	Providers  *ProviderStore
	Blankspots *BlankspotStore
}

// Refresh fetches all three lists concurrently. Each store stays
// individually consistent; the first error is returned after every fetch
// has finished.
func (w *Workspace) Refresh(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := w.Towers.FetchAll(gctx); err != nil {
			return fmt.Errorf("refreshing towers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := w.Providers.FetchAll(gctx); err != nil {
			return fmt.Errorf("refreshing providers: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := w.Blankspots.FetchAll(gctx); err != nil {
			return fmt.Errorf("refreshing blankspots: %w", err)
		}
		return nil
	})

	return g.Wait()
}
