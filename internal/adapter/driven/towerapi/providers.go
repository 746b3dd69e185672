package towerapi

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// ListProviders fetches all providers.
func (c *Client) ListProviders(ctx context.Context) ([]model.Provider, error) {
	providers := []model.Provider{}
	if err := c.d.Get(ctx, "/providers", nil, &providers); err != nil {
		return nil, err
	}
	return providers, nil
}

// CreateProvider submits a new provider.
func (c *Client) CreateProvider(ctx context.Context, in model.ProviderInput) (model.Provider, error) {
	var provider model.Provider
	if err := c.d.Post(ctx, "/providers", in, &provider); err != nil {
		return model.Provider{}, err
	}
	return provider, nil
}

// UpdateProvider replaces provider id.
func (c *Client) UpdateProvider(ctx context.Context, id uint, in model.ProviderInput) (model.Provider, error) {
	var provider model.Provider
	if err := c.d.Put(ctx, fmt.Sprintf("/providers/%d", id), in, &provider); err != nil {
		return model.Provider{}, err
	}
	return provider, nil
}

// DeleteProvider deletes provider id.
func (c *Client) DeleteProvider(ctx context.Context, id uint) error {
	return c.d.Delete(ctx, fmt.Sprintf("/providers/%d", id), nil)
}
