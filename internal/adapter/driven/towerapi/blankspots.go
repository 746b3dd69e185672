package towerapi

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// ListBlankspots fetches all blankspot areas.
func (c *Client) ListBlankspots(ctx context.Context) ([]model.BlankspotArea, error) {
	areas := []model.BlankspotArea{}
	if err := c.d.Get(ctx, "/blankspots", nil, &areas); err != nil {
		return nil, err
	}
	return areas, nil
}

// CreateBlankspot submits a new blankspot area.
func (c *Client) CreateBlankspot(ctx context.Context, in model.BlankspotInput) (model.BlankspotArea, error) {
	var area model.BlankspotArea
	if err := c.d.Post(ctx, "/blankspots", in, &area); err != nil {
		return model.BlankspotArea{}, err
	}
	return area, nil
}

// UpdateBlankspot replaces blankspot area id.
func (c *Client) UpdateBlankspot(ctx context.Context, id uint, in model.BlankspotInput) (model.BlankspotArea, error) {
	var area model.BlankspotArea
	if err := c.d.Put(ctx, fmt.Sprintf("/blankspots/%d", id), in, &area); err != nil {
		return model.BlankspotArea{}, err
	}
	return area, nil
}

// DeleteBlankspot deletes blankspot area id.
func (c *Client) DeleteBlankspot(ctx context.Context, id uint) error {
	return c.d.Delete(ctx, fmt.Sprintf("/blankspots/%d", id), nil)
}
