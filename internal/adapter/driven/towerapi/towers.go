package towerapi

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// cacheBustParam is appended to tower list reads that must not be served
// from any intermediary cache.
const cacheBustParam = "_ts"

type ownershipRequest struct {
	NewProviderID uint `json:"new_provider_id"`
}

type relocateRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// ListTowers fetches all towers. With fresh set, a unique query parameter
// forces every cache between here and the backend to miss, and the response
// is kept out of the local HTTP cache.
func (c *Client) ListTowers(ctx context.Context, fresh bool) ([]model.Tower, error) {
	towers := []model.Tower{}
	var err error
	if fresh {
		query := url.Values{cacheBustParam: {strconv.FormatInt(time.Now().UnixNano(), 10)}}
		err = c.d.GetFresh(ctx, "/towers", query, &towers)
	} else {
		err = c.d.Get(ctx, "/towers", nil, &towers)
	}
	if err != nil {
		return nil, err
	}
	return towers, nil
}

// GetTower fetches a single tower.
func (c *Client) GetTower(ctx context.Context, id uint) (model.Tower, error) {
	var tower model.Tower
	if err := c.d.Get(ctx, towerPath(id), nil, &tower); err != nil {
		return model.Tower{}, err
	}
	return tower, nil
}

// CreateTower submits a new tower. Inputs carrying a photo are sent as
// multipart form data, all others as JSON unless WithFormPayloads is set.
func (c *Client) CreateTower(ctx context.Context, in model.TowerInput) (model.Tower, error) {
	var tower model.Tower
	var err error
	if in.HasAttachment() || c.formPayloads {
		err = c.d.PostMultipart(ctx, "/towers", towerForm(in), &tower)
	} else {
		err = c.d.Post(ctx, "/towers", in, &tower)
	}
	if err != nil {
		return model.Tower{}, err
	}
	return tower, nil
}

// UpdateTower replaces the details of tower id, using the same encoding
// rule as CreateTower.
func (c *Client) UpdateTower(ctx context.Context, id uint, in model.TowerInput) (model.Tower, error) {
	var tower model.Tower
	var err error
	if in.HasAttachment() || c.formPayloads {
		err = c.d.PutMultipart(ctx, towerPath(id), towerForm(in), &tower)
	} else {
		err = c.d.Put(ctx, towerPath(id), in, &tower)
	}
	if err != nil {
		return model.Tower{}, err
	}
	return tower, nil
}

// DeleteTower deletes tower id.
func (c *Client) DeleteTower(ctx context.Context, id uint) error {
	return c.d.Delete(ctx, towerPath(id), nil)
}

// ChangeOwnership transfers tower id to newProviderID.
func (c *Client) ChangeOwnership(ctx context.Context, id, newProviderID uint) (model.Tower, error) {
	var tower model.Tower
	if err := c.d.Put(ctx, towerPath(id)+"/ownership", ownershipRequest{NewProviderID: newProviderID}, &tower); err != nil {
		return model.Tower{}, err
	}
	return tower, nil
}

// RelocateTower moves tower id to the given coordinates.
func (c *Client) RelocateTower(ctx context.Context, id uint, latitude, longitude float64) (model.Tower, error) {
	var tower model.Tower
	if err := c.d.Put(ctx, towerPath(id)+"/relocate", relocateRequest{Latitude: latitude, Longitude: longitude}, &tower); err != nil {
		return model.Tower{}, err
	}
	return tower, nil
}

// DismantleTower marks tower id as dismantled.
func (c *Client) DismantleTower(ctx context.Context, id uint) (model.Tower, error) {
	var tower model.Tower
	if err := c.d.Put(ctx, towerPath(id)+"/dismantle", nil, &tower); err != nil {
		return model.Tower{}, err
	}
	return tower, nil
}

// TowerHistory fetches the event history of tower id, newest first.
func (c *Client) TowerHistory(ctx context.Context, id uint) ([]model.TowerEvent, error) {
	events := []model.TowerEvent{}
	if err := c.d.Get(ctx, towerPath(id)+"/history", nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func towerPath(id uint) string {
	return fmt.Sprintf("/towers/%d", id)
}

// towerForm renders a TowerInput as the form fields the backend parses.
func towerForm(in model.TowerInput) Form {
	fields := url.Values{}
	fields.Set("latitude", formatFloat(in.Latitude))
	fields.Set("longitude", formatFloat(in.Longitude))
	fields.Set("kelurahan", in.Kelurahan)
	fields.Set("kecamatan", in.Kecamatan)
	fields.Set("address", in.Address)
	fields.Set("tipe", in.Tipe)
	if in.Tinggi != 0 {
		fields.Set("tinggi", formatFloat(in.Tinggi))
	}
	for _, id := range in.ProviderIDs {
		fields.Add("provider_ids", strconv.FormatUint(uint64(id), 10))
	}

	form := Form{Fields: fields}
	if in.HasAttachment() {
		form.Files = append(form.Files, FormFile{
			Field:       "photo",
			Filename:    in.Photo.Filename,
			ContentType: in.Photo.ContentType,
			Data:        in.Photo.Data,
		})
	}
	return form
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
