package cli_test

import (
	"context"
	"slices"
	"sync"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// memKV is an in-memory driven.KeyValueStore shared across Run calls, so
// state persists between commands the way the sqlite store does.
type memKV struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemKV() *memKV {
	return &memKV{values: map[string]string{}}
}

func (m *memKV) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memKV) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// fakeBackend implements every backend port in memory. It accepts email
// "admin@example.com" with password "Secret1".
type fakeBackend struct {
	mu         sync.Mutex
	nextID     uint
	towers     []model.Tower
	providers  []model.Provider
	blankspots []model.BlankspotArea
	events     map[uint][]model.TowerEvent
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{nextID: 100, events: map[uint][]model.TowerEvent{}}
}

func notFound(path, msg string) error {
	return &model.APIError{Kind: model.KindNotFound, StatusCode: 404, Path: path, Message: msg}
}

func (b *fakeBackend) Login(_ context.Context, creds model.Credentials) (model.LoginResult, error) {
	if creds.Email != "admin@example.com" || creds.Password != "Secret1" {
		return model.LoginResult{}, &model.APIError{
			Kind: model.KindAuthentication, StatusCode: 401, Path: "/auth/login", Message: "Invalid email or password",
		}
	}
	return model.LoginResult{Token: "tok-admin"}, nil
}

func (b *fakeBackend) ChangePassword(context.Context, string, string) error { return nil }

func (b *fakeBackend) ListTowers(context.Context, bool) ([]model.Tower, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.towers), nil
}

func (b *fakeBackend) towerIndex(id uint) int {
	return slices.IndexFunc(b.towers, func(t model.Tower) bool { return t.ID == id })
}

func (b *fakeBackend) GetTower(_ context.Context, id uint) (model.Tower, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.towerIndex(id)
	if i < 0 {
		return model.Tower{}, notFound("/towers", "Tower not found")
	}
	return b.towers[i], nil
}

func (b *fakeBackend) CreateTower(_ context.Context, in model.TowerInput) (model.Tower, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	t := model.Tower{
		ID: b.nextID, Latitude: in.Latitude, Longitude: in.Longitude, Kelurahan: in.Kelurahan,
		Kecamatan: in.Kecamatan, Address: in.Address, Tinggi: in.Tinggi, Tipe: in.Tipe,
		Status: model.TowerStatusActive,
	}
	if in.HasAttachment() {
		t.PhotoURL = "/uploads/" + in.Photo.Filename
	}
	b.towers = append(b.towers, t)
	return t, nil
}

func (b *fakeBackend) UpdateTower(_ context.Context, id uint, in model.TowerInput) (model.Tower, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.towerIndex(id)
	if i < 0 {
		return model.Tower{}, notFound("/towers", "Tower not found")
	}
	t := &b.towers[i]
	t.Latitude, t.Longitude = in.Latitude, in.Longitude
	t.Kelurahan, t.Kecamatan, t.Address = in.Kelurahan, in.Kecamatan, in.Address
	t.Tinggi, t.Tipe = in.Tinggi, in.Tipe
	return rowOnly(*t), nil
}

func (b *fakeBackend) DeleteTower(_ context.Context, id uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.towerIndex(id)
	if i < 0 {
		return notFound("/towers", "Tower not found")
	}
	b.towers = slices.Delete(b.towers, i, i+1)
	return nil
}

func (b *fakeBackend) ChangeOwnership(_ context.Context, id, providerID uint) (model.Tower, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.towerIndex(id)
	if i < 0 {
		return model.Tower{}, notFound("/towers", "Tower not found")
	}
	pi := slices.IndexFunc(b.providers, func(p model.Provider) bool { return p.ID == providerID })
	if pi < 0 {
		return model.Tower{}, notFound("/towers", "New provider not found")
	}
	stale := b.towers[i]
	b.towers[i].Providers = []model.Provider{b.providers[pi]}
	return stale, nil
}

func (b *fakeBackend) RelocateTower(_ context.Context, id uint, lat, lon float64) (model.Tower, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.towerIndex(id)
	if i < 0 {
		return model.Tower{}, notFound("/towers", "Tower not found")
	}
	b.towers[i].Latitude, b.towers[i].Longitude = lat, lon
	return rowOnly(b.towers[i]), nil
}

func (b *fakeBackend) DismantleTower(_ context.Context, id uint) (model.Tower, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.towerIndex(id)
	if i < 0 {
		return model.Tower{}, notFound("/towers", "Tower not found")
	}
	b.towers[i].Status = model.TowerStatusDismantled
	return rowOnly(b.towers[i]), nil
}

// rowOnly drops the provider association, which the backend does not load
// for update, relocate and dismantle responses.
func rowOnly(t model.Tower) model.Tower {
	t.Providers = nil
	return t
}

func (b *fakeBackend) TowerHistory(_ context.Context, id uint) ([]model.TowerEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.events[id]), nil
}

func (b *fakeBackend) ListProviders(context.Context) ([]model.Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.providers), nil
}

func (b *fakeBackend) CreateProvider(_ context.Context, in model.ProviderInput) (model.Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	p := model.Provider{ID: b.nextID, Name: in.Name, Address: in.Address}
	b.providers = append(b.providers, p)
	return p, nil
}

func (b *fakeBackend) UpdateProvider(_ context.Context, id uint, in model.ProviderInput) (model.Provider, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.providers, func(p model.Provider) bool { return p.ID == id })
	if i < 0 {
		return model.Provider{}, notFound("/providers", "Provider not found")
	}
	b.providers[i].Name, b.providers[i].Address = in.Name, in.Address
	return b.providers[i], nil
}

func (b *fakeBackend) DeleteProvider(_ context.Context, id uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.providers, func(p model.Provider) bool { return p.ID == id })
	if i < 0 {
		return notFound("/providers", "Provider not found")
	}
	b.providers = slices.Delete(b.providers, i, i+1)
	return nil
}

func (b *fakeBackend) ListBlankspots(context.Context) ([]model.BlankspotArea, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.blankspots), nil
}

func (b *fakeBackend) CreateBlankspot(_ context.Context, in model.BlankspotInput) (model.BlankspotArea, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	a := model.BlankspotArea{
		ID: b.nextID, Name: in.Name, Kelurahan: in.Kelurahan, Coordinates: in.Coordinates, Type: in.Type, Color: in.Color,
	}
	b.blankspots = append(b.blankspots, a)
	return a, nil
}

func (b *fakeBackend) UpdateBlankspot(_ context.Context, id uint, in model.BlankspotInput) (model.BlankspotArea, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.blankspots, func(a model.BlankspotArea) bool { return a.ID == id })
	if i < 0 {
		return model.BlankspotArea{}, notFound("/blankspots", "Blankspot area not found")
	}
	a := &b.blankspots[i]
	a.Name, a.Kelurahan, a.Coordinates, a.Type, a.Color = in.Name, in.Kelurahan, in.Coordinates, in.Type, in.Color
	return *a, nil
}

func (b *fakeBackend) DeleteBlankspot(_ context.Context, id uint) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := slices.IndexFunc(b.blankspots, func(a model.BlankspotArea) bool { return a.ID == id })
	if i < 0 {
		return notFound("/blankspots", "Blankspot area not found")
	}
	b.blankspots = slices.Delete(b.blankspots, i, i+1)
	return nil
}
