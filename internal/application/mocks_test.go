package application_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// --- Mock implementations ---

// memKV is an in-memory driven.KeyValueStore.
type memKV struct {
	mu        sync.Mutex
	values    map[string]string
	setErr    error
	deleteErr error
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
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.values, key)
	return nil
}

func (m *memKV) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.values[key]
	return ok
}

func (m *memKV) value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

// mockAuthAPI accepts email "a" with password "right" and issues "tok123".
type mockAuthAPI struct {
	loginErr          error
	token             string
	changePasswordErr error
	changeCalls       atomic.Int32
}

var errInvalidCredentials = &model.APIError{
	Kind:       model.KindAuthentication,
	StatusCode: 401,
	Method:     "POST",
	Path:       "/auth/login",
	Message:    "Invalid email or password",
}

func newMockAuthAPI() *mockAuthAPI {
	return &mockAuthAPI{token: "tok123"}
}

func (m *mockAuthAPI) Login(_ context.Context, creds model.Credentials) (model.LoginResult, error) {
	if m.loginErr != nil {
		return model.LoginResult{}, m.loginErr
	}
	if creds.Email != "a" || creds.Password != "right" {
		return model.LoginResult{}, errInvalidCredentials
	}
	return model.LoginResult{Token: m.token}, nil
}

func (m *mockAuthAPI) ChangePassword(_ context.Context, _, _ string) error {
	m.changeCalls.Add(1)
	return m.changePasswordErr
}

// mockTowerAPI is an in-memory tower backend.
type mockTowerAPI struct {
	mu        sync.Mutex
	towers    []model.Tower
	nextID    uint
	listCalls int
	freshArgs []bool
	err       error
	listErr   error

	// afterListSnapshot runs after ListTowers copied the list, outside the lock.
	afterListSnapshot func(call int)
}

func newMockTowerAPI(towers ...model.Tower) *mockTowerAPI {
	m := &mockTowerAPI{nextID: 1}
	for _, t := range towers {
		if t.Status == "" {
			t.Status = model.TowerStatusActive
		}
		m.towers = append(m.towers, t)
		if t.ID >= m.nextID {
			m.nextID = t.ID + 1
		}
	}
	return m
}

func (m *mockTowerAPI) index(id uint) int {
	return slices.IndexFunc(m.towers, func(t model.Tower) bool { return t.ID == id })
}

var errTowerNotFound = &model.APIError{Kind: model.KindNotFound, StatusCode: 404, Message: "Tower not found"}

func (m *mockTowerAPI) ListTowers(_ context.Context, fresh bool) ([]model.Tower, error) {
	m.mu.Lock()
	m.listCalls++
	call := m.listCalls
	m.freshArgs = append(m.freshArgs, fresh)
	snapshot := slices.Clone(m.towers)
	err := m.listErr
	hook := m.afterListSnapshot
	m.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (m *mockTowerAPI) GetTower(_ context.Context, id uint) (model.Tower, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.index(id)
	if i < 0 {
		return model.Tower{}, errTowerNotFound
	}
	return m.towers[i], nil
}

func (m *mockTowerAPI) CreateTower(_ context.Context, in model.TowerInput) (model.Tower, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Tower{}, m.err
	}
	t := model.Tower{
		ID:        m.nextID,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Kelurahan: in.Kelurahan,
		Kecamatan: in.Kecamatan,
		Address:   in.Address,
		Tinggi:    in.Tinggi,
		Tipe:      in.Tipe,
		Status:    model.TowerStatusActive,
	}
	m.nextID++
	m.towers = append(m.towers, t)
	return t, nil
}

func (m *mockTowerAPI) UpdateTower(_ context.Context, id uint, in model.TowerInput) (model.Tower, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Tower{}, m.err
	}
	i := m.index(id)
	if i < 0 {
		return model.Tower{}, errTowerNotFound
	}
	t := &m.towers[i]
	t.Kelurahan, t.Kecamatan, t.Address, t.Tipe = in.Kelurahan, in.Kecamatan, in.Address, in.Tipe
	return withoutProviders(*t), nil
}

func (m *mockTowerAPI) DeleteTower(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	i := m.index(id)
	if i < 0 {
		return errTowerNotFound
	}
	m.towers = slices.Delete(m.towers, i, i+1)
	return nil
}

func (m *mockTowerAPI) ChangeOwnership(_ context.Context, id, newProviderID uint) (model.Tower, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Tower{}, m.err
	}
	i := m.index(id)
	if i < 0 {
		return model.Tower{}, errTowerNotFound
	}
	stale := m.towers[i]
	m.towers[i].Providers = []model.Provider{{ID: newProviderID, Name: "provider"}}
	return stale, nil
}

func (m *mockTowerAPI) RelocateTower(_ context.Context, id uint, latitude, longitude float64) (model.Tower, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Tower{}, m.err
	}
	i := m.index(id)
	if i < 0 {
		return model.Tower{}, errTowerNotFound
	}
	m.towers[i].Latitude, m.towers[i].Longitude = latitude, longitude
	return withoutProviders(m.towers[i]), nil
}

func (m *mockTowerAPI) DismantleTower(_ context.Context, id uint) (model.Tower, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Tower{}, m.err
	}
	i := m.index(id)
	if i < 0 {
		return model.Tower{}, errTowerNotFound
	}
	m.towers[i].Status = model.TowerStatusDismantled
	return withoutProviders(m.towers[i]), nil
}

// withoutProviders mirrors the backend, which answers update, relocate and
// dismantle with the tower row alone.
func withoutProviders(t model.Tower) model.Tower {
	t.Providers = nil
	return t
}

func (m *mockTowerAPI) TowerHistory(_ context.Context, id uint) ([]model.TowerEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.index(id) < 0 {
		return nil, errTowerNotFound
	}
	return []model.TowerEvent{{ID: 1, TowerID: id, EventType: model.TowerEventCreated}}, nil
}

// mockProviderAPI is an in-memory provider backend.
type mockProviderAPI struct {
	mu        sync.Mutex
	providers []model.Provider
	nextID    uint
	listErr   error
}

func (m *mockProviderAPI) ListProviders(_ context.Context) ([]model.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.providers), nil
}

func (m *mockProviderAPI) CreateProvider(_ context.Context, in model.ProviderInput) (model.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	p := model.Provider{ID: m.nextID, Name: in.Name, Address: in.Address}
	m.providers = append(m.providers, p)
	return p, nil
}

func (m *mockProviderAPI) UpdateProvider(_ context.Context, id uint, in model.ProviderInput) (model.Provider, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.providers {
		if m.providers[i].ID == id {
			m.providers[i].Name, m.providers[i].Address = in.Name, in.Address
			return m.providers[i], nil
		}
	}
	return model.Provider{}, &model.APIError{Kind: model.KindNotFound, StatusCode: 404}
}

func (m *mockProviderAPI) DeleteProvider(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers = slices.DeleteFunc(m.providers, func(p model.Provider) bool { return p.ID == id })
	return nil
}

// mockBlankspotAPI is an in-memory blankspot backend.
type mockBlankspotAPI struct {
	mu      sync.Mutex
	areas   []model.BlankspotArea
	nextID  uint
	listErr error
}

func (m *mockBlankspotAPI) ListBlankspots(_ context.Context) ([]model.BlankspotArea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	return slices.Clone(m.areas), nil
}

func (m *mockBlankspotAPI) CreateBlankspot(_ context.Context, in model.BlankspotInput) (model.BlankspotArea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a := model.BlankspotArea{ID: m.nextID, Name: in.Name, Coordinates: in.Coordinates, Color: in.Color}
	m.areas = append(m.areas, a)
	return a, nil
}

func (m *mockBlankspotAPI) UpdateBlankspot(_ context.Context, id uint, in model.BlankspotInput) (model.BlankspotArea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.areas {
		if m.areas[i].ID == id {
			m.areas[i].Name, m.areas[i].Color = in.Name, in.Color
			return m.areas[i], nil
		}
	}
	return model.BlankspotArea{}, &model.APIError{Kind: model.KindNotFound, StatusCode: 404}
}

func (m *mockBlankspotAPI) DeleteBlankspot(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.areas = slices.DeleteFunc(m.areas, func(a model.BlankspotArea) bool { return a.ID == id })
	return nil
}

// recordingTheme is a driven.ThemeTarget that tracks applied classes.
type recordingTheme struct {
	classes map[string]bool
}

func newRecordingTheme() *recordingTheme {
	return &recordingTheme{classes: map[string]bool{}}
}

func (r *recordingTheme) AddClass(name string)    { r.classes[name] = true }
func (r *recordingTheme) RemoveClass(name string) { delete(r.classes, name) }

var errBoom = errors.New("boom")
