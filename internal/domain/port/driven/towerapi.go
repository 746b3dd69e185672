package driven

import (
	"context"

	"github.com/ericfisherdev/towerpanel/internal/domain/model"
)

// AuthAPI defines the driven port for the backend authentication endpoints.
type AuthAPI interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, creds model.Credentials) (model.LoginResult, error)

	// ChangePassword changes the password of the authenticated user.
	ChangePassword(ctx context.Context, currentPassword, newPassword string) error
}

// TowerAPI defines the driven port for tower endpoints. Every mutating
// operation returns the mutated tower as reported by the backend.
type TowerAPI interface {
	// ListTowers fetches all towers. When fresh is true any intermediary
	// HTTP cache must be bypassed.
	ListTowers(ctx context.Context, fresh bool) ([]model.Tower, error)
	GetTower(ctx context.Context, id uint) (model.Tower, error)
	CreateTower(ctx context.Context, in model.TowerInput) (model.Tower, error)
	UpdateTower(ctx context.Context, id uint, in model.TowerInput) (model.Tower, error)
	DeleteTower(ctx context.Context, id uint) error
	ChangeOwnership(ctx context.Context, id, newProviderID uint) (model.Tower, error)
	RelocateTower(ctx context.Context, id uint, latitude, longitude float64) (model.Tower, error)
	DismantleTower(ctx context.Context, id uint) (model.Tower, error)
	TowerHistory(ctx context.Context, id uint) ([]model.TowerEvent, error)
}

// ProviderAPI defines the driven port for provider endpoints.
type ProviderAPI interface {
	ListProviders(ctx context.Context) ([]model.Provider, error)
	CreateProvider(ctx context.Context, in model.ProviderInput) (model.Provider, error)
	UpdateProvider(ctx context.Context, id uint, in model.ProviderInput) (model.Provider, error)
	DeleteProvider(ctx context.Context, id uint) error
}

// BlankspotAPI defines the driven port for blankspot area endpoints.
type BlankspotAPI interface {
	ListBlankspots(ctx context.Context) ([]model.BlankspotArea, error)
	CreateBlankspot(ctx context.Context, in model.BlankspotInput) (model.BlankspotArea, error)
	UpdateBlankspot(ctx context.Context, id uint, in model.BlankspotInput) (model.BlankspotArea, error)
	DeleteBlankspot(ctx context.Context, id uint) error
}
