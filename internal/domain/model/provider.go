package model

import "time"

// Provider is a telecommunication provider that owns zero or more towers.
type Provider struct {
	ID        uint
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Towers    []Tower `json:"towers,omitempty"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntityID implements Entity.
func (p Provider) EntityID() uint { return p.ID }

// ProviderInput is the JSON payload for creating or updating a provider.
type ProviderInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}
