package model

import "time"

// TowerStatus is the lifecycle state of a tower.
type TowerStatus string

const (
	TowerStatusActive     TowerStatus = "active"
	TowerStatusDismantled TowerStatus = "dismantled"
)

// Tower is a telecommunication tower as returned by the backend. ID, CreatedAt
// and UpdatedAt carry no JSON tags because the backend serializes them with
// their Go field names.
type Tower struct {
	ID        uint
	PhotoURL  string      `json:"photo_url"`
	Latitude  float64     `json:"latitude"`
	Longitude float64     `json:"longitude"`
	Kelurahan string      `json:"kelurahan"`
	Kecamatan string      `json:"kecamatan"`
	Address   string      `json:"address"`
	Tinggi    float64     `json:"tinggi"`
	Tipe      string      `json:"tipe"`
	Status    TowerStatus `json:"status"`
	Providers []Provider  `json:"providers,omitempty"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntityID implements Entity.
func (t Tower) EntityID() uint { return t.ID }

// IsDismantled reports whether the tower has been taken out of service.
func (t Tower) IsDismantled() bool {
	return t.Status == TowerStatusDismantled
}

// ProviderNames returns the names of the providers that own the tower.
func (t Tower) ProviderNames() []string {
	names := make([]string, 0, len(t.Providers))
	for _, p := range t.Providers {
		names = append(names, p.Name)
	}
	return names
}

// Attachment is a binary file submitted alongside an entity payload.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// TowerInput is the payload for creating or updating a tower. When Photo is
// set the payload is sent as multipart form data, otherwise as JSON.
type TowerInput struct {
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
	Kelurahan   string      `json:"kelurahan"`
	Kecamatan   string      `json:"kecamatan"`
	Address     string      `json:"address"`
	Tinggi      float64     `json:"tinggi"`
	Tipe        string      `json:"tipe"`
	ProviderIDs []uint      `json:"provider_ids,omitempty"`
	Photo       *Attachment `json:"-"`
}

// HasAttachment reports whether the input carries binary imagery.
func (in TowerInput) HasAttachment() bool {
	return in.Photo != nil && len(in.Photo.Data) > 0
}
