package model

import "time"

// TowerEventType classifies an entry in a tower's history.
type TowerEventType string

const (
	TowerEventCreated         TowerEventType = "Created"
	TowerEventDetailsUpdate   TowerEventType = "DetailsUpdate"
	TowerEventOwnershipChange TowerEventType = "OwnershipChange"
	TowerEventRelocation      TowerEventType = "Relocation"
	TowerEventDismantled      TowerEventType = "Dismantled"
)

// TowerEvent is an append-only history record for a tower. Events are
// fetched on demand and never cached.
type TowerEvent struct {
	ID          uint           `json:"id"`
	TowerID     uint           `json:"tower_id"`
	EventType   TowerEventType `json:"event_type"`
	Timestamp   time.Time      `json:"timestamp"`
	Description string         `json:"description"`
	OldData     string         `json:"old_data"`
	NewData     string         `json:"new_data"`
	UserID      uint           `json:"user_id"`
}
