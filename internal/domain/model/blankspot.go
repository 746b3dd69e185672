package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// BlankspotArea is a geographic zone with weak or no signal. It is tracked
// independently of towers and providers.
type BlankspotArea struct {
	ID        uint
	Name      string `json:"name"`
	Kelurahan string `json:"kelurahan"`
	// Coordinates is a JSON-encoded polygon: [[lat, lon], [lat, lon], ...].
	Coordinates string `json:"coordinates"`
	Type        string `json:"type"`
	Color       string `json:"color"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// EntityID implements Entity.
func (b BlankspotArea) EntityID() uint { return b.ID }

// LatLon is a single polygon vertex.
type LatLon struct {
	Lat float64
	Lon float64
}

// Polygon decodes Coordinates. An empty string yields an empty polygon.
func (b BlankspotArea) Polygon() ([]LatLon, error) {
	if b.Coordinates == "" {
		return []LatLon{}, nil
	}

	var raw [][]float64
	if err := json.Unmarshal([]byte(b.Coordinates), &raw); err != nil {
		return nil, fmt.Errorf("decode coordinates of blankspot %d: %w", b.ID, err)
	}

	points := make([]LatLon, 0, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, fmt.Errorf("blankspot %d vertex %d: expected [lat, lon], got %d values", b.ID, i, len(pair))
		}
		points = append(points, LatLon{Lat: pair[0], Lon: pair[1]})
	}
	return points, nil
}

// BlankspotInput is the JSON payload for creating or updating a blankspot area.
type BlankspotInput struct {
	Name        string `json:"name"`
	Kelurahan   string `json:"kelurahan"`
	Coordinates string `json:"coordinates"`
	Type        string `json:"type"`
	Color       string `json:"color"`
}

// EncodePolygon renders points in the Coordinates wire format.
func EncodePolygon(points []LatLon) (string, error) {
	raw := make([][]float64, 0, len(points))
	for _, p := range points {
		raw = append(raw, []float64{p.Lat, p.Lon})
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("encode polygon: %w", err)
	}
	return string(data), nil
}
