package domain

import "time"

// MaxHistorySamples bounds the per-member location history. Oldest samples
// are dropped first once the bound is reached.
const MaxHistorySamples = 100

type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// LocationSample is a single position fix, immutable once produced.
type LocationSample struct {
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	Accuracy  float64   `json:"accuracy,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (s LocationSample) Point() GeoPoint {
	return GeoPoint{Lat: s.Lat, Lon: s.Lon}
}

// Member identifies the authenticated caller. Authentication itself is an
// external collaborator; the engine only consumes the resolved identity.
type Member struct {
	ID          string `json:"member_id"`
	DisplayName string `json:"display_name,omitempty"`
	CommunityID string `json:"community_id"`
}
