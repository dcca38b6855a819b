package domain

// Geofence is a circular boundary watched for entry and exit of a tracked
// member's position.
type Geofence struct {
	Center       GeoPoint `json:"center"`
	RadiusMeters float64  `json:"radius_meters"`
	Active       bool     `json:"active"`
	Name         string   `json:"name,omitempty"`
}

type GeofenceStatus string

const (
	GeofenceInside  GeofenceStatus = "inside"
	GeofenceOutside GeofenceStatus = "outside"
	// GeofenceUnknown is returned while no active geofence is configured.
	GeofenceUnknown GeofenceStatus = "unknown"
)
