package domain

import "time"

type AlertType string

const (
	AlertPanic      AlertType = "panic"
	AlertEmergency  AlertType = "emergency"
	AlertPatrolStop AlertType = "patrol_stop"
	AlertSystem     AlertType = "system"
)

// Priority range. 1 is the most urgent.
const (
	HighestPriority = 1
	LowestPriority  = 5
)

func ValidAlertType(t AlertType) bool {
	switch t {
	case AlertPanic, AlertEmergency, AlertPatrolStop, AlertSystem:
		return true
	}
	return false
}

// Alert is a distress or status broadcast within a community. The only
// mutation after creation is the terminal resolved=false -> resolved=true
// transition; priority never changes.
type Alert struct {
	ID          string     `json:"id"`
	SenderID    string     `json:"sender_id"`
	SenderName  string     `json:"sender_name,omitempty"`
	CommunityID string     `json:"community_id"`
	Type        AlertType  `json:"type"`
	Priority    int        `json:"priority"`
	Location    GeoPoint   `json:"location"`
	Message     string     `json:"message,omitempty"`
	Resolved    bool       `json:"resolved"`
	ResolvedBy  string     `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AlertUpdate carries the mutable fields of an alert as delivered by the
// realtime channel. Everything else is preserved on merge.
type AlertUpdate struct {
	ID         string     `json:"id"`
	Resolved   bool       `json:"resolved"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}
