package domain

import "time"

type PatrolStatus string

const (
	PatrolActive    PatrolStatus = "active"
	PatrolCompleted PatrolStatus = "completed"
	// PatrolInterrupted is reserved for abnormal termination. No code path
	// transitions into it yet; the liveness-check feature that would is a
	// future extension.
	PatrolInterrupted PatrolStatus = "interrupted"
)

// PatrolSession is a bounded interval during which a guard's movements are
// recorded as an ordered route. Route only grows while the session is
// active; at most one active session exists per guard.
type PatrolSession struct {
	ID                string           `json:"id"`
	GuardID           string           `json:"guard_id"`
	GuardName         string           `json:"guard_name,omitempty"`
	CommunityID       string           `json:"community_id"`
	StartTime         time.Time        `json:"start_time"`
	EndTime           *time.Time       `json:"end_time,omitempty"`
	Status            PatrolStatus     `json:"status"`
	Route             []LocationSample `json:"route_data"`
	MissedAwakeChecks int              `json:"missed_awake_checks"`
	TotalDistance     float64          `json:"total_distance"`
}
