package domain

import "errors"

// Precondition failures. Reported to the caller without any state change.
var (
	ErrCommunityRequired = errors.New("member has no community assignment")
	ErrLocationRequired  = errors.New("current location unknown")
	ErrNoActivePatrol    = errors.New("no active patrol")
	ErrInvalidAlert      = errors.New("invalid alert type or priority")
)
