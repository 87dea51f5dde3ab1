package domain

import "errors"

var (
	ErrInvalidID              = errors.New("invalid_id")
	ErrNotFound               = errors.New("not_found")
	ErrMilestoneNotFound      = errors.New("milestone_not_found")
	ErrClientNameRequired     = errors.New("client_name_required")
	ErrClientEmailRequired    = errors.New("client_email_required")
	ErrNoBillableMilestones   = errors.New("no_billable_milestones")
	ErrMilestonesRequired     = errors.New("milestones_required")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrInvalidMilestoneStatus = errors.New("invalid_milestone_status")
)
