package domain

import "errors"

var (
	ErrInvalidID             = errors.New("invalid_id")
	ErrNotFound              = errors.New("not_found")
	ErrClientNameRequired    = errors.New("client_name_required")
	ErrClientEmailRequired   = errors.New("client_email_required")
	ErrClientAddressRequired = errors.New("client_address_required")
	ErrNoBillableItems       = errors.New("no_billable_items")
	ErrInvalidStatus         = errors.New("invalid_status")
)
