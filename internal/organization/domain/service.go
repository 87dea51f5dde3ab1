package domain

import (
	"context"
	"errors"
)

type UpdateProfileRequest struct {
	BusinessName      string `json:"business_name"`
	OwnerName         string `json:"owner_name"`
	Email             string `json:"email"`
	Phone             string `json:"phone"`
	Address           string `json:"address"`
	BankName          string `json:"bank_name"`
	BankAccountName   string `json:"bank_account_name"`
	BankAccountNumber string `json:"bank_account_number"`
}

type Service interface {
	// Get returns the stored profile, or a default profile when none has
	// been saved yet.
	Get(ctx context.Context) (Profile, error)
	Update(ctx context.Context, req UpdateProfileRequest) (Profile, error)
}

var (
	ErrInvalidBusinessName = errors.New("invalid_business_name")
)
