// Package domain contains persistence models for quotations.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// QuotationStatus represents quotation workflow states. Transitions are
// deliberately unguarded: the status is descriptive metadata for the
// business workflow, not an enforced state machine.
type QuotationStatus string

const (
	QuotationStatusDraft    QuotationStatus = "draft"
	QuotationStatusSent     QuotationStatus = "sent"
	QuotationStatusAccepted QuotationStatus = "accepted"
	QuotationStatusRejected QuotationStatus = "rejected"
)

func (s QuotationStatus) Valid() bool {
	switch s {
	case QuotationStatusDraft, QuotationStatusSent, QuotationStatusAccepted, QuotationStatusRejected:
		return true
	default:
		return false
	}
}

// Quotation is a priced, tax-computed offer document. Subtotal, TaxAmount
// and Total are derived fields; they are recomputed from the item rows on
// every create and update and never accepted from the caller.
type Quotation struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	DocumentNumber string       `gorm:"type:text;not null;uniqueIndex" json:"document_number"`

	CompanyName      string `gorm:"type:text" json:"company_name"`
	ClientName       string `gorm:"type:text;not null" json:"client_name"`
	ClientEmail      string `gorm:"type:text;not null" json:"client_email"`
	ClientEmailLower string `gorm:"type:text;index" json:"client_email_lower"`
	ClientAddress    string `gorm:"type:text" json:"client_address"`
	ClientPhone      string `gorm:"type:text" json:"client_phone"`

	Subtotal  float64 `gorm:"not null;default:0" json:"subtotal"`
	TaxRate   float64 `gorm:"not null;default:0" json:"tax_rate"`
	TaxAmount float64 `gorm:"not null;default:0" json:"tax_amount"`
	Total     float64 `gorm:"not null;default:0" json:"total"`

	Notes      string          `gorm:"type:text" json:"notes"`
	ValidUntil *time.Time      `gorm:"" json:"valid_until"`
	Status     QuotationStatus `gorm:"type:text;not null;default:'draft'" json:"status"`

	Items    []QuotationItem   `gorm:"-" json:"items"`
	Metadata datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Quotation) TableName() string { return "quotations" }

// QuotationItem is one billable row. Position preserves the caller's input
// order; it mirrors the printed document.
type QuotationItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	QuotationID snowflake.ID `gorm:"not null;index" json:"quotation_id"`
	Position    int          `gorm:"not null" json:"position"`

	Description string  `gorm:"type:text;not null" json:"description"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	Total       float64 `gorm:"not null" json:"total"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (QuotationItem) TableName() string { return "quotation_items" }
