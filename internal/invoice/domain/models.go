// Package domain contains persistence models for milestone invoices.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// InvoiceStatus represents invoice lifecycle states. Transitions are
// unguarded by design: any status may be set from any other.
type InvoiceStatus string

const (
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	default:
		return false
	}
}

// MilestoneStatus tracks the progress of one invoice phase, independently
// of the invoice status. Unguarded, like the other status domains.
type MilestoneStatus string

const (
	MilestoneStatusNotStarted MilestoneStatus = "not_started"
	MilestoneStatusInProgress MilestoneStatus = "in_progress"
	MilestoneStatusCompleted  MilestoneStatus = "completed"
)

func (s MilestoneStatus) Valid() bool {
	switch s {
	case MilestoneStatusNotStarted, MilestoneStatusInProgress, MilestoneStatusCompleted:
		return true
	default:
		return false
	}
}

// BillingProfile is the issuer-side contact and banking block printed on
// the invoice. Purely descriptive; every field defaults to empty except
// BusinessName, which falls back to the business profile placeholder.
type BillingProfile struct {
	BusinessName      string `gorm:"type:text" json:"business_name"`
	OwnerName         string `gorm:"type:text" json:"owner_name"`
	Email             string `gorm:"type:text" json:"email"`
	Phone             string `gorm:"type:text" json:"phone"`
	Address           string `gorm:"type:text" json:"address"`
	BankName          string `gorm:"type:text" json:"bank_name"`
	BankAccountName   string `gorm:"type:text" json:"bank_account_name"`
	BankAccountNumber string `gorm:"type:text" json:"bank_account_number"`
}

// Deposit is the upfront partial payment derived from the invoice total.
// While disabled the amount is zero but the rate is preserved so the
// deposit can be re-enabled without re-entry.
type Deposit struct {
	Enabled     bool       `gorm:"not null;default:false" json:"enabled"`
	RatePercent float64    `gorm:"not null;default:0" json:"rate_percent"`
	Amount      float64    `gorm:"not null;default:0" json:"amount"`
	DueDate     *time.Time `gorm:"" json:"due_date"`
	Notes       string     `gorm:"type:text" json:"notes"`
}

// Invoice is a milestone-grouped, deposit-aware billing document. All
// monetary figures are derived: the milestone rows carry the item data and
// every total is recomputed from them on create and update.
type Invoice struct {
	ID             snowflake.ID `gorm:"primaryKey" json:"id"`
	DocumentNumber string       `gorm:"type:text;not null;uniqueIndex" json:"document_number"`

	ClientName       string `gorm:"type:text;not null" json:"client_name"`
	ClientEmail      string `gorm:"type:text;not null" json:"client_email"`
	ClientEmailLower string `gorm:"type:text;index" json:"client_email_lower"`
	ClientAddress    string `gorm:"type:text" json:"client_address"`
	ClientPhone      string `gorm:"type:text" json:"client_phone"`

	Billing BillingProfile `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`

	Subtotal    float64 `gorm:"not null;default:0" json:"subtotal"`
	TaxRate     float64 `gorm:"not null;default:0" json:"tax_rate"`
	TaxAmount   float64 `gorm:"not null;default:0" json:"tax_amount"`
	TotalAmount float64 `gorm:"not null;default:0" json:"total_amount"`

	Deposit Deposit `gorm:"embedded;embeddedPrefix:deposit_" json:"deposit"`

	Status  InvoiceStatus `gorm:"type:text;not null;default:'pending'" json:"status"`
	DueDate *time.Time    `gorm:"" json:"due_date"`

	Milestones []Milestone       `gorm:"-" json:"milestones"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// Milestone is one named phase of an invoice with its own line items,
// subtotal and progress status. A milestone that normalizes to zero items
// is never persisted.
type Milestone struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	InvoiceID snowflake.ID `gorm:"not null;index" json:"invoice_id"`
	Position  int          `gorm:"not null" json:"position"`

	Title       string          `gorm:"type:text;not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	DueDate     *time.Time      `gorm:"" json:"due_date"`
	Status      MilestoneStatus `gorm:"type:text;not null;default:'not_started'" json:"status"`
	Subtotal    float64         `gorm:"not null;default:0" json:"subtotal"`

	Items []MilestoneItem `gorm:"-" json:"items"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Milestone) TableName() string { return "invoice_milestones" }

// MilestoneItem is one billable row inside a milestone.
type MilestoneItem struct {
	ID          snowflake.ID `gorm:"primaryKey" json:"id"`
	MilestoneID snowflake.ID `gorm:"not null;index" json:"milestone_id"`
	Position    int          `gorm:"not null" json:"position"`

	Description string  `gorm:"type:text;not null" json:"description"`
	Quantity    float64 `gorm:"not null" json:"quantity"`
	UnitPrice   float64 `gorm:"not null" json:"unit_price"`
	Total       float64 `gorm:"not null" json:"total"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (MilestoneItem) TableName() string { return "invoice_milestone_items" }
