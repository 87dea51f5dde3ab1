package domain

import (
	"context"
	"time"

	"github.com/jobledger/jobledger/internal/pricing"
	"github.com/jobledger/jobledger/pkg/db/pagination"
)

type CreateInvoiceRequest struct {
	ClientName    string                   `json:"client_name"`
	ClientEmail   string                   `json:"client_email"`
	ClientAddress string                   `json:"client_address"`
	ClientPhone   string                   `json:"client_phone"`
	Billing       *BillingProfile          `json:"billing"`
	Milestones    []pricing.MilestoneInput `json:"milestones"`
	TaxRate       float64                  `json:"tax_rate"`
	Deposit       pricing.DepositInput     `json:"deposit"`
	DueDate       *time.Time               `json:"due_date"`
	Status        InvoiceStatus            `json:"status"`
}

// UpdateInvoiceRequest recomputes an invoice from scratch. Totals are only
// ever derived from milestones supplied in the same call: a tax-rate or
// deposit change without resupplied milestones is rejected, never guessed
// from stored figures. With no milestones and no tax/deposit change the
// update touches descriptive fields only and leaves all totals as they are.
type UpdateInvoiceRequest struct {
	ClientName    string                   `json:"client_name"`
	ClientEmail   string                   `json:"client_email"`
	ClientAddress string                   `json:"client_address"`
	ClientPhone   string                   `json:"client_phone"`
	Billing       *BillingProfile          `json:"billing"`
	Milestones    []pricing.MilestoneInput `json:"milestones"`
	TaxRate       *float64                 `json:"tax_rate"`
	Deposit       *pricing.DepositInput    `json:"deposit"`
	DueDate       *time.Time               `json:"due_date"`
	Status        InvoiceStatus            `json:"status"`
}

type ListInvoiceRequest struct {
	pagination.Pagination
	Status *InvoiceStatus `form:"status"`
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []Invoice `json:"invoices"`
}

type Service interface {
	Create(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	Update(ctx context.Context, id string, req UpdateInvoiceRequest) (Invoice, error)
	UpdateStatus(ctx context.Context, id string, status InvoiceStatus) (Invoice, error)
	UpdateMilestoneStatus(ctx context.Context, id, milestoneID string, status MilestoneStatus) (Invoice, error)
	GetByID(ctx context.Context, id string) (Invoice, error)
	List(ctx context.Context, req ListInvoiceRequest) (ListInvoiceResponse, error)
	Delete(ctx context.Context, id string) error
}
