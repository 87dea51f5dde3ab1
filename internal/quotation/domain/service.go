package domain

import (
	"context"
	"time"

	"github.com/jobledger/jobledger/internal/pricing"
	"github.com/jobledger/jobledger/pkg/db/pagination"
)

type CreateQuotationRequest struct {
	ClientName    string              `json:"client_name"`
	ClientEmail   string              `json:"client_email"`
	ClientAddress string              `json:"client_address"`
	ClientPhone   string              `json:"client_phone"`
	Items         []pricing.ItemInput `json:"items"`
	TaxRate       float64             `json:"tax_rate"`
	Notes         string              `json:"notes"`
	ValidUntil    *time.Time          `json:"valid_until"`
	Status        QuotationStatus     `json:"status"`
}

// UpdateQuotationRequest is a full replacement: items and tax rate are
// re-normalized and re-aggregated from scratch, stored totals are never
// trusted or merged, status is replaced wholesale.
type UpdateQuotationRequest struct {
	ClientName    string              `json:"client_name"`
	ClientEmail   string              `json:"client_email"`
	ClientAddress string              `json:"client_address"`
	ClientPhone   string              `json:"client_phone"`
	Items         []pricing.ItemInput `json:"items"`
	TaxRate       float64             `json:"tax_rate"`
	Notes         string              `json:"notes"`
	ValidUntil    *time.Time          `json:"valid_until"`
	Status        QuotationStatus     `json:"status"`
}

type ListQuotationRequest struct {
	pagination.Pagination
	Status *QuotationStatus `form:"status"`
}

type ListQuotationResponse struct {
	pagination.PageInfo
	Quotations []Quotation `json:"quotations"`
}

type Service interface {
	Create(ctx context.Context, req CreateQuotationRequest) (Quotation, error)
	Update(ctx context.Context, id string, req UpdateQuotationRequest) (Quotation, error)
	UpdateStatus(ctx context.Context, id string, status QuotationStatus) (Quotation, error)
	GetByID(ctx context.Context, id string) (Quotation, error)
	List(ctx context.Context, req ListQuotationRequest) (ListQuotationResponse, error)
	Delete(ctx context.Context, id string) error
}
