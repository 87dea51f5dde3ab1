// Package pricing implements the document computation pipeline: line-item
// normalization, subtotal/tax/total aggregation and deposit derivation.
// Everything in this package is a pure function of its input. Nothing here
// reads previously stored figures, so running the pipeline twice over the
// same input yields identical output.
package pricing

import (
	"strings"
	"time"

	"github.com/jobledger/jobledger/internal/money"
)

// ItemInput is a raw, caller-supplied billable row.
type ItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
}

// LineItem is a normalized billable row. Total is always derived from
// Quantity and UnitPrice, never accepted from the caller.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// MilestoneInput is a raw, caller-supplied invoice phase.
type MilestoneInput struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	DueDate     *time.Time  `json:"due_date"`
	Status      string      `json:"status"`
	Items       []ItemInput `json:"items"`
}

// MilestoneGroup is a normalized invoice phase with its computed subtotal.
type MilestoneGroup struct {
	Title       string
	Description string
	DueDate     *time.Time
	Status      string
	Items       []LineItem
	Subtotal    float64
}

// Totals holds the document-level computed figures.
type Totals struct {
	Subtotal  float64
	TaxRate   float64
	TaxAmount float64
	Total     float64
}

// DepositInput is the caller-supplied deposit configuration.
type DepositInput struct {
	Enabled     bool       `json:"enabled"`
	RatePercent float64    `json:"rate_percent"`
	DueDate     *time.Time `json:"due_date"`
	Notes       string     `json:"notes"`
}

// Deposit is the computed deposit. The rate survives round-trips even while
// the deposit is disabled so it can be re-enabled later.
type Deposit struct {
	Enabled     bool       `json:"enabled"`
	RatePercent float64    `json:"rate_percent"`
	Amount      float64    `json:"amount"`
	DueDate     *time.Time `json:"due_date"`
	Notes       string     `json:"notes"`
}

// NormalizeItems cleans raw rows into LineItems. Rows whose trimmed
// description is empty are placeholders the user never filled in and are
// dropped without error. Input order is preserved; it mirrors the printed
// document. Negative quantities and prices are passed through unclamped.
func NormalizeItems(raw []ItemInput) []LineItem {
	items := make([]LineItem, 0, len(raw))
	for _, in := range raw {
		description := strings.TrimSpace(in.Description)
		if description == "" {
			continue
		}
		quantity := money.Coerce(in.Quantity, 0)
		unitPrice := money.Coerce(in.UnitPrice, 0)
		items = append(items, LineItem{
			Description: description,
			Quantity:    quantity,
			UnitPrice:   unitPrice,
			Total:       money.Mul(quantity, unitPrice),
		})
	}
	return items
}

// Aggregate computes subtotal, tax and total over normalized items. An
// invalid tax rate degrades to 0.
func Aggregate(items []LineItem, taxRate float64) Totals {
	totals := make([]float64, 0, len(items))
	for _, item := range items {
		totals = append(totals, item.Total)
	}
	return aggregate(money.Sum(totals...), taxRate)
}

// NormalizeMilestones cleans raw milestones. A milestone with an empty
// trimmed title, or whose normalized item list is empty, is dropped
// entirely; it is never persisted as an empty phase.
func NormalizeMilestones(raw []MilestoneInput) []MilestoneGroup {
	groups := make([]MilestoneGroup, 0, len(raw))
	for _, in := range raw {
		title := strings.TrimSpace(in.Title)
		if title == "" {
			continue
		}
		items := NormalizeItems(in.Items)
		if len(items) == 0 {
			continue
		}
		totals := make([]float64, 0, len(items))
		for _, item := range items {
			totals = append(totals, item.Total)
		}
		groups = append(groups, MilestoneGroup{
			Title:       title,
			Description: strings.TrimSpace(in.Description),
			DueDate:     in.DueDate,
			Status:      in.Status,
			Items:       items,
			Subtotal:    money.Sum(totals...),
		})
	}
	return groups
}

// AggregateMilestones computes document-level totals from normalized
// milestone subtotals.
func AggregateMilestones(groups []MilestoneGroup, taxRate float64) Totals {
	subtotals := make([]float64, 0, len(groups))
	for _, group := range groups {
		subtotals = append(subtotals, group.Subtotal)
	}
	return aggregate(money.Sum(subtotals...), taxRate)
}

// ComputeDeposit derives the deposit from the already-computed document
// total. Rates outside [0, 100] are clamped, not rejected. A disabled
// deposit always has amount 0; the clamped rate is kept for later
// re-enabling. This function never recomputes the total it is given.
func ComputeDeposit(in DepositInput, totalAmount float64) Deposit {
	rate := money.Clamp(in.RatePercent, 0, 100)
	deposit := Deposit{
		Enabled:     in.Enabled,
		RatePercent: rate,
		DueDate:     in.DueDate,
		Notes:       strings.TrimSpace(in.Notes),
	}
	if in.Enabled {
		deposit.Amount = money.Percent(money.Coerce(totalAmount, 0), rate)
	}
	return deposit
}

func aggregate(subtotal, taxRate float64) Totals {
	rate := money.Coerce(taxRate, 0)
	taxAmount := money.Percent(subtotal, rate)
	return Totals{
		Subtotal:  subtotal,
		TaxRate:   rate,
		TaxAmount: taxAmount,
		Total:     money.Sum(subtotal, taxAmount),
	}
}
