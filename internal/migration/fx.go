// Package migration registers the gorm schema for every persisted model.
package migration

import (
	invoicedomain "github.com/jobledger/jobledger/internal/invoice/domain"
	organizationdomain "github.com/jobledger/jobledger/internal/organization/domain"
	quotationdomain "github.com/jobledger/jobledger/internal/quotation/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

func Run(db *gorm.DB) error {
	return db.AutoMigrate(
		&organizationdomain.Profile{},
		&quotationdomain.Quotation{},
		&quotationdomain.QuotationItem{},
		&invoicedomain.Invoice{},
		&invoicedomain.Milestone{},
		&invoicedomain.MilestoneItem{},
	)
}

var Module = fx.Module("migration",
	fx.Invoke(Run),
)
