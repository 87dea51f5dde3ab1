package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jobledger/jobledger/internal/clock"
	"github.com/jobledger/jobledger/internal/docnumber"
	invoicedomain "github.com/jobledger/jobledger/internal/invoice/domain"
	organizationdomain "github.com/jobledger/jobledger/internal/organization/domain"
	"github.com/jobledger/jobledger/internal/pricing"
	"github.com/jobledger/jobledger/pkg/db/option"
	"github.com/jobledger/jobledger/pkg/db/pagination"
	"github.com/jobledger/jobledger/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Numbers docnumber.Generator
	OrgSvc  organizationdomain.Service
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clk     clock.Clock
	numbers docnumber.Generator
	orgSvc  organizationdomain.Service

	invoicerepo   repository.Repository[invoicedomain.Invoice]
	milestonerepo repository.Repository[invoicedomain.Milestone]
	itemrepo      repository.Repository[invoicedomain.MilestoneItem]
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("invoice.service"),
		genID:   p.GenID,
		clk:     p.Clock,
		numbers: p.Numbers,
		orgSvc:  p.OrgSvc,

		invoicerepo:   repository.ProvideStore[invoicedomain.Invoice](p.DB),
		milestonerepo: repository.ProvideStore[invoicedomain.Milestone](p.DB),
		itemrepo:      repository.ProvideStore[invoicedomain.MilestoneItem](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.Invoice, error) {
	clientName := strings.TrimSpace(req.ClientName)
	clientEmail := strings.TrimSpace(req.ClientEmail)
	if clientName == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrClientNameRequired
	}
	if clientEmail == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrClientEmailRequired
	}

	status := req.Status
	if status == "" {
		status = invoicedomain.InvoiceStatusPending
	}
	if !status.Valid() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	groups := pricing.NormalizeMilestones(req.Milestones)
	if len(groups) == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrNoBillableMilestones
	}
	milestoneStatuses, err := resolveMilestoneStatuses(groups)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	totals := pricing.AggregateMilestones(groups, req.TaxRate)
	deposit := pricing.ComputeDeposit(req.Deposit, totals.Total)

	billing, err := s.resolveBilling(ctx, req.Billing)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	// All validation is done; only now is a document number consumed.
	now := s.clk.Now()
	invoice := invoicedomain.Invoice{
		ID:               s.genID.Generate(),
		DocumentNumber:   s.numbers.Next(docnumber.PrefixInvoice),
		ClientName:       clientName,
		ClientEmail:      clientEmail,
		ClientEmailLower: strings.ToLower(clientEmail),
		ClientAddress:    strings.TrimSpace(req.ClientAddress),
		ClientPhone:      strings.TrimSpace(req.ClientPhone),
		Billing:          billing,
		Subtotal:         totals.Subtotal,
		TaxRate:          totals.TaxRate,
		TaxAmount:        totals.TaxAmount,
		TotalAmount:      totals.Total,
		Deposit:          storedDeposit(deposit),
		Status:           status,
		DueDate:          req.DueDate,
		Metadata:         datatypes.JSONMap{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	milestones, items := s.milestoneRows(invoice.ID, groups, milestoneStatuses, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.invoicerepo.WithTrx(tx).Create(ctx, &invoice); err != nil {
			return err
		}
		if err := s.milestonerepo.WithTrx(tx).BatchCreate(ctx, milestones); err != nil {
			return err
		}
		return s.itemrepo.WithTrx(tx).BatchCreate(ctx, items)
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice.Milestones = composeMilestones(milestones, items)
	s.log.Info("invoice created",
		zap.String("invoice_id", invoice.ID.String()),
		zap.String("document_number", invoice.DocumentNumber),
		zap.Float64("total_amount", invoice.TotalAmount),
		zap.Float64("deposit_amount", invoice.Deposit.Amount),
	)
	return invoice, nil
}

func (s *Service) Update(ctx context.Context, id string, req invoicedomain.UpdateInvoiceRequest) (invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}

	existing, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if existing == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}

	clientName := strings.TrimSpace(req.ClientName)
	clientEmail := strings.TrimSpace(req.ClientEmail)
	if clientName == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrClientNameRequired
	}
	if clientEmail == "" {
		return invoicedomain.Invoice{}, invoicedomain.ErrClientEmailRequired
	}

	status := req.Status
	if status == "" {
		status = existing.Status
	}
	if !status.Valid() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	// Totals can only be re-derived from milestones supplied in this call.
	// A tax or deposit change without them would force a guess from stored
	// figures, so it is rejected instead.
	if len(req.Milestones) == 0 {
		if req.TaxRate != nil || req.Deposit != nil {
			return invoicedomain.Invoice{}, invoicedomain.ErrMilestonesRequired
		}
		return s.updateDescriptiveFields(ctx, *existing, req, clientName, clientEmail, status)
	}

	groups := pricing.NormalizeMilestones(req.Milestones)
	if len(groups) == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrNoBillableMilestones
	}
	milestoneStatuses, err := resolveMilestoneStatuses(groups)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	taxRate := existing.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}
	depositInput := depositInputFromStored(existing.Deposit)
	if req.Deposit != nil {
		depositInput = *req.Deposit
	}

	// Recomputed entirely from the supplied milestone set; every stored
	// total on the existing row is ignored.
	totals := pricing.AggregateMilestones(groups, taxRate)
	deposit := pricing.ComputeDeposit(depositInput, totals.Total)

	billing := existing.Billing
	if req.Billing != nil {
		resolved, err := s.resolveBilling(ctx, req.Billing)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		billing = resolved
	}

	now := s.clk.Now()
	invoice := invoicedomain.Invoice{
		ID:               existing.ID,
		DocumentNumber:   existing.DocumentNumber,
		ClientName:       clientName,
		ClientEmail:      clientEmail,
		ClientEmailLower: strings.ToLower(clientEmail),
		ClientAddress:    strings.TrimSpace(req.ClientAddress),
		ClientPhone:      strings.TrimSpace(req.ClientPhone),
		Billing:          billing,
		Subtotal:         totals.Subtotal,
		TaxRate:          totals.TaxRate,
		TaxAmount:        totals.TaxAmount,
		TotalAmount:      totals.Total,
		Deposit:          storedDeposit(deposit),
		Status:           status,
		DueDate:          req.DueDate,
		Metadata:         existing.Metadata,
		CreatedAt:        existing.CreatedAt,
		UpdatedAt:        now,
	}
	milestones, items := s.milestoneRows(invoice.ID, groups, milestoneStatuses, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Save(&invoice).Error; err != nil {
			return err
		}
		if err := s.deleteMilestoneRows(ctx, tx, invoice.ID); err != nil {
			return err
		}
		if err := s.milestonerepo.WithTrx(tx).BatchCreate(ctx, milestones); err != nil {
			return err
		}
		return s.itemrepo.WithTrx(tx).BatchCreate(ctx, items)
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	invoice.Milestones = composeMilestones(milestones, items)
	return invoice, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status invoicedomain.InvoiceStatus) (invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}
	if !status.Valid() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidStatus
	}

	existing, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if existing == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}

	now := s.clk.Now()
	if err := s.db.WithContext(ctx).
		Model(&invoicedomain.Invoice{}).
		Where("id = ?", invoiceID).
		Updates(map[string]any{"status": status, "updated_at": now}).Error; err != nil {
		return invoicedomain.Invoice{}, err
	}

	existing.Status = status
	existing.UpdatedAt = now
	return s.attachMilestones(ctx, *existing)
}

func (s *Service) UpdateMilestoneStatus(ctx context.Context, id, milestoneID string, status invoicedomain.MilestoneStatus) (invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}
	msID, err := parseID(milestoneID)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}
	if !status.Valid() {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidMilestoneStatus
	}

	existing, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if existing == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}

	milestone, err := s.milestonerepo.FindOne(ctx, &invoicedomain.Milestone{ID: msID, InvoiceID: invoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if milestone == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrMilestoneNotFound
	}

	now := s.clk.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).
			Model(&invoicedomain.Milestone{}).
			Where("id = ?", msID).
			Update("status", status).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).
			Model(&invoicedomain.Invoice{}).
			Where("id = ?", invoiceID).
			Update("updated_at", now).Error
	})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	existing.UpdatedAt = now
	return s.attachMilestones(ctx, *existing)
}

func (s *Service) GetByID(ctx context.Context, id string) (invoicedomain.Invoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}

	item, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}

	return s.attachMilestones(ctx, *item)
}

func (s *Service) List(ctx context.Context, req invoicedomain.ListInvoiceRequest) (invoicedomain.ListInvoiceResponse, error) {
	filter := &invoicedomain.Invoice{}
	if req.Status != nil {
		filter.Status = *req.Status
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	options := []option.QueryOption{
		option.WithOrder("id DESC"),
		option.WithLimit(pageSize + 1),
	}
	if req.PageToken != "" {
		cursor, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidID
		}
		cursorID, err := parseID(cursor.ID)
		if err != nil {
			return invoicedomain.ListInvoiceResponse{}, invoicedomain.ErrInvalidID
		}
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "id",
			Operator: option.LT,
			Value:    cursorID,
		}))
	}

	items, err := s.invoicerepo.Find(ctx, filter, options...)
	if err != nil {
		return invoicedomain.ListInvoiceResponse{}, err
	}

	pageInfo, items := pagination.BuildCursorPageInfo(items, pageSize, func(inv *invoicedomain.Invoice) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: inv.ID.String()})
		return token
	})

	invoices := make([]invoicedomain.Invoice, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		invoices = append(invoices, *item)
	}

	return invoicedomain.ListInvoiceResponse{
		PageInfo: *pageInfo,
		Invoices: invoices,
	}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	invoiceID, err := parseID(id)
	if err != nil {
		return invoicedomain.ErrInvalidID
	}

	existing, err := s.invoicerepo.FindOne(ctx, &invoicedomain.Invoice{ID: invoiceID})
	if err != nil {
		return err
	}
	if existing == nil {
		return invoicedomain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.deleteMilestoneRows(ctx, tx, invoiceID); err != nil {
			return err
		}
		return tx.WithContext(ctx).
			Where("id = ?", invoiceID).
			Delete(&invoicedomain.Invoice{}).Error
	})
}

// updateDescriptiveFields updates client/billing/status/due-date data while
// leaving every computed figure and milestone row untouched.
func (s *Service) updateDescriptiveFields(
	ctx context.Context,
	existing invoicedomain.Invoice,
	req invoicedomain.UpdateInvoiceRequest,
	clientName, clientEmail string,
	status invoicedomain.InvoiceStatus,
) (invoicedomain.Invoice, error) {
	billing := existing.Billing
	if req.Billing != nil {
		resolved, err := s.resolveBilling(ctx, req.Billing)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		billing = resolved
	}

	invoice := existing
	invoice.ClientName = clientName
	invoice.ClientEmail = clientEmail
	invoice.ClientEmailLower = strings.ToLower(clientEmail)
	invoice.ClientAddress = strings.TrimSpace(req.ClientAddress)
	invoice.ClientPhone = strings.TrimSpace(req.ClientPhone)
	invoice.Billing = billing
	invoice.Status = status
	invoice.DueDate = req.DueDate
	invoice.UpdatedAt = s.clk.Now()

	if err := s.db.WithContext(ctx).Save(&invoice).Error; err != nil {
		return invoicedomain.Invoice{}, err
	}
	return s.attachMilestones(ctx, invoice)
}

func (s *Service) resolveBilling(ctx context.Context, in *invoicedomain.BillingProfile) (invoicedomain.BillingProfile, error) {
	profile, err := s.orgSvc.Get(ctx)
	if err != nil {
		return invoicedomain.BillingProfile{}, err
	}

	if in == nil {
		return billingFromProfile(profile), nil
	}

	billing := invoicedomain.BillingProfile{
		BusinessName:      strings.TrimSpace(in.BusinessName),
		OwnerName:         strings.TrimSpace(in.OwnerName),
		Email:             strings.TrimSpace(in.Email),
		Phone:             strings.TrimSpace(in.Phone),
		Address:           strings.TrimSpace(in.Address),
		BankName:          strings.TrimSpace(in.BankName),
		BankAccountName:   strings.TrimSpace(in.BankAccountName),
		BankAccountNumber: strings.TrimSpace(in.BankAccountNumber),
	}
	if billing.BusinessName == "" {
		billing.BusinessName = profile.BusinessName
	}
	if billing.BusinessName == "" {
		billing.BusinessName = organizationdomain.DefaultBusinessName
	}
	return billing, nil
}

func (s *Service) milestoneRows(
	invoiceID snowflake.ID,
	groups []pricing.MilestoneGroup,
	statuses []invoicedomain.MilestoneStatus,
	now time.Time,
) ([]*invoicedomain.Milestone, []*invoicedomain.MilestoneItem) {
	milestones := make([]*invoicedomain.Milestone, 0, len(groups))
	items := make([]*invoicedomain.MilestoneItem, 0)
	for i, group := range groups {
		milestone := &invoicedomain.Milestone{
			ID:          s.genID.Generate(),
			InvoiceID:   invoiceID,
			Position:    i,
			Title:       group.Title,
			Description: group.Description,
			DueDate:     group.DueDate,
			Status:      statuses[i],
			Subtotal:    group.Subtotal,
			CreatedAt:   now,
		}
		milestones = append(milestones, milestone)
		for j, item := range group.Items {
			items = append(items, &invoicedomain.MilestoneItem{
				ID:          s.genID.Generate(),
				MilestoneID: milestone.ID,
				Position:    j,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Total:       item.Total,
				CreatedAt:   now,
			})
		}
	}
	return milestones, items
}

func (s *Service) deleteMilestoneRows(ctx context.Context, tx *gorm.DB, invoiceID snowflake.ID) error {
	if err := tx.WithContext(ctx).Exec(
		`DELETE FROM invoice_milestone_items
		 WHERE milestone_id IN (SELECT id FROM invoice_milestones WHERE invoice_id = ?)`,
		invoiceID,
	).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Delete(&invoicedomain.Milestone{}).Error
}

func (s *Service) attachMilestones(ctx context.Context, invoice invoicedomain.Invoice) (invoicedomain.Invoice, error) {
	milestones, err := s.milestonerepo.Find(ctx,
		&invoicedomain.Milestone{InvoiceID: invoice.ID},
		option.WithOrder("position ASC"),
	)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}

	composed := make([]invoicedomain.Milestone, 0, len(milestones))
	for _, milestone := range milestones {
		if milestone == nil {
			continue
		}
		items, err := s.itemrepo.Find(ctx,
			&invoicedomain.MilestoneItem{MilestoneID: milestone.ID},
			option.WithOrder("position ASC"),
		)
		if err != nil {
			return invoicedomain.Invoice{}, err
		}
		ms := *milestone
		for _, item := range items {
			if item == nil {
				continue
			}
			ms.Items = append(ms.Items, *item)
		}
		composed = append(composed, ms)
	}

	invoice.Milestones = composed
	return invoice, nil
}

func resolveMilestoneStatuses(groups []pricing.MilestoneGroup) ([]invoicedomain.MilestoneStatus, error) {
	statuses := make([]invoicedomain.MilestoneStatus, 0, len(groups))
	for _, group := range groups {
		status := invoicedomain.MilestoneStatus(group.Status)
		if status == "" {
			status = invoicedomain.MilestoneStatusNotStarted
		}
		if !status.Valid() {
			return nil, invoicedomain.ErrInvalidMilestoneStatus
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func composeMilestones(milestones []*invoicedomain.Milestone, items []*invoicedomain.MilestoneItem) []invoicedomain.Milestone {
	byMilestone := make(map[snowflake.ID][]invoicedomain.MilestoneItem, len(milestones))
	for _, item := range items {
		if item == nil {
			continue
		}
		byMilestone[item.MilestoneID] = append(byMilestone[item.MilestoneID], *item)
	}

	composed := make([]invoicedomain.Milestone, 0, len(milestones))
	for _, milestone := range milestones {
		if milestone == nil {
			continue
		}
		ms := *milestone
		ms.Items = byMilestone[ms.ID]
		composed = append(composed, ms)
	}
	return composed
}

func storedDeposit(d pricing.Deposit) invoicedomain.Deposit {
	return invoicedomain.Deposit{
		Enabled:     d.Enabled,
		RatePercent: d.RatePercent,
		Amount:      d.Amount,
		DueDate:     d.DueDate,
		Notes:       d.Notes,
	}
}

func depositInputFromStored(d invoicedomain.Deposit) pricing.DepositInput {
	return pricing.DepositInput{
		Enabled:     d.Enabled,
		RatePercent: d.RatePercent,
		DueDate:     d.DueDate,
		Notes:       d.Notes,
	}
}

func billingFromProfile(profile organizationdomain.Profile) invoicedomain.BillingProfile {
	businessName := profile.BusinessName
	if businessName == "" {
		businessName = organizationdomain.DefaultBusinessName
	}
	return invoicedomain.BillingProfile{
		BusinessName:      businessName,
		OwnerName:         profile.OwnerName,
		Email:             profile.Email,
		Phone:             profile.Phone,
		Address:           profile.Address,
		BankName:          profile.BankName,
		BankAccountName:   profile.BankAccountName,
		BankAccountNumber: profile.BankAccountNumber,
	}
}

func parseID(raw string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, strconv.ErrSyntax
	}
	return snowflake.ParseString(trimmed)
}
