package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jobledger/jobledger/internal/clock"
	"github.com/jobledger/jobledger/internal/docnumber"
	organizationdomain "github.com/jobledger/jobledger/internal/organization/domain"
	"github.com/jobledger/jobledger/internal/pricing"
	quotationdomain "github.com/jobledger/jobledger/internal/quotation/domain"
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

	quotationrepo repository.Repository[quotationdomain.Quotation]
	itemrepo      repository.Repository[quotationdomain.QuotationItem]
}

func NewService(p ServiceParam) quotationdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("quotation.service"),
		genID:   p.GenID,
		clk:     p.Clock,
		numbers: p.Numbers,
		orgSvc:  p.OrgSvc,

		quotationrepo: repository.ProvideStore[quotationdomain.Quotation](p.DB),
		itemrepo:      repository.ProvideStore[quotationdomain.QuotationItem](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req quotationdomain.CreateQuotationRequest) (quotationdomain.Quotation, error) {
	clientName := strings.TrimSpace(req.ClientName)
	clientEmail := strings.TrimSpace(req.ClientEmail)
	clientAddress := strings.TrimSpace(req.ClientAddress)
	if clientName == "" {
		return quotationdomain.Quotation{}, quotationdomain.ErrClientNameRequired
	}
	if clientEmail == "" {
		return quotationdomain.Quotation{}, quotationdomain.ErrClientEmailRequired
	}
	// Quotations carry the full client address; invoices treat it as optional.
	if clientAddress == "" {
		return quotationdomain.Quotation{}, quotationdomain.ErrClientAddressRequired
	}

	status := req.Status
	if status == "" {
		status = quotationdomain.QuotationStatusDraft
	}
	if !status.Valid() {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidStatus
	}

	items := pricing.NormalizeItems(req.Items)
	if len(items) == 0 {
		return quotationdomain.Quotation{}, quotationdomain.ErrNoBillableItems
	}
	totals := pricing.Aggregate(items, req.TaxRate)

	profile, err := s.orgSvc.Get(ctx)
	if err != nil {
		return quotationdomain.Quotation{}, err
	}

	// All validation is done; only now is a document number consumed.
	now := s.clk.Now()
	quotation := quotationdomain.Quotation{
		ID:               s.genID.Generate(),
		DocumentNumber:   s.numbers.Next(docnumber.PrefixQuotation),
		CompanyName:      profile.BusinessName,
		ClientName:       clientName,
		ClientEmail:      clientEmail,
		ClientEmailLower: strings.ToLower(clientEmail),
		ClientAddress:    clientAddress,
		ClientPhone:      strings.TrimSpace(req.ClientPhone),
		Subtotal:         totals.Subtotal,
		TaxRate:          totals.TaxRate,
		TaxAmount:        totals.TaxAmount,
		Total:            totals.Total,
		Notes:            strings.TrimSpace(req.Notes),
		ValidUntil:       req.ValidUntil,
		Status:           status,
		Metadata:         datatypes.JSONMap{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	rows := s.itemRows(quotation.ID, items, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.quotationrepo.WithTrx(tx).Create(ctx, &quotation); err != nil {
			return err
		}
		return s.itemrepo.WithTrx(tx).BatchCreate(ctx, rows)
	})
	if err != nil {
		return quotationdomain.Quotation{}, err
	}

	quotation.Items = derefItems(rows)
	s.log.Info("quotation created",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("document_number", quotation.DocumentNumber),
		zap.Float64("total", quotation.Total),
	)
	return quotation, nil
}

func (s *Service) Update(ctx context.Context, id string, req quotationdomain.UpdateQuotationRequest) (quotationdomain.Quotation, error) {
	quotationID, err := parseID(id)
	if err != nil {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidID
	}

	existing, err := s.quotationrepo.FindOne(ctx, &quotationdomain.Quotation{ID: quotationID})
	if err != nil {
		return quotationdomain.Quotation{}, err
	}
	if existing == nil {
		return quotationdomain.Quotation{}, quotationdomain.ErrNotFound
	}

	clientName := strings.TrimSpace(req.ClientName)
	clientEmail := strings.TrimSpace(req.ClientEmail)
	clientAddress := strings.TrimSpace(req.ClientAddress)
	if clientName == "" {
		return quotationdomain.Quotation{}, quotationdomain.ErrClientNameRequired
	}
	if clientEmail == "" {
		return quotationdomain.Quotation{}, quotationdomain.ErrClientEmailRequired
	}
	if clientAddress == "" {
		return quotationdomain.Quotation{}, quotationdomain.ErrClientAddressRequired
	}

	status := req.Status
	if status == "" {
		status = existing.Status
	}
	if !status.Valid() {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidStatus
	}

	// Recompute entirely from the supplied items. Stored totals on the
	// existing row are ignored.
	items := pricing.NormalizeItems(req.Items)
	if len(items) == 0 {
		return quotationdomain.Quotation{}, quotationdomain.ErrNoBillableItems
	}
	totals := pricing.Aggregate(items, req.TaxRate)

	now := s.clk.Now()
	quotation := quotationdomain.Quotation{
		ID:               existing.ID,
		DocumentNumber:   existing.DocumentNumber,
		CompanyName:      existing.CompanyName,
		ClientName:       clientName,
		ClientEmail:      clientEmail,
		ClientEmailLower: strings.ToLower(clientEmail),
		ClientAddress:    clientAddress,
		ClientPhone:      strings.TrimSpace(req.ClientPhone),
		Subtotal:         totals.Subtotal,
		TaxRate:          totals.TaxRate,
		TaxAmount:        totals.TaxAmount,
		Total:            totals.Total,
		Notes:            strings.TrimSpace(req.Notes),
		ValidUntil:       req.ValidUntil,
		Status:           status,
		Metadata:         existing.Metadata,
		CreatedAt:        existing.CreatedAt,
		UpdatedAt:        now,
	}
	rows := s.itemRows(quotation.ID, items, now)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).Save(&quotation).Error; err != nil {
			return err
		}
		if err := tx.WithContext(ctx).
			Where("quotation_id = ?", quotation.ID).
			Delete(&quotationdomain.QuotationItem{}).Error; err != nil {
			return err
		}
		return s.itemrepo.WithTrx(tx).BatchCreate(ctx, rows)
	})
	if err != nil {
		return quotationdomain.Quotation{}, err
	}

	quotation.Items = derefItems(rows)
	return quotation, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, status quotationdomain.QuotationStatus) (quotationdomain.Quotation, error) {
	quotationID, err := parseID(id)
	if err != nil {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidID
	}
	if !status.Valid() {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidStatus
	}

	existing, err := s.quotationrepo.FindOne(ctx, &quotationdomain.Quotation{ID: quotationID})
	if err != nil {
		return quotationdomain.Quotation{}, err
	}
	if existing == nil {
		return quotationdomain.Quotation{}, quotationdomain.ErrNotFound
	}

	// Any status may be set from any other; the workflow is descriptive.
	now := s.clk.Now()
	if err := s.db.WithContext(ctx).
		Model(&quotationdomain.Quotation{}).
		Where("id = ?", quotationID).
		Updates(map[string]any{"status": status, "updated_at": now}).Error; err != nil {
		return quotationdomain.Quotation{}, err
	}

	existing.Status = status
	existing.UpdatedAt = now
	return s.attachItems(ctx, *existing)
}

func (s *Service) GetByID(ctx context.Context, id string) (quotationdomain.Quotation, error) {
	quotationID, err := parseID(id)
	if err != nil {
		return quotationdomain.Quotation{}, quotationdomain.ErrInvalidID
	}

	item, err := s.quotationrepo.FindOne(ctx, &quotationdomain.Quotation{ID: quotationID})
	if err != nil {
		return quotationdomain.Quotation{}, err
	}
	if item == nil {
		return quotationdomain.Quotation{}, quotationdomain.ErrNotFound
	}

	return s.attachItems(ctx, *item)
}

func (s *Service) List(ctx context.Context, req quotationdomain.ListQuotationRequest) (quotationdomain.ListQuotationResponse, error) {
	filter := &quotationdomain.Quotation{}
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
			return quotationdomain.ListQuotationResponse{}, quotationdomain.ErrInvalidID
		}
		cursorID, err := parseID(cursor.ID)
		if err != nil {
			return quotationdomain.ListQuotationResponse{}, quotationdomain.ErrInvalidID
		}
		options = append(options, option.ApplyOperator(option.Condition{
			Field:    "id",
			Operator: option.LT,
			Value:    cursorID,
		}))
	}

	items, err := s.quotationrepo.Find(ctx, filter, options...)
	if err != nil {
		return quotationdomain.ListQuotationResponse{}, err
	}

	pageInfo, items := pagination.BuildCursorPageInfo(items, pageSize, func(q *quotationdomain.Quotation) string {
		token, _ := pagination.EncodeCursor(pagination.Cursor{ID: q.ID.String()})
		return token
	})

	quotations := make([]quotationdomain.Quotation, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		quotations = append(quotations, *item)
	}

	return quotationdomain.ListQuotationResponse{
		PageInfo:   *pageInfo,
		Quotations: quotations,
	}, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	quotationID, err := parseID(id)
	if err != nil {
		return quotationdomain.ErrInvalidID
	}

	existing, err := s.quotationrepo.FindOne(ctx, &quotationdomain.Quotation{ID: quotationID})
	if err != nil {
		return err
	}
	if existing == nil {
		return quotationdomain.ErrNotFound
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.WithContext(ctx).
			Where("quotation_id = ?", quotationID).
			Delete(&quotationdomain.QuotationItem{}).Error; err != nil {
			return err
		}
		return tx.WithContext(ctx).
			Where("id = ?", quotationID).
			Delete(&quotationdomain.Quotation{}).Error
	})
}

func (s *Service) itemRows(quotationID snowflake.ID, items []pricing.LineItem, now time.Time) []*quotationdomain.QuotationItem {
	rows := make([]*quotationdomain.QuotationItem, 0, len(items))
	for i, item := range items {
		rows = append(rows, &quotationdomain.QuotationItem{
			ID:          s.genID.Generate(),
			QuotationID: quotationID,
			Position:    i,
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
			CreatedAt:   now,
		})
	}
	return rows
}

func (s *Service) attachItems(ctx context.Context, quotation quotationdomain.Quotation) (quotationdomain.Quotation, error) {
	rows, err := s.itemrepo.Find(ctx,
		&quotationdomain.QuotationItem{QuotationID: quotation.ID},
		option.WithOrder("position ASC"),
	)
	if err != nil {
		return quotationdomain.Quotation{}, err
	}
	quotation.Items = derefItems(rows)
	return quotation, nil
}

func derefItems(rows []*quotationdomain.QuotationItem) []quotationdomain.QuotationItem {
	items := make([]quotationdomain.QuotationItem, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		items = append(items, *row)
	}
	return items
}

func parseID(raw string) (snowflake.ID, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, strconv.ErrSyntax
	}
	return snowflake.ParseString(trimmed)
}
