package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/jobledger/jobledger/internal/clock"
	organizationdomain "github.com/jobledger/jobledger/internal/organization/domain"
	organizationservice "github.com/jobledger/jobledger/internal/organization/service"
	"github.com/jobledger/jobledger/internal/pricing"
	quotationdomain "github.com/jobledger/jobledger/internal/quotation/domain"
	"github.com/jobledger/jobledger/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// countingNumbers records how many document numbers were handed out.
type countingNumbers struct {
	calls int
}

func (g *countingNumbers) Next(prefix string) string {
	g.calls++
	return fmt.Sprintf("%s-%06d", prefix, g.calls)
}

type testEnv struct {
	db      *gorm.DB
	clk     *clock.FakeClock
	numbers *countingNumbers
	svc     quotationdomain.Service
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()

	dbConn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, dbConn.AutoMigrate(
		&organizationdomain.Profile{},
		&quotationdomain.Quotation{},
		&quotationdomain.QuotationItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	clk := clock.NewFakeClock(time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC))
	numbers := &countingNumbers{}
	log := zap.NewNop()

	orgSvc := organizationservice.NewService(organizationservice.ServiceParam{
		DB:    dbConn,
		Log:   log,
		GenID: node,
		Clock: clk,
	})

	svc := NewService(ServiceParam{
		DB:      dbConn,
		Log:     log,
		GenID:   node,
		Clock:   clk,
		Numbers: numbers,
		OrgSvc:  orgSvc,
	})

	return &testEnv{db: dbConn, clk: clk, numbers: numbers, svc: svc}
}

func createRequest() quotationdomain.CreateQuotationRequest {
	return quotationdomain.CreateQuotationRequest{
		ClientName:    "Jordan Mason",
		ClientEmail:   "Jordan@Example.com",
		ClientAddress: "12 Harbour Lane, Port Town",
		Items: []pricing.ItemInput{
			{Description: "Labour", Quantity: 10, UnitPrice: 25},
			{Description: "Materials", Quantity: 1, UnitPrice: 500},
		},
		TaxRate: 15,
	}
}

func TestCreateQuotationComputesTotals(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	quotation, err := env.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	assert.Equal(t, 750.0, quotation.Subtotal)
	assert.Equal(t, 112.50, quotation.TaxAmount)
	assert.Equal(t, 862.50, quotation.Total)
	assert.True(t, strings.HasPrefix(quotation.DocumentNumber, "QT-"))
	assert.Equal(t, "jordan@example.com", quotation.ClientEmailLower)
	assert.Equal(t, "12 Harbour Lane, Port Town", quotation.ClientAddress)
	assert.Equal(t, quotationdomain.QuotationStatusDraft, quotation.Status)
	assert.Equal(t, organizationdomain.DefaultBusinessName, quotation.CompanyName)
	assert.Equal(t, env.clk.Now(), quotation.CreatedAt)
	assert.Equal(t, quotation.CreatedAt, quotation.UpdatedAt)
	assert.Len(t, quotation.Items, 2)
	assert.Equal(t, "Labour", quotation.Items[0].Description)
}

func TestCreateQuotationStampsBusinessName(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	require.NoError(t, env.db.Create(&organizationdomain.Profile{
		ID:           snowflake.ID(42),
		BusinessName: "Mason & Sons Roofing",
	}).Error)

	quotation, err := env.svc.Create(ctx, createRequest())
	require.NoError(t, err)
	assert.Equal(t, "Mason & Sons Roofing", quotation.CompanyName)
}

func TestCreateQuotationRejectsEmptyItemSet(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	req := createRequest()
	req.Items = []pricing.ItemInput{{Description: "   ", Quantity: 5, UnitPrice: 10}}

	_, err := env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, quotationdomain.ErrNoBillableItems)
	// a failed create never consumes a document number
	assert.Equal(t, 0, env.numbers.calls)
}

func TestCreateQuotationRequiresClientIdentity(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	req := createRequest()
	req.ClientName = "  "
	_, err := env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, quotationdomain.ErrClientNameRequired)

	req = createRequest()
	req.ClientEmail = ""
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, quotationdomain.ErrClientEmailRequired)

	// a whitespace-only address is as missing as an absent one
	req = createRequest()
	req.ClientAddress = "   "
	_, err = env.svc.Create(ctx, req)
	assert.ErrorIs(t, err, quotationdomain.ErrClientAddressRequired)

	assert.Equal(t, 0, env.numbers.calls)
}

func TestUpdateQuotationIgnoresStoredTotals(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	// corrupt the stored figures; the update must recompute from scratch
	require.NoError(t, env.db.Model(&quotationdomain.Quotation{}).
		Where("id = ?", created.ID).
		Updates(map[string]any{"subtotal": 9999, "total": 9999}).Error)

	updated, err := env.svc.Update(ctx, created.ID.String(), quotationdomain.UpdateQuotationRequest{
		ClientName:    created.ClientName,
		ClientEmail:   created.ClientEmail,
		ClientAddress: created.ClientAddress,
		Items: []pricing.ItemInput{
			{Description: "Scaffolding", Quantity: 2, UnitPrice: 100},
		},
		TaxRate: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, 200.0, updated.Subtotal)
	assert.Equal(t, 20.0, updated.TaxAmount)
	assert.Equal(t, 220.0, updated.Total)
}

func TestUpdateQuotationKeepsIdentityAndNumber(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	env.clk.Advance(2 * time.Hour)

	updated, err := env.svc.Update(ctx, created.ID.String(), quotationdomain.UpdateQuotationRequest{
		ClientName:    "New Client",
		ClientEmail:   "new@example.com",
		ClientAddress: "7 Quarry Road, Port Town",
		Items:         []pricing.ItemInput{{Description: "Painting", Quantity: 1, UnitPrice: 300}},
		Status:        quotationdomain.QuotationStatusSent,
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, created.DocumentNumber, updated.DocumentNumber)
	assert.True(t, created.CreatedAt.Equal(updated.CreatedAt))
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))
	assert.Equal(t, quotationdomain.QuotationStatusSent, updated.Status)
	// the number generator ran only for the create
	assert.Equal(t, 1, env.numbers.calls)
}

func TestUpdateQuotationReplacesItemRows(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	updated, err := env.svc.Update(ctx, created.ID.String(), quotationdomain.UpdateQuotationRequest{
		ClientName:    created.ClientName,
		ClientEmail:   created.ClientEmail,
		ClientAddress: created.ClientAddress,
		Items:         []pricing.ItemInput{{Description: "Plastering", Quantity: 4, UnitPrice: 75}},
	})
	require.NoError(t, err)
	assert.Len(t, updated.Items, 1)

	var count int64
	require.NoError(t, env.db.Model(&quotationdomain.QuotationItem{}).
		Where("quotation_id = ?", created.ID).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUpdateQuotationRequiresClientAddress(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	_, err = env.svc.Update(ctx, created.ID.String(), quotationdomain.UpdateQuotationRequest{
		ClientName:  created.ClientName,
		ClientEmail: created.ClientEmail,
		Items:       []pricing.ItemInput{{Description: "Painting", Quantity: 1, UnitPrice: 300}},
	})
	assert.ErrorIs(t, err, quotationdomain.ErrClientAddressRequired)
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	accepted, err := env.svc.UpdateStatus(ctx, created.ID.String(), quotationdomain.QuotationStatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, quotationdomain.QuotationStatusAccepted, accepted.Status)

	// back to draft is fine; statuses are descriptive, not enforced
	draft, err := env.svc.UpdateStatus(ctx, created.ID.String(), quotationdomain.QuotationStatusDraft)
	require.NoError(t, err)
	assert.Equal(t, quotationdomain.QuotationStatusDraft, draft.Status)

	_, err = env.svc.UpdateStatus(ctx, created.ID.String(), quotationdomain.QuotationStatus("archived"))
	assert.ErrorIs(t, err, quotationdomain.ErrInvalidStatus)
}

func TestGetByIDLoadsItemsInOrder(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	loaded, err := env.svc.GetByID(ctx, created.ID.String())
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "Labour", loaded.Items[0].Description)
	assert.Equal(t, "Materials", loaded.Items[1].Description)
}

func TestListPaginatesByCursor(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		req := createRequest()
		req.ClientName = fmt.Sprintf("Client %d", i)
		_, err := env.svc.Create(ctx, req)
		require.NoError(t, err)
	}

	first, err := env.svc.List(ctx, quotationdomain.ListQuotationRequest{})
	require.NoError(t, err)
	assert.Len(t, first.Quotations, 3)

	page := quotationdomain.ListQuotationRequest{}
	page.PageSize = 2
	paged, err := env.svc.List(ctx, page)
	require.NoError(t, err)
	assert.Len(t, paged.Quotations, 2)
	assert.True(t, paged.HasMore)

	next := quotationdomain.ListQuotationRequest{}
	next.PageSize = 2
	next.PageToken = paged.NextPageToken
	rest, err := env.svc.List(ctx, next)
	require.NoError(t, err)
	assert.Len(t, rest.Quotations, 1)
	assert.False(t, rest.HasMore)
}

func TestDeleteRemovesQuotationAndItems(t *testing.T) {
	env := setupTest(t)
	ctx := context.Background()

	created, err := env.svc.Create(ctx, createRequest())
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(ctx, created.ID.String()))

	_, err = env.svc.GetByID(ctx, created.ID.String())
	assert.ErrorIs(t, err, quotationdomain.ErrNotFound)

	var count int64
	require.NoError(t, env.db.Model(&quotationdomain.QuotationItem{}).
		Where("quotation_id = ?", created.ID).
		Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
