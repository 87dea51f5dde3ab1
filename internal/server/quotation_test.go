package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	quotationdomain "github.com/jobledger/jobledger/internal/quotation/domain"
	"github.com/prometheus/client_golang/prometheus"
)

type fakeQuotationService struct {
	createCalls int
	createErr   error
	getErr      error
	quotation   quotationdomain.Quotation
}

func (f *fakeQuotationService) Create(ctx context.Context, req quotationdomain.CreateQuotationRequest) (quotationdomain.Quotation, error) {
	f.createCalls++
	_ = ctx
	_ = req
	if f.createErr != nil {
		return quotationdomain.Quotation{}, f.createErr
	}
	return f.quotation, nil
}

func (f *fakeQuotationService) Update(ctx context.Context, id string, req quotationdomain.UpdateQuotationRequest) (quotationdomain.Quotation, error) {
	_ = ctx
	_ = id
	_ = req
	return f.quotation, nil
}

func (f *fakeQuotationService) UpdateStatus(ctx context.Context, id string, status quotationdomain.QuotationStatus) (quotationdomain.Quotation, error) {
	_ = ctx
	_ = id
	_ = status
	return f.quotation, nil
}

func (f *fakeQuotationService) GetByID(ctx context.Context, id string) (quotationdomain.Quotation, error) {
	_ = ctx
	_ = id
	if f.getErr != nil {
		return quotationdomain.Quotation{}, f.getErr
	}
	return f.quotation, nil
}

func (f *fakeQuotationService) List(ctx context.Context, req quotationdomain.ListQuotationRequest) (quotationdomain.ListQuotationResponse, error) {
	_ = ctx
	_ = req
	return quotationdomain.ListQuotationResponse{}, nil
}

func (f *fakeQuotationService) Delete(ctx context.Context, id string) error {
	_ = ctx
	_ = id
	return nil
}

func newTestServer(svc quotationdomain.Service) (*Server, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	srv := &Server{
		quotationSvc: svc,
		metrics:      NewMetrics(prometheus.NewRegistry()),
	}
	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	return srv, router
}

type errorBody struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Errors  []struct {
			Field   string `json:"field"`
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"errors"`
	} `json:"error"`
}

func decodeErrorBody(t *testing.T, resp *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return body
}

func TestCreateQuotationHandlerReturns201(t *testing.T) {
	svc := &fakeQuotationService{
		quotation: quotationdomain.Quotation{
			ID:             snowflake.ID(1),
			DocumentNumber: "QT-1767225600000",
		},
	}
	srv, router := newTestServer(svc)
	router.POST("/v1/quotations", srv.CreateQuotation)

	req := httptest.NewRequest(http.MethodPost, "/v1/quotations", bytes.NewBufferString(`{"client_name":"Jordan Mason","client_email":"jordan@example.com","client_address":"12 Harbour Lane","items":[{"description":"Labour","quantity":10,"unit_price":25}],"tax_rate":15}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", resp.Code)
	}
	if svc.createCalls != 1 {
		t.Fatalf("expected 1 create call, got %d", svc.createCalls)
	}

	var body struct {
		Data quotationdomain.Quotation `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Data.DocumentNumber != "QT-1767225600000" {
		t.Fatalf("expected document number in response, got %q", body.Data.DocumentNumber)
	}
}

func TestCreateQuotationHandlerRejectsMalformedBody(t *testing.T) {
	svc := &fakeQuotationService{}
	srv, router := newTestServer(svc)
	router.POST("/v1/quotations", srv.CreateQuotation)

	req := httptest.NewRequest(http.MethodPost, "/v1/quotations", bytes.NewBufferString(`{"client_name":`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}
	if svc.createCalls != 0 {
		t.Fatal("expected service not to be called for a malformed body")
	}

	body := decodeErrorBody(t, resp)
	if body.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Type)
	}
}

func TestCreateQuotationHandlerMapsValidationErrors(t *testing.T) {
	cases := []struct {
		name  string
		err   error
		field string
		code  string
	}{
		{"no billable items", quotationdomain.ErrNoBillableItems, "items", "no_billable_items"},
		{"missing address", quotationdomain.ErrClientAddressRequired, "client_address", "client_address_required"},
		{"missing name", quotationdomain.ErrClientNameRequired, "client_name", "client_name_required"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, router := newTestServer(&fakeQuotationService{createErr: tc.err})
			router.POST("/v1/quotations", srv.CreateQuotation)

			req := httptest.NewRequest(http.MethodPost, "/v1/quotations", bytes.NewBufferString(`{}`))
			req.Header.Set("Content-Type", "application/json")
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, req)

			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", resp.Code)
			}
			body := decodeErrorBody(t, resp)
			if body.Error.Type != "validation_error" {
				t.Fatalf("expected validation_error, got %q", body.Error.Type)
			}
			if len(body.Error.Errors) != 1 {
				t.Fatalf("expected one error entry, got %d", len(body.Error.Errors))
			}
			if body.Error.Errors[0].Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, body.Error.Errors[0].Field)
			}
			if body.Error.Errors[0].Code != tc.code {
				t.Fatalf("expected code %q, got %q", tc.code, body.Error.Errors[0].Code)
			}
			if body.Error.Errors[0].Message == "" {
				t.Fatal("expected a human-readable message")
			}
		})
	}
}

func TestGetQuotationHandlerMapsNotFound(t *testing.T) {
	srv, router := newTestServer(&fakeQuotationService{getErr: quotationdomain.ErrNotFound})
	router.GET("/v1/quotations/:id", srv.GetQuotationByID)

	req := httptest.NewRequest(http.MethodGet, "/v1/quotations/123", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
	body := decodeErrorBody(t, resp)
	if body.Error.Type != "not_found" {
		t.Fatalf("expected not_found, got %q", body.Error.Type)
	}
}

func TestCreateQuotationHandlerMapsDuplicateNumberToConflict(t *testing.T) {
	srv, router := newTestServer(&fakeQuotationService{
		createErr: errors.New("UNIQUE constraint failed: quotations.document_number"),
	})
	router.POST("/v1/quotations", srv.CreateQuotation)

	req := httptest.NewRequest(http.MethodPost, "/v1/quotations", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", resp.Code)
	}
	body := decodeErrorBody(t, resp)
	if body.Error.Type != "conflict" {
		t.Fatalf("expected conflict, got %q", body.Error.Type)
	}
}
