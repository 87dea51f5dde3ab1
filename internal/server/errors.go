package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	invoicedomain "github.com/jobledger/jobledger/internal/invoice/domain"
	organizationdomain "github.com/jobledger/jobledger/internal/organization/domain"
	quotationdomain "github.com/jobledger/jobledger/internal/quotation/domain"
	"github.com/jobledger/jobledger/pkg/db"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	if isNotFoundError(err) {
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	}

	if db.IsDuplicateKeyErr(err) {
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "document number already exists",
		}
	}

	return http.StatusInternalServerError, errorPayload{
		Type:    "internal_error",
		Message: "internal server error",
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, quotationdomain.ErrInvalidID),
		errors.Is(err, quotationdomain.ErrClientNameRequired),
		errors.Is(err, quotationdomain.ErrClientEmailRequired),
		errors.Is(err, quotationdomain.ErrClientAddressRequired),
		errors.Is(err, quotationdomain.ErrNoBillableItems),
		errors.Is(err, quotationdomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrClientNameRequired),
		errors.Is(err, invoicedomain.ErrClientEmailRequired),
		errors.Is(err, invoicedomain.ErrNoBillableMilestones),
		errors.Is(err, invoicedomain.ErrMilestonesRequired),
		errors.Is(err, invoicedomain.ErrInvalidStatus),
		errors.Is(err, invoicedomain.ErrInvalidMilestoneStatus),
		errors.Is(err, organizationdomain.ErrInvalidBusinessName):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, quotationdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrMilestoneNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	switch code {
	case "client_name_required":
		return "client_name"
	case "client_email_required":
		return "client_email"
	case "client_address_required":
		return "client_address"
	case "no_billable_items":
		return "items"
	case "no_billable_milestones", "milestones_required":
		return "milestones"
	case "invalid_milestone_status":
		return "milestone_status"
	case "invalid_business_name":
		return "business_name"
	case "invalid_status":
		return "status"
	case "invalid_id":
		return "id"
	default:
		if strings.HasPrefix(code, "invalid_") {
			return strings.TrimPrefix(code, "invalid_")
		}
		return ""
	}
}

// Messages are user-facing; callers surface them directly.
func validationErrorMessage(code string) string {
	switch code {
	case "client_name_required":
		return "client name is required"
	case "client_email_required":
		return "client email is required"
	case "client_address_required":
		return "client address is required"
	case "no_billable_items":
		return "quotation must contain at least one billable item"
	case "no_billable_milestones":
		return "at least one milestone with at least one item is required"
	case "milestones_required":
		return "changing the tax rate or deposit requires resupplying milestones"
	case "invalid_status":
		return "unknown status value"
	case "invalid_milestone_status":
		return "unknown milestone status value"
	case "invalid_business_name":
		return "business name is required"
	case "invalid_id":
		return "invalid id"
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
