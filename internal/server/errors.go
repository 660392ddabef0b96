package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/smallbiznis/tessera/internal/application/domain"
	authdomain "github.com/smallbiznis/tessera/internal/auth/domain"
	"github.com/smallbiznis/tessera/internal/authorization"
	licensedomain "github.com/smallbiznis/tessera/internal/license/domain"
	pricingdomain "github.com/smallbiznis/tessera/internal/pricing/domain"
	quotadomain "github.com/smallbiznis/tessera/internal/quota/domain"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
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

// conflictRange is the authoritative existing range embedded in a
// PRICING_OVERLAP response so any client can render the collision.
type conflictRange struct {
	PeriodID   string     `json:"period_id"`
	UserTypeID string     `json:"user_type_id"`
	ValidFrom  time.Time  `json:"valid_from"`
	ValidTo    *time.Time `json:"valid_to,omitempty"`
}

type errorDetails struct {
	Conflict *conflictRange `json:"conflict,omitempty"`
}

type errorPayload struct {
	Type    string            `json:"type"`
	Code    string            `json:"code,omitempty"`
	Message string            `json:"message"`
	Details *errorDetails     `json:"details,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
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

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
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

	var overlap *pricingdomain.OverlapError
	if errors.As(err, &overlap) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Code:    "PRICING_OVERLAP",
			Message: "pricing period overlaps an active period of the same user type",
			Details: &errorDetails{Conflict: &conflictRange{
				PeriodID:   overlap.Existing.ID.String(),
				UserTypeID: overlap.Existing.UserTypeID.String(),
				ValidFrom:  overlap.Existing.ValidFrom,
				ValidTo:    overlap.Existing.ValidTo,
			}},
		}
	}

	switch {
	case errors.Is(err, pricingdomain.ErrOverlap):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Code:    "PRICING_OVERLAP",
			Message: "pricing period overlaps an active period of the same user type",
		}
	case errors.Is(err, licensedomain.ErrNoSeatsAvailable):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Code:    "NO_SEATS_AVAILABLE",
			Message: "license has no seats available",
		}
	case errors.Is(err, licensedomain.ErrAlreadyLicensed):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Code:    "ALREADY_LICENSED",
			Message: "user already holds a seat on this license",
		}
	case errors.Is(err, quotadomain.ErrQuotaExceeded):
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "unprocessable",
			Code:    "QUOTA_EXCEEDED",
			Message: "transcription quota exceeded",
		}
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrUnauthenticated),
		errors.Is(err, authdomain.ErrUserDisabled):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, authdomain.ErrThrottled):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "throttled",
			Message: "too many login attempts",
		}
	case errors.Is(err, ErrForbidden),
		errors.Is(err, authorization.ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Code:    strings.ToUpper(err.Error()),
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isTenantValidationError(err),
		isUserValidationError(err),
		isApplicationValidationError(err),
		isLicenseValidationError(err),
		isPricingValidationError(err),
		isQuotaValidationError(err):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, tenantdomain.ErrSlugTaken),
		errors.Is(err, userdomain.ErrEmailTaken),
		errors.Is(err, applicationdomain.ErrCodeTaken),
		errors.Is(err, licensedomain.ErrLicenseExists),
		errors.Is(err, licensedomain.ErrLicenseSuspended),
		errors.Is(err, licensedomain.ErrSeatLimitTooLow),
		errors.Is(err, pricingdomain.ErrAlreadyEnded):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, tenantdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, applicationdomain.ErrNotFound),
		errors.Is(err, licensedomain.ErrNotFound),
		errors.Is(err, pricingdomain.ErrNotFound),
		errors.Is(err, quotadomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if code == "invalid_request" {
		return "request"
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

// classifyErrorForLog turns a handler error into the (type, code) pair
// attached to the request log line.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	status, payload := mapError(err)
	switch {
	case payload.Code != "":
		return payload.Type, payload.Code
	case status >= http.StatusInternalServerError:
		return "internal_error", "internal_error"
	default:
		return payload.Type, err.Error()
	}
}
