package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/smallbiznis/tessera/internal/pricing/domain"
)

func (s *Server) ListPricing(c *gin.Context) {
	var query struct {
		UserTypeID string `form:"user_type_id"`
		Current    bool   `form:"current"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingSvc.List(c.Request.Context(), pricingdomain.ListPricingRequest{
		ApplicationID: strings.TrimSpace(c.Param("id")),
		UserTypeID:    strings.TrimSpace(query.UserTypeID),
		Current:       query.Current,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Periods})
}

type createPricingRequest struct {
	UserTypeID  string     `json:"user_type_id"`
	AmountCents int64      `json:"amount_cents"`
	Currency    string     `json:"currency"`
	ValidFrom   time.Time  `json:"valid_from"`
	ValidTo     *time.Time `json:"valid_to"`
}

// CreatePricing inserts a pricing period. The overlap check runs inside
// the create transaction; a collision returns 422 PRICING_OVERLAP with
// the conflicting existing range.
func (s *Server) CreatePricing(c *gin.Context) {
	var req createPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.pricingSvc.Create(c.Request.Context(), pricingdomain.CreatePricingRequest{
		ApplicationID: strings.TrimSpace(c.Param("id")),
		UserTypeID:    strings.TrimSpace(req.UserTypeID),
		AmountCents:   req.AmountCents,
		Currency:      strings.TrimSpace(req.Currency),
		ValidFrom:     req.ValidFrom,
		ValidTo:       req.ValidTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "pricing.create", "pricing_period", resp.ID.String(), map[string]any{
		"application_id": resp.ApplicationID.String(),
		"user_type_id":   resp.UserTypeID.String(),
		"amount_cents":   resp.AmountCents,
		"currency":       resp.Currency,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) EndPricing(c *gin.Context) {
	resp, err := s.pricingSvc.End(c.Request.Context(), pricingdomain.EndPricingRequest{
		ApplicationID: strings.TrimSpace(c.Param("id")),
		PeriodID:      strings.TrimSpace(c.Param("periodId")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "pricing.end", "pricing_period", resp.ID.String(), map[string]any{
		"application_id": resp.ApplicationID.String(),
		"valid_to":       resp.ValidTo,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isPricingValidationError(err error) bool {
	switch err {
	case pricingdomain.ErrInvalidID,
		pricingdomain.ErrInvalidUserType,
		pricingdomain.ErrInvalidAmount,
		pricingdomain.ErrInvalidCurrency,
		pricingdomain.ErrInvalidDates:
		return true
	default:
		return false
	}
}
