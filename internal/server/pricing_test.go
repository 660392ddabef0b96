package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/smallbiznis/tessera/internal/pricing/domain"
)

type fakePricingService struct {
	listFn   func(context.Context, pricingdomain.ListPricingRequest) (pricingdomain.ListPricingResponse, error)
	createFn func(context.Context, pricingdomain.CreatePricingRequest) (pricingdomain.PricingPeriod, error)
	endFn    func(context.Context, pricingdomain.EndPricingRequest) (pricingdomain.PricingPeriod, error)
}

func (f *fakePricingService) List(ctx context.Context, req pricingdomain.ListPricingRequest) (pricingdomain.ListPricingResponse, error) {
	return f.listFn(ctx, req)
}

func (f *fakePricingService) Create(ctx context.Context, req pricingdomain.CreatePricingRequest) (pricingdomain.PricingPeriod, error) {
	return f.createFn(ctx, req)
}

func (f *fakePricingService) End(ctx context.Context, req pricingdomain.EndPricingRequest) (pricingdomain.PricingPeriod, error) {
	return f.endFn(ctx, req)
}

func newPricingTestRouter(svc pricingdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := &Server{pricingSvc: svc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/admin/applications/:id/pricing", srv.ListPricing)
	router.POST("/admin/applications/:id/pricing", srv.CreatePricing)
	router.POST("/admin/applications/:id/pricing/:periodId/end", srv.EndPricing)
	return router
}

func TestCreatePricingOverlapPayload(t *testing.T) {
	validTo := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	existing := pricingdomain.PricingPeriod{
		ID:            42,
		ApplicationID: 7,
		UserTypeID:    9,
		AmountCents:   1500,
		Currency:      "USD",
		ValidFrom:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		ValidTo:       &validTo,
		Active:        true,
	}

	svc := &fakePricingService{
		createFn: func(_ context.Context, _ pricingdomain.CreatePricingRequest) (pricingdomain.PricingPeriod, error) {
			return pricingdomain.PricingPeriod{}, &pricingdomain.OverlapError{Existing: existing}
		},
	}
	router := newPricingTestRouter(svc)

	body := `{"user_type_id":"9","amount_cents":2000,"currency":"USD","valid_from":"2026-03-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/applications/7/pricing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Error struct {
			Type    string `json:"type"`
			Code    string `json:"code"`
			Details struct {
				Conflict struct {
					PeriodID   string     `json:"period_id"`
					UserTypeID string     `json:"user_type_id"`
					ValidFrom  time.Time  `json:"valid_from"`
					ValidTo    *time.Time `json:"valid_to"`
				} `json:"conflict"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error.Code != "PRICING_OVERLAP" {
		t.Fatalf("expected code PRICING_OVERLAP, got %q", resp.Error.Code)
	}
	if resp.Error.Details.Conflict.PeriodID != "42" {
		t.Fatalf("expected conflict period 42, got %q", resp.Error.Details.Conflict.PeriodID)
	}
	if resp.Error.Details.Conflict.UserTypeID != "9" {
		t.Fatalf("expected conflict user type 9, got %q", resp.Error.Details.Conflict.UserTypeID)
	}
	if !resp.Error.Details.Conflict.ValidFrom.Equal(existing.ValidFrom) {
		t.Fatalf("expected conflict valid_from %v, got %v", existing.ValidFrom, resp.Error.Details.Conflict.ValidFrom)
	}
	if resp.Error.Details.Conflict.ValidTo == nil || !resp.Error.Details.Conflict.ValidTo.Equal(validTo) {
		t.Fatalf("expected conflict valid_to %v, got %v", validTo, resp.Error.Details.Conflict.ValidTo)
	}
}

func TestCreatePricingInvalidDates(t *testing.T) {
	svc := &fakePricingService{
		createFn: func(_ context.Context, _ pricingdomain.CreatePricingRequest) (pricingdomain.PricingPeriod, error) {
			return pricingdomain.PricingPeriod{}, pricingdomain.ErrInvalidDates
		},
	}
	router := newPricingTestRouter(svc)

	body := `{"user_type_id":"9","amount_cents":2000,"currency":"USD","valid_from":"2026-03-01T00:00:00Z","valid_to":"2026-02-01T00:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/applications/7/pricing", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "invalid_dates") {
		t.Fatalf("expected invalid_dates in body, got %s", rec.Body.String())
	}
}

func TestEndPricingAlreadyEnded(t *testing.T) {
	svc := &fakePricingService{
		endFn: func(_ context.Context, req pricingdomain.EndPricingRequest) (pricingdomain.PricingPeriod, error) {
			if req.PeriodID != "42" {
				t.Fatalf("expected period 42, got %q", req.PeriodID)
			}
			return pricingdomain.PricingPeriod{}, pricingdomain.ErrAlreadyEnded
		},
	}
	router := newPricingTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/admin/applications/7/pricing/42/end", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ALREADY_ENDED") {
		t.Fatalf("expected ALREADY_ENDED in body, got %s", rec.Body.String())
	}
}

func TestListPricingPassesFilters(t *testing.T) {
	var captured pricingdomain.ListPricingRequest
	svc := &fakePricingService{
		listFn: func(_ context.Context, req pricingdomain.ListPricingRequest) (pricingdomain.ListPricingResponse, error) {
			captured = req
			return pricingdomain.ListPricingResponse{Periods: []pricingdomain.PricingPeriod{{ID: 1}}}, nil
		},
	}
	router := newPricingTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/admin/applications/7/pricing?user_type_id=9&current=true", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.ApplicationID != "7" || captured.UserTypeID != "9" || !captured.Current {
		t.Fatalf("unexpected filter: %+v", captured)
	}
}
