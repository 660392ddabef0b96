package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	licensedomain "github.com/smallbiznis/tessera/internal/license/domain"
)

type fakeLicenseService struct {
	activateFn     func(context.Context, licensedomain.ActivateLicenseRequest) (licensedomain.License, error)
	updateFn       func(context.Context, licensedomain.UpdateLicenseRequest) (licensedomain.License, error)
	getByIDFn      func(context.Context, licensedomain.GetLicenseRequest) (licensedomain.LicenseUsage, error)
	listByTenantFn func(context.Context, string) ([]licensedomain.LicenseUsage, error)
	grantSeatFn    func(context.Context, licensedomain.GrantSeatRequest) (licensedomain.SeatAssignment, error)
	revokeSeatFn   func(context.Context, licensedomain.RevokeSeatRequest) error
	listSeatsFn    func(context.Context, string, string) ([]licensedomain.SeatAssignment, error)
}

func (f *fakeLicenseService) Activate(ctx context.Context, req licensedomain.ActivateLicenseRequest) (licensedomain.License, error) {
	return f.activateFn(ctx, req)
}

func (f *fakeLicenseService) Update(ctx context.Context, req licensedomain.UpdateLicenseRequest) (licensedomain.License, error) {
	return f.updateFn(ctx, req)
}

func (f *fakeLicenseService) GetByID(ctx context.Context, req licensedomain.GetLicenseRequest) (licensedomain.LicenseUsage, error) {
	return f.getByIDFn(ctx, req)
}

func (f *fakeLicenseService) ListByTenant(ctx context.Context, tenantID string) ([]licensedomain.LicenseUsage, error) {
	return f.listByTenantFn(ctx, tenantID)
}

func (f *fakeLicenseService) GrantSeat(ctx context.Context, req licensedomain.GrantSeatRequest) (licensedomain.SeatAssignment, error) {
	return f.grantSeatFn(ctx, req)
}

func (f *fakeLicenseService) RevokeSeat(ctx context.Context, req licensedomain.RevokeSeatRequest) error {
	return f.revokeSeatFn(ctx, req)
}

func (f *fakeLicenseService) ListSeats(ctx context.Context, tenantID, licenseID string) ([]licensedomain.SeatAssignment, error) {
	return f.listSeatsFn(ctx, tenantID, licenseID)
}

func newLicenseTestRouter(svc licensedomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	srv := &Server{licenseSvc: svc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/admin/tenants/:id/licenses", srv.ActivateLicense)
	router.POST("/admin/tenants/:id/licenses/:licenseId/seats", srv.GrantSeat)
	router.DELETE("/admin/tenants/:id/licenses/:licenseId/seats/:userId", srv.RevokeSeat)
	return router
}

func TestGrantSeatNoSeatsAvailable(t *testing.T) {
	svc := &fakeLicenseService{
		grantSeatFn: func(_ context.Context, _ licensedomain.GrantSeatRequest) (licensedomain.SeatAssignment, error) {
			return licensedomain.SeatAssignment{}, licensedomain.ErrNoSeatsAvailable
		},
	}
	router := newLicenseTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/admin/tenants/1/licenses/2/seats", strings.NewReader(`{"user_id":"3"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "NO_SEATS_AVAILABLE") {
		t.Fatalf("expected NO_SEATS_AVAILABLE in body, got %s", rec.Body.String())
	}
}

func TestGrantSeatAlreadyLicensed(t *testing.T) {
	svc := &fakeLicenseService{
		grantSeatFn: func(_ context.Context, _ licensedomain.GrantSeatRequest) (licensedomain.SeatAssignment, error) {
			return licensedomain.SeatAssignment{}, licensedomain.ErrAlreadyLicensed
		},
	}
	router := newLicenseTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/admin/tenants/1/licenses/2/seats", strings.NewReader(`{"user_id":"3"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "ALREADY_LICENSED") {
		t.Fatalf("expected ALREADY_LICENSED in body, got %s", rec.Body.String())
	}
}

func TestGrantSeatSuccess(t *testing.T) {
	var captured licensedomain.GrantSeatRequest
	svc := &fakeLicenseService{
		grantSeatFn: func(_ context.Context, req licensedomain.GrantSeatRequest) (licensedomain.SeatAssignment, error) {
			captured = req
			return licensedomain.SeatAssignment{ID: 10, LicenseID: 2, UserID: 3}, nil
		},
	}
	router := newLicenseTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/admin/tenants/1/licenses/2/seats", strings.NewReader(`{"user_id":"3","user_type_id":"5"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.TenantID != "1" || captured.LicenseID != "2" || captured.UserID != "3" || captured.UserTypeID != "5" {
		t.Fatalf("unexpected request: %+v", captured)
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.ID != "10" {
		t.Fatalf("expected seat id 10, got %q", resp.Data.ID)
	}
}

func TestActivateLicenseConflict(t *testing.T) {
	svc := &fakeLicenseService{
		activateFn: func(_ context.Context, _ licensedomain.ActivateLicenseRequest) (licensedomain.License, error) {
			return licensedomain.License{}, licensedomain.ErrLicenseExists
		},
	}
	router := newLicenseTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/admin/tenants/1/licenses", strings.NewReader(`{"application_id":"7"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRevokeSeatNotFound(t *testing.T) {
	svc := &fakeLicenseService{
		revokeSeatFn: func(_ context.Context, _ licensedomain.RevokeSeatRequest) error {
			return licensedomain.ErrNotFound
		},
	}
	router := newLicenseTestRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/admin/tenants/1/licenses/2/seats/3", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
