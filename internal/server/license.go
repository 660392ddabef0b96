package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	licensedomain "github.com/smallbiznis/tessera/internal/license/domain"
)

type activateLicenseRequest struct {
	ApplicationID string `json:"application_id"`
	SeatLimit     int    `json:"seat_limit"`
}

func (s *Server) ActivateLicense(c *gin.Context) {
	var req activateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.licenseSvc.Activate(c.Request.Context(), licensedomain.ActivateLicenseRequest{
		TenantID:      strings.TrimSpace(c.Param("id")),
		ApplicationID: strings.TrimSpace(req.ApplicationID),
		SeatLimit:     req.SeatLimit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "license.activate", "license", resp.ID.String(), map[string]any{
		"application_id": resp.ApplicationID.String(),
		"seat_limit":     resp.SeatLimit,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateLicenseRequest struct {
	SeatLimit int    `json:"seat_limit"`
	Status    string `json:"status"`
}

func (s *Server) UpdateLicense(c *gin.Context) {
	var req updateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.licenseSvc.Update(c.Request.Context(), licensedomain.UpdateLicenseRequest{
		TenantID:  strings.TrimSpace(c.Param("id")),
		ID:        strings.TrimSpace(c.Param("licenseId")),
		SeatLimit: req.SeatLimit,
		Status:    strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "license.update", "license", resp.ID.String(), map[string]any{
		"seat_limit": resp.SeatLimit,
		"status":     string(resp.Status),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetLicenseByID(c *gin.Context) {
	resp, err := s.licenseSvc.GetByID(c.Request.Context(), licensedomain.GetLicenseRequest{
		TenantID: strings.TrimSpace(c.Param("id")),
		ID:       strings.TrimSpace(c.Param("licenseId")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListLicenses(c *gin.Context) {
	resp, err := s.licenseSvc.ListByTenant(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type grantSeatRequest struct {
	UserID     string `json:"user_id"`
	UserTypeID string `json:"user_type_id"`
}

// GrantSeat consumes one seat. Seat counting happens inside the grant
// transaction; a full license returns 422 NO_SEATS_AVAILABLE and a
// duplicate grant returns 422 ALREADY_LICENSED.
func (s *Server) GrantSeat(c *gin.Context) {
	var req grantSeatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.licenseSvc.GrantSeat(c.Request.Context(), licensedomain.GrantSeatRequest{
		TenantID:   strings.TrimSpace(c.Param("id")),
		LicenseID:  strings.TrimSpace(c.Param("licenseId")),
		UserID:     strings.TrimSpace(req.UserID),
		UserTypeID: strings.TrimSpace(req.UserTypeID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "license.seat.grant", "seat_assignment", resp.ID.String(), map[string]any{
		"license_id": resp.LicenseID.String(),
		"user_id":    resp.UserID.String(),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RevokeSeat(c *gin.Context) {
	tenantID := strings.TrimSpace(c.Param("id"))
	licenseID := strings.TrimSpace(c.Param("licenseId"))
	userID := strings.TrimSpace(c.Param("userId"))

	err := s.licenseSvc.RevokeSeat(c.Request.Context(), licensedomain.RevokeSeatRequest{
		TenantID:  tenantID,
		LicenseID: licenseID,
		UserID:    userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "license.seat.revoke", "seat_assignment", "", map[string]any{
		"license_id": licenseID,
		"user_id":    userID,
	})

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"revoked": true}})
}

func (s *Server) ListSeats(c *gin.Context) {
	resp, err := s.licenseSvc.ListSeats(c.Request.Context(), strings.TrimSpace(c.Param("id")), strings.TrimSpace(c.Param("licenseId")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isLicenseValidationError(err error) bool {
	switch err {
	case licensedomain.ErrInvalidTenant,
		licensedomain.ErrInvalidID,
		licensedomain.ErrInvalidApplication,
		licensedomain.ErrInvalidUser,
		licensedomain.ErrInvalidSeatLimit,
		licensedomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}
