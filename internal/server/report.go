package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/smallbiznis/tessera/internal/application/domain"
	"github.com/smallbiznis/tessera/internal/providers/pdf"
	quotadomain "github.com/smallbiznis/tessera/internal/quota/domain"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
)

// ExportTenantReport renders a PDF summary of the tenant's licenses,
// seat usage and transcription quota.
func (s *Server) ExportTenantReport(c *gin.Context) {
	tenantID := strings.TrimSpace(c.Param("id"))

	tenant, err := s.tenantSvc.GetByID(c.Request.Context(), tenantdomain.GetTenantRequest{ID: tenantID})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	licenses, err := s.licenseSvc.ListByTenant(c.Request.Context(), tenantID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	data := pdf.TenantReportData{
		TenantName:  tenant.Name,
		TenantSlug:  tenant.Slug,
		Status:      string(tenant.Status),
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		QuotaPlan:   "none",
	}

	quota, err := s.quotaSvc.GetByTenant(c.Request.Context(), tenantID)
	switch {
	case err == nil:
		data.QuotaPlan = quota.PlanCode
		if quota.Unlimited() {
			data.IncludedMinutes = "unlimited"
		} else {
			data.IncludedMinutes = strconv.Itoa(quota.IncludedMinutes)
		}
		data.UsedMinutes = strconv.FormatInt(quota.UsedMinutes, 10)
	case errors.Is(err, quotadomain.ErrNotFound):
		// No plan assigned yet; the report still renders.
	default:
		AbortWithError(c, err)
		return
	}

	for _, lic := range licenses {
		row := pdf.LicenseRow{
			Status:    string(lic.Status),
			SeatLimit: lic.SeatLimit,
			SeatsUsed: int(lic.SeatsUsed),
		}
		app, err := s.applicationSvc.GetByID(c.Request.Context(), applicationdomain.GetApplicationRequest{
			ID: lic.ApplicationID.String(),
		})
		if err == nil {
			row.ApplicationName = app.Name
			row.ApplicationCode = app.Code
		} else {
			row.ApplicationName = lic.ApplicationID.String()
		}
		data.Licenses = append(data.Licenses, row)
	}

	reader, err := s.pdfProvider.GenerateTenantReport(c.Request.Context(), data)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "tenant.report.export", "tenant", tenantID, map[string]any{
		"licenses": len(data.Licenses),
	})

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tenant.Slug+"-report.pdf"))
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
