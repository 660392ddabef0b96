package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	quotadomain "github.com/smallbiznis/tessera/internal/quota/domain"
)

func (s *Server) ListQuotaPlans(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.quotaSvc.ListPlans(c.Request.Context())})
}

type assignQuotaRequest struct {
	PlanCode string `json:"plan_code"`
}

func (s *Server) AssignTenantQuota(c *gin.Context) {
	var req assignQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotaSvc.Assign(c.Request.Context(), quotadomain.AssignQuotaRequest{
		TenantID: strings.TrimSpace(c.Param("id")),
		PlanCode: strings.TrimSpace(req.PlanCode),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "quota.assign", "tenant_quota", resp.ID.String(), map[string]any{
		"tenant_id": resp.TenantID.String(),
		"plan_code": resp.PlanCode,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTenantQuota(c *gin.Context) {
	resp, err := s.quotaSvc.GetByTenant(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type recordUsageRequest struct {
	Minutes int64 `json:"minutes"`
}

func (s *Server) RecordQuotaUsage(c *gin.Context) {
	var req recordUsageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quotaSvc.RecordUsage(c.Request.Context(), quotadomain.RecordUsageRequest{
		TenantID: strings.TrimSpace(c.Param("id")),
		Minutes:  req.Minutes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isQuotaValidationError(err error) bool {
	switch err {
	case quotadomain.ErrInvalidTenant,
		quotadomain.ErrInvalidPlan,
		quotadomain.ErrInvalidMinutes:
		return true
	default:
		return false
	}
}
