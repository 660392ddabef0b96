package server

import (
	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/tessera/internal/audit/domain"
)

// recordAudit writes an audit entry for a mutating admin action. Audit
// failures never fail the request.
func (s *Server) recordAudit(c *gin.Context, action, resource, resourceID string, detail map[string]any) {
	if s.auditSvc == nil {
		return
	}

	entry := auditdomain.Entry{
		TenantID:   currentTenantID(c),
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Detail:     detail,
	}
	if user, ok := currentUser(c); ok {
		entry.ActorID = user.ID
		entry.ActorEmail = user.Email
	}

	s.auditSvc.Record(c.Request.Context(), entry)
}
