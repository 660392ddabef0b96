package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/tessera/internal/tenantctx"
	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
)

const (
	HeaderTenant   = "X-Tenant-ID"
	contextUserKey = "current_user"
)

// AuthRequired resolves the session cookie to a user and rejects the
// request when no valid session exists.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		resp, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserKey, resp.User)
		c.Next()
	}
}

// TenantContext injects the active tenant into the request context. The
// authenticated user's tenant is the default; owners may administer
// another tenant by sending X-Tenant-ID.
func (s *Server) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		tenantID := user.TenantID
		if header := strings.TrimSpace(c.GetHeader(HeaderTenant)); header != "" {
			parsed, err := snowflake.ParseString(header)
			if err != nil || parsed == 0 {
				AbortWithError(c, newValidationError("tenant_id", "invalid_tenant", "invalid tenant id"))
				return
			}
			if parsed != user.TenantID && user.Role != userdomain.RoleOwner {
				AbortWithError(c, ErrForbidden)
				return
			}
			tenantID = parsed
		}

		ctx := tenantctx.WithTenantID(c.Request.Context(), tenantID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole rejects the request unless the user's role is one of the
// given roles.
func (s *Server) RequireRole(roles ...userdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		for _, role := range roles {
			if user.Role == role {
				c.Next()
				return
			}
		}
		AbortWithError(c, ErrForbidden)
	}
}

// authorizeTenantAction asks the RBAC enforcer whether the user may
// perform the action on the object within the active tenant.
func (s *Server) authorizeTenantAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		tenantID, ok := tenantctx.TenantIDFromContext(c.Request.Context())
		if !ok {
			tenantID = user.TenantID
		}

		actor := "user:" + user.ID.String()
		if err := s.authzSvc.Authorize(c.Request.Context(), actor, tenantID.String(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) (userdomain.User, bool) {
	value, exists := c.Get(contextUserKey)
	if !exists {
		return userdomain.User{}, false
	}
	user, ok := value.(userdomain.User)
	return user, ok
}

func currentTenantID(c *gin.Context) snowflake.ID {
	if id, ok := tenantctx.TenantIDFromContext(c.Request.Context()); ok {
		return id
	}
	if user, ok := currentUser(c); ok {
		return user.TenantID
	}
	return 0
}
