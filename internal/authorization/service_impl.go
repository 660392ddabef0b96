package authorization

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	auditdomain "github.com/smallbiznis/tessera/internal/audit/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectTenant      = "tenant"
	ObjectUser        = "user"
	ObjectApplication = "application"
	ObjectLicense     = "license"
	ObjectPricing     = "pricing"
	ObjectQuota       = "quota"
	ObjectAuditLog    = "audit_log"
	ObjectReport      = "report"
)

const (
	ActionView   = "view"
	ActionCreate = "create"
	ActionUpdate = "update"

	ActionPricingEnd   = "pricing.end"
	ActionSeatGrant    = "seat.grant"
	ActionSeatRevoke   = "seat.revoke"
	ActionQuotaAssign  = "quota.assign"
	ActionReportExport = "report.export"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
	AuditSvc auditdomain.Service `optional:"true"`
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
	auditSvc auditdomain.Service
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
		auditSvc: p.AuditSvc,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, tenantID string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return ErrInvalidTenant
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, roleName, actorID, err := s.resolveActor(ctx, actor, tenantID)
	if err != nil {
		s.auditDenied(ctx, actorID, tenantID, object, action)
		return err
	}

	dom := fmt.Sprintf("tenant:%s", tenantID)
	if err := s.ensureGrouping(subject, roleName, dom); err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, dom, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.auditDenied(ctx, actorID, tenantID, object, action)
		return ErrForbidden
	}

	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string, tenantID string) (string, string, snowflake.ID, error) {
	if actor == "system" {
		return actor, "role:system", 0, nil
	}
	if strings.HasPrefix(actor, "user:") {
		raw := strings.TrimPrefix(actor, "user:")
		userID, err := snowflake.ParseString(raw)
		if err != nil || userID == 0 {
			return "", "", 0, ErrInvalidActor
		}
		parsedTenantID, err := snowflake.ParseString(tenantID)
		if err != nil || parsedTenantID == 0 {
			return actor, "", userID, ErrInvalidTenant
		}
		role, err := s.roleForUser(ctx, parsedTenantID, userID)
		if err != nil {
			return actor, "", userID, err
		}
		return actor, fmt.Sprintf("role:%s", strings.ToLower(role)), userID, nil
	}
	return "", "", 0, ErrInvalidActor
}

func (s *ServiceImpl) roleForUser(ctx context.Context, tenantID snowflake.ID, userID snowflake.ID) (string, error) {
	var row struct {
		Role string `gorm:"column:role"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT role
		 FROM users
		 WHERE tenant_id = ? AND id = ?
		 LIMIT 1`,
		tenantID,
		userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}

	role := strings.TrimSpace(row.Role)
	if role == "" {
		return "", ErrForbidden
	}
	return role, nil
}

func (s *ServiceImpl) ensureGrouping(subject string, roleName string, dom string) error {
	existing, err := s.enforcer.GetFilteredGroupingPolicy(0, subject, "", dom)
	if err != nil {
		return err
	}
	for _, rule := range existing {
		if len(rule) < 2 {
			continue
		}
		if rule[1] != roleName {
			params := make([]interface{}, 0, len(rule))
			for _, value := range rule {
				params = append(params, value)
			}
			_, _ = s.enforcer.RemoveGroupingPolicy(params...)
		}
	}

	has, err := s.enforcer.HasGroupingPolicy(subject, roleName, dom)
	if err != nil {
		return err
	}
	if has {
		return nil
	}
	_, err = s.enforcer.AddGroupingPolicy(subject, roleName, dom)
	return err
}

func (s *ServiceImpl) auditDenied(ctx context.Context, actorID snowflake.ID, tenantID string, object string, action string) {
	if s.auditSvc == nil {
		return
	}
	parsedTenantID, err := snowflake.ParseString(tenantID)
	if err != nil || parsedTenantID == 0 {
		return
	}
	s.auditSvc.Record(ctx, auditdomain.Entry{
		TenantID:   parsedTenantID,
		ActorID:    actorID,
		Action:     "authorization.denied",
		Resource:   "authorization",
		ResourceID: object,
		Detail: map[string]any{
			"object": object,
			"action": action,
		},
	})
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{"role:member", ObjectTenant, ActionView},
		{"role:member", ObjectApplication, ActionView},
		{"role:member", ObjectLicense, ActionView},
		{"role:member", ObjectPricing, ActionView},
		{"role:member", ObjectQuota, ActionView},

		{"role:admin", ObjectTenant, ActionView},
		{"role:admin", ObjectTenant, ActionUpdate},
		{"role:admin", ObjectUser, ActionView},
		{"role:admin", ObjectUser, ActionCreate},
		{"role:admin", ObjectUser, ActionUpdate},
		{"role:admin", ObjectApplication, ActionView},
		{"role:admin", ObjectApplication, ActionCreate},
		{"role:admin", ObjectApplication, ActionUpdate},
		{"role:admin", ObjectLicense, ActionView},
		{"role:admin", ObjectLicense, ActionCreate},
		{"role:admin", ObjectLicense, ActionUpdate},
		{"role:admin", ObjectLicense, ActionSeatGrant},
		{"role:admin", ObjectLicense, ActionSeatRevoke},
		{"role:admin", ObjectPricing, ActionView},
		{"role:admin", ObjectPricing, ActionCreate},
		{"role:admin", ObjectPricing, ActionPricingEnd},
		{"role:admin", ObjectQuota, ActionView},
		{"role:admin", ObjectQuota, ActionQuotaAssign},
		{"role:admin", ObjectAuditLog, ActionView},
		{"role:admin", ObjectReport, ActionReportExport},

		{"role:owner", ObjectTenant, "*"},
		{"role:owner", ObjectUser, "*"},
		{"role:owner", ObjectApplication, "*"},
		{"role:owner", ObjectLicense, "*"},
		{"role:owner", ObjectPricing, "*"},
		{"role:owner", ObjectQuota, "*"},
		{"role:owner", ObjectAuditLog, "*"},
		{"role:owner", ObjectReport, "*"},

		{"role:system", ObjectTenant, "*"},
		{"role:system", ObjectUser, "*"},
		{"role:system", ObjectApplication, "*"},
		{"role:system", ObjectLicense, "*"},
		{"role:system", ObjectPricing, "*"},
		{"role:system", ObjectQuota, "*"},
		{"role:system", ObjectAuditLog, "*"},
		{"role:system", ObjectReport, "*"},
	}

	for _, policy := range policies {
		params := make([]interface{}, 0, len(policy))
		for _, value := range policy {
			params = append(params, value)
		}
		has, err := enforcer.HasPolicy(params...)
		if err != nil {
			return err
		}
		if has {
			continue
		}
		if _, err := enforcer.AddPolicy(params...); err != nil {
			return err
		}
	}
	return nil
}
