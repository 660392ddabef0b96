package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/tessera/internal/application"
	applicationdomain "github.com/smallbiznis/tessera/internal/application/domain"
	"github.com/smallbiznis/tessera/internal/audit"
	auditdomain "github.com/smallbiznis/tessera/internal/audit/domain"
	"github.com/smallbiznis/tessera/internal/auth"
	authdomain "github.com/smallbiznis/tessera/internal/auth/domain"
	"github.com/smallbiznis/tessera/internal/auth/session"
	"github.com/smallbiznis/tessera/internal/authorization"
	"github.com/smallbiznis/tessera/internal/config"
	"github.com/smallbiznis/tessera/internal/license"
	licensedomain "github.com/smallbiznis/tessera/internal/license/domain"
	"github.com/smallbiznis/tessera/internal/observability"
	obslogger "github.com/smallbiznis/tessera/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/tessera/internal/observability/metrics"
	obstracing "github.com/smallbiznis/tessera/internal/observability/tracing"
	"github.com/smallbiznis/tessera/internal/pricing"
	pricingdomain "github.com/smallbiznis/tessera/internal/pricing/domain"
	"github.com/smallbiznis/tessera/internal/providers/pdf"
	"github.com/smallbiznis/tessera/internal/quota"
	quotadomain "github.com/smallbiznis/tessera/internal/quota/domain"
	"github.com/smallbiznis/tessera/internal/ratelimit"
	"github.com/smallbiznis/tessera/internal/reference"
	referencedomain "github.com/smallbiznis/tessera/internal/reference/domain"
	"github.com/smallbiznis/tessera/internal/tenant"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/internal/user"
	userdomain "github.com/smallbiznis/tessera/internal/user/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	authorization.Module,
	audit.Module,
	auth.Module,
	application.Module,
	license.Module,
	pdf.Module,
	pricing.Module,
	quota.Module,
	ratelimit.Module,
	reference.Module,
	tenant.Module,
	user.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(obslogger.MiddlewareConfig{
		Debug:           obsCfg.Debug(),
		ErrorClassifier: classifyErrorForLog,
	}))
	r.Use(obstracing.GinMiddleware(obsCfg.ServiceName))
	r.Use(obsmetrics.GinMiddleware(httpMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func registerGin(obsCfg observability.Config, httpMetrics *obsmetrics.HTTPMetrics) *gin.Engine {
	return NewEngine(obsCfg, httpMetrics)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine         *gin.Engine
	cfg            config.Config
	db             *gorm.DB
	genID          *snowflake.Node
	sessions       *session.Manager
	authsvc        authdomain.Service
	authzSvc       authorization.Service
	auditSvc       auditdomain.Service
	tenantSvc      tenantdomain.Service
	userSvc        userdomain.Service
	applicationSvc applicationdomain.Service
	licenseSvc     licensedomain.Service
	pricingSvc     pricingdomain.Service
	quotaSvc       quotadomain.Service
	refrepo        referencedomain.Repository
	pdfProvider    pdf.Provider
	obsMetrics     *obsmetrics.Metrics
}

type ServerParams struct {
	fx.In

	Gin            *gin.Engine
	Cfg            config.Config
	DB             *gorm.DB
	GenID          *snowflake.Node
	Sessions       *session.Manager
	Authsvc        authdomain.Service
	AuthzSvc       authorization.Service
	AuditSvc       auditdomain.Service
	TenantSvc      tenantdomain.Service
	UserSvc        userdomain.Service
	ApplicationSvc applicationdomain.Service
	LicenseSvc     licensedomain.Service
	PricingSvc     pricingdomain.Service
	QuotaSvc       quotadomain.Service
	Refrepo        referencedomain.Repository
	PDFProvider    pdf.Provider
	ObsMetrics     *obsmetrics.Metrics `optional:"true"`
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:         p.Gin,
		cfg:            p.Cfg,
		db:             p.DB,
		genID:          p.GenID,
		sessions:       p.Sessions,
		authsvc:        p.Authsvc,
		authzSvc:       p.AuthzSvc,
		auditSvc:       p.AuditSvc,
		tenantSvc:      p.TenantSvc,
		userSvc:        p.UserSvc,
		applicationSvc: p.ApplicationSvc,
		licenseSvc:     p.LicenseSvc,
		pricingSvc:     p.PricingSvc,
		quotaSvc:       p.QuotaSvc,
		refrepo:        p.Refrepo,
		pdfProvider:    p.PDFProvider,
		obsMetrics:     p.ObsMetrics,
	}

	svc.registerAuthRoutes()
	svc.registerAPIRoutes()
	svc.registerAdminRoutes()

	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAuthRoutes() {
	auth := s.engine.Group("/auth")

	auth.POST("/login", s.Login)
	auth.POST("/logout", s.Logout)
	auth.GET("/me", s.Me)
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	api.GET("/countries", s.ListCountries)
	api.GET("/timezones", s.ListTimezones)
	api.GET("/currencies", s.ListCurrencies)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin")

	admin.Use(s.AuthRequired())
	admin.Use(s.TenantContext())

	// -------- Tenants --------
	admin.GET("/tenants", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.ListTenants)
	admin.POST("/tenants", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectTenant, authorization.ActionCreate), s.CreateTenant)
	admin.GET("/tenants/:id", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.GetTenantByID)
	admin.PATCH("/tenants/:id", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectTenant, authorization.ActionUpdate), s.UpdateTenant)

	admin.GET("/tenants/:id/addresses", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.ListTenantAddresses)
	admin.PUT("/tenants/:id/addresses", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectTenant, authorization.ActionUpdate), s.SaveTenantAddresses)
	admin.GET("/tenants/:id/contacts", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.ListTenantContacts)
	admin.PUT("/tenants/:id/contacts", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectTenant, authorization.ActionUpdate), s.SaveTenantContacts)

	admin.GET("/tenants/:id/report.pdf", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectReport, authorization.ActionReportExport), s.ExportTenantReport)

	// -------- Licenses --------
	admin.GET("/tenants/:id/licenses", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.ListLicenses)
	admin.POST("/tenants/:id/licenses", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectLicense, authorization.ActionCreate), s.ActivateLicense)
	admin.GET("/tenants/:id/licenses/:licenseId", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.GetLicenseByID)
	admin.PATCH("/tenants/:id/licenses/:licenseId", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectLicense, authorization.ActionUpdate), s.UpdateLicense)
	admin.GET("/tenants/:id/licenses/:licenseId/seats", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.ListSeats)
	admin.POST("/tenants/:id/licenses/:licenseId/seats", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectLicense, authorization.ActionSeatGrant), s.GrantSeat)
	admin.DELETE("/tenants/:id/licenses/:licenseId/seats/:userId", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectLicense, authorization.ActionSeatRevoke), s.RevokeSeat)

	// -------- Quotas --------
	admin.GET("/quota/plans", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.ListQuotaPlans)
	admin.GET("/tenants/:id/quota", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.GetTenantQuota)
	admin.POST("/tenants/:id/quota", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectQuota, authorization.ActionQuotaAssign), s.AssignTenantQuota)
	admin.POST("/tenants/:id/quota/usage", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectQuota, authorization.ActionUpdate), s.RecordQuotaUsage)

	// -------- Users --------
	admin.GET("/users", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.ListUsers)
	admin.POST("/users", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectUser, authorization.ActionCreate), s.CreateUser)
	admin.GET("/users/:id", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.GetUserByID)
	admin.PATCH("/users/:id", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectUser, authorization.ActionUpdate), s.UpdateUser)

	// -------- Applications --------
	admin.GET("/applications", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.ListApplications)
	admin.POST("/applications", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectApplication, authorization.ActionCreate), s.CreateApplication)
	admin.GET("/applications/:id", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.GetApplicationByID)
	admin.PATCH("/applications/:id", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectApplication, authorization.ActionUpdate), s.UpdateApplication)
	admin.GET("/applications/:id/user-types", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.ListUserTypes)
	admin.POST("/applications/:id/user-types", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectApplication, authorization.ActionUpdate), s.CreateUserType)

	// -------- Pricing --------
	admin.GET("/applications/:id/pricing", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin, userdomain.RoleMember), s.ListPricing)
	admin.POST("/applications/:id/pricing", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectPricing, authorization.ActionCreate), s.CreatePricing)
	admin.POST("/applications/:id/pricing/:periodId/end", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectPricing, authorization.ActionPricingEnd), s.EndPricing)

	// -------- Audit --------
	admin.GET("/audit-logs", s.RequireRole(userdomain.RoleOwner, userdomain.RoleAdmin), s.authorizeTenantAction(authorization.ObjectAuditLog, authorization.ActionView), s.ListAuditLogs)
}
