package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	tenantdomain "github.com/smallbiznis/tessera/internal/tenant/domain"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
)

type createTenantRequest struct {
	Name string   `json:"name"`
	Slug string   `json:"slug"`
	Tags []string `json:"tags"`
}

func (s *Server) CreateTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.Create(c.Request.Context(), tenantdomain.CreateTenantRequest{
		Name: strings.TrimSpace(req.Name),
		Slug: strings.TrimSpace(req.Slug),
		Tags: req.Tags,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "tenant.create", "tenant", resp.ID.String(), map[string]any{
		"name": resp.Name,
		"slug": resp.Slug,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateTenantRequest struct {
	Name   string   `json:"name"`
	Status string   `json:"status"`
	Tags   []string `json:"tags"`
}

func (s *Server) UpdateTenant(c *gin.Context) {
	var req updateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.Update(c.Request.Context(), tenantdomain.UpdateTenantRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Name:   strings.TrimSpace(req.Name),
		Status: strings.TrimSpace(req.Status),
		Tags:   req.Tags,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "tenant.update", "tenant", resp.ID.String(), map[string]any{
		"name":   resp.Name,
		"status": string(resp.Status),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTenantByID(c *gin.Context) {
	resp, err := s.tenantSvc.GetByID(c.Request.Context(), tenantdomain.GetTenantRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTenants(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Name   string `form:"name"`
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.tenantSvc.List(c.Request.Context(), tenantdomain.ListTenantRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  int32(query.PageSize),
		Name:      strings.TrimSpace(query.Name),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Tenants, "page_info": resp.PageInfo})
}

func (s *Server) ListTenantAddresses(c *gin.Context) {
	resp, err := s.tenantSvc.ListAddresses(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type addressPayload struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2"`
	City        string `json:"city"`
	Region      string `json:"region"`
	PostalCode  string `json:"postal_code"`
	CountryCode string `json:"country_code"`
}

type saveAddressesRequest struct {
	Addresses []addressPayload `json:"addresses"`
}

// SaveTenantAddresses replaces the tenant's address set. The service
// diffs the submission against the stored snapshot and issues the
// create/update/delete batches.
func (s *Server) SaveTenantAddresses(c *gin.Context) {
	var req saveAddressesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID := strings.TrimSpace(c.Param("id"))
	inputs := make([]tenantdomain.AddressInput, 0, len(req.Addresses))
	for _, a := range req.Addresses {
		inputs = append(inputs, tenantdomain.AddressInput{
			ID:          strings.TrimSpace(a.ID),
			Type:        strings.TrimSpace(a.Type),
			Line1:       strings.TrimSpace(a.Line1),
			Line2:       strings.TrimSpace(a.Line2),
			City:        strings.TrimSpace(a.City),
			Region:      strings.TrimSpace(a.Region),
			PostalCode:  strings.TrimSpace(a.PostalCode),
			CountryCode: strings.TrimSpace(a.CountryCode),
		})
	}

	resp, err := s.tenantSvc.SaveAddresses(c.Request.Context(), tenantdomain.SaveAddressesRequest{
		TenantID:  tenantID,
		Addresses: inputs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "tenant.addresses.save", "tenant", tenantID, map[string]any{
		"count": len(resp),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTenantContacts(c *gin.Context) {
	resp, err := s.tenantSvc.ListContacts(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type contactPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
}

type saveContactsRequest struct {
	Contacts []contactPayload `json:"contacts"`
}

func (s *Server) SaveTenantContacts(c *gin.Context) {
	var req saveContactsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	tenantID := strings.TrimSpace(c.Param("id"))
	inputs := make([]tenantdomain.ContactInput, 0, len(req.Contacts))
	for _, item := range req.Contacts {
		inputs = append(inputs, tenantdomain.ContactInput{
			ID:    strings.TrimSpace(item.ID),
			Name:  strings.TrimSpace(item.Name),
			Email: strings.TrimSpace(item.Email),
			Phone: strings.TrimSpace(item.Phone),
			Role:  strings.TrimSpace(item.Role),
		})
	}

	resp, err := s.tenantSvc.SaveContacts(c.Request.Context(), tenantdomain.SaveContactsRequest{
		TenantID: tenantID,
		Contacts: inputs,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "tenant.contacts.save", "tenant", tenantID, map[string]any{
		"count": len(resp),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isTenantValidationError(err error) bool {
	switch err {
	case tenantdomain.ErrInvalidID,
		tenantdomain.ErrInvalidName,
		tenantdomain.ErrInvalidSlug,
		tenantdomain.ErrInvalidStatus,
		tenantdomain.ErrInvalidAddressType,
		tenantdomain.ErrInvalidAddress,
		tenantdomain.ErrInvalidContact:
		return true
	default:
		return false
	}
}
