package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	applicationdomain "github.com/smallbiznis/tessera/internal/application/domain"
	"github.com/smallbiznis/tessera/pkg/db/pagination"
)

type createApplicationRequest struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) CreateApplication(c *gin.Context) {
	var req createApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.applicationSvc.Create(c.Request.Context(), applicationdomain.CreateApplicationRequest{
		Code:        strings.TrimSpace(req.Code),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "application.create", "application", resp.ID.String(), map[string]any{
		"code": resp.Code,
		"name": resp.Name,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type updateApplicationRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
}

func (s *Server) UpdateApplication(c *gin.Context) {
	var req updateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.applicationSvc.Update(c.Request.Context(), applicationdomain.UpdateApplicationRequest{
		ID:          strings.TrimSpace(c.Param("id")),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Status:      strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "application.update", "application", resp.ID.String(), map[string]any{
		"status": string(resp.Status),
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetApplicationByID(c *gin.Context) {
	resp, err := s.applicationSvc.GetByID(c.Request.Context(), applicationdomain.GetApplicationRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListApplications(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.applicationSvc.List(c.Request.Context(), applicationdomain.ListApplicationRequest{
		PageToken: strings.TrimSpace(query.PageToken),
		PageSize:  int32(query.PageSize),
		Status:    strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Applications, "page_info": resp.PageInfo})
}

type createUserTypeRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Rank int    `json:"rank"`
}

func (s *Server) CreateUserType(c *gin.Context) {
	var req createUserTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.applicationSvc.CreateUserType(c.Request.Context(), applicationdomain.CreateUserTypeRequest{
		ApplicationID: strings.TrimSpace(c.Param("id")),
		Code:          strings.TrimSpace(req.Code),
		Name:          strings.TrimSpace(req.Name),
		Rank:          req.Rank,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.recordAudit(c, "application.user_type.create", "user_type", resp.ID.String(), map[string]any{
		"application_id": resp.ApplicationID.String(),
		"code":           resp.Code,
	})

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListUserTypes(c *gin.Context) {
	resp, err := s.applicationSvc.ListUserTypes(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isApplicationValidationError(err error) bool {
	switch err {
	case applicationdomain.ErrInvalidID,
		applicationdomain.ErrInvalidCode,
		applicationdomain.ErrInvalidName,
		applicationdomain.ErrInvalidStatus:
		return true
	default:
		return false
	}
}
