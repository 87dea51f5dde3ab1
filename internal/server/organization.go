package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	organizationdomain "github.com/jobledger/jobledger/internal/organization/domain"
)

func (s *Server) GetOrganizationProfile(c *gin.Context) {
	profile, err := s.orgSvc.Get(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}

func (s *Server) UpdateOrganizationProfile(c *gin.Context) {
	var req organizationdomain.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	profile, err := s.orgSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": profile})
}
