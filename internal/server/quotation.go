package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	quotationdomain "github.com/jobledger/jobledger/internal/quotation/domain"
)

func (s *Server) CreateQuotation(c *gin.Context) {
	var req quotationdomain.CreateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	item, err := s.quotationSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.DocumentsCreated.WithLabelValues("quotation").Inc()
	c.JSON(http.StatusCreated, gin.H{"data": item})
}

func (s *Server) UpdateQuotation(c *gin.Context) {
	var req quotationdomain.UpdateQuotationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	item, err := s.quotationSvc.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.DocumentsUpdated.WithLabelValues("quotation").Inc()
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) UpdateQuotationStatus(c *gin.Context) {
	var req struct {
		Status quotationdomain.QuotationStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid request body"))
		return
	}

	item, err := s.quotationSvc.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.DocumentsUpdated.WithLabelValues("quotation").Inc()
	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) GetQuotationByID(c *gin.Context) {
	item, err := s.quotationSvc.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": item})
}

func (s *Server) ListQuotations(c *gin.Context) {
	var req quotationdomain.ListQuotationRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, newValidationError("request", "invalid_request", "invalid query parameters"))
		return
	}

	resp, err := s.quotationSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp.Quotations, "page_info": resp.PageInfo})
}

func (s *Server) DeleteQuotation(c *gin.Context) {
	if err := s.quotationSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.DocumentsDeleted.WithLabelValues("quotation").Inc()
	c.Status(http.StatusNoContent)
}
