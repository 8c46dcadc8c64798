package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/reports/stats
func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.Reports.Stats(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": stats})
}

// GET /api/reports/analytics
func (h *Handler) GetAnalytics(c *gin.Context) {
	a, err := h.Reports.Analytics(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": a})
}
