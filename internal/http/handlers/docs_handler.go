package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ZiyadBin/rain-system/internal/http/middleware"
	"github.com/ZiyadBin/rain-system/internal/services"
)

// GET /api/booked/:id/slip returns the booking slip PDF (inline).
func (h *Handler) GetBookingSlip(c *gin.Context) {
	svc := services.DocsService{
		Booking:   h.Booking,
		RequestID: middleware.GetRequestID(c),
	}
	pdfBytes, filename, err := svc.GenerateSlip(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
