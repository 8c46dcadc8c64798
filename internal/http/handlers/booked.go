package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
	"github.com/ZiyadBin/rain-system/internal/http/middleware"
	"github.com/ZiyadBin/rain-system/internal/metrics"
	"github.com/ZiyadBin/rain-system/internal/services"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

// POST /api/booked
func (h *Handler) PromoteTicket(c *gin.Context) {
	var in models.PromoteInput
	if !BindJSONOrError(c, &in) {
		metrics.Promotions.WithLabelValues(metrics.PromoteInvalid).Inc()
		return
	}
	b, err := h.Booking.Promote(c.Request.Context(), in)
	if err != nil {
		metrics.Promotions.WithLabelValues(promoteOutcome(err)).Inc()
		RespondDomainError(c, err)
		return
	}
	metrics.Promotions.WithLabelValues(metrics.PromoteOK).Inc()
	utils.LogEvent(middleware.GetRequestID(c), "booked", "promote", "ticket booked",
		zap.String("ticket_id", b.OriginalTicketID), zap.String("booked_id", b.ID))

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Ticket marked as booked successfully",
		"bookedTicket": b,
	})
}

func promoteOutcome(err error) string {
	switch {
	case domain.IsValidation(err):
		return metrics.PromoteInvalid
	case domain.IsNotFound(err):
		return metrics.PromoteNotFound
	case errors.Is(err, domain.ErrPromoteIncomplete):
		return metrics.PromoteIncomplete
	default:
		return metrics.PromoteError
	}
}

// GET /api/booked?period=&staff=
func (h *Handler) ListBooked(c *gin.Context) {
	list, err := h.Booking.ListBooked(c.Request.Context(), services.BookedQuery{
		Period: domain.Period(c.Query("period")),
		Staff:  c.Query("staff"),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": list})
}

// PUT /api/booked/:id
func (h *Handler) UpdateBooked(c *gin.Context) {
	var upd models.BookedUpdate
	if !BindJSONOrError(c, &upd) {
		return
	}
	id := c.Param("id")
	if err := h.Booking.UpdateBooked(c.Request.Context(), id, upd); err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "booked", "update", "booked_id="+id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booked ticket updated successfully"})
}

// GET /api/booked/export?startDate=&endDate=&staff=
func (h *Handler) ExportBooked(c *gin.Context) {
	data, filename, err := h.Booking.ExportCSV(c.Request.Context(), services.ExportQuery{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		Staff:     c.Query("staff"),
	})
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
