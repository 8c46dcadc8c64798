package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/domain/models"
	"github.com/ZiyadBin/rain-system/internal/http/middleware"
	"github.com/ZiyadBin/rain-system/internal/metrics"
	"github.com/ZiyadBin/rain-system/internal/services"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

// GET /api/tickets?filter=&type=&includeDuplicates=&limit=
func (h *Handler) ListTickets(c *gin.Context) {
	q := services.ListQuery{
		Filter:            c.Query("filter"),
		Type:              domain.ParseQueueType(c.Query("type")),
		IncludeDuplicates: strings.EqualFold(c.Query("includeDuplicates"), "true"),
	}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			RespondDomainError(c, domain.ValidationError{Field: "limit", Msg: "must be a non-negative integer"})
			return
		}
		q.Limit = n
	}

	list, err := h.Tickets.List(c.Request.Context(), q, middleware.GetIdentity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/tickets/duplicates
func (h *Handler) ListDuplicateTickets(c *gin.Context) {
	list, err := h.Tickets.ListDuplicates(c.Request.Context())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/tickets/:id
func (h *Handler) GetTicket(c *gin.Context) {
	t, err := h.Tickets.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

// POST /api/tickets
func (h *Handler) CreateTicket(c *gin.Context) {
	var in models.CreateTicketInput
	if !BindJSONOrError(c, &in) {
		return
	}
	res, err := h.Tickets.Create(c.Request.Context(), in, middleware.GetIdentity(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	msg := "Ticket saved successfully"
	if res.Duplicate.IsDuplicate {
		msg = "Ticket saved but flagged as possible duplicate (" + res.Duplicate.MatchType + ")"
	}
	metrics.TicketsCreated.WithLabelValues(res.Duplicate.Label()).Inc()

	body := gin.H{
		"success":     true,
		"ticketId":    res.Ticket.ID,
		"isDuplicate": res.Duplicate.IsDuplicate,
		"message":     msg,
	}
	if res.Duplicate.IsDuplicate {
		body["duplicate_details"] = res.Ticket.DuplicateDetails
	}
	c.JSON(http.StatusCreated, body)
}

// PUT /api/tickets/:id
func (h *Handler) UpdateTicket(c *gin.Context) {
	var upd models.TicketUpdate
	if !BindJSONOrError(c, &upd) {
		return
	}
	id := c.Param("id")
	if err := h.Tickets.Update(c.Request.Context(), id, upd); err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "tickets", "update", "ticket_id="+id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ticket updated successfully"})
}

// DELETE /api/tickets/:id
func (h *Handler) DeleteTicket(c *gin.Context) {
	id := c.Param("id")
	if err := h.Tickets.Delete(c.Request.Context(), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "tickets", "delete", "ticket_id="+id)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Ticket deleted successfully"})
}

type bulkRequest struct {
	IDs   []string `json:"ids" binding:"required,min=1"`
	Staff string   `json:"staff"`
	PNR   string   `json:"pnr"`
}

func respondBulk(c *gin.Context, action string, res services.BulkResult) {
	msg := strconv.Itoa(len(res.Succeeded)) + " ticket(s) " + action
	if len(res.Failed) > 0 {
		msg += ", " + strconv.Itoa(len(res.Failed)) + " failed"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   len(res.Failed) == 0,
		"succeeded": res.Succeeded,
		"failed":    res.Failed,
		"message":   msg,
	})
}

// POST /api/tickets/bulk/delete
func (h *Handler) BulkDeleteTickets(c *gin.Context) {
	var req bulkRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Tickets.BulkDelete(c.Request.Context(), req.IDs)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondBulk(c, "deleted", res)
}

// POST /api/tickets/bulk/assign
func (h *Handler) BulkAssignTickets(c *gin.Context) {
	var req bulkRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Tickets.BulkAssign(c.Request.Context(), req.IDs, req.Staff)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondBulk(c, "assigned to "+strings.TrimSpace(req.Staff), res)
}

// POST /api/tickets/bulk/book
func (h *Handler) BulkBookTickets(c *gin.Context) {
	var req bulkRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	res, err := h.Booking.BulkBook(c.Request.Context(), req.IDs, req.PNR)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	respondBulk(c, "booked", res)
}
