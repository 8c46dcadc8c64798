package handlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ZiyadBin/rain-system/internal/domain"
	"github.com/ZiyadBin/rain-system/internal/http/middleware"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

// GET /api
func Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Rain System API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GET /api/health checks that both collections are readable.
func (h *Handler) Health(c *gin.Context) {
	for _, col := range []string{domain.CollectionTickets, domain.CollectionBooked} {
		if _, err := h.Store.Read(c.Request.Context(), col); err != nil {
			utils.LogFailure(middleware.GetRequestID(c), "system", "health", err, zap.String("collection", col))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": "store unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /api/routes
func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}

// POST /api/admin/snapshot
func (h *Handler) RunSnapshot(c *gin.Context) {
	res, err := h.Snapshot.RunOnce(c.Request.Context())
	if err != nil {
		RespondDomainError(c, domain.InternalError{Msg: "snapshot failed", Err: err})
		return
	}
	utils.LogEvent(middleware.GetRequestID(c), "system", "snapshot", "manual snapshot", zap.String("dir", res.Dir))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": res})
}
