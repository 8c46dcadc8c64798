package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	intconfig "github.com/ZiyadBin/rain-system/internal/config"
	h "github.com/ZiyadBin/rain-system/internal/http/handlers"
	"github.com/ZiyadBin/rain-system/internal/http/middleware"
	"github.com/ZiyadBin/rain-system/internal/services"
	"github.com/ZiyadBin/rain-system/internal/utils"
)

// NewRouter builds the engine. idem may be nil, which turns idempotency keys off.
func NewRouter(env intconfig.Env, hd *h.Handler, idem middleware.IdempotencyStore) *gin.Engine {
	var verifier middleware.TokenVerifier
	if hd.Auth != nil {
		verifier = hd.Auth
	}

	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(),
		gin.Recovery(),
		middleware.CORS(env.CORSAllowedOrigins),
		middleware.Metrics(),
		middleware.Identity(verifier),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		utils.Logger().Warn("failed to set trusted proxies")
	}
	if err := h.RegisterValidators(); err != nil {
		utils.Logger().Warn("failed to register validators")
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("", h.Status)
		api.GET("/health", hd.Health)
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/login", hd.Login)
		auth.POST("/logout", hd.Logout)
		auth.GET("/verify", hd.Verify)
		auth.GET("/users", hd.ListUsers)

		// Pending queue
		tickets := api.Group("/tickets")
		tickets.GET("", hd.ListTickets)
		tickets.GET("/duplicates", hd.ListDuplicateTickets)
		tickets.GET("/:id", hd.GetTicket)
		tickets.POST("", middleware.Idempotency(idem), hd.CreateTicket)
		tickets.PUT("/:id", hd.UpdateTicket)
		tickets.DELETE("/:id", hd.DeleteTicket)

		bulk := tickets.Group("/bulk")
		bulk.POST("/delete", hd.BulkDeleteTickets)
		bulk.POST("/assign", hd.BulkAssignTickets)
		bulk.POST("/book", middleware.Idempotency(idem), hd.BulkBookTickets)

		// Booked history. No delete route: booked records are kept.
		booked := api.Group("/booked")
		booked.GET("", hd.ListBooked)
		booked.POST("", middleware.Idempotency(idem), hd.PromoteTicket)
		booked.GET("/export", hd.ExportBooked)
		booked.PUT("/:id", hd.UpdateBooked)
		booked.GET("/:id/slip", hd.GetBookingSlip)

		// Reports
		reports := api.Group("/reports")
		reports.GET("/stats", hd.GetStats)
		reports.GET("/analytics", hd.GetAnalytics)

		// Admin
		admin := api.Group("/admin", middleware.RequireRoles(services.RoleAdmin))
		admin.POST("/snapshot", hd.RunSnapshot)
	}

	h.SetRouter(r)
	return r
}
