package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/francoabl/HuertoHogar/internal/adapter/http/middleware"
	"github.com/francoabl/HuertoHogar/internal/logging"
)

func NewRouter(h *OrderHandler, th *TokenHandler, authz *middleware.Authz) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.MetricsMiddleware())

	l := logging.New("http")
	r.Use(middleware.Logging(l))

	r.GET("/healthz", func(c *gin.Context) {
		logging.From(c).Info("health check")
		c.JSON(200, gin.H{"ok": true})
	})
	// Prometheus endpoint (scraped by Prometheus)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/v1/token", th.IssueToken)

	v1 := r.Group("/v1")
	{
		v1.POST("/orders", authz.Require("orders.write"), h.CreateFromCart)
		v1.GET("/orders", authz.Require("orders.read"), h.ListMine)
		v1.GET("/orders/:id", authz.Require("orders.read"), h.GetByID)
		v1.POST("/orders/:id/payment", authz.Require("orders.write"), h.ConfirmPayment)
		v1.POST("/orders/:id/cancel", authz.Require("orders.write"), h.Cancel)
	}

	admin := r.Group("/v1/admin", authz.Require("orders.admin"))
	{
		admin.GET("/orders", h.ListByStatus)
		admin.PUT("/orders/:id/status", h.SetStatus)
	}

	return r
}
