package httpserver

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(requestLogger(logger), gin.Recovery(), metricsMiddleware(), corsMiddleware(deps.CORSOrigins))

	var ready pinger
	if db != nil {
		ready = db
	}
	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(ready))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &checkoutHandler{svc: deps.Checkout}

	cities := router.Group("/cities/:citySlug")
	cities.GET("/catalog", h.catalog)
	cities.POST("/checkouts", h.open)

	checkouts := router.Group("/checkouts/:id", checkoutIDMiddleware())
	checkouts.GET("", h.get)
	checkouts.DELETE("", h.cancel)
	checkouts.POST("/passes/toggle", h.togglePass)
	checkouts.PUT("/passes", h.updatePassQuantity)
	checkouts.PUT("/housing", h.selectHousing)
	checkouts.DELETE("/housing", h.clearHousing)
	checkouts.PUT("/merch", h.updateMerch)
	checkouts.PUT("/patron", h.setPatron)
	checkouts.DELETE("/patron", h.clearPatron)
	checkouts.POST("/promo", h.applyPromo)
	checkouts.DELETE("/promo", h.clearPromo)
	checkouts.POST("/insurance/toggle", h.toggleInsurance)
	checkouts.POST("/items/remove", h.removeItem)
	checkouts.POST("/clear", h.clearCart)
	checkouts.POST("/steps/next", h.next)
	checkouts.POST("/steps/back", h.back)
	checkouts.PUT("/steps", h.goTo)
	checkouts.POST("/preview", h.preview)
	checkouts.POST("/submit", h.submit)
	checkouts.GET("/return", h.returnRedirect)
	checkouts.POST("/return", h.completeReturn)

	return router
}
