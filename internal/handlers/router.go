package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

type RouterDeps struct {
	Service        WalletService
	HealthCheckers []HealthChecker
	Metrics        http.Handler // nil disables /metrics
	Logger         *slog.Logger
}

// NewRouter builds the gin engine with the wallet API and service endpoints.
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if deps.Logger != nil {
		r.Use(RequestLogger(deps.Logger))
	}

	r.GET("/", HandleRoot)
	r.GET("/info", HandleInfo)
	r.GET("/health", HandleHealth(deps.HealthCheckers...))
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	NewWalletHTTPHandler(deps.Service).RegisterRoutes(r)
	return r
}
