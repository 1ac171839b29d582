package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quangdang46/zapshop/shared/logging"
	"github.com/quangdang46/zapshop/shared/metrics"
	"github.com/quangdang46/zapshop/shared/recovery"
	"github.com/quangdang46/zapshop/shared/timeout"
)

type RouterConfig struct {
	// RequestTimeout bounds every handler, history walks included.
	RequestTimeout time.Duration
	Metrics        *metrics.Metrics
	Logger         *logging.Logger
	Panics         *recovery.PanicHandler
}

// NewRouter mounts the read API under /v1 plus /healthz and /metrics.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	panics := cfg.Panics
	if panics == nil {
		panics = recovery.NewPanicHandler(recovery.WithLogger(logger))
	}

	r := gin.New()
	r.Use(
		panics.GinMiddleware(),
		RequestContext(),
		AccessLog(logger),
		cfg.Metrics.GinMiddleware(),
		timeout.GinMiddleware(cfg.RequestTimeout),
	)

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	h.RegisterRoutes(r.Group("/v1"))
	return r
}
