package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/quangdang46/zapshop/shared/logging"
	"github.com/quangdang46/zapshop/shared/metrics"
	"github.com/quangdang46/zapshop/shared/monitoring"
	"github.com/quangdang46/zapshop/shared/recovery"
	sharedredis "github.com/quangdang46/zapshop/shared/redis"
	"github.com/quangdang46/zapshop/shared/resilience"
	"github.com/quangdang46/zapshop/shared/timeout"
	sharedtls "github.com/quangdang46/zapshop/shared/tls"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/config"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/infrastructure/cache"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/infrastructure/rpc"
	"github.com/quangdang46/zapshop/services/zapshop-service/internal/service"
)

// app holds everything a command needs, built once per invocation.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	metrics *metrics.Metrics
	panics  *recovery.PanicHandler
	redis   *sharedredis.Redis

	rpc     *rpc.Client
	history *service.HistoryService
	views   *service.ViewService
	limits  *service.LimitService

	sentryEnabled bool
}

func newApp() (*app, error) {
	cfg := config.NewConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logCfg := logging.DefaultConfig(cfg.ServiceName)
	logCfg.Level = logging.LogLevel(cfg.Monitoring.LogLevel)
	logCfg.Environment = string(cfg.Environment)
	logCfg.PrettyLog = cfg.Environment == config.Development
	logger := logging.NewLogger(logCfg)
	logging.Init(logCfg)

	a := &app{cfg: cfg, logger: logger}

	enabled, err := monitoring.InitSentry(&monitoring.SentryConfig{
		DSN:              cfg.Monitoring.SentryDSN,
		Environment:      string(cfg.Environment),
		Release:          cfg.Monitoring.ServiceVersion,
		ServiceName:      cfg.ServiceName,
		SampleRate:       cfg.Monitoring.SentrySample,
		TracesSampleRate: cfg.Monitoring.TracesSample,
	})
	if err != nil {
		logger.WithError(err).Warn("sentry disabled")
	}
	a.sentryEnabled = enabled

	var reg prometheus.Registerer
	if !cfg.Monitoring.MetricsEnabled {
		reg = prometheus.NewRegistry()
	}
	a.metrics = metrics.NewMetrics("zapshop", "client", reg)
	a.panics = recovery.NewPanicHandler(
		recovery.WithLogger(logger),
		recovery.WithPanicCallback(func(interface{}, []byte) { a.metrics.RecordPanic() }),
		// Sentry already keeps the stack when it is on.
		recovery.WithStackLogging(!a.sentryEnabled),
		recovery.WithErrorReturn(cfg.Environment == config.Development),
	)

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if cfg.RPC.CAFile != "" {
		tlsCfg, err := sharedtls.ClientConfig(sharedtls.Config{CAFile: cfg.RPC.CAFile})
		if err != nil {
			return nil, fmt.Errorf("rpc tls: %w", err)
		}
		transport.TLSClientConfig = tlsCfg
	}

	breakerCfg := cfg.BreakerConfig()
	breakerCfg.IsFailure = rpc.CountsAgainstBreaker
	a.rpc = rpc.NewClient(cfg.RPC.URL,
		rpc.WithHTTPClient(&http.Client{Timeout: cfg.RPC.RequestTimeout, Transport: transport}),
		rpc.WithRateLimit(cfg.RPC.RateLimitRPS, cfg.RPC.RateLimitBurst),
		rpc.WithCircuitBreakers(resilience.NewCircuitBreakerGroup(breakerCfg)),
		rpc.WithMetrics(a.metrics),
		rpc.WithLogger(logger),
	)

	viewOpts := []service.ViewOption{
		service.WithViewMetrics(a.metrics),
		service.WithViewLogger(logger),
	}
	if cfg.Cache.Enabled {
		sharedredis.Env = cfg.CacheEnvTag()
		r, err := sharedredis.NewRedis(cfg.RedisConfig())
		if err != nil {
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.redis = r
		viewOpts = append(viewOpts, service.WithViewCache(cache.NewRedisViewCache(r, cfg.Cache.TTL)))
	}

	a.history = service.NewHistoryService(a.rpc, cfg.ContractAddress, a.metrics, logger)
	a.views = service.NewViewService(a.rpc, cfg.ContractAddress, viewOpts...)
	a.limits = service.NewLimitService(a.views, logger)

	logger.WithFields(map[string]interface{}{
		"environment": cfg.Environment,
		"rpc":         cfg.RPC.URL,
		"contract":    cfg.ContractAddress,
		"cache":       cfg.Cache.Enabled,
	}).Debug("zapshop client ready")
	return a, nil
}

// rpcContext bounds one command's chain calls, all pages included.
func (a *app) rpcContext(parent context.Context) (context.Context, context.CancelFunc) {
	return timeout.WithTimeout(parent, a.cfg.Timeouts.RPC)
}

func (a *app) Close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.WithError(err).Warn("closing redis")
		}
	}
	if a.sentryEnabled {
		monitoring.FlushSentry(2 * time.Second)
	}
}
