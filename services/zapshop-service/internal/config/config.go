package config

import (
	"fmt"
	"strings"
	"time"

	sharedconfig "github.com/quangdang46/zapshop/shared/config"
	"github.com/quangdang46/zapshop/shared/redis"
	"github.com/quangdang46/zapshop/shared/resilience"
	"github.com/quangdang46/zapshop/shared/timeout"
	sharedtls "github.com/quangdang46/zapshop/shared/tls"

	"github.com/quangdang46/zapshop/services/zapshop-service/internal/domain"
)

type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

const (
	defaultRPCBase = "https://rpc.supra.com"
	rpcPathSuffix  = "/rpc/v3"
)

// Deployed shop contract per environment.
var contractAddresses = map[Environment]string{
	Development: "0x08bc5d8336d5a3f5043ef720da9d84342eea31adeb95e8e13b701d9fd4cc7baf",
	Staging:     "0x08bc5d8336d5a3f5043ef720da9d84342eea31adeb95e8e13b701d9fd4cc7baf",
	Production:  "0x08bc5d8336d5a3f5043ef720da9d84342eea31adeb95e8e13b701d9fd4cc7baf",
}

// Chain ids the wallet is expected to report.
var chainIDs = map[Environment]string{
	Development: "6",
	Staging:     "6",
	Production:  "8",
}

type RPCConfig struct {
	// URL already carries the /rpc/v3 suffix.
	URL             string        `json:"url"`
	RequestTimeout  time.Duration `json:"request_timeout"`
	RateLimitRPS    float64       `json:"rate_limit_rps"`
	RateLimitBurst  int           `json:"rate_limit_burst"`
	BreakerFailures uint32        `json:"breaker_failures"`
	BreakerReset    time.Duration `json:"breaker_reset"`
	// CAFile trusts a private CA, for self-hosted nodes.
	CAFile string `json:"ca_file,omitempty"`
}

type HTTPConfig struct {
	Addr string           `json:"addr"`
	TLS  sharedtls.Config `json:"-"`
}

type Config struct {
	Environment     Environment                   `json:"environment"`
	ServiceName     string                        `json:"service_name"`
	ContractAddress string                        `json:"contract_address"`
	ChainID         string                        `json:"chain_id"`
	RPC             RPCConfig                     `json:"rpc"`
	HTTP            HTTPConfig                    `json:"http"`
	Cache           sharedconfig.CacheConfig      `json:"cache"`
	Monitoring      sharedconfig.MonitoringConfig `json:"monitoring"`
	Timeouts        timeout.TimeoutConfig         `json:"-"`
}

func NewConfig() *Config {
	sharedconfig.Load()

	env := ParseEnvironment(sharedconfig.GetString("ENVIRONMENT",
		sharedconfig.GetString("VERCEL_ENV", string(Development))))

	timeouts := timeout.DefaultTimeoutConfig()
	timeouts.RPC = sharedconfig.GetDuration("RPC_TIMEOUT", timeouts.RPC)
	timeouts.Wallet = sharedconfig.GetDuration("WALLET_TIMEOUT", timeouts.Wallet)
	timeouts.HTTP = sharedconfig.GetDuration("HTTP_TIMEOUT", timeouts.HTTP)

	return &Config{
		Environment:     env,
		ServiceName:     sharedconfig.GetString("SERVICE_NAME", "zapshop-service"),
		ContractAddress: sharedconfig.GetString("ZAPSHOP_CONTRACT_ADDRESS", contractAddresses[env]),
		ChainID:         sharedconfig.GetString("SUPRA_CHAIN_ID", chainIDs[env]),
		RPC: RPCConfig{
			URL:             RPCURL(sharedconfig.GetString("SUPRA_RPC_URL", defaultRPCBase)),
			RequestTimeout:  sharedconfig.GetDuration("RPC_REQUEST_TIMEOUT", 15*time.Second),
			RateLimitRPS:    sharedconfig.GetFloat("RPC_RATE_LIMIT_RPS", 10),
			RateLimitBurst:  sharedconfig.GetInt("RPC_RATE_LIMIT_BURST", 5),
			BreakerFailures: uint32(sharedconfig.GetInt("RPC_BREAKER_FAILURES", 5)),
			BreakerReset:    sharedconfig.GetDuration("RPC_BREAKER_RESET", 30*time.Second),
			CAFile:          sharedconfig.GetString("RPC_CA_FILE", ""),
		},
		HTTP: HTTPConfig{
			Addr: sharedconfig.GetString("HTTP_ADDR", ":8080"),
			TLS: sharedtls.Config{
				CertFile:   sharedconfig.GetString("HTTP_TLS_CERT_FILE", ""),
				KeyFile:    sharedconfig.GetString("HTTP_TLS_KEY_FILE", ""),
				CAFile:     sharedconfig.GetString("HTTP_TLS_CLIENT_CA_FILE", ""),
				ClientAuth: sharedconfig.GetString("HTTP_TLS_CLIENT_CA_FILE", "") != "",
			},
		},
		Cache:      sharedconfig.LoadCache(),
		Monitoring: sharedconfig.LoadMonitoring(),
		Timeouts:   *timeouts,
	}
}

// ParseEnvironment accepts the usual aliases; "preview" deployments run against staging.
func ParseEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dev", "development", "test", "local":
		return Development
	case "staging", "stg", "preview":
		return Staging
	case "prod", "production":
		return Production
	default:
		return Environment(strings.ToLower(s))
	}
}

// RPCURL appends the /rpc/v3 path to a base URL unless it is already there.
func RPCURL(base string) string {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = defaultRPCBase
	}
	if strings.HasSuffix(base, rpcPathSuffix) {
		return base
	}
	return base + rpcPathSuffix
}

// ExpectedChainID returns the chain id configured for env.
func ExpectedChainID(env Environment) string {
	return chainIDs[env]
}

func (c *Config) Validate() error {
	switch c.Environment {
	case Development, Staging, Production:
	default:
		return fmt.Errorf("unknown environment %q", c.Environment)
	}
	if c.RPC.URL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if err := domain.ValidateAddress(c.ContractAddress); err != nil {
		return fmt.Errorf("contract address: %w", err)
	}
	if c.RPC.RateLimitRPS <= 0 {
		return fmt.Errorf("RPC_RATE_LIMIT_RPS must be positive")
	}
	if (c.HTTP.TLS.CertFile == "") != (c.HTTP.TLS.KeyFile == "") {
		return fmt.Errorf("HTTP_TLS_CERT_FILE and HTTP_TLS_KEY_FILE must be set together")
	}
	return nil
}

func (c *Config) RedisConfig() redis.RedisConfig {
	return redis.RedisConfig{
		RedisHost:     c.Cache.Host,
		RedisPort:     c.Cache.Port,
		RedisPassword: c.Cache.Password,
		RedisDB:       c.Cache.DB,
	}
}

func (c *Config) BreakerConfig() *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig()
	cfg.MaxFailures = c.RPC.BreakerFailures
	cfg.ResetTimeout = c.RPC.BreakerReset
	return cfg
}

// CacheEnvTag maps the environment onto the short tag used in cache keys.
func (c *Config) CacheEnvTag() string {
	switch c.Environment {
	case Production:
		return "prod"
	case Staging:
		return "stg"
	default:
		return "dev"
	}
}
