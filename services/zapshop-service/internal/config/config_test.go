package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvironment(t *testing.T) {
	assert.Equal(t, Development, ParseEnvironment(""))
	assert.Equal(t, Development, ParseEnvironment("dev"))
	assert.Equal(t, Staging, ParseEnvironment("Preview"))
	assert.Equal(t, Staging, ParseEnvironment("stg"))
	assert.Equal(t, Production, ParseEnvironment(" production "))
	assert.Equal(t, Environment("qa"), ParseEnvironment("qa"))
}

func TestRPCURL(t *testing.T) {
	assert.Equal(t, "https://rpc.supra.com/rpc/v3", RPCURL(""))
	assert.Equal(t, "https://rpc-testnet.supra.com/rpc/v3", RPCURL("https://rpc-testnet.supra.com/"))
	assert.Equal(t, "http://localhost:9000/rpc/v3", RPCURL("http://localhost:9000/rpc/v3"))
}

func TestExpectedChainID(t *testing.T) {
	assert.Equal(t, "6", ExpectedChainID(Development))
	assert.Equal(t, "6", ExpectedChainID(Staging))
	assert.Equal(t, "8", ExpectedChainID(Production))
}

func TestNewConfig_FromEnvironment(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("VERCEL_ENV", "production")
	t.Setenv("ZAPSHOP_CONTRACT_ADDRESS", "")
	t.Setenv("SUPRA_CHAIN_ID", "")
	t.Setenv("SUPRA_RPC_URL", "https://rpc-mainnet.supra.com")
	t.Setenv("RPC_RATE_LIMIT_RPS", "2.5")
	t.Setenv("RPC_BREAKER_RESET", "5s")

	cfg := NewConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, Production, cfg.Environment)
	assert.Equal(t, "8", cfg.ChainID)
	assert.Equal(t, "https://rpc-mainnet.supra.com/rpc/v3", cfg.RPC.URL)
	assert.Equal(t, contractAddresses[Production], cfg.ContractAddress)
	assert.Equal(t, 2.5, cfg.RPC.RateLimitRPS)
	assert.Equal(t, 5*time.Second, cfg.BreakerConfig().ResetTimeout)
	assert.Equal(t, "prod", cfg.CacheEnvTag())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Environment:     Development,
			ContractAddress: contractAddresses[Development],
			RPC:             RPCConfig{URL: "https://rpc.supra.com/rpc/v3", RateLimitRPS: 1},
		}
	}
	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Environment = "qa"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.ContractAddress = "not-an-address"
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.RPC.RateLimitRPS = 0
	assert.Error(t, cfg.Validate())

	cfg = valid()
	cfg.HTTP.TLS.CertFile = "/certs/api.crt"
	assert.Error(t, cfg.Validate())
	cfg.HTTP.TLS.KeyFile = "/certs/api.key"
	assert.NoError(t, cfg.Validate())
}
