package config

import (
	"time"

	redisclient "github.com/marketdesk/relay/internal/infra/redis"
	"github.com/marketdesk/relay/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server    ServerConfig       `yaml:"server"`
	Relay     RelayConfig        `yaml:"relay"`
	Chain     ChainConfig        `yaml:"chain"`
	Contracts ContractsConfig    `yaml:"contracts"`
	Logging   LoggingConfig      `yaml:"logging"`
	Database  postgres.Config    `yaml:"database"`
	Redis     redisclient.Config `yaml:"redis"`
}

// ServerConfig holds HTTP server settings for the health/metrics endpoint.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// RelayConfig holds relay service settings.
type RelayConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	PollAttempts int           `yaml:"poll_attempts"`
}

// ChainConfig holds read-only chain access settings.
type ChainConfig struct {
	ID        int64            `yaml:"id"`
	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds settings for a JSON-RPC provider.
type ProviderConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// ContractsConfig holds the fixed contract addresses the client talks to.
// Defaults are the Polygon mainnet deployment.
type ContractsConfig struct {
	ProxyFactory      string `yaml:"proxy_factory"`
	Multisend         string `yaml:"multisend"`
	Collateral        string `yaml:"collateral"`
	ConditionalTokens string `yaml:"conditional_tokens"`
	Exchange          string `yaml:"exchange"`
	NegRiskExchange   string `yaml:"neg_risk_exchange"`
	NegRiskAdapter    string `yaml:"neg_risk_adapter"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}
