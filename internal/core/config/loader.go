package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Polygon mainnet defaults. The proxy factory and multisend addresses are
// fixed deployments; the init code hash baked into the address derivation
// matches the proxy factory here.
const (
	defaultChainID           = 137
	defaultProxyFactory      = "0xaacFeEa03eb1561C4e67d661e40682Bd20E3541b"
	defaultMultisend         = "0xA238CBeb142c10Ef7Ad8442C6D1f9E89e07e7761"
	defaultCollateral        = "0x2791Bca1f2de4661ED88A30C99A7a9449Aa84174"
	defaultConditionalTokens = "0x4D97DCd97eC945f40cF65F87097ACe5EA0476045"
	defaultExchange          = "0x4bFb41d5B3570DeFd03C39a9A4D8dE6Bd8B8982E"
	defaultNegRiskExchange   = "0xC5d563A36AE78145C45a50134d48A1215220f80a"
	defaultNegRiskAdapter    = "0xd91E80cF2E7be2e162c6513ceD06f1dD0dA35296"
)

// Load reads configuration from a YAML file.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg AppConfig
	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if cfg.Relay.URL == "" {
		return nil, fmt.Errorf("relay.url is required")
	}

	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Relay.Timeout == 0 {
		cfg.Relay.Timeout = 30 * time.Second
	}
	if cfg.Relay.PollInterval == 0 {
		cfg.Relay.PollInterval = 3 * time.Second
	}
	if cfg.Relay.PollAttempts == 0 {
		cfg.Relay.PollAttempts = 40
	}
	if cfg.Chain.ID == 0 {
		cfg.Chain.ID = defaultChainID
	}
	if cfg.Contracts.ProxyFactory == "" {
		cfg.Contracts.ProxyFactory = defaultProxyFactory
	}
	if cfg.Contracts.Multisend == "" {
		cfg.Contracts.Multisend = defaultMultisend
	}
	if cfg.Contracts.Collateral == "" {
		cfg.Contracts.Collateral = defaultCollateral
	}
	if cfg.Contracts.ConditionalTokens == "" {
		cfg.Contracts.ConditionalTokens = defaultConditionalTokens
	}
	if cfg.Contracts.Exchange == "" {
		cfg.Contracts.Exchange = defaultExchange
	}
	if cfg.Contracts.NegRiskExchange == "" {
		cfg.Contracts.NegRiskExchange = defaultNegRiskExchange
	}
	if cfg.Contracts.NegRiskAdapter == "" {
		cfg.Contracts.NegRiskAdapter = defaultNegRiskAdapter
	}
}
