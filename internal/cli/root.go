package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/marketdesk/relay/internal/core/config"
	"github.com/marketdesk/relay/internal/infra/chain/evm"
	redisclient "github.com/marketdesk/relay/internal/infra/redis"
	"github.com/marketdesk/relay/internal/infra/relay"
	"github.com/marketdesk/relay/internal/infra/storage/postgres"
	"github.com/marketdesk/relay/internal/wallet"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "relayctl",
	Short: "Gasless relay wallet client",
	Long:  `relayctl manages a counterfactual contract wallet through a gasless meta-transaction relay: address derivation, first-use deployment, and batched token approvals.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "config file (default is config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
}

// app bundles the wired dependencies for one command invocation.
type app struct {
	cfg    *config.AppConfig
	client *wallet.Client
	relay  *relay.Client
	reader *evm.Reader
	log    *slog.Logger

	closers []func() error
}

func (a *app) Close() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.log.Warn("close failed", "error", err)
		}
	}
}

// loadApp loads config and wires the relay client, chain reader, optional
// journal and lock, and the wallet client around the key from the
// environment.
func loadApp(ctx context.Context) (*app, error) {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLevel := slog.LevelInfo
	if isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}
	stylelog.InitDefault(&tint.Options{
		Level:      slogLevel,
		TimeFormat: time.RFC3339,
	})
	log := slog.Default()

	keyHex := os.Getenv("RELAY_PRIVATE_KEY")
	if keyHex == "" {
		return nil, fmt.Errorf("RELAY_PRIVATE_KEY is not set")
	}
	signer, err := wallet.NewKeySigner(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid RELAY_PRIVATE_KEY: %w", err)
	}

	relayClient := relay.NewClient(cfg.Relay.URL, cfg.Relay.Timeout)

	providers := make([]*evm.Provider, 0, len(cfg.Chain.Providers))
	for _, p := range cfg.Chain.Providers {
		providers = append(providers, evm.NewProvider(p.Name, p.URL, cfg.Relay.Timeout))
	}
	rpcClient, err := evm.NewClient(providers, evm.DefaultRetryConfig, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chain client: %w", err)
	}
	reader := evm.NewReader(rpcClient)

	a := &app{cfg: cfg, relay: relayClient, reader: reader, log: log}

	deps := wallet.Deps{
		Signer: signer,
		Relay:  relayClient,
		Chain:  reader,
		Logger: log,
	}

	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database, "migrations")
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		deps.Journal = postgres.NewJournalRepo(db)
		a.closers = append(a.closers, db.Close)
	}

	if cfg.Redis.URL != "" {
		rc, err := redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		deps.Locker = rc
		a.closers = append(a.closers, rc.Close)
	}

	contracts := wallet.ExchangeContracts{
		Collateral:        common.HexToAddress(cfg.Contracts.Collateral),
		ConditionalTokens: common.HexToAddress(cfg.Contracts.ConditionalTokens),
		Exchange:          common.HexToAddress(cfg.Contracts.Exchange),
		NegRiskExchange:   common.HexToAddress(cfg.Contracts.NegRiskExchange),
		NegRiskAdapter:    common.HexToAddress(cfg.Contracts.NegRiskAdapter),
	}

	a.client = wallet.New(wallet.Config{
		ChainID:      cfg.Chain.ID,
		Factory:      common.HexToAddress(cfg.Contracts.ProxyFactory),
		Multisend:    common.HexToAddress(cfg.Contracts.Multisend),
		Requirements: wallet.StandardRequirements(contracts),
		PollInterval: cfg.Relay.PollInterval,
		PollAttempts: cfg.Relay.PollAttempts,
	}, deps)

	return a, nil
}
