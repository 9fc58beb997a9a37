package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketdesk/relay/internal/health"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the health and metrics endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		checks := map[string]health.Check{
			"relay": func(ctx context.Context) error {
				_, err := a.relay.IsDeployed(ctx, a.client.WalletAddress())
				return err
			},
			"chain": func(ctx context.Context) error {
				_, err := a.reader.BlockNumber(ctx)
				return err
			},
		}
		server := health.NewServer(a.cfg.Server.Port, checks)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		a.log.Info("serving health and metrics", "port", a.cfg.Server.Port)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case sig := <-sigChan:
			a.log.Info("received signal, shutting down...", "signal", sig)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Stop(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
