// Command octl inspects the route tables and drives the collectives API
// from the command line.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opencollective/frontend/internal/backend"
	"github.com/opencollective/frontend/internal/config"
)

var (
	verbose bool
	token   string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "octl",
	Short:         "Open Collective frontend tooling",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "API access token (or set API_TOKEN env)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Operation timeout")

	rootCmd.AddCommand(routesCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(signinCmd)
	rootCmd.AddCommand(createCollectiveCmd)
	rootCmd.AddCommand(collectiveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newClient loads the configuration and returns an API client
func newClient() (*backend.Client, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zap.NewNop()
	if verbose {
		logger, _ = zap.NewDevelopment()
	}

	client := backend.NewClient(cfg.API, logger)
	if token != "" {
		client = client.WithToken(token)
	}
	return client, func() { _ = logger.Sync() }, nil
}
