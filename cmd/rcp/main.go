// Package main provides the rcp CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/matsen/rcp/internal/config"
	"github.com/matsen/rcp/internal/edamam"
	"github.com/matsen/rcp/internal/embedding"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	configPath  string
	verbose     bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// SilenceErrors is set, so cobra's own errors are printed here.
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "rcp",
	Short: "Fetch recipes and turn them into embeddings",
	Long: `rcp fetches recipes from the Edamam search API, normalizes their
ingredient quantities, and embeds each recipe as text.

Results are written as text, JSONL, or SQLite. All commands output JSON
by default; use --human for readable output.

Environment Variables:
  APP_ID, APP_KEY         Edamam credentials (required for fetch/search)
  AWS_REGION              Region for Bedrock Titan embeddings
  RCP_EMBEDDING_PROVIDER  titan (default) or ollama`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/rcp/config.yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.Version = Version
}

// newLogger returns the stderr logger shared by a command's components.
func newLogger() *logrus.Logger {
	logger := logrus.New()
	logger.Out = os.Stderr
	logger.Formatter = &logrus.TextFormatter{FullTimestamp: true}
	if verbose {
		logger.Level = logrus.DebugLevel
	}
	return logger
}

// signalContext returns a context canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// mustLoadConfig loads and validates configuration, exits on error.
func mustLoadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}
	return cfg
}

// mustNewEdamamClient builds a search client from cfg, exits when
// credentials are missing.
func mustNewEdamamClient(cfg *config.Config, logger *logrus.Logger) *edamam.Client {
	if err := cfg.RequireCredentials(); err != nil {
		exitWithError(ExitAuthError, "%v", err)
	}
	return edamam.NewClient(
		edamam.WithCredentials(cfg.Edamam.AppID, cfg.Edamam.AppKey),
		edamam.WithBaseURL(cfg.Edamam.BaseURL),
		edamam.WithRateLimit(edamam.PerMinute(cfg.Edamam.RequestsPerMinute)),
		edamam.WithLogger(logger.WithField("component", "edamam")),
	)
}

// mustNewEmbedder builds the configured embedding provider, exits on error.
// Ollama providers are checked for a running server and a pulled model.
func mustNewEmbedder(ctx context.Context, cfg *config.Config) embedding.Provider {
	provider, err := embedding.New(ctx, embedding.Settings{
		Provider:   cfg.Embedding.Provider,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Normalize:  cfg.NormalizeEmbeddings(),
		Region:     cfg.Embedding.Region,
		OllamaURL:  cfg.Embedding.OllamaURL,
	})
	if err != nil {
		exitWithError(ExitConfigError, "creating embedding provider: %v", err)
	}
	if ollama, ok := provider.(*embedding.OllamaProvider); ok {
		mustValidateOllama(ctx, ollama)
	}
	return provider
}

// mustValidateOllama checks that Ollama is running and has the model.
func mustValidateOllama(ctx context.Context, provider *embedding.OllamaProvider) {
	if err := provider.IsAvailable(ctx); err != nil {
		exitWithError(ExitAPIError, "Ollama is not running\n\nStart Ollama with 'ollama serve' or install from https://ollama.ai")
	}

	hasModel, err := provider.HasModel(ctx)
	if err != nil {
		exitWithError(ExitError, "checking model availability: %v", err)
	}
	if !hasModel {
		exitWithError(ExitModelNotFound, "embedding model %q not found\n\nRun 'ollama pull %s' to download it.", provider.ModelName(), provider.ModelName())
	}
}

// exitCodeFor maps a search or pipeline error to an exit code.
func exitCodeFor(err error) int {
	switch {
	case edamam.IsAuthError(err):
		return ExitAuthError
	case edamam.IsRateLimited(err):
		return ExitAPIError
	default:
		return ExitError
	}
}
