package main

import (
	"context"
	"errors"

	"github.com/matsen/rcp/internal/config"
	"github.com/matsen/rcp/internal/pipeline"
	"github.com/matsen/rcp/internal/storage"
	"github.com/spf13/cobra"
)

var (
	fetchMaxResults int
	fetchPerPage    int
	fetchFormat     string
	fetchOutput     string
	fetchProvider   string
	fetchNoLines    bool
	fetchAppend     bool
)

// FetchResponse is the response for the fetch command.
type FetchResponse struct {
	Queries  []string `json:"queries"`
	Format   string   `json:"format"`
	Output   string   `json:"output"`
	Model    string   `json:"model"`
	Fetched  int      `json:"fetched"`
	Embedded int      `json:"embedded"`
	Skipped  int      `json:"skipped"`
	Seconds  float64  `json:"seconds"`
}

var fetchCmd = &cobra.Command{
	Use:   "fetch [query...]",
	Short: "Fetch recipes, embed them, and write the results",
	Long: `Fetch recipes for each query, render each as a text document with
normalized quantities, embed the document, and write one record per recipe.

Queries default to the configured list (chicken, beef, salmon, tofu).

Examples:
  rcp fetch
  rcp fetch lentils kale --max-results 20 --format jsonl --output out.jsonl
  rcp fetch tofu --provider ollama --human`,
	RunE: runFetch,
}

func init() {
	addFetchFlags(fetchCmd)
	rootCmd.AddCommand(fetchCmd)
}

func addFetchFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&fetchMaxResults, "max-results", 0, "Recipes to request per query (default from config)")
	cmd.Flags().IntVar(&fetchPerPage, "per-page", 0, "Recipes per API page (default from config)")
	cmd.Flags().StringVar(&fetchFormat, "format", "", "Output format: text, jsonl, or sqlite")
	cmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "Output path")
	cmd.Flags().StringVar(&fetchProvider, "provider", "", "Embedding provider: titan or ollama")
	cmd.Flags().BoolVar(&fetchNoLines, "no-lines", false, "Leave normalized ingredient lines out of documents")
	cmd.Flags().BoolVar(&fetchAppend, "append", false, "Append to an existing text or JSONL output")
}

// applyFetchFlags overrides config values with any flags the user set.
func applyFetchFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("max-results") {
		cfg.Fetch.MaxResults = fetchMaxResults
	}
	if flags.Changed("per-page") {
		cfg.Fetch.PerPage = fetchPerPage
	}
	if flags.Changed("format") {
		cfg.Output.Format = fetchFormat
		if !flags.Changed("output") {
			cfg.Output.Path = ""
		}
	}
	if flags.Changed("output") {
		cfg.Output.Path = fetchOutput
	}
	if flags.Changed("provider") && fetchProvider != cfg.Embedding.Provider {
		cfg.Embedding.Provider = fetchProvider
		cfg.Embedding.Model = ""
		cfg.Embedding.Dimensions = 0
	}
	if fetchNoLines {
		lines := false
		cfg.Fetch.IncludeLines = &lines
	}
	if fetchAppend {
		cfg.Output.Append = true
	}
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	applyFetchFlags(cmd, cfg)
	if len(args) > 0 {
		cfg.Fetch.Queries = args
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger := newLogger()
	client := mustNewEdamamClient(cfg, logger)
	embedder := mustNewEmbedder(ctx, cfg)

	outPath := config.ExpandPath(cfg.Output.Path)
	sink, err := storage.OpenSink(cfg.Output.Format, outPath, cfg.Output.Append)
	if err != nil {
		exitWithError(ExitError, "opening output: %v", err)
	}

	runner := pipeline.NewRunner(client, embedder, sink, logger.WithField("component", "pipeline"), pipeline.Options{
		MaxResults:   cfg.Fetch.MaxResults,
		PerPage:      cfg.Fetch.PerPage,
		IncludeLines: cfg.IncludeLines(),
	})
	stats, runErr := runner.Run(ctx, cfg.Fetch.Queries)
	if err := sink.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			exitWithError(ExitError, "interrupted after %d recipes", stats.Embedded)
		}
		exitWithError(exitCodeFor(runErr), "%v", runErr)
	}

	resp := FetchResponse{
		Queries:  cfg.Fetch.Queries,
		Format:   cfg.Output.Format,
		Output:   outPath,
		Model:    embedder.ModelName(),
		Fetched:  stats.Fetched,
		Embedded: stats.Embedded,
		Skipped:  stats.Skipped,
		Seconds:  stats.Duration.Seconds(),
	}
	if humanOutput {
		outputHuman("Fetched %d recipes for %d queries\n", resp.Fetched, stats.Queries)
		outputHuman("Embedded %d with %s, skipped %d\n", resp.Embedded, resp.Model, resp.Skipped)
		outputHuman("Wrote %s (%s) in %.1fs\n", resp.Output, resp.Format, resp.Seconds)
		return nil
	}
	return outputJSON(resp)
}
