package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/matsen/rcp/internal/semantic"
	"github.com/matsen/rcp/internal/storage"
	"github.com/spf13/cobra"
)

var (
	similarFormat    string
	similarPath      string
	similarURL       string
	similarLimit     int
	similarThreshold float64
)

// SimilarResponse is the response for the similar command.
type SimilarResponse struct {
	Query   string            `json:"query,omitempty"`
	URL     string            `json:"url,omitempty"`
	Model   string            `json:"model"`
	Results []semantic.Result `json:"results"`
}

var similarCmd = &cobra.Command{
	Use:   "similar [text]",
	Short: "Find stored recipes similar to a text or a stored recipe",
	Long: `Rank recipes in a JSONL or SQLite output by cosine similarity.

With text, the text is embedded with the configured provider, which must
be the model the records were embedded with. With --url, the stored
embedding of that recipe is used instead.

Examples:
  rcp similar "spicy tofu with rice" --format sqlite --path recipes.db
  rcp similar --url https://example.com/curry --limit 5 --human`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().StringVar(&similarFormat, "format", "", "Output format to read: jsonl or sqlite (default from config)")
	similarCmd.Flags().StringVar(&similarPath, "path", "", "Path to read (default from config)")
	similarCmd.Flags().StringVar(&similarURL, "url", "", "Find recipes similar to this stored recipe")
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "n", 10, "Maximum results")
	similarCmd.Flags().Float64Var(&similarThreshold, "threshold", 0, "Minimum similarity for text queries")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	if (len(args) == 0) == (similarURL == "") {
		exitWithError(ExitError, "give either a text argument or --url")
	}

	cfg := mustLoadConfig()
	format, path := resolveOutput(cfg, similarFormat, similarPath)
	records, err := storage.ReadRecords(format, path, "")
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}
	idx, err := semantic.NewIndex(records)
	if err != nil {
		if errors.Is(err, semantic.ErrEmptyIndex) {
			exitWithError(ExitConfigError, "%s has no embedded recipes\n\nRun 'rcp fetch --format %s --output %s' first.", path, format, path)
		}
		exitWithError(ExitError, "building index: %v", err)
	}

	resp := SimilarResponse{Model: idx.Model}
	if similarURL != "" {
		resp.URL = similarURL
		resp.Results, err = idx.FindSimilar(similarURL, similarLimit)
		if err != nil {
			exitWithError(ExitError, "%s: %v", similarURL, err)
		}
	} else {
		resp.Query = strings.TrimSpace(args[0])
		ctx, cancel := signalContext()
		defer cancel()

		provider := mustNewEmbedder(ctx, cfg)
		if provider.ModelName() != idx.Model {
			exitWithError(ExitConfigError, "records were embedded with %s but the configured model is %s", idx.Model, provider.ModelName())
		}
		emb, err := provider.Embed(ctx, resp.Query)
		if err != nil {
			exitWithError(ExitAPIError, "generating embedding: %v", err)
		}
		resp.Results = idx.Search(emb.Vector, similarLimit, similarThreshold)
	}
	if resp.Results == nil {
		resp.Results = []semantic.Result{}
	}

	if humanOutput {
		if len(resp.Results) == 0 {
			fmt.Println("No similar recipes found.")
			return nil
		}
		for i, r := range resp.Results {
			fmt.Printf("%d. [%.2f] %s\n", i+1, r.Similarity, truncateString(r.Name, NameMaxLen))
			fmt.Printf("   %s\n\n", r.URL)
		}
		return nil
	}
	return outputJSON(resp)
}
