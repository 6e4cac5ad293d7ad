package main

import (
	"fmt"
	"time"

	"github.com/matsen/rcp/internal/config"
	"github.com/matsen/rcp/internal/storage"
	"github.com/spf13/cobra"
)

var (
	listFormat string
	listPath   string
	listQuery  string
	listFull   bool
)

// ListItem summarizes one stored record.
type ListItem struct {
	Query       string `json:"query"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	Ingredients int    `json:"ingredients"`
	Model       string `json:"model"`
	Dimensions  int    `json:"dimensions"`
	FetchedAt   string `json:"fetched_at"`
}

// ListResponse is the response for the list command.
type ListResponse struct {
	Path    string     `json:"path"`
	Count   int        `json:"count"`
	Recipes []ListItem `json:"recipes"`
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List recipes from a JSONL or SQLite output",
	Long: `Read back records written by 'rcp fetch' in jsonl or sqlite format.

Examples:
  rcp list --format sqlite --path recipes.db
  rcp list --format jsonl --path recipes.jsonl --query tofu --human`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVar(&listFormat, "format", "", "Output format to read: jsonl or sqlite (default from config)")
	listCmd.Flags().StringVar(&listPath, "path", "", "Path to read (default from config)")
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Only records fetched for this query")
	listCmd.Flags().BoolVar(&listFull, "full", false, "Print full records including embeddings")
	rootCmd.AddCommand(listCmd)
}

// resolveOutput picks the stored output to read. An explicit format without
// a path uses that format's default file name.
func resolveOutput(cfg *config.Config, format, path string) (string, string) {
	if format != "" && format != cfg.Output.Format {
		cfg.Output.Format = format
		if path == "" {
			cfg.Output.Path = ""
			cfg.ApplyDefaults()
		}
	}
	if path == "" {
		path = cfg.Output.Path
	}
	return cfg.Output.Format, config.ExpandPath(path)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()
	format, path := resolveOutput(cfg, listFormat, listPath)

	records, err := storage.ReadRecords(format, path, listQuery)
	if err != nil {
		exitWithError(ExitError, "reading %s: %v", path, err)
	}
	if records == nil {
		records = []storage.Record{}
	}

	if listFull && !humanOutput {
		return outputJSON(records)
	}

	items := make([]ListItem, len(records))
	for i, rec := range records {
		items[i] = ListItem{
			Query:       rec.Query,
			Name:        rec.Name,
			URL:         rec.URL,
			Ingredients: len(rec.Ingredients),
			Model:       rec.Model,
			Dimensions:  len(rec.Embedding),
			FetchedAt:   rec.FetchedAt.Format(time.RFC3339),
		}
	}

	if humanOutput {
		if len(items) == 0 {
			fmt.Println("No recipes found.")
			return nil
		}
		for i, it := range items {
			fmt.Printf("%d. [%s] %s\n", i+1, it.Query, truncateString(it.Name, NameMaxLen))
			fmt.Printf("   %s\n", it.URL)
			fmt.Printf("   %d ingredients, %d-dim %s\n\n", it.Ingredients, it.Dimensions, it.Model)
		}
		return nil
	}
	return outputJSON(ListResponse{Path: path, Count: len(items), Recipes: items})
}
