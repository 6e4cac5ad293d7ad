package main

import (
	"fmt"
	"strings"

	"github.com/matsen/rcp/internal/recipe"
	"github.com/spf13/cobra"
)

var (
	searchMaxResults int
	searchPerPage    int
)

// SearchResponse is the response for the search command.
type SearchResponse struct {
	Query   string          `json:"query"`
	Count   int             `json:"count"`
	Recipes []recipe.Recipe `json:"recipes"`
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search recipes without embedding them",
	Long: `Search the Edamam API and print the recipes with normalized
ingredient quantities. Nothing is embedded or written.

Examples:
  rcp search "chicken curry"
  rcp search tofu --max-results 10 --human`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVar(&searchMaxResults, "max-results", 0, "Recipes to request (default from config)")
	searchCmd.Flags().IntVar(&searchPerPage, "per-page", 0, "Recipes per API page (default from config)")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := mustLoadConfig()
	if cmd.Flags().Changed("max-results") {
		cfg.Fetch.MaxResults = searchMaxResults
	}
	if cmd.Flags().Changed("per-page") {
		cfg.Fetch.PerPage = searchPerPage
	}
	if err := cfg.Validate(); err != nil {
		exitWithError(ExitConfigError, "invalid config: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	client := mustNewEdamamClient(cfg, newLogger())
	recipes, err := client.Search(ctx, query, cfg.Fetch.MaxResults, cfg.Fetch.PerPage)
	if err != nil {
		exitWithError(exitCodeFor(err), "searching %q: %v", query, err)
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}

	if humanOutput {
		printRecipesHuman(recipes)
		return nil
	}
	return outputJSON(SearchResponse{Query: query, Count: len(recipes), Recipes: recipes})
}

// printRecipesHuman prints each recipe as its document without the
// normalized lines.
func printRecipesHuman(recipes []recipe.Recipe) {
	if len(recipes) == 0 {
		fmt.Println("No recipes found.")
		return
	}
	for _, r := range recipes {
		fmt.Println(recipe.Document(r, recipe.DocumentOptions{}))
	}
}
