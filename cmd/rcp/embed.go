package main

import (
	"strings"

	"github.com/matsen/rcp/internal/quantity"
	"github.com/spf13/cobra"
)

var embedProvider string

// EmbedResponse is the response for the embed command.
type EmbedResponse struct {
	Model      string    `json:"model"`
	Dimensions int       `json:"dimensions"`
	Embedding  []float64 `json:"embedding"`
}

var embedCmd = &cobra.Command{
	Use:   "embed <text>",
	Short: "Embed a piece of text",
	Long: `Embed the given text with the configured provider and print the vector.

Examples:
  rcp embed "1.5 cups rice"
  rcp embed --provider ollama "tofu and kale"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEmbed,
}

func init() {
	embedCmd.Flags().StringVar(&embedProvider, "provider", "", "Embedding provider: titan or ollama")
	rootCmd.AddCommand(embedCmd)
}

func runEmbed(cmd *cobra.Command, args []string) error {
	text := strings.Join(args, " ")
	cfg := mustLoadConfig()
	if cmd.Flags().Changed("provider") && embedProvider != cfg.Embedding.Provider {
		cfg.Embedding.Provider = embedProvider
		cfg.Embedding.Model = ""
		cfg.Embedding.Dimensions = 0
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			exitWithError(ExitConfigError, "invalid config: %v", err)
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	provider := mustNewEmbedder(ctx, cfg)
	emb, err := provider.Embed(ctx, text)
	if err != nil {
		exitWithError(ExitAPIError, "generating embedding: %v", err)
	}

	if humanOutput {
		outputHuman("Model: %s (%d dimensions)\n", provider.ModelName(), emb.Dimensions())
		outputHuman("%s\n", quantity.FormatVector(emb.Vector))
		return nil
	}
	return outputJSON(EmbedResponse{
		Model:      provider.ModelName(),
		Dimensions: emb.Dimensions(),
		Embedding:  emb.Vector,
	})
}
