package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/matsen/rcp/internal/quantity"
	"github.com/spf13/cobra"
)

// NormalizeResult pairs an input with its normalized form.
type NormalizeResult struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [text...]",
	Short: "Normalize ingredient quantities",
	Long: `Rewrite fraction glyphs, leading fractions, and mixed numbers as
decimals. Each argument is normalized separately; with no arguments, each
line of standard input is.

Examples:
  rcp normalize "1 1/2 cups flour" "½ tsp salt"
  cat ingredients.txt | rcp normalize --human`,
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	inputs := args
	if len(inputs) == 0 {
		lines, err := readLines(cmd.InOrStdin())
		if err != nil {
			exitWithError(ExitError, "reading stdin: %v", err)
		}
		inputs = lines
	}

	results := normalizeAll(inputs)
	if humanOutput {
		for _, r := range results {
			fmt.Fprintln(os.Stdout, r.Normalized)
		}
		return nil
	}
	return outputJSON(results)
}

// normalizeAll normalizes each input, keeping order.
func normalizeAll(inputs []string) []NormalizeResult {
	results := make([]NormalizeResult, len(inputs))
	for i, in := range inputs {
		results[i] = NormalizeResult{Input: in, Normalized: quantity.Normalize(in)}
	}
	return results
}

// readLines returns every line of r without trailing newlines.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}
