package main

import (
	"fmt"

	"github.com/matsen/rcp/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Print the configuration after the config file, .env file, environment,
and defaults are applied. The Edamam app key is redacted.

With --human, the configuration is printed as YAML.`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	red := cfg.Redacted()

	if humanOutput {
		data, err := yaml.Marshal(red)
		if err != nil {
			exitWithError(ExitError, "encoding config: %v", err)
		}
		fmt.Print(string(data))
		if err := cfg.Validate(); err != nil {
			fmt.Printf("# invalid: %v\n", err)
		}
		return nil
	}
	return outputJSON(red)
}
