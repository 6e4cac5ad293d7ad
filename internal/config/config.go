// Package config loads rcp configuration from a YAML file, a .env file,
// and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "rcp"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Environment variables that override file values.
const (
	EnvAppID             = "APP_ID"
	EnvAppKey            = "APP_KEY"
	EnvAWSRegion         = "AWS_REGION"
	EnvEmbeddingProvider = "RCP_EMBEDDING_PROVIDER"
	EnvOllamaURL         = "RCP_OLLAMA_URL"
	EnvRequestsPerMinute = "RCP_REQUESTS_PER_MINUTE"
)

// Defaults.
const (
	DefaultBaseURL           = "https://api.edamam.com"
	DefaultRequestsPerMinute = 10
	DefaultMaxResults        = 30
	DefaultPerPage           = 10
	DefaultProvider          = "titan"
	DefaultTitanModel        = "amazon.titan-embed-text-v2:0"
	DefaultTitanDimensions   = 1024
	DefaultOutputFormat      = "text"
	DefaultOutputPath        = "recipes.txt"
)

// DefaultQueries are searched when no queries are given.
var DefaultQueries = []string{"chicken", "beef", "salmon", "tofu"}

var (
	validProviders = []string{"titan", "ollama"}
	validFormats   = []string{"text", "jsonl", "sqlite"}
	titanDims      = []int{256, 512, 1024}
)

// ErrMissingCredentials is returned by RequireCredentials when the Edamam
// app ID or key is unset.
var ErrMissingCredentials = errors.New("APP_ID and APP_KEY must be set (in the environment, .env, or config file)")

// Config is the full rcp configuration.
type Config struct {
	Edamam    EdamamConfig    `yaml:"edamam" json:"edamam"`
	Embedding EmbeddingConfig `yaml:"embedding" json:"embedding"`
	Fetch     FetchConfig     `yaml:"fetch" json:"fetch"`
	Output    OutputConfig    `yaml:"output" json:"output"`
}

// EdamamConfig holds recipe search API settings.
type EdamamConfig struct {
	AppID             string `yaml:"app_id,omitempty" json:"app_id,omitempty"`
	AppKey            string `yaml:"app_key,omitempty" json:"app_key,omitempty"`
	BaseURL           string `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	RequestsPerMinute int    `yaml:"requests_per_minute,omitempty" json:"requests_per_minute,omitempty"`
}

// EmbeddingConfig selects and configures the embedding model.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider,omitempty" json:"provider,omitempty"` // titan or ollama
	Model      string `yaml:"model,omitempty" json:"model,omitempty"`
	Dimensions int    `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Normalize  *bool  `yaml:"normalize,omitempty" json:"normalize,omitempty"` // Titan only; nil means true
	Region     string `yaml:"region,omitempty" json:"region,omitempty"`
	OllamaURL  string `yaml:"ollama_url,omitempty" json:"ollama_url,omitempty"`
}

// FetchConfig controls which recipes are fetched.
type FetchConfig struct {
	Queries      []string `yaml:"queries,omitempty" json:"queries,omitempty"`
	MaxResults   int      `yaml:"max_results,omitempty" json:"max_results,omitempty"`
	PerPage      int      `yaml:"per_page,omitempty" json:"per_page,omitempty"`
	IncludeLines *bool    `yaml:"include_lines,omitempty" json:"include_lines,omitempty"` // nil means true
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	Format string `yaml:"format,omitempty" json:"format,omitempty"` // text, jsonl or sqlite
	Path   string `yaml:"path,omitempty" json:"path,omitempty"`
	Append bool   `yaml:"append,omitempty" json:"append,omitempty"`
}

// Default returns a configuration with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// Path returns the default config file location.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/rcp/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file at path (Path() if empty), then loads a .env
// file from the working directory if one exists, then applies environment
// overrides and defaults. A missing config file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err) && !explicit:
			// No config file; defaults and environment only.
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// Load .env file if present (for APP_ID / APP_KEY). Variables already
	// set in the environment win.
	_ = godotenv.Load()

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return cfg, nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvAppID); v != "" {
		c.Edamam.AppID = v
	}
	if v := os.Getenv(EnvAppKey); v != "" {
		c.Edamam.AppKey = v
	}
	if v := os.Getenv(EnvAWSRegion); v != "" && c.Embedding.Region == "" {
		c.Embedding.Region = v
	}
	if v := os.Getenv(EnvEmbeddingProvider); v != "" {
		c.Embedding.Provider = v
	}
	if v := os.Getenv(EnvOllamaURL); v != "" {
		c.Embedding.OllamaURL = v
	}
	if v := os.Getenv(EnvRequestsPerMinute); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", EnvRequestsPerMinute, err)
		}
		c.Edamam.RequestsPerMinute = n
	}
	return nil
}

// ApplyDefaults fills every unset field. Load calls it; callers that clear
// fields after loading call it again.
func (c *Config) ApplyDefaults() {
	if c.Edamam.BaseURL == "" {
		c.Edamam.BaseURL = DefaultBaseURL
	}
	if c.Edamam.RequestsPerMinute == 0 {
		c.Edamam.RequestsPerMinute = DefaultRequestsPerMinute
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = DefaultProvider
	}
	if c.Embedding.Provider == DefaultProvider {
		if c.Embedding.Model == "" {
			c.Embedding.Model = DefaultTitanModel
		}
		if c.Embedding.Dimensions == 0 {
			c.Embedding.Dimensions = DefaultTitanDimensions
		}
	}
	if c.Embedding.Normalize == nil {
		c.Embedding.Normalize = boolPtr(true)
	}

	if len(c.Fetch.Queries) == 0 {
		c.Fetch.Queries = slices.Clone(DefaultQueries)
	}
	if c.Fetch.MaxResults == 0 {
		c.Fetch.MaxResults = DefaultMaxResults
	}
	if c.Fetch.PerPage == 0 {
		c.Fetch.PerPage = DefaultPerPage
	}
	if c.Fetch.IncludeLines == nil {
		c.Fetch.IncludeLines = boolPtr(true)
	}

	if c.Output.Format == "" {
		c.Output.Format = DefaultOutputFormat
	}
	if c.Output.Path == "" {
		c.Output.Path = defaultOutputPath(c.Output.Format)
	}
}

// defaultOutputPath picks a file name matching the output format.
func defaultOutputPath(format string) string {
	switch format {
	case "jsonl":
		return "recipes.jsonl"
	case "sqlite":
		return "recipes.db"
	default:
		return DefaultOutputPath
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Fetch.PerPage <= 0 {
		return fmt.Errorf("fetch.per_page must be positive, got %d", c.Fetch.PerPage)
	}
	if c.Fetch.MaxResults < c.Fetch.PerPage {
		return fmt.Errorf("fetch.max_results (%d) must be at least fetch.per_page (%d)", c.Fetch.MaxResults, c.Fetch.PerPage)
	}
	if !slices.Contains(validProviders, c.Embedding.Provider) {
		return fmt.Errorf("invalid embedding.provider: %s (valid: %v)", c.Embedding.Provider, validProviders)
	}
	if c.Embedding.Provider == "titan" && !slices.Contains(titanDims, c.Embedding.Dimensions) {
		return fmt.Errorf("invalid embedding.dimensions for titan: %d (valid: %v)", c.Embedding.Dimensions, titanDims)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output.format: %s (valid: %v)", c.Output.Format, validFormats)
	}
	return nil
}

// RequireCredentials returns ErrMissingCredentials unless both Edamam
// credentials are set.
func (c *Config) RequireCredentials() error {
	if c.Edamam.AppID == "" || c.Edamam.AppKey == "" {
		return ErrMissingCredentials
	}
	return nil
}

// NormalizeEmbeddings reports whether Titan should return unit vectors.
func (c *Config) NormalizeEmbeddings() bool {
	return c.Embedding.Normalize == nil || *c.Embedding.Normalize
}

// IncludeLines reports whether documents carry the normalized ingredient lines.
func (c *Config) IncludeLines() bool {
	return c.Fetch.IncludeLines == nil || *c.Fetch.IncludeLines
}

// Redacted returns a copy safe to print, with secrets masked.
func (c *Config) Redacted() *Config {
	out := *c
	out.Fetch.Queries = slices.Clone(c.Fetch.Queries)
	out.Edamam.AppKey = redact(c.Edamam.AppKey)
	return &out
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:2] + "****" + secret[len(secret)-2:]
}

func boolPtr(b bool) *bool {
	return &b
}
