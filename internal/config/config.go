package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/wordlens/wordlens/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultTTLSeconds       = 3600
	defaultMaxKeys          = 10000
	defaultSweepSeconds     = 60
	defaultSearchLimit      = 10
	defaultSearchThreshold  = 0.7
	defaultAnalysisSeconds  = 3600
	defaultSynonymSeconds   = 1800
	defaultAntonymSeconds   = 1800
	defaultDefSeconds       = 86400
	defaultContextSeconds   = 7200
	defaultEmbeddingSeconds = 21600
	defaultSearchSeconds    = 600
)

// Config represents the complete application configuration
type Config struct {
	Server         models.ServerConfig             `yaml:"server"`
	Cache          models.CacheConfig              `yaml:"cache"`
	TTL            models.AnalysisTTLConfig        `yaml:"ttl"`
	Search         models.SearchConfig             `yaml:"search"`
	Providers      map[string]models.ProviderConfig `yaml:"providers"`
	LocalEmbedding models.LocalEmbeddingConfig     `yaml:"local_embedding"`
	Database       *models.DatabaseConfig          `yaml:"database,omitempty"`
}

// LoadFromFile loads configuration from a YAML file with environment variable substitution
func LoadFromFile(configPath string) (*Config, error) {
	// Validate and clean the file path to prevent directory traversal
	cleanPath := filepath.Clean(configPath)

	if strings.Contains(cleanPath, "..") {
		return nil, fmt.Errorf("invalid config path: path traversal not allowed")
	}

	ext := filepath.Ext(cleanPath)
	if ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("invalid config file: only .yaml and .yml files are allowed")
	}

	data, err := os.ReadFile(cleanPath) // #nosec G304 - path is validated above
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", cleanPath, err)
	}

	content := substituteEnvVars(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(content), &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	// Normalize provider map keys to lowercase for case-insensitive lookups
	if config.Providers != nil {
		normalized := make(map[string]models.ProviderConfig, len(config.Providers))
		for key, value := range config.Providers {
			normalized[strings.ToLower(key)] = value
		}
		config.Providers = normalized
	}

	config.ApplyDefaults()

	return &config, nil
}

// LoadEnvFiles loads environment variables from .env files in order of precedence
// Loads files in the order provided (first has highest priority)
func LoadEnvFiles(envFiles []string) {
	for _, envFile := range envFiles {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err == nil {
				fmt.Printf("Loaded environment variables from %s\n", envFile)
			}
		}
	}
}

// New creates a new Config instance by loading from the specified config file path
func New(configPath string) (*Config, error) {
	return LoadFromFile(configPath)
}

// ApplyDefaults fills unset cache, search and TTL settings. LoadFromFile
// calls it automatically; programmatic configs should call it before use.
func (c *Config) ApplyDefaults() {
	if c.Cache.DefaultTTLSeconds <= 0 {
		c.Cache.DefaultTTLSeconds = defaultTTLSeconds
	}
	if c.Cache.MaxKeys <= 0 {
		c.Cache.MaxKeys = defaultMaxKeys
	}
	if c.Cache.SweepSeconds <= 0 {
		c.Cache.SweepSeconds = defaultSweepSeconds
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = defaultSearchLimit
	}
	if c.Search.DefaultThreshold <= 0 || c.Search.DefaultThreshold > 1 {
		c.Search.DefaultThreshold = defaultSearchThreshold
	}
	if c.Search.DefaultProvider == "" {
		c.Search.DefaultProvider = string(models.EmbeddingSourceRemote)
	}
	if c.TTL.AnalysisSeconds <= 0 {
		c.TTL.AnalysisSeconds = defaultAnalysisSeconds
	}
	if c.TTL.SynonymSeconds <= 0 {
		c.TTL.SynonymSeconds = defaultSynonymSeconds
	}
	if c.TTL.AntonymSeconds <= 0 {
		c.TTL.AntonymSeconds = defaultAntonymSeconds
	}
	if c.TTL.DefinitionSeconds <= 0 {
		c.TTL.DefinitionSeconds = defaultDefSeconds
	}
	if c.TTL.ContextSeconds <= 0 {
		c.TTL.ContextSeconds = defaultContextSeconds
	}
	if c.TTL.EmbeddingSeconds <= 0 {
		c.TTL.EmbeddingSeconds = defaultEmbeddingSeconds
	}
	if c.TTL.SearchSeconds <= 0 {
		c.TTL.SearchSeconds = defaultSearchSeconds
	}
}

// GetProvider returns the provider config for a name, case-insensitively.
func (c *Config) GetProvider(name string) (models.ProviderConfig, bool) {
	p, ok := c.Providers[strings.ToLower(name)]
	return p, ok
}

// DefaultProvider returns the first provider marked as default by the
// conventional name "default", falling back to any single configured provider.
func (c *Config) DefaultProvider() (string, models.ProviderConfig, bool) {
	if p, ok := c.Providers["default"]; ok {
		return "default", p, true
	}
	if len(c.Providers) == 1 {
		for name, p := range c.Providers {
			return name, p, true
		}
	}
	return "", models.ProviderConfig{}, false
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Server.Environment, "production")
}

// GetNormalizedLogLevel returns the log level lowercased with a default
func (c *Config) GetNormalizedLogLevel() string {
	level := strings.ToLower(strings.TrimSpace(c.Server.LogLevel))
	if level == "" {
		return "info"
	}
	return level
}

// SetupLogLevel applies the configured log level to the fiber logger
func (c *Config) SetupLogLevel() {
	switch c.GetNormalizedLogLevel() {
	case "debug":
		fiberlog.SetLevel(fiberlog.LevelDebug)
	case "warn":
		fiberlog.SetLevel(fiberlog.LevelWarn)
	case "error":
		fiberlog.SetLevel(fiberlog.LevelError)
	default:
		fiberlog.SetLevel(fiberlog.LevelInfo)
	}
}

// substituteEnvVars replaces ${VAR_NAME} and ${VAR_NAME:-default} patterns with environment variables
func substituteEnvVars(content string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::(-[^}]*))?\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		submatches := re.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		defaultValue := ""

		if len(submatches) > 2 && submatches[2] != "" {
			defaultValue = strings.TrimPrefix(submatches[2], "-")
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}
