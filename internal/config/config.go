package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
type Config struct {
	PexelsAPIKey      string `mapstructure:"PEXELS_API_KEY"`
	PexelsBaseURL     string `mapstructure:"PEXELS_BASE_URL"`
	SearchOrientation string `mapstructure:"SEARCH_ORIENTATION"`
	ImageSize         string `mapstructure:"IMAGE_SIZE"`

	ProductsFile       string `mapstructure:"PRODUCTS_FILE"`
	ImagesDir          string `mapstructure:"IMAGES_DIR"`
	SyncWorkers        int    `mapstructure:"SYNC_WORKERS"`
	HTTPTimeoutSeconds int    `mapstructure:"HTTP_TIMEOUT_SECONDS"`

	// USER_AGENTS is split on "|" or newlines; user agents contain commas.
	UserAgentList string   `mapstructure:"USER_AGENTS"`
	UserAgents    []string `mapstructure:"-"`
	HTTPProxies   []string `mapstructure:"HTTP_PROXIES"`

	LogLevel   string `mapstructure:"LOG_LEVEL"`
	LogFormat  string `mapstructure:"LOG_FORMAT"`
	ServerPort string `mapstructure:"SERVER_PORT"`

	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisDB             int    `mapstructure:"REDIS_DB"`
	SearchCacheTTLHours int    `mapstructure:"SEARCH_CACHE_TTL_HOURS"`

	PostgresURL string `mapstructure:"POSTGRES_URL"`

	S3Bucket  string `mapstructure:"S3_BUCKET"`
	S3Prefix  string `mapstructure:"S3_PREFIX"`
	AWSRegion string `mapstructure:"AWS_REGION"`
}

var defaults = map[string]interface{}{
	"PEXELS_API_KEY":         "",
	"PEXELS_BASE_URL":        "https://api.pexels.com",
	"SEARCH_ORIENTATION":     "square",
	"IMAGE_SIZE":             "medium",
	"PRODUCTS_FILE":          "products.json",
	"IMAGES_DIR":             "img",
	"SYNC_WORKERS":           1,
	"HTTP_TIMEOUT_SECONDS":   30,
	"USER_AGENTS":            "",
	"HTTP_PROXIES":           "",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "console",
	"SERVER_PORT":            "8080",
	"REDIS_ADDR":             "",
	"REDIS_PASSWORD":         "",
	"REDIS_DB":               0,
	"SEARCH_CACHE_TTL_HOURS": 168,
	"POSTGRES_URL":           "",
	"S3_BUCKET":              "",
	"S3_PREFIX":              "",
	"AWS_REGION":             "us-east-1",
}

var (
	orientations = []string{"square", "landscape", "portrait"}
	imageSizes   = []string{"original", "large2x", "large", "medium", "small", "portrait", "landscape", "tiny"}
)

// Load reads configuration from the env file (if present), the environment
// and any flags already bound on v. envFile may be empty to skip the file.
func Load(v *viper.Viper, envFile string) (*Config, error) {
	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		// A missing env file is fine; configuration can come purely from the environment.
		_ = v.ReadInConfig()
	}
	v.AutomaticEnv()

	// Every key needs a default so AutomaticEnv values are visible to Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.UserAgents = compact(strings.FieldsFunc(cfg.UserAgentList, func(r rune) bool {
		return r == '|' || r == '\n' || r == '\r'
	}))
	cfg.HTTPProxies = compact(cfg.HTTPProxies)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that would make a sync run meaningless.
// A missing API key is not an error here: the run proceeds and every lookup fails.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ProductsFile) == "" {
		return fmt.Errorf("PRODUCTS_FILE must not be empty")
	}
	if strings.TrimSpace(c.ImagesDir) == "" {
		return fmt.Errorf("IMAGES_DIR must not be empty")
	}
	if c.SyncWorkers < 1 {
		return fmt.Errorf("SYNC_WORKERS must be at least 1, got %d", c.SyncWorkers)
	}
	if c.HTTPTimeoutSeconds < 1 {
		return fmt.Errorf("HTTP_TIMEOUT_SECONDS must be at least 1, got %d", c.HTTPTimeoutSeconds)
	}
	if !contains(orientations, c.SearchOrientation) {
		return fmt.Errorf("SEARCH_ORIENTATION must be one of %v, got %q", orientations, c.SearchOrientation)
	}
	if !contains(imageSizes, c.ImageSize) {
		return fmt.Errorf("IMAGE_SIZE must be one of %v, got %q", imageSizes, c.ImageSize)
	}
	return nil
}

func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c *Config) SearchCacheTTL() time.Duration {
	return time.Duration(c.SearchCacheTTLHours) * time.Hour
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
