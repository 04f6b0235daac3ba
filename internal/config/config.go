package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/viper"
)

const (
	defaultWebsiteURL = "http://localhost:3000"
	// defaultAPIURL is the API mount point; the client appends /graphql and /users/signin
	defaultAPIURL = "http://localhost:3060/api"
)

type Config struct {
	Port         string
	Environment  string
	WebsiteURL   string
	StaticDir    string
	TemplatesDir string
	API          APIConfig
	Visitor      VisitorConfig
	Pages        PagesConfig
	Metrics      MetricsConfig
	LogLevel     string
}

type APIConfig struct {
	URL   string
	Key   string
	Token string
}

// VisitorConfig configures where the persisted visitor state (referral,
// matching fund) lives: a sealed cookie by default, Redis when RedisAddr is set.
type VisitorConfig struct {
	CookieSecret  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type PagesConfig struct {
	DefaultCollectiveSlug string
}

type MetricsConfig struct {
	Enabled   bool
	Namespace string
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("WEBSITE_URL", defaultWebsiteURL)
	viper.SetDefault("API_URL", defaultAPIURL)
	viper.SetDefault("STATIC_DIR", "static")
	viper.SetDefault("TEMPLATES_DIR", "templates")
	viper.SetDefault("REDIS_DB", "0")
	viper.SetDefault("METRICS_ENABLED", "true")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	redisDB, err := strconv.Atoi(getEnvOrViper("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("REDIS_DB must be an integer: %w", err)
	}

	metricsEnabled, err := strconv.ParseBool(getEnvOrViper("METRICS_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("METRICS_ENABLED must be a boolean: %w", err)
	}

	cfg := &Config{
		Port:         getEnvOrViper("PORT", "3000"),
		Environment:  getEnvOrViper("ENVIRONMENT", "development"),
		WebsiteURL:   getEnvOrViper("WEBSITE_URL", defaultWebsiteURL),
		StaticDir:    getEnvOrViper("STATIC_DIR", "static"),
		TemplatesDir: getEnvOrViper("TEMPLATES_DIR", "templates"),
		API: APIConfig{
			URL:   getEnvOrViper("API_URL", defaultAPIURL),
			Key:   getEnvOrViper("API_KEY", ""),
			Token: getEnvOrViper("API_TOKEN", ""),
		},
		Visitor: VisitorConfig{
			CookieSecret:  getEnvOrViper("COOKIE_SECRET", ""),
			RedisAddr:     getEnvOrViper("REDIS_ADDR", ""),
			RedisPassword: getEnvOrViper("REDIS_PASSWORD", ""),
			RedisDB:       redisDB,
		},
		Pages: PagesConfig{
			DefaultCollectiveSlug: getEnvOrViper("DEFAULT_COLLECTIVE_SLUG", ""),
		},
		Metrics: MetricsConfig{
			Enabled:   metricsEnabled,
			Namespace: getEnvOrViper("METRICS_NAMESPACE", "frontend"),
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the fields that have no usable default
func (c *Config) Validate() error {
	if c.API.URL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if c.Environment == "production" && c.Visitor.CookieSecret == "" {
		return fmt.Errorf("COOKIE_SECRET is required in production")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}
