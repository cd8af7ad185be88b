// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like WEB_SEARCH_API_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile looks for .env in the usual run locations so the binary and
// the tests pick up the same secrets.
func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
		"../../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

// expandEnvVars resolves ${VAR} placeholders left in YAML values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig applies well-known env vars when YAML left a secret empty.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Adapters.WebSearch.APIKey == "" {
		if val := os.Getenv("WEB_SEARCH_API_KEY"); val != "" {
			cfg.Adapters.WebSearch.APIKey = val
		}
	}
	if cfg.Adapters.WebSearch.EngineID == "" {
		if val := os.Getenv("WEB_SEARCH_ENGINE_ID"); val != "" {
			cfg.Adapters.WebSearch.EngineID = val
		}
	}

	if cfg.Adapters.GenAI.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.Adapters.GenAI.APIKey = val
		}
	}

	if cfg.Database.Postgres.User == "" {
		if val := os.Getenv("DB_USER"); val != "" {
			cfg.Database.Postgres.User = val
		}
	}
	if cfg.Database.Postgres.Password == "" {
		if val := os.Getenv("DB_PASSWORD"); val != "" {
			cfg.Database.Postgres.Password = val
		}
	}
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for optional configuration fields
func applyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10000
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 30000
	}

	// Router defaults: the whole fan-out fits in the request budget, each
	// adapter gets a slice of it.
	if cfg.Router.RequestBudget == 0 {
		cfg.Router.RequestBudget = 8000
	}
	if cfg.Router.AdapterTimeout == 0 {
		cfg.Router.AdapterTimeout = 5000
	}
	if cfg.Router.Thresholds.LocalOnly == 0 {
		cfg.Router.Thresholds.LocalOnly = 0.8
	}
	if cfg.Router.Thresholds.HybridFloor == 0 {
		cfg.Router.Thresholds.HybridFloor = 0.5
	}
	if cfg.Router.Thresholds.MinimumFloor == 0 {
		cfg.Router.Thresholds.MinimumFloor = 0.3
	}
	if cfg.Router.Scoring.OverlapBonusCap == 0 {
		cfg.Router.Scoring.OverlapBonusCap = 0.2
	}
	if cfg.Router.Scoring.StalenessPenalty == 0 {
		cfg.Router.Scoring.StalenessPenalty = 0.15
	}
	if cfg.Router.Scoring.AgreementBoost == 0 {
		cfg.Router.Scoring.AgreementBoost = 0.1
	}
	if cfg.Router.Scoring.FallbackConfidence == 0 {
		cfg.Router.Scoring.FallbackConfidence = 0.2
	}
	if cfg.Router.Scoring.FreshnessFastDays == 0 {
		cfg.Router.Scoring.FreshnessFastDays = 2
	}
	if cfg.Router.Scoring.FreshnessSlowDays == 0 {
		cfg.Router.Scoring.FreshnessSlowDays = 90
	}

	// Adapter defaults
	if cfg.Adapters.WebSearch.Timeout == 0 {
		cfg.Adapters.WebSearch.Timeout = 10000
	}
	if cfg.Adapters.WebSearch.MaxResults == 0 {
		cfg.Adapters.WebSearch.MaxResults = 5
	}
	if cfg.Adapters.WebSearch.MinRelevance == 0 {
		cfg.Adapters.WebSearch.MinRelevance = 1.0
	}
	if cfg.Adapters.GenAI.Timeout == 0 {
		cfg.Adapters.GenAI.Timeout = 60000
	}
	if cfg.Adapters.GenAI.MaxRetries == 0 {
		cfg.Adapters.GenAI.MaxRetries = 2
	}
	if cfg.Adapters.GenAI.MaxTokens == 0 {
		cfg.Adapters.GenAI.MaxTokens = 1024
	}
	if cfg.Adapters.GenAI.Temperature == 0 {
		cfg.Adapters.GenAI.Temperature = 0.3
	}
	if cfg.Adapters.OfficialSites.Index == "" {
		cfg.Adapters.OfficialSites.Index = "official_sites"
	}
	if cfg.Adapters.OfficialSites.MaxResults == 0 {
		cfg.Adapters.OfficialSites.MaxResults = 5
	}
	if cfg.Adapters.Partners.MaxResults == 0 {
		cfg.Adapters.Partners.MaxResults = 5
	}
	if cfg.Adapters.Community.KeyPrefix == "" {
		cfg.Adapters.Community.KeyPrefix = "community:suggestions"
	}
	if cfg.Adapters.Community.MaxResults == 0 {
		cfg.Adapters.Community.MaxResults = 3
	}

	// Feedback defaults: hourly cleanup, patterns expire after 30 idle days
	// unless used at least 3 times.
	if cfg.Feedback.CleanupInterval == 0 {
		cfg.Feedback.CleanupInterval = 3600000
	}
	if cfg.Feedback.MaxPatternAge == 0 {
		cfg.Feedback.MaxPatternAge = 30
	}
	if cfg.Feedback.MinPatternUsage == 0 {
		cfg.Feedback.MinPatternUsage = 3
	}
	if cfg.Feedback.Report.Interval == 0 {
		cfg.Feedback.Report.Interval = 7 * 24 * 3600000
	}

	// Session defaults
	if cfg.Session.InactivityTimeout == 0 {
		cfg.Session.InactivityTimeout = 1800000
	}
	if cfg.Session.SweepInterval == 0 {
		cfg.Session.SweepInterval = 300000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}

	// Elasticsearch URL fallback
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Database.Redis.Address == "" {
		return fmt.Errorf("database.redis.address is required")
	}

	t := cfg.Router.Thresholds
	if !(t.MinimumFloor < t.HybridFloor && t.HybridFloor < t.LocalOnly) {
		return fmt.Errorf("router.thresholds must satisfy minimum_floor < hybrid_floor < local_only")
	}
	if t.LocalOnly > 1.0 || t.MinimumFloor < 0 {
		return fmt.Errorf("router.thresholds must stay within [0,1]")
	}

	if cfg.Router.AdapterTimeout > cfg.Router.RequestBudget {
		return fmt.Errorf("router.adapter_timeout must not exceed router.request_budget")
	}

	if cfg.Feedback.Report.Enabled {
		if cfg.Feedback.Report.FromEmail == "" || len(cfg.Feedback.Report.Recipients) == 0 {
			return fmt.Errorf("feedback.report requires from_email and recipients when enabled")
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
