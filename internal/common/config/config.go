// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Router   RouterConfig   `mapstructure:"router"`
	Adapters AdaptersConfig `mapstructure:"adapters"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
	Session  SessionConfig  `mapstructure:"session"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address      string `mapstructure:"address"`
	ReadTimeout  int    `mapstructure:"read_timeout"`  // milliseconds
	WriteTimeout int    `mapstructure:"write_timeout"` // milliseconds
}

// RouterConfig holds the pipeline budgets and the decision policy. The
// local-only/hybrid/fallback boundaries are tunable here, never hardcoded
// in the engine.
type RouterConfig struct {
	RequestBudget  int `mapstructure:"request_budget"`   // milliseconds, whole fan-out
	AdapterTimeout int `mapstructure:"adapter_timeout"`  // milliseconds, per adapter
	AnswerCacheTTL int `mapstructure:"answer_cache_ttl"` // milliseconds, 0 disables

	Thresholds ThresholdConfig `mapstructure:"thresholds"`
	Scoring    ScoringConfig   `mapstructure:"scoring"`
}

type ThresholdConfig struct {
	LocalOnly    float64 `mapstructure:"local_only"`    // best local above this -> local-only
	HybridFloor  float64 `mapstructure:"hybrid_floor"`  // best local above this -> hybrid
	MinimumFloor float64 `mapstructure:"minimum_floor"` // nothing above this -> fallback
}

type ScoringConfig struct {
	OverlapBonusCap    float64 `mapstructure:"overlap_bonus_cap"`
	StalenessPenalty   float64 `mapstructure:"staleness_penalty"`
	AgreementBoost     float64 `mapstructure:"agreement_boost"`
	FallbackConfidence float64 `mapstructure:"fallback_confidence"`
	FreshnessFastDays  int     `mapstructure:"freshness_fast_days"` // events/weather window
	FreshnessSlowDays  int     `mapstructure:"freshness_slow_days"` // static facts window
}

// AdaptersConfig holds settings for the external knowledge sources.
type AdaptersConfig struct {
	WebSearch     WebSearchConfig     `mapstructure:"web_search"`
	GenAI         GenAIConfig         `mapstructure:"genai"`
	OfficialSites OfficialSitesConfig `mapstructure:"official_sites"`
	Partners      PartnersConfig      `mapstructure:"partners"`
	Community     CommunityConfig     `mapstructure:"community"`
}

type WebSearchConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	APIKey       string  `mapstructure:"api_key"`
	EngineID     string  `mapstructure:"engine_id"`
	Timeout      int     `mapstructure:"timeout"` // milliseconds
	MaxResults   int     `mapstructure:"max_results"`
	MinRelevance float64 `mapstructure:"min_relevance"`
}

type GenAIConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
	MaxRetries  int     `mapstructure:"max_retries"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

type OfficialSitesConfig struct {
	Index      string `mapstructure:"index"`
	MaxResults int    `mapstructure:"max_results"`
}

type PartnersConfig struct {
	MaxResults int `mapstructure:"max_results"`
}

type CommunityConfig struct {
	KeyPrefix  string `mapstructure:"key_prefix"`
	MaxResults int    `mapstructure:"max_results"`
}

// FeedbackConfig drives the learning store and its maintenance loops.
type FeedbackConfig struct {
	CleanupInterval int `mapstructure:"cleanup_interval"` // milliseconds
	MaxPatternAge   int `mapstructure:"max_pattern_age"`  // days
	MinPatternUsage int `mapstructure:"min_pattern_usage"`

	Report struct {
		Enabled    bool     `mapstructure:"enabled"`
		Interval   int      `mapstructure:"interval"` // milliseconds
		FromEmail  string   `mapstructure:"from_email"`
		Recipients []string `mapstructure:"recipients"`
		AWSRegion  string   `mapstructure:"aws_region"`
	} `mapstructure:"report"`
}

type SessionConfig struct {
	InactivityTimeout int `mapstructure:"inactivity_timeout"` // milliseconds
	SweepInterval     int `mapstructure:"sweep_interval"`     // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
