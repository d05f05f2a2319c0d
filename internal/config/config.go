// internal/config/config.go

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	Mongo       MongoConfig
	NATS        NATSConfig
	Scan        ScanConfig
	Discovery   DiscoveryConfig
	Scoring     ScoringConfig
	RateLimit   RateLimitConfig
	Telegram    TelegramConfig
	VK          VKConfig
	Twitter     TwitterConfig
	Notify      NotifyConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CorsOrigins     []string
}

// DatabaseConfig holds Postgres configuration
type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Database     string
	MaxOpenConns int
	SSLMode      string
}

// MongoConfig holds MongoDB configuration for the analytics sink
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

// NATSConfig holds NATS configuration
type NATSConfig struct {
	URL            string
	MaxReconnects  int
	ReconnectWait  time.Duration
	ConnectTimeout time.Duration
}

// ScanConfig holds scan orchestration configuration
type ScanConfig struct {
	HoursBack        int
	MinScore         float64
	MinContentLength int
	ScanTimeout      time.Duration
	EventsTopic      string
	BackupDir        string

	TelegramSourcePause time.Duration
	VKBatchSize         int
	VKBatchPause        time.Duration
	TwitterSourcePause  time.Duration
}

// DiscoveryConfig holds trending term discovery configuration
type DiscoveryConfig struct {
	MinFrequency  int
	TopWords      int
	TopPhrases    int
	MinWordLength int
}

// ScoringConfig holds relevance scoring and ranking configuration.
// Weight tables can be overridden from a YAML file, see LoadWeights.
type ScoringConfig struct {
	BrandTerms      []string
	PriorityWeights map[string]float64
	CategoryWeights map[string]float64

	TelegramEngagementDivisor float64
	TelegramEngagementFloor   float64
	VKEngagementDivisor       float64
	VKEngagementFloor         float64
	TwitterEngagementDivisor  float64
	TwitterEngagementFloor    float64

	WeightsFile string
}

// RateLimitConfig holds upstream API pacing configuration
type RateLimitConfig struct {
	PerMinute  int
	MinSpacing time.Duration
}

// TelegramConfig holds the Telegram gateway configuration
type TelegramConfig struct {
	GatewayURL string
	APIKey     string
	PageLimit  int
}

// VKConfig holds VK API configuration
type VKConfig struct {
	AccessToken string
	APIVersion  string
	PostCount   int
}

// TwitterConfig holds Twitter API configuration
type TwitterConfig struct {
	BearerToken    string
	ConsumerKey    string
	ConsumerSecret string
	AccessToken    string
	AccessSecret   string
	MaxResults     int
}

// NotifyConfig holds backup notification configuration
type NotifyConfig struct {
	BotToken string
	ChatID   string
}

// Load loads configuration from environment variables
func Load() (Config, error) {
	config := Config{
		Environment: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 15*time.Minute),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 15*time.Minute),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
			CorsOrigins:     getEnvAsSlice("SERVER_CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnvAsInt("DB_PORT", 5432),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", "postgres"),
			Database:     getEnv("DB_NAME", "brandpulse"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGO_DATABASE", "brandpulse"),
			ConnectTimeout: getEnvAsDuration("MONGO_CONNECT_TIMEOUT", 5*time.Second),
		},
		NATS: NATSConfig{
			URL:            getEnv("NATS_URL", "nats://localhost:4222"),
			MaxReconnects:  getEnvAsInt("NATS_MAX_RECONNECTS", 10),
			ReconnectWait:  getEnvAsDuration("NATS_RECONNECT_WAIT", 1*time.Second),
			ConnectTimeout: getEnvAsDuration("NATS_CONNECT_TIMEOUT", 2*time.Second),
		},
		Scan: ScanConfig{
			HoursBack:        getEnvAsInt("SCAN_HOURS_BACK", 24),
			MinScore:         getEnvAsFloat("SCAN_MIN_SCORE", 6.0),
			MinContentLength: getEnvAsInt("SCAN_MIN_CONTENT_LENGTH", 50),
			ScanTimeout:      getEnvAsDuration("SCAN_TIMEOUT", 10*time.Minute),
			EventsTopic:      getEnv("SCAN_EVENTS_TOPIC", "scan"),
			BackupDir:        getEnv("SCAN_BACKUP_DIR", "/tmp/brandpulse-backups"),

			TelegramSourcePause: getEnvAsDuration("SCAN_TELEGRAM_SOURCE_PAUSE", 2*time.Second),
			VKBatchSize:         getEnvAsInt("SCAN_VK_BATCH_SIZE", 5),
			VKBatchPause:        getEnvAsDuration("SCAN_VK_BATCH_PAUSE", 30*time.Second),
			TwitterSourcePause:  getEnvAsDuration("SCAN_TWITTER_SOURCE_PAUSE", 2*time.Second),
		},
		Discovery: DiscoveryConfig{
			MinFrequency:  getEnvAsInt("DISCOVERY_MIN_FREQUENCY", 100),
			TopWords:      getEnvAsInt("DISCOVERY_TOP_WORDS", 50),
			TopPhrases:    getEnvAsInt("DISCOVERY_TOP_PHRASES", 30),
			MinWordLength: getEnvAsInt("DISCOVERY_MIN_WORD_LENGTH", 4),
		},
		Scoring: ScoringConfig{
			BrandTerms: getEnvAsSlice("SCORING_BRAND_TERMS",
				[]string{"north sails", "northsails", "норт сейлс"}),
			PriorityWeights: map[string]float64{
				"critical": 3,
				"high":     2,
				"medium":   1,
				"low":      0,
			},
			CategoryWeights: map[string]float64{
				"sailing":    3,
				"fashion":    2,
				"lifestyle":  2,
				"competitor": 1,
				"influencer": 1,
				"news":       0.5,
				"brand":      1,
				"community":  0.5,
			},

			TelegramEngagementDivisor: getEnvAsFloat("SCORING_TELEGRAM_ENGAGEMENT_DIVISOR", 100),
			TelegramEngagementFloor:   getEnvAsFloat("SCORING_TELEGRAM_ENGAGEMENT_FLOOR", 100),
			VKEngagementDivisor:       getEnvAsFloat("SCORING_VK_ENGAGEMENT_DIVISOR", 50),
			VKEngagementFloor:         getEnvAsFloat("SCORING_VK_ENGAGEMENT_FLOOR", 50),
			TwitterEngagementDivisor:  getEnvAsFloat("SCORING_TWITTER_ENGAGEMENT_DIVISOR", 25),
			TwitterEngagementFloor:    getEnvAsFloat("SCORING_TWITTER_ENGAGEMENT_FLOOR", 25),

			WeightsFile: getEnv("SCORING_WEIGHTS_FILE", ""),
		},
		RateLimit: RateLimitConfig{
			PerMinute:  getEnvAsInt("RATE_LIMIT_PER_MINUTE", 100),
			MinSpacing: getEnvAsDuration("RATE_LIMIT_MIN_SPACING", 350*time.Millisecond),
		},
		Telegram: TelegramConfig{
			GatewayURL: getEnv("TELEGRAM_GATEWAY_URL", ""),
			APIKey:     getEnv("TELEGRAM_GATEWAY_API_KEY", ""),
			PageLimit:  getEnvAsInt("TELEGRAM_PAGE_LIMIT", 100),
		},
		VK: VKConfig{
			AccessToken: getEnv("VK_ACCESS_TOKEN", ""),
			APIVersion:  getEnv("VK_API_VERSION", "5.131"),
			PostCount:   getEnvAsInt("VK_POST_COUNT", 50),
		},
		Twitter: TwitterConfig{
			BearerToken:    getEnv("TWITTER_BEARER_TOKEN", ""),
			ConsumerKey:    getEnv("TWITTER_CONSUMER_KEY", ""),
			ConsumerSecret: getEnv("TWITTER_CONSUMER_SECRET", ""),
			AccessToken:    getEnv("TWITTER_ACCESS_TOKEN", ""),
			AccessSecret:   getEnv("TWITTER_ACCESS_SECRET", ""),
			MaxResults:     getEnvAsInt("TWITTER_MAX_RESULTS", 100),
		},
		Notify: NotifyConfig{
			BotToken: getEnv("BACKUP_BOT_TOKEN", ""),
			ChatID:   getEnv("BACKUP_CHAT_ID", ""),
		},
	}

	if config.Scoring.WeightsFile != "" {
		if err := config.Scoring.loadWeightsFile(); err != nil {
			return config, fmt.Errorf("loading weights file: %w", err)
		}
	}

	return config, validate(config)
}

// validate checks if config is valid
func validate(config Config) error {
	if config.Scan.MinContentLength < 0 {
		return fmt.Errorf("scan min content length cannot be negative")
	}
	if len(config.Scoring.BrandTerms) == 0 {
		return fmt.Errorf("at least one brand term is required")
	}

	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
