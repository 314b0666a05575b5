package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers   []string
	KafkaGroupID   string
	SyncEventTopic string

	// Sync pipeline
	SyncConcurrencyLimit  int
	SyncHighFreqInterval  time.Duration
	SyncLowFreqInterval   time.Duration
	SyncAdapterTimeout    time.Duration
	SyncSchedulerInterval time.Duration
	SyncHistoryRetention  time.Duration

	// Provider APIs
	ProviderAPITimeout      time.Duration
	GoogleAdsAPIBaseURL     string
	FacebookAPIBaseURL      string
	TikTokAPIBaseURL        string
	LineAdsAPIBaseURL       string
	GA4APIBaseURL           string
	SearchConsoleAPIBaseURL string
	ShopeeAPIBaseURL        string

	// Analytics
	SummaryCacheTTL time.Duration

	// Alerting
	AlertRulesPath string
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "adpulse"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "adpulse123"),
		PostgresDB:       getEnv("POSTGRES_DB", "adpulse"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers:   getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:   getEnv("KAFKA_GROUP_ID", "adpulse-platform"),
		SyncEventTopic: getEnv("SYNC_EVENT_TOPIC", "adpulse.sync.events"),

		SyncConcurrencyLimit:  getIntEnv("SYNC_CONCURRENCY_LIMIT", 3),
		SyncHighFreqInterval:  getDuration("SYNC_HIGH_FREQ_INTERVAL", 4*time.Hour),
		SyncLowFreqInterval:   getDuration("SYNC_LOW_FREQ_INTERVAL", 6*time.Hour),
		SyncAdapterTimeout:    getDuration("SYNC_ADAPTER_TIMEOUT", 2*time.Minute),
		SyncSchedulerInterval: getDuration("SYNC_SCHEDULER_INTERVAL", time.Hour),
		SyncHistoryRetention:  getDuration("SYNC_HISTORY_RETENTION", 90*24*time.Hour),

		ProviderAPITimeout:      getDuration("PROVIDER_API_TIMEOUT", 60*time.Second),
		GoogleAdsAPIBaseURL:     getEnv("GOOGLE_ADS_API_BASE_URL", "https://googleads.googleapis.com/v16"),
		FacebookAPIBaseURL:      getEnv("FACEBOOK_API_BASE_URL", "https://graph.facebook.com/v18.0"),
		TikTokAPIBaseURL:        getEnv("TIKTOK_API_BASE_URL", "https://business-api.tiktok.com/open_api/v1.3"),
		LineAdsAPIBaseURL:       getEnv("LINE_ADS_API_BASE_URL", "https://ads.line.me/api/v3"),
		GA4APIBaseURL:           getEnv("GA4_API_BASE_URL", "https://analyticsdata.googleapis.com/v1beta"),
		SearchConsoleAPIBaseURL: getEnv("SEARCH_CONSOLE_API_BASE_URL", "https://searchconsole.googleapis.com/webmasters/v3"),
		ShopeeAPIBaseURL:        getEnv("SHOPEE_API_BASE_URL", "https://partner.shopeemobile.com/api/v2"),

		SummaryCacheTTL: getDuration("SUMMARY_CACHE_TTL", 5*time.Minute),

		AlertRulesPath: getEnv("ALERT_RULES_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
