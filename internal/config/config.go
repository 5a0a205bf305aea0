package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds worker configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int
	DBConnectAttempts int
	MigrateAttempts   int

	RemoteURL      string
	RemoteDB       string
	RemoteUser     string
	RemotePassword string
	RemoteTimeout  time.Duration

	AssetBaseURL string
	ProbeTimeout time.Duration

	// RemoteQuantityField names the source field treated as on-hand stock.
	// The source system exposes several candidates (qty_available,
	// virtual_available, free_qty) and the right one depends on how the
	// warehouse is configured, so it stays configurable.
	RemoteQuantityField string

	// SkipUnchangedUpdates makes reconciliation diff the mapped payload
	// against the stored row and skip the UPDATE when nothing changed.
	SkipUnchangedUpdates bool

	SyncInterval      time.Duration
	SyncBatchSize     int
	DriftBatchSize    int
	ImageDriftWindow  time.Duration
	ImageDriftLimit   int
	EnabledJobs       []string
	WatermarkFile     string
	WatermarkBackfill time.Duration

	MetricsAddr string
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_SERVICE", "catalogsync"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),

		DBType:            getenv("DATABASE_TYPE", "mysql"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "3306"),
		DBName:            getenv("DATABASE_NAME", "storefront"),
		DBUser:            getenv("DATABASE_USER", "root"),
		DBPassword:        getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 2),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 4),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),
		DBConnectAttempts: getenvInt("DATABASE_CONNECT_ATTEMPTS", 3),
		MigrateAttempts:   getenvInt("MIGRATE_ATTEMPTS", 5),

		RemoteURL:      getenv("REMOTE_URL", ""),
		RemoteDB:       getenv("REMOTE_DB", ""),
		RemoteUser:     getenv("REMOTE_USER", ""),
		RemotePassword: getenv("REMOTE_PASSWORD", ""),
		RemoteTimeout:  getenvDuration("REMOTE_TIMEOUT", 30*time.Second),

		AssetBaseURL: getenv("ASSET_BASE_URL", "https://odoo.eboutiques.com"),
		ProbeTimeout: getenvDuration("ASSET_PROBE_TIMEOUT", 5*time.Second),

		RemoteQuantityField:  getenv("REMOTE_QUANTITY_FIELD", "qty_available"),
		SkipUnchangedUpdates: getenvBool("SYNC_SKIP_UNCHANGED", false),

		SyncInterval:      getenvDuration("SYNC_INTERVAL", 30*time.Second),
		SyncBatchSize:     getenvInt("SYNC_BATCH_SIZE", 50),
		DriftBatchSize:    getenvInt("DRIFT_BATCH_SIZE", 50),
		ImageDriftWindow:  getenvDuration("IMAGE_DRIFT_WINDOW", 2*time.Hour),
		ImageDriftLimit:   getenvInt("IMAGE_DRIFT_LIMIT", 50),
		EnabledJobs:       parseList(getenv("ENABLED_JOBS", "")),
		WatermarkFile:     getenv("WATERMARK_FILE", "product_time_stamp.txt"),
		WatermarkBackfill: getenvDuration("WATERMARK_BACKFILL", 24*time.Hour),

		MetricsAddr: getenv("METRICS_ADDR", ":9105"),
	}

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
