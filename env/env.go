package env

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// dotenvLoaded is declared first so the .env file is applied before the
// variables below read the environment.
var dotenvLoaded = loadDotEnv()

var (
	Port               = getEnv("HTTP_PORT", "8080")
	ClickHouseAddr     = getEnv("CLICKHOUSE_ADDR", "localhost:9000")
	ClickHouseDatabase = getEnv("CLICKHOUSE_DATABASE", "retail")
	ClickHouseUsername = getEnv("CLICKHOUSE_USERNAME", "default")
	ClickHousePassword = getEnv("CLICKHOUSE_PASSWORD", "")
	APIKey             = getEnv("API_KEY", "")

	RequestTimeout   = getEnvDuration("REQUEST_TIMEOUT", 30*time.Second)
	PromoMaxParallel = getEnvInt("PROMO_MAX_PARALLEL", 1)

	CacheBackend      = getEnv("CACHE_BACKEND", "memory")
	RedisURL          = getEnv("REDIS_URL", "redis://localhost:6379/0")
	CacheMaxEntries   = getEnvInt("CACHE_MAX_ENTRIES", 5000)
	DashboardCacheTTL = getEnvDuration("DASHBOARD_CACHE_TTL", 300*time.Second)
	DetailCacheTTL    = getEnvDuration("DETAIL_CACHE_TTL", 300*time.Second)
	PromoCacheTTL     = getEnvDuration("PROMO_CACHE_TTL", 300*time.Second)
	OptionsCacheTTL   = getEnvDuration("OPTIONS_CACHE_TTL", 1800*time.Second)

	RateLimitRPS   = getEnvInt("RATE_LIMIT_RPS", 20)
	RateLimitBurst = getEnvInt("RATE_LIMIT_BURST", 40)
	TrustProxy     = getEnv("TRUST_PROXY", "") == "true"

	LogLevel  = getEnv("LOG_LEVEL", "info")
	LogFormat = getEnv("LOG_FORMAT", "json")
)

// DotEnvLoaded reports whether a .env file was found at startup.
func DotEnvLoaded() bool {
	return dotenvLoaded
}

func loadDotEnv() bool {
	return godotenv.Load() == nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
