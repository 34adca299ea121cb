package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir       string
	APIBaseURL    string
	LogLevel      string
	LogFile       string
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration
	UnitPrice     float64
	SubmitDelay   time.Duration
	RedirectDelay time.Duration
	HTTPTimeout   time.Duration
	ListenAddr    string
	MetricsAddr   string
	Theme         string
	NoColor       bool

	// BreakerFailures is the number of consecutive failed API calls that
	// opens the booking client's circuit breaker.
	BreakerFailures int
}

// Load reads configuration from environment variables. A .env file in the
// working directory is applied first when present; real env vars win.
func Load() *Config {
	_ = godotenv.Load()

	dataDir := getEnv("HOTELRES_DATA_DIR", defaultDataDir())
	return &Config{
		DataDir:       dataDir,
		APIBaseURL:    getEnv("HOTELRES_API_URL", ""),
		LogLevel:      getEnv("HOTELRES_LOG_LEVEL", "info"),
		LogFile:       getEnv("HOTELRES_LOG_FILE", filepath.Join(dataDir, "hotelres.log")),
		RedisAddr:     getEnv("HOTELRES_REDIS_ADDR", ""),
		RedisPassword: getEnv("HOTELRES_REDIS_PASSWORD", ""),
		SessionTTL:    getEnvAsDuration("HOTELRES_SESSION_TTL", 30*time.Minute),
		UnitPrice:     getEnvAsFloat("HOTELRES_UNIT_PRICE", 250),
		SubmitDelay:   getEnvAsDuration("HOTELRES_SUBMIT_DELAY", 2*time.Second),
		RedirectDelay: getEnvAsDuration("HOTELRES_REDIRECT_DELAY", time.Second),
		HTTPTimeout:   getEnvAsDuration("HOTELRES_HTTP_TIMEOUT", 10*time.Second),
		ListenAddr:    getEnv("HOTELRES_LISTEN_ADDR", ":5000"),
		MetricsAddr:   getEnv("HOTELRES_METRICS_ADDR", ""),
		Theme:         getEnv("HOTELRES_THEME", "classic"),
		NoColor:       getEnvAsBool("HOTELRES_NO_COLOR", false),

		BreakerFailures: getEnvAsInt("HOTELRES_BREAKER_FAILURES", 5),
	}
}

// SessionDir is where session-scoped entries live when Redis is not configured.
func (c *Config) SessionDir() string {
	return filepath.Join(os.TempDir(), "hotelres-session-"+strconv.Itoa(os.Getuid()))
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".hotelres"
	}
	return filepath.Join(home, ".hotelres")
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil && value >= 0 {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
