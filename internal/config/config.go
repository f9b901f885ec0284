package config

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

type Config struct {
	Env         string
	Port        string
	BaseURL     string // Public base URL used to build short links and QR codes
	CORSOrigin  string
	DatabaseURL string
	DBMaxConns  int
	RedisURL    string // Optional, the service runs without a cache when unreachable

	// Use an in-process cache when Redis is not configured or unreachable.
	// Only safe with a single instance.
	LocalCacheFallback bool

	RabbitMQURL         string // Optional, an in-process queue is used when empty
	RegistrationQueue   string
	RegistrationWorkers int

	JWTSecret     string
	JWTTTLMinutes int

	BcryptCost    int
	HasherWorkers int
	DNSCheck      bool // Resolve the destination host before accepting a URL

	RateLimitRPS           float64 // General API endpoints (requests per second)
	RateLimitBurst         int
	RateLimitAuthRPS       float64 // Auth endpoints (stricter)
	RateLimitAuthBurst     int
	RateLimitShortenRPS    float64 // URL creation (stricter)
	RateLimitShortenBurst  int
	RateLimitRedirectRPS   float64 // Redirects (lenient)
	RateLimitRedirectBurst int

	LogLevel string
	LogFile  string
}

func Load() *Config {
	// Try to load .env file (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	env := strings.ToLower(getEnv("APP_ENV", EnvDevelopment))

	return &Config{
		Env:         env,
		Port:        getEnv("PORT", "8080"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		CORSOrigin:  getEnv("CORS_ORIGIN", "http://localhost:3002"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBMaxConns:  getEnvInt("DB_MAX_OPEN_CONNS", 50),
		RedisURL:    getEnv("REDIS_URL", ""),

		LocalCacheFallback: getEnvBool("LOCAL_CACHE_FALLBACK", false),

		RabbitMQURL:         getEnv("RABBITMQ_URL", ""),
		RegistrationQueue:   getEnv("REGISTRATION_QUEUE", "registration"),
		RegistrationWorkers: getEnvInt("REGISTRATION_WORKERS", 2),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTTTLMinutes: getEnvInt("JWT_TTL_MINUTES", 60),

		BcryptCost:    getEnvInt("BCRYPT_COST", DefaultBcryptCost(env)),
		HasherWorkers: getEnvInt("HASHER_WORKERS", runtime.NumCPU()),
		DNSCheck:      getEnvBool("DNS_CHECK", true),

		RateLimitRPS:           getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:         getEnvInt("RATE_LIMIT_BURST", 20),
		RateLimitAuthRPS:       getEnvFloat("RATE_LIMIT_AUTH_RPS", 5),
		RateLimitAuthBurst:     getEnvInt("RATE_LIMIT_AUTH_BURST", 10),
		RateLimitShortenRPS:    getEnvFloat("RATE_LIMIT_SHORTEN_RPS", 2),
		RateLimitShortenBurst:  getEnvInt("RATE_LIMIT_SHORTEN_BURST", 5),
		RateLimitRedirectRPS:   getEnvFloat("RATE_LIMIT_REDIRECT_RPS", 30),
		RateLimitRedirectBurst: getEnvInt("RATE_LIMIT_REDIRECT_BURST", 60),

		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),
	}
}

// DefaultBcryptCost picks the hashing work factor for a run mode.
func DefaultBcryptCost(env string) int {
	switch env {
	case EnvProduction:
		return 12
	case EnvTest:
		return bcrypt.MinCost
	default:
		return bcrypt.DefaultCost
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
