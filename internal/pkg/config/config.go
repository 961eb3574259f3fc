package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/piresc/tallytrack/internal/pkg/models"
)

const (
	darajaSandboxURL    = "https://sandbox.safaricom.co.ke"
	darajaProductionURL = "https://api.safaricom.co.ke"
)

func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" {
		// Load config from file
		err := godotenv.Load(configPath)
		if err != nil {
			log.Println("error loading config from file", err)
		}
	}
	// Create config from environment variables
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "votes-service")
	configs.App.Environment = GetEnv("APP_ENV", "")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", true)
	configs.App.Version = GetEnv("APP_VERSION", "")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("SERVER_PORT", 5000)
	configs.Server.ReadTimeout = GetEnvAsInt("SERVER_READ_TIMEOUT", 15)
	configs.Server.WriteTimeout = GetEnvAsInt("SERVER_WRITE_TIMEOUT", 15)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 30)
	configs.Server.AllowedOrigins = GetEnvAsSlice("SERVER_ALLOWED_ORIGINS", []string{"*"})

	// Database config
	configs.Database.Driver = GetEnv("DB_DRIVER", "pgx")
	configs.Database.Host = GetEnv("DB_HOST", "")
	configs.Database.Port = GetEnvAsInt("DB_PORT", 5432)
	configs.Database.Username = GetEnv("DB_USERNAME", "")
	configs.Database.Password = GetEnv("DB_PASSWORD", "")
	configs.Database.Database = GetEnv("DB_DATABASE", "")
	configs.Database.SSLMode = GetEnv("DB_SSL_MODE", "disable")
	configs.Database.MaxConns = GetEnvAsInt("DB_MAX_CONNS", 0)
	configs.Database.IdleConns = GetEnvAsInt("DB_IDLE_CONNS", 0)

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 6379)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 0)

	// NATS config
	configs.NATS.URL = GetEnv("NATS_URL", "")

	// JWT config
	configs.JWT.Secret = GetEnv("JWT_SECRET", "")
	configs.JWT.Expiration = GetEnvAsInt("JWT_EXPIRATION", 30)
	configs.JWT.Issuer = GetEnv("JWT_ISSUER", "tallytrack")

	// API key config
	configs.APIKey.Internal = GetEnv("INTERNAL_API_KEY", "")

	// NewRelic config
	configs.NewRelic.LicenseKey = GetEnv("NEW_RELIC_LICENSE_KEY", "")
	configs.NewRelic.AppName = GetEnv("NEW_RELIC_APP_NAME", "")
	configs.NewRelic.Enabled = GetEnvAsBool("NEW_RELIC_ENABLED", false)
	configs.NewRelic.LogsEnabled = GetEnvAsBool("NEW_RELIC_LOGS_ENABLED", false)
	configs.NewRelic.ForwardLogs = GetEnvAsBool("NEW_RELIC_FORWARD_LOGS", false)

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.FilePath = GetEnv("LOG_FILE_PATH", "")
	configs.Logger.Type = GetEnv("LOG_TYPE", "stdout")

	// Daraja config
	configs.Daraja.Environment = GetEnv("MPESA_ENV", "sandbox")
	configs.Daraja.BaseURL = GetEnv("MPESA_BASE_URL", darajaBaseURL(configs.Daraja.Environment))
	configs.Daraja.ConsumerKey = GetEnv("MPESA_CONSUMER_KEY", "")
	configs.Daraja.ConsumerSecret = GetEnv("MPESA_CONSUMER_SECRET", "")
	configs.Daraja.ShortCode = GetEnv("MPESA_SHORTCODE", "174379")
	configs.Daraja.PassKey = GetEnv("MPESA_PASSKEY", "")
	configs.Daraja.CallbackBaseURL = strings.TrimRight(GetEnv("PUBLIC_CALLBACK_URL", ""), "/")
	configs.Daraja.TransactionType = GetEnv("MPESA_TRANSACTION_TYPE", "CustomerPayBillOnline")
	configs.Daraja.AccountLabel = GetEnv("PAYBILL_LABEL", "Tallytrack Africa Under 40 Awards")
	configs.Daraja.TimeoutSeconds = GetEnvAsInt("DARAJA_TIMEOUT_SECONDS", 15)
	configs.Daraja.TokenSkewSeconds = GetEnvAsInt("DARAJA_TOKEN_SKEW_SECONDS", 60)
	configs.Daraja.BreakerFailures = GetEnvAsInt("DARAJA_BREAKER_FAILURES", 5)
	configs.Daraja.BreakerCooldown = GetEnvAsInt("DARAJA_BREAKER_COOLDOWN_SECONDS", 30)

	// Turnstile config
	configs.Turnstile.Secret = GetEnv("TURNSTILE_SECRET", "")
	configs.Turnstile.VerifyURL = GetEnv("TURNSTILE_VERIFY_URL", "https://challenges.cloudflare.com/turnstile/v0/siteverify")
	configs.Turnstile.TimeoutSeconds = GetEnvAsInt("TURNSTILE_TIMEOUT_SECONDS", 5)

	// Vote config
	configs.Vote.UnitPrice = GetEnvAsInt64("VOTE_UNIT_PRICE", 10)
	configs.Vote.MaxUnits = GetEnvAsInt("VOTE_MAX_UNITS", 10000)
	configs.Vote.SubmitRateLimit = GetEnvAsInt("VOTE_SUBMIT_RATE_LIMIT", 10)
	configs.Vote.SubmitRatePer = GetEnvAsInt("VOTE_SUBMIT_RATE_PERIOD_SECONDS", 60)

	// Callback config
	configs.Callback.ProcessTimeoutSeconds = GetEnvAsInt("CALLBACK_PROCESS_TIMEOUT_SECONDS", 20)
	configs.Callback.MaxInFlight = GetEnvAsInt("CALLBACK_MAX_IN_FLIGHT", 64)
	configs.Callback.MaxQueued = GetEnvAsInt("CALLBACK_MAX_QUEUED", 256)

	// Poller config
	configs.Poller.BaseURL = GetEnv("POLLER_BASE_URL", "http://localhost:5000")
	configs.Poller.IntervalSeconds = GetEnvAsInt("POLLER_INTERVAL_SECONDS", 3)
	configs.Poller.MaxAttempts = GetEnvAsInt("POLLER_MAX_ATTEMPTS", 10)

	return configs
}

func darajaBaseURL(env string) string {
	if strings.EqualFold(env, "production") {
		return darajaProductionURL
	}
	return darajaSandboxURL
}

// Helper functions to get environment variables with different types
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Warning: Invalid int64 value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

// GetEnvAsSlice splits a comma separated variable, dropping empty entries
func GetEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	if len(values) == 0 {
		return defaultValue
	}

	return values
}
