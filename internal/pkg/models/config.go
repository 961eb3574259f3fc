package models

// Config represents application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	NATS      NATSConfig
	JWT       JWTConfig
	APIKey    APIKeyConfig
	NewRelic  NewRelicConfig
	Logger    LoggerConfig
	Daraja    DarajaConfig
	Turnstile TurnstileConfig
	Vote      VoteConfig
	Callback  CallbackConfig
	Poller    PollerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
	AllowedOrigins  []string
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// JWTConfig contains status token signing configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in minutes
	Issuer     string
}

// APIKeyConfig holds the key accepted on internal endpoints
type APIKeyConfig struct {
	Internal string
}

// NewRelicConfig contains New Relic agent configuration
type NewRelicConfig struct {
	LicenseKey  string
	AppName     string
	Enabled     bool
	LogsEnabled bool
	ForwardLogs bool
}

// LoggerConfig contains Zap logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
	Type     string
}

// DarajaConfig contains M-Pesa Daraja gateway configuration
type DarajaConfig struct {
	Environment      string // sandbox or production
	BaseURL          string
	ConsumerKey      string
	ConsumerSecret   string
	ShortCode        string
	PassKey          string
	CallbackBaseURL  string
	TransactionType  string
	AccountLabel     string
	TimeoutSeconds   int
	TokenSkewSeconds int
	BreakerFailures  int
	BreakerCooldown  int // in seconds
}

// TurnstileConfig contains bot verification configuration
type TurnstileConfig struct {
	Secret         string
	VerifyURL      string
	TimeoutSeconds int
}

// VoteConfig contains vote pricing and submission limits
type VoteConfig struct {
	UnitPrice       int64
	MaxUnits        int
	SubmitRateLimit int
	SubmitRatePer   int // in seconds
}

// CallbackConfig contains callback processing configuration
type CallbackConfig struct {
	ProcessTimeoutSeconds int
	MaxInFlight           int
	MaxQueued             int
}

// PollerConfig contains client-side status polling configuration
type PollerConfig struct {
	BaseURL         string
	IntervalSeconds int
	MaxAttempts     int
}
