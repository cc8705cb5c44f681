package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET, default=dev-secret-change-me"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// BaseURL is the public origin used to build payment redirect URLs.
	BaseURL string `env:"BASE_URL, default=http://localhost:8080"`

	Mongo   MongoConfig
	Redis   RedisConfig
	Gemini  GeminiConfig
	Stripe  StripeConfig
	Storage StorageConfig
	Session SessionConfig
	Planner PlannerConfig
	Blog    BlogConfig
}

// MongoConfig configures the remote backend. An empty URI disables it.
type MongoConfig struct {
	URI      string `env:"MONGO_URI"`
	Database string `env:"MONGO_DB, default=business_planner"`
}

// RedisConfig configures the local key-value store. An empty Addr selects the
// in-memory store.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
	Prefix   string `env:"REDIS_PREFIX, default=planner"`
}

type GeminiConfig struct {
	APIKey        string `env:"GEMINI_API_KEY"`
	BaseModel     string `env:"GEMINI_BASE_MODEL, default=gemini-2.5-flash"`
	AdvancedModel string `env:"GEMINI_ADVANCED_MODEL, default=gemini-2.5-pro"`
}

type StripeConfig struct {
	SecretKey       string `env:"STRIPE_SECRET_KEY"`
	ProPriceID      string `env:"STRIPE_PRICE_PRO"`
	EnterprisePrice string `env:"STRIPE_PRICE_ENTERPRISE"`
}

// StorageConfig selects where exported documents go. An empty S3Bucket keeps
// them on the local filesystem under LocalPath.
type StorageConfig struct {
	LocalPath  string `env:"STORAGE_LOCAL_PATH, default=./exports"`
	S3Bucket   string `env:"S3_BUCKET"`
	S3Region   string `env:"S3_REGION, default=us-east-1"`
	S3Endpoint string `env:"S3_ENDPOINT"`
	AccessKey  string `env:"S3_ACCESS_KEY_ID"`
	SecretKey  string `env:"S3_SECRET_ACCESS_KEY"`
}

type SessionConfig struct {
	TokenTTL    time.Duration `env:"SESSION_TOKEN_TTL, default=720h"`
	StateTTL    time.Duration `env:"SESSION_STATE_TTL, default=24h"`
	IdleTimeout time.Duration `env:"SESSION_IDLE_TIMEOUT, default=30m"`
}

type PlannerConfig struct {
	AutosaveDelay   time.Duration `env:"AUTOSAVE_DELAY, default=1s"`
	AutosaveWorkers int           `env:"AUTOSAVE_WORKERS, default=8"`
	GenerateTimeout time.Duration `env:"GENERATE_TIMEOUT, default=2m"`
}

type BlogConfig struct {
	Enabled       bool          `env:"BLOG_AUTOGEN, default=false"`
	CheckInterval time.Duration `env:"BLOG_CHECK_INTERVAL, default=15m"`
	Timezone      string        `env:"BLOG_TIMEZONE, default=Local"`
}

// Load reads an optional .env file and then environment variables using go-envconfig.
func Load() *Config {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

// IsDevelopment reports whether pretty logging and verbose errors are wanted.
func (c *Config) IsDevelopment() bool { return c.Env == "development" }
