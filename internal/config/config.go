package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	AllowedOrigins  string        `env:"ALLOWED_ORIGINS"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	AdminUserIDs []string `env:"ADMIN_USER_IDS" envSeparator:","`

	MaxMessageLength    int   `env:"MAX_MESSAGE_LENGTH" envDefault:"4000"`
	MaxAttachmentBytes  int64 `env:"MAX_ATTACHMENT_BYTES" envDefault:"10485760"`
	ReactionCAS         bool  `env:"REACTION_CAS" envDefault:"true"`
	ReactionCASAttempts int   `env:"REACTION_CAS_ATTEMPTS" envDefault:"5"`

	Supabase SupabaseConfig
	Database DatabaseConfig
	AI       AIConfig
	Redis    RedisConfig
	S3       S3Config
}

type SupabaseConfig struct {
	URL        string        `env:"SUPABASE_URL"`
	AnonKey    string        `env:"SUPABASE_ANON_KEY"`
	ServiceKey string        `env:"SUPABASE_SERVICE_KEY"`
	JWTSecret  string        `env:"SUPABASE_JWT_SECRET"`
	Timeout    time.Duration `env:"SUPABASE_TIMEOUT" envDefault:"10s"`
}

type DatabaseConfig struct {
	URL         string `env:"DATABASE_URL"`
	ScopedRole  string `env:"DB_SCOPED_ROLE" envDefault:"authenticated"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"false"`
	MaxOpen     int    `env:"DB_MAX_OPEN_CONNS" envDefault:"20"`
	MaxIdle     int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
}

type AIConfig struct {
	APIKey          string        `env:"GOOGLE_AI_API_KEY"`
	BaseURL         string        `env:"AI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com/v1beta/openai/"`
	Model           string        `env:"AI_MODEL" envDefault:"gemini-2.0-flash"`
	MaxOutputTokens int64         `env:"AI_MAX_OUTPUT_TOKENS" envDefault:"500"`
	Temperature     float64       `env:"AI_TEMPERATURE" envDefault:"0.7"`
	Timeout         time.Duration `env:"AI_TIMEOUT" envDefault:"30s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// S3Config points at any S3-compatible endpoint; Supabase Storage exposes one.
// Region can be empty for MinIO.
type S3Config struct {
	Endpoint      string `env:"S3_ENDPOINT"`
	Region        string `env:"S3_REGION"`
	Bucket        string `env:"S3_BUCKET"`
	AccessKey     string `env:"S3_ACCESS_KEY"`
	SecretKey     string `env:"S3_SECRET_KEY"`
	UseSSL        bool   `env:"S3_USE_SSL" envDefault:"true"`
	PublicBaseURL string `env:"PUBLIC_API_BASE_URL"`
}

// Configured reports whether attachment storage can be initialised.
func (c S3Config) Configured() bool {
	return c.Endpoint != "" && c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return Parse()
}

// Parse reads the process environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.AdminUserIDs = trimAll(cfg.AdminUserIDs)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Supabase.URL == "" {
		errs = append(errs, errors.New("SUPABASE_URL is required"))
	}
	if c.Supabase.AnonKey == "" {
		errs = append(errs, errors.New("SUPABASE_ANON_KEY is required"))
	}
	if c.Database.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if c.ReactionCASAttempts < 1 {
		errs = append(errs, errors.New("REACTION_CAS_ATTEMPTS must be at least 1"))
	}
	if c.MaxMessageLength < 1 {
		errs = append(errs, errors.New("MAX_MESSAGE_LENGTH must be positive"))
	}
	return errors.Join(errs...)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
