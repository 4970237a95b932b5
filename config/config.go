package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

type Config struct {
	Env      string         `yaml:"env" env:"ENV" env-default:"local"`
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
	Auth     AuthConfig     `yaml:"auth"`
	Email    EmailConfig    `yaml:"email"`
}

type HTTPConfig struct {
	Address                string   `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	SwaggerDir             string   `yaml:"swagger_dir" env:"HTTP_SWAGGER_DIR"`
	ShutdownTimeoutSeconds int      `yaml:"shutdown_timeout_seconds" env:"HTTP_SHUTDOWN_TIMEOUT_SECONDS" env-default:"5"`
	AllowedOrigins         []string `yaml:"allowed_origins" env:"HTTP_ALLOWED_ORIGINS" env-separator:","`
}

type GRPCConfig struct {
	Address string `yaml:"address" env:"GRPC_ADDRESS" env-default:":9090"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"DB_PASSWORD"`
	Name     string `yaml:"name" env:"DB_NAME" env-default:"travelbooking"`
	SSLMode  string `yaml:"ssl_mode" env:"DB_SSL_MODE" env-default:"disable"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" env:"REDIS_ADDR" env-default:"localhost:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" env:"KAFKA_BROKERS" env-separator:","`
	NotificationsTopic string   `yaml:"notifications_topic" env:"KAFKA_NOTIFICATIONS_TOPIC" env-default:"travel.notifications"`
	GroupID            string   `yaml:"group_id" env:"KAFKA_GROUP_ID" env-default:"travelbooking-worker"`
}

type BookingConfig struct {
	PaymentGraceMinutes  int `yaml:"payment_grace_minutes" env:"BOOKING_PAYMENT_GRACE_MINUTES" env-default:"15"`
	TripsCacheTTLSeconds int `yaml:"trips_cache_ttl_seconds" env:"BOOKING_TRIPS_CACHE_TTL_SECONDS" env-default:"30"`
	MaxUpcomingBookings  int `yaml:"max_upcoming_bookings" env:"BOOKING_MAX_UPCOMING" env-default:"3"`
}

func (b BookingConfig) PaymentGrace() time.Duration {
	return time.Duration(b.PaymentGraceMinutes) * time.Minute
}

func (b BookingConfig) TripsCacheTTL() time.Duration {
	return time.Duration(b.TripsCacheTTLSeconds) * time.Second
}

type WorkerConfig struct {
	SweepIntervalMinutes int `yaml:"sweep_interval_minutes" env:"WORKER_SWEEP_INTERVAL_MINUTES" env-default:"5"`
}

func (w WorkerConfig) SweepInterval() time.Duration {
	return time.Duration(w.SweepIntervalMinutes) * time.Minute
}

// AuthConfig selects how bearer tokens are verified: a shared HS256 secret or
// a JWKS endpoint. JWKSURL wins when both are set.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
	JWKSURL   string `yaml:"jwks_url" env:"AUTH_JWKS_URL"`
	Issuer    string `yaml:"issuer" env:"AUTH_ISSUER"`
}

type EmailConfig struct {
	SMTPHost string `yaml:"smtp_host" env:"SMTP_HOST"`
	SMTPPort int    `yaml:"smtp_port" env:"SMTP_PORT" env-default:"587"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"noreply@travelbooking.local"`
}

// LoadConfig reads the YAML file at path, if any, then applies environment
// overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return fmt.Errorf("invalid env %q", c.Env)
	}
	if c.Worker.SweepIntervalMinutes <= 0 {
		return errors.New("worker.sweep_interval_minutes must be positive")
	}
	if c.Booking.PaymentGraceMinutes <= 0 {
		return errors.New("booking.payment_grace_minutes must be positive")
	}
	if c.Booking.TripsCacheTTLSeconds <= 0 {
		return errors.New("booking.trips_cache_ttl_seconds must be positive")
	}
	if c.Booking.MaxUpcomingBookings <= 0 {
		return errors.New("booking.max_upcoming_bookings must be positive")
	}
	return nil
}

// FetchConfigPath resolves the config file from the --config flag, falling back
// to CONFIG_PATH. A .env file in the working directory is loaded first.
func FetchConfigPath(name string, args []string) (string, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("failed to load .env: %w", err)
	}

	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	path := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if *path == "" {
		*path = os.Getenv("CONFIG_PATH")
	}
	return *path, nil
}

func MustLoad(name string, args []string) *Config {
	path, err := FetchConfigPath(name, args)
	if err != nil {
		panic(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		panic(err)
	}
	return cfg
}
