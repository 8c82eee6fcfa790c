package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config holds all the configuration for the application.
type Config struct {
	Env        string `yaml:"env" env:"ENV" env-default:"production"`
	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Slug       `yaml:"slug"`
	Geo        `yaml:"geo"`
	Analytics  `yaml:"analytics"`
	Cache      `yaml:"cache"`
	Auth       `yaml:"auth"`
}

// HTTPServer holds HTTP server specific configuration.
type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":8080"`
	BaseURL     string        `yaml:"base_url" env:"BASE_URL" env-default:"http://localhost:8080"`
	NotFoundURL string        `yaml:"not_found_url" env:"NOT_FOUND_URL" env-default:"/404"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"30s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"30s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

// Database holds PostgreSQL connection configuration.
type Database struct {
	Host            string `yaml:"host" env:"DB_HOST" env-default:"localhost"`
	Port            int    `yaml:"port" env:"DB_PORT" env-default:"5432"`
	User            string `yaml:"user" env:"DB_USER" env-default:"postgres"`
	Password        string `yaml:"password" env:"DB_PASSWORD" env-default:""`
	DBName          string `yaml:"dbname" env:"DB_NAME" env-default:"linkboard"`
	SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE" env-default:"disable"`
	Timezone        string `yaml:"timezone" env:"DB_TIMEZONE" env-default:"UTC"`
	MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS" env-default:"50"`
	ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	AutoMigrate     bool   `yaml:"auto_migrate" env:"DB_AUTO_MIGRATE" env-default:"true"`
	SeedData        bool   `yaml:"seed_data" env:"DB_SEED_DATA" env-default:"false"`
}

// Slug holds slug generation configuration.
type Slug struct {
	Length     int `yaml:"length" env:"SLUG_LENGTH" env-default:"6"`
	MaxRetries int `yaml:"max_retries" env:"SLUG_MAX_RETRIES" env-default:"10"`
}

// Geo holds IP geolocation lookup configuration.
type Geo struct {
	Enabled  bool          `yaml:"enabled" env:"GEO_ENABLED" env-default:"true"`
	Endpoint string        `yaml:"endpoint" env:"GEO_ENDPOINT" env-default:"http://ip-api.com/json"`
	Timeout  time.Duration `yaml:"timeout" env:"GEO_TIMEOUT" env-default:"3s"`
}

// Analytics holds click pipeline configuration.
type Analytics struct {
	Workers         int           `yaml:"workers" env:"ANALYTICS_WORKERS" env-default:"3"`
	BufferSize      int           `yaml:"buffer_size" env:"ANALYTICS_BUFFER_SIZE" env-default:"1000"`
	RetryAttempts   int           `yaml:"retry_attempts" env:"ANALYTICS_RETRY_ATTEMPTS" env-default:"3"`
	RetryDelay      time.Duration `yaml:"retry_delay" env:"ANALYTICS_RETRY_DELAY" env-default:"1s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"ANALYTICS_SHUTDOWN_TIMEOUT" env-default:"30s"`
	UARegexesPath   string        `yaml:"ua_regexes_path" env:"UA_REGEXES_PATH" env-default:"assets/regexes.yaml"`
}

// Cache holds optional redis resolution cache configuration.
type Cache struct {
	Enabled bool          `yaml:"enabled" env:"CACHE_ENABLED" env-default:"false"`
	Addr    string        `yaml:"addr" env:"CACHE_ADDR" env-default:"localhost:6379"`
	TTL     time.Duration `yaml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

// Auth holds JWT configuration for the admin API.
type Auth struct {
	Secret   string        `yaml:"secret" env:"AUTH_SECRET" env-default:"change-me-in-production"`
	TokenTTL time.Duration `yaml:"token_ttl" env:"AUTH_TOKEN_TTL" env-default:"15m"`
	Issuer   string        `yaml:"issuer" env:"AUTH_ISSUER" env-default:"Linkboard-Backend"`
}

// MustLoad loads the application configuration.
func MustLoad() *Config {
	// Try to load .env file (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	var cfg Config

	// Check if config file path is specified
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/local.yml" // default path
	}

	// Try to load config file
	if _, err := os.Stat(configPath); err == nil {
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("cannot read config: %s", err)
		}
	} else {
		// If config file doesn't exist, use environment variables only
		log.Println("Config file not found, using environment variables only")
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from environment: %s", err)
		}
	}

	return &cfg
}
