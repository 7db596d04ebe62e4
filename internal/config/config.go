package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config configuration complète du service
type Config struct {
	HTTP     HTTPConfig
	Database DatabaseConfig
	Import   ImportConfig
	Query    QueryConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

// HTTPConfig serveur HTTP
type HTTPConfig struct {
	Addr            string
	GinMode         string
	ShutdownTimeout time.Duration
}

// DatabaseConfig connexion SQL
type DatabaseConfig struct {
	Driver          string // "sqlite" ou "postgres"
	Path            string // fichier sqlite
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

// ImportConfig traitement des fichiers legacy
type ImportConfig struct {
	MaxUploadBytes int64
	StrictParsing  bool
	Workers        int
}

// QueryConfig lecture des commandes
type QueryConfig struct {
	CacheTTL time.Duration
}

// LogConfig logger zap
type LogConfig struct {
	Mode  string
	Level string
}

// MetricsConfig exposition prometheus
type MetricsConfig struct {
	Enabled bool
}

// DefaultMaxUploadBytes taille maximale d'un fichier uploadé
const DefaultMaxUploadBytes = 5_000_000

// Load charge .env s'il existe, puis lit l'environnement
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv lit la configuration depuis l'environnement courant, avec valeurs par défaut
func FromEnv() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{
			Addr:            getEnv("HTTP_ADDR", ":8080"),
			GinMode:         getEnv("GIN_MODE", "release"),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "sqlite"),
			Path:            getEnv("DB_PATH", "db.sqlite"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "orders"),
			Password:        getEnv("DB_PASSWORD", "orders"),
			Name:            getEnv("DB_NAME", "orders"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Import: ImportConfig{
			MaxUploadBytes: int64(getEnvInt("UPLOAD_MAX_BYTES", DefaultMaxUploadBytes)),
			StrictParsing:  getEnvBool("PARSER_STRICT", false),
			Workers:        getEnvInt("IMPORT_WORKERS", 1),
		},
		Query: QueryConfig{
			CacheTTL: getEnvDuration("QUERY_CACHE_TTL", 30*time.Second),
		},
		Log: LogConfig{
			Mode:  getEnv("LOG_MODE", "development"),
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite":
		if c.Database.Path == "" {
			return fmt.Errorf("DB_PATH cannot be empty with the sqlite driver")
		}
	case "postgres":
		if c.Database.Host == "" || c.Database.Name == "" {
			return fmt.Errorf("DB_HOST and DB_NAME are required with the postgres driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Import.MaxUploadBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.Import.Workers < 1 {
		return fmt.Errorf("IMPORT_WORKERS must be >= 1")
	}
	if c.Query.CacheTTL < 0 {
		return fmt.Errorf("QUERY_CACHE_TTL cannot be negative")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// PostgresDSN chaîne de connexion lib/pq
func (d DatabaseConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return fallback
}
