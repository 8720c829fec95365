package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrInvalidConfig = errors.New("invalid configuration")

const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"

	SessionFilesystem = "filesystem"
	SessionCookie     = "cookie"

	HashingPlain  = "plain"
	HashingBcrypt = "bcrypt"
)

type Config struct {
	Port        string
	StoreDriver string

	Postgres    PostgresConfig
	DatabaseURL string

	MongoURI      string
	MongoDatabase string

	SessionStore         string
	SessionDir           string
	SessionSecret        string
	SessionEncryptionKey string
	SessionMaxAge        time.Duration

	PasswordHashing string

	LogLevel string
	LogFile  string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL renders the settings as a postgres:// URL, the form accepted by both
// lib/pq and golang-migrate.
func (c PostgresConfig) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// Load reads an optional .env file from the working directory and then the
// process environment. Values already present in the environment win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	cfg := Config{
		Port:        getEnv("PORT", "8080"),
		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StorePostgres)),
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "qna"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		MongoURI:             getEnv("MONGO_URI", "mongodb://127.0.0.1:27017"),
		MongoDatabase:        getEnv("MONGO_DATABASE", "qnaApp"),
		SessionStore:         strings.ToLower(getEnv("SESSION_STORE", SessionFilesystem)),
		SessionDir:           getEnv("SESSION_DIR", filepath.Join(os.TempDir(), "qna-sessions")),
		SessionSecret:        getEnv("SESSION_SECRET", ""),
		SessionEncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),
		PasswordHashing:      strings.ToLower(getEnv("PASSWORD_HASHING", HashingPlain)),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFile:              getEnv("LOG_FILE", ""),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = cfg.Postgres.URL()
	}

	maxAge, err := getDurationEnv("SESSION_MAX_AGE", 24*time.Hour)
	if err != nil {
		return Config{}, err
	}
	cfg.SessionMaxAge = maxAge

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if err := oneOf("STORE_DRIVER", c.StoreDriver, StorePostgres, StoreMongo, StoreMemory); err != nil {
		return err
	}
	if err := oneOf("SESSION_STORE", c.SessionStore, SessionFilesystem, SessionCookie); err != nil {
		return err
	}
	if err := oneOf("PASSWORD_HASHING", c.PasswordHashing, HashingPlain, HashingBcrypt); err != nil {
		return err
	}
	if n := len(c.SessionEncryptionKey); n != 0 && n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("%w: SESSION_ENCRYPTION_KEY must be 16, 24 or 32 bytes, got %d", ErrInvalidConfig, n)
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("%w: SESSION_MAX_AGE must be positive", ErrInvalidConfig)
	}
	return nil
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%w: %s=%q, expected one of %s", ErrInvalidConfig, key, value, strings.Join(allowed, ", "))
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, key, err)
	}
	return d, nil
}
