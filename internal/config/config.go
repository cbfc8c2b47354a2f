package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

var ErrMissingRequiredValue = errors.New("missing required value")
var ErrInvalidValue = errors.New("invalid value")

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	defaultPort              = "4002"
	defaultEnrichConcurrency = 8
	defaultDBConnectRetries  = 5
)

// Config contains runtime configuration required by the service.
type Config struct {
	DBURL              string
	Port               string
	StoreDriver        string
	CORSAllowedOrigins []string
	EnrichConcurrency  int
	DBConnectRetries   uint64
	SentryDSN          string
	Environment        string
}

// CORSAllowCredentials is true only for an explicit origin allow-list.
// A wildcard origin never allows credentials.
func (c Config) CORSAllowCredentials() bool {
	for _, o := range c.CORSAllowedOrigins {
		if o == "*" {
			return false
		}
	}
	return len(c.CORSAllowedOrigins) > 0
}

// NonSensitiveString is safe to log; it leaves out the connection string and DSN.
func (c Config) NonSensitiveString() string {
	return fmt.Sprintf(
		"Config{env: %s, port: %s, store: %s, corsOrigins: %v, enrichConcurrency: %d, dbConnectRetries: %d, sentry: %t}",
		c.Environment, c.Port, c.StoreDriver, c.CORSAllowedOrigins, c.EnrichConcurrency, c.DBConnectRetries, c.SentryDSN != "",
	)
}

// LoadDotEnv loads a .env file from the working directory if there is one.
func LoadDotEnv() error {
	err := godotenv.Load()
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Load reads configuration from environment variables.
// DATABASE (or DB_URL) is required unless STORE_DRIVER=memory.
func Load() (Config, error) {
	env := strings.TrimSpace(os.Getenv("APP_ENV"))
	switch env {
	case "":
		env = "development"
	case "production", "staging", "development":
	default:
		return Config{}, fmt.Errorf("%w: APP_ENV (%s)", ErrInvalidValue, env)
	}

	driver := strings.TrimSpace(os.Getenv("STORE_DRIVER"))
	switch driver {
	case "":
		driver = StoreDriverPostgres
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return Config{}, fmt.Errorf("%w: STORE_DRIVER (%s)", ErrInvalidValue, driver)
	}

	dbURL := strings.TrimSpace(os.Getenv("DATABASE"))
	if dbURL == "" {
		dbURL = strings.TrimSpace(os.Getenv("DB_URL"))
	}
	if dbURL == "" && driver == StoreDriverPostgres {
		return Config{}, fmt.Errorf("%w: DATABASE", ErrMissingRequiredValue)
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = defaultPort
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return Config{}, fmt.Errorf("%w: PORT (%s)", ErrInvalidValue, port)
	}

	origins := []string{}
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	concurrency := defaultEnrichConcurrency
	if raw := strings.TrimSpace(os.Getenv("ENRICH_CONCURRENCY")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%w: ENRICH_CONCURRENCY (%s)", ErrInvalidValue, raw)
		}
		concurrency = n
	}

	var retries uint64 = defaultDBConnectRetries
	if raw := strings.TrimSpace(os.Getenv("DB_CONNECT_RETRIES")); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: DB_CONNECT_RETRIES (%s)", ErrInvalidValue, raw)
		}
		retries = n
	}

	return Config{
		DBURL:              dbURL,
		Port:               port,
		StoreDriver:        driver,
		CORSAllowedOrigins: origins,
		EnrichConcurrency:  concurrency,
		DBConnectRetries:   retries,
		SentryDSN:          strings.TrimSpace(os.Getenv("SENTRY_DSN")),
		Environment:        env,
	}, nil
}
