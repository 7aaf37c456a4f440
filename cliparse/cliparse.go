package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/quickly-elect/tally"
)

type Config struct {
	Port            int
	DatabaseURL     string
	DatabaseType    string
	CatalogTTL      time.Duration
	RequestTimeout  time.Duration
	TieBreak        tally.Policy
	ResolveClosed   bool
	SubmitRateLimit int
	LogLevel        string
	LogFile         string
	ReusePort       bool
}

const (
	DefaultPort            = 3318
	DefaultCatalogTTL      = 5 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultSubmitRateLimit = 20
)

// LoadEnvFile loads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ParseFlags validates flags and fills the rest from the environment
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var tieBreak string
	var catalogTTL, requestTimeout string
	rateLimit := -1

	fs := flag.NewFlagSet("quickly-elect", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.BoolVar(&cfg.ReusePort, "reuseport", false, "Listen with SO_REUSEPORT")

	// Engine behaviour
	fs.StringVar(&catalogTTL, "catalog-ttl", "", "Catalog snapshot staleness bound (e.g. 5s)")
	fs.StringVar(&requestTimeout, "request-timeout", "", "Per-request deadline (e.g. 10s)")
	fs.StringVar(&tieBreak, "tie-break", "", "Tie-break policy (candidate_id or runoff)")
	fs.BoolVar(&cfg.ResolveClosed, "resolve-closed", false, "Resolve winners for closed positions")
	fs.IntVar(&rateLimit, "submit-rate-limit", -1, "Ballot submissions per client per minute (0 disables)")

	// Logging
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Rotating log file path")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		return Config{}, errors.New("database URL required (use -d or DATABASE_URL env)")
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("invalid database type %q (use sqlite or postgres)", cfg.DatabaseType)
	}

	var err error
	if cfg.CatalogTTL, err = durationOr(catalogTTL, "CATALOG_TTL", DefaultCatalogTTL); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout, err = durationOr(requestTimeout, "REQUEST_TIMEOUT", DefaultRequestTimeout); err != nil {
		return Config{}, err
	}
	if cfg.RequestTimeout <= 0 {
		return Config{}, errors.New("REQUEST_TIMEOUT must be positive")
	}

	if tieBreak == "" {
		tieBreak = os.Getenv("TIE_BREAK")
	}
	if cfg.TieBreak, err = tally.ParsePolicy(tieBreak); err != nil {
		return Config{}, err
	}

	if !cfg.ResolveClosed {
		if v := os.Getenv("RESOLVE_CLOSED_POSITIONS"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid RESOLVE_CLOSED_POSITIONS env variable")
			}
			cfg.ResolveClosed = b
		}
	}

	if rateLimit < 0 {
		if v := os.Getenv("SUBMIT_RATE_LIMIT"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return Config{}, errors.New("invalid SUBMIT_RATE_LIMIT env variable")
			}
			rateLimit = n
		} else {
			rateLimit = DefaultSubmitRateLimit
		}
	}
	cfg.SubmitRateLimit = rateLimit

	if cfg.LogLevel == "" {
		cfg.LogLevel = os.Getenv("LOG_LEVEL")
		if cfg.LogLevel == "" {
			cfg.LogLevel = "info"
		}
	}
	if cfg.LogFile == "" {
		cfg.LogFile = os.Getenv("LOG_FILE")
	}

	if !cfg.ReusePort {
		if v := os.Getenv("REUSEPORT"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Config{}, errors.New("invalid REUSEPORT env variable")
			}
			cfg.ReusePort = b
		}
	}

	return cfg, nil
}

func durationOr(flagVal, env string, def time.Duration) (time.Duration, error) {
	v := flagVal
	if v == "" {
		v = os.Getenv(env)
	}
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s value %q", env, v)
	}
	return d, nil
}
