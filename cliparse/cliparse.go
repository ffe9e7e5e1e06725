package cliparse

import (
	"errors"
	"flag"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Pagination defaults, matching the limits the web client requests
const (
	DefaultTopPageLimit   = 5
	DefaultReplyPageLimit = 3
)

// Reconnect backoff bounds for the websocket client
const (
	DefaultReconnectMin = 1 * time.Second
	DefaultReconnectMax = 10 * time.Second
)

type Config struct {
	Port           int
	DatabaseURL    string
	DatabaseType   string
	TopPageLimit   int
	ReplyPageLimit int
	ReconnectMin   time.Duration
	ReconnectMax   time.Duration
}

// DriverName maps the configured database type to the database/sql driver name.
func (c Config) DriverName() string {
	if c.DatabaseType == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

// ParseFlags validates flags and fills in defaults. A .env file in the working
// directory is loaded first, so its values act as environment fallbacks.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	// Best effort; absence of a .env file is not an error
	_ = godotenv.Load()

	fs := flag.NewFlagSet("livepoll", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")
	fs.IntVar(&cfg.TopPageLimit, "top-limit", 0, "Default page size for top-level comments")
	fs.IntVar(&cfg.ReplyPageLimit, "reply-limit", 0, "Default page size for replies")

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
			cfg.Port = 8080 // default
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
		return Config{}, errors.New("database type must be sqlite or postgres")
	}

	if cfg.TopPageLimit == 0 {
		cfg.TopPageLimit = envInt("TOP_PAGE_LIMIT", DefaultTopPageLimit)
	}
	if cfg.ReplyPageLimit == 0 {
		cfg.ReplyPageLimit = envInt("REPLY_PAGE_LIMIT", DefaultReplyPageLimit)
	}
	if cfg.TopPageLimit < 1 || cfg.ReplyPageLimit < 1 {
		return Config{}, errors.New("page limits must be >= 1")
	}

	cfg.ReconnectMin = DefaultReconnectMin
	cfg.ReconnectMax = DefaultReconnectMax

	return cfg, nil
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return def
}
