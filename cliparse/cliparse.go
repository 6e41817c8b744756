package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort         = 3318
	DefaultDatabaseURL  = "file:poll-app.db"
	DefaultDatabaseType = "sqlite"
	DefaultProgramID    = "poll_app"
	DefaultMaxVoters    = 10
	DefaultMaxClockSkew = 5 * time.Minute
	DefaultEnvFile      = ".env"

	maxMaxVoters = 255
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string
	ProgramID    string
	MaxVoters    int
	MaxClockSkew time.Duration
}

// ParseFlags resolves every setting from flags, then the environment,
// then the .env file, then defaults.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("poll-app", flag.ContinueOnError)

	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	fs.StringVar(&cfg.ProgramID, "program-id", "", "Namespace for derived record addresses")
	fs.IntVar(&cfg.MaxVoters, "max-voters", 0, "Voter capacity of new polls (1-255)")
	fs.DurationVar(&cfg.MaxClockSkew, "max-skew", 0, "Allowed clock skew of signed requests")
	fs.StringVar(&envFile, "env", DefaultEnvFile, "Optional dotenv file")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	dotenv, err := readEnvFile(envFile)
	if err != nil {
		return Config{}, err
	}
	lookup := func(name string) string {
		if v := os.Getenv(name); v != "" {
			return v
		}
		return dotenv[name]
	}

	if cfg.Port == 0 {
		if portStr := lookup("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = lookup("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = DefaultDatabaseURL
		}
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = lookup("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DefaultDatabaseType
		}
	}

	if cfg.ProgramID == "" {
		cfg.ProgramID = lookup("PROGRAM_ID")
		if cfg.ProgramID == "" {
			cfg.ProgramID = DefaultProgramID
		}
	}

	if cfg.MaxVoters == 0 {
		if s := lookup("MAX_VOTERS"); s != "" {
			n, err := strconv.Atoi(s)
			if err != nil {
				return Config{}, errors.New("invalid MAX_VOTERS env variable")
			}
			cfg.MaxVoters = n
		} else {
			cfg.MaxVoters = DefaultMaxVoters
		}
	}
	if cfg.MaxVoters < 1 || cfg.MaxVoters > maxMaxVoters {
		return Config{}, fmt.Errorf("max voters must be between 1 and %d, got %d", maxMaxVoters, cfg.MaxVoters)
	}

	if cfg.MaxClockSkew == 0 {
		if s := lookup("MAX_CLOCK_SKEW"); s != "" {
			d, err := time.ParseDuration(s)
			if err != nil {
				return Config{}, errors.New("invalid MAX_CLOCK_SKEW env variable")
			}
			cfg.MaxClockSkew = d
		} else {
			cfg.MaxClockSkew = DefaultMaxClockSkew
		}
	}
	if cfg.MaxClockSkew <= 0 {
		return Config{}, errors.New("max clock skew must be positive")
	}

	return cfg, nil
}

// readEnvFile parses a dotenv file without touching the process
// environment. A missing file is not an error.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return values, nil
}
