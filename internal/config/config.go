package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	mb "github.com/saeidalz13/seabattle/models/battleship"
)

const (
	StageDev  = "dev"
	StageProd = "prod"
)

// Server holds all configuration for the websocket server.
type Server struct {
	Stage string
	Port  int

	// Analytics are disabled when DatabaseUrl is empty
	DatabaseUrl  string
	MigrationDir string

	ComputerDelay          time.Duration
	SessionCleanupInterval time.Duration

	// YAML file with per board size fleets
	FleetsFile string
}

func DefaultServer() Server {
	return Server{
		Stage:                  StageDev,
		Port:                   8080,
		MigrationDir:           "file://db/migration",
		ComputerDelay:          time.Second,
		SessionCleanupInterval: time.Minute * 20,
		FleetsFile:             "fleets.yaml",
	}
}

// Load reads the server config from the environment. Outside of prod a
// .env file in the working directory is loaded first, if there is one.
// Variables already set in the environment win over the file.
func Load() (Server, error) {
	cfg := DefaultServer()

	if os.Getenv("STAGE") != StageProd {
		if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return cfg, fmt.Errorf("loading .env: %w", err)
		}
	}

	if stage := os.Getenv("STAGE"); stage != "" {
		cfg.Stage = stage
	}
	if cfg.Stage != StageDev && cfg.Stage != StageProd {
		return cfg, fmt.Errorf("stage must be either dev or prod, got %q", cfg.Stage)
	}

	if portEnv := os.Getenv("PORT"); portEnv != "" {
		port, err := strconv.Atoi(portEnv)
		if err != nil {
			return cfg, fmt.Errorf("parsing PORT: %w", err)
		}
		cfg.Port = port
	}

	cfg.DatabaseUrl = os.Getenv("DATABASE_URL")
	if migrationDir := os.Getenv("MIGRATION_DIR"); migrationDir != "" {
		cfg.MigrationDir = migrationDir
	}
	if fleetsFile := os.Getenv("FLEETS_FILE"); fleetsFile != "" {
		cfg.FleetsFile = fleetsFile
	}

	var err error
	if cfg.ComputerDelay, err = durationEnv("COMPUTER_DELAY", cfg.ComputerDelay); err != nil {
		return cfg, err
	}
	if cfg.SessionCleanupInterval, err = durationEnv("SESSION_CLEANUP_INTERVAL", cfg.SessionCleanupInterval); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}

	d, err := time.ParseDuration(value)
	if err != nil {
		return fallback, fmt.Errorf("parsing %s: %w", key, err)
	}
	if d < 0 {
		return fallback, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

type fleetsFile struct {
	Fleets map[int][]int `yaml:"fleets"`
}

// LoadFleets loads the ship lengths per board size from a YAML file.
// If the file doesn't exist, returns the default fleets.
func LoadFleets(path string) (map[int][]int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return mb.CopyFleets(mb.DefaultFleets), nil
		}
		return nil, fmt.Errorf("reading fleets %s: %w", path, err)
	}

	var ff fleetsFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing fleets %s: %w", path, err)
	}
	if len(ff.Fleets) == 0 {
		return nil, fmt.Errorf("fleets %s: no fleet defined", path)
	}

	for boardSize, fleet := range ff.Fleets {
		if err := mb.ValidateFleet(boardSize, fleet); err != nil {
			return nil, fmt.Errorf("fleets %s: %w", path, err)
		}
	}
	return ff.Fleets, nil
}
