package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Chain string

const (
	ChainEthereum Chain = "ethereum"
	ChainBase     Chain = "base"
	ChainBSC      Chain = "bsc"
)

func AllChains() []Chain {
	return []Chain{ChainEthereum, ChainBase, ChainBSC}
}

type Config struct {
	// Explorer
	Chain           Chain
	ExplorerURL     string // overrides the per-chain default when set
	ExplorerKeys    map[Chain]string
	ExplorerRetries int
	ExplorerDelay   time.Duration
	ExplorerTimeout time.Duration

	// Files
	DataDir            string
	WalletsDir         string
	GradedDir          string
	TrackingFile       string
	TrackingResultsDir string
	LogFile            string
	LogLevel           string

	// Tracking
	TrackMinBuyers int    // tokens need strictly more buyers than this
	TrackSchedule  string // cron spec for `watch`
	TrackWindow    time.Duration

	// Date-times given on the command line are read in this zone.
	Location *time.Location

	// DB
	DBPath string

	// Dashboard
	DashboardPort int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	dataDir := envOr("DATA_DIR", ".")
	cfg := &Config{
		Chain:           Chain(strings.ToLower(envOr("CHAIN", string(ChainEthereum)))),
		ExplorerURL:     os.Getenv("EXPLORER_URL"),
		ExplorerRetries: envInt("EXPLORER_RETRIES", 5),
		ExplorerDelay:   envDur("EXPLORER_DELAY", 250*time.Millisecond),
		ExplorerTimeout: envDur("EXPLORER_TIMEOUT", 20*time.Second),

		DataDir:            dataDir,
		WalletsDir:         envOr("WALLETS_DIR", filepath.Join(dataDir, "wallets")),
		GradedDir:          envOr("GRADED_DIR", filepath.Join(dataDir, "graded")),
		TrackingFile:       envOr("TRACKING_FILE", filepath.Join(dataDir, "tracking", "tracking.txt")),
		TrackingResultsDir: envOr("TRACKING_RESULTS_DIR", filepath.Join(dataDir, "tracking_results")),
		LogFile:            envOr("LOG_FILE", filepath.Join(dataDir, "logging.log")),
		LogLevel:           envOr("LOG_LEVEL", "info"),

		TrackMinBuyers: envInt("TRACK_MIN_BUYERS", 5),
		TrackSchedule:  envOr("TRACK_SCHEDULE", "0 9 * * *"),
		TrackWindow:    envDur("TRACK_WINDOW", 24*time.Hour),

		Location: time.Local,

		DBPath:        envOr("DB_PATH", filepath.Join(dataDir, "hunter.db")),
		DashboardPort: envInt("DASHBOARD_PORT", 8080),
	}

	if tz := os.Getenv("TZ_NAME"); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("load location %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	// Explorer keys
	cfg.ExplorerKeys = map[Chain]string{
		ChainEthereum: os.Getenv("ETHERSCAN_API_KEY"),
		ChainBase:     os.Getenv("BASESCAN_API_KEY"),
		ChainBSC:      os.Getenv("BSCSCAN_API_KEY"),
	}

	return cfg, nil
}

func (c *Config) GetExplorerURL(chain Chain) string {
	if c.ExplorerURL != "" {
		return c.ExplorerURL
	}
	switch chain {
	case ChainEthereum:
		return "https://api.etherscan.io/api"
	case ChainBase:
		return "https://api.basescan.org/api"
	case ChainBSC:
		return "https://api.bscscan.com/api"
	default:
		return ""
	}
}

func (c *Config) GetExplorerKey(chain Chain) string {
	return c.ExplorerKeys[chain]
}

// Validate checks the settings every explorer-backed command needs.
func (c *Config) Validate() error {
	known := false
	for _, ch := range AllChains() {
		if c.Chain == ch {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown chain %q (want one of %v)", c.Chain, AllChains())
	}
	if c.GetExplorerKey(c.Chain) == "" {
		return fmt.Errorf("no explorer API key configured for %s", c.Chain)
	}
	if c.ExplorerRetries < 1 {
		return fmt.Errorf("EXPLORER_RETRIES must be at least 1, got %d", c.ExplorerRetries)
	}
	if c.TrackMinBuyers < 0 {
		return fmt.Errorf("TRACK_MIN_BUYERS must not be negative, got %d", c.TrackMinBuyers)
	}
	return nil
}

// helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envDur(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
