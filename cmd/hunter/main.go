package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/wallet-hunter/pkg/config"
	"github.com/wallet-hunter/pkg/db"
	"github.com/wallet-hunter/pkg/explorer"
	"github.com/wallet-hunter/pkg/prompt"
)

// app is the state shared by every subcommand once the root pre-run has
// loaded config and opened the ledger.
type app struct {
	cfg     *config.Config
	store   *db.Store
	logFile io.Closer
}

var hunter = &app{}

var rootCmd = &cobra.Command{
	Use:           "hunter",
	Short:         "Harvest, grade and track Ethereum trader wallets through an Etherscan-compatible explorer",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return hunter.setup()
	},
}

func init() {
	rootCmd.AddCommand(harvestCmd, gradeCmd, trackCmd, watchCmd, historyCmd, serveCmd)
}

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	switch {
	case err == nil:
	case errors.Is(err, prompt.ErrAborted):
		log.Warn().Msg("aborted")
	case errors.Is(err, context.Canceled):
		log.Info().Msg("interrupted")
	default:
		log.Error().Err(err).Msg("hunter failed")
		hunter.close()
		os.Exit(1)
	}
	hunter.close()
}

func (a *app) setup() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}
	a.cfg = cfg

	if err := a.setupLogging(); err != nil {
		return err
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
	}
	store, err := db.NewStore(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	a.store = store
	return nil
}

// setupLogging mirrors console logs into LOG_FILE.
func (a *app) setupLogging() error {
	level, err := zerolog.ParseLevel(a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	if a.cfg.LogFile == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(a.cfg.LogFile), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	a.logFile = f

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
	log.Logger = zerolog.New(zerolog.MultiLevelWriter(console, f)).With().Timestamp().Logger()
	return nil
}

func (a *app) close() {
	if a.store != nil {
		a.store.Close()
		a.store = nil
	}
	if a.logFile != nil {
		a.logFile.Close()
		a.logFile = nil
	}
}

// explorerClient validates the explorer settings and builds a client.
func (a *app) explorerClient() (*explorer.Client, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	return explorer.New(a.cfg), nil
}

func confirmer(cmd *cobra.Command) prompt.Confirmer {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return prompt.Always(true)
	}
	return prompt.NewConsole(cmd.InOrStdin(), cmd.OutOrStdout())
}
