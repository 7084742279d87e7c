// Package cli implements the flashdeck command line
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/flashdeck/internal/ai"
	"github.com/example/flashdeck/internal/config"
	"github.com/example/flashdeck/internal/database"
	"github.com/example/flashdeck/internal/keystore"
	"github.com/example/flashdeck/internal/logging"
	"github.com/example/flashdeck/internal/study"
	"github.com/spf13/cobra"
)

// Execute runs the command line until ctx is cancelled
func Execute(ctx context.Context) error {
	return newRootCommand().ExecuteContext(ctx)
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "flashdeck",
		Short:         "German vocabulary flashcards with spaced practice",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newBotCommand(),
		newImportCommand(),
		newExportCommand(),
		newStatsCommand(),
		newProfilesCommand(),
		newGenerateCommand(),
	)
	return root
}

// app holds what every command needs once flags are parsed
type app struct {
	config *config.Config
	log    *slog.Logger
	store  keystore.KeyStore
	close  func() error
}

func setup(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	a := &app{config: cfg, log: logger, close: func() error { return nil }}
	if cfg.Store.Driver == "memory" {
		a.store = keystore.NewMemory()
		logger.Warn("using in-memory storage, nothing will be saved")
		return a, nil
	}

	db, err := database.Open(cfg.Store.Driver, cfg.Store.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	a.store = database.NewKeyValueRepository(db)
	a.close = db.Close
	logger.Debug("store opened", "driver", cfg.Store.Driver)
	return a, nil
}

// controller loads the learner of the configured profile
func (a *app) controller(ctx context.Context) *study.Controller {
	store := keystore.Prefixed(a.store, keystore.ProfilePrefix(a.config.Profile))
	return study.New(ctx, store, study.WithLogger(a.log.With("profile", a.config.Profile)))
}

// generator returns nil when no API key is configured
func (a *app) generator() (*ai.Generator, error) {
	if a.config.AI.Key == "" {
		return nil, nil
	}
	return ai.New(ai.Config{
		APIKey:      a.config.AI.Key,
		BaseURL:     a.config.AI.BaseURL,
		Model:       a.config.AI.Model,
		Timeout:     a.config.AI.Timeout,
		Temperature: ai.DefaultConfig().Temperature,
	})
}

// withApp wraps a command body with setup and cleanup
func withApp(run func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer func() {
			if err := a.close(); err != nil {
				a.log.Error("failed to close store", "error", err)
			}
		}()
		return run(cmd, args, a)
	}
}
