package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/qaca/surakshapath/internal/capture"
	"github.com/qaca/surakshapath/internal/config"
	"github.com/qaca/surakshapath/internal/database"
	"github.com/qaca/surakshapath/internal/database/repository"
	"github.com/qaca/surakshapath/internal/llm"
	"github.com/qaca/surakshapath/internal/logging"
	"github.com/qaca/surakshapath/internal/safety"
	"github.com/qaca/surakshapath/internal/secrets"
	"github.com/qaca/surakshapath/internal/service"
	"github.com/qaca/surakshapath/internal/tui"
)

var v = config.New()

var rootCmd = &cobra.Command{
	Use:   "surakshapath",
	Short: "Pre-travel safety clearance for field staff",
	Long: `SurakshaPath collects a field worker's pre-travel safety declaration,
asks a risk model for a SAFE / CAUTION / UNSAFE verdict and shows the result,
including the emergency protocol for unsafe trips.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if path, _ := cmd.Flags().GetString("config"); path != "" {
			v.SetConfigFile(path)
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runForm(cmd.Context())
	},
}

func main() {
	addPersistentFlags()
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(keyCmd())
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().String("config", "", "config file (default ~/.config/surakshapath/config.toml)")
	rootCmd.PersistentFlags().Bool("require-photo", true, "require an identity photo before analysis")
	rootCmd.PersistentFlags().String("provider", config.ProviderGemini, "analysis provider: gemini, openai or rules")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	_ = v.BindPFlag("identity.require_photo", rootCmd.PersistentFlags().Lookup("require-photo"))
	_ = v.BindPFlag("llm.provider", rootCmd.PersistentFlags().Lookup("provider"))
	_ = v.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func runForm(ctx context.Context) error {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var keys keyGetter
	if store, err := secrets.Default(); err != nil {
		logger.Warn("key store unavailable", zap.Error(err))
	} else {
		keys = store
	}
	apiKey := resolveAPIKey(cfg.LLM, keys)
	provider, err := llm.NewProvider(cfg.LLM, apiKey)
	if err != nil {
		return err
	}
	if apiKey == "" && cfg.LLM.Provider != config.ProviderRules {
		logger.Warn("no api key configured; every analysis will fail",
			zap.String("provider", cfg.LLM.Provider), zap.String("env", cfg.LLM.APIKeyEnv))
	}

	opts := []service.Option{service.WithLogger(logger)}
	if cfg.Journal.Enabled {
		db, err := database.OpenJournal(cfg.Journal.Path)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		defer db.Close()
		opts = append(opts, service.WithJournal(repository.NewClearanceRepo(db)))
	}
	clearance, err := service.NewClearance(provider, safety.Policy{RequirePhoto: cfg.Identity.RequirePhoto}, opts...)
	if err != nil {
		return err
	}

	photo := capture.NewPhotoSession(capture.NewCommandCamera(cfg.Camera))
	defer func() {
		if !photo.Live() {
			return
		}
		if err := photo.Abandon(); err != nil {
			logger.Warn("camera release failed", zap.Error(err))
		}
	}()

	logger.Info("starting",
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.LLM.Model),
		zap.Bool("require_photo", cfg.Identity.RequirePhoto),
		zap.Bool("journal", cfg.Journal.Enabled),
	)
	app := tui.New(ctx, tui.Deps{
		Clearance: clearance,
		Camera:    photo,
		Locator:   capture.NewLocator(cfg.Location),
		Logger:    logger,
	})
	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

type keyGetter interface {
	Get(provider string) (string, error)
}

// resolveAPIKey checks the provider's env var, then the key store, then the
// config file.
func resolveAPIKey(cfg config.LLMConfig, store keyGetter) string {
	if cfg.APIKeyEnv != "" {
		if k := strings.TrimSpace(os.Getenv(cfg.APIKeyEnv)); k != "" {
			return k
		}
	}
	if store != nil {
		if k, err := store.Get(cfg.Provider); err == nil && k != "" {
			return k
		}
	}
	return strings.TrimSpace(cfg.APIKey)
}

// openJournal opens the journal for the operator commands, which need it
// regardless of journal.enabled.
func openJournal() (*sql.DB, error) {
	cfg, err := config.LoadFrom(v)
	if err != nil {
		return nil, err
	}
	db, err := database.OpenJournal(cfg.Journal.Path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	return db, nil
}
