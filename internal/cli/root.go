package cli

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"pcr-journal/internal/config"
	"pcr-journal/internal/errors"
	"pcr-journal/internal/ledger"
	"pcr-journal/internal/logging"
	"pcr-journal/internal/store"
)

// Version information
const (
	Version   = "0.1.0"
	BuildDate = "2024-05-01"
)

// App holds the application dependencies. Zero fields are filled in on
// first use: Config from --config, Store from the storage section and
// Ledger from Store.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Store  store.KVStore
	Ledger *ledger.Ledger

	// Now is the clock used to stamp trades. Nil means time.Now.
	Now func() time.Time

	// loadWarning is set when the stored ledger could not be parsed.
	loadWarning error
}

// Close releases the store.
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// loadConfig reads configuration once and builds the file logger from it.
func (a *App) loadConfig(cmd *cobra.Command) error {
	if a.Config != nil {
		return nil
	}
	dir, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}
	a.Config = cfg

	a.Logger = logging.NewLoggerWithConfig(logging.LogConfig{
		Level:      cfg.Log.Level,
		Console:    cfg.Log.Console,
		File:       cfg.Log.File,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
	})
	if debug, _ := cmd.Flags().GetBool("debug"); debug {
		logging.SetDebugLevel()
		a.Logger = a.Logger.Level(zerolog.DebugLevel)
	}
	return nil
}

// journal returns the loaded ledger, opening the store on first use.
func (a *App) journal(ctx context.Context) (*ledger.Ledger, error) {
	if a.Ledger != nil {
		return a.Ledger, nil
	}
	if a.Store == nil {
		kv, err := store.Open(ctx, a.Config.StoreOptions())
		if err != nil {
			return nil, errors.Wrap(err, "opening store")
		}
		a.Store = kv
		a.Logger.Debug().Str("backend", a.Config.Storage.Backend).Msg("Store initialized")
	}

	l := ledger.New(a.Store,
		ledger.WithLogger(a.Logger),
		ledger.WithLocation(a.Config.Location()),
		ledger.WithClock(a.now),
	)
	if _, err := l.Load(ctx); err != nil {
		if !errors.Is(err, errors.ErrStorageParse) {
			return nil, err
		}
		a.loadWarning = err
	}
	a.Ledger = l
	return l, nil
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pcr-journal",
		Short: "PCR Journal - put/call ratio trade suggestions and journal",
		Long: `PCR Journal suggests NIFTY and SENSEX option trades from the put/call ratio
and keeps a journal of the trades you take.

A PCR above 1.3 suggests a PUT, below 0.7 a CALL, anything between is NEUTRAL.
Taken trades are stored locally and their P&L is recomputed as you record exits.

Use 'pcr-journal help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.loadConfig(cmd); err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(logging.WithLogger(ctx, logging.WithOperation(app.Logger, cmd.Name())))
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/pcr-journal)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addJournalCommands(rootCmd, app)

	return rootCmd
}

// addCoreCommands adds core utility commands.
func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd(app))
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			if output.IsJSON() {
				return output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			}
			output.Printf("PCR Journal v%s\n", Version)
			output.Dim("Build date: %s", BuildDate)
			return nil
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			showConfig(output, app.Config)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			if output.IsJSON() {
				return output.JSON(map[string]string{"path": app.Config.FilePath()})
			}
			output.Println(app.Config.FilePath())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd, app)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]bool{"valid": true})
			}
			output.Success("✓ Configuration is valid")
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) {
	output.Bold("Journal")
	output.Printf("  Capital:          %s\n", FormatIndianCurrency(cfg.Capital()))
	output.Printf("  Daily Target:     %s\n", FormatIndianCurrency(cfg.DailyTarget()))
	output.Printf("  Max Trades/Day:   %d\n", cfg.Journal.MaxTradesPerDay)
	output.Printf("  Timezone:         %s\n", cfg.Location())
	output.Println()

	output.Bold("Storage")
	output.Printf("  Backend:          %s\n", cfg.Storage.Backend)
	switch cfg.Storage.Backend {
	case store.BackendSQLite:
		output.Printf("  Path:             %s\n", cfg.Storage.Path)
	case store.BackendRedis:
		output.Printf("  Address:          %s (db %d)\n", cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
		output.Printf("  Key Prefix:       %s\n", cfg.Storage.RedisPrefix)
	}
	output.Println()

	output.Bold("Logging")
	output.Printf("  Level:            %s\n", cfg.Log.Level)
	output.Printf("  File:             %v (%s)\n", cfg.Log.File, cfg.Log.FilePath)
	output.Printf("  Color:            %v\n", cfg.UI.ColorEnabled)
}
