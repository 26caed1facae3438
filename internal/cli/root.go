package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tradeSimulator/config"
	"tradeSimulator/internal/adapters/logger"
	"tradeSimulator/internal/adapters/memory"
	"tradeSimulator/internal/adapters/sqlite"
	"tradeSimulator/internal/app"
	"tradeSimulator/internal/ports"
)

// Options configures the root command.
type Options struct {
	Config *config.Config

	// Store replaces the configured storage backend when set.
	Store ports.KVStore

	Out       io.Writer // Defaults to os.Stdout
	LogWriter io.Writer // Defaults to os.Stderr

	Now   func() time.Time // Optional
	NewID func() string    // Optional
}

// runtime is the state shared by every subcommand of one invocation.
type runtime struct {
	opts Options

	dbPath    string
	ephemeral bool
	logLevel  string

	logger ports.Logger
	sim    *app.Simulator
	closer io.Closer
}

// NewRootCommand builds the tradesim command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Config == nil {
		opts.Config = &config.Config{DBPath: "./data/tradesim.db", Storage: config.StorageSQLite, LogLevel: logger.LevelInfo}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.LogWriter == nil {
		opts.LogWriter = os.Stderr
	}
	rt := &runtime{opts: opts}

	rootCmd := &cobra.Command{
		Use:   "tradesim",
		Short: "Practice leveraged trading against a simulated balance",
		Long: "tradesim keeps a simulated account: place leveraged trades, close them at\n" +
			"their take-profit or stop-loss target, and review the realized PnL.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: rt.open,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.close()
		},
	}
	rootCmd.SetOut(opts.Out)
	rootCmd.SetErr(opts.LogWriter)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&rt.dbPath, "db", opts.Config.DBPath, "SQLite database file holding the simulator profile")
	flags.BoolVar(&rt.ephemeral, "ephemeral", opts.Config.Storage == config.StorageMemory, "Keep state in memory only")
	flags.StringVar(&rt.logLevel, "log-level", opts.Config.LogLevel.String(), "Log level (DEBUG, INFO, WARN, ERROR)")

	rootCmd.AddCommand(
		newPlaceCommand(rt),
		newCloseCommand(rt, "tp", "Close a trade at its take-profit target", (*app.Simulator).TakeProfit),
		newCloseCommand(rt, "sl", "Close a trade at its stop-loss target", (*app.Simulator).StopLoss),
		newSettleCommand(rt),
		newOpenCommand(rt),
		newHistoryCommand(rt),
		newClearCommand(rt),
		newBalanceCommand(rt),
		newSettingsCommand(rt),
		newStatsCommand(rt),
	)
	return rootCmd
}

func (rt *runtime) open(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt.logger = logger.NewWriterLogger(rt.opts.LogWriter, logger.ParseLevel(rt.logLevel))

	store := rt.opts.Store
	switch {
	case store != nil:
	case rt.ephemeral:
		memStore := memory.NewStore()
		rt.closer = memStore
		store = memStore
	default:
		sqliteStore, err := sqlite.NewStore(sqlite.Config{DBPath: rt.dbPath, Logger: rt.logger})
		if err != nil {
			return fmt.Errorf("failed to open simulator profile: %w", err)
		}
		rt.closer = sqliteStore
		store = sqliteStore
	}

	sim, err := app.Open(ctx, app.Config{
		Store:  store,
		Logger: rt.logger,
		Now:    rt.opts.Now,
		NewID:  rt.opts.NewID,
	})
	if err != nil {
		rt.close()
		return err
	}
	rt.sim = sim
	return nil
}

func (rt *runtime) close() error {
	if rt.closer == nil {
		return nil
	}
	err := rt.closer.Close()
	rt.closer = nil
	return err
}
