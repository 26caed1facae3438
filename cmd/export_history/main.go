package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"tradeSimulator/config"
	"tradeSimulator/internal/adapters/logger"
	"tradeSimulator/internal/adapters/sqlite"
	"tradeSimulator/internal/app"
	"tradeSimulator/internal/utils"
)

var (
	dbPath = flag.String("db", "", "SQLite profile to export (default: TRADESIM_DB_PATH)")
	out    = flag.String("out", "", "Output file (default: data/closed_trades_<date>.csv)")
)

func main() {
	flag.Parse()

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err) // Use standard log before logger is ready
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}

	// 2. Initialize Logger
	appLogger := logger.NewStdLogger(cfg.LogLevel)
	appLogger.Info(context.Background(), "Logger initialized", map[string]interface{}{"level": cfg.LogLevel.String()})

	// 3. Open the profile
	store, err := sqlite.NewStore(sqlite.Config{DBPath: cfg.DBPath, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to open profile %s: %v", cfg.DBPath, err)
	}
	defer store.Close()

	sim, err := app.Open(context.Background(), app.Config{Store: store, Logger: appLogger})
	if err != nil {
		log.Fatalf("FATAL: Failed to load simulator state: %v", err)
	}

	// 4. Export
	trades := sim.ClosedTrades()
	filename := *out
	if filename == "" {
		filename = fmt.Sprintf("data/closed_trades_%s.csv", time.Now().Format("20060102"))
	}
	if err := utils.WriteClosedTradesCSVFile(filename, trades); err != nil {
		appLogger.Error(context.Background(), err, "Error writing CSV")
		store.Close()
		os.Exit(1)
	}
	appLogger.Info(context.Background(), "Saved to", map[string]interface{}{"filename": filename, "trades": len(trades)})
}
