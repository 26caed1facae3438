package main

import (
	"context"
	"fmt"
	"os"

	"tradeSimulator/config"
	"tradeSimulator/internal/cli"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// 2. Build the command tree; the simulator is opened per invocation
	rootCmd := cli.NewRootCommand(cli.Options{Config: cfg})

	// 3. Run
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
