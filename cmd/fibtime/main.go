package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/cli"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/config"
	"github.com/pxbt-dev/FibonacciTimeTrader-sub000/internal/logging"
)

func main() {
	// The config file shapes the command tree, so the --config flag is
	// resolved before cobra parses anything.
	configDir := cli.ConfigDirFromArgs(os.Args[1:])
	if configDir == "" {
		configDir = os.Getenv("FIBTIME_CONFIG_DIR")
	}

	cfg, err := config.Load(configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fibtime: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := cli.NewRootCmd(cfg, logger)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fibtime: %v\n", err)
		os.Exit(1)
	}
}
