package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alfanzaky/sitecomply/config"
	"github.com/alfanzaky/sitecomply/internal/bootstrap"
	"github.com/alfanzaky/sitecomply/internal/cli"
	"github.com/alfanzaky/sitecomply/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load configuration: %v\n", err)
		os.Exit(2)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(2)
	}

	level := cfg.App.LogLevel
	if level == "" {
		level = "warn"
	}
	logger.Init(cfg.App.Environment, level)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	open := func(ctx context.Context) (*cli.Session, error) {
		core, err := bootstrap.NewCore(ctx, cfg, nil)
		if err != nil {
			return nil, err
		}
		return &cli.Session{
			Sync:   core.Sync,
			Online: core.Oracle.Set,
			Close:  core.Close,
		}, nil
	}

	if err := cli.NewRootCommand(open).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
