package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/hypnotizedent/printshop-os-sub018/internal/bootstrap"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/config"
	"github.com/hypnotizedent/printshop-os-sub018/internal/infrastructure/logger"
	"github.com/hypnotizedent/printshop-os-sub018/internal/interfaces/cli"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand(newEngine).ExecuteContext(ctx)
	if code := cli.GetExitCode(err); code != cli.ExitSuccess {
		os.Exit(code)
	}
}

// newEngine assembles the sync engine without its background workers
func newEngine(ctx context.Context, opts *cli.RootOptions) (cli.Engine, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	level := "warn"
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(&logger.Config{
		Level:      level,
		Format:     "console",
		Output:     "stderr",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	app, err := bootstrap.New(ctx, cfg, log, version)
	if err != nil {
		return nil, nil, err
	}
	release := func() {
		// flush changes detected by this run before exiting
		if n, err := app.Relay.Flush(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to publish changes", zap.Error(err))
		} else if n > 0 {
			log.Info("Published changes", zap.Int("count", n))
		}
		if err := app.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Error releasing resources", zap.Error(err))
		}
		_ = log.Sync()
	}
	return app.Service, release, nil
}
