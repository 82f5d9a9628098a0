package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/pinledger/internal/buildinfo"
	"github.com/dmitrijs2005/pinledger/internal/cli"
	"github.com/dmitrijs2005/pinledger/internal/common"
	"github.com/dmitrijs2005/pinledger/internal/config"
	"github.com/dmitrijs2005/pinledger/internal/cryptox"
	"github.com/dmitrijs2005/pinledger/internal/logging"
	"github.com/dmitrijs2005/pinledger/internal/repositories/snapshot"
	"github.com/dmitrijs2005/pinledger/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "atm: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, in io.Reader, out io.Writer) error {
	buildinfo.PrintBuildData(out)

	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	logOut := io.Writer(os.Stderr)
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := logging.New(cfg.LogLevel, logOut)

	hasher, err := cryptox.NewHasher(cfg.HashAlgorithm, cfg.BcryptCost)
	if err != nil {
		return err
	}

	repo, err := snapshot.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	gate, err := services.NewSessionGate(ctx, repo, hasher, cfg.OpeningBalance, logger)
	if err != nil {
		if errors.Is(err, common.ErrCorruptState) {
			logger.Error(ctx, "refusing to start on corrupt storage", "driver", cfg.StorageDriver, "error", err)
		}
		return err
	}

	app := cli.NewApp(gate, in, out, cfg.InputTimeout, logger)
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
