// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Command sage runs the Sage mental health support chat service.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/ManuGH/sage/internal/app/bootstrap"
	sagelog "github.com/ManuGH/sage/internal/log"
	"github.com/ManuGH/sage/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 && args[0] == "storage" {
		return runStorageCLI(args[1:], stdout, stderr)
	}

	fs := flag.NewFlagSet("sage", flag.ContinueOnError)
	fs.SetOutput(stderr)
	showVersion := fs.Bool("version", false, "print version and exit")
	configPath := fs.String("config", "", "path to config file (YAML)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	if *showVersion {
		_, _ = fmt.Fprintln(stdout, version.String())
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := bootstrap.WireServices(ctx, version.Version, *configPath)
	if err != nil {
		logger := sagelog.WithComponent("daemon")
		logger.Error().
			Err(err).
			Str("event", "startup.failed").
			Str("config_path", *configPath).
			Msg("failed to start sage")
		return 1
	}

	if err := container.Run(ctx); err != nil {
		container.Logger.Error().Err(err).Str("event", "daemon.failed").Msg("sage stopped with error")
		return 1
	}
	return 0
}
