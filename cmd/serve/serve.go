// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package serve

import (
	"context"
	"os"

	"github.com/sevlyar/go-daemon"
	"github.com/spf13/cobra"
	"github.com/stratastor/logger"

	"github.com/hushdisk/hushd/config"
	"github.com/hushdisk/hushd/internal/constants"
	"github.com/hushdisk/hushd/pkg/lifecycle"
	"github.com/hushdisk/hushd/pkg/monitor"
	"github.com/hushdisk/hushd/pkg/server"
)

var detached bool

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Hushd monitor",
		Run:   runServe,
	}

	cmd.Flags().BoolVarP(&detached, "detach", "d", false, "Run as a daemon")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) {
	lcfg := config.NewLoggerConfig(config.GetConfig())
	log, err := logger.NewTag(lcfg, "serve")
	if err != nil {
		panic(err)
	}

	rc := config.GetConfig()
	pidFile := constants.HushdPIDFilePath
	// Check for existing instance before proceeding
	if err := lifecycle.EnsureSingleInstance(pidFile); err != nil {
		log.Error("Failed to start", "err", err)
		os.Exit(1)
	}

	if detached {
		ctx := &daemon.Context{
			PidFileName: pidFile,
			PidFilePerm: 0644,
			LogFileName: rc.Logs.Path,
			LogFilePerm: 0640,
			WorkDir:     "/",
			Umask:       027,
			Args:        []string{"hushd", "serve"},
		}

		d, err := ctx.Reborn()
		if err != nil {
			log.Error("Failed to start daemon", "err", err)
			os.Exit(1)
		}

		if d != nil {
			log.Info("Hushd is running as a daemon")
			return
		}
		defer ctx.Release()
	}

	startMonitor()
}

func startMonitor() {
	lcfg := config.NewLoggerConfig(config.GetConfig())
	log, err := logger.NewTag(lcfg, "serve")
	if err != nil {
		panic(err)
	}
	cfg := config.GetConfig()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lifecycle.RegisterContextCanceller(cancel)

	mlog, err := logger.NewTag(lcfg, "monitor")
	if err != nil {
		panic(err)
	}
	mon, err := monitor.New(cfg, mlog)
	if err != nil {
		log.Error("Invalid monitor configuration", "err", err)
		os.Exit(1)
	}
	// A counter source that vanishes mid-run leaves nothing to monitor
	mon.OnFatal = cancel

	lifecycle.RegisterShutdownHook(func() {
		log.Info("Shutting down monitor...")
		if err := mon.Stop(); err != nil {
			log.Error("Error during monitor shutdown", "err", err)
		}
	})
	lifecycle.RegisterShutdownHook(func() {
		log.Info("Shutting down server...")
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Error during server shutdown", "err", err)
		}
	})

	// Start handling lifecycle signals (e.g., SIGTERM, SIGINT)
	go lifecycle.HandleSignals(ctx)

	// Failure here is fatal: the engine cannot run without its counter source
	if err := mon.Start(ctx); err != nil {
		log.Error("Failed to start monitor", "err", err)
		os.Exit(1)
	}

	log.Info("Starting Hushd API...", "port", cfg.Server.Port)
	if err := server.Start(ctx, cfg.Server.Port, mon); err != nil {
		log.Error("Failed to start server", "err", err)
	}
}
