// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

// The gin engine is mounted on an http.Server rather than run via
// gin.Run() so that shutdown is graceful and tied into the lifecycle
// package's signal handling.

package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stratastor/logger"

	"github.com/hushdisk/hushd/config"
	"github.com/hushdisk/hushd/pkg/monitor"
)

var srv *http.Server

// Start serves the management API until the context is cancelled or
// Shutdown is called. The API is read-mostly: it observes tracker state
// and offers manual spin-down; all periodic work stays in the monitor.
func Start(ctx context.Context, port int, mon *monitor.Monitor) error {
	l, err := logger.NewTag(config.NewLoggerConfig(config.GetConfig()), "server")
	if err != nil {
		return err
	}
	cfg := config.GetConfig()

	switch cfg.Environment {
	case "prod", "production":
		gin.SetMode(gin.ReleaseMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(LoggerMiddleware(l))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	registerRoutes(engine, mon)

	srv = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		return nil
	}
}

// Shutdown gracefully stops the API server.
func Shutdown(ctx context.Context) error {
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
