// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stratastor/logger"

	"github.com/hushdisk/hushd/pkg/errors"
)

// LoggerMiddleware logs each request with a correlation ID, skipping the
// liveness endpoint to keep the log usable.
func LoggerMiddleware(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		if path == "/health" {
			c.Next()
			return
		}

		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = uuid.New().String()
			c.Header("X-Request-Id", requestID)
		}
		c.Set("request_id", requestID)

		c.Next()

		args := []interface{}{
			"request_id", requestID,
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", c.ClientIP(),
		}

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				if he, ok := errors.AsHushError(err.Err); ok {
					args = append(args,
						"error_code", int(he.Code),
						"error_domain", string(he.Domain),
						"error_message", he.Message,
					)
					for k, v := range he.Metadata {
						args = append(args, "error_metadata_"+k, v)
					}
				} else {
					args = append(args, "error", err.Error())
				}
			}

			switch {
			case c.Writer.Status() >= 500:
				l.Error("Server Error", args...)
			case c.Writer.Status() >= 400:
				l.Warn("Client Error", args...)
			}
		} else {
			l.Info("Request", args...)
		}
	}
}
