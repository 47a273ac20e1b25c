// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

// Package httpclient wraps resty with the client defaults used by the
// CLI commands that talk to a running hushd instance.
package httpclient

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/hushdisk/hushd/internal/constants"
)

const (
	defaultTimeout         = 10 * time.Second
	defaultRetryCount      = 3
	defaultRetryWaitTime   = 2 * time.Second
	defaultRetryMaxWait    = 10 * time.Second
	defaultMaxIdleConns    = 10
	defaultIdleConnTimeout = 90 * time.Second
	defaultUserAgent       = "Hushd-CLI"
)

// Client wraps resty.Client with hushd defaults.
type Client struct {
	*resty.Client
	config ClientConfig
}

// ClientConfig holds configuration values for the HTTP client
type ClientConfig struct {
	BaseURL          string
	Timeout          time.Duration
	RetryCount       int
	RetryWaitTime    time.Duration
	RetryMaxWaitTime time.Duration
	UserAgent        string
	Headers          map[string]string
	Debug            bool
}

// NewClientConfig returns a ClientConfig with sensible defaults
func NewClientConfig() ClientConfig {
	return ClientConfig{
		Timeout:          defaultTimeout,
		RetryCount:       defaultRetryCount,
		RetryWaitTime:    defaultRetryWaitTime,
		RetryMaxWaitTime: defaultRetryMaxWait,
		UserAgent:        defaultUserAgent + "/" + constants.Version,
		Headers:          make(map[string]string),
	}
}

// NewClient creates a new resty client with the provided configuration
func NewClient(config ClientConfig) *Client {
	client := &Client{
		Client: resty.New(),
		config: config,
	}
	client.applyConfig()
	return client
}

func (c *Client) applyConfig() {
	if c.config.Timeout > 0 {
		c.Client.SetTimeout(c.config.Timeout)
	}
	if c.config.RetryCount > 0 {
		c.Client.SetRetryCount(c.config.RetryCount)
	}
	if c.config.RetryWaitTime > 0 {
		c.Client.SetRetryWaitTime(c.config.RetryWaitTime)
	}
	if c.config.RetryMaxWaitTime > 0 {
		c.Client.SetRetryMaxWaitTime(c.config.RetryMaxWaitTime)
	}
	if c.config.UserAgent != "" {
		c.Client.SetHeader("User-Agent", c.config.UserAgent)
	}
	if c.config.BaseURL != "" {
		c.Client.SetBaseURL(c.config.BaseURL)
	}
	if c.config.Headers != nil {
		c.Client.SetHeaders(c.config.Headers)
	}
	if c.config.Debug {
		c.Client.SetDebug(true)
	} else {
		c.Client.SetDebug(false)
		// Suppress resty's own logging
		c.Client.SetLogger(noOpLogger{})
	}

	c.Client.SetTransport(&http.Transport{
		MaxIdleConns:    defaultMaxIdleConns,
		IdleConnTimeout: defaultIdleConnTimeout,
	})
}

type noOpLogger struct{}

func (l noOpLogger) Printf(format string, v ...interface{}) {}
func (l noOpLogger) Debugf(format string, v ...interface{}) {}
func (l noOpLogger) Warnf(format string, v ...interface{})  {}
func (l noOpLogger) Errorf(format string, v ...interface{}) {}
