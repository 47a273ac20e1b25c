package health

import (
	"fmt"
	"time"

	"github.com/stratastor/logger"

	"github.com/hushdisk/hushd/config"
	"github.com/hushdisk/hushd/pkg/httpclient"
)

type HealthChecker struct {
	Client *httpclient.Client
	Logger logger.Logger
}

func NewHealthChecker(cfg *config.Config) *HealthChecker {
	l, err := logger.NewTag(config.NewLoggerConfig(cfg), "health")
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}

	clientConfig := httpclient.NewClientConfig()
	clientConfig.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Server.Port)
	clientConfig.Timeout = 5 * time.Second
	clientConfig.RetryCount = 3
	clientConfig.RetryWaitTime = 2 * time.Second

	return &HealthChecker{
		Client: httpclient.NewClient(clientConfig),
		Logger: l,
	}
}

// CheckHealth queries the running daemon's liveness endpoint.
func (hc *HealthChecker) CheckHealth() (string, error) {
	resp, err := hc.Client.R().Get("/health")
	if err != nil {
		return "", err
	}

	if resp.IsSuccess() {
		return resp.String(), nil
	}
	return "", fmt.Errorf("unhealthy. Status: %s, Response: %s", resp.Status(), resp.String())
}
