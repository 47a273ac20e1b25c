// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

var configDir string // Directory for configuration files

func init() {
	if os.Geteuid() == 0 {
		configDir = "/etc/hushd"
		return
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		panic(fmt.Sprintf("failed to get home directory: %v", err))
	}
	configDir = filepath.Join(homeDir, ".hushd")
}

// GetConfigDir returns the appropriate configuration directory.
// If running as root, it returns the system config directory;
// otherwise, the user config directory.
func GetConfigDir() string {
	return configDir
}
