// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package constants

import "time"

// Build-time variables set via ldflags
var (
	Version   = "v0.1.0-dev" // Set via -X flag during build
	CommitSHA = "unknown"    // Set via -X flag during build
	BuildTime = "unknown"    // Set via -X flag during build
)

const (
	HushdPIDFilePath = "/var/run/hushd.pid"

	// config
	ConfigFileName = "hushd.yml"

	// routes
	APIVersion = "v1"
	APIBase    = "/api/" + APIVersion + "/hushd"
	APIDisks   = APIBase + "/disks"
	APIPolicy  = APIBase + "/policy"
)

const (
	// DefaultIdleTime applies to disks not matched by any policy rule.
	// Disks dislike frequent spin-up cycles; manufacturers recommend a
	// minimum idle period of several minutes.
	DefaultIdleTime = 600 * time.Second

	// MinPollInterval is the floor for the computed poll interval.
	MinPollInterval = time.Second

	// DiskstatsPath is the kernel per-device I/O counter snapshot.
	DiskstatsPath = "/proc/diskstats"

	// DevDir is where device nodes live.
	DevDir = "/dev"
)
