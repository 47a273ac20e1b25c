// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package errors

import "net/http"

// Error code ranges:
// 1000-1099: Configuration errors
// 1100-1199: Server errors
// 1200-1299: Monitor engine errors
// 1300-1399: Disk / device node errors
// 1400-1499: Actuation errors
// 1500-1599: Lifecycle management
// 1600-1699: Miscellaneous
const (
	// Configuration Errors (1000-1099)
	ConfigNotFound       = 1000 + iota // Config file not found
	ConfigInvalid                      // Invalid config format
	ConfigLoadFailed                   // Failed to load config
	ConfigWriteFailed                  // Failed to write config
	ConfigDirectoryError               // Config directory error
	ConfigMarshalFailed                // Config serialization failed
	ConfigPolicyInvalid                // Invalid idle policy rule
)

const (
	// Server Errors (1100-1199)
	ServerStart         = 1100 + iota // Failed to start server
	ServerShutdown                    // Error during shutdown
	ServerBind                        // Failed to bind port
	ServerInternalError               // Internal server error
	ServerBadRequest                  // Bad request error
)

const (
	// Monitor Errors (1200-1299)
	MonitorStatsOpenFailed = 1200 + iota // Cannot open counter source
	MonitorStatsReadFailed               // Counter source read failed
	MonitorStartFailed                   // Monitor failed to start
	MonitorStopFailed                    // Monitor failed to stop
	MonitorDiskNotTracked                // Disk not in tracked set
	MonitorSchedulerError                // Poll scheduler error
)

const (
	// Disk / Device Node Errors (1300-1399)
	DiskStatFailed   = 1300 + iota // Cannot stat device node
	DiskNotWholeDisk               // Device is a partition or wrong class
	DiskNameInvalid                // Device name failed to resolve
)

const (
	// Actuation Errors (1400-1499)
	ActuatorOpenFailed   = 1400 + iota // Cannot open device node
	ActuatorIoctlFailed                // SG_IO ioctl failed
	ActuatorCommandError               // STOP UNIT returned non-zero status
)

const (
	// Lifecycle Management (1500-1599)
	LifecyclePID      = 1500 + iota // PID file operation failed
	LifecycleShutdown               // Shutdown process error
	LifecycleDaemon                 // Daemon operation failed
)

const (
	// Miscellaneous (1600-1699)
	HushdMisc = 1600 + iota // Miscellaneous program error
	FSError                 // Filesystem error
	NotFoundError           // Not found error
	LoggerError             // Logger error
)

type definition struct {
	message    string
	domain     Domain
	httpStatus int
}

var errorDefinitions = map[ErrorCode]definition{
	// Configuration errors
	ConfigNotFound:       {"Configuration file not found", DomainConfig, http.StatusNotFound},
	ConfigInvalid:        {"Invalid configuration format", DomainConfig, http.StatusBadRequest},
	ConfigLoadFailed:     {"Failed to load configuration", DomainConfig, http.StatusInternalServerError},
	ConfigWriteFailed:    {"Failed to write configuration", DomainConfig, http.StatusInternalServerError},
	ConfigDirectoryError: {"Config directory error", DomainConfig, http.StatusInternalServerError},
	ConfigMarshalFailed:  {"Failed to serialize configuration", DomainConfig, http.StatusInternalServerError},
	ConfigPolicyInvalid:  {"Invalid idle policy rule", DomainConfig, http.StatusBadRequest},

	// Server errors
	ServerStart:         {"Failed to start server", DomainServer, http.StatusInternalServerError},
	ServerShutdown:      {"Error during server shutdown", DomainServer, http.StatusInternalServerError},
	ServerBind:          {"Failed to bind server port", DomainServer, http.StatusInternalServerError},
	ServerInternalError: {"Internal server error", DomainServer, http.StatusInternalServerError},
	ServerBadRequest:    {"Bad request error", DomainServer, http.StatusBadRequest},

	// Monitor errors
	MonitorStatsOpenFailed: {"Cannot open I/O counter source", DomainMonitor, http.StatusInternalServerError},
	MonitorStatsReadFailed: {"Failed to read I/O counter source", DomainMonitor, http.StatusInternalServerError},
	MonitorStartFailed:     {"Failed to start disk monitor", DomainMonitor, http.StatusInternalServerError},
	MonitorStopFailed:      {"Failed to stop disk monitor", DomainMonitor, http.StatusInternalServerError},
	MonitorDiskNotTracked:  {"Disk is not tracked", DomainMonitor, http.StatusNotFound},
	MonitorSchedulerError:  {"Poll scheduler error", DomainMonitor, http.StatusInternalServerError},

	// Disk errors
	DiskStatFailed:   {"Cannot stat device node", DomainDisk, http.StatusInternalServerError},
	DiskNotWholeDisk: {"Device is not a managed whole disk", DomainDisk, http.StatusBadRequest},
	DiskNameInvalid:  {"Device name failed to resolve", DomainDisk, http.StatusBadRequest},

	// Actuation errors
	ActuatorOpenFailed:   {"Cannot open device node", DomainActuator, http.StatusInternalServerError},
	ActuatorIoctlFailed:  {"SG_IO ioctl failed", DomainActuator, http.StatusInternalServerError},
	ActuatorCommandError: {"Stop unit command failed", DomainActuator, http.StatusInternalServerError},

	// Lifecycle errors
	LifecyclePID:      {"PID file operation failed", DomainLifecycle, http.StatusInternalServerError},
	LifecycleShutdown: {"Shutdown process error", DomainLifecycle, http.StatusInternalServerError},
	LifecycleDaemon:   {"Daemon operation failed", DomainLifecycle, http.StatusInternalServerError},

	// Miscellaneous
	HushdMisc:     {"Miscellaneous program error", DomainMisc, http.StatusInternalServerError},
	FSError:       {"Filesystem error", DomainMisc, http.StatusInternalServerError},
	NotFoundError: {"Not found", DomainMisc, http.StatusNotFound},
	LoggerError:   {"Logger error", DomainMisc, http.StatusInternalServerError},
}
