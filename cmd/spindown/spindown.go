// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package spindown

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/stratastor/logger"

	"github.com/hushdisk/hushd/config"
	"github.com/hushdisk/hushd/pkg/actuator"
	"github.com/hushdisk/hushd/pkg/device"
)

// NewSpindownCmd builds the one-shot actuation command: spin a single
// disk down immediately and exit, without starting the monitor.
func NewSpindownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spindown <disk>",
		Short: "Immediately spin down a disk and exit",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			l, err := logger.NewTag(config.NewLoggerConfig(config.GetConfig()), "spindown")
			if err != nil {
				panic(err)
			}

			name, err := device.ResolveName(args[0])
			if err != nil {
				fmt.Printf("%s: %v\n", args[0], err)
				os.Exit(1)
			}

			if err := actuator.New(l).SpinDown(context.Background(), name); err != nil {
				fmt.Printf("%s: %v\n", name, err)
				os.Exit(1)
			}
			fmt.Printf("%s: spun down\n", name)
		},
	}
}
