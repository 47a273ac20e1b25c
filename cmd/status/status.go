// Copyright 2025 The Hushd Authors
// SPDX-License-Identifier: Apache-2.0

package status

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hushdisk/hushd/internal/constants"
)

func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check Hushd daemon status",
		Run: func(cmd *cobra.Command, args []string) {
			if _, err := os.Stat(constants.HushdPIDFilePath); err == nil {
				fmt.Println("Hushd daemon is running")
			} else {
				fmt.Println("Hushd daemon is not running")
			}
		},
	}
}
