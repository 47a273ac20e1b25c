package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hushdisk/hushd/cmd/config"
	"github.com/hushdisk/hushd/cmd/health"
	"github.com/hushdisk/hushd/cmd/logs"
	"github.com/hushdisk/hushd/cmd/serve"
	"github.com/hushdisk/hushd/cmd/spindown"
	"github.com/hushdisk/hushd/cmd/status"
	"github.com/hushdisk/hushd/cmd/version"
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "hushd",
		Short: "Hushd: idle disk spin-down daemon",
	}

	rootCmd.AddCommand(serve.NewServeCmd())
	rootCmd.AddCommand(spindown.NewSpindownCmd())
	rootCmd.AddCommand(version.NewVersionCmd())
	rootCmd.AddCommand(health.NewHealthCmd())
	rootCmd.AddCommand(status.NewStatusCmd())
	rootCmd.AddCommand(logs.NewLogsCmd())
	rootCmd.AddCommand(config.NewConfigCmd())

	return rootCmd
}
