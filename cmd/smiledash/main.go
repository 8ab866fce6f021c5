package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lixenwraith/smiledash/config"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "smiledash",
	Short: "Live implied-volatility smile in the terminal",
	Long: `smiledash polls an option chain (or a synthetic smile) on a fixed period
and draws the implied-volatility smile, a polynomial fit and the chain table.

Press the quit key (default q) to exit.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDashboard,
}

func init() {
	config.RegisterFlags(rootCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "smiledash:", err)
		os.Exit(1)
	}
}
