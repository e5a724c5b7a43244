package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fxgate",
	Short: "HTTP gateway for risk-sized FX orders",
	Long: `fxgate exposes a trading account over a small JSON API.

It provides:
  - Balance and equity lookup
  - Open positions, filtered by symbol
  - Closing a position by id
  - Order placement with risk-based position sizing and stop-loss pricing

Credentials come from the environment (METAAPI_TOKEN, ACCOUNT_ID) or a .env file.`,
	SilenceUsage: true,
}

var cfgFile string

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON), overridden by environment")
}
