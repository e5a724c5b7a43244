package cmd

import (
	"fmt"

	"github.com/rustyeddy/fxgate/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage gateway configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate a configuration file together with the environment

The API token is read from METAAPI_TOKEN only and is never written to disk.

Examples:
  fxgate config init --output fxgate.yaml
  fxgate config validate --file fxgate.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Args:  cobra.NoArgs,
	RunE:  runConfigValidate,
}

var (
	configInitOutput    string
	configInitAccountID string
	configValidatePath  string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "fxgate.yaml", "output config file path")
	configInitCmd.Flags().StringVar(&configInitAccountID, "account-id", "", "trading account id to write")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.API.AccountID = configInitAccountID
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nSet METAAPI_TOKEN and run with:")
	fmt.Fprintf(out, "  fxgate serve --config %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configValidatePath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Account: %s\n", cfg.API.AccountID)
	fmt.Fprintf(out, "  Default symbol: %s\n", cfg.Trading.DefaultSymbol)
	fmt.Fprintf(out, "  Listen: %s\n", cfg.Addr())
	return nil
}
