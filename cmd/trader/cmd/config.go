package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/advisor/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Generate or validate configuration files",
	Long: `Manage backtest configuration files.

Subcommands:
  init     - Generate a default configuration file
  validate - Validate an existing configuration file

Examples:
  trader config init --output backtest.yaml
  trader config validate --file backtest.yaml`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a default configuration file",
	Long: `Create a new configuration file with default settings. The format
follows the extension: .yaml/.yml for YAML, anything else JSON.

Example:
  trader config init --output backtest.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a configuration file",
	Long: `Check that a configuration file loads and describes a runnable backtest.

Example:
  trader config validate --file backtest.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigValidate,
}

var (
	configInitOutput   string
	configInitSymbol   string
	configValidatePath string
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)

	configInitCmd.Flags().StringVarP(&configInitOutput, "output", "o", "backtest.yaml", "output config file path")
	configInitCmd.Flags().StringVarP(&configInitSymbol, "symbol", "s", "", "symbol to put in the generated file")
	configValidateCmd.Flags().StringVarP(&configValidatePath, "file", "f", "", "path to config file (required)")
	configValidateCmd.MarkFlagRequired("file")
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	cfg.Backtest.Symbol = configInitSymbol
	if err := cfg.SaveToFile(configInitOutput); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Created default configuration: %s\n", configInitOutput)
	fmt.Fprintln(out, "\nSet symbol, start_date and end_date, then run with:")
	fmt.Fprintf(out, "  trader run --config %s\n", configInitOutput)
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(configValidatePath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "✓ Configuration valid: %s\n", configValidatePath)
	fmt.Fprintf(out, "  Backtest: %s %s to %s ($%.2f)\n",
		cfg.Backtest.Symbol, cfg.Backtest.StartDate, cfg.Backtest.EndDate, cfg.Backtest.InitialCapital)
	fmt.Fprintf(out, "  Oracle: %s (min confidence %d/10)\n", cfg.Oracle.Kind, cfg.Backtest.MinConfidence)
	fmt.Fprintf(out, "  Data: %s\n", cfg.Data.Provider)
	fmt.Fprintf(out, "  Output: %s\n", cfg.Output.Dir)
	return nil
}
