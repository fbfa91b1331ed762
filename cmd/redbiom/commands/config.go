package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/adswafford/redbiom/internal/cli/output"
	"github.com/adswafford/redbiom/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the redbiom configuration file",
}

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Write a default configuration file.

By default the file is created at $XDG_CONFIG_HOME/redbiom/config.yaml.
Use --config to choose another path.

Examples:
  # Initialize at the default location
  redbiom config init

  # Initialize at a custom path
  redbiom config init --config /etc/redbiom/config.yaml`,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the effective configuration",
	Long: `Display the effective configuration after defaults and environment
overrides are applied. Outputs YAML unless --output selects JSON.`,
	RunE: runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !configInitForce {
		return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
	}

	if err := config.Save(config.GetDefaultConfig(), path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", path)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Edit the file to pick a store backend (badger or webdis)")
	fmt.Println("  2. Load data with: redbiom admin load-sample-metadata")
	fmt.Println("  3. Or serve the API with: redbiom serve")
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.MustLoad(GetConfigFile())
	if err != nil {
		return err
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}

	switch format {
	case output.FormatJSON:
		return output.PrintJSON(os.Stdout, cfg)
	default:
		return output.PrintYAML(os.Stdout, cfg)
	}
}
