package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/efgnet/wifisync/internal/config"
)

var migrateOut string

// configCmd groups configuration subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage wifisync configuration",
}

// configMigrateCmd converts a legacy INI configuration to YAML.
var configMigrateCmd = &cobra.Command{
	Use:   "migrate <legacy.ini>",
	Short: "Convert a legacy INI configuration to wifisync YAML",
	Long: `Migrate reads a legacy efg_automation.ini file and writes the
equivalent wifisync YAML configuration. Secrets present in the INI file
are carried over; prefer moving them to WIFISYNC_* environment variables
afterwards.`,
	Example: `  wifisync config migrate efg_automation.ini
  wifisync config migrate efg_automation.ini --out /etc/wifisync/wifisync.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigMigrate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configMigrateCmd)
	configMigrateCmd.Flags().StringVar(&migrateOut, "out", "wifisync.yaml", "path of the YAML file to write")
}

func runConfigMigrate(_ *cobra.Command, args []string) error {
	cfg, err := config.FromLegacyINI(args[0])
	if err != nil {
		return err
	}
	if err := cfg.WriteYAML(migrateOut); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", migrateOut)
	return nil
}
