package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/efgnet/wifisync/internal/unifi"
)

// filterCmd groups the MAC filter mode subcommands.
var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Manage a network's MAC filter mode",
	Long: `Filter toggles MAC filtering for a network and switches it between
allow-list and deny-list mode. Membership is managed by the task
processing commands; these subcommands only change the filter mode.`,
}

var filterEnableCmd = &cobra.Command{
	Use:     "enable [network]",
	Short:   "Turn MAC filtering on for a network",
	Example: `  wifisync filter enable Guest-WiFi`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFilterEnabled(cmd, args, true)
	},
}

var filterDisableCmd = &cobra.Command{
	Use:     "disable [network]",
	Short:   "Turn MAC filtering off for a network",
	Example: `  wifisync filter disable Guest-WiFi`,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFilterEnabled(cmd, args, false)
	},
}

var filterPolicyCmd = &cobra.Command{
	Use:   "policy <allow|deny> [network]",
	Short: "Switch the filter between allow-list and deny-list mode",
	Example: `  wifisync filter policy allow Guest-WiFi
  wifisync filter policy deny`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runFilterPolicy,
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.AddCommand(filterEnableCmd)
	filterCmd.AddCommand(filterDisableCmd)
	filterCmd.AddCommand(filterPolicyCmd)
}

func setFilterEnabled(cmd *cobra.Command, args []string, enabled bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	network, err := resolveNetwork(cfg, args)
	if err != nil {
		return err
	}
	controller, err := newController(cfg)
	if err != nil {
		return err
	}

	if err := controller.SetFilterEnabled(cmd.Context(), network, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	fmt.Printf("MAC filtering %s for %s\n", state, network)
	return nil
}

func runFilterPolicy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	network, err := resolveNetwork(cfg, args[1:])
	if err != nil {
		return err
	}
	controller, err := newController(cfg)
	if err != nil {
		return err
	}

	policy := unifi.FilterPolicy(args[0])
	if err := controller.SetFilterPolicy(cmd.Context(), network, policy); err != nil {
		return err
	}

	fmt.Printf("MAC filter policy for %s set to %s\n", network, policy)
	return nil
}
