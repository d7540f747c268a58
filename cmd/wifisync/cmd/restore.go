package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/filter"
	"github.com/efgnet/wifisync/pkg/logging"
)

var (
	restoreNetwork     string
	restoreAutoApprove bool
)

// restoreCmd represents the restore command.
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Replace controller allow-lists with the mirror file contents",
	Long: `Restore pushes the mirror file's membership to the controller,
replacing the current allow-list of every network the mirror mentions.
Use it after a controller reset or when the controller state has drifted
from the mirror.

This is a full replace: addresses on the controller but not in the mirror
are removed. A confirmation prompt guards the operation unless
--auto-approve is given.`,
	Example: `  wifisync restore
  wifisync restore --network Guest-WiFi -y`,
	RunE: runRestore,
}

func init() {
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().StringVar(&restoreNetwork, "network", "", "restore only this network")
	restoreCmd.Flags().BoolVarP(&restoreAutoApprove, "auto-approve", "y", false, "skip the confirmation prompt")
}

func runRestore(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !cfg.Mirror.Enabled {
		return errors.NewConfigError("mirror.enabled", "restore needs the mirror file", nil)
	}

	mirror, err := loadMirror(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	// Group the mirror membership per network.
	sets := map[string]*filter.Set{}
	for _, entry := range mirror.Entries() {
		if restoreNetwork != "" && entry.Network != restoreNetwork {
			continue
		}
		set, ok := sets[entry.Network]
		if !ok {
			set = filter.New(entry.Network)
			sets[entry.Network] = set
		}
		set.Add(entry.Addr)
	}
	if len(sets) == 0 {
		fmt.Println("Nothing to restore: the mirror has no matching entries.")
		return nil
	}

	networks := make([]string, 0, len(sets))
	for network := range sets {
		networks = append(networks, network)
	}
	sort.Strings(networks)

	if !restoreAutoApprove {
		fmt.Printf("This replaces the allow-list of %d network(s): %s\n",
			len(networks), strings.Join(networks, ", "))
		fmt.Printf("Continue? (y/N): ")
		var response string
		if _, err := fmt.Scanln(&response); err != nil {
			response = "n"
		}
		if answer := strings.ToLower(strings.TrimSpace(response)); answer != "y" && answer != "yes" {
			fmt.Println("Restore cancelled")
			return nil
		}
	}

	controller, err := newController(cfg)
	if err != nil {
		return err
	}

	log := logging.FromContext(cmd.Context())
	for _, network := range networks {
		set := sets[network]
		if err := controller.SetFilter(cmd.Context(), network, set.Members()); err != nil {
			return err
		}
		log.Info().Str("network", network).Int("members", set.Len()).Msg("allow-list restored")
	}

	fmt.Printf("Restored %d network(s) from %s\n", len(networks), mirror.Path())
	return nil
}
