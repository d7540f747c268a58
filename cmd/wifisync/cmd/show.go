package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/efgnet/wifisync/internal/cmd/output"
	"github.com/efgnet/wifisync/pkg/macfile"
)

// showCmd represents the show command.
var showCmd = &cobra.Command{
	Use:   "show [network]",
	Short: "Show the controller's MAC allow-list for a network",
	Long: `Show reads the current MAC filter membership from the controller for
one network. When the mirror file is enabled, each address is annotated
with the owner comment recorded in the mirror and whether the mirror knows
the address at all.`,
	Example: `  wifisync show Guest-WiFi
  wifisync show -o yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
}

type memberRow struct {
	MAC      string `json:"mac"`
	Comment  string `json:"comment,omitempty"`
	InMirror bool   `json:"in_mirror"`
}

func runShow(cmd *cobra.Command, args []string) error {
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

	members, err := controller.Filter(cmd.Context(), network)
	if err != nil {
		return err
	}

	comments := map[string]macfile.Entry{}
	mirrorLoaded := false
	if cfg.Mirror.Enabled {
		mirror, err := loadMirror(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		mirrorLoaded = true
		for _, entry := range mirror.Entries() {
			if entry.Network == network {
				comments[entry.Addr.String()] = entry
			}
		}
	}

	rows := make([]memberRow, 0, len(members))
	for _, addr := range members {
		row := memberRow{MAC: addr.String()}
		if entry, ok := comments[addr.String()]; ok {
			row.Comment = entry.Comment
			row.InMirror = true
		} else if !mirrorLoaded {
			// Without a mirror there is nothing to cross-check.
			row.InMirror = true
		}
		rows = append(rows, row)
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return output.NewFormatter(output.DetectFormat(string(format))).Format(os.Stdout, rows)
}
