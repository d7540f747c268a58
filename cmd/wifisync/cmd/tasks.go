package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/efgnet/wifisync/internal/cmd/output"
	"github.com/efgnet/wifisync/pkg/task"
)

// tasksCmd represents the tasks command.
var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List open WiFi MAC tasks on the Planner board",
	Long: `Tasks lists the open automation tasks wifisync would process, without
touching the controller or marking anything complete. Tasks it cannot
decode are shown with the decoding problem.`,
	Example: `  wifisync tasks
  wifisync tasks -o json`,
	RunE: runTasks,
}

func init() {
	rootCmd.AddCommand(tasksCmd)
}

type taskRow struct {
	ID        string `json:"id"`
	Operation string `json:"operation"`
	MAC       string `json:"mac"`
	Network   string `json:"network"`
	Comment   string `json:"comment"`
	Problem   string `json:"problem,omitempty"`
}

func runTasks(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	raws, err := source.ListOpen(cmd.Context())
	if err != nil {
		return err
	}

	rows := make([]taskRow, 0, len(raws))
	for _, raw := range raws {
		decoded, err := task.Decode(raw)
		if err != nil {
			rows = append(rows, taskRow{ID: raw.ID, Problem: err.Error()})
			continue
		}
		rows = append(rows, taskRow{
			ID:        decoded.ID,
			Operation: string(decoded.Kind),
			MAC:       decoded.Addr.String(),
			Network:   decoded.Network,
			Comment:   decoded.Comment,
		})
	}

	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return err
	}
	return output.NewFormatter(output.DetectFormat(string(format))).Format(os.Stdout, rows)
}
