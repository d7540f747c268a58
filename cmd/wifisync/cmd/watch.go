package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/efgnet/wifisync/internal/watch"
	"github.com/efgnet/wifisync/pkg/errors"
)

var watchInterval time.Duration

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Process tasks continuously on an interval",
	Long: `Watch runs the task processing loop until interrupted. The first run
happens immediately, then one run per interval. Failed runs are logged and
retried on the next tick.

Changes to the mirror file made outside wifisync are noticed between runs
and picked up when the next run reloads the file.`,
	Example: `  wifisync watch
  wifisync watch --interval 1m`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Minute, "time between runs")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	mirrorPath := ""
	if cfg.Mirror.Enabled {
		mirrorPath = cfg.Mirror.Path
	}

	runner := watch.New(watchInterval, mirrorPath, func(ctx context.Context) error {
		return runBatch(ctx, cfg)
	})

	err = runner.Run(cmd.Context())
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
