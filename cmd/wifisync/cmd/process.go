package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/efgnet/wifisync/internal/config"
	"github.com/efgnet/wifisync/internal/teams"
	"github.com/efgnet/wifisync/pkg/notify"
	"github.com/efgnet/wifisync/pkg/reconcile"
)

// processCmd represents the process command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process open WiFi MAC tasks once",
	Long: `Process lists the open automation tasks on the Planner board, applies
each one to the controller's MAC allow-list and the local mirror file, and
marks the applied tasks complete.

Tasks that fail stay open on the board and are retried on the next run.
The exit status is non-zero when any task failed.`,
	Example: `  wifisync process
  wifisync process --config /etc/wifisync/wifisync.yaml -v`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return runBatch(cmd.Context(), cfg)
}

// runBatch performs one reconciliation run and reports the outcome. The
// watch command reuses it for every tick; the mirror file is reloaded each
// time so local edits between runs are picked up.
func runBatch(ctx context.Context, cfg *config.Config) error {
	engine, err := buildEngine(ctx, cfg)
	if err != nil {
		return err
	}

	result, err := engine.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println(result.Summary())
	if !result.IsSuccess() {
		return fmt.Errorf("%d of %d tasks failed", result.Failed(), len(result.Outcomes))
	}
	return nil
}

// buildEngine wires the engine's collaborators from configuration.
func buildEngine(ctx context.Context, cfg *config.Config) (*reconcile.Engine, error) {
	source, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	controller, err := newController(cfg)
	if err != nil {
		return nil, err
	}

	var opts []reconcile.Option

	if cfg.Mirror.Enabled {
		mirror, err := loadMirror(ctx, cfg)
		if err != nil {
			return nil, err
		}
		opts = append(opts, reconcile.WithMirror(mirror))
	}

	if notifier, err := buildNotifier(cfg); err != nil {
		return nil, err
	} else if notifier != nil {
		opts = append(opts, reconcile.WithNotifier(notifier))
	}

	return reconcile.New(source, controller, opts...)
}

// buildNotifier returns nil when notifications are disabled.
func buildNotifier(cfg *config.Config) (notify.Notifier, error) {
	if !cfg.Notifications.SendStatus && !cfg.Notifications.SendErrors {
		return nil, nil
	}
	if err := cfg.ValidateNotifications(); err != nil {
		return nil, err
	}

	hook, err := teams.New(teams.Config{
		Webhook:     cfg.Notifications.Webhook,
		CardInfo:    cfg.Notifications.CardInfo,
		CardWarning: cfg.Notifications.CardWarning,
		CardError:   cfg.Notifications.CardError,
	})
	if err != nil {
		return nil, err
	}
	return &notify.Gate{
		Next:   hook,
		Status: cfg.Notifications.SendStatus,
		Errors: cfg.Notifications.SendErrors,
	}, nil
}
