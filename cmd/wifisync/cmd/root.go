// Package cmd implements the wifisync command line interface.
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/efgnet/wifisync/internal/config"
	"github.com/efgnet/wifisync/internal/planner"
	"github.com/efgnet/wifisync/internal/unifi"
	"github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/logging"
	"github.com/efgnet/wifisync/pkg/macfile"
)

var (
	configFile   string
	verbose      bool
	quiet        bool
	outputFormat string

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "wifisync",
	Short: "WiFi MAC filter automation for UniFi controllers",
	Long: `Wifisync keeps the MAC allow-lists of a UniFi controller in sync with
a Microsoft Planner task board. Add and remove requests are filed as
Planner tasks; wifisync applies them to the controller, maintains a local
mirror file of the allow-list, and marks the tasks complete.

A run summary can be posted to a Microsoft Teams channel.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupCommand,
}

// Execute runs the root command with signal-aware context handling.
func Execute(version, commit, date string) error {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logging.Default().Error().Err(err).Msg("command failed")
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default searches ., $HOME/.config/wifisync, /etc/wifisync)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format: table, json, yaml (default auto-detects)")
}

// setupCommand is called before any command runs.
func setupCommand(_ *cobra.Command, _ []string) error {
	configureLogging()
	return nil
}

// configureLogging sets up the logging system from flags and environment.
func configureLogging() {
	level := "info"
	if verbose {
		level = "debug"
	}
	if quiet {
		level = "warn"
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		level = envLevel
	}

	logging.Configure(&logging.Config{
		Level:  level,
		Format: os.Getenv("LOG_FORMAT"),
		Output: os.Getenv("LOG_OUTPUT"),
	})
}

// loadConfig reads the configuration for the current invocation.
func loadConfig() (*config.Config, error) {
	return config.Load(configFile)
}

// newController builds the UniFi client from configuration.
func newController(cfg *config.Config) (*unifi.Client, error) {
	if err := cfg.ValidateController(); err != nil {
		return nil, err
	}
	return unifi.New(unifi.Config{
		Host:               cfg.Controller.Host,
		Site:               cfg.Controller.Site,
		User:               cfg.Controller.User,
		Password:           cfg.Controller.Password,
		InsecureSkipVerify: cfg.Controller.InsecureSkipVerify,
	})
}

// newSource builds the Planner task source from configuration.
func newSource(cfg *config.Config) (*planner.Client, error) {
	if err := cfg.ValidatePlanner(); err != nil {
		return nil, err
	}
	return planner.New(planner.Config{
		PlanID:    cfg.Planner.PlanID,
		TokenFile: cfg.Planner.TokenFile,
	})
}

// loadMirror opens the mirror file, reporting malformed lines as warnings.
func loadMirror(ctx context.Context, cfg *config.Config) (*macfile.File, error) {
	var opts []macfile.Option
	if cfg.Controller.DefaultNetwork != "" {
		opts = append(opts, macfile.WithDefaultNetwork(cfg.Controller.DefaultNetwork))
	}

	mirror, err := macfile.Load(cfg.Mirror.Path, opts...)
	if err != nil {
		return nil, err
	}

	log := logging.FromContext(ctx)
	for _, lineErr := range mirror.Malformed() {
		log.Warn().Err(lineErr).Str("path", mirror.Path()).Msg("skipping malformed mirror line")
	}
	return mirror, nil
}

// resolveNetwork picks the network from the argument list or falls back to
// the configured default.
func resolveNetwork(cfg *config.Config, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.Controller.DefaultNetwork != "" {
		return cfg.Controller.DefaultNetwork, nil
	}
	return "", errors.NewConfigError("controller.default_network",
		"no network given and no default configured", nil)
}
