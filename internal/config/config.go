// Package config loads the wifisync configuration. Configuration is an
// explicit value constructed once at process start and handed to the
// collaborators that need it; nothing reads ambient global state after
// that.
//
// Sources, in increasing precedence: config file (YAML), .env file,
// WIFISYNC_* environment variables.
package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/efgnet/wifisync/pkg/errors"
)

// Config is the complete wifisync configuration.
type Config struct {
	Controller    Controller    `mapstructure:"controller" yaml:"controller"`
	Planner       Planner       `mapstructure:"planner" yaml:"planner"`
	Mirror        Mirror        `mapstructure:"mirror" yaml:"mirror"`
	Notifications Notifications `mapstructure:"notifications" yaml:"notifications"`
}

// Controller configures access to the UniFi controller.
type Controller struct {
	// Host is the controller base URL, e.g. https://cloudkey.local:8443
	Host string `mapstructure:"host" yaml:"host"`
	// Site is the UniFi site name (almost always "default")
	Site string `mapstructure:"site" yaml:"site"`
	User string `mapstructure:"user" yaml:"user"`
	// Password should usually come from WIFISYNC_CONTROLLER_PASSWORD
	Password string `mapstructure:"password" yaml:"password,omitempty"`
	// DefaultNetwork is the SSID assumed for commands run without an
	// explicit network, and for legacy mirror entries without a
	// ";network" suffix
	DefaultNetwork string `mapstructure:"default_network" yaml:"default_network"`
	// InsecureSkipVerify disables TLS certificate verification; CloudKey
	// devices ship with self-signed certificates
	InsecureSkipVerify bool `mapstructure:"insecure_skip_verify" yaml:"insecure_skip_verify"`
}

// Planner configures the Microsoft Planner task source.
type Planner struct {
	// Tenant is the Azure AD tenant ID
	Tenant string `mapstructure:"tenant" yaml:"tenant"`
	// PlanID restricts task processing to one Planner plan
	PlanID string `mapstructure:"plan_id" yaml:"plan_id"`
	// TokenFile holds the stored OAuth token (interactive grant happens
	// out of band; the stored token is refreshed by the granting flow)
	TokenFile string `mapstructure:"token_file" yaml:"token_file"`
}

// Mirror configures the local mirror file.
type Mirror struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// Notifications configures the Teams webhook sink.
type Notifications struct {
	Webhook string `mapstructure:"webhook" yaml:"webhook,omitempty"`
	// SendStatus controls routine run summaries
	SendStatus bool `mapstructure:"send_status" yaml:"send_status"`
	// SendErrors controls failure notifications
	SendErrors bool `mapstructure:"send_errors" yaml:"send_errors"`
	// Card templates override the built-in adaptive cards; the literal
	// __MESSAGE__ placeholder is replaced with the message text
	CardInfo    string `mapstructure:"card_info" yaml:"card_info,omitempty"`
	CardWarning string `mapstructure:"card_warning" yaml:"card_warning,omitempty"`
	CardError   string `mapstructure:"card_error" yaml:"card_error,omitempty"`
}

// Load reads the configuration. path selects an explicit config file; when
// empty the usual locations are searched (., $HOME/.config/wifisync,
// /etc/wifisync).
func Load(path string) (*Config, error) {
	// A .env next to the working directory is a development convenience;
	// a missing file is fine.
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("controller.site", "default")
	v.SetDefault("mirror.enabled", true)
	v.SetDefault("mirror.path", "mac_addresses.txt")
	v.SetDefault("planner.token_file", "o365_token.json")
	v.SetDefault("notifications.send_status", true)
	v.SetDefault("notifications.send_errors", true)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("wifisync")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/wifisync")
		v.AddConfigPath("/etc/wifisync")
	}

	v.SetEnvPrefix("WIFISYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Only an explicitly named file is required to exist.
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, errors.NewConfigError("", "reading config", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("", "decoding config", err)
	}
	return &cfg, nil
}

// ValidateController checks the fields every controller-facing command
// needs.
func (c *Config) ValidateController() error {
	switch {
	case c.Controller.Host == "":
		return errors.NewConfigError("controller.host", "cannot be empty", nil)
	case c.Controller.User == "":
		return errors.NewConfigError("controller.user", "cannot be empty", nil)
	case c.Controller.Password == "":
		return errors.NewConfigError("controller.password", "cannot be empty (set WIFISYNC_CONTROLLER_PASSWORD)", nil)
	}
	return nil
}

// ValidatePlanner checks the fields the task-processing commands need.
func (c *Config) ValidatePlanner() error {
	switch {
	case c.Planner.Tenant == "":
		return errors.NewConfigError("planner.tenant", "cannot be empty", nil)
	case c.Planner.PlanID == "":
		return errors.NewConfigError("planner.plan_id", "cannot be empty", nil)
	case c.Planner.TokenFile == "":
		return errors.NewConfigError("planner.token_file", "cannot be empty", nil)
	}
	return nil
}

// ValidateNotifications checks the webhook when notifications are enabled.
func (c *Config) ValidateNotifications() error {
	if (c.Notifications.SendStatus || c.Notifications.SendErrors) && c.Notifications.Webhook == "" {
		return errors.NewConfigError("notifications.webhook", "cannot be empty while notifications are enabled", nil)
	}
	return nil
}
