package config

import (
	"os"

	"github.com/goccy/go-yaml"
	"gopkg.in/ini.v1"

	"github.com/efgnet/wifisync/pkg/errors"
)

// FromLegacyINI reads the INI file the original automation scripts were
// configured with (efg_automation.ini) and maps its sections onto a Config.
// Unknown sections and keys are ignored.
func FromLegacyINI(path string) (*Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return nil, errors.NewConfigError("", "reading legacy INI "+path, err)
	}

	cfg := &Config{
		Controller: Controller{Site: "default", InsecureSkipVerify: true},
		Mirror:     Mirror{Enabled: true, Path: "mac_addresses.txt"},
		Planner:    Planner{TokenFile: "o365_token.json"},
	}

	if s, err := file.GetSection("CloudKey"); err == nil {
		cfg.Controller.Host = s.Key("host").String()
		cfg.Controller.User = s.Key("user").String()
		cfg.Controller.Password = s.Key("password").String()
		cfg.Controller.DefaultNetwork = s.Key("default_wifi_name").String()
	}

	if s, err := file.GetSection("O365_Planner"); err == nil {
		cfg.Planner.Tenant = s.Key("tenant").String()
		cfg.Planner.PlanID = s.Key("wifi_automation_plan_id").String()
	}

	if s, err := file.GetSection("MSTeams_Notifications"); err == nil {
		cfg.Notifications.Webhook = s.Key("msteams_webhook").String()
		cfg.Notifications.CardInfo = s.Key("msteams_adaptive_card_info").String()
		cfg.Notifications.CardWarning = s.Key("msteams_adaptive_card_warning").String()
		cfg.Notifications.CardError = s.Key("msteams_adaptive_card_error").String()
	}

	if s, err := file.GetSection("EFGAutomation"); err == nil {
		cfg.Notifications.SendStatus = s.Key("send_msteams_status_messages").MustBool(true)
		cfg.Notifications.SendErrors = s.Key("send_msteams_error_messages").MustBool(true)
	} else {
		cfg.Notifications.SendStatus = true
		cfg.Notifications.SendErrors = true
	}

	return cfg, nil
}

// WriteYAML renders the configuration as YAML to the given path.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.NewConfigError("", "encoding config", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
