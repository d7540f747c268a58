// Package teams delivers notifications to a Microsoft Teams channel
// through an incoming webhook. Each severity has its own adaptive-card
// JSON template with a __MESSAGE__ placeholder; the message text is
// JSON-escaped and substituted before posting.
package teams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/efgnet/wifisync/pkg/errors"
	"github.com/efgnet/wifisync/pkg/logging"
	"github.com/efgnet/wifisync/pkg/notify"
)

// placeholder is replaced with the escaped message text in card templates.
const placeholder = "__MESSAGE__"

// DefaultTimeout bounds the webhook POST.
const DefaultTimeout = 15 * time.Second

// Default card templates, used when the configuration does not override
// them.
const (
	defaultCardInfo = `{"@type": "MessageCard", "@context": "http://schema.org/extensions", "themeColor": "2EB886", "title": "WiFi Automation", "text": "__MESSAGE__"}`

	defaultCardWarning = `{"@type": "MessageCard", "@context": "http://schema.org/extensions", "themeColor": "DAA038", "title": "WiFi Automation Warning", "text": "__MESSAGE__"}`

	defaultCardError = `{"@type": "MessageCard", "@context": "http://schema.org/extensions", "themeColor": "A30200", "title": "WiFi Automation Error", "text": "__MESSAGE__"}`
)

// Config holds the webhook settings.
type Config struct {
	// Webhook is the Teams incoming-webhook URL
	Webhook string
	// CardInfo, CardWarning and CardError override the built-in card
	// templates per severity
	CardInfo    string
	CardWarning string
	CardError   string
}

// Notifier posts messages to a Teams webhook. It implements
// notify.Notifier.
type Notifier struct {
	cfg  Config
	http *http.Client
}

// New creates a Teams notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.Webhook == "" {
		return nil, errors.NewConfigError("notifications.webhook", "cannot be empty", nil)
	}
	return &Notifier{
		cfg:  cfg,
		http: &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// Send posts one message with the card template matching the severity.
func (n *Notifier) Send(ctx context.Context, severity notify.Severity, message string) error {
	payload, err := n.render(severity, message)
	if err != nil {
		return &errors.NotificationError{Sink: "teams", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.Webhook, strings.NewReader(payload))
	if err != nil {
		return &errors.NotificationError{Sink: "teams", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.http.Do(req)
	if err != nil {
		return &errors.NotificationError{Sink: "teams", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		return &errors.NotificationError{
			Sink: "teams",
			Err:  fmt.Errorf("webhook returned %s: %s", resp.Status, strings.TrimSpace(string(body))),
		}
	}

	logging.FromContext(ctx).Debug().
		Str("severity", string(severity)).
		Msg("teams notification delivered")
	return nil
}

// render substitutes the escaped message into the severity's template.
func (n *Notifier) render(severity notify.Severity, message string) (string, error) {
	template := n.template(severity)
	if template == "" {
		return "", fmt.Errorf("no card template for severity %q", severity)
	}

	// json.Marshal produces a quoted, escaped JSON string; strip the
	// surrounding quotes before substituting into the template.
	escaped, err := json.Marshal(message)
	if err != nil {
		return "", err
	}
	text := string(bytes.Trim(escaped, `"`))

	return strings.ReplaceAll(template, placeholder, text), nil
}

func (n *Notifier) template(severity notify.Severity) string {
	pick := func(override, fallback string) string {
		if override != "" {
			return override
		}
		return fallback
	}

	switch severity {
	case notify.Info:
		return pick(n.cfg.CardInfo, defaultCardInfo)
	case notify.Warning:
		return pick(n.cfg.CardWarning, defaultCardWarning)
	case notify.Error:
		return pick(n.cfg.CardError, defaultCardError)
	default:
		return ""
	}
}
