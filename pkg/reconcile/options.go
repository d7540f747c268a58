package reconcile

import "github.com/efgnet/wifisync/pkg/notify"

// Option configures an Engine.
type Option func(*Engine)

// WithMirror enables mirror-file maintenance. Without it tasks only touch
// the controller.
func WithMirror(m Mirror) Option {
	return func(e *Engine) { e.mirror = m }
}

// WithNotifier sets the notification sink for run summaries. The default
// discards notifications.
func WithNotifier(n notify.Notifier) Option {
	return func(e *Engine) {
		if n != nil {
			e.notifier = n
		}
	}
}
