// Package notify defines the notification sink contract. Delivery is
// best-effort everywhere: a failed notification never changes a task
// outcome that has already been computed.
package notify

import "context"

// Severity classifies a notification message.
type Severity string

const (
	// Info is a routine status message.
	Info Severity = "info"
	// Warning flags a degraded but non-fatal condition.
	Warning Severity = "warning"
	// Error reports a failure that needs operator attention.
	Error Severity = "error"
)

// Notifier delivers a message to an operator-facing channel.
type Notifier interface {
	Send(ctx context.Context, severity Severity, message string) error
}

// Nop is a Notifier that discards all messages. Used when notifications
// are disabled in configuration.
type Nop struct{}

// Send implements the Notifier interface for Nop.
func (Nop) Send(context.Context, Severity, string) error {
	return nil
}

// Gate forwards messages to Next, dropping the severities the operator
// has turned off. Status covers Info; Errors covers Warning and Error.
type Gate struct {
	Next   Notifier
	Status bool
	Errors bool
}

// Send implements the Notifier interface for Gate.
func (g *Gate) Send(ctx context.Context, severity Severity, message string) error {
	switch severity {
	case Info:
		if !g.Status {
			return nil
		}
	case Warning, Error:
		if !g.Errors {
			return nil
		}
	}
	return g.Next.Send(ctx, severity, message)
}
