// Package notify carries workflow notifications over side channels. Every
// channel is best-effort: the workflow engine reports outcomes through these
// sinks but never depends on them, so failures are logged and swallowed by
// the caller rather than propagated.
package notify

import "context"

// Notifier dispatches a workflow notification to the configured channels.
type Notifier interface {
	// Chat posts text to the given per-user webhook URL. Empty webhookURL is
	// a no-op.
	Chat(ctx context.Context, webhookURL, text string) error

	// Broadcast publishes a subject/message pair to the shared broadcast
	// topic. A Notifier with no topic configured treats this as a no-op.
	Broadcast(ctx context.Context, subject, message string) error
}

// Noop discards every notification. Used when no channels are configured and
// as a base for tests.
type Noop struct{}

func (Noop) Chat(ctx context.Context, webhookURL, text string) error      { return nil }
func (Noop) Broadcast(ctx context.Context, subject, message string) error { return nil }
