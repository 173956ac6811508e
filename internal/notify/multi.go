package notify

import (
	"context"
	"errors"
)

// Multi fans a notification out to the wrapped sinks. Every sink is
// attempted even when an earlier one fails; failures are collected so one
// broken channel never starves a sibling.
type Multi []Notifier

func (m Multi) Chat(ctx context.Context, webhookURL, text string) error {
	var errs []error
	for _, n := range m {
		if err := n.Chat(ctx, webhookURL, text); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Broadcast(ctx context.Context, subject, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Broadcast(ctx, subject, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
