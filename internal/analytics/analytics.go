// Package analytics sends product events to PostHog.
//
// The Tracker is deliberately nil-safe and no-op-safe: when no PostHog key
// is configured (local development, tests), New returns an inert tracker
// and every Capture call is a cheap no-op. Handlers never branch on
// whether analytics is enabled.
package analytics

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// Tracker wraps a PostHog client. A zero/inert Tracker drops all events.
type Tracker struct {
	client posthog.Client
	logger *slog.Logger
}

// New creates a Tracker. With an empty apiKey it returns an inert tracker
// that drops every event.
func New(apiKey, endpoint string, logger *slog.Logger) *Tracker {
	if apiKey == "" {
		logger.Info("analytics disabled, no PostHog key configured")
		return &Tracker{logger: logger}
	}

	config := posthog.Config{}
	if endpoint != "" {
		config.Endpoint = endpoint
	}

	client, err := posthog.NewWithConfig(apiKey, config)
	if err != nil {
		// Analytics must never take the app down.
		logger.Error("failed to initialise PostHog, analytics disabled",
			slog.String("error", err.Error()))
		return &Tracker{logger: logger}
	}

	return &Tracker{client: client, logger: logger}
}

// Capture enqueues an event. distinctID is the user's internal ID, or
// "anonymous" for unauthenticated requests. Errors are logged, never
// returned: an analytics hiccup is not the caller's problem.
func (t *Tracker) Capture(distinctID, event string, properties map[string]any) {
	if t == nil || t.client == nil {
		return
	}

	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}

	if err := t.client.Enqueue(posthog.Capture{
		DistinctId: distinctID,
		Event:      event,
		Properties: props,
	}); err != nil {
		t.logger.Error("failed to enqueue analytics event",
			slog.String("event", event),
			slog.String("error", err.Error()))
	}
}

// Close flushes pending events. Call on shutdown.
func (t *Tracker) Close() {
	if t == nil || t.client == nil {
		return
	}
	if err := t.client.Close(); err != nil {
		t.logger.Error("failed to close analytics client", slog.String("error", err.Error()))
	}
}
