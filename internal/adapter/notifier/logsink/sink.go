// Package logsink is a Notification Sink that only writes messages to the
// log. It is used when no webhook is configured.
package logsink

import (
	"context"
	"log/slog"
)

// Sink logs every delivered message at INFO.
type Sink struct {
	log *slog.Logger
}

// New creates a log-only sink.
func New(logger *slog.Logger) *Sink {
	return &Sink{log: logger.With("adapter", "logsink")}
}

// Deliver always succeeds.
func (s *Sink) Deliver(ctx context.Context, userID, message string) error {
	s.log.InfoContext(ctx, "notification",
		slog.String("user_id", userID),
		slog.String("message", message),
	)
	return nil
}
