package server

import (
	"context"
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/notifications"
)

// publishEvent announces a change to live feed clients. With Redis the event goes through
// the pub/sub channel, whose subscriber relays it to this instance's hub as well. Without
// Redis it is broadcast to the local hub directly. Failures are logged and never fail the
// request that caused them.
func (s *Server) publishEvent(ctx context.Context, eventType string, payload interface{}) {
	message, err := notifications.Encode(eventType, payload)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to encode event",
			slog.String("event", eventType),
			slog.String("error", err.Error()),
		)
		return
	}

	if s.notifier.Enabled() {
		if err := s.notifier.Publish(ctx, message); err != nil {
			middleware.Logger.WarnContext(ctx, "Failed to publish event",
				slog.String("event", eventType),
				slog.String("error", err.Error()),
			)
		}
		return
	}

	if s.hub != nil {
		s.hub.BroadcastAll(message)
	}
}
