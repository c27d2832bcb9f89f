package jobs

import (
	"context"
	"log/slog"
)

// QueueNotifier adapts the Asynq client to the ledger notifier interface.
// Delivery runs in the background worker; enqueue failures are logged and
// never surface into the mutating request.
type QueueNotifier struct {
	client *Client
	logger *slog.Logger
}

// NewQueueNotifier builds QueueNotifier instance.
func NewQueueNotifier(client *Client, logger *slog.Logger) *QueueNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueNotifier{client: client, logger: logger}
}

// Notify enqueues a notification dispatch task.
func (n *QueueNotifier) Notify(ctx context.Context, event, organizerID, detail string) {
	if n == nil || n.client == nil {
		return
	}
	_, err := n.client.EnqueueNotify(ctx, NotifyPayload{
		Event:       event,
		OrganizerID: organizerID,
		Detail:      detail,
	})
	if err != nil {
		n.logger.Warn("enqueue notification",
			slog.Any("error", err),
			slog.String("event", event),
			slog.String("organizer", organizerID))
	}
}
