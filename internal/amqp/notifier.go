package amqp

import (
	"context"
	"log/slog"
)

// RefreshNotifier adapts the publisher to the fire-and-forget trigger
// contract: delivery failures are logged and swallowed, never surfaced to
// the expense write path.
type RefreshNotifier struct {
	client *Client
}

func NewRefreshNotifier(client *Client) *RefreshNotifier {
	return &RefreshNotifier{client: client}
}

func (n *RefreshNotifier) NotifySummaryRefresh(ctx context.Context, userID string, year, month int) {
	if err := n.client.PublishSummaryRefresh(ctx, userID, year, month); err != nil {
		slog.WarnContext(ctx, "Summary refresh trigger dropped",
			"user_id", userID,
			"year", year,
			"month", month,
			"error", err)
	}
}

func (n *RefreshNotifier) Close() error {
	return n.client.Close()
}
