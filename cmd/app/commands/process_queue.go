package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/rewardsync/internal/notification"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
)

// QueueRunner runs queue processors to completion.
type QueueRunner interface {
	Run(ctx context.Context, kind queueDomain.Kind) error
	RunAll(ctx context.Context) error
}

// IdentitySwitcher sets the authenticated identity of the device.
type IdentitySwitcher interface {
	Switch(userID string) string
}

// NotificationDrainer hands over buffered notifications.
type NotificationDrainer interface {
	Drain() []notification.Notification
}

// RunProcessQueue signs userID in, runs the processors selected by kind once and prints
// the notifications they produced. Mutations owned by other users are purged by the run.
func RunProcessQueue(
	ctx context.Context,
	runner QueueRunner,
	identity IdentitySwitcher,
	feed NotificationDrainer,
	logger *slog.Logger,
	writer io.Writer,
	kind string,
	userID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("user must not be empty")
	}

	var kinds []queueDomain.Kind
	if kind != "all" {
		k, err := queueDomain.ParseKind(kind)
		if err != nil {
			return fmt.Errorf("invalid kind: %s (valid options: answer, upload, all)", kind)
		}
		kinds = append(kinds, k)
	}

	identity.Switch(userID)

	logger.Info("processing pending mutations",
		slog.String("kind", kind),
		slog.String("user_id", userID),
	)

	var err error
	if len(kinds) == 0 {
		err = runner.RunAll(ctx)
	} else {
		err = runner.Run(ctx, kinds[0])
	}
	if err != nil {
		return fmt.Errorf("failed to process queue: %w", err)
	}

	notifications := feed.Drain()
	if notifications == nil {
		notifications = []notification.Notification{}
	}

	if format == "json" {
		return writeJSON(writer, map[string]any{"notifications": notifications})
	}

	if len(notifications) == 0 {
		_, err = fmt.Fprintln(writer, "No pending mutations were settled")
		return err
	}
	for _, n := range notifications {
		if _, err := fmt.Fprintf(writer, "[%s] %s\n", n.Severity, n.Message); err != nil {
			return err
		}
	}
	return nil
}
