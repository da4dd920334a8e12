package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// QueuePurger deletes the pending mutations of one owner.
type QueuePurger interface {
	PurgeOwner(ctx context.Context, ownerUserID string) (int64, error)
}

// RunPurgeQueue deletes every pending mutation created by userID.
func RunPurgeQueue(
	ctx context.Context,
	store QueuePurger,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}
	if userID == "" {
		return fmt.Errorf("user must not be empty")
	}

	count, err := store.PurgeOwner(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to purge pending mutations: %w", err)
	}

	logger.Info("purged pending mutations",
		slog.String("user_id", userID),
		slog.Int64("count", count),
	)

	if format == "json" {
		return writeJSON(writer, map[string]any{
			"user_id": userID,
			"count":   count,
		})
	}

	_, err = fmt.Fprintf(writer, "Successfully deleted %d pending mutation(s) of %s\n", count, userID)
	return err
}
