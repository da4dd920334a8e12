package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
	"github.com/allisson/rewardsync/internal/queue/http/dto"
)

// QueueReader returns the pending mutations of one kind in FIFO order.
type QueueReader interface {
	GetAll(ctx context.Context, kind queueDomain.Kind) ([]*queueDomain.PendingMutation, error)
}

// RunListQueue prints every pending mutation of kind, whoever owns it.
func RunListQueue(
	ctx context.Context,
	store QueueReader,
	logger *slog.Logger,
	writer io.Writer,
	kind string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	k, err := queueDomain.ParseKind(kind)
	if err != nil {
		return fmt.Errorf("invalid kind: %s (valid options: answer, upload)", kind)
	}

	mutations, err := store.GetAll(ctx, k)
	if err != nil {
		return fmt.Errorf("failed to list pending mutations: %w", err)
	}

	logger.Debug("listed pending mutations", slog.String("kind", string(k)), slog.Int("count", len(mutations)))

	if format == "json" {
		type item struct {
			dto.PendingMutationResponse
			OwnerUserID string `json:"owner_user_id"`
		}
		items := make([]item, 0, len(mutations))
		for _, m := range mutations {
			items = append(items, item{
				PendingMutationResponse: dto.MapPendingMutationToResponse(m),
				OwnerUserID:             m.OwnerUserID,
			})
		}
		return writeJSON(writer, map[string]any{"data": items})
	}

	if len(mutations) == 0 {
		_, err := fmt.Fprintf(writer, "No pending %s mutations\n", k.Label())
		return err
	}

	tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tOWNER\tRETRIES\tCREATED AT\tLAST ERROR") //nolint:errcheck
	for _, m := range mutations {
		lastError := "-"
		if m.LastError != nil {
			lastError = *m.LastError
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", //nolint:errcheck
			m.ID, m.OwnerUserID, m.RetryCount, m.CreatedAt.Format(time.RFC3339), lastError)
	}
	return tw.Flush()
}
