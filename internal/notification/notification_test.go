package notification

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeed(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	t.Run("notify and drain", func(t *testing.T) {
		feed := NewFeed(10, logger)
		feed.Notify(ctx, "Answer submitted", SeveritySuccess)
		feed.Notify(ctx, "Upload failed", SeverityError)

		assert.Equal(t, 1, feed.Count(SeveritySuccess))
		assert.Equal(t, 1, feed.Count(SeverityError))
		assert.Len(t, feed.Recent(), 2)

		items := feed.Drain()
		require.Len(t, items, 2)
		assert.Equal(t, "Answer submitted", items[0].Message)
		assert.Equal(t, SeverityError, items[1].Severity)
		assert.Empty(t, feed.Drain())
	})

	t.Run("oldest dropped when full", func(t *testing.T) {
		feed := NewFeed(2, nil)
		feed.Notify(ctx, "one", SeverityInfo)
		feed.Notify(ctx, "two", SeverityInfo)
		feed.Notify(ctx, "three", SeverityInfo)

		items := feed.Drain()
		require.Len(t, items, 2)
		assert.Equal(t, "two", items[0].Message)
		assert.Equal(t, "three", items[1].Message)
	})

	t.Run("default capacity", func(t *testing.T) {
		feed := NewFeed(0, nil)
		assert.Equal(t, 100, feed.capacity)
	})
}
