package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/rewardsync/internal/database"
	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
	"github.com/allisson/rewardsync/internal/testutil"
)

func newHistoryEntry(userID string, at time.Time) *rewardsDomain.HistoryEntry {
	return &rewardsDomain.HistoryEntry{
		ID:          uuid.Must(uuid.NewV7()),
		UserID:      userID,
		MutationID:  uuid.Must(uuid.NewV7()),
		Kind:        "ANSWER_SUBMISSION",
		ReferenceID: "quiz-1/question-1",
		Outcome:     rewardsDomain.OutcomeCorrect,
		Points:      10,
		RecordedAt:  at,
	}
}

func TestMySQLHistoryRepository(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewMySQLHistoryRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := newHistoryEntry("user-1", base)
	newer := newHistoryEntry("user-1", base.Add(time.Minute))
	other := newHistoryEntry("user-2", base)

	for _, e := range []*rewardsDomain.HistoryEntry{older, newer, other} {
		require.NoError(t, repo.Create(ctx, e))
	}

	t.Run("exists by mutation id", func(t *testing.T) {
		exists, err := repo.ExistsByMutationID(ctx, older.MutationID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByMutationID(ctx, uuid.Must(uuid.NewV7()))
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("duplicate mutation id is rejected", func(t *testing.T) {
		dup := newHistoryEntry("user-1", base)
		dup.MutationID = older.MutationID
		assert.Error(t, repo.Create(ctx, dup))
	})

	t.Run("list by user newest first", func(t *testing.T) {
		entries, err := repo.ListByUser(ctx, "user-1", rewardsDomain.HistoryQuery{Limit: 10})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, newer.ID, entries[0].ID)
		assert.Equal(t, older.ID, entries[1].ID)
		assert.Equal(t, older.MutationID, entries[1].MutationID)
		assert.Equal(t, rewardsDomain.OutcomeCorrect, entries[1].Outcome)

		page, err := repo.ListByUser(ctx, "user-1", rewardsDomain.HistoryQuery{Offset: 1, Limit: 10})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, older.ID, page[0].ID)
	})

	t.Run("list by user oldest first", func(t *testing.T) {
		entries, err := repo.ListByUser(ctx, "user-1", rewardsDomain.HistoryQuery{Limit: 1, OldestFirst: true})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, older.ID, entries[0].ID)
	})
}

func TestMySQLSessionRepository(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewMySQLSessionRepository(db)
	ctx := context.Background()

	s := rewardsDomain.NewQuizSession("user-1", "quiz-1")
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, rewardsDomain.SessionActive, got.Status)
	assert.Nil(t, got.CompletedAt)

	active, err := repo.GetActiveByQuiz(ctx, "user-1", "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, s.ID, active.ID)

	mutationID := uuid.Must(uuid.NewV7())
	has, err := repo.HasAnswer(ctx, s.ID, mutationID)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, repo.RecordAnswer(ctx, s.ID, mutationID, time.Now().UTC()))
	has, err = repo.HasAnswer(ctx, s.ID, mutationID)
	require.NoError(t, err)
	assert.True(t, has)

	s.Apply(true, 5)
	s.Complete(time.Now().UTC())
	require.NoError(t, repo.Update(ctx, s))

	got, err = repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, rewardsDomain.SessionCompleted, got.Status)
	assert.Equal(t, 1, got.AnsweredCount)
	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, int64(5), got.Points)
	assert.NotNil(t, got.CompletedAt)

	_, err = repo.GetActiveByQuiz(ctx, "user-1", "quiz-1")
	assert.ErrorIs(t, err, rewardsDomain.ErrSessionNotFound)

	_, err = repo.Get(ctx, uuid.Must(uuid.NewV7()))
	assert.ErrorIs(t, err, rewardsDomain.ErrSessionNotFound)
}

func TestMySQLWalletRepository(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := NewMySQLWalletRepository(db)
	txManager := database.NewTxManager(db)
	ctx := context.Background()

	_, err := repo.Get(ctx, "user-1")
	assert.ErrorIs(t, err, rewardsDomain.ErrWalletNotFound)

	first := uuid.Must(uuid.NewV7())
	second := uuid.Must(uuid.NewV7())

	for _, c := range []struct {
		id     uuid.UUID
		amount int64
	}{{first, 10}, {second, 15}} {
		err := txManager.WithTx(ctx, func(ctx context.Context) error {
			return repo.Credit(ctx, "user-1", c.id, c.amount, time.Now().UTC())
		})
		require.NoError(t, err)
	}

	w, err := repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(25), w.Balance)

	has, err := repo.HasCredit(ctx, first)
	require.NoError(t, err)
	assert.True(t, has)

	// A second credit for the same mutation violates the primary key and leaves the balance alone.
	err = txManager.WithTx(ctx, func(ctx context.Context) error {
		return repo.Credit(ctx, "user-1", first, 10, time.Now().UTC())
	})
	assert.Error(t, err)

	w, err = repo.Get(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(25), w.Balance)
}
