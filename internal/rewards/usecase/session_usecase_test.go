package usecase

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
)

func TestSessionUseCase(t *testing.T) {
	f := newRewardsFixture(t)
	ctx := context.Background()

	t.Run("start rejects a second active session", func(t *testing.T) {
		s, err := f.sessionU.Start(ctx, "user-1", "quiz-a")
		require.NoError(t, err)
		assert.True(t, s.IsActive())

		_, err = f.sessionU.Start(ctx, "user-1", "quiz-a")
		assert.ErrorIs(t, err, rewardsDomain.ErrSessionAlreadyActive)

		_, err = f.sessionU.Start(ctx, "user-2", "quiz-a")
		assert.NoError(t, err)
	})

	t.Run("complete once", func(t *testing.T) {
		s, err := f.sessionU.Start(ctx, "user-1", "quiz-b")
		require.NoError(t, err)

		done, err := f.sessionU.Complete(ctx, "user-1", s.ID)
		require.NoError(t, err)
		assert.Equal(t, rewardsDomain.SessionCompleted, done.Status)

		_, err = f.sessionU.Complete(ctx, "user-1", s.ID)
		assert.ErrorIs(t, err, rewardsDomain.ErrSessionNotActive)

		_, err = f.sessionU.Start(ctx, "user-1", "quiz-b")
		assert.NoError(t, err)
	})

	t.Run("sessions of other users are hidden", func(t *testing.T) {
		s, err := f.sessionU.Start(ctx, "user-1", "quiz-c")
		require.NoError(t, err)

		_, err = f.sessionU.Get(ctx, "user-2", s.ID)
		assert.ErrorIs(t, err, rewardsDomain.ErrSessionNotFound)

		_, err = f.sessionU.Complete(ctx, "user-2", s.ID)
		assert.ErrorIs(t, err, rewardsDomain.ErrSessionNotFound)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, err := f.sessionU.Get(ctx, "user-1", uuid.Must(uuid.NewV7()))
		assert.ErrorIs(t, err, rewardsDomain.ErrSessionNotFound)
	})
}

func TestWalletUseCase_BalanceWithoutCredits(t *testing.T) {
	f := newRewardsFixture(t)

	wallet, err := f.walletU.Balance(context.Background(), "user-9")
	require.NoError(t, err)
	assert.Equal(t, "user-9", wallet.UserID)
	assert.Equal(t, int64(0), wallet.Balance)
}
