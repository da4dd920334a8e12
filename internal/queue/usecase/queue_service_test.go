package usecase

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoService "github.com/allisson/rewardsync/internal/crypto/service"
	queueDomain "github.com/allisson/rewardsync/internal/queue/domain"
	"github.com/allisson/rewardsync/internal/queue/repository"
	"github.com/allisson/rewardsync/internal/testutil"
)

func newKeeperCipher(t *testing.T) *cryptoService.KeeperCipher {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)

	keeper, err := cryptoService.NewKeeperOpener().
		Open(context.Background(), "base64key://"+base64.URLEncoding.EncodeToString(key))
	require.NoError(t, err)
	t.Cleanup(func() { _ = keeper.Close() })
	return cryptoService.NewKeeperCipher(keeper)
}

func TestQueueService_EncryptsPayloadAtRest(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := repository.NewMySQLPendingMutationRepository(db)
	store := NewQueueService(repo, newKeeperCipher(t), discardLogger())
	ctx := context.Background()

	payload := []byte(`{"quiz_id":"q1","selected_option":"C"}`)
	m := queueDomain.NewPendingMutation(queueDomain.KindAnswerSubmission, "user-1", payload)
	require.NoError(t, store.Put(ctx, m))

	raw, err := repo.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.NotEqual(t, payload, raw.Payload)

	all, err := store.GetAll(ctx, queueDomain.KindAnswerSubmission)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, payload, all[0].Payload)

	// The caller's copy keeps its plaintext payload.
	assert.Equal(t, payload, m.Payload)
}

func TestQueueService_SkipsUnreadablePayloads(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	repo := repository.NewMySQLPendingMutationRepository(db)
	ctx := context.Background()

	writer := NewQueueService(repo, newKeeperCipher(t), discardLogger())
	reader := NewQueueService(repo, newKeeperCipher(t), discardLogger())

	m := queueDomain.NewPendingMutation(queueDomain.KindMediaUpload, "user-1", []byte(`{}`))
	require.NoError(t, writer.Put(ctx, m))

	all, err := reader.GetAll(ctx, queueDomain.KindMediaUpload)
	require.NoError(t, err)
	assert.Empty(t, all)

	// The record is still there for a correctly configured reader.
	_, err = repo.Get(ctx, m.ID)
	assert.NoError(t, err)
}

func TestQueueService_Subscribe(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	store := NewQueueService(repository.NewMySQLPendingMutationRepository(db), cryptoService.PlaintextCipher{}, discardLogger())
	ctx := context.Background()

	var events []StoreEvent
	unsubscribe := store.Subscribe(func(event StoreEvent) {
		events = append(events, event)
	})

	m := queueDomain.NewPendingMutation(queueDomain.KindAnswerSubmission, "user-1", []byte(`{}`))
	require.NoError(t, store.Put(ctx, m))
	m.RecordAttempt()
	require.NoError(t, store.Save(ctx, m))
	require.NoError(t, store.Remove(ctx, m))

	require.Len(t, events, 2)
	assert.Equal(t, StoreOpPut, events[0].Op)
	assert.Equal(t, m.ID, events[0].Mutation.ID)
	assert.Equal(t, StoreOpRemove, events[1].Op)

	unsubscribe()
	require.NoError(t, store.Put(ctx, queueDomain.NewPendingMutation(queueDomain.KindAnswerSubmission, "user-1", []byte(`{}`))))
	assert.Len(t, events, 2)
}

func TestQueueService_PurgeOwner(t *testing.T) {
	db := testutil.SetupSQLiteDB(t)
	store := NewQueueService(repository.NewMySQLPendingMutationRepository(db), cryptoService.PlaintextCipher{}, discardLogger())
	ctx := context.Background()

	for _, owner := range []string{"user-1", "user-2", "user-1"} {
		require.NoError(t, store.Put(ctx, queueDomain.NewPendingMutation(queueDomain.KindMediaUpload, owner, []byte(`{}`))))
	}

	n, err := store.PurgeOwner(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	all, err := store.GetAll(ctx, queueDomain.KindMediaUpload)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "user-2", all[0].OwnerUserID)
}
