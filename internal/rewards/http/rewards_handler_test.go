package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/rewardsync/internal/identity"
	rewardsDomain "github.com/allisson/rewardsync/internal/rewards/domain"
	"github.com/allisson/rewardsync/internal/rewards/http/dto"
	"github.com/allisson/rewardsync/internal/rewards/usecase/mocks"
)

type handlerFixture struct {
	handler  *RewardsHandler
	sessions *mocks.MockSessionUseCase
	wallets  *mocks.MockWalletUseCase
	session  *identity.Session
}

func setupTestHandler(t *testing.T) *handlerFixture {
	t.Helper()

	gin.SetMode(gin.TestMode)

	f := &handlerFixture{
		sessions: &mocks.MockSessionUseCase{},
		wallets:  &mocks.MockWalletUseCase{},
		session:  identity.NewSession("user-1"),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.handler = NewRewardsHandler(f.sessions, f.wallets, f.session, logger)

	t.Cleanup(func() {
		f.sessions.AssertExpectations(t)
		f.wallets.AssertExpectations(t)
	})
	return f
}

func createTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	c.Request = httptest.NewRequest(method, path, reader)
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestRewardsHandler_StartSessionHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupTestHandler(t)

		session := rewardsDomain.NewQuizSession("user-1", "quiz-1")
		f.sessions.On("Start", mock.Anything, "user-1", "quiz-1").Return(session, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions", dto.StartSessionRequest{QuizID: "quiz-1"})
		f.handler.StartSessionHandler(c)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response dto.SessionResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, session.ID.String(), response.ID)
		assert.Equal(t, "ACTIVE", response.Status)
	})

	t.Run("AlreadyActive", func(t *testing.T) {
		f := setupTestHandler(t)

		f.sessions.On("Start", mock.Anything, "user-1", "quiz-1").
			Return(nil, rewardsDomain.ErrSessionAlreadyActive).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions", dto.StartSessionRequest{QuizID: "quiz-1"})
		f.handler.StartSessionHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("MissingQuiz", func(t *testing.T) {
		f := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/sessions", dto.StartSessionRequest{})
		f.handler.StartSessionHandler(c)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("SignedOut", func(t *testing.T) {
		f := setupTestHandler(t)
		f.session.SignOut()

		c, w := createTestContext(http.MethodPost, "/v1/sessions", dto.StartSessionRequest{QuizID: "quiz-1"})
		f.handler.StartSessionHandler(c)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRewardsHandler_CompleteSessionHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupTestHandler(t)

		session := rewardsDomain.NewQuizSession("user-1", "quiz-1")
		session.Complete(session.StartedAt)
		f.sessions.On("Complete", mock.Anything, "user-1", session.ID).Return(session, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/sessions/"+session.ID.String()+"/complete", nil)
		c.Params = gin.Params{{Key: "id", Value: session.ID.String()}}
		f.handler.CompleteSessionHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"COMPLETED"`)
	})

	t.Run("InvalidID", func(t *testing.T) {
		f := setupTestHandler(t)

		c, w := createTestContext(http.MethodPost, "/v1/sessions/nope/complete", nil)
		c.Params = gin.Params{{Key: "id", Value: "nope"}}
		f.handler.CompleteSessionHandler(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRewardsHandler_GetSessionHandler(t *testing.T) {
	f := setupTestHandler(t)

	id := uuid.New()
	f.sessions.On("Get", mock.Anything, "user-1", id).Return(nil, rewardsDomain.ErrSessionNotFound).Once()

	c, w := createTestContext(http.MethodGet, "/v1/sessions/"+id.String(), nil)
	c.Params = gin.Params{{Key: "id", Value: id.String()}}
	f.handler.GetSessionHandler(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRewardsHandler_WalletHandler(t *testing.T) {
	f := setupTestHandler(t)

	f.wallets.On("Balance", mock.Anything, "user-1").
		Return(&rewardsDomain.Wallet{UserID: "user-1", Balance: 120}, nil).Once()

	c, w := createTestContext(http.MethodGet, "/v1/wallet", nil)
	f.handler.WalletHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response dto.WalletResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, int64(120), response.Balance)
}

func TestRewardsHandler_HistoryHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		f := setupTestHandler(t)

		entry := &rewardsDomain.HistoryEntry{
			ID:         uuid.New(),
			UserID:     "user-1",
			MutationID: uuid.New(),
			Kind:       "ANSWER_SUBMISSION",
			Outcome:    rewardsDomain.OutcomeCorrect,
			Points:     10,
		}
		f.wallets.On("History", mock.Anything, "user-1", rewardsDomain.HistoryQuery{Limit: 10}).
			Return([]*rewardsDomain.HistoryEntry{entry}, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/history?limit=10", nil)
		f.handler.HistoryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)

		var response dto.ListHistoryResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 1)
		assert.Equal(t, "CORRECT", response.Data[0].Outcome)
	})

	t.Run("DefaultsToOneScreenNewestFirst", func(t *testing.T) {
		f := setupTestHandler(t)

		f.wallets.On("History", mock.Anything, "user-1", rewardsDomain.HistoryQuery{Limit: 20}).
			Return([]*rewardsDomain.HistoryEntry{}, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/history", nil)
		f.handler.HistoryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("OldestFirst", func(t *testing.T) {
		f := setupTestHandler(t)

		f.wallets.On("History", mock.Anything, "user-1",
			rewardsDomain.HistoryQuery{Offset: 40, Limit: 20, OldestFirst: true}).
			Return([]*rewardsDomain.HistoryEntry{}, nil).Once()

		c, w := createTestContext(http.MethodGet, "/v1/history?offset=40&order=oldest", nil)
		f.handler.HistoryHandler(c)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	for _, query := range []string{"limit=1000", "limit=0", "offset=-1", "order=random", "offset=abc"} {
		t.Run("Rejects "+query, func(t *testing.T) {
			f := setupTestHandler(t)

			c, w := createTestContext(http.MethodGet, "/v1/history?"+query, nil)
			f.handler.HistoryHandler(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
