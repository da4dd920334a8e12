package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/rewardsync/internal/errors"
	paymentDomain "github.com/allisson/rewardsync/internal/payment/domain"
	"github.com/allisson/rewardsync/internal/payment/http/dto"
	"github.com/allisson/rewardsync/internal/payment/usecase/mocks"
)

func setupTestHandler(t *testing.T) (*PaymentHandler, *mocks.MockPaymentUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	useCase := &mocks.MockPaymentUseCase{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	t.Cleanup(func() { useCase.AssertExpectations(t) })

	return NewPaymentHandler(useCase, logger), useCase
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

func TestPaymentHandler_InitiateHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, useCase := setupTestHandler(t)

		now := time.Now().UTC()
		useCase.On("Initiate", mock.Anything, &paymentDomain.InitiateInput{
			Amount: 1000,
			Method: paymentDomain.MethodMobileMoney,
			MSISDN: "+255712345678",
			PlanID: "monthly",
		}).Return(&paymentDomain.Attempt{
			PaymentID: "pay-1",
			State:     paymentDomain.StatePending,
			Amount:    1000,
			Method:    paymentDomain.MethodMobileMoney,
			MSISDN:    "+255712345678",
			PlanID:    "monthly",
			StartedAt: now,
			ExpiresAt: now.Add(5 * time.Minute),
		}, nil).Once()

		c, w := createTestContext(http.MethodPost, "/v1/payments", dto.InitiatePaymentRequest{
			Amount: 1000,
			Method: "MOBILE_MONEY",
			MSISDN: "+255712345678",
			PlanID: "monthly",
		})
		handler.InitiateHandler(c)

		assert.Equal(t, http.StatusAccepted, w.Code)

		var response dto.AttemptResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "pay-1", response.PaymentID)
		assert.Equal(t, "PENDING", response.State)
		assert.Equal(t, "+*********678", response.MSISDN)
	})

	t.Run("AlreadyPending", func(t *testing.T) {
		handler, useCase := setupTestHandler(t)

		useCase.On("Initiate", mock.Anything, mock.Anything).Return(nil, paymentDomain.ErrPaymentInProgress).Once()

		c, w := createTestContext(http.MethodPost, "/v1/payments", dto.InitiatePaymentRequest{Amount: 1})
		handler.InitiateHandler(c)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("BackendDown", func(t *testing.T) {
		handler, useCase := setupTestHandler(t)

		useCase.On("Initiate", mock.Anything, mock.Anything).
			Return(nil, apperrors.Wrap(apperrors.ErrUnavailable, "dial tcp")).Once()

		c, w := createTestContext(http.MethodPost, "/v1/payments", dto.InitiatePaymentRequest{Amount: 1})
		handler.InitiateHandler(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestPaymentHandler_GetHandler(t *testing.T) {
	handler, useCase := setupTestHandler(t)

	useCase.On("Get", mock.Anything, "missing").Return(nil, paymentDomain.ErrPaymentNotFound).Once()

	c, w := createTestContext(http.MethodGet, "/v1/payments/missing", nil)
	c.Params = gin.Params{{Key: "id", Value: "missing"}}
	handler.GetHandler(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPaymentHandler_RefreshHandler(t *testing.T) {
	handler, useCase := setupTestHandler(t)

	useCase.On("Refresh", mock.Anything, "pay-1").
		Return(&paymentDomain.StatusResult{State: paymentDomain.StateSuccessful}, nil).Once()

	c, w := createTestContext(http.MethodPost, "/v1/payments/pay-1/refresh", nil)
	c.Params = gin.Params{{Key: "id", Value: "pay-1"}}
	handler.RefreshHandler(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"state":"SUCCESSFUL"}`, w.Body.String())
}
