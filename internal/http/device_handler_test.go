package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/allisson/rewardsync/internal/config"
	"github.com/allisson/rewardsync/internal/connectivity"
	"github.com/allisson/rewardsync/internal/identity"
	"github.com/allisson/rewardsync/internal/notification"
	paymentHTTP "github.com/allisson/rewardsync/internal/payment/http"
	paymentMocks "github.com/allisson/rewardsync/internal/payment/usecase/mocks"
	queueHTTP "github.com/allisson/rewardsync/internal/queue/http"
	queueMocks "github.com/allisson/rewardsync/internal/queue/http/mocks"
	rewardsHTTP "github.com/allisson/rewardsync/internal/rewards/http"
	rewardsMocks "github.com/allisson/rewardsync/internal/rewards/usecase/mocks"
	subscriptionDomain "github.com/allisson/rewardsync/internal/subscription/domain"
	subscriptionHTTP "github.com/allisson/rewardsync/internal/subscription/http"
	subscriptionMocks "github.com/allisson/rewardsync/internal/subscription/usecase/mocks"
)

type routerFixture struct {
	router        http.Handler
	signal        *connectivity.Signal
	session       *identity.Session
	feed          *notification.Feed
	subscriptions *subscriptionMocks.MockStatusUseCase
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &routerFixture{
		signal:        connectivity.NewSignal(false),
		session:       identity.NewSession("user-1"),
		feed:          notification.NewFeed(10, logger),
		subscriptions: &subscriptionMocks.MockStatusUseCase{},
	}

	server := NewServer(nil, "localhost", 8080, logger)
	server.SetupRouter(
		&config.Config{LogLevel: "info"},
		queueHTTP.NewQueueHandler(&queueMocks.MockEnqueueUseCase{}, &queueMocks.MockQueueRunner{}, logger),
		rewardsHTTP.NewRewardsHandler(
			&rewardsMocks.MockSessionUseCase{},
			&rewardsMocks.MockWalletUseCase{},
			f.session,
			logger,
		),
		paymentHTTP.NewPaymentHandler(&paymentMocks.MockPaymentUseCase{}, logger),
		subscriptionHTTP.NewSubscriptionHandler(f.subscriptions, f.session, logger),
		NewDeviceHandler(f.signal, f.session, f.feed, logger),
		nil,
	)
	gin.SetMode(gin.TestMode)
	f.router = server.GetHandler()
	return f
}

func (f *routerFixture) do(method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	f.router.ServeHTTP(w, req)
	return w
}

func TestDeviceHandler_Connectivity(t *testing.T) {
	f := newRouterFixture(t)

	var transitions []bool
	unsubscribe := f.signal.Subscribe(func(online bool) { transitions = append(transitions, online) })
	defer unsubscribe()

	w := f.do(http.MethodPut, "/v1/connectivity", `{"online":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"online":true,"changed":true}`, w.Body.String())

	w = f.do(http.MethodPut, "/v1/connectivity", `{"online":true}`)
	assert.JSONEq(t, `{"online":true,"changed":false}`, w.Body.String())

	w = f.do(http.MethodGet, "/v1/connectivity", "")
	assert.JSONEq(t, `{"online":true}`, w.Body.String())

	assert.Equal(t, []bool{true}, transitions)

	w = f.do(http.MethodPut, "/v1/connectivity", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeviceHandler_Identity(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodPut, "/v1/identity", `{"user_id":"user-2"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":"user-2","previous_user_id":"user-1"}`, w.Body.String())
	assert.Equal(t, "user-2", f.session.CurrentUserID())

	w = f.do(http.MethodPut, "/v1/identity", `{"user_id":"bad id"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = f.do(http.MethodDelete, "/v1/identity", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, f.session.CurrentUserID())

	w = f.do(http.MethodGet, "/v1/identity", "")
	assert.JSONEq(t, `{"user_id":""}`, w.Body.String())
}

func TestDeviceHandler_Notifications(t *testing.T) {
	f := newRouterFixture(t)
	f.feed.Notify(context.Background(), "Your answer was synced", notification.SeveritySuccess)

	w := f.do(http.MethodGet, "/v1/notifications?peek=true", "")
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Data []notification.Notification `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.Data, 1)
	assert.Equal(t, "Your answer was synced", response.Data[0].Message)

	w = f.do(http.MethodGet, "/v1/notifications", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Data, 1)

	w = f.do(http.MethodGet, "/v1/notifications", "")
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestRouter_SubscriptionRoute(t *testing.T) {
	f := newRouterFixture(t)
	f.subscriptions.On("Get", mock.Anything, "user-1").
		Return(&subscriptionDomain.UnifiedStatus{Source: subscriptionDomain.SourceNone}, nil).Once()

	w := f.do(http.MethodGet, "/v1/subscription", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"NONE"`)
	f.subscriptions.AssertExpectations(t)
}

func TestRouter_RequestID(t *testing.T) {
	f := newRouterFixture(t)

	w := f.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
