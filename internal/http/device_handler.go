package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/allisson/rewardsync/internal/connectivity"
	"github.com/allisson/rewardsync/internal/httputil"
	"github.com/allisson/rewardsync/internal/identity"
	"github.com/allisson/rewardsync/internal/notification"
	customValidation "github.com/allisson/rewardsync/internal/validation"
)

// SetConnectivityRequest reports the OS connectivity state.
type SetConnectivityRequest struct {
	Online *bool `json:"online" binding:"required"`
}

// SwitchIdentityRequest signs a user in on the device.
type SwitchIdentityRequest struct {
	UserID string `json:"user_id"`
}

// Validate checks if the switch identity request is valid.
func (r *SwitchIdentityRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.NoWhitespace, validation.Length(1, 255)),
	)
}

// DeviceHandler exposes the device state the app shell owns: connectivity, the signed-in
// user and the notification feed.
type DeviceHandler struct {
	signal  *connectivity.Signal
	session *identity.Session
	feed    *notification.Feed
	logger  *slog.Logger
}

// NewDeviceHandler creates a new device handler.
func NewDeviceHandler(
	signal *connectivity.Signal,
	session *identity.Session,
	feed *notification.Feed,
	logger *slog.Logger,
) *DeviceHandler {
	return &DeviceHandler{
		signal:  signal,
		session: session,
		feed:    feed,
		logger:  logger,
	}
}

// GetConnectivityHandler returns the current connectivity state.
// GET /v1/connectivity
func (h *DeviceHandler) GetConnectivityHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"online": h.signal.IsOnline()})
}

// SetConnectivityHandler records a connectivity change. Going online drains the queues.
// PUT /v1/connectivity
func (h *DeviceHandler) SetConnectivityHandler(c *gin.Context) {
	var req SetConnectivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	changed := h.signal.Set(*req.Online)
	c.JSON(http.StatusOK, gin.H{"online": *req.Online, "changed": changed})
}

// GetIdentityHandler returns the signed-in user.
// GET /v1/identity
func (h *DeviceHandler) GetIdentityHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_id": h.session.CurrentUserID()})
}

// SwitchIdentityHandler signs a user in, replacing the previous one.
// PUT /v1/identity
func (h *DeviceHandler) SwitchIdentityHandler(c *gin.Context) {
	var req SwitchIdentityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	previous := h.session.Switch(req.UserID)
	c.JSON(http.StatusOK, gin.H{"user_id": req.UserID, "previous_user_id": previous})
}

// SignOutHandler clears the signed-in user.
// DELETE /v1/identity
func (h *DeviceHandler) SignOutHandler(c *gin.Context) {
	h.session.SignOut()
	c.Status(http.StatusNoContent)
}

// NotificationsHandler drains pending notifications. ?peek=true leaves them in place.
// GET /v1/notifications
func (h *DeviceHandler) NotificationsHandler(c *gin.Context) {
	var items []notification.Notification
	if c.Query("peek") == "true" {
		items = h.feed.Recent()
	} else {
		items = h.feed.Drain()
	}
	if items == nil {
		items = []notification.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}
