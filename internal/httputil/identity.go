package httputil

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/rewardsync/internal/errors"
	"github.com/allisson/rewardsync/internal/identity"
)

// RequireUserGin returns the signed-in user id. When nobody is signed in it writes a 401
// response and reports false.
func RequireUserGin(c *gin.Context, provider identity.Provider, logger *slog.Logger) (string, bool) {
	userID := provider.CurrentUserID()
	if userID == "" {
		HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
		return "", false
	}
	return userID, true
}
