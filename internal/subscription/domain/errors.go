package domain

import (
	"github.com/allisson/rewardsync/internal/errors"
)

// ErrSourceUnavailable indicates a billing source could not be queried.
var ErrSourceUnavailable = errors.Wrap(errors.ErrUnavailable, "subscription source unavailable")
