package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/rewardsync/internal/validation"
)

// Values accepted by the order query parameter.
const (
	OrderNewest = "newest"
	OrderOldest = "oldest"
)

// PageLimits bounds the page size of one list endpoint.
type PageLimits struct {
	DefaultLimit int
	MaxLimit     int
}

// HistoryPageLimits fits the history screen: one screenful by default, a few at most.
var HistoryPageLimits = PageLimits{DefaultLimit: 20, MaxLimit: 100}

// Page is a window over a list ordered by time.
type Page struct {
	Offset      int
	Limit       int
	OldestFirst bool
}

// ParsePage reads offset, limit and order (newest or oldest, newest by default).
// Errors wrap ErrInvalidInput.
func ParsePage(c *gin.Context, limits PageLimits) (Page, error) {
	offset, offsetErr := queryInt(c, "offset", 0)
	limit, limitErr := queryInt(c, "limit", limits.DefaultLimit)
	order := c.DefaultQuery("order", OrderNewest)

	err := validation.Errors{
		"offset": firstError(offsetErr, validation.Validate(offset, validation.Min(0))),
		"limit": firstError(limitErr, validation.Validate(limit,
			validation.Required, validation.Min(1), validation.Max(limits.MaxLimit))),
		"order": validation.Validate(order, validation.In(OrderNewest, OrderOldest)),
	}.Filter()
	if err != nil {
		return Page{}, customValidation.WrapValidationError(err)
	}

	return Page{Offset: offset, Limit: limit, OldestFirst: order == OrderOldest}, nil
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, validation.NewError("validation_is_integer", "must be an integer")
	}
	return n, nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
