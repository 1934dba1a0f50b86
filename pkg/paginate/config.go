package paginate

import (
	"errors"
	"fmt"
	"time"
)

// Strategy selects how further pages are discovered.
type Strategy string

const (
	// TotalOffset computes every remaining page offset from the total item
	// count reported by the first response and fetches them concurrently.
	TotalOffset Strategy = "offset"

	// LinkFollowing follows the next-page URL embedded in each response,
	// one page at a time.
	LinkFollowing Strategy = "link"
)

// Configuration errors. All of them fail a run before any request is made.
var (
	// ErrInvalidPageSize is returned when the configured page size is not positive.
	ErrInvalidPageSize = errors.New("page size must be positive")

	// ErrUnknownStrategy is returned for an unrecognized pagination strategy.
	ErrUnknownStrategy = errors.New("unknown pagination strategy")

	// ErrMissingParam is returned when the offset strategy lacks a query parameter name.
	ErrMissingParam = errors.New("offset strategy requires offset and limit parameter names")
)

// Config holds pagination driver configuration.
type Config struct {
	// Strategy selects page discovery (TotalOffset or LinkFollowing)
	Strategy Strategy

	// PageSize is the number of items requested per page (offset strategy)
	PageSize int

	// OffsetParam is the query parameter carrying the item offset (e.g. "skip")
	OffsetParam string

	// LimitParam is the query parameter carrying the page size (e.g. "limit")
	LimitParam string

	// TotalKey is the response key holding the total item count (e.g. "total")
	TotalKey string

	// ItemsKey is the response key holding the item list (e.g. "products").
	// Empty means the response body is the item array itself.
	ItemsKey string

	// NextKey is the response key holding the next-page URL (e.g. "next")
	NextKey string

	// TotalOverride supplies the total when the API does not report one.
	// Zero means no override.
	TotalOverride int

	// MaxConcurrency is the maximum number of parallel page requests
	MaxConcurrency int

	// Timeout per page fetch
	Timeout time.Duration
}

// DefaultConfig returns a safe default configuration for offset-paginated APIs.
func DefaultConfig() Config {
	return Config{
		Strategy:       TotalOffset,
		PageSize:       20,
		OffsetParam:    "skip",
		LimitParam:     "limit",
		TotalKey:       "total",
		ItemsKey:       "",
		NextKey:        "next",
		MaxConcurrency: 10,
		Timeout:        15 * time.Second,
	}
}

// Validate checks the configuration before any request is made.
func (c Config) Validate() error {
	switch c.Strategy {
	case TotalOffset:
		if c.PageSize <= 0 {
			return fmt.Errorf("%w (got %d)", ErrInvalidPageSize, c.PageSize)
		}
		if c.OffsetParam == "" || c.LimitParam == "" {
			return ErrMissingParam
		}
	case LinkFollowing:
		if c.NextKey == "" {
			return fmt.Errorf("link strategy requires a next key")
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStrategy, c.Strategy)
	}
	return nil
}
