package rate

import "errors"

var (
	// ErrRateLimited is returned once an identity exceeds its window budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable is returned when the counter cannot be read or written.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
