package goScope

import (
	"errors"

	"github.com/MrEthical07/goScope/jwt"
)

var (
	// ErrUnauthorized is returned when a bearer header does not resolve to a session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSelfCheckFailed is returned when a freshly issued token does not verify.
	ErrSelfCheckFailed = errors.New("issued token failed self-check")
	// ErrIssueRateLimited is returned when an identity exceeds its issuance budget.
	ErrIssueRateLimited = errors.New("token issuance rate limited")
	// ErrRateLimiterUnavailable is returned when the issuance throttle cannot reach Redis.
	ErrRateLimiterUnavailable = errors.New("rate limiter backend unavailable")
	// ErrAdminReserved is returned when a user token request asks for the admin scope.
	ErrAdminReserved = jwt.ErrAdminReserved
	// ErrEngineNotReady is returned by methods called on a nil or unbuilt Engine.
	ErrEngineNotReady = errors.New("engine not initialized")
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrKeySourceRequired is returned when no private key source or key pair is configured.
	ErrKeySourceRequired = errors.New("private key source required")
)
