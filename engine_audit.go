package goScope

import (
	"context"
	"errors"
	"time"

	"github.com/MrEthical07/goScope/acl"
	"github.com/MrEthical07/goScope/jwt"
	"github.com/MrEthical07/goScope/keys"
	"github.com/MrEthical07/goScope/session"
)

const (
	auditEventLoginSuccess      = "login_success"
	auditEventLoginFailure      = "login_failure"
	auditEventResolveFailure    = "resolve_failure"
	auditEventTokenIssued       = "token_issued"
	auditEventAdminTokenIssued  = "admin_token_issued"
	auditEventTokenIssueFailure = "token_issue_failure"
	auditEventSelfCheckFailure  = "self_check_failure"
)

// AuditErrorCode is the stable error label carried in AuditEvent.Error.
type AuditErrorCode string

const (
	auditErrUnauthorized     AuditErrorCode = "unauthorized"
	auditErrInvalidIdentity  AuditErrorCode = "invalid_identity"
	auditErrInvalidScopes    AuditErrorCode = "invalid_scopes"
	auditErrSelfCheckFailed  AuditErrorCode = "self_check_failed"
	auditErrSigningFailed    AuditErrorCode = "signing_failed"
	auditErrRateLimited      AuditErrorCode = "rate_limited"
	auditErrStoreUnavailable AuditErrorCode = "store_unavailable"
	auditErrInternal         AuditErrorCode = "internal_error"
)

func (e *Engine) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	identity string,
	tokenID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if e == nil || e.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: e.now().UTC(),
		EventType: eventType,
		Identity:  identity,
		TokenID:   tokenID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	e.audit.Emit(ctx, event)
}

func scopeMetadata(scopes []acl.Scope) func() map[string]string {
	return func() map[string]string {
		names := make([]byte, 0, 16*len(scopes))
		for i, s := range scopes {
			if i > 0 {
				names = append(names, ',')
			}
			names = append(names, s.String()...)
		}
		return map[string]string{"scopes": string(names)}
	}
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return auditErrUnauthorized
	case errors.Is(err, session.ErrIdentityRequired),
		errors.Is(err, session.ErrInvalidIdentity),
		errors.Is(err, jwt.ErrIdentityRequired),
		errors.Is(err, jwt.ErrInvalidIdentity):
		return auditErrInvalidIdentity
	case errors.Is(err, acl.ErrEmptyScopes),
		errors.Is(err, acl.ErrAdminExclusive),
		errors.Is(err, acl.ErrUnknownScope),
		errors.Is(err, acl.ErrDuplicateScope),
		errors.Is(err, ErrAdminReserved):
		return auditErrInvalidScopes
	case errors.Is(err, ErrSelfCheckFailed):
		return auditErrSelfCheckFailed
	case errors.Is(err, keys.ErrSigning),
		errors.Is(err, keys.ErrUnsupportedDigest):
		return auditErrSigningFailed
	case errors.Is(err, ErrIssueRateLimited):
		return auditErrRateLimited
	case errors.Is(err, session.ErrStoreUnavailable),
		errors.Is(err, ErrRateLimiterUnavailable):
		return auditErrStoreUnavailable
	default:
		return auditErrInternal
	}
}

// observeIssue records the latency of one issue-and-self-check round.
func (e *Engine) observeIssue(start time.Time) {
	if e.metrics.LatencyEnabled() {
		e.metrics.Observe(MetricIssueLatency, time.Since(start))
	}
}
