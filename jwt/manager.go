package jwt

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MrEthical07/goScope/acl"
	"github.com/MrEthical07/goScope/keys"
)

var (
	// ErrInvalidTTL is returned for a non-positive token lifetime.
	ErrInvalidTTL = errors.New("token ttl must be positive")
	// ErrIdentityRequired is returned when a user token is requested for a blank identity.
	ErrIdentityRequired = errors.New("identity is required")
	// ErrInvalidIdentity is returned for an identity that is not valid UTF-8 and so
	// could not be carried unchanged in the "sub" claim.
	ErrInvalidIdentity = errors.New("identity must be valid UTF-8")
	// ErrAdminReserved is returned when a user token asks for [acl.Admin]. Admin tokens
	// come only from IssueAdmin and carry no subject.
	ErrAdminReserved = errors.New("admin scope is reserved for admin tokens")
	// ErrApplicationIDRequired is returned when the manager has no application id.
	ErrApplicationIDRequired = errors.New("application id is required")
	// ErrKeysRequired is returned when the manager has no key pair.
	ErrKeysRequired = errors.New("signing key pair is required")
	// ErrTokenMalformed is returned by Inspect for tokens that do not decode.
	ErrTokenMalformed = errors.New("malformed token")
	// ErrSignatureMismatch is returned by Inspect when the signature does not verify.
	ErrSignatureMismatch = errors.New("token signature mismatch")
)

// segmentEncoding rejects padding and non-canonical trailing bits so that every
// accepted segment has exactly one textual form.
var segmentEncoding = base64.RawURLEncoding.Strict()

// Config defines the issuing parameters of a [Manager].
//
// Config instances are intended to be configured during initialization and then treated as immutable.
type Config struct {
	ApplicationID string
	TTL           time.Duration
	Digest        keys.Digest
	Keys          *keys.KeyPair

	// Now and NewID default to time.Now and uuid.NewString.
	Now   func() time.Time
	NewID func() string
}

// Manager issues and verifies tokens for one key pair and application id.
//
// A Manager holds no mutable state and is safe for concurrent use.
type Manager struct {
	config    Config
	alg       string
	headerB64 string
}

// Claims is the decoded payload of a verified token.
type Claims struct {
	IssuedAt      int64    `json:"iat"`
	ID            string   `json:"jti"`
	Subject       string   `json:"sub,omitempty"`
	ExpiresAt     int64    `json:"exp"`
	ACL           ACLClaim `json:"acl"`
	ApplicationID string   `json:"application_id"`
}

// ACLClaim mirrors the "acl" claim object.
type ACLClaim struct {
	Paths map[string]struct{} `json:"paths"`
}

// Expired reports whether the expiration claim has elapsed at now.
func (c *Claims) Expired(now time.Time) bool {
	return now.Unix() >= c.ExpiresAt
}

// Allows reports whether the token carries the pattern of s.
func (c *Claims) Allows(s acl.Scope) bool {
	_, ok := c.ACL.Paths[s.Pattern()]
	return ok
}

type header struct {
	Typ string `json:"typ"`
	Alg string `json:"alg"`
}

// NewManager validates cfg and precomputes the constant header segment.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Keys == nil || cfg.Keys.Private() == nil || cfg.Keys.Public() == nil {
		return nil, ErrKeysRequired
	}
	if cfg.TTL <= 0 {
		return nil, ErrInvalidTTL
	}
	cfg.ApplicationID = strings.TrimSpace(cfg.ApplicationID)
	if cfg.ApplicationID == "" {
		return nil, ErrApplicationIDRequired
	}
	if !utf8.ValidString(cfg.ApplicationID) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrApplicationIDRequired)
	}
	if cfg.Digest == "" {
		cfg.Digest = keys.SHA256
	}
	alg := cfg.Digest.Algorithm()
	if alg == "" {
		return nil, fmt.Errorf("%w: %q", keys.ErrUnsupportedDigest, string(cfg.Digest))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	return &Manager{
		config:    cfg,
		alg:       alg,
		headerB64: segmentEncoding.EncodeToString(AppendHeader(nil, alg)),
	}, nil
}

// Algorithm returns the header "alg" value of issued tokens.
func (m *Manager) Algorithm() string { return m.alg }

// Issue mints a token for identity with the configured TTL.
func (m *Manager) Issue(identity string, scopes []acl.Scope) (string, error) {
	return m.IssueWithTTL(identity, scopes, m.config.TTL)
}

// IssueWithTTL mints a token for identity carrying scopes and expiring ttl after issue.
//
// scopes must be a valid non-empty set without [acl.Admin].
func (m *Manager) IssueWithTTL(identity string, scopes []acl.Scope, ttl time.Duration) (string, error) {
	if strings.TrimSpace(identity) == "" {
		return "", ErrIdentityRequired
	}
	if !utf8.ValidString(identity) {
		return "", ErrInvalidIdentity
	}
	if err := acl.Validate(scopes); err != nil {
		return "", err
	}
	if slices.Contains(scopes, acl.Admin) {
		return "", ErrAdminReserved
	}
	return m.issue(identity, true, scopes, ttl)
}

// IssueAdmin mints a privileged token carrying only [acl.Admin] and no subject, for
// service-to-service calls where no end-user identity applies.
func (m *Manager) IssueAdmin(ttl time.Duration) (string, error) {
	return m.issue("", false, []acl.Scope{acl.Admin}, ttl)
}

func (m *Manager) issue(subject string, hasSubject bool, scopes []acl.Scope, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}
	seconds := int64(ttl / time.Second)
	if seconds == 0 {
		seconds = 1
	}
	iat := m.config.Now().Unix()

	payload := AppendPayload(make([]byte, 0, 384), Payload{
		IssuedAt:      iat,
		ID:            m.config.NewID(),
		Subject:       subject,
		HasSubject:    hasSubject,
		ExpiresAt:     iat + seconds,
		Scopes:        scopes,
		ApplicationID: m.config.ApplicationID,
	})

	token := make([]byte, 0, len(m.headerB64)+segmentEncoding.EncodedLen(len(payload))+400)
	token = append(token, m.headerB64...)
	token = append(token, '.')
	token = segmentEncoding.AppendEncode(token, payload)

	sig, err := keys.Sign(m.config.Keys.Private(), m.config.Digest, token)
	if err != nil {
		return "", err
	}

	token = append(token, '.')
	token = segmentEncoding.AppendEncode(token, sig)
	return string(token), nil
}

// Verify reports whether token is a well-formed three-segment token whose signature
// verifies under the manager's public key and algorithm. It never panics and never
// returns an error; malformed input yields false.
func (m *Manager) Verify(token string) bool {
	_, err := m.verify(token)
	return err == nil
}

// Inspect verifies token and decodes its payload.
func (m *Manager) Inspect(token string) (*Claims, error) {
	payload, err := m.verify(token)
	if err != nil {
		return nil, err
	}
	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", ErrTokenMalformed, err)
	}
	return &claims, nil
}

func (m *Manager) verify(token string) ([]byte, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: expected 3 segments, got %d", ErrTokenMalformed, len(parts))
	}

	rawHeader, err := segmentEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header encoding", ErrTokenMalformed)
	}
	var h header
	if err := json.Unmarshal(rawHeader, &h); err != nil {
		return nil, fmt.Errorf("%w: header json", ErrTokenMalformed)
	}
	if h.Alg != m.alg {
		return nil, fmt.Errorf("%w: unexpected algorithm %q", ErrSignatureMismatch, h.Alg)
	}

	payload, err := segmentEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload encoding", ErrTokenMalformed)
	}
	sig, err := segmentEncoding.DecodeString(parts[2])
	if err != nil || len(sig) == 0 {
		return nil, fmt.Errorf("%w: signature encoding", ErrTokenMalformed)
	}

	signed := token[:len(parts[0])+1+len(parts[1])]
	ok, err := keys.Verify(m.config.Keys.Public(), m.config.Digest, []byte(signed), sig)
	if err != nil || !ok {
		return nil, ErrSignatureMismatch
	}
	return payload, nil
}
