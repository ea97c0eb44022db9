package acl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyScopes is returned for an empty scope request.
	ErrEmptyScopes = errors.New("at least one scope is required")
	// ErrAdminExclusive is returned when Admin is combined with another scope.
	ErrAdminExclusive = errors.New("admin scope cannot be combined with other scopes")
	// ErrUnknownScope is returned for values or names outside the closed scope set.
	ErrUnknownScope = errors.New("unknown scope")
	// ErrDuplicateScope is returned when a scope is requested twice.
	ErrDuplicateScope = errors.New("duplicate scope")
)

// Scope is one named path pattern from the closed ACL enumeration.
type Scope uint8

const (
	Users Scope = iota + 1
	Conversations
	Sessions
	Devices
	Image
	Media
	Applications
	Push
	Knocking
	// Admin covers every path. It is only used for privileged service tokens.
	Admin
)

type scopeDef struct {
	name    string
	pattern string
}

var scopeDefs = [...]scopeDef{
	Users:         {name: "users", pattern: "/v1/users/**"},
	Conversations: {name: "conversations", pattern: "/v1/conversations/**"},
	Sessions:      {name: "sessions", pattern: "/v1/sessions/**"},
	Devices:       {name: "devices", pattern: "/v1/devices/**"},
	Image:         {name: "image", pattern: "/v1/image/**"},
	Media:         {name: "media", pattern: "/v1/media/**"},
	Applications:  {name: "applications", pattern: "/v1/applications/**"},
	Push:          {name: "push", pattern: "/v1/push/**"},
	Knocking:      {name: "knocking", pattern: "/v1/knocking/**"},
	Admin:         {name: "admin", pattern: "/**"},
}

// All returns every non-admin scope in declaration order.
func All() []Scope {
	return []Scope{Users, Conversations, Sessions, Devices, Image, Media, Applications, Push, Knocking}
}

// DefaultUserScopes is the grant handed to an ordinary signed-in caller.
func DefaultUserScopes() []Scope {
	return []Scope{Sessions, Conversations, Users}
}

// Valid reports whether s is a member of the closed set.
func (s Scope) Valid() bool {
	return s >= Users && s <= Admin
}

// Pattern returns the literal path pattern, or "" for an invalid scope.
func (s Scope) Pattern() string {
	if !s.Valid() {
		return ""
	}
	return scopeDefs[s].pattern
}

func (s Scope) String() string {
	if !s.Valid() {
		return fmt.Sprintf("scope(%d)", uint8(s))
	}
	return scopeDefs[s].name
}

// Parse maps a scope name ("users", "admin", ...) to its Scope, case-insensitively.
func Parse(name string) (Scope, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for s := Users; s <= Admin; s++ {
		if scopeDefs[s].name == key {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownScope, name)
}

// ParseList parses a comma-separated list of scope names. Blank items are skipped;
// the result is validated with [Validate].
func ParseList(list string) ([]Scope, error) {
	var out []Scope
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == "" {
			continue
		}
		s, err := Parse(item)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := Validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate enforces the scope-set invariants: non-empty, members of the closed set,
// no duplicates, and Admin only on its own.
func Validate(scopes []Scope) error {
	if len(scopes) == 0 {
		return ErrEmptyScopes
	}
	var seen [len(scopeDefs)]bool
	for _, s := range scopes {
		if !s.Valid() {
			return fmt.Errorf("%w: %d", ErrUnknownScope, uint8(s))
		}
		if s == Admin && len(scopes) > 1 {
			return ErrAdminExclusive
		}
		if seen[s] {
			return fmt.Errorf("%w: %s", ErrDuplicateScope, s)
		}
		seen[s] = true
	}
	return nil
}
