package jwt

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/MrEthical07/goScope/acl"
)

// Payload holds the claim values rendered by [AppendPayload].
type Payload struct {
	IssuedAt      int64
	ID            string
	Subject       string
	HasSubject    bool
	ExpiresAt     int64
	Scopes        []acl.Scope
	ApplicationID string
}

// AppendHeader appends the header bytes:
//
//	{
//	  "typ": "JWT",
//	  "alg": "<alg>"
//	}
func AppendHeader(dst []byte, alg string) []byte {
	dst = append(dst, "{\n  \"typ\": \"JWT\",\n  \"alg\": "...)
	dst = appendJSONString(dst, alg)
	dst = append(dst, "\n}"...)
	return dst
}

// AppendPayload appends the payload bytes. Field order is iat, jti, sub, exp, acl,
// application_id; sub is omitted when p.HasSubject is false. iat and exp are bare
// numbers; the acl.paths entries are written by [acl.AppendPaths] without indentation.
func AppendPayload(dst []byte, p Payload) []byte {
	dst = append(dst, "{\n  \"iat\": "...)
	dst = strconv.AppendInt(dst, p.IssuedAt, 10)
	dst = append(dst, ",\n  \"jti\": "...)
	dst = appendJSONString(dst, p.ID)
	if p.HasSubject {
		dst = append(dst, ",\n  \"sub\": "...)
		dst = appendJSONString(dst, p.Subject)
	}
	dst = append(dst, ",\n  \"exp\": "...)
	dst = strconv.AppendInt(dst, p.ExpiresAt, 10)
	dst = append(dst, ",\n  \"acl\": {\n    \"paths\": {\n"...)
	dst = acl.AppendPaths(dst, p.Scopes)
	dst = append(dst, "    }\n  },\n  \"application_id\": "...)
	dst = appendJSONString(dst, p.ApplicationID)
	dst = append(dst, "\n}"...)
	return dst
}

// appendJSONString writes s as a JSON string literal without HTML escaping.
func appendJSONString(dst []byte, s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte("\n"))...)
}
