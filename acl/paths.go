package acl

// Entry returns the claim fragment for a single scope: `"<pattern>":{}`.
func Entry(s Scope) string {
	return `"` + s.Pattern() + `":{}`
}

// AppendPaths appends the entry lines for scopes to dst. Entries are separated by
// ",\n"; the last entry is followed by "\n" and no comma.
//
// Callers must validate scopes first; invalid scopes render as empty patterns.
func AppendPaths(dst []byte, scopes []Scope) []byte {
	for i, s := range scopes {
		dst = append(dst, '"')
		dst = append(dst, s.Pattern()...)
		dst = append(dst, `":{}`...)
		if i < len(scopes)-1 {
			dst = append(dst, ',')
		}
		dst = append(dst, '\n')
	}
	return dst
}

// Paths is the string form of [AppendPaths].
func Paths(scopes []Scope) string {
	return string(AppendPaths(nil, scopes))
}
