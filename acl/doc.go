// Package acl defines the closed set of path scopes a token may grant and the exact
// byte layout of the "acl.paths" claim fragment.
//
// The layout is an interoperability contract with the verifying peer: one
// `"<pattern>":{}` entry per line, entries separated by a comma, no trailing comma.
// [Admin] is a distinct scope covering every path and never appears next to another
// scope.
package acl
