package jwt

import (
	"testing"

	"github.com/MrEthical07/goScope/acl"
)

// FuzzVerify feeds arbitrary strings to the verifier.
// Goal: no panics, and nothing but issued tokens verifies.
func FuzzVerify(f *testing.F) {
	m := newTestManager(f, nil)

	valid, err := m.Issue("fuzz", acl.DefaultUserScopes())
	if err != nil {
		f.Fatal(err)
	}

	f.Add(valid)
	f.Add("")
	f.Add("not.a.jwt")
	f.Add("eyJhbGciOiJub25lIn0.eyJ1aWQiOiJ0ZXN0In0.")
	f.Add("....")

	f.Fuzz(func(t *testing.T, input string) {
		ok := m.Verify(input)
		claims, err := m.Inspect(input)
		if ok != (err == nil) {
			t.Fatalf("Verify=%v disagrees with Inspect err=%v", ok, err)
		}
		if err == nil && claims == nil {
			t.Fatal("Inspect returned nil claims without error")
		}
	})
}
