package oauth

import (
	"encoding/base64"
	"testing"
)

func TestNewCodeVerifier(t *testing.T) {
	a, err := NewCodeVerifier()
	if err != nil {
		t.Fatalf("NewCodeVerifier: %v", err)
	}
	b, err := NewCodeVerifier()
	if err != nil {
		t.Fatalf("NewCodeVerifier: %v", err)
	}
	if a == b {
		t.Error("two verifiers are identical")
	}

	decoded, err := base64.RawURLEncoding.DecodeString(a)
	if err != nil {
		t.Fatalf("verifier is not base64url: %v", err)
	}
	if len(decoded) != 48 {
		t.Errorf("verifier entropy = %d bytes, want 48", len(decoded))
	}
}

func TestS256ChallengeKnownVector(t *testing.T) {
	// RFC 7636 appendix B.
	verifier := "dBjftJeZ4CVP-mB92K27uhbUJU1p1r_wW1gFWFOEjXk"
	want := "E9Melhoa2OwvFrEMTJguCHaoeK1t8URWbuGJSstw-cM"
	if got := S256Challenge(verifier); got != want {
		t.Errorf("S256Challenge = %s, want %s", got, want)
	}
}
