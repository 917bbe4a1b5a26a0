package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"
)

func signBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "app-secret"
	body := []byte(`{"object":"page","entry":[]}`)

	if err := VerifySignature(secret, body, signBody(secret, body)); err != nil {
		t.Fatalf("valid signature rejected: %v", err)
	}

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"missing prefix", hex.EncodeToString(make([]byte, 32))},
		{"malformed hex", "sha256=not-hex"},
		{"wrong secret", signBody("other-secret", body)},
		{"truncated digest", "sha256=abcd"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := VerifySignature(secret, body, tc.header); !errors.Is(err, ErrSignatureInvalid) {
				t.Fatalf("expected ErrSignatureInvalid, got %v", err)
			}
		})
	}
}

// The signature is computed over the exact bytes received. Any mutation,
// even whitespace, must invalidate it.
func TestVerifySignatureIsByteExact(t *testing.T) {
	secret := "app-secret"
	body := []byte(`{"object":"page"}`)
	header := signBody(secret, body)

	mutated := []byte(`{"object": "page"}`)
	if err := VerifySignature(secret, mutated, header); !errors.Is(err, ErrSignatureInvalid) {
		t.Fatalf("expected mutated body to fail verification, got %v", err)
	}
}

func TestVerifyChallenge(t *testing.T) {
	if !VerifyChallenge("tok-123", "subscribe", "tok-123") {
		t.Fatal("expected matching handshake to verify")
	}
	if VerifyChallenge("tok-123", "subscribe", "tok-456") {
		t.Fatal("wrong token must not verify")
	}
	if VerifyChallenge("tok-123", "unsubscribe", "tok-123") {
		t.Fatal("wrong mode must not verify")
	}
	if VerifyChallenge("", "subscribe", "") {
		t.Fatal("empty configured token must never verify")
	}
}
