// Package webhook is the Meta lead-ads ingestion bounded context: the
// subscription handshake, payload signature checks, event dedup and the
// pipeline that turns a verified leadgen event into a persisted lead.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrSignatureInvalid is returned for a missing, malformed or mismatched
// payload signature. The request must be rejected without processing.
var ErrSignatureInvalid = errors.New("webhook signature invalid")

const (
	// SignatureHeader carries the payload signature on inbound requests.
	SignatureHeader = "X-Signature-256"

	signaturePrefix = "sha256="
	handshakeMode   = "subscribe"
)

// VerifySignature checks the HMAC-SHA256 signature of the raw request body
// against the header value. The body must be the exact bytes received, not
// a re-serialization.
func VerifySignature(appSecret string, body []byte, header string) error {
	if !strings.HasPrefix(header, signaturePrefix) {
		return ErrSignatureInvalid
	}

	provided, err := hex.DecodeString(strings.TrimPrefix(header, signaturePrefix))
	if err != nil {
		return ErrSignatureInvalid
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	mac.Write(body)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return ErrSignatureInvalid
	}
	return nil
}

// VerifyChallenge validates the subscription handshake Meta performs when
// the webhook is registered. The caller echoes the challenge value back on
// success.
func VerifyChallenge(verifyToken, mode, token string) bool {
	if mode != handshakeMode || verifyToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(verifyToken)) == 1
}
