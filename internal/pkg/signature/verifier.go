// Package signature authenticates inbound vendor callbacks.
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// DefaultHeader carries the vendor's base64 HMAC-SHA256 digest of the raw body
const DefaultHeader = "X-SIGNIFYD-SEC-HMAC-SHA256"

// Verifier checks request bodies against a header-supplied digest
type Verifier struct {
	secret []byte
}

// NewVerifier creates a verifier keyed by the pre-shared secret
func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

// Sign returns the base64 HMAC-SHA256 digest of body
func (v *Verifier) Sign(body []byte) string {
	mac := hmac.New(sha256.New, v.secret)
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify reports whether digest was produced over the exact bytes of body.
// A missing digest or an unconfigured secret never verifies.
func (v *Verifier) Verify(body []byte, digest string) bool {
	if digest == "" || len(v.secret) == 0 {
		return false
	}
	return hmac.Equal([]byte(v.Sign(body)), []byte(digest))
}
