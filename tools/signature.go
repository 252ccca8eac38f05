package tools

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SignBody returns the "sha256=<hex>" signature of body.
func SignBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature validates a "sha256=<hex>" header against body.
// The second return value explains a failure.
func VerifySignature(secret string, header string, body []byte) (bool, string) {
	if secret == "" {
		return false, "webhook secret not configured"
	}
	sig := strings.TrimSpace(header)
	if sig == "" {
		return false, "missing signature"
	}
	if !strings.HasPrefix(sig, "sha256=") {
		return false, "invalid signature format"
	}

	provided, err := hex.DecodeString(strings.TrimPrefix(sig, "sha256="))
	if err != nil {
		return false, "invalid signature hex"
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(body)
	if !hmac.Equal(provided, mac.Sum(nil)) {
		return false, "signature mismatch"
	}
	return true, ""
}
