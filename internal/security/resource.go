package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignSnapshot returns an HMAC over a snapshot body, stored next to the
// object so a restore can refuse documents that were not written by us.
func SignSnapshot(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func VerifySnapshot(secret string, body []byte, signature string) bool {
	expected := SignSnapshot(secret, body)
	return hmac.Equal([]byte(signature), []byte(expected))
}
