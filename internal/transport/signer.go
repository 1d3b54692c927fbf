package transport

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"time"
)

// Signer produces the venue's authentication signature
type Signer struct {
	apiKey     string
	apiSecret  string
	passphrase string
}

// NewSigner creates a new Signer instance
func NewSigner(apiKey, apiSecret, passphrase string) *Signer {
	return &Signer{
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		passphrase: passphrase,
	}
}

// AuthRequest builds the signed authentication frame. The signature is
// HMAC-SHA256 over timestamp + "authentication", base64 encoded.
func (s *Signer) AuthRequest() authRequest {
	timestamp := fmt.Sprintf("%d", time.Now().Unix())
	payload := timestamp + "authentication"

	return authRequest{
		Type:       "authenticate",
		Token:      s.apiKey,
		Passphrase: s.passphrase,
		Signature:  computeHmacSha256(payload, s.apiSecret),
		Timestamp:  timestamp,
	}
}

func computeHmacSha256(message string, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
