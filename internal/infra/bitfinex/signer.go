package bitfinex

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"time"
)

// Signer handles Bitfinex v2 API authentication signatures
type Signer struct {
	apiKey    string
	apiSecret string
}

// NewSigner creates a new Signer instance
func NewSigner(apiKey, apiSecret string) *Signer {
	return &Signer{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}

// GenerateHeaders creates the auth headers for a REST request.
// path: /v2/auth/w/order/submit (no host)
// body: json string (empty if none)
//
// Bitfinex v2 signs hex(HMAC-SHA384("/api" + path + nonce + body)).
func (s *Signer) GenerateHeaders(path, body string) map[string]string {
	nonce := fmt.Sprintf("%d", time.Now().UnixMilli())

	payload := "/api" + path + nonce + body
	sign := computeHmacSha384(payload, s.apiSecret)

	return map[string]string{
		"bfx-nonce":     nonce,
		"bfx-apikey":    s.apiKey,
		"bfx-signature": sign,
		"Content-Type":  "application/json",
	}
}

// WSAuthArgs builds the auth event payload for the v2 WebSocket:
// the signature covers "AUTH" + nonce.
func (s *Signer) WSAuthArgs() map[string]interface{} {
	nonce := fmt.Sprintf("%d", time.Now().UnixMilli())
	payload := "AUTH" + nonce

	return map[string]interface{}{
		"event":       "auth",
		"apiKey":      s.apiKey,
		"authSig":     computeHmacSha384(payload, s.apiSecret),
		"authNonce":   nonce,
		"authPayload": payload,
	}
}

func computeHmacSha384(message string, secret string) string {
	h := hmac.New(sha512.New384, []byte(secret))
	h.Write([]byte(message))
	return hex.EncodeToString(h.Sum(nil))
}
