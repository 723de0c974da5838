package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// Header names carried on every provider delivery.
const (
	HeaderID        = "webhook-id"
	HeaderTimestamp = "webhook-timestamp"
	HeaderSignature = "webhook-signature"
)

// ErrInvalidSignature is returned when no candidate signature matches the
// one computed from the shared secret.
var ErrInvalidSignature = errors.New("invalid signature")

// Verifier validates HMAC-SHA256 signatures on provider webhook deliveries.
// The provider issues a versioned secret of the form "whsec_<base64>"; the
// key material is the base64-decoded remainder after the version prefix.
type Verifier struct {
	key []byte
}

// NewVerifier creates a Verifier from the provider-issued secret.
// Parameters:
//   - secret: versioned signing secret, e.g. "whsec_MfKQ...".
// Returns:
//   - *Verifier: verifier bound to the decoded key material.
//   - error: non-nil if the secret is empty or not valid base64.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("webhook secret is not set")
	}

	material := secret
	if idx := strings.Index(secret, "_"); idx != -1 {
		material = secret[idx+1:]
	}

	key, err := base64.StdEncoding.DecodeString(material)
	if err != nil {
		return nil, fmt.Errorf("failed to decode webhook secret: %w", err)
	}

	return &Verifier{key: key}, nil
}

// Sign computes the base64-encoded HMAC-SHA256 signature over the signed
// content "{id}.{timestamp}.{body}".
// Parameters:
//   - id: provider message ID header value.
//   - timestamp: provider timestamp header value.
//   - body: exact JSON body bytes as received.
// Returns:
//   - string: base64-encoded signature.
func (v *Verifier) Sign(id, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, v.key)
	mac.Write([]byte(id))
	mac.Write([]byte("."))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks the signature header against the computed signature. The
// header may carry multiple space-separated "v1,<sig>" candidates to
// support secret rotation; the delivery is accepted if any candidate
// matches. Comparison is constant-time.
// Parameters:
//   - id: provider message ID header value.
//   - timestamp: provider timestamp header value.
//   - signatureHeader: raw webhook-signature header value.
//   - body: exact JSON body bytes as received.
// Returns:
//   - error: ErrInvalidSignature when no candidate matches.
func (v *Verifier) Verify(id, timestamp, signatureHeader string, body []byte) error {
	expected := []byte(v.Sign(id, timestamp, body))

	for _, token := range strings.Split(signatureHeader, " ") {
		idx := strings.Index(token, ",")
		if idx == -1 {
			continue
		}
		candidate := token[idx+1:]
		if hmac.Equal([]byte(candidate), expected) {
			return nil
		}
	}

	return ErrInvalidSignature
}
