package consent

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

const (
	// pkceVerifierBytes is the number of random bytes for the PKCE code
	// verifier. 32 bytes provides 256 bits of entropy.
	pkceVerifierBytes = 32

	// stateBytes is the number of random bytes for the OAuth state
	// parameter. 32 bytes encodes to 43 base64url characters.
	stateBytes = 32
)

// pkceChallenge holds the verifier/challenge pair for one authorization
// request. The verifier stays local; only the S256 challenge is sent to
// the provider.
type pkceChallenge struct {
	Verifier  string
	Challenge string
}

// generatePKCE generates a new PKCE code verifier and its S256 challenge.
func generatePKCE() (*pkceChallenge, error) {
	verifierRaw := make([]byte, pkceVerifierBytes)
	if _, err := rand.Read(verifierRaw); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes for PKCE: %w", err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(verifierRaw)
	hash := sha256.Sum256([]byte(verifier))

	return &pkceChallenge{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(hash[:]),
	}, nil
}

// generateState generates a random state parameter linking the
// authorization response back to the original request.
func generateState() (string, error) {
	raw := make([]byte, stateBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}
