package exchange

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/oauth2"
)

// newCodeVerifier returns a fresh PKCE code verifier: the hex encoding of 32
// random bytes. The verifier and its challenge live only for the span of one
// authorization attempt and are never persisted.
func newCodeVerifier() (string, error) {
	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return "", fmt.Errorf("generate verifier seed: %w", err)
	}
	return hex.EncodeToString(seed), nil
}

// codeChallenge derives the S256 challenge for a verifier:
// base64url(SHA-256(verifier)) with padding stripped.
func codeChallenge(verifier string) string {
	return oauth2.S256ChallengeFromVerifier(verifier)
}
