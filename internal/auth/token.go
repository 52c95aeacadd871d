package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"regexp"
)

// TokenPrefix marks Pulse tokens so they are recognizable in configs and
// scrubbing rules without revealing anything about the secret part.
const TokenPrefix = "pl_"

// TokenPattern matches anything token-shaped. Deliberately looser than the
// generator's exact output so rotated or truncated leaks still get caught
// by log scrubbing.
var TokenPattern = regexp.MustCompile(`pl_[A-Za-z0-9_-]{20,}`)

// GenerateToken mints a new token: prefix + 256 bits of CSPRNG randomness,
// URL-safe base64 without padding.
func GenerateToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return TokenPrefix + base64.RawURLEncoding.EncodeToString(raw), nil
}

// ValidateToken compares a presented token against the expected one in
// constant time. Both empty never validates.
func ValidateToken(presented, expected string) bool {
	if presented == "" || expected == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(presented), []byte(expected)) == 1
}

// MaskToken renders a token safe for display: prefix plus the first four
// secret characters, rest elided.
func MaskToken(token string) string {
	const visible = len(TokenPrefix) + 4
	if len(token) <= visible {
		return "****"
	}
	return token[:visible] + "****"
}

// ScrubSecrets replaces anything token-shaped in s. Used for error strings
// and other text that bypasses the logging pipeline.
func ScrubSecrets(s string) string {
	return TokenPattern.ReplaceAllString(s, TokenPrefix+"****")
}
