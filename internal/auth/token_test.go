package auth

import (
	"strings"
	"testing"
)

func TestGenerateTokenShape(t *testing.T) {
	a, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(a, TokenPrefix) {
		t.Fatalf("missing prefix: %q", a)
	}
	// 32 bytes of randomness -> 43 base64url chars
	if len(a) != len(TokenPrefix)+43 {
		t.Fatalf("unexpected length %d: %q", len(a), a)
	}
	if !TokenPattern.MatchString(a) {
		t.Fatalf("generated token must match the scrub pattern: %q", a)
	}

	b, err := GenerateToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if a == b {
		t.Fatalf("two generated tokens collided")
	}
}

func TestValidateToken(t *testing.T) {
	tok, _ := GenerateToken()
	if !ValidateToken(tok, tok) {
		t.Fatalf("token should validate against itself")
	}
	if ValidateToken(tok+"x", tok) {
		t.Fatalf("longer token should not validate")
	}
	if ValidateToken("", tok) || ValidateToken(tok, "") || ValidateToken("", "") {
		t.Fatalf("empty values must never validate")
	}
}

func TestMaskToken(t *testing.T) {
	masked := MaskToken("pl_abcdefghij")
	if masked != "pl_abcd****" {
		t.Fatalf("mask: %q", masked)
	}
	if MaskToken("pl_ab") != "****" {
		t.Fatalf("short tokens fully masked")
	}
}

func TestScrubSecrets(t *testing.T) {
	tok, _ := GenerateToken()
	in := "request failed with token " + tok + " at attempt 3"
	out := ScrubSecrets(in)
	if strings.Contains(out, tok) {
		t.Fatalf("token leaked: %q", out)
	}
	if !strings.Contains(out, "pl_****") {
		t.Fatalf("mask missing: %q", out)
	}
	// Short token-ish strings are left alone.
	if ScrubSecrets("pl_short") != "pl_short" {
		t.Fatalf("over-eager scrub")
	}
}
