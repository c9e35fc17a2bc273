package auth

import (
	"encoding/hex"
	"testing"
)

func TestGenerateOpaqueToken(t *testing.T) {
	token, err := GenerateOpaqueToken()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(token) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(token))
	}
	if _, err := hex.DecodeString(token); err != nil {
		t.Errorf("expected hex string, got %q", token)
	}
}

func TestGenerateOpaqueToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token, err := GenerateOpaqueToken()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if seen[token] {
			t.Fatalf("duplicate token generated: %s", token)
		}
		seen[token] = true
	}
}
