package push

import (
	"encoding/base64"
	"testing"
)

func TestGenerateVAPIDKeys(t *testing.T) {
	pub, priv, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate keys: %v", err)
	}

	pubBytes, err := base64.RawURLEncoding.DecodeString(pub)
	if err != nil {
		t.Fatalf("public key is not raw-url base64: %v", err)
	}
	// Uncompressed P-256 point: 0x04 prefix + two 32-byte coordinates
	if len(pubBytes) != 65 {
		t.Errorf("public key length = %d, want 65", len(pubBytes))
	}
	if pubBytes[0] != 0x04 {
		t.Errorf("public key prefix = %#x, want 0x04", pubBytes[0])
	}

	if _, err := base64.RawURLEncoding.DecodeString(priv); err != nil {
		t.Fatalf("private key is not raw-url base64: %v", err)
	}

	pub2, _, err := GenerateVAPIDKeys()
	if err != nil {
		t.Fatalf("generate second pair: %v", err)
	}
	if pub2 == pub {
		t.Error("expected distinct key pairs")
	}
}

func TestVAPIDPublicKeyAccessor(t *testing.T) {
	svc := NewService("pub-key", "priv-key")
	if got := svc.VAPIDPublicKey(); got != "pub-key" {
		t.Errorf("VAPIDPublicKey = %q, want %q", got, "pub-key")
	}
}
