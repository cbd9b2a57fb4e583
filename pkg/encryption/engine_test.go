package encryption

import (
	"bytes"
	"testing"
)

// TestEncryptDecrypt_RoundTrip tests basic seal/open
func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	engine, err := NewEngine(key)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	plaintext := []byte(`{"map":{"K1":1},"maxId":1,"nextId":2}`)
	sealed, err := engine.Encrypt(plaintext)
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	if bytes.Contains(sealed, plaintext) {
		t.Error("ciphertext leaks plaintext")
	}

	opened, err := engine.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt failed: %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Error("round trip mismatch")
	}
}

// TestNewEngine_BadKeySize tests key length validation
func TestNewEngine_BadKeySize(t *testing.T) {
	if _, err := NewEngine([]byte("short")); err == nil {
		t.Error("short key should be rejected")
	}
}

// TestDecrypt_Tampered tests GCM authentication
func TestDecrypt_Tampered(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	engine, _ := NewEngine(key)

	sealed, err := engine.Encrypt([]byte("state"))
	if err != nil {
		t.Fatalf("Encrypt failed: %v", err)
	}
	sealed[len(sealed)-1] ^= 0xFF

	if _, err := engine.Decrypt(sealed); err == nil {
		t.Error("tampered ciphertext should fail authentication")
	}
}

// TestDecrypt_TooShort tests malformed input
func TestDecrypt_TooShort(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, KeySize)
	engine, _ := NewEngine(key)

	if _, err := engine.Decrypt([]byte{1, 2, 3}); err == nil {
		t.Error("truncated ciphertext should be rejected")
	}
}

// TestPassphraseDerivation tests deterministic key derivation
func TestPassphraseDerivation(t *testing.T) {
	salt, err := GenerateSalt()
	if err != nil {
		t.Fatalf("GenerateSalt failed: %v", err)
	}

	e1, err := NewEngineFromPassphrase("hunter2", salt)
	if err != nil {
		t.Fatalf("NewEngineFromPassphrase failed: %v", err)
	}
	e2, _ := NewEngineFromPassphrase("hunter2", salt)

	sealed, _ := e1.Encrypt([]byte("payload"))
	opened, err := e2.Decrypt(sealed)
	if err != nil || string(opened) != "payload" {
		t.Errorf("same passphrase+salt must interoperate: %v", err)
	}

	if _, err := NewEngineFromPassphrase("hunter2", []byte("bad")); err == nil {
		t.Error("wrong salt size should be rejected")
	}
}
