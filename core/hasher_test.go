package core

import (
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasherRoundTrip(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if hash == "" || hash == "correct horse battery staple" {
		t.Fatalf("hash must be non-empty and never the raw password, got %q", hash)
	}
	if !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt encoding, got %q", hash)
	}

	if !h.Verify("correct horse battery staple", hash) {
		t.Fatal("Verify rejected the correct password")
	}
	if h.Verify("wrong password", hash) {
		t.Fatal("Verify accepted a wrong password")
	}
}

func TestBcryptHasherRejectsEmptyPassword(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	if _, err := h.Hash(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestBcryptHasherSaltsHashes(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)
	a, err := h.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	b, err := h.Hash("samepassword")
	if err != nil {
		t.Fatalf("Hash error: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password must differ (random salt)")
	}
}

func TestBcryptHasherClampsInvalidCost(t *testing.T) {
	h := NewBcryptHasher(999)
	hash, err := h.Hash("longenough1")
	if err != nil {
		t.Fatalf("Hash error with clamped cost: %v", err)
	}
	if !h.Verify("longenough1", hash) {
		t.Fatal("Verify failed after cost clamp")
	}
}
