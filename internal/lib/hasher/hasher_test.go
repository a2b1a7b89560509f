package hasher

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h, err := New(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	hash, err := h.Hash("secret123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" || hash == "secret123" {
		t.Fatalf("unexpected hash %q", hash)
	}

	if !h.Verify("secret123", hash) {
		t.Error("Verify should accept the right secret")
	}
	if h.Verify("wrong", hash) {
		t.Error("Verify should reject a wrong secret")
	}
}

func TestHashIsSalted(t *testing.T) {
	h, err := New(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	a, _ := h.Hash("secret123")
	b, _ := h.Hash("secret123")
	if a == b {
		t.Error("two hashes of the same secret should differ")
	}
}

func TestVerifyDummyBurnsARealComparison(t *testing.T) {
	h, err := New(bcrypt.MinCost)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := bcrypt.CompareHashAndPassword(h.dummyHash, []byte("anything")); err == nil {
		t.Error("dummy hash should never match")
	}
	if _, err := bcrypt.Cost(h.dummyHash); err != nil {
		t.Errorf("dummy hash should be a well-formed bcrypt hash: %v", err)
	}

	h.VerifyDummy("anything")
}

func TestCostIsClamped(t *testing.T) {
	h, err := New(0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if h.cost < bcrypt.MinCost {
		t.Errorf("cost should be clamped to at least MinCost, got %d", h.cost)
	}
}
