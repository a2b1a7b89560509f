package hasher

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	PasswordCost     = 10
	RefreshTokenCost = 12
)

// Hasher wraps bcrypt for passwords and refresh-token secrets. Hashing is
// CPU-bound and deliberately slow; keep it off latency-sensitive paths.
type Hasher struct {
	cost      int
	dummyHash []byte
}

// New mints a throwaway hash of random bytes so that VerifyDummy pays the
// full bcrypt cost. Comparing against a malformed literal would fail fast
// and reopen the timing oracle the dummy compare exists to close.
func New(cost int) (*Hasher, error) {
	const op = "hasher.New"

	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}

	seed := make([]byte, 32)
	if _, err := rand.Read(seed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	dummy, err := bcrypt.GenerateFromPassword(seed, cost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Hasher{cost: cost, dummyHash: dummy}, nil
}

func (h *Hasher) Hash(secret string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Verify reports whether secret matches hash. It never errors on mismatch.
func (h *Hasher) Verify(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}

// VerifyDummy burns one bcrypt comparison against the throwaway hash. Called
// when no account matched, so "no such user" and "wrong password" cost the
// same.
func (h *Hasher) VerifyDummy(secret string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(secret))
}
