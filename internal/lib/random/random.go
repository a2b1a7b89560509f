package random

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

const (
	VerificationTokenBytes = 32
	RefreshTokenBytes      = 64
)

// Hex returns n cryptographically random bytes, hex encoded.
func Hex(n int) (string, error) {
	const op = "random.Hex"

	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return hex.EncodeToString(b), nil
}
