package order

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var pinSpace = big.NewInt(10000)

// generatePin returns a zero-padded 4-digit numeric string. The PIN gates a
// physical handoff, so it comes from crypto/rand rather than a seeded PRNG.
func generatePin() (string, error) {
	n, err := rand.Int(rand.Reader, pinSpace)
	if err != nil {
		return "", fmt.Errorf("failed to generate pin: %w", err)
	}
	return fmt.Sprintf("%04d", n.Int64()), nil
}
