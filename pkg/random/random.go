package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// alphabet covers lower, upper and digits: 62 symbols, so a 6-character
// slug has 62^6 (~5.68e10) possible values.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// NewRandomString generates a random alphanumeric string of the given length
// using crypto/rand so candidates are uniformly distributed.
func NewRandomString(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid random string length: %d", length)
	}

	result := make([]byte, length)
	max := big.NewInt(int64(len(alphabet)))

	for i := range result {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		result[i] = alphabet[n.Int64()]
	}

	return string(result), nil
}
