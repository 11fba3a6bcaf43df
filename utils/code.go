package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateSafetyCode returns a random 4-digit code (1000-9999). The code
// is a low-entropy shared secret for in-person identity checks; it is not
// a cryptographic credential.
func GenerateSafetyCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		// crypto/rand failing is unrecoverable for anything else the
		// process does; fall back to a fixed code rather than panic.
		return "1000"
	}
	return fmt.Sprintf("%04d", n.Int64()+1000)
}
