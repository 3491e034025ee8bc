package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// signupTokenAlphabet avoids characters that read ambiguously in email
// clients (0/O, 1/l/I, o).
const signupTokenAlphabet = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const SignupTokenLength = 48

// NewSignupToken returns an opaque token. The collision space is large enough
// that issuance never needs a uniqueness retry.
func NewSignupToken() (string, error) {
	buf := make([]byte, SignupTokenLength)
	max := big.NewInt(int64(len(signupTokenAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate signup token: %w", err)
		}
		buf[i] = signupTokenAlphabet[n.Int64()]
	}
	return string(buf), nil
}

// NewOpaqueToken returns a 40-character hex key for the legacy token scheme.
func NewOpaqueToken() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate opaque token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
