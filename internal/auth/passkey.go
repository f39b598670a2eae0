// Package auth implements the administrator credential check and the session
// tokens handed out after a successful check.
package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// PasskeyVerifier compares a supplied passkey against a single configured
// secret. When a bcrypt hash is configured it takes precedence over the
// plain value.
type PasskeyVerifier struct {
	passkey string
	hash    string
}

func NewPasskeyVerifier(passkey, hash string) *PasskeyVerifier {
	return &PasskeyVerifier{
		passkey: passkey,
		hash:    hash,
	}
}

// Verify reports whether supplied matches the configured secret. An empty
// supplied value never matches.
func (v *PasskeyVerifier) Verify(supplied string) bool {
	if supplied == "" {
		return false
	}

	if v.hash != "" {
		return bcrypt.CompareHashAndPassword([]byte(v.hash), []byte(supplied)) == nil
	}

	if v.passkey == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(v.passkey), []byte(supplied)) == 1
}

// HashPasskey produces a bcrypt hash suitable for the passkey_hash setting.
func HashPasskey(passkey string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(passkey), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
