package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PolicyError reports a password that fails one of the composition rules.
// The Reason names the unmet rule and is safe to return to clients.
type PolicyError struct {
	Reason string
}

func (e *PolicyError) Error() string {
	return fmt.Sprintf("weak password: %s", e.Reason)
}

const minPasswordLength = 8

func isSpecial(c byte) bool {
	return c == '!' || c == '@' || c == '#' || c == '$'
}

// ValidatePassword checks the composition rules for a candidate password:
// at least 8 characters drawn only from letters, digits and !@#$, with at
// least one lowercase letter, one uppercase letter, one digit and one of
// the special characters. The first violated rule is reported.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLength {
		return &PolicyError{Reason: "password must be at least 8 characters long"}
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for i := 0; i < len(password); i++ {
		c := password[i]
		switch {
		case c >= 'a' && c <= 'z':
			hasLower = true
		case c >= 'A' && c <= 'Z':
			hasUpper = true
		case c >= '0' && c <= '9':
			hasDigit = true
		case isSpecial(c):
			hasSpecial = true
		default:
			return &PolicyError{Reason: "password may only contain letters, digits and the special characters !@#$"}
		}
	}

	if !hasLower {
		return &PolicyError{Reason: "password must contain at least one lowercase letter"}
	}
	if !hasUpper {
		return &PolicyError{Reason: "password must contain at least one uppercase letter"}
	}
	if !hasDigit {
		return &PolicyError{Reason: "password must contain at least one digit"}
	}
	if !hasSpecial {
		return &PolicyError{Reason: "password must contain at least one special character !@#$"}
	}

	return nil
}

// HashPassword produces a salted bcrypt digest of the plaintext password.
// Each call salts independently, so digests for the same input differ.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored digest.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
