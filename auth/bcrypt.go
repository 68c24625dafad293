package auth

import (
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// fallbackPasswordHash is compared against when the identifier resolves to
// no stored user, so unknown-email and wrong-password logins cost the same.
// Generated once at init from a throwaway password.
var fallbackPasswordHash string

func init() {
	h, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), passwordHashCost())
	if err != nil {
		panic("auth: unable to generate fallback password hash: " + err.Error())
	}
	fallbackPasswordHash = string(h)
}

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// CompareAgainstFallbackHash burns a bcrypt verification without ever
// succeeding. Call it on the unknown-identifier login path.
func CompareAgainstFallbackHash(password string) {
	_ = bcrypt.CompareHashAndPassword([]byte(fallbackPasswordHash), []byte(password))
}

// RandomPasswordHash is a temporary password
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
