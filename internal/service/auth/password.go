package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a login attempt against the hash stored for the
// account.
type PasswordVerifier interface {
	// Compare returns nil only when password matches hashedPassword.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier checks passwords against the bcrypt hashes the user store
// writes at registration and on password change.
type BcryptVerifier struct{}

var _ PasswordVerifier = BcryptVerifier{}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

// Compare returns bcrypt.ErrMismatchedHashAndPassword for a wrong password and
// another bcrypt error when hashedPassword is not a bcrypt hash.
func (BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
