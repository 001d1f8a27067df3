package service

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt ignores input past 72 bytes; longer passwords are rejected instead.
const maxPasswordBytes = 72

var (
	bcryptCost    = bcrypt.DefaultCost
	compareDigest = bcrypt.CompareHashAndPassword
)

var (
	dummyOnce   sync.Once
	dummyDigest []byte
)

// missDigest is compared against when no account matches, so a failed
// lookup costs one bcrypt round like a wrong password does.
func missDigest() []byte {
	dummyOnce.Do(func() {
		dummyDigest, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), bcryptCost)
	})
	return dummyDigest
}

func HashPassword(password string) (string, error) {
	if password == "" || len(password) > maxPasswordBytes {
		return "", fmt.Errorf("%w: password must be 1-%d bytes", ErrValidation, maxPasswordBytes)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// CheckPassword re-hashes password with the digest's salt and compares in constant time.
func CheckPassword(hash, password string) bool {
	return compareDigest([]byte(hash), []byte(password)) == nil
}
