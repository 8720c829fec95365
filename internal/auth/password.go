package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"qna/internal/config"
)

// PasswordHasher turns a secret into its stored form and checks a supplied
// secret against it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Matches(stored, supplied string) bool
}

// PlainHasher stores passwords verbatim and compares them byte for byte.
type PlainHasher struct{}

func (PlainHasher) Hash(password string) (string, error) { return password, nil }

func (PlainHasher) Matches(stored, supplied string) bool { return stored == supplied }

// ErrPasswordTooLong is returned by hashers that cannot store the whole
// password; bcrypt only uses the first 72 bytes.
var ErrPasswordTooLong = errors.New("password too long")

type BcryptHasher struct {
	Cost int
}

func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(b), nil
}

func (BcryptHasher) Matches(stored, supplied string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)) == nil
}

// NewPasswordHasher picks the hasher for a PASSWORD_HASHING mode.
func NewPasswordHasher(mode string) (PasswordHasher, error) {
	switch mode {
	case config.HashingPlain, "":
		return PlainHasher{}, nil
	case config.HashingBcrypt:
		return BcryptHasher{}, nil
	default:
		return nil, fmt.Errorf("unknown password hashing mode %q", mode)
	}
}
