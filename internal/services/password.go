package services

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultPepper is the application-wide suffix mixed into fingerprints.
const DefaultPepper = "salt_key_elyf"

var errPasswordMismatch = errors.New("password mismatch")

// PasswordHasher turns passwords into stored credentials and checks them.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}

// Fingerprint is the lowercase hex SHA-256 of password followed by pepper.
// It is deterministic and not salted per user.
func Fingerprint(password, pepper string) string {
	sum := sha256.Sum256([]byte(password + pepper))
	return hex.EncodeToString(sum[:])
}

// FingerprintHasher stores Fingerprint(password, pepper). It is compatible with
// credentials written by the storefront's existing accounts.
type FingerprintHasher struct {
	pepper string
}

func NewFingerprintHasher(pepper string) *FingerprintHasher {
	return &FingerprintHasher{pepper: pepper}
}

func (h *FingerprintHasher) Hash(password string) (string, error) {
	return Fingerprint(password, h.pepper), nil
}

func (h *FingerprintHasher) Compare(hash, password string) error {
	if subtle.ConstantTimeCompare([]byte(hash), []byte(Fingerprint(password, h.pepper))) != 1 {
		return errPasswordMismatch
	}
	return nil
}

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// NewPasswordHasher picks the hasher for scheme ("fingerprint" or "bcrypt").
func NewPasswordHasher(scheme, pepper string) (PasswordHasher, error) {
	switch scheme {
	case "", "fingerprint":
		return NewFingerprintHasher(pepper), nil
	case "bcrypt":
		return NewBcryptHasher(0), nil
	default:
		return nil, errors.New("unknown password scheme " + scheme)
	}
}
