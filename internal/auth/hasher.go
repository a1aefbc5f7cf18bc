// Package auth authenticates the site owner: password hashing, login rate
// limiting, the persisted session and its CSRF token, and credential rotation.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/inkstand/internal/config"
	"github.com/prn-tf/inkstand/internal/pkg/crypto"
)

// Hasher algorithms.
const (
	HasherBcrypt = "bcrypt"
	HasherSHA256 = "sha256"
)

// BcryptMaxPasswordBytes is the longest password bcrypt will hash.
const BcryptMaxPasswordBytes = 72

// Hasher is a one-way password transform.
type Hasher interface {
	// Hash returns the stored form of password.
	Hash(ctx context.Context, password string) (string, error)

	// Verify reports whether password matches hash. A mismatch is not an error.
	Verify(ctx context.Context, password, hash string) (bool, error)
}

// SaltedSHA256Hasher stores hex(sha256(password + salt)).
// It is the format of accounts created before bcrypt was introduced.
type SaltedSHA256Hasher struct {
	Salt string
}

// Hash implements Hasher.
func (h SaltedSHA256Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return crypto.SaltedSHA256(password, h.Salt), nil
}

// Verify implements Hasher.
func (h SaltedSHA256Hasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	return crypto.EqualStrings(crypto.SaltedSHA256(password, h.Salt), strings.ToLower(hash)), nil
}

// BcryptHasher stores bcrypt hashes.
type BcryptHasher struct {
	Cost int
}

// Hash implements Hasher.
func (h BcryptHasher) Hash(ctx context.Context, password string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// MaxPasswordBytes returns the input limit of bcrypt.
func (h BcryptHasher) MaxPasswordBytes() int {
	return BcryptMaxPasswordBytes
}

// Verify implements Hasher.
func (h BcryptHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to verify password: %w", err)
	}
	return true, nil
}

// MultiHasher hashes with Primary and verifies either format, chosen by the
// shape of the stored hash.
type MultiHasher struct {
	Primary Hasher
	Bcrypt  BcryptHasher
	Legacy  SaltedSHA256Hasher
}

// NewHasher builds the hasher selected by cfg.Hasher.
func NewHasher(cfg config.AuthConfig) (*MultiHasher, error) {
	h := &MultiHasher{
		Bcrypt: BcryptHasher{Cost: cfg.BcryptCost},
		Legacy: SaltedSHA256Hasher{Salt: cfg.PasswordSalt},
	}
	switch cfg.Hasher {
	case HasherBcrypt, "":
		h.Primary = h.Bcrypt
	case HasherSHA256:
		h.Primary = h.Legacy
	default:
		return nil, fmt.Errorf("unsupported password hasher: %q", cfg.Hasher)
	}
	return h, nil
}

// Hash implements Hasher.
func (h *MultiHasher) Hash(ctx context.Context, password string) (string, error) {
	return h.Primary.Hash(ctx, password)
}

// Verify implements Hasher.
func (h *MultiHasher) Verify(ctx context.Context, password, hash string) (bool, error) {
	if isBcrypt(hash) {
		return h.Bcrypt.Verify(ctx, password, hash)
	}
	if crypto.ValidateSHA256(hash) {
		return h.Legacy.Verify(ctx, password, hash)
	}
	return false, fmt.Errorf("unrecognized password hash format")
}

// MaxPasswordBytes returns the limit of Primary, or 0 when it has none.
func (h *MultiHasher) MaxPasswordBytes() int {
	return passwordLimit(h.Primary)
}

// passwordLimit returns the byte limit h places on new passwords, 0 for none.
func passwordLimit(h Hasher) int {
	if l, ok := h.(interface{ MaxPasswordBytes() int }); ok {
		return l.MaxPasswordBytes()
	}
	return 0
}

func isBcrypt(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}
