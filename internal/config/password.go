package config

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 8

// bcrypt ignores input past 72 bytes.
const maxBcryptInput = 72

// ErrPasswordTooLong is returned when password plus pepper exceeds bcrypt's input.
var ErrPasswordTooLong = errors.New("password is too long")

// PasswordConfig holds the bcrypt cost and optional pepper.
type PasswordConfig struct {
	BcryptCost int
	Pepper     string
}

// NewPasswordConfig reads BCRYPT_COST (default 12, range 10-14) and the
// optional PASSWORD_PEPPER.
func NewPasswordConfig() (*PasswordConfig, error) {
	cost, err := envInt("BCRYPT_COST", 12)
	if err != nil {
		return nil, err
	}

	cfg := &PasswordConfig{BcryptCost: cost, Pepper: envString("PASSWORD_PEPPER", "")}
	if cfg.BcryptCost < 10 || cfg.BcryptCost > 14 {
		return nil, fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", cfg.BcryptCost)
	}
	return cfg, nil
}

// CheckPassword rejects passwords that are too short, or too long to be
// hashed without truncation once peppered.
func (c *PasswordConfig) CheckPassword(pw string) error {
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if len(c.peppered(pw)) > maxBcryptInput {
		return ErrPasswordTooLong
	}
	return nil
}

// HashPassword hashes a peppered password with bcrypt.
func (c *PasswordConfig) HashPassword(pw string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(c.peppered(pw)), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword reports whether pw matches storedHash. An empty hash
// never matches.
func (c *PasswordConfig) VerifyPassword(pw, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(c.peppered(pw))) == nil
}

func (c *PasswordConfig) peppered(pw string) string {
	return pw + c.Pepper
}
