package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPasswordConfig(t *testing.T) {
	tests := []struct {
		name     string
		cost     string
		pepper   string
		wantCost int
		wantErr  bool
	}{
		{name: "default cost", cost: "", wantCost: 12},
		{name: "minimum cost", cost: "10", wantCost: 10},
		{name: "maximum cost with pepper", cost: "14", pepper: "p", wantCost: 14},
		{name: "too low", cost: "9", wantErr: true},
		{name: "too high", cost: "15", wantErr: true},
		{name: "invalid", cost: "abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BCRYPT_COST", tt.cost)
			t.Setenv("PASSWORD_PEPPER", tt.pepper)

			cfg, err := NewPasswordConfig()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, cfg.BcryptCost)
			assert.Equal(t, tt.pepper, cfg.Pepper)
		})
	}
}

func TestPasswordConfig_HashAndVerify(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10}

	hash, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, strings.HasPrefix(hash, "$2"))

	assert.True(t, cfg.VerifyPassword("correct horse", hash))
	assert.False(t, cfg.VerifyPassword("wrong horse", hash))
	assert.False(t, cfg.VerifyPassword("correct horse", ""))

	other, err := cfg.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salts differ")
}

func TestPasswordConfig_Pepper(t *testing.T) {
	peppered := &PasswordConfig{BcryptCost: 10, Pepper: "pepper-1"}
	hash, err := peppered.HashPassword("password123")
	require.NoError(t, err)

	assert.True(t, peppered.VerifyPassword("password123", hash))
	assert.False(t, (&PasswordConfig{BcryptCost: 10}).VerifyPassword("password123", hash))
	assert.False(t, (&PasswordConfig{BcryptCost: 10, Pepper: "pepper-2"}).VerifyPassword("password123", hash))
}

func TestPasswordConfig_CheckPassword(t *testing.T) {
	cfg := &PasswordConfig{BcryptCost: 10, Pepper: strings.Repeat("p", 8)}

	assert.Error(t, cfg.CheckPassword("short"))
	assert.NoError(t, cfg.CheckPassword("long enough"))
	assert.NoError(t, cfg.CheckPassword(strings.Repeat("a", 64)))
	assert.ErrorIs(t, cfg.CheckPassword(strings.Repeat("a", 65)), ErrPasswordTooLong)
}
