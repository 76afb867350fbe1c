package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func testHasher() *Hasher {
	h := NewHasher("test-pepper")
	h.Memory = 1024
	h.Iterations = 1
	return h
}

func TestHasher_Hash(t *testing.T) {
	h := testHasher()

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

			parts := strings.Split(hash, "$")
			require.Len(t, parts, 6, "PHC hash should have 6 parts")
			require.NotEmpty(t, parts[4], "salt should not be empty")
			require.NotEmpty(t, parts[5], "hash should not be empty")

			require.NoError(t, h.Verify(tt.password, hash))
		})
	}
}

func TestHasher_UniqueSalts(t *testing.T) {
	h := testHasher()

	hash1, err := h.Hash("samepassword")
	require.NoError(t, err)
	hash2, err := h.Hash("samepassword")
	require.NoError(t, err)

	require.NotEqual(t, hash1, hash2, "hashes should differ due to unique salts")
	require.NoError(t, h.Verify("samepassword", hash1))
	require.NoError(t, h.Verify("samepassword", hash2))
}

func TestHasher_WrongPassword(t *testing.T) {
	h := testHasher()
	hash, err := h.Hash("correct-password")
	require.NoError(t, err)

	for _, wrong := range []string{"wrong-password", "Correct-Password", "correct-password ", "", "correct-passwor"} {
		t.Run(wrong, func(t *testing.T) {
			require.ErrorIs(t, h.Verify(wrong, hash), ErrPasswordMismatch)
		})
	}
}

func TestHasher_PepperMatters(t *testing.T) {
	h := testHasher()
	hash, err := h.Hash("secret")
	require.NoError(t, err)

	other := testHasher()
	other.Pepper = "another-pepper"
	require.ErrorIs(t, other.Verify("secret", hash), ErrPasswordMismatch)
}

func TestHasher_VerifyUsesEncodedParams(t *testing.T) {
	cheap := testHasher()
	hash, err := cheap.Hash("secret")
	require.NoError(t, err)

	// Raising the defaults must not break existing hashes.
	require.NoError(t, NewHasher("test-pepper").Verify("secret", hash))
}

func TestHasher_InvalidHashFormat(t *testing.T) {
	h := testHasher()

	tests := []struct {
		name        string
		invalidHash string
	}{
		{"empty hash", ""},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"missing parts", "$argon2id$v=19$m=19456"},
		{"malformed parameters", "$argon2id$v=19$invalid$c2FsdA$aGFzaA"},
		{"invalid base64 salt", "$argon2id$v=19$m=19456,t=2,p=1$!!!invalid!!!$aGFzaA"},
		{"invalid base64 hash", "$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$!!!invalid!!!"},
		{"wrong version", "$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := h.Verify("test-password", tt.invalidHash)
			require.Error(t, err)
			require.NotErrorIs(t, err, ErrPasswordMismatch)
		})
	}
}

func TestLoadOrCreatePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secrets", "pepper")

	created, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Len(t, created, 43)

	loaded, err := LoadOrCreatePepper(path)
	require.NoError(t, err)
	require.Equal(t, created, loaded, "existing pepper must be reused")

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadOrCreatePepper_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pepper")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0600))

	_, err := LoadOrCreatePepper(path)
	require.Error(t, err)
}
