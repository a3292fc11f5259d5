package utils_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"trekora_back_end/internal/utils"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := utils.HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.Contains(t, hash, "$argon2id$")

	ok, err := utils.VerifyPassword("correct horse battery staple", hash)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = utils.VerifyPassword("mauvais mot de passe", hash)
	require.NoError(t, err)
	require.False(t, ok)
}

// TestVerifyPassword_bcrypt : les comptes importés de l'ancienne plateforme
// ont des hash bcrypt, ils doivent continuer à se connecter.
func TestVerifyPassword_bcrypt(t *testing.T) {
	legacy, err := bcrypt.GenerateFromPassword([]byte("ancien-mot-de-passe"), bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := utils.VerifyPassword("ancien-mot-de-passe", string(legacy))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = utils.VerifyPassword("pas-le-bon", string(legacy))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifyPassword_hashInvalide(t *testing.T) {
	_, err := utils.VerifyPassword("peu importe", "pas-un-hash")
	require.Error(t, err)
}
