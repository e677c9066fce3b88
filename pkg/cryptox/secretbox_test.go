package cryptox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSecretBox(t *testing.T) {
	box, err := NewSecretBox([]byte("test-master-key"))
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		sealed, err := box.Seal("JBSWY3DPEHPK3PXP")
		require.NoError(t, err)
		require.NotContains(t, sealed, "JBSWY3DPEHPK3PXP")

		opened, err := box.Open(sealed)
		require.NoError(t, err)
		require.Equal(t, "JBSWY3DPEHPK3PXP", opened)
	})

	t.Run("random nonce per seal", func(t *testing.T) {
		a, err := box.Seal("same")
		require.NoError(t, err)
		b, err := box.Seal("same")
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("wrong key", func(t *testing.T) {
		sealed, err := box.Seal("secret")
		require.NoError(t, err)

		other, err := NewSecretBox([]byte("another-key"))
		require.NoError(t, err)
		_, err = other.Open(sealed)
		require.ErrorIs(t, err, ErrDecrypt)
	})

	t.Run("garbage", func(t *testing.T) {
		for _, in := range []string{"", "not base64!", "AAAA"} {
			_, err := box.Open(in)
			require.ErrorIs(t, err, ErrDecrypt, "input %q", in)
		}
	})

	_, err = NewSecretBox(nil)
	require.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, a, 43)

	b, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, a, b)

	_, err = GenerateToken(0)
	require.Error(t, err)
}

func TestLoadSecretFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := LoadSecretFile(path)
	require.NoError(t, err)
	require.Len(t, first, 43)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	second, err := LoadSecretFile(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	empty := filepath.Join(t.TempDir(), "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))
	_, err = LoadSecretFile(empty)
	require.Error(t, err)
}
