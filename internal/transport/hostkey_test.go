package transport

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndLoadHostKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host_key")

	require.NoError(t, GenerateHostKey(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	signer, err := LoadHostKey(path)
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519", signer.PublicKey().Type())
}

func TestLoadHostKeyMissingFile(t *testing.T) {
	_, err := LoadHostKey(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestLoadOrGenerateHostKeyIsStable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host_key")

	first, err := LoadOrGenerateHostKey(path)
	require.NoError(t, err)

	second, err := LoadOrGenerateHostKey(path)
	require.NoError(t, err)

	assert.Equal(t, first.PublicKey().Marshal(), second.PublicKey().Marshal())
}
