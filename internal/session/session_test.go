package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetRemove(t *testing.T) {
	m := NewMemory()

	_, ok := m.Get(KeyLoggedInEmail)
	assert.False(t, ok)

	require.NoError(t, m.Set(KeyLoggedInEmail, "a@b.com"))
	v, ok := m.Get(KeyLoggedInEmail)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", v)

	require.NoError(t, m.Remove(KeyLoggedInEmail))
	_, ok = m.Get(KeyLoggedInEmail)
	assert.False(t, ok)
}

func TestMemory_ZeroValueUsable(t *testing.T) {
	var m Memory
	require.NoError(t, m.Set("k", "v"))
	v, _ := m.Get("k")
	assert.Equal(t, "v", v)
}

func TestFile_PersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.toml")

	f, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, f.Set(KeyLoggedInEmail, "a@b.com"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := Open(path)
	require.NoError(t, err)
	email, ok := SignedInEmail(reopened)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", email)

	require.NoError(t, reopened.Remove(KeyLoggedInEmail))
	again, err := Open(path)
	require.NoError(t, err)
	_, ok = SignedInEmail(again)
	assert.False(t, ok)
}

func TestFile_RemoveMissingKeyDoesNotWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	f, err := Open(path)
	require.NoError(t, err)

	require.NoError(t, f.Remove("nothing"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpen_DefaultPathUnderHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	f, err := Open("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local/state/coregym/session.toml"), f.Path())
}

func TestOpen_InvalidTOMLFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.toml")
	require.NoError(t, os.WriteFile(path, []byte("not = [valid"), 0o600))

	_, err := Open(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse session")
}

func TestSignedInEmail_BlankIsSignedOut(t *testing.T) {
	m := NewMemory()
	require.NoError(t, m.Set(KeyLoggedInEmail, "   "))
	_, ok := SignedInEmail(m)
	assert.False(t, ok)

	_, ok = SignedInEmail(nil)
	assert.False(t, ok)
}
