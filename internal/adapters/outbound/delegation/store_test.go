package delegation

import (
	"crypto/ed25519"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sufield/yummy/internal/ports"
)

func TestStore_MissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	s, err := NewStore(filepath.Join(t.TempDir(), "nested", "session.yaml"))
	require.NoError(t, err)

	sess, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, sess.key)
	assert.False(t, sess.hasDelegation())
}

func TestStore_SaveLoad(t *testing.T) {
	t.Parallel()

	// Arrange
	s, err := NewStore(filepath.Join(t.TempDir(), "nested", "session.yaml"))
	require.NoError(t, err)
	key, err := newSessionKey()
	require.NoError(t, err)
	want := session{
		key:        key,
		chain:      []byte{1, 2, 3},
		userKey:    []byte{4, 5},
		expiration: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}

	// Act
	require.NoError(t, s.Save(want))
	got, err := s.Load()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, ed25519.PrivateKey(want.key), got.key)
	assert.Equal(t, want.chain, got.chain)
	assert.Equal(t, want.userKey, got.userKey)
	assert.True(t, want.expiration.Equal(got.expiration))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(s.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestStore_Corrupt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "session_key: [unclosed"},
		{"short seed", "session_key: AAEC\n"},
		{"bad chain", "delegation:\n  chain: '!!!'\n  user_public_key: AAEC\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "session.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o600))
			s, err := NewStore(path)
			require.NoError(t, err)

			_, err = s.Load()

			assert.ErrorIs(t, err, ports.ErrStoreCorrupt)
		})
	}
}
