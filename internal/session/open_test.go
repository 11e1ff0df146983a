package session

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestOpenStore(t *testing.T) {
	keyring.MockInit()
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		kind     string
		path     string
		wantType Store
		wantFile string
	}{
		{kind: "memory", wantType: &MemoryStore{}},
		{kind: "keyring", wantType: &KeyringStore{}},
		{kind: "", wantType: &FileStore{}, wantFile: "storefront-session.json"},
		{kind: "file", path: filepath.Join(t.TempDir(), "s.json"), wantType: &FileStore{}, wantFile: "s.json"},
		{kind: "sqlite", wantType: &SQLiteStore{}},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			store, err := OpenStore(tt.kind, tt.path, "storefront")
			require.NoError(t, err)
			assert.IsType(t, tt.wantType, store)

			if fs, ok := store.(*FileStore); ok {
				assert.Equal(t, tt.wantFile, filepath.Base(fs.Path()))
			}

			_, found, err := store.Read()
			require.NoError(t, err)
			assert.False(t, found)

			if sq, ok := store.(*SQLiteStore); ok {
				assert.NoError(t, sq.Close())
			}
		})
	}
}

func TestOpenStore_Unknown(t *testing.T) {
	_, err := OpenStore("redis", "", "storefront")
	assert.Error(t, err)
}

func TestVariantNamed(t *testing.T) {
	v, err := VariantNamed("console")
	require.NoError(t, err)
	assert.Equal(t, AdminRole, v.RequiredRole)

	v, err = VariantNamed("storefront")
	require.NoError(t, err)
	assert.Empty(t, v.RequiredRole)

	_, err = VariantNamed("backstage")
	assert.Error(t, err)
}
