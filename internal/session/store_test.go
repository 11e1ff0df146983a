package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func storeBackends(t *testing.T) map[string]Store {
	t.Helper()

	keyring.MockInit()

	sqliteStore, err := OpenSQLiteStore(":memory:", "storefront")
	require.NoError(t, err)
	t.Cleanup(func() { sqliteStore.Close() })

	return map[string]Store{
		"memory":  NewMemoryStore(),
		"file":    NewFileStore(filepath.Join(t.TempDir(), "session.json")),
		"keyring": NewKeyringStore("storefront"),
		"sqlite":  sqliteStore,
	}
}

func TestStores_EmptyReadIsNotAnError(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			s, ok, err := store.Read()
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Equal(t, Session{}, s)
		})
	}
}

func TestStores_WriteThenRead(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			want := adminSession()
			require.NoError(t, store.Write(want))

			got, ok, err := store.Read()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}
}

func TestStores_EmptyRolesSurvive(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			want := Session{
				Credential: "tok-empty",
				Profile:    UserProfile{ID: "7", Username: "nobody", Roles: []string{}},
			}
			require.NoError(t, store.Write(want))

			got, ok, err := store.Read()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, want, got)
			assert.NotNil(t, got.Profile.Roles)
		})
	}
}

func TestStores_OverwriteReplacesBothHalves(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Write(aliceSession()))
			require.NoError(t, store.Write(adminSession()))

			got, ok, err := store.Read()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, adminSession(), got)
		})
	}
}

func TestStores_ClearIsIdempotent(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Write(aliceSession()))
			require.NoError(t, store.Clear())

			_, ok, err := store.Read()
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, store.Clear())
		})
	}
}

func TestStores_RejectSessionWithoutCredential(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			incomplete := aliceSession()
			incomplete.Credential = ""

			assert.ErrorIs(t, store.Write(incomplete), ErrIncompleteSession)

			_, ok, err := store.Read()
			require.NoError(t, err)
			assert.False(t, ok)

			// An existing session is left in place
			require.NoError(t, store.Write(aliceSession()))
			assert.ErrorIs(t, store.Write(Session{}), ErrIncompleteSession)

			got, ok, err := store.Read()
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, aliceSession(), got)
		})
	}
}

func TestFileStore_MalformedData(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "not json", content: "{not json"},
		{name: "missing credential", content: `{"profile":{"id":"1","username":"alice","roles":[]}}`},
		{name: "wrong type", content: `{"credential":"tok","profile":{"roles":"admin"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "session.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0600))

			_, ok, err := NewFileStore(path).Read()
			assert.ErrorIs(t, err, ErrMalformedSession)
			assert.False(t, ok)
		})
	}
}

func TestFileStore_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "nested", "session.json"))

	require.NoError(t, store.Write(aliceSession()))
	require.NoError(t, store.Write(adminSession()))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session.json", entries[0].Name())

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestKeyringStore_MalformedEntry(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set(keyringService, "session-console", "garbage"))

	_, ok, err := NewKeyringStore("console").Read()
	assert.ErrorIs(t, err, ErrMalformedSession)
	assert.False(t, ok)
}

func TestSQLiteStore_VariantsAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	storefront, err := OpenSQLiteStore(path, "storefront")
	require.NoError(t, err)
	defer storefront.Close()

	console, err := OpenSQLiteStore(path, "console")
	require.NoError(t, err)
	defer console.Close()

	require.NoError(t, storefront.Write(aliceSession()))
	require.NoError(t, console.Write(adminSession()))
	require.NoError(t, storefront.Clear())

	_, ok, err := storefront.Read()
	require.NoError(t, err)
	assert.False(t, ok)

	got, ok, err := console.Read()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, adminSession(), got)
}
