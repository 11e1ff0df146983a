package session

import (
	"fmt"
	"path/filepath"
)

// OpenStore creates the store backend named by kind ("file", "keyring",
// "sqlite" or "memory") for variant. An empty path selects the per-user
// default location for file-based backends.
func OpenStore(kind, path, variant string) (Store, error) {
	switch kind {
	case "memory":
		return NewMemoryStore(), nil
	case "keyring":
		return NewKeyringStore(variant), nil
	case "file", "":
		if path == "" {
			p, err := DefaultPath(variant + "-session.json")
			if err != nil {
				return nil, err
			}
			path = p
		}
		return NewFileStore(path), nil
	case "sqlite":
		if path == "" {
			p, err := DefaultPath("sessions.db")
			if err != nil {
				return nil, err
			}
			path = p
		}
		if err := ensureDir(filepath.Dir(path)); err != nil {
			return nil, err
		}
		return OpenSQLiteStore(path, variant)
	default:
		return nil, fmt.Errorf("unknown session store %q", kind)
	}
}
