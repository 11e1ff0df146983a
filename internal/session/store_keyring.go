package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "boxoffice"

// KeyringStore keeps the session in the OS keychain/credential manager.
// Credential and profile share one entry so they are written and removed
// as a unit.
type KeyringStore struct {
	service string
	key     string
}

// NewKeyringStore creates a keychain-backed store for the given variant
func NewKeyringStore(variant string) *KeyringStore {
	return &KeyringStore{
		service: keyringService,
		key:     fmt.Sprintf("session-%s", variant),
	}
}

func (k *KeyringStore) Read() (Session, bool, error) {
	secret, err := keyring.Get(k.service, k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return Session{}, false, nil
		}
		return Session{}, false, fmt.Errorf("failed to load session: %w", err)
	}

	s, err := decodeSession([]byte(secret))
	if err != nil {
		return Session{}, false, err
	}
	return s, true, nil
}

func (k *KeyringStore) Write(s Session) error {
	data, err := encodeSession(s)
	if err != nil {
		return err
	}

	if err := keyring.Set(k.service, k.key, string(data)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (k *KeyringStore) Clear() error {
	if err := keyring.Delete(k.service, k.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already cleared
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
