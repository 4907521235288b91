package secrets

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// ErrNotFound is returned by Get when no secret is stored.
var ErrNotFound = keyring.ErrNotFound

type Store interface {
	Set(scope, key, value string) error
	Get(scope, key string) (string, error)
	Delete(scope, key string) error
}

type KeyringStore struct {
	servicePrefix string
}

func NewKeyringStore() *KeyringStore {
	return &KeyringStore{servicePrefix: "tiptap-cli"}
}

func (s *KeyringStore) Set(scope, key, value string) error {
	if err := keyring.Set(s.service(scope), key, value); err != nil {
		return fmt.Errorf("set secret %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *KeyringStore) Get(scope, key string) (string, error) {
	v, err := keyring.Get(s.service(scope), key)
	if err != nil {
		return "", err
	}
	return v, nil
}

// Delete treats a missing secret as already deleted.
func (s *KeyringStore) Delete(scope, key string) error {
	err := keyring.Delete(s.service(scope), key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("delete secret %s/%s: %w", scope, key, err)
	}
	return nil
}

func (s *KeyringStore) service(scope string) string {
	return fmt.Sprintf("%s/%s", s.servicePrefix, scope)
}
