package cli

import (
	"errors"
	"path/filepath"

	"github.com/99designs/keyring"
)

// ServiceName identifies our keychain/credential store namespace.
const ServiceName = "query-genie"

const keySessionToken = "session_token"

// ErrNoSession is returned when no session token has been saved.
var ErrNoSession = errors.New("no saved session, run: querygenie connect")

// TokenStore keeps the session token between CLI invocations.
type TokenStore struct {
	ring keyring.Keyring
}

// OpenTokenStore opens the OS keyring. Systems without a native keyring fall
// back to an encrypted file under the config directory.
func OpenTokenStore(configDir, filePassword string) (*TokenStore, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: ServiceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.WinCredBackend,
			keyring.SecretServiceBackend,
			keyring.KWalletBackend,
			keyring.FileBackend,
		},
		KeychainTrustApplication: true,
		WinCredPrefix:            ServiceName,
		FileDir:                  filepath.Join(configDir, "keyring"),
		FilePasswordFunc:         keyring.FixedStringPrompt(filePassword),
	})
	if err != nil {
		return nil, err
	}
	return NewTokenStore(ring), nil
}

func NewTokenStore(ring keyring.Keyring) *TokenStore {
	return &TokenStore{ring: ring}
}

func (s *TokenStore) Save(token string) error {
	return s.ring.Set(keyring.Item{
		Key:         keySessionToken,
		Data:        []byte(token),
		Label:       "query-genie session",
		Description: "session token for the query-genie server",
	})
}

func (s *TokenStore) Load() (string, error) {
	item, err := s.ring.Get(keySessionToken)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNoSession
	}
	if err != nil {
		return "", err
	}
	if len(item.Data) == 0 {
		return "", ErrNoSession
	}
	return string(item.Data), nil
}

func (s *TokenStore) Clear() error {
	err := s.ring.Remove(keySessionToken)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil
	}
	return err
}
