package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "motctl"
	sessionKey  = "session"
)

var errNotLoggedIn = errors.New("not logged in, run 'motctl login' first")

// session is what login leaves in the keyring.
type session struct {
	Server string `json:"server"`
	Email  string `json:"email"`
	Token  string `json:"token"`
}

// openKeyring is swapped for an in-memory ring in tests.
var openKeyring = func() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/motctl/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("motctl-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

func persistSession(s session) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := ring.Set(keyring.Item{Key: sessionKey, Data: data, Label: "motctl session"}); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func loadSession() (session, error) {
	var s session
	ring, err := openKeyring()
	if err != nil {
		return s, err
	}
	item, err := ring.Get(sessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return s, errNotLoggedIn
	}
	if err != nil {
		return s, fmt.Errorf("reading session: %w", err)
	}
	if err := json.Unmarshal(item.Data, &s); err != nil {
		return s, fmt.Errorf("corrupt session: %w", err)
	}
	return s, nil
}

// clearSession removes the stored session. A missing one is not an error.
func clearSession() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}
	if err := ring.Remove(sessionKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}
