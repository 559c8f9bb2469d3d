package client

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// TokenStore holds the opaque guest-cart token, the one piece of state the
// client persists. The token is written once, on first use, and deleted
// when a transfer retires the guest cart.
type TokenStore interface {
	// Current returns the stored token, or "" when none exists.
	Current() (string, error)
	// Ensure returns the stored token, minting and persisting one first if
	// none exists.
	Ensure() (string, error)
	// Retire deletes the token.
	Retire() error
}

// FileTokenStore keeps the guest token in a small file, the CLI equivalent
// of browser storage.
type FileTokenStore struct {
	Path string
	mu   sync.Mutex
}

// NewFileTokenStore stores the token at path, defaulting to
// guest_token under the user cache dir.
func NewFileTokenStore(path string) (*FileTokenStore, error) {
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "storefront", "guest_token")
	}
	return &FileTokenStore{Path: path}, nil
}

func (s *FileTokenStore) Current() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

func (s *FileTokenStore) read() (string, error) {
	data, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *FileTokenStore) Ensure() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, err := s.read()
	if err != nil || token != "" {
		return token, err
	}
	token = uuid.NewString()
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(s.Path, []byte(token+"\n"), 0o600); err != nil {
		return "", err
	}
	return token, nil
}

func (s *FileTokenStore) Retire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := os.Remove(s.Path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// MemoryTokenStore is the in-process TokenStore used in tests.
type MemoryTokenStore struct {
	mu    sync.Mutex
	token string
}

func (s *MemoryTokenStore) Current() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemoryTokenStore) Ensure() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.token == "" {
		s.token = uuid.NewString()
	}
	return s.token, nil
}

func (s *MemoryTokenStore) Retire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}
