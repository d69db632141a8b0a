package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Keys used in the local state file.
const (
	CartKey      = "ecommerce_cart_v1"
	LastOrderKey = "ecommerce_last_order_v1"
	TokenKey     = "ecommerce_token_v1"
)

// LocalStore is a small JSON-file key/value store. A missing file reads as
// empty.
type LocalStore struct {
	mu   sync.Mutex
	path string
}

func NewLocalStore(path string) *LocalStore {
	return &LocalStore{path: path}
}

// DefaultStatePath is ~/.config/shopctl/state.json, or the working
// directory when no config dir is available.
func DefaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "shopctl-state.json"
	}
	return filepath.Join(dir, "shopctl", "state.json")
}

func (s *LocalStore) read() (map[string]json.RawMessage, error) {
	data := make(map[string]json.RawMessage)
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return data, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read local state: %w", err)
	}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse local state %s: %w", s.path, err)
	}
	return data, nil
}

func (s *LocalStore) write(data map[string]json.RawMessage) error {
	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("failed to write local state: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Get decodes the value under key into v. It reports false when the key is
// absent.
func (s *LocalStore) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return false, err
	}
	raw, ok := data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return true, nil
}

func (s *LocalStore) Set(key string, v any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	data[key] = raw
	return s.write(data)
}

func (s *LocalStore) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return s.write(data)
}
