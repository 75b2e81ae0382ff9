// Package identity caches the player's leaderboard name between runs.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// StorageKey is the key the name is stored under
const StorageKey = "ecoRoamUsername"

// DefaultFileName is used when no path is configured
const DefaultFileName = ".ecoroam_identity.json"

// ErrNoIdentity is returned by Load when no name has been saved
var ErrNoIdentity = errors.New("no stored identity")

// Store is a small JSON key-value file holding the cached name
type Store struct {
	path string
	mu   sync.Mutex
	name string
}

// NewStore opens the store at path, loading any saved name. A missing or
// unreadable file simply starts empty.
func NewStore(path string) *Store {
	if path == "" {
		path = DefaultFileName
	}
	s := &Store{path: path}
	if name, err := s.Load(); err == nil {
		s.name = name
		log.Printf("📂 Loaded player identity: %s", name)
	} else if !errors.Is(err, ErrNoIdentity) {
		log.Printf("⚠️ Failed to load identity: %v", err)
	}
	return s
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// Load reads the name from disk
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNoIdentity
	}
	if err != nil {
		return "", err
	}

	var values map[string]string
	if err := json.Unmarshal(data, &values); err != nil {
		return "", fmt.Errorf("parse %s: %w", s.path, err)
	}
	name := strings.TrimSpace(values[StorageKey])
	if name == "" {
		return "", ErrNoIdentity
	}
	return name, nil
}

// Name returns the cached name
func (s *Store) Name() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.name != ""
}

// Save persists name for future runs
func (s *Store) Save(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("empty name")
	}

	jsonData, err := json.MarshalIndent(map[string]string{StorageKey: name}, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(s.path, jsonData, 0600); err != nil {
		return fmt.Errorf("save identity: %w", err)
	}

	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	log.Printf("💾 Player identity saved: %s", name)
	return nil
}

// Clear forgets the stored name
func (s *Store) Clear() error {
	s.mu.Lock()
	s.name = ""
	s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
