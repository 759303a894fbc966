// Package identity persists per-room-code credentials so a user can resume
// the same participant identity across sessions.
package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Credentials is what a client remembers about its membership in one room.
type Credentials struct {
	ParticipantId string `json:"participant_id"`
	UserName      string `json:"user_name"`
	Language      string `json:"language"`
}

// Store looks up, saves and removes credentials keyed by room code.
type Store interface {
	Lookup(roomCode string) (Credentials, bool)
	Save(roomCode string, creds Credentials) error
	Remove(roomCode string) error
}

// FileCache is a Store backed by a single JSON file.
type FileCache struct {
	mu   sync.Mutex
	path string
}

func NewFileCache(path string) *FileCache {
	return &FileCache{path: path}
}

// DefaultPath places the cache under the user's config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "babelroom", "credentials.json"), nil
}

func (c *FileCache) Lookup(roomCode string) (Credentials, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load()
	if err != nil {
		return Credentials{}, false
	}

	creds, ok := all[roomCode]
	return creds, ok
}

func (c *FileCache) Save(roomCode string, creds Credentials) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load()
	if err != nil {
		return err
	}

	all[roomCode] = creds
	return c.write(all)
}

func (c *FileCache) Remove(roomCode string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load()
	if err != nil {
		return err
	}

	if _, ok := all[roomCode]; !ok {
		return nil
	}

	delete(all, roomCode)
	return c.write(all)
}

func (c *FileCache) load() (map[string]Credentials, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string]Credentials), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}

	all := make(map[string]Credentials)
	if err := json.Unmarshal(data, &all); err != nil {
		// a corrupt cache is treated as empty rather than fatal
		return make(map[string]Credentials), nil
	}

	return all, nil
}

func (c *FileCache) write(all map[string]Credentials) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}

	return os.WriteFile(c.path, data, 0o600)
}
