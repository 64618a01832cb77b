// ABOUTME: JSON file session backend stored in the XDG config directory
// ABOUTME: Rewrites the whole file through a temp file so saves are atomic

package session

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// sessionFileName is the file holding session values inside the config dir.
const sessionFileName = "session.json"

// FileBackend persists session values as a flat JSON object on disk.
type FileBackend struct {
	configDir string
	mu        sync.Mutex
}

// NewFileBackend creates a backend writing to configDir/session.json.
func NewFileBackend(configDir string) *FileBackend {
	return &FileBackend{configDir: configDir}
}

// DefaultConfigDir returns $XDG_CONFIG_HOME/changex, or ~/.config/changex
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "changex")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "changex")
}

// Path returns the session file location.
func (f *FileBackend) Path() string {
	return filepath.Join(f.configDir, sessionFileName)
}

func (f *FileBackend) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.load()
	if err != nil {
		return "", err
	}
	val, ok := values[key]
	if !ok {
		return "", ErrNotFound
	}
	return val, nil
}

func (f *FileBackend) SetMany(_ context.Context, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.load()
	if err != nil {
		return err
	}
	for k, v := range values {
		current[k] = v
	}
	return f.save(current)
}

func (f *FileBackend) Delete(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := f.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(current, k)
	}
	return f.save(current)
}

// load reads the file. A missing or corrupt file reads as empty.
func (f *FileBackend) load() (map[string]string, error) {
	data, err := os.ReadFile(f.Path())
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		// Invalid JSON, start fresh
		return map[string]string{}, nil
	}
	return values, nil
}

func (f *FileBackend) save(values map[string]string) error {
	if err := os.MkdirAll(f.configDir, 0700); err != nil {
		return err
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.configDir, sessionFileName+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, f.Path())
}
