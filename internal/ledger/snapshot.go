package ledger

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Snapshots are whole-file JSON dumps. The only contract is that they
// round-trip; writes go through a temp file and a rename so a crash
// mid-flush never leaves a truncated snapshot behind.

func loadSnapshot(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, v)
}

// WriteSnapshot atomically replaces the file at path with the JSON encoding
// of v. Shared by the flagged-post store and the upvoter state.
func WriteSnapshot(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSnapshot reads the JSON file at path into v. A missing file is not an
// error: the caller starts from its zero state.
func LoadSnapshot(path string, v any) error {
	return loadSnapshot(path, v)
}

func (l *Ledger) usersPath() string {
	return filepath.Join(l.Config.DataDir, "users.json")
}

func (l *Ledger) flush() error {
	l.mu.Lock()
	if !l.dirty {
		l.mu.Unlock()
		return nil
	}
	data, err := json.Marshal(l.accounts)
	l.dirty = false
	l.mu.Unlock()
	if err != nil {
		return err
	}

	path := l.usersPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
