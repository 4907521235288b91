package adapters

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/sarjann/tiptap-cli/internal/fsutil"
	"github.com/sarjann/tiptap-cli/internal/paths"
)

// Dirs holds where edited config files are backed up and locked.
// Empty fields disable the corresponding step.
type Dirs struct {
	Backup string
	Lock   string
}

func DefaultDirs() (Dirs, error) {
	backup, err := paths.BackupDir()
	if err != nil {
		return Dirs{}, err
	}
	lock, err := paths.LockDir()
	if err != nil {
		return Dirs{}, err
	}
	return Dirs{Backup: backup, Lock: lock}, nil
}

// configFile is a config file edited with read-modify-write under a lock.
type configFile struct {
	name string
	path string
	dirs Dirs
}

// read returns nil data when the file does not exist.
func (f configFile) read() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.name, err)
	}
	return data, nil
}

// update rewrites the file with edit's result. A nil result leaves the file alone.
func (f configFile) update(ctx context.Context, edit func(old []byte) ([]byte, error)) error {
	apply := func() error {
		old, err := f.read()
		if err != nil {
			return err
		}
		data, err := edit(old)
		if err != nil {
			return err
		}
		if data == nil {
			return nil
		}
		if old != nil && f.dirs.Backup != "" {
			if _, err := fsutil.BackupFile(f.path, f.dirs.Backup); err != nil {
				return err
			}
		}
		if err := fsutil.AtomicWriteFile(f.path, data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		return nil
	}
	if f.dirs.Lock == "" {
		return apply()
	}
	return fsutil.WithFileLock(ctx, f.dirs.Lock, f.path, apply)
}

func toMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok && m != nil
}

// getNestedMap navigates a decoded document by key path.
func getNestedMap(raw map[string]any, keys []string) map[string]any {
	current := raw
	for _, key := range keys {
		m, ok := toMap(current[key])
		if !ok {
			return nil
		}
		current = m
	}
	return current
}

// setNestedMap sets a value at a nested key path, creating intermediate maps as needed.
func setNestedMap(raw map[string]any, keys []string, value map[string]any) {
	current := raw
	for i, key := range keys {
		if i == len(keys)-1 {
			current[key] = value
			return
		}
		next, ok := toMap(current[key])
		if !ok {
			next = map[string]any{}
			current[key] = next
		}
		current = next
	}
}
