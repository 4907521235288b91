package config

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/sarjann/tiptap-cli/internal/fsutil"
	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/paths"
)

const schemaURL = "https://template.tiptap.dev/schema.json"

// Store persists components.json for a project.
type Store struct {
	lockDir string
}

func NewStore() (*Store, error) {
	dir, err := paths.LockDir()
	if err != nil {
		return nil, err
	}
	return &Store{lockDir: dir}, nil
}

func (s *Store) Path(cwd string) string {
	return filepath.Join(cwd, model.ConfigFileName)
}

func (s *Store) Save(ctx context.Context, cwd string, raw model.RawConfig) error {
	if raw.Schema == "" {
		raw.Schema = schemaURL
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode components.json: %w", err)
	}
	path := s.Path(cwd)
	return fsutil.WithFileLock(ctx, s.lockDir, path, func() error {
		if err := fsutil.AtomicWriteFile(path, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("write components.json: %w", err)
		}
		return nil
	})
}
