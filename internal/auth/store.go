package auth

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/sarjann/tiptap-cli/internal/adapters"
	"github.com/sarjann/tiptap-cli/internal/pkgmgr"
	"github.com/sarjann/tiptap-cli/internal/secrets"
)

const (
	secretScope = "registry"
	secretKey   = "token"
)

// Store finds and persists the private registry token. Package manager
// config is authoritative; the OS keychain is a fallback copy.
type Store struct {
	runner  pkgmgr.Runner
	secrets secrets.Store
	dirs    adapters.Dirs
	log     logrus.FieldLogger
}

func NewStore(runner pkgmgr.Runner, secretStore secrets.Store, dirs adapters.Dirs, log logrus.FieldLogger) *Store {
	if runner == nil {
		runner = pkgmgr.ExecRunner{}
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Store{runner: runner, secrets: secretStore, dirs: dirs, log: log}
}

// GetToken returns the first token found for the project at cwd, or "".
// Unreadable locations are skipped.
func (s *Store) GetToken(ctx context.Context, cwd string) (string, error) {
	chain, err := adapters.ReadChain(pkgmgr.Detect(cwd), cwd, s.runner, s.dirs)
	if err != nil {
		return "", err
	}
	for _, a := range chain {
		token, err := a.ReadToken(ctx)
		if err != nil {
			s.log.WithField("source", a.Name()).WithError(err).Debug("token lookup failed")
			continue
		}
		if token != "" {
			s.log.WithField("source", a.Name()).Debug("registry token found")
			return token, nil
		}
	}
	if s.secrets == nil {
		return "", nil
	}
	token, err := s.secrets.Get(secretScope, secretKey)
	if err != nil {
		if !errors.Is(err, secrets.ErrNotFound) {
			s.log.WithError(err).Debug("keychain lookup failed")
		}
		return "", nil
	}
	return token, nil
}

// SaveToken stores token where the project's package manager reads it and
// returns a description of that location.
func (s *Store) SaveToken(ctx context.Context, token, cwd string) (string, error) {
	if token == "" {
		return "", errors.New("token is empty")
	}
	target := adapters.WriteTarget(ctx, pkgmgr.Detect(cwd), cwd, s.runner, s.dirs)
	if err := target.WriteToken(ctx, token); err != nil {
		fallback := adapters.ProjectNpmrc(cwd, s.dirs)
		if target.Path() == fallback.Path() {
			return "", fmt.Errorf("save token to %s: %w", target.Name(), err)
		}
		s.log.WithField("target", target.Name()).WithError(err).Warn("falling back to project .npmrc")
		if err := fallback.WriteToken(ctx, token); err != nil {
			return "", fmt.Errorf("save token to %s: %w", fallback.Name(), err)
		}
		target = fallback
	}
	if s.secrets != nil {
		if err := s.secrets.Set(secretScope, secretKey, token); err != nil {
			s.log.WithError(err).Warn("could not mirror token to keychain")
		}
	}
	return target.Name(), nil
}

// RemoveToken deletes the token from every location that holds one.
func (s *Store) RemoveToken(ctx context.Context, cwd string) ([]string, error) {
	chain, err := adapters.ReadChain(pkgmgr.Detect(cwd), cwd, s.runner, s.dirs)
	if err != nil {
		return nil, err
	}
	var removed []string
	var errs []error
	for _, a := range chain {
		token, err := a.ReadToken(ctx)
		if err != nil || token == "" {
			continue
		}
		if err := a.RemoveToken(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Name(), err))
			continue
		}
		removed = append(removed, a.Name())
	}
	if s.secrets != nil {
		if err := s.secrets.Delete(secretScope, secretKey); err != nil {
			errs = append(errs, err)
		}
	}
	return removed, errors.Join(errs...)
}

// MaskToken hides all but the edges of a token for display.
func MaskToken(s string) string {
	if len(s) <= 8 {
		return "****"
	}
	return s[:3] + "..." + s[len(s)-4:]
}
