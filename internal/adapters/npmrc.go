package adapters

import (
	"context"
	"strings"

	"github.com/sarjann/tiptap-cli/internal/model"
)

// NpmrcAdapter edits an .npmrc file line by line so comments and unrelated
// keys survive.
type NpmrcAdapter struct {
	file configFile
}

func NewNpmrcAdapter(name, path string, dirs Dirs) *NpmrcAdapter {
	return &NpmrcAdapter{file: configFile{name: name, path: path, dirs: dirs}}
}

func (a *NpmrcAdapter) Name() string { return a.file.name }
func (a *NpmrcAdapter) Path() string { return a.file.path }

func (a *NpmrcAdapter) ReadToken(_ context.Context) (string, error) {
	data, err := a.file.read()
	if err != nil {
		return "", err
	}
	return ExtractToken(string(data)), nil
}

func (a *NpmrcAdapter) WriteToken(ctx context.Context, token string) error {
	return a.file.update(ctx, func(old []byte) ([]byte, error) {
		return []byte(setNpmrcToken(string(old), token)), nil
	})
}

func (a *NpmrcAdapter) RemoveToken(ctx context.Context) error {
	return a.file.update(ctx, func(old []byte) ([]byte, error) {
		if old == nil {
			return nil, nil
		}
		var out []string
		for _, line := range strings.Split(string(old), "\n") {
			if key, _, ok := npmrcPair(line); ok && key == AuthTokenKey {
				continue
			}
			out = append(out, line)
		}
		return []byte(strings.Join(out, "\n")), nil
	})
}

// ExtractToken returns the registry token from .npmrc content, or "".
func ExtractToken(content string) string {
	for _, line := range strings.Split(content, "\n") {
		if key, value, ok := npmrcPair(line); ok && key == AuthTokenKey {
			return value
		}
	}
	return ""
}

func setNpmrcToken(content, token string) string {
	var lines []string
	if content != "" {
		lines = strings.Split(content, "\n")
	}
	hasScope, hasToken := false, false
	for i, line := range lines {
		key, _, ok := npmrcPair(line)
		if !ok {
			continue
		}
		switch key {
		case ScopeRegistryKey:
			lines[i] = ScopeRegistryKey + "=" + model.TiptapRegistry
			hasScope = true
		case AuthTokenKey:
			lines[i] = AuthTokenKey + "=" + token
			hasToken = true
		}
	}
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if !hasScope {
		lines = append(lines, ScopeRegistryKey+"="+model.TiptapRegistry)
	}
	if !hasToken {
		lines = append(lines, AuthTokenKey+"="+token)
	}
	return strings.Join(lines, "\n") + "\n"
}

func npmrcPair(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
		return "", "", false
	}
	key, value, ok = strings.Cut(trimmed, "=")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(key), strings.Trim(strings.TrimSpace(value), `"`), true
}
