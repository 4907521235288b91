package adapters

import (
	"context"
	"fmt"

	"github.com/pelletier/go-toml/v2"

	"github.com/sarjann/tiptap-cli/internal/model"
)

var bunScopeKeys = []string{"install", "scopes", scopeName}

// BunfigAdapter stores the token under [install.scopes] in bunfig.toml.
type BunfigAdapter struct {
	file configFile
}

func NewBunfigAdapter(path string, dirs Dirs) *BunfigAdapter {
	return &BunfigAdapter{file: configFile{name: "bunfig.toml", path: path, dirs: dirs}}
}

func (a *BunfigAdapter) Name() string { return a.file.name }
func (a *BunfigAdapter) Path() string { return a.file.path }

func (a *BunfigAdapter) ReadToken(_ context.Context) (string, error) {
	data, err := a.file.read()
	if err != nil {
		return "", err
	}
	raw, err := decodeTOML(data)
	if err != nil {
		return "", err
	}
	token, _ := getNestedMap(raw, bunScopeKeys)["token"].(string)
	return token, nil
}

func (a *BunfigAdapter) WriteToken(ctx context.Context, token string) error {
	return a.file.update(ctx, func(old []byte) ([]byte, error) {
		raw, err := decodeTOML(old)
		if err != nil {
			return nil, err
		}
		setNestedMap(raw, bunScopeKeys, map[string]any{
			"token": token,
			"url":   model.TiptapRegistry,
		})
		return encodeTOML(raw)
	})
}

func (a *BunfigAdapter) RemoveToken(ctx context.Context) error {
	return a.file.update(ctx, func(old []byte) ([]byte, error) {
		raw, err := decodeTOML(old)
		if err != nil {
			return nil, err
		}
		scopes := getNestedMap(raw, bunScopeKeys[:2])
		if _, ok := scopes[scopeName]; !ok {
			return nil, nil
		}
		delete(scopes, scopeName)
		return encodeTOML(raw)
	})
}

func decodeTOML(data []byte) (map[string]any, error) {
	raw := map[string]any{}
	if len(data) == 0 {
		return raw, nil
	}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode bunfig.toml: %w", err)
	}
	return raw, nil
}

func encodeTOML(raw map[string]any) ([]byte, error) {
	data, err := toml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode bunfig.toml: %w", err)
	}
	if err := toml.Unmarshal(data, &map[string]any{}); err != nil {
		return nil, fmt.Errorf("validate generated bunfig.toml: %w", err)
	}
	return data, nil
}
