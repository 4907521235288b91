package adapters

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/sarjann/tiptap-cli/internal/model"
)

var yarnScopeKeys = []string{"npmScopes", scopeName}

// YarnrcAdapter stores the token as an npmScopes entry in .yarnrc.yml,
// which is where yarn 2+ reads scoped registry credentials.
type YarnrcAdapter struct {
	file configFile
}

func NewYarnrcAdapter(path string, dirs Dirs) *YarnrcAdapter {
	return &YarnrcAdapter{file: configFile{name: ".yarnrc.yml", path: path, dirs: dirs}}
}

func (a *YarnrcAdapter) Name() string { return a.file.name }
func (a *YarnrcAdapter) Path() string { return a.file.path }

func (a *YarnrcAdapter) ReadToken(_ context.Context) (string, error) {
	data, err := a.file.read()
	if err != nil {
		return "", err
	}
	raw, err := decodeYAML(data)
	if err != nil {
		return "", err
	}
	scope := getNestedMap(raw, yarnScopeKeys)
	token, _ := scope["npmAuthToken"].(string)
	return token, nil
}

func (a *YarnrcAdapter) WriteToken(ctx context.Context, token string) error {
	return a.file.update(ctx, func(old []byte) ([]byte, error) {
		raw, err := decodeYAML(old)
		if err != nil {
			// An unreadable file is replaced rather than blocking login.
			raw = map[string]any{}
		}
		setNestedMap(raw, yarnScopeKeys, map[string]any{
			"npmRegistryServer": model.TiptapRegistry,
			"npmAuthToken":      token,
		})
		return encodeYAML(raw)
	})
}

func (a *YarnrcAdapter) RemoveToken(ctx context.Context) error {
	return a.file.update(ctx, func(old []byte) ([]byte, error) {
		raw, err := decodeYAML(old)
		if err != nil {
			return nil, err
		}
		scopes := getNestedMap(raw, yarnScopeKeys[:1])
		if scopes == nil {
			return nil, nil
		}
		if _, ok := scopes[scopeName]; !ok {
			return nil, nil
		}
		delete(scopes, scopeName)
		if len(scopes) == 0 {
			delete(raw, yarnScopeKeys[0])
		}
		return encodeYAML(raw)
	})
}

func decodeYAML(data []byte) (map[string]any, error) {
	raw := map[string]any{}
	if len(data) == 0 {
		return raw, nil
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode .yarnrc.yml: %w", err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

func encodeYAML(raw map[string]any) ([]byte, error) {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode .yarnrc.yml: %w", err)
	}
	return data, nil
}
