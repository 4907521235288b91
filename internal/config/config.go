package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/project"
)

// DefaultAliases returns the alias set used when components.json omits entries.
func DefaultAliases(prefix string) model.Aliases {
	if prefix == "" {
		prefix = "@"
	}
	return model.Aliases{
		Components:         prefix + "/components",
		Contexts:           prefix + "/contexts",
		Hooks:              prefix + "/hooks",
		TiptapIcons:        prefix + "/components/tiptap-icons",
		Lib:                prefix + "/lib",
		TiptapExtensions:   prefix + "/components/tiptap-extension",
		TiptapNodes:        prefix + "/components/tiptap-node",
		TiptapUI:           prefix + "/components/tiptap-ui",
		TiptapUIPrimitives: prefix + "/components/tiptap-ui-primitive",
		TiptapUIUtils:      prefix + "/components/tiptap-ui-utils",
		Styles:             prefix + "/styles",
	}
}

// Read decodes cwd/components.json. The bool result is false when the file does not exist.
func Read(cwd string) (model.RawConfig, bool, error) {
	path := filepath.Join(cwd, model.ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.RawConfig{}, false, nil
		}
		return model.RawConfig{}, false, newError(KindInvalid, path, "read components.json", err)
	}
	raw, err := parseRaw(data)
	if err != nil {
		return model.RawConfig{}, true, newError(KindInvalid, path, "invalid components.json", err)
	}
	return raw, true, nil
}

func parseRaw(data []byte) (model.RawConfig, error) {
	// tsx defaults to true when the key is absent.
	raw := model.RawConfig{TSX: true}
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		return model.RawConfig{}, err
	}
	if strings.TrimSpace(raw.Aliases.Components) == "" {
		return model.RawConfig{}, fmt.Errorf("aliases.components is required")
	}
	fillAliases(&raw.Aliases)
	return raw, nil
}

// fillAliases sets every empty optional alias to its "@/..." default.
func fillAliases(a *model.Aliases) {
	defaults := DefaultAliases("@")
	for _, key := range model.AliasKeys {
		if a.Get(key) == "" {
			a.Set(key, defaults.Get(key))
		}
	}
}

// Load reads and resolves components.json in cwd. A missing file is a KindMissing error.
func Load(cwd string) (model.Config, error) {
	raw, ok, err := Read(cwd)
	if err != nil {
		return model.Config{}, err
	}
	if !ok {
		return model.Config{}, newError(KindMissing, filepath.Join(cwd, model.ConfigFileName), "components.json not found", nil)
	}
	return ResolvePaths(cwd, raw)
}

// LoadOrDerive behaves like Load but derives a config from the project layout
// when components.json is absent.
func LoadOrDerive(cwd string) (model.Config, error) {
	raw, ok, err := Read(cwd)
	if err != nil {
		return model.Config{}, err
	}
	if !ok {
		info, err := project.Detect(cwd)
		if err != nil {
			return model.Config{}, fmt.Errorf("detect project in %s: %w", cwd, err)
		}
		raw = Derive(info)
	}
	return ResolvePaths(cwd, raw)
}

// Derive builds a raw config from detected project conventions.
func Derive(info model.ProjectInfo) model.RawConfig {
	return model.RawConfig{
		RSC:     info.IsRSC,
		TSX:     info.IsTSX,
		Aliases: DefaultAliases(info.AliasPrefix),
	}
}

// ResolvePaths maps every alias onto an absolute directory through the
// project's tsconfig/jsconfig paths. Empty optional aliases take their defaults.
func ResolvePaths(cwd string, raw model.RawConfig) (model.Config, error) {
	if strings.TrimSpace(raw.Aliases.Components) == "" {
		return model.Config{}, newError(KindInvalid, filepath.Join(cwd, model.ConfigFileName), "aliases.components is required", nil)
	}
	fillAliases(&raw.Aliases)
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return model.Config{}, fmt.Errorf("resolve %s: %w", cwd, err)
	}
	cwd = abs

	ts, err := project.LoadTSConfig(cwd)
	if err != nil {
		name := "tsconfig.json"
		if !raw.TSX {
			name = "jsconfig.json"
		}
		return model.Config{}, newError(KindTSConfig, cwd, "failed to load "+name, err)
	}

	resolve := func(key model.AliasKey) (string, error) {
		alias := raw.Aliases.Get(key)
		p, ok := ts.MatchPath(alias)
		if !ok {
			return "", newError(KindUnresolved, ts.File, fmt.Sprintf("alias %s (%q) does not match any compilerOptions.paths entry", key, alias), nil)
		}
		return p, nil
	}

	resolved := model.NewResolvedPaths(cwd)
	for _, key := range model.AliasKeys {
		p, err := resolve(key)
		if err != nil {
			return model.Config{}, err
		}
		resolved.Set(key, p)
	}
	return model.Config{RawConfig: raw, ResolvedPaths: resolved}, nil
}
