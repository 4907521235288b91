package project

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

const maxExtendsDepth = 8

// TSConfig is the subset of tsconfig.json/jsconfig.json needed for alias resolution.
type TSConfig struct {
	File    string
	BaseURL string
	// Paths keeps declaration order; the first matching prefix wins ties.
	Paths []PathMapping
}

type PathMapping struct {
	Pattern string
	Targets []string
}

// LoadTSConfig reads tsconfig.json, falling back to jsconfig.json, in cwd.
func LoadTSConfig(cwd string) (TSConfig, error) {
	for _, name := range []string{"tsconfig.json", "jsconfig.json"} {
		p := filepath.Join(cwd, name)
		if _, err := os.Stat(p); err != nil {
			continue
		}
		return loadTSConfigFile(p, 0)
	}
	return TSConfig{}, fmt.Errorf("no tsconfig.json or jsconfig.json found in %s", cwd)
}

func loadTSConfigFile(path string, depth int) (TSConfig, error) {
	if depth > maxExtendsDepth {
		return TSConfig{}, fmt.Errorf("tsconfig extends chain too deep at %s", path)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return TSConfig{}, fmt.Errorf("read %s: %w", path, err)
	}
	data := jsonc.ToJSON(raw)
	if !gjson.ValidBytes(data) {
		return TSConfig{}, fmt.Errorf("parse %s: invalid JSON", path)
	}
	dir := filepath.Dir(path)

	var cfg TSConfig
	if ext := gjson.GetBytes(data, "extends"); ext.Type == gjson.String && isRelative(ext.String()) {
		parent := filepath.Join(dir, ext.String())
		if filepath.Ext(parent) != ".json" {
			parent += ".json"
		}
		if cfg, err = loadTSConfigFile(parent, depth+1); err != nil {
			return TSConfig{}, err
		}
	}
	cfg.File = path

	opts := gjson.GetBytes(data, "compilerOptions")
	if base := opts.Get("baseUrl"); base.Exists() {
		cfg.BaseURL = filepath.Join(dir, base.String())
	}
	if paths := opts.Get("paths"); paths.IsObject() {
		cfg.Paths = nil
		paths.ForEach(func(key, value gjson.Result) bool {
			var targets []string
			for _, t := range value.Array() {
				targets = append(targets, t.String())
			}
			cfg.Paths = append(cfg.Paths, PathMapping{Pattern: key.String(), Targets: targets})
			return true
		})
		if cfg.BaseURL == "" {
			cfg.BaseURL = dir
		}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = dir
	}
	return cfg, nil
}

func isRelative(p string) bool {
	return strings.HasPrefix(p, "./") || strings.HasPrefix(p, "../")
}

// MatchPath maps an import specifier to an absolute path using the
// compilerOptions.paths table. The pattern with the longest literal prefix wins.
func (c TSConfig) MatchPath(specifier string) (string, bool) {
	type candidate struct {
		prefix  string
		star    string
		targets []string
	}
	var matches []candidate
	for _, m := range c.Paths {
		if len(m.Targets) == 0 {
			continue
		}
		star := strings.Index(m.Pattern, "*")
		if star < 0 {
			if m.Pattern == specifier {
				matches = append(matches, candidate{prefix: m.Pattern, targets: m.Targets})
			}
			continue
		}
		prefix, suffix := m.Pattern[:star], m.Pattern[star+1:]
		if len(specifier) < len(prefix)+len(suffix) ||
			!strings.HasPrefix(specifier, prefix) || !strings.HasSuffix(specifier, suffix) {
			continue
		}
		matches = append(matches, candidate{
			prefix:  prefix,
			star:    specifier[len(prefix) : len(specifier)-len(suffix)],
			targets: m.Targets,
		})
	}
	if len(matches) == 0 {
		return "", false
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return len(matches[i].prefix) > len(matches[j].prefix)
	})
	best := matches[0]
	target := strings.Replace(best.targets[0], "*", best.star, 1)
	return filepath.Join(c.BaseURL, target), true
}

// AliasPrefix returns the alias that maps onto the project source root,
// e.g. "@" for {"@/*": ["./src/*"]}. The first declared alias is the fallback.
func (c TSConfig) AliasPrefix() string {
	if len(c.Paths) == 0 {
		return ""
	}
	for _, m := range c.Paths {
		for _, t := range m.Targets {
			switch t {
			case "./*", "./src/*", "./app/*", "./resources/js/*":
				return strings.TrimSuffix(m.Pattern, "/*")
			}
		}
	}
	return strings.TrimSuffix(c.Paths[0].Pattern, "/*")
}
