package config

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/sarjann/tiptap-cli/internal/fsutil"
	"github.com/sarjann/tiptap-cli/internal/model"
)

const packageSearchDepth = 3

// Workspace resolves, for every alias, the config of the package that owns
// the alias directory. Aliases inside the consumer package map to cfg itself.
func Workspace(cfg model.Config) (model.WorkspaceConfig, error) {
	ws := make(model.WorkspaceConfig, len(model.AliasKeys))
	loaded := map[string]model.Config{}
	for _, key := range model.AliasKeys {
		resolved := cfg.ResolvedPaths.Get(key)
		if resolved == "" {
			continue
		}
		root, ok, err := FindPackageRoot(cfg.Cwd(), resolved)
		if err != nil {
			return nil, err
		}
		if !ok {
			ws[key] = cfg
			continue
		}
		if c, seen := loaded[root]; seen {
			ws[key] = c
			continue
		}
		c, err := LoadOrDerive(root)
		if err != nil {
			return nil, fmt.Errorf("load config for workspace package %s: %w", root, err)
		}
		loaded[root] = c
		ws[key] = c
	}
	return ws, nil
}

// FindPackageRoot looks for the package, below the common ancestor of cwd
// and resolvedPath, whose directory most closely contains resolvedPath. The
// common ancestor itself and cwd never count as a foreign package.
func FindPackageRoot(cwd, resolvedPath string) (string, bool, error) {
	common := FindCommonRoot(cwd, resolvedPath)
	if common == "" || common == string(filepath.Separator) {
		return "", false, nil
	}
	rel, err := filepath.Rel(common, resolvedPath)
	if err != nil {
		return "", false, fmt.Errorf("relativize %s: %w", resolvedPath, err)
	}
	rel = filepath.ToSlash(rel)

	manifests, err := fsutil.Glob(common, []string{"**/package.json"}, fsutil.GlobOptions{
		MaxDepth: packageSearchDepth,
		Ignore:   fsutil.DefaultIgnore,
	})
	if err != nil {
		return "", false, err
	}
	best := ""
	for _, m := range manifests {
		dir := path.Dir(m)
		if dir == "." || len(dir) <= len(best) {
			continue
		}
		if rel != dir && !strings.HasPrefix(rel, dir+"/") {
			continue
		}
		if filepath.Join(common, filepath.FromSlash(dir)) == filepath.Clean(cwd) {
			continue
		}
		best = dir
	}
	if best == "" {
		return "", false, nil
	}
	return filepath.Join(common, filepath.FromSlash(best)), true, nil
}

// FindCommonRoot returns the deepest directory shared by a and b.
func FindCommonRoot(a, b string) string {
	pa := strings.Split(filepath.Clean(a), string(filepath.Separator))
	pb := strings.Split(filepath.Clean(b), string(filepath.Separator))
	var common []string
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			break
		}
		common = append(common, pa[i])
	}
	if len(common) == 1 && common[0] == "" {
		return string(filepath.Separator)
	}
	return strings.Join(common, string(filepath.Separator))
}
