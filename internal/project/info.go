package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sarjann/tiptap-cli/internal/fsutil"
	"github.com/sarjann/tiptap-cli/internal/model"
)

var configFilePatterns = []string{
	"**/{next,vite,astro,app}.config.*",
	"**/gatsby-config.*",
	"**/composer.json",
	"**/react-router.config.*",
}

// Detect inspects cwd and reports the framework and source conventions in use.
func Detect(cwd string) (model.ProjectInfo, error) {
	info := model.ProjectInfo{Framework: model.FrameworkManual}

	configFiles, err := fsutil.Glob(cwd, configFilePatterns, fsutil.GlobOptions{MaxDepth: 3, Ignore: fsutil.DefaultIgnore})
	if err != nil {
		return info, err
	}
	info.IsSrcDir = fsutil.IsDir(filepath.Join(cwd, "src"))
	info.IsTSX = IsTypeScript(cwd)
	if ts, err := LoadTSConfig(cwd); err == nil {
		info.AliasPrefix = ts.AliasPrefix()
	}
	deps, devDeps, err := PackageDependencies(cwd)
	if err != nil {
		return info, err
	}

	appDir := "app"
	if info.IsSrcDir {
		appDir = "src/app"
	}
	usesAppDir := fsutil.IsDir(filepath.Join(cwd, appDir))

	// Only config files at the project root decide the framework.
	has := func(prefix string) bool {
		for _, f := range configFiles {
			if !strings.Contains(f, "/") && strings.HasPrefix(f, prefix) {
				return true
			}
		}
		return false
	}
	hasDep := func(prefix string, lists ...[]string) bool {
		for _, names := range lists {
			for _, d := range names {
				if strings.HasPrefix(d, prefix) {
					return true
				}
			}
		}
		return false
	}

	switch {
	case has("next.config."):
		info.Framework = model.FrameworkNextPages
		if usesAppDir {
			info.Framework = model.FrameworkNextApp
			info.IsRSC = true
		}
	case has("astro.config."):
		info.Framework = model.FrameworkAstro
	case has("gatsby-config."):
		info.Framework = model.FrameworkGatsby
	case has("composer.json"):
		info.Framework = model.FrameworkLaravel
	case hasDep("@remix-run/", deps):
		info.Framework = model.FrameworkRemix
	case has("app.config.") && hasDep("@tanstack/start", deps, devDeps):
		info.Framework = model.FrameworkTanstackStart
	case has("react-router.config."):
		info.Framework = model.FrameworkReactRouter
	case has("vite.config."):
		info.Framework = model.FrameworkVite
	}
	return info, nil
}

// IsTypeScript reports whether cwd holds a tsconfig.* file.
func IsTypeScript(cwd string) bool {
	matches, err := filepath.Glob(filepath.Join(cwd, "tsconfig.*"))
	return err == nil && len(matches) > 0
}

// HasPackageJSON reports whether cwd is the root of an npm package.
func HasPackageJSON(cwd string) bool {
	_, err := os.Stat(filepath.Join(cwd, "package.json"))
	return err == nil
}

// PackageDependencies returns the dependency and devDependency names from
// cwd/package.json. A missing file yields no names.
func PackageDependencies(cwd string) (deps, devDeps []string, err error) {
	data, err := os.ReadFile(filepath.Join(cwd, "package.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read package.json: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("parse %s: invalid JSON", filepath.Join(cwd, "package.json"))
	}
	keys := func(field string) []string {
		var names []string
		gjson.GetBytes(data, field).ForEach(func(k, _ gjson.Result) bool {
			names = append(names, k.String())
			return true
		})
		return names
	}
	return keys("dependencies"), keys("devDependencies"), nil
}
