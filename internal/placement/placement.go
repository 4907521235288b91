package placement

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/sarjann/tiptap-cli/internal/model"
)

// Context carries project facts that influence where a file lands.
type Context struct {
	IsSrcDir  bool
	Framework model.Framework
	// CommonRoot is the deepest registry directory the file shares with its batch.
	CommonRoot string
}

var (
	templatePathRe = regexp.MustCompile(`tiptap-templates/([^/]+)/(.*)`)
	pageSuffixRe   = regexp.MustCompile(`/page(\.[jt]sx?)$`)
	tsExtRe        = regexp.MustCompile(`\.tsx?$`)
)

var typeDirs = map[model.ItemType]model.AliasKey{
	model.TypeUI:          model.AliasTiptapUI,
	model.TypeUIPrimitive: model.AliasTiptapUIPrimitives,
	model.TypeExtension:   model.AliasTiptapExtensions,
	model.TypeNode:        model.AliasTiptapNodes,
	model.TypeIcon:        model.AliasTiptapIcons,
	model.TypeHook:        model.AliasHooks,
	model.TypeLib:         model.AliasLib,
	model.TypeContext:     model.AliasContexts,
	model.TypeTemplate:    model.AliasComponents,
	model.TypeComponent:   model.AliasComponents,
	model.TypeStyle:       model.AliasStyles,
}

// ResolvePath returns the absolute destination for file, or "" when the
// file has no valid destination in this project.
func ResolvePath(file model.RegistryFile, cfg model.Config, pc Context) (string, error) {
	p, err := resolve(file, cfg, pc)
	if err != nil || p == "" {
		return "", err
	}
	if !cfg.TSX {
		p = tsExtRe.ReplaceAllStringFunc(p, func(ext string) string {
			if ext == ".tsx" {
				return ".jsx"
			}
			return ".js"
		})
	}
	return p, nil
}

func resolve(file model.RegistryFile, cfg model.Config, pc Context) (string, error) {
	cwd := cfg.Cwd()
	components := cfg.ResolvedPaths.Get(model.AliasComponents)
	template := templatePathRe.FindStringSubmatch(file.Path)

	if file.Target == "" && file.Type != model.TypePage && template != nil {
		name, rel := template[1], template[2]
		rel = strings.TrimPrefix(rel, "components/")
		return filepath.Join(components, "tiptap-templates", name, filepath.FromSlash(rel)), nil
	}

	if file.Target != "" {
		if template != nil && strings.Contains(file.Target, "/data/") {
			rest := file.Target[strings.Index(file.Target, "/data/")+len("/data/"):]
			return filepath.Join(components, "tiptap-templates", template[1], "data", filepath.FromSlash(rest)), nil
		}
		if rest, ok := strings.CutPrefix(file.Target, "~/"); ok {
			return within(cwd, rest)
		}
		target := file.Target
		if file.Type == model.TypePage {
			target = ResolvePageTarget(target, pc.Framework)
			if target == "" {
				return "", nil
			}
		}
		root := cwd
		if pc.IsSrcDir {
			root = filepath.Join(cwd, "src")
		}
		p, err := within(root, strings.TrimPrefix(target, "src/"))
		if err != nil {
			return "", err
		}
		return p, nil
	}

	dir := TargetDir(file.Type, cfg)
	return filepath.Join(dir, filepath.FromSlash(NestedPath(file.Path, dir))), nil
}

// within joins rel under root and rejects results that leave root.
func within(root, rel string) (string, error) {
	p := filepath.Join(root, filepath.FromSlash(rel))
	r, err := filepath.Rel(root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("target %q escapes %s", rel, root)
	}
	return p, nil
}

// AliasFor reports the alias that owns files of type t.
func AliasFor(t model.ItemType) (model.AliasKey, bool) {
	key, ok := typeDirs[t]
	return key, ok
}

// TargetDir maps a file type onto its alias directory.
func TargetDir(t model.ItemType, cfg model.Config) string {
	key, ok := typeDirs[t]
	if !ok {
		key = model.AliasComponents
	}
	return cfg.ResolvedPaths.Get(key)
}

// ResolvePageTarget rewrites an app-router style page target for the
// framework's routing convention. Unsupported frameworks yield "".
func ResolvePageTarget(target string, fw model.Framework) string {
	var prefix string
	switch fw {
	case model.FrameworkNextApp:
		return target
	case model.FrameworkNextPages:
		prefix = "pages/"
	case model.FrameworkReactRouter:
		prefix = "app/routes/"
	case model.FrameworkLaravel:
		prefix = "resources/js/pages/"
	default:
		return ""
	}
	if rest, ok := strings.CutPrefix(target, "app/"); ok {
		target = prefix + rest
	}
	return pageSuffixRe.ReplaceAllString(target, "$1")
}

// NestedPath returns the part of a registry path below the last segment
// equal to targetDir's final segment, or the base name when none matches.
func NestedPath(filePath, targetDir string) string {
	segments := strings.Split(strings.Trim(filepath.ToSlash(filePath), "/"), "/")
	last := filepath.Base(targetDir)
	for i := len(segments) - 2; i >= 0; i-- {
		if segments[i] == last {
			return strings.Join(segments[i+1:], "/")
		}
	}
	return segments[len(segments)-1]
}

// FindCommonRoot returns the deepest directory of needle that another path
// in paths also lives under, or needle's own directory when none does.
func FindCommonRoot(paths []string, needle string) string {
	needle = strings.TrimPrefix(needle, "/")
	dir := path.Dir(needle)
	if dir == "." {
		return ""
	}
	segments := strings.Split(dir, "/")
	for i := len(segments); i > 0; i-- {
		candidate := strings.Join(segments[:i], "/")
		for _, p := range paths {
			p = strings.TrimPrefix(p, "/")
			if p != needle && strings.HasPrefix(p, candidate+"/") {
				return "/" + candidate
			}
		}
	}
	return "/" + dir
}
