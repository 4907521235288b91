package transform

import (
	"regexp"
	"strings"

	"github.com/sarjann/tiptap-cli/internal/model"
)

const registryPrefix = "@/registry/"

var (
	specifierRe      = regexp.MustCompile(`(\bfrom\s*|\bimport\s*\(?\s*)(["'])([^"'\n]+)(["'])`)
	templateImportRe = regexp.MustCompile(`^tiptap-templates/([^/]+)/(?:components/)?`)
	defaultImportRe  = regexp.MustCompile(`^[^/]+(?:/.*/)?`)
)

// registryDirs is checked in order; longer names sharing a prefix come first.
var registryDirs = []struct {
	dir string
	key model.AliasKey
}{
	{"components", model.AliasComponents},
	{"contexts", model.AliasContexts},
	{"tiptap-extension", model.AliasTiptapExtensions},
	{"hooks", model.AliasHooks},
	{"tiptap-icons", model.AliasTiptapIcons},
	{"lib", model.AliasLib},
	{"tiptap-node", model.AliasTiptapNodes},
	{"tiptap-ui-primitive", model.AliasTiptapUIPrimitives},
	{"tiptap-ui-utils", model.AliasTiptapUIUtils},
	{"tiptap-ui", model.AliasTiptapUI},
	{"styles", model.AliasStyles},
}

// ImportAliases rewrites registry-relative module specifiers onto the
// project's configured aliases.
func ImportAliases(content string, tc Context) (string, error) {
	aliases := tc.Config.Aliases
	return specifierRe.ReplaceAllStringFunc(content, func(m string) string {
		parts := specifierRe.FindStringSubmatch(m)
		if parts[2] != parts[4] {
			return m
		}
		rewritten := RewriteSpecifier(parts[3], aliases)
		return parts[1] + parts[2] + rewritten + parts[4]
	}), nil
}

// RewriteSpecifier maps one module specifier onto aliases.
func RewriteSpecifier(specifier string, aliases model.Aliases) string {
	components := aliases.Components
	rest, ok := strings.CutPrefix(specifier, registryPrefix)
	if !ok {
		if tail, ok := strings.CutPrefix(specifier, "@/"); ok {
			root, _, _ := strings.Cut(components, "/")
			return root + "/" + tail
		}
		return specifier
	}

	if m := templateImportRe.FindStringSubmatch(rest); m != nil {
		return components + "/tiptap-templates/" + m[1] + "/" + rest[len(m[0]):]
	}
	for _, d := range registryDirs {
		alias := aliases.Get(d.key)
		if alias == "" {
			continue
		}
		if tail, ok := strings.CutPrefix(rest, d.dir); ok && (tail == "" || tail[0] == '/') {
			return alias + tail
		}
	}
	return defaultImportRe.ReplaceAllLiteralString(rest, components+"/")
}
