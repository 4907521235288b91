package placement

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarjann/tiptap-cli/internal/model"
)

const root = "/work/app"

func testConfig(tsx bool) model.Config {
	rp := model.NewResolvedPaths(filepath.FromSlash(root))
	components := filepath.FromSlash(root + "/src/components")
	rp.Set(model.AliasComponents, components)
	rp.Set(model.AliasContexts, filepath.FromSlash(root+"/src/contexts"))
	rp.Set(model.AliasHooks, filepath.FromSlash(root+"/src/hooks"))
	rp.Set(model.AliasLib, filepath.FromSlash(root+"/src/lib"))
	rp.Set(model.AliasStyles, filepath.FromSlash(root+"/src/styles"))
	rp.Set(model.AliasTiptapIcons, filepath.Join(components, "tiptap-icons"))
	rp.Set(model.AliasTiptapExtensions, filepath.Join(components, "tiptap-extension"))
	rp.Set(model.AliasTiptapNodes, filepath.Join(components, "tiptap-node"))
	rp.Set(model.AliasTiptapUI, filepath.Join(components, "tiptap-ui"))
	rp.Set(model.AliasTiptapUIPrimitives, filepath.Join(components, "tiptap-ui-primitive"))
	rp.Set(model.AliasTiptapUIUtils, filepath.Join(components, "tiptap-ui-utils"))
	return model.Config{RawConfig: model.RawConfig{TSX: tsx}, ResolvedPaths: rp}
}

func p(s string) string {
	return filepath.FromSlash(s)
}

func TestResolvePageTargetLiterals(t *testing.T) {
	tests := []struct {
		fw   model.Framework
		want string
	}{
		{fw: model.FrameworkNextApp, want: "app/dashboard/page.tsx"},
		{fw: model.FrameworkNextPages, want: "pages/dashboard.tsx"},
		{fw: model.FrameworkReactRouter, want: "app/routes/dashboard.tsx"},
		{fw: model.FrameworkLaravel, want: "resources/js/pages/dashboard.tsx"},
		{fw: model.FrameworkAstro, want: ""},
		{fw: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(string(tt.fw), func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePageTarget("app/dashboard/page.tsx", tt.fw))
		})
	}
}

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		file model.RegistryFile
		pc   Context
		want string
	}{
		{
			name: "template component strips components segment",
			file: model.RegistryFile{Path: "registry/tiptap-templates/simple/components/editor.tsx", Type: model.TypeComponent},
			want: root + "/src/components/tiptap-templates/simple/editor.tsx",
		},
		{
			name: "template non component keeps relative path",
			file: model.RegistryFile{Path: "registry/tiptap-templates/simple/styles/editor.scss", Type: model.TypeStyle},
			want: root + "/src/components/tiptap-templates/simple/styles/editor.scss",
		},
		{
			name: "template data file with target",
			file: model.RegistryFile{Path: "registry/tiptap-templates/notion/data/content.json", Type: model.TypeLib, Target: "app/data/content.json"},
			want: root + "/src/components/tiptap-templates/notion/data/content.json",
		},
		{
			name: "home marker target",
			file: model.RegistryFile{Path: "x/globals.css", Type: model.TypeStyle, Target: "~/styles/globals.css"},
			pc:   Context{IsSrcDir: true},
			want: root + "/styles/globals.css",
		},
		{
			name: "page for next pages in src dir",
			file: model.RegistryFile{Path: "registry/app/dashboard/page.tsx", Type: model.TypePage, Target: "app/dashboard/page.tsx"},
			pc:   Context{IsSrcDir: true, Framework: model.FrameworkNextPages},
			want: root + "/src/pages/dashboard.tsx",
		},
		{
			name: "page for unknown framework is skipped",
			file: model.RegistryFile{Path: "registry/app/dashboard/page.tsx", Type: model.TypePage, Target: "app/dashboard/page.tsx"},
			pc:   Context{Framework: model.FrameworkAstro},
			want: "",
		},
		{
			name: "template page with target is not treated as template",
			file: model.RegistryFile{Path: "registry/tiptap-templates/simple/page.tsx", Type: model.TypePage, Target: "app/simple/page.tsx"},
			pc:   Context{Framework: model.FrameworkNextApp},
			want: root + "/app/simple/page.tsx",
		},
		{
			name: "explicit target strips leading src",
			file: model.RegistryFile{Path: "x/util.ts", Type: model.TypeLib, Target: "src/lib/util.ts"},
			pc:   Context{IsSrcDir: true},
			want: root + "/src/lib/util.ts",
		},
		{
			name: "ui nested under its directory",
			file: model.RegistryFile{Path: "registry/tiptap-ui/heading-button/heading-button.tsx", Type: model.TypeUI},
			want: root + "/src/components/tiptap-ui/heading-button/heading-button.tsx",
		},
		{
			name: "last matching segment wins",
			file: model.RegistryFile{Path: "hooks/shared/hooks/use-mobile.ts", Type: model.TypeHook},
			want: root + "/src/hooks/use-mobile.ts",
		},
		{
			name: "no matching segment flattens to base name",
			file: model.RegistryFile{Path: "registry/misc/deep/use-window.ts", Type: model.TypeHook},
			want: root + "/src/hooks/use-window.ts",
		},
		{
			name: "unknown type defaults to components",
			file: model.RegistryFile{Path: "registry/assets/logo.svg", Type: model.TypeAsset},
			want: root + "/src/components/logo.svg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolvePath(tt.file, testConfig(true), tt.pc)
			require.NoError(t, err)
			if tt.want == "" {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, p(tt.want), got)
		})
	}
}

func TestResolvePathRewritesExtensionsWithoutTSX(t *testing.T) {
	cfg := testConfig(false)

	got, err := ResolvePath(model.RegistryFile{Path: "registry/tiptap-ui/button/button.tsx", Type: model.TypeUI}, cfg, Context{})
	require.NoError(t, err)
	assert.Equal(t, p(root+"/src/components/tiptap-ui/button/button.jsx"), got)

	got, err = ResolvePath(model.RegistryFile{Path: "registry/lib/utils.ts", Type: model.TypeLib}, cfg, Context{})
	require.NoError(t, err)
	assert.Equal(t, p(root+"/src/lib/utils.js"), got)

	got, err = ResolvePath(model.RegistryFile{Path: "registry/styles/a.scss", Type: model.TypeStyle}, cfg, Context{})
	require.NoError(t, err)
	assert.Equal(t, p(root+"/src/styles/a.scss"), got)
}

func TestResolvePathRejectsEscapingTarget(t *testing.T) {
	_, err := ResolvePath(model.RegistryFile{Path: "x.ts", Type: model.TypeLib, Target: "~/../../etc/passwd"}, testConfig(true), Context{})
	assert.Error(t, err)

	_, err = ResolvePath(model.RegistryFile{Path: "x.ts", Type: model.TypeLib, Target: "../outside.ts"}, testConfig(true), Context{})
	assert.Error(t, err)
}

func TestNestedPath(t *testing.T) {
	assert.Equal(t, "button/button.tsx", NestedPath("/registry/tiptap-ui/button/button.tsx", "/x/tiptap-ui"))
	assert.Equal(t, "button.tsx", NestedPath("button.tsx", "/x/tiptap-ui"))
}

func TestFindCommonRoot(t *testing.T) {
	paths := []string{
		"registry/tiptap-ui/button/button.tsx",
		"registry/tiptap-ui/button/index.tsx",
		"registry/tiptap-ui/toolbar/toolbar.tsx",
		"registry/hooks/use-x.ts",
	}
	assert.Equal(t, "/registry/tiptap-ui/button", FindCommonRoot(paths, paths[0]))
	assert.Equal(t, "/registry/tiptap-ui", FindCommonRoot(paths, paths[2]))
	assert.Equal(t, "/registry", FindCommonRoot(paths, paths[3]))
	assert.Equal(t, "", FindCommonRoot(paths, "root.ts"))
	assert.Equal(t, "/lonely/dir", FindCommonRoot([]string{"lonely/dir/a.ts"}, "lonely/dir/a.ts"))
}
