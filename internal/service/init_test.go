package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarjann/tiptap-cli/internal/config"
	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/scaffold"
)

func TestInitExistingProjectWithComponents(t *testing.T) {
	h := newHarness(t, newFakeRegistry(uiItem("button")))
	cwd := t.TempDir()
	nextProject(t, cwd, false)

	res, err := h.m.Init(context.Background(), InitOptions{Cwd: cwd, Components: []string{"button"}})
	require.NoError(t, err)
	assert.False(t, res.IsNewProject)
	assert.Equal(t, []string{"components/tiptap-ui/button/button.tsx"}, res.Files.Created)
	assert.Empty(t, h.prompter.asked)

	raw, ok, err := config.Read(cwd)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, raw.RSC)
	assert.True(t, raw.TSX)
	assert.Equal(t, "@/components/tiptap-ui", raw.Aliases.TiptapUI)
}

func TestInitKeepsExistingConfig(t *testing.T) {
	h := newHarness(t, newFakeRegistry())
	cwd := t.TempDir()
	nextProject(t, cwd, false)
	writeFile(t, filepath.Join(cwd, "components.json"), `{"rsc":false,"tsx":true,"aliases":{"components":"@/ui"}}`)

	res, err := h.m.Init(context.Background(), InitOptions{Cwd: cwd})
	require.NoError(t, err)
	assert.False(t, res.Config.RSC)
	assert.Equal(t, "@/ui", res.Config.Aliases.Components)
	assert.Equal(t, []string{"Would you like to add a template or UI components to your project?"}, h.prompter.asked)
}

func TestInitCreatesProject(t *testing.T) {
	h := newHarness(t, newFakeRegistry())
	h.prompter.texts = []string{"editor"}
	cwd := t.TempDir()

	res, err := h.m.Init(context.Background(), InitOptions{Cwd: cwd, Framework: "vite", SrcDir: true})
	require.NoError(t, err)
	assert.True(t, res.IsNewProject)
	assert.Equal(t, filepath.Join(cwd, "editor"), res.ProjectPath)

	require.Len(t, h.created, 1)
	assert.Equal(t, createCall{fw: scaffold.Vite, name: "editor", cwd: cwd, src: true}, h.created[0])

	raw, ok, err := config.Read(res.ProjectPath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "@/components", raw.Aliases.Components)
	assert.Equal(t, filepath.Join(res.ProjectPath, "src", "components"), res.Config.ResolvedPaths.Get(model.AliasComponents))
}

func TestInitPromptsForFramework(t *testing.T) {
	h := newHarness(t, newFakeRegistry())
	h.prompter.selects = []string{"next"}
	cwd := t.TempDir()

	res, err := h.m.Init(context.Background(), InitOptions{Cwd: cwd})
	require.NoError(t, err)
	require.Len(t, h.created, 1)
	assert.Equal(t, scaffold.Next, h.created[0].fw)
	assert.Equal(t, defaultProjectName, h.created[0].name)
	assert.Equal(t, filepath.Join(cwd, defaultProjectName), res.ProjectPath)
	require.NotEmpty(t, h.prompter.offered)
	assert.Len(t, h.prompter.offered[0], len(scaffold.Frameworks))
}

func TestInitCancelledFrameworkPrompt(t *testing.T) {
	h := newHarness(t, newFakeRegistry())
	cwd := t.TempDir()

	res, err := h.m.Init(context.Background(), InitOptions{Cwd: cwd})
	require.NoError(t, err)
	assert.Empty(t, h.created)
	assert.False(t, res.IsNewProject)
	assert.NoFileExists(t, filepath.Join(cwd, model.ConfigFileName))
}

func TestInitRejectsUnknownFramework(t *testing.T) {
	h := newHarness(t, newFakeRegistry())
	_, err := h.m.Init(context.Background(), InitOptions{Cwd: t.TempDir(), Framework: "remix"})
	assert.Error(t, err)
	assert.Empty(t, h.created)
}

func TestInitUnsupportedFramework(t *testing.T) {
	h := newHarness(t, newFakeRegistry())
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "package.json"), `{}`)

	_, err := h.m.Init(context.Background(), InitOptions{Cwd: cwd})
	assert.True(t, errors.Is(err, ErrUnsupportedFramework))
	assert.NoFileExists(t, filepath.Join(cwd, model.ConfigFileName))
}

func TestInitMissingImportAlias(t *testing.T) {
	h := newHarness(t, newFakeRegistry())
	cwd := t.TempDir()
	writeFile(t, filepath.Join(cwd, "package.json"), `{}`)
	writeFile(t, filepath.Join(cwd, "vite.config.ts"), "export default {}\n")
	writeFile(t, filepath.Join(cwd, "tsconfig.json"), `{"compilerOptions":{}}`)

	_, err := h.m.Init(context.Background(), InitOptions{Cwd: cwd})
	assert.ErrorIs(t, err, ErrMissingImportAlias)
}
