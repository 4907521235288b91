package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/sarjann/tiptap-cli/internal/config"
	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/report"
	"github.com/sarjann/tiptap-cli/internal/scaffold"
)

type stubPrompter struct {
	selects  []string
	multi    [][]string
	confirms []bool
	texts    []string

	asked   []string
	offered [][]Choice
}

func (p *stubPrompter) Select(label string, choices []Choice) (string, error) {
	p.asked = append(p.asked, label)
	p.offered = append(p.offered, choices)
	if len(p.selects) == 0 {
		return "", nil
	}
	v := p.selects[0]
	p.selects = p.selects[1:]
	return v, nil
}

func (p *stubPrompter) MultiSelect(label string, choices []Choice) ([]string, error) {
	p.asked = append(p.asked, label)
	p.offered = append(p.offered, choices)
	if len(p.multi) == 0 {
		return nil, nil
	}
	v := p.multi[0]
	p.multi = p.multi[1:]
	return v, nil
}

func (p *stubPrompter) Confirm(message string) (bool, error) {
	p.asked = append(p.asked, message)
	if len(p.confirms) == 0 {
		return false, nil
	}
	v := p.confirms[0]
	p.confirms = p.confirms[1:]
	return v, nil
}

func (p *stubPrompter) Text(label string, _ bool) (string, error) {
	p.asked = append(p.asked, label)
	if len(p.texts) == 0 {
		return "", nil
	}
	v := p.texts[0]
	p.texts = p.texts[1:]
	return v, nil
}

type installCall struct {
	names []string
	dev   bool
	cwd   string
}

type stubInstaller struct {
	calls []installCall
}

func (s *stubInstaller) InstallPackages(_ context.Context, names []string, dev bool, cwd string) error {
	s.calls = append(s.calls, installCall{names: names, dev: dev, cwd: cwd})
	return nil
}

type stubTokens struct {
	token   string
	saved   string
	removed bool
}

func (s *stubTokens) GetToken(context.Context, string) (string, error) {
	return s.token, nil
}

func (s *stubTokens) SaveToken(_ context.Context, token, _ string) (string, error) {
	s.saved = token
	return "project .npmrc", nil
}

func (s *stubTokens) RemoveToken(context.Context, string) ([]string, error) {
	s.removed = true
	return []string{"project .npmrc"}, nil
}

type createCall struct {
	fw   scaffold.Framework
	name string
	cwd  string
	src  bool
}

type stubCreator struct {
	calls *[]createCall
	src   bool
	setup func(dir string)
}

func (c stubCreator) CreateProject(_ context.Context, fw scaffold.Framework, name, cwd string) (string, error) {
	*c.calls = append(*c.calls, createCall{fw: fw, name: name, cwd: cwd, src: c.src})
	dir := filepath.Join(cwd, name)
	c.setup(dir)
	return dir, nil
}

// fakeRegistry serves registry and auth endpoints from memory.
type fakeRegistry struct {
	mu    sync.Mutex
	items map[string]model.RegistryItem
	index []model.RegistryItem
	free  []string
	auth  []string
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	f.mu.Unlock()

	switch {
	case r.URL.Path == "/r/index.json":
		_ = json.NewEncoder(w).Encode(f.index)
	case r.URL.Path == "/api/registry/free":
		_ = json.NewEncoder(w).Encode(f.free)
	case strings.HasPrefix(r.URL.Path, "/api/registry/components/"):
		name := strings.TrimPrefix(r.URL.Path, "/api/registry/components/")
		item, ok := f.items[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(item)
	case r.URL.Path == "/api/auth/login":
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"token":"issued"}`))
	case r.URL.Path == "/api/auth/verify":
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"email":"ada@example.com","plan":"paid"}`))
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeRegistry) authHeaders() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.auth...)
}

func newFakeRegistry(items ...model.RegistryItem) *fakeRegistry {
	f := &fakeRegistry{items: map[string]model.RegistryItem{}}
	for _, it := range items {
		f.items[it.Name] = it
	}
	return f
}

type harness struct {
	m         *Manager
	prompter  *stubPrompter
	installer *stubInstaller
	tokens    *stubTokens
	registry  *fakeRegistry
	created   []createCall
	out       *bytes.Buffer
}

func newHarness(t *testing.T, reg *fakeRegistry) *harness {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	t.Setenv("npm_config_user_agent", "")

	srv := httptest.NewServer(reg)
	t.Cleanup(srv.Close)
	t.Setenv("REGISTRY_URL", srv.URL)

	configs, err := config.NewStore()
	require.NoError(t, err)

	h := &harness{
		prompter:  &stubPrompter{},
		installer: &stubInstaller{},
		tokens:    &stubTokens{},
		registry:  reg,
		out:       &bytes.Buffer{},
	}
	h.m = New(Deps{
		Prompter:  h.prompter,
		Reporter:  report.New(h.out, io.Discard, logrus.WarnLevel),
		Configs:   configs,
		Tokens:    h.tokens,
		Installer: h.installer,
		Creator: func(srcDir bool) ProjectCreator {
			return stubCreator{calls: &h.created, src: srcDir, setup: func(dir string) { viteProject(t, dir) }}
		},
	})
	return h
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// nextProject lays out a Next.js app router project rooted at dir.
func nextProject(t *testing.T, dir string, withConfig bool) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "package.json"), `{"dependencies":{"next":"15.0.0"}}`)
	writeFile(t, filepath.Join(dir, "next.config.mjs"), "export default {}\n")
	writeFile(t, filepath.Join(dir, "tsconfig.json"), `{"compilerOptions":{"baseUrl":".","paths":{"@/*":["./*"]}}}`)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app"), 0o755))
	if withConfig {
		writeFile(t, filepath.Join(dir, "components.json"), `{"rsc":true,"tsx":true,"aliases":{"components":"@/components"}}`)
	}
}

func viteProject(t *testing.T, dir string) {
	t.Helper()
	writeFile(t, filepath.Join(dir, "package.json"), `{"devDependencies":{"vite":"6.0.0"}}`)
	writeFile(t, filepath.Join(dir, "vite.config.ts"), "export default {}\n")
	writeFile(t, filepath.Join(dir, "tsconfig.json"), `{"compilerOptions":{"baseUrl":".","paths":{"@/*":["./src/*"]}}}`)
}

func uiItem(name string, registryDeps ...string) model.RegistryItem {
	return model.RegistryItem{
		Name:                 name,
		Type:                 model.TypeUI,
		Dependencies:         []string{"@tiptap/react"},
		RegistryDependencies: registryDeps,
		Files: []model.RegistryFile{{
			Path:    "components/tiptap-ui/" + name + "/" + name + ".tsx",
			Content: "export function " + strings.ReplaceAll(name, "-", "") + "() { return null }\n",
			Type:    model.TypeUI,
		}},
	}
}

func typedItem(name string, t model.ItemType, path string) model.RegistryItem {
	return model.RegistryItem{
		Name:  name,
		Type:  t,
		Files: []model.RegistryFile{{Path: path, Content: "export const " + strings.ReplaceAll(name, "-", "") + " = 1\n", Type: t}},
	}
}
