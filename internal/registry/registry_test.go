package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sarjann/tiptap-cli/internal/model"
)

// fakeRegistry serves items by name and counts how often each path is hit.
type fakeRegistry struct {
	mu     sync.Mutex
	items  map[string]model.RegistryItem
	status map[string]int
	hits   map[string]int
	auth   []string
}

func newFakeRegistry(items ...model.RegistryItem) *fakeRegistry {
	f := &fakeRegistry{items: map[string]model.RegistryItem{}, status: map[string]int{}, hits: map[string]int{}}
	for _, it := range items {
		f.items[it.Name] = it
	}
	return f
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.hits[r.URL.Path]++
	f.auth = append(f.auth, r.Header.Get("Authorization"))
	status := f.status[r.URL.Path]
	f.mu.Unlock()

	if status != 0 {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"error":"registry exploded"}`))
		return
	}
	switch {
	case r.URL.Path == "/r/index.json":
		_, _ = w.Write([]byte(`[{"name":"button","type":"registry:ui","files":["components/tiptap-ui/button/button.tsx"]},{"name":"secret","type":"registry:ui","hidden":true}]`))
		return
	case r.URL.Path == "/api/registry/free":
		_, _ = w.Write([]byte(`["button"]`))
		return
	case strings.HasPrefix(r.URL.Path, "/api/registry/components/"), strings.HasPrefix(r.URL.Path, "/r/"):
		name := strings.TrimSuffix(r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:], ".json")
		f.mu.Lock()
		item, ok := f.items[name]
		f.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(item)
		return
	}
	http.NotFound(w, r)
}

func (f *fakeRegistry) hitCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

func item(name string, deps ...string) model.RegistryItem {
	return model.RegistryItem{
		Name:                 name,
		Type:                 model.TypeUI,
		RegistryDependencies: deps,
		Files: []model.RegistryFile{{
			Path:    "components/tiptap-ui/" + name + "/" + name + ".tsx",
			Content: "export const " + name + " = 1",
			Type:    model.TypeUI,
		}},
	}
}

func newTestClient(t *testing.T, fake *fakeRegistry, token string) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL, Token: token, RequestsPerSecond: 1000})
	require.NoError(t, err)
	return c, srv
}

func componentPath(name string) string {
	return "/api/registry/components/" + name
}

func TestItemURL(t *testing.T) {
	c, err := NewClient(Options{BaseURL: "https://reg.example/"})
	require.NoError(t, err)

	tests := []struct {
		ref  string
		want string
	}{
		{ref: "button", want: "https://reg.example/api/registry/components/button"},
		{ref: "components/button.json", want: "https://reg.example/api/registry/components/button"},
		{ref: "index.json", want: "https://reg.example/r/index.json"},
		{ref: "styles/default.json", want: "https://reg.example/styles/default.json"},
		{ref: "https://other.example/r/x.json", want: "https://other.example/r/x.json"},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := c.ItemURL(tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err = c.ItemURL("  ")
	assert.Error(t, err)
}

func TestResolveItemsDiamondFetchesSharedDependencyOnce(t *testing.T) {
	fake := newFakeRegistry(item("a", "b", "c"), item("b", "d"), item("c", "d"), item("d"))
	c, srv := newTestClient(t, fake, "")

	keys, err := c.ResolveItems(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		srv.URL + componentPath("a"),
		srv.URL + componentPath("b"),
		srv.URL + componentPath("d"),
		srv.URL + componentPath("c"),
	}, keys)

	tree, err := c.ResolveTree(context.Background(), []string{"a"}, model.FrameworkVite)
	require.NoError(t, err)
	assert.Len(t, tree.Items, 4)
	for _, name := range []string{"a", "b", "c", "d"} {
		assert.Equal(t, 1, fake.hitCount(componentPath(name)), "item %s", name)
	}
}

func TestResolveItemsCycleTerminates(t *testing.T) {
	fake := newFakeRegistry(item("a", "b"), item("b", "a"))
	c, srv := newTestClient(t, fake, "")

	keys, err := c.ResolveItems(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + componentPath("a"), srv.URL + componentPath("b")}, keys)
	assert.Equal(t, 1, fake.hitCount(componentPath("a")))
}

func TestResolveItemsLaterNameDoesNotRefetch(t *testing.T) {
	fake := newFakeRegistry(item("a", "shared"), item("b", "shared"), item("shared"))
	c, _ := newTestClient(t, fake, "")

	keys, err := c.ResolveItems(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, keys, 3)
	assert.Equal(t, 1, fake.hitCount(componentPath("shared")))
}

func TestResolveItemsNameAndURLShareKey(t *testing.T) {
	fake := newFakeRegistry(item("button"))
	c, srv := newTestClient(t, fake, "")

	keys, err := c.ResolveItems(context.Background(), []string{"button", srv.URL + componentPath("button")})
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + componentPath("button")}, keys)
	assert.Equal(t, 1, fake.hitCount(componentPath("button")))
}

func TestResolveItemsDedupesSameItemUnderDifferentURL(t *testing.T) {
	fake := newFakeRegistry(item("button"))
	c, srv := newTestClient(t, fake, "")

	keys, err := c.ResolveItems(context.Background(), []string{"button", srv.URL + "/r/button.json"})
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + componentPath("button")}, keys)
}

func TestResolveItemsIndexFirst(t *testing.T) {
	fake := newFakeRegistry(item("a"), item("index"))
	c, srv := newTestClient(t, fake, "")

	keys, err := c.ResolveItems(context.Background(), []string{"a", "index"})
	require.NoError(t, err)
	assert.Equal(t, []string{srv.URL + componentPath("index"), srv.URL + componentPath("a")}, keys)
}

func TestResolveItemsAbortsOnMissingDependency(t *testing.T) {
	fake := newFakeRegistry(item("a", "ghost"))
	c, _ := newTestClient(t, fake, "")

	_, err := c.ResolveItems(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.True(t, IsKind(err, KindNotFound))
}

func TestResolveTreeMergesDependencies(t *testing.T) {
	x := item("x")
	x.Dependencies = []string{"foo"}
	x.DevDependencies = []string{"sass", "sass-embedded"}
	y := item("y")
	y.Dependencies = []string{"foo", "bar"}
	y.DevDependencies = []string{"sass"}
	fake := newFakeRegistry(x, y)
	c, _ := newTestClient(t, fake, "")

	tree, err := c.ResolveTree(context.Background(), []string{"x", "y"}, model.FrameworkNextApp)
	require.NoError(t, err)
	assert.Equal(t, []string{"foo", "bar"}, tree.Dependencies)
	assert.Equal(t, []string{"sass"}, tree.DevDependencies)
	require.Len(t, tree.Files, 2)
	assert.Equal(t, "components/tiptap-ui/x/x.tsx", tree.Files[0].Path)
}

func TestFilterDevDependencies(t *testing.T) {
	both := []string{"typescript", "sass", "sass-embedded"}
	tests := []struct {
		name      string
		deps      []string
		framework model.Framework
		want      []string
	}{
		{name: "vite keeps embedded", deps: both, framework: model.FrameworkVite, want: []string{"typescript", "sass-embedded"}},
		{name: "next app keeps sass", deps: both, framework: model.FrameworkNextApp, want: []string{"typescript", "sass"}},
		{name: "next pages keeps sass", deps: both, framework: model.FrameworkNextPages, want: []string{"typescript", "sass"}},
		{name: "other framework untouched", deps: both, framework: model.FrameworkAstro, want: both},
		{name: "only one present", deps: []string{"sass"}, framework: model.FrameworkVite, want: []string{"sass"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterDevDependencies(tt.deps, tt.framework))
		})
	}
}

func TestStatusErrors(t *testing.T) {
	tests := []struct {
		status int
		kind   ErrorKind
		msg    string
	}{
		{status: 401, kind: KindUnauthorized, msg: "tiptap auth login"},
		{status: 403, kind: KindForbidden, msg: "subscription plan"},
		{status: 404, kind: KindNotFound, msg: "was not found"},
		{status: 500, kind: KindFetch, msg: "registry exploded"},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			fake := newFakeRegistry(item("a"))
			fake.status[componentPath("a")] = tt.status
			c, _ := newTestClient(t, fake, "")

			_, err := c.FetchItem(context.Background(), "a")
			require.Error(t, err)
			var re *Error
			require.ErrorAs(t, err, &re)
			assert.Equal(t, tt.kind, re.Kind)
			assert.Equal(t, tt.status, re.Status)
			assert.Contains(t, re.Error(), tt.msg)
		})
	}
}

func TestFetchItemRejectsUnknownType(t *testing.T) {
	bad := item("a")
	bad.Type = "registry:widget"
	fake := newFakeRegistry(bad)
	c, _ := newTestClient(t, fake, "")

	_, err := c.FetchItem(context.Background(), "a")
	require.Error(t, err)
	assert.True(t, IsKind(err, KindDecode))
}

func TestBearerTokenIsSent(t *testing.T) {
	fake := newFakeRegistry(item("a"))
	c, _ := newTestClient(t, fake, "tok-123")

	_, err := c.FetchItem(context.Background(), "a")
	require.NoError(t, err)
	require.NotEmpty(t, fake.auth)
	assert.Equal(t, "Bearer tok-123", fake.auth[0])
}

func TestFetchIndexAndFree(t *testing.T) {
	fake := newFakeRegistry()
	c, _ := newTestClient(t, fake, "")

	idx, err := c.FetchIndex(context.Background())
	require.NoError(t, err)
	require.Len(t, idx, 2)
	assert.Equal(t, "components/tiptap-ui/button/button.tsx", idx[0].Files[0].Path)
	assert.True(t, idx[1].Hidden)

	free, err := c.FetchFree(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"button"}, free)
}

func TestParentMap(t *testing.T) {
	parent := item("editor", "button", "toolbar")
	parent.Type = model.TypeTemplate
	m := ParentMap([]model.RegistryItem{parent, item("button")})
	assert.Equal(t, "editor", m["button"].Name)
	assert.Equal(t, "editor", m["toolbar"].Name)
	_, ok := m["editor"]
	assert.False(t, ok)
}
