package pkgmgr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	dir  string
	name string
	args []string
}

type stubRunner struct {
	out   string
	err   error
	calls []call
}

func (s *stubRunner) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	s.calls = append(s.calls, call{dir: dir, name: name, args: args})
	return s.out, s.err
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o644))
}

func TestDetectFromLockfile(t *testing.T) {
	t.Setenv("npm_config_user_agent", "")
	tests := []struct {
		lockfile string
		want     Name
	}{
		{"bun.lockb", Bun},
		{"bun.lock", Bun},
		{"pnpm-lock.yaml", PNPM},
		{"yarn.lock", Yarn},
		{"package-lock.json", NPM},
	}
	for _, tt := range tests {
		t.Run(tt.lockfile, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, filepath.Join(dir, tt.lockfile))
			assert.Equal(t, tt.want, Detect(dir))
		})
	}
}

func TestDetectWalksUpToWorkspaceRoot(t *testing.T) {
	t.Setenv("npm_config_user_agent", "")
	root := t.TempDir()
	touch(t, filepath.Join(root, "pnpm-lock.yaml"))
	pkg := filepath.Join(root, "apps", "web")
	require.NoError(t, os.MkdirAll(pkg, 0o755))

	assert.Equal(t, PNPM, Detect(pkg))
}

func TestDetectFallsBackToUserAgent(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("npm_config_user_agent", "yarn/1.22.19 npm/? node/v20.0.0 darwin arm64")
	assert.Equal(t, Yarn, Detect(dir))

	t.Setenv("npm_config_user_agent", "")
	assert.Equal(t, NPM, Detect(dir))
}

func TestInstallArgs(t *testing.T) {
	assert.Equal(t, []string{"install", "a", "b"}, NPM.InstallArgs([]string{"a", "b"}, false))
	assert.Equal(t, []string{"install", "--save-dev", "sass"}, NPM.InstallArgs([]string{"sass"}, true))
	assert.Equal(t, []string{"add", "-D", "sass"}, PNPM.InstallArgs([]string{"sass"}, true))
	assert.Equal(t, []string{"add", "a"}, Bun.InstallArgs([]string{"a"}, false))
}

func TestInstallPackages(t *testing.T) {
	t.Setenv("npm_config_user_agent", "")
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "yarn.lock"))
	runner := &stubRunner{}
	inst := NewInstaller(runner, nil)

	require.NoError(t, inst.InstallPackages(context.Background(), []string{"@tiptap/react", "", "@tiptap/react", "sass"}, true, dir))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, call{dir: dir, name: "yarn", args: []string{"add", "-D", "@tiptap/react", "sass"}}, runner.calls[0])

	require.NoError(t, inst.InstallPackages(context.Background(), nil, false, dir))
	assert.Len(t, runner.calls, 1)
}

func TestInstallPackagesWrapsErrors(t *testing.T) {
	runner := &stubRunner{err: errors.New("boom")}
	err := NewInstaller(runner, nil).InstallPackages(context.Background(), []string{"x"}, false, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "install packages")
}

func TestIsYarnBerry(t *testing.T) {
	tests := []struct {
		out  string
		want bool
	}{
		{"1.22.19", false},
		{"3.6.4\n", true},
		{"4.0.0-rc.1", true},
	}
	for _, tt := range tests {
		t.Run(tt.out, func(t *testing.T) {
			got, err := IsYarnBerry(context.Background(), &stubRunner{out: tt.out}, t.TempDir())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := IsYarnBerry(context.Background(), &stubRunner{out: "not-a-version"}, t.TempDir())
	assert.Error(t, err)
}
