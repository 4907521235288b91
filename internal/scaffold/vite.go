package scaffold

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/sarjann/tiptap-cli/internal/fsutil"
	"github.com/sarjann/tiptap-cli/internal/pkgmgr"
)

func (c *Creator) createVite(ctx context.Context, projectPath, name, cwd string, pm pkgmgr.Name) error {
	if _, err := c.runner.Run(ctx, cwd, "npm", "create", "vite@latest", name, "--", "--template", "react-ts"); err != nil {
		return fmt.Errorf("create Vite project: %w", err)
	}
	if _, err := c.runner.Run(ctx, projectPath, string(pm), "install"); err != nil {
		return fmt.Errorf("install dependencies: %w", err)
	}
	if err := SetupViteAliases(projectPath); err != nil {
		c.log.WithError(err).Warn("Failed to set up TypeScript path aliases, but project creation succeeded")
	}
	if err := InitGitRepository(projectPath, time.Now()); err != nil {
		c.log.WithError(err).Warn("Failed to initialize git repository, but project creation succeeded")
	}
	return nil
}

// SetupViteAliases maps "@/*" to ./src in the tsconfig files and vite.config.ts.
func SetupViteAliases(projectPath string) error {
	for _, name := range []string{"tsconfig.json", "tsconfig.app.json"} {
		if err := addTSConfigAlias(filepath.Join(projectPath, name)); err != nil {
			return err
		}
	}
	return addViteConfigAlias(filepath.Join(projectPath, "vite.config.ts"))
}

func addTSConfigAlias(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	data = jsonc.ToJSON(data)
	if !gjson.ValidBytes(data) {
		return fmt.Errorf("invalid JSON in %s", filepath.Base(path))
	}

	paths := map[string]json.RawMessage{}
	gjson.GetBytes(data, "compilerOptions.paths").ForEach(func(k, v gjson.Result) bool {
		paths[k.String()] = json.RawMessage(v.Raw)
		return true
	})
	paths["@/*"] = json.RawMessage(`["./src/*"]`)
	rawPaths, err := json.Marshal(paths)
	if err != nil {
		return fmt.Errorf("encode paths: %w", err)
	}

	if data, err = sjson.SetBytes(data, "compilerOptions.baseUrl", "."); err != nil {
		return fmt.Errorf("set baseUrl: %w", err)
	}
	if data, err = sjson.SetRawBytes(data, "compilerOptions.paths", rawPaths); err != nil {
		return fmt.Errorf("set paths: %w", err)
	}
	return fsutil.AtomicWriteFile(path, pretty.Pretty(data), 0o644)
}

func addViteConfigAlias(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read vite config: %w", err)
	}
	src := string(data)
	if strings.Contains(src, "resolve:") {
		return nil
	}
	for _, imp := range []string{"import { defineConfig } from 'vite'", `import { defineConfig } from "vite"`} {
		if strings.Contains(src, imp) {
			src = strings.Replace(src, imp, imp+"\nimport path from 'path'", 1)
			break
		}
	}
	src = strings.Replace(src, "plugins: [react()]", `plugins: [react()],
  resolve: {
    alias: {
      '@': path.resolve(__dirname, './src')
    }
  }`, 1)
	return fsutil.AtomicWriteFile(path, []byte(src), 0o644)
}

// InitGitRepository creates a repository at dir and commits everything not ignored.
func InitGitRepository(dir string, when time.Time) error {
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		return fmt.Errorf("init repository: %w", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("stage files: %w", err)
	}
	_, err = wt.Commit("Initial commit", &git.CommitOptions{Author: commitAuthor(repo, when)})
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func commitAuthor(repo *git.Repository, when time.Time) *object.Signature {
	sig := &object.Signature{Name: "Tiptap CLI", Email: "cli@tiptap.dev", When: when}
	cfg, err := repo.ConfigScoped(gitconfig.GlobalScope)
	if err != nil {
		return sig
	}
	if cfg.User.Name != "" {
		sig.Name = cfg.User.Name
	}
	if cfg.User.Email != "" {
		sig.Email = cfg.User.Email
	}
	return sig
}
