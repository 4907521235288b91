package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/sarjann/tiptap-cli/internal/config"
	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/paths"
	"github.com/sarjann/tiptap-cli/internal/placement"
	"github.com/sarjann/tiptap-cli/internal/project"
	"github.com/sarjann/tiptap-cli/internal/registry"
	"github.com/sarjann/tiptap-cli/internal/updater"
)

var errNoItems = errors.New("failed to fetch components from registry")

type AddOptions struct {
	Overwrite bool
	Silent    bool
	// Backup copies every overwritten file into the user's backup dir first.
	Backup bool
}

// AddComponents installs names and everything they depend on into the
// project described by cfg. When the tiptapUi alias lives in another
// package of the workspace, UI items are installed there instead.
func (m *Manager) AddComponents(ctx context.Context, names []string, cfg model.Config, opts AddOptions) (model.FileOperationResult, error) {
	ws, err := config.Workspace(cfg)
	if err != nil {
		return model.FileOperationResult{}, err
	}
	if ui, ok := ws[model.AliasTiptapUI]; ok && ui.Cwd() != cfg.Cwd() {
		m.reporter.Debugf("tiptapUi resolves into workspace package %s", ui.Cwd())
		return m.addWorkspaceComponents(ctx, names, cfg, ws, opts)
	}
	return m.addProjectComponents(ctx, names, cfg, opts)
}

func (m *Manager) addProjectComponents(ctx context.Context, names []string, cfg model.Config, opts AddOptions) (model.FileOperationResult, error) {
	r := m.reporter.Silenced(opts.Silent)
	client, _, err := m.registryClient(ctx, cfg.Cwd())
	if err != nil {
		return model.FileOperationResult{}, err
	}
	info, err := project.Detect(cfg.Cwd())
	if err != nil {
		return model.FileOperationResult{}, fmt.Errorf("detect project: %w", err)
	}

	tree, err := client.ResolveTree(ctx, names, info.Framework)
	if err != nil {
		r.Fail("Checking registry.")
		return model.FileOperationResult{}, err
	}
	if len(tree.Items) == 0 {
		r.Fail("Checking registry.")
		return model.FileOperationResult{}, errNoItems
	}
	r.Success("Checking registry.")

	if err := m.install(ctx, tree.Dependencies, false, cfg.Cwd(), opts.Silent); err != nil {
		return model.FileOperationResult{}, err
	}
	if err := m.install(ctx, tree.DevDependencies, true, cfg.Cwd(), opts.Silent); err != nil {
		return model.FileOperationResult{}, err
	}

	wopts, err := m.writeOptions(opts, opts.Silent, info)
	if err != nil {
		return model.FileOperationResult{}, err
	}
	return m.writer.UpdateFiles(ctx, tree.Files, cfg, wopts), nil
}

func (m *Manager) addWorkspaceComponents(ctx context.Context, names []string, cfg model.Config, ws model.WorkspaceConfig, opts AddOptions) (model.FileOperationResult, error) {
	r := m.reporter.Silenced(opts.Silent)
	client, _, err := m.registryClient(ctx, cfg.Cwd())
	if err != nil {
		return model.FileOperationResult{}, err
	}
	keys, err := client.ResolveItems(ctx, names)
	if err != nil {
		r.Fail("Checking registry.")
		return model.FileOperationResult{}, err
	}
	items, err := client.FetchItems(ctx, keys)
	if err != nil {
		r.Fail("Checking registry.")
		return model.FileOperationResult{}, err
	}
	if len(items) == 0 {
		r.Fail("Checking registry.")
		return model.FileOperationResult{}, errNoItems
	}
	r.Success("Checking registry.")

	parents := registry.ParentMap(items)
	infos := map[string]model.ProjectInfo{}
	var total model.FileOperationResult

	for _, item := range items {
		if _, ok := placement.AliasFor(item.Type); !ok {
			m.reporter.Debugf("skipping %s: no alias for %s", item.Name, item.Type)
			continue
		}
		target := cfg
		parent, hasParent := parents[item.Name]
		if item.Type == model.TypeUI || (hasParent && parent.Type == model.TypeUI) {
			if ui, ok := ws[model.AliasTiptapUI]; ok {
				target = ui
			}
		}
		uiDir := target.ResolvedPaths.Get(model.AliasTiptapUI)
		if uiDir == "" {
			continue
		}
		workspaceRoot := config.FindCommonRoot(cfg.Cwd(), uiDir)
		packageRoot := target.Cwd()

		info, ok := infos[packageRoot]
		if !ok {
			if info, err = project.Detect(packageRoot); err != nil {
				total.Errors = append(total.Errors, model.FileError{File: item.Name, Error: fmt.Sprintf("detect project: %v", err)})
				continue
			}
			infos[packageRoot] = info
		}

		if err := m.install(ctx, item.Dependencies, false, packageRoot, true); err != nil {
			total.Errors = append(total.Errors, model.FileError{File: item.Name, Error: err.Error()})
			continue
		}

		wopts, err := m.writeOptions(opts, true, info)
		if err != nil {
			return model.FileOperationResult{}, err
		}
		files := workspaceFiles(item, target, cfg)
		res := m.writer.UpdateFiles(ctx, files, target, wopts)

		rel := func(list []string) []string {
			out := make([]string, 0, len(list))
			for _, f := range list {
				out = append(out, relativeTo(workspaceRoot, packageRoot, f))
			}
			return out
		}
		total.Created = append(total.Created, rel(res.Created)...)
		total.Updated = append(total.Updated, rel(res.Updated)...)
		total.Skipped = append(total.Skipped, rel(res.Skipped)...)
		for _, fe := range res.Errors {
			total.Errors = append(total.Errors, model.FileError{File: relativeTo(workspaceRoot, packageRoot, fe.File), Error: fe.Error})
		}
	}

	sort.Strings(total.Created)
	sort.Strings(total.Updated)
	sort.Strings(total.Skipped)
	sort.SliceStable(total.Errors, func(i, j int) bool { return total.Errors[i].File < total.Errors[j].File })
	r.Files(total)
	r.Break()
	return total, nil
}

// workspaceFiles drops files that the foreign package has no alias for.
func workspaceFiles(item model.RegistryItem, target, cfg model.Config) []model.RegistryFile {
	if target.Cwd() == cfg.Cwd() {
		return item.Files
	}
	out := make([]model.RegistryFile, 0, len(item.Files))
	for _, f := range item.Files {
		t := f.Type
		if t == "" {
			t = item.Type
		}
		key, ok := placement.AliasFor(t)
		if !ok || target.ResolvedPaths.Get(key) == "" {
			continue
		}
		out = append(out, f)
	}
	return out
}

func relativeTo(root, packageRoot, file string) string {
	rel, err := filepath.Rel(root, filepath.Join(packageRoot, filepath.FromSlash(file)))
	if err != nil {
		return file
	}
	return filepath.ToSlash(rel)
}

func (m *Manager) install(ctx context.Context, names []string, dev bool, cwd string, silent bool) error {
	if len(names) == 0 || m.installer == nil {
		return nil
	}
	r := m.reporter.Silenced(silent)
	label := "Installing dependencies."
	if dev {
		label = "Installing dev dependencies."
	}
	if err := m.installer.InstallPackages(ctx, names, dev, cwd); err != nil {
		r.Fail("%s", label)
		return err
	}
	r.Success("%s", label)
	return nil
}

func (m *Manager) writeOptions(opts AddOptions, silent bool, info model.ProjectInfo) (updater.Options, error) {
	wopts := updater.Options{
		Overwrite: opts.Overwrite,
		Silent:    silent,
		Project:   placement.Context{IsSrcDir: info.IsSrcDir, Framework: info.Framework},
	}
	if opts.Backup {
		dir, err := paths.BackupDir()
		if err != nil {
			return updater.Options{}, err
		}
		wopts.BackupDir = dir
	}
	return wopts, nil
}
