package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarjann/tiptap-cli/internal/config"
	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/project"
	"github.com/sarjann/tiptap-cli/internal/report"
	"github.com/sarjann/tiptap-cli/internal/scaffold"
)

const defaultProjectName = "my-tiptap-project"

var (
	ErrMissingProject       = errors.New("missing directory or empty project, please create a new project first")
	ErrUnsupportedFramework = errors.New("could not detect a supported framework")
	ErrMissingImportAlias   = errors.New("no import alias found in your tsconfig.json file")
)

type InitOptions struct {
	Cwd        string
	Components []string
	Silent     bool
	SrcDir     bool
	// Framework selects the template for a new project ("next" or "vite").
	Framework string
}

// InitResult reports what Init did. Config is the zero value when the user
// stopped before components.json was written.
type InitResult struct {
	Config       model.Config
	ProjectPath  string
	IsNewProject bool
	Files        model.FileOperationResult
}

// Init prepares the project at opts.Cwd for registry components, creating
// a new project first when the directory holds none, and optionally adds
// components right away.
func (m *Manager) Init(ctx context.Context, opts InitOptions) (InitResult, error) {
	r := m.reporter.Silenced(opts.Silent)
	cwd, err := filepath.Abs(opts.Cwd)
	if err != nil {
		return InitResult{}, fmt.Errorf("resolve %s: %w", opts.Cwd, err)
	}
	res := InitResult{ProjectPath: cwd}

	if !project.HasPackageJSON(cwd) {
		projectPath, err := m.createProject(ctx, cwd, opts)
		if err != nil || projectPath == "" {
			return res, err
		}
		res.ProjectPath = projectPath
		res.IsNewProject = true
	}

	info, err := m.verifyProject(res.ProjectPath, res.IsNewProject, r)
	if err != nil {
		return res, err
	}

	raw, err := m.projectConfig(res.ProjectPath, info)
	if err != nil {
		return res, err
	}
	if err := m.configs.Save(ctx, res.ProjectPath, raw); err != nil {
		return res, err
	}
	r.Success("Writing %s.", model.ConfigFileName)

	cfg, err := config.ResolvePaths(res.ProjectPath, raw)
	if err != nil {
		return res, err
	}
	res.Config = cfg

	components := opts.Components
	if len(components) == 0 {
		ok, err := m.prompter.Confirm("Would you like to add a template or UI components to your project?")
		if err != nil || !ok {
			return res, err
		}
		if components, err = m.PromptForComponents(ctx, res.ProjectPath); err != nil {
			return res, err
		}
		if len(components) == 0 {
			return res, nil
		}
	}

	files, err := m.AddComponents(ctx, components, cfg, AddOptions{Silent: opts.Silent})
	res.Files = files
	return res, err
}

func (m *Manager) createProject(ctx context.Context, cwd string, opts InitOptions) (string, error) {
	if m.creator == nil {
		return "", ErrMissingProject
	}
	fw := scaffold.Framework(opts.Framework)
	if fw == "" {
		choices := make([]Choice, 0, len(scaffold.Frameworks))
		for _, f := range scaffold.Frameworks {
			choices = append(choices, Choice{Label: f.Label, Value: string(f.Framework)})
		}
		v, err := m.prompter.Select("What framework would you like to use?", choices)
		if err != nil || v == "" {
			return "", err
		}
		fw = scaffold.Framework(v)
	}
	if fw != scaffold.Next && fw != scaffold.Vite {
		return "", fmt.Errorf("invalid framework %q, please use 'next' or 'vite'", fw)
	}

	name, err := m.prompter.Text("What is your project named?", false)
	if err != nil {
		return "", err
	}
	if name == "" {
		name = defaultProjectName
	}

	// The target directory may not exist yet; the project is created in its parent.
	parent := cwd
	if fi, err := os.Stat(cwd); err != nil || !fi.IsDir() {
		parent = filepath.Dir(cwd)
	}
	m.reporter.Info("Creating a new %s project. This may take a few minutes.", report.Highlight(string(fw)))
	return m.creator(opts.SrcDir).CreateProject(ctx, fw, name, parent)
}

func (m *Manager) verifyProject(cwd string, isNew bool, r *report.Reporter) (model.ProjectInfo, error) {
	info, err := project.Detect(cwd)
	if err != nil {
		return info, fmt.Errorf("detect project: %w", err)
	}
	if isNew {
		return info, nil
	}
	if info.Framework == model.FrameworkManual {
		r.Fail("Verifying framework.")
		return info, fmt.Errorf("%w at %s", ErrUnsupportedFramework, cwd)
	}
	r.Success("Verifying framework. Found %s.", report.Highlight(string(info.Framework)))
	if info.AliasPrefix == "" {
		r.Fail("Validating import alias.")
		return info, ErrMissingImportAlias
	}
	r.Success("Validating import alias.")
	return info, nil
}

// projectConfig keeps an existing components.json, derives one from the
// detected project, and asks only when neither is possible.
func (m *Manager) projectConfig(cwd string, info model.ProjectInfo) (model.RawConfig, error) {
	raw, ok, err := config.Read(cwd)
	if err != nil {
		return model.RawConfig{}, err
	}
	if ok {
		return raw, nil
	}
	if info.Framework != model.FrameworkManual && info.AliasPrefix != "" {
		return config.Derive(info), nil
	}

	tsx, err := m.prompter.Confirm("Would you like to use TypeScript (recommended)?")
	if err != nil {
		return model.RawConfig{}, err
	}
	rsc, err := m.prompter.Confirm("Are you using React Server Components?")
	if err != nil {
		return model.RawConfig{}, err
	}
	return model.RawConfig{RSC: rsc, TSX: tsx, Aliases: config.DefaultAliases(info.AliasPrefix)}, nil
}
