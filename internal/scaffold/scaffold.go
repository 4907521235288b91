package scaffold

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"

	"github.com/sarjann/tiptap-cli/internal/fsutil"
	"github.com/sarjann/tiptap-cli/internal/pkgmgr"
)

type Framework string

const (
	Next Framework = "next"
	Vite Framework = "vite"
)

// Frameworks lists the project templates that can be created, with labels.
var Frameworks = []struct {
	Framework Framework
	Label     string
}{
	{Next, "Next.js"},
	{Vite, "Vite + React + TypeScript"},
}

const maxNameLength = 128

var ErrProjectExists = errors.New("project already exists")

type Options struct {
	SrcDir      bool
	NextVersion string
}

// Creator bootstraps new projects with the framework's own generator.
type Creator struct {
	runner pkgmgr.Runner
	opts   Options
	log    logrus.FieldLogger
}

func NewCreator(runner pkgmgr.Runner, opts Options, log logrus.FieldLogger) *Creator {
	if runner == nil {
		runner = pkgmgr.ExecRunner{}
	}
	if opts.NextVersion == "" {
		opts.NextVersion = "latest"
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Creator{runner: runner, opts: opts, log: log}
}

// CreateProject creates name under cwd and returns the new project's path.
func (c *Creator) CreateProject(ctx context.Context, fw Framework, name, cwd string) (string, error) {
	if err := ValidateName(name); err != nil {
		return "", err
	}
	projectPath := filepath.Join(cwd, name)
	if err := validateProjectPath(cwd, projectPath); err != nil {
		return "", err
	}
	pm := pkgmgr.Detect(cwd)

	switch fw {
	case Next:
		if err := c.createNext(ctx, projectPath, cwd, pm); err != nil {
			return "", err
		}
	case Vite:
		if err := c.createVite(ctx, projectPath, name, cwd, pm); err != nil {
			return "", err
		}
	default:
		return "", fmt.Errorf("unsupported framework %q", fw)
	}
	if err := writeReadme(projectPath); err != nil {
		c.log.WithError(err).Debug("readme not written")
	}
	return projectPath, nil
}

func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return errors.New("project name is required")
	case len(name) > maxNameLength:
		return fmt.Errorf("name should be less than %d characters", maxNameLength)
	case strings.ContainsAny(name, `/\`) || name == "." || name == "..":
		return fmt.Errorf("invalid project name %q", name)
	}
	return nil
}

func validateProjectPath(cwd, projectPath string) error {
	fi, err := os.Stat(cwd)
	if err != nil || !fi.IsDir() {
		return fmt.Errorf("the path %s does not exist or is not a directory", cwd)
	}
	tmp, err := os.CreateTemp(cwd, ".tiptap-write-check-*")
	if err != nil {
		return fmt.Errorf("the path %s is not writable: %w", cwd, err)
	}
	tmp.Close()
	_ = os.Remove(tmp.Name())

	exists, err := fsutil.Exists(filepath.Join(projectPath, "package.json"))
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrProjectExists, filepath.Base(projectPath))
	}
	return nil
}

func (c *Creator) createNext(ctx context.Context, projectPath, cwd string, pm pkgmgr.Name) error {
	args := NextArgs(c.opts.NextVersion, projectPath, c.opts.SrcDir, pm)
	c.log.WithField("args", args).Debug("creating next project")
	if _, err := c.runner.Run(ctx, cwd, "npx", args...); err != nil {
		return fmt.Errorf("create Next.js project: %w", err)
	}
	return nil
}

// NextArgs builds the create-next-app invocation.
func NextArgs(version, projectPath string, srcDir bool, pm pkgmgr.Name) []string {
	srcFlag := "--no-src-dir"
	if srcDir {
		srcFlag = "--src-dir"
	}
	args := []string{
		"create-next-app@" + version,
		projectPath,
		"--silent",
		"--tailwind",
		"--eslint",
		"--typescript",
		"--app",
		srcFlag,
		"--no-import-alias",
		"--use-" + string(pm),
	}
	if UseTurbopack(version) {
		args = append(args, "--turbopack")
	}
	return args
}

// UseTurbopack reports whether the create-next-app version accepts --turbopack.
func UseTurbopack(version string) bool {
	if strings.HasPrefix(version, "latest") || strings.HasPrefix(version, "canary") {
		return true
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return v.Major() >= 15
}

const readme = `# Tiptap Editor Project

This project was created with the Tiptap CLI.

## Getting Started

Install dependencies and start the development server:

` + "```bash" + `
npm install
npm run dev
` + "```" + `

### Include Global Styles

Import the editor styles into your main CSS/SCSS entry point:

` + "```scss" + `
@import 'path-to/_variables.scss';
@import 'path-to/_keyframes-animations.scss';
` + "```" + `

## Documentation

https://tiptap.dev/docs/ui-components/templates/simple-editor
`

func writeReadme(projectPath string) error {
	return fsutil.AtomicWriteFile(filepath.Join(projectPath, "README.md"), []byte(readme), 0o644)
}
