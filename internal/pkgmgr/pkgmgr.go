package pkgmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/sirupsen/logrus"
)

type Name string

const (
	NPM  Name = "npm"
	Yarn Name = "yarn"
	PNPM Name = "pnpm"
	Bun  Name = "bun"
)

var lockfiles = []struct {
	file string
	pm   Name
}{
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
	{"pnpm-lock.yaml", PNPM},
	{"yarn.lock", Yarn},
	{"package-lock.json", NPM},
}

// Detect finds the package manager for cwd from the nearest lockfile,
// falling back to the invoking package manager and then npm.
func Detect(cwd string) Name {
	dir, err := filepath.Abs(cwd)
	if err == nil {
		for {
			for _, lf := range lockfiles {
				if _, err := os.Stat(filepath.Join(dir, lf.file)); err == nil {
					return lf.pm
				}
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}
	if pm, ok := fromUserAgent(os.Getenv("npm_config_user_agent")); ok {
		return pm
	}
	return NPM
}

func fromUserAgent(ua string) (Name, bool) {
	name, _, _ := strings.Cut(ua, "/")
	switch Name(name) {
	case NPM, Yarn, PNPM, Bun:
		return Name(name), true
	}
	return "", false
}

// InstallArgs returns the arguments that add names to a project.
func (n Name) InstallArgs(names []string, dev bool) []string {
	var args []string
	if n == NPM {
		args = append(args, "install")
		if dev {
			args = append(args, "--save-dev")
		}
	} else {
		args = append(args, "add")
		if dev {
			args = append(args, "-D")
		}
	}
	return append(args, names...)
}

// IsYarnBerry reports whether the yarn available in dir is version 2 or later.
func IsYarnBerry(ctx context.Context, runner Runner, dir string) (bool, error) {
	out, err := runner.Run(ctx, dir, string(Yarn), "--version")
	if err != nil {
		return false, err
	}
	v, err := semver.NewVersion(strings.TrimSpace(out))
	if err != nil {
		return false, fmt.Errorf("parse yarn version %q: %w", out, err)
	}
	return v.Major() >= 2, nil
}

type Installer struct {
	runner Runner
	log    logrus.FieldLogger
}

func NewInstaller(runner Runner, log logrus.FieldLogger) *Installer {
	if runner == nil {
		runner = ExecRunner{}
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(os.Stderr)
		l.SetLevel(logrus.WarnLevel)
		log = l
	}
	return &Installer{runner: runner, log: log}
}

// InstallPackages installs names into the project at cwd with its package manager.
func (i *Installer) InstallPackages(ctx context.Context, names []string, dev bool, cwd string) error {
	names = dedupe(names)
	if len(names) == 0 {
		return nil
	}
	pm := Detect(cwd)
	args := pm.InstallArgs(names, dev)
	i.log.WithFields(logrus.Fields{"pm": pm, "cwd": cwd, "dev": dev}).Debugf("installing %s", strings.Join(names, " "))
	if _, err := i.runner.Run(ctx, cwd, string(pm), args...); err != nil {
		return fmt.Errorf("install packages: %w", err)
	}
	return nil
}

func dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
