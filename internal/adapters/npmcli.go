package adapters

import (
	"context"
	"fmt"

	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/pkgmgr"
)

// CommandAdapter goes through `<pm> config` so the package manager decides
// which file the token lands in.
type CommandAdapter struct {
	pm     pkgmgr.Name
	cwd    string
	runner pkgmgr.Runner
}

func NewCommandAdapter(pm pkgmgr.Name, cwd string, runner pkgmgr.Runner) *CommandAdapter {
	return &CommandAdapter{pm: pm, cwd: cwd, runner: runner}
}

func (a *CommandAdapter) Name() string { return string(a.pm) + " config" }
func (a *CommandAdapter) Path() string { return a.cwd }

func (a *CommandAdapter) ReadToken(ctx context.Context) (string, error) {
	out, err := a.runner.Run(ctx, a.cwd, string(a.pm), "config", "get", AuthTokenKey)
	if err != nil {
		return "", err
	}
	if out == "undefined" {
		return "", nil
	}
	return out, nil
}

func (a *CommandAdapter) WriteToken(ctx context.Context, token string) error {
	if _, err := a.runner.Run(ctx, a.cwd, string(a.pm), "config", "set", ScopeRegistryKey, model.TiptapRegistry); err != nil {
		return fmt.Errorf("set %s scope registry: %w", a.pm, err)
	}
	if _, err := a.runner.Run(ctx, a.cwd, string(a.pm), "config", "set", AuthTokenKey, token); err != nil {
		return fmt.Errorf("set %s auth token: %w", a.pm, err)
	}
	return nil
}

func (a *CommandAdapter) RemoveToken(ctx context.Context) error {
	if _, err := a.runner.Run(ctx, a.cwd, string(a.pm), "config", "delete", AuthTokenKey); err != nil {
		return fmt.Errorf("delete %s auth token: %w", a.pm, err)
	}
	return nil
}
