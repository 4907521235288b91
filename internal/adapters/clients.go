package adapters

import (
	"context"
	"path/filepath"

	"github.com/sarjann/tiptap-cli/internal/paths"
	"github.com/sarjann/tiptap-cli/internal/pkgmgr"
)

func ProjectNpmrc(cwd string, dirs Dirs) *NpmrcAdapter {
	return NewNpmrcAdapter("project .npmrc", filepath.Join(cwd, ".npmrc"), dirs)
}

func GlobalNpmrc(dirs Dirs) (*NpmrcAdapter, error) {
	p, err := paths.GlobalNpmrc()
	if err != nil {
		return nil, err
	}
	return NewNpmrcAdapter("global .npmrc", p, dirs), nil
}

// ReadChain lists, in lookup order, every location a token for pm may live in.
func ReadChain(pm pkgmgr.Name, cwd string, runner pkgmgr.Runner, dirs Dirs) ([]Adapter, error) {
	chain := []Adapter{ProjectNpmrc(cwd, dirs)}
	switch pm {
	case pkgmgr.Bun:
		chain = append(chain, NewBunfigAdapter(filepath.Join(cwd, "bunfig.toml"), dirs))
	case pkgmgr.Yarn:
		chain = append(chain, NewYarnrcAdapter(filepath.Join(cwd, ".yarnrc.yml"), dirs))
	case pkgmgr.NPM:
		chain = append(chain, NewCommandAdapter(pkgmgr.NPM, cwd, runner))
	}
	global, err := GlobalNpmrc(dirs)
	if err != nil {
		return nil, err
	}
	return append(chain, global), nil
}

// WriteTarget picks where a new token for pm is saved. Yarn 1 and npm go
// through their config command; yarn 2+ uses .yarnrc.yml; bun uses
// bunfig.toml; everything else, including a yarn whose version cannot be
// read, uses the project .npmrc.
func WriteTarget(ctx context.Context, pm pkgmgr.Name, cwd string, runner pkgmgr.Runner, dirs Dirs) Adapter {
	switch pm {
	case pkgmgr.NPM:
		return NewCommandAdapter(pkgmgr.NPM, cwd, runner)
	case pkgmgr.Yarn:
		berry, err := pkgmgr.IsYarnBerry(ctx, runner, cwd)
		if err != nil {
			return ProjectNpmrc(cwd, dirs)
		}
		if berry {
			return NewYarnrcAdapter(filepath.Join(cwd, ".yarnrc.yml"), dirs)
		}
		return NewCommandAdapter(pkgmgr.Yarn, cwd, runner)
	case pkgmgr.Bun:
		return NewBunfigAdapter(filepath.Join(cwd, "bunfig.toml"), dirs)
	}
	return ProjectNpmrc(cwd, dirs)
}
