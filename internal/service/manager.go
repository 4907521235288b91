package service

import (
	"context"
	"net/http"

	"github.com/sarjann/tiptap-cli/internal/adapters"
	"github.com/sarjann/tiptap-cli/internal/auth"
	"github.com/sarjann/tiptap-cli/internal/config"
	"github.com/sarjann/tiptap-cli/internal/pkgmgr"
	"github.com/sarjann/tiptap-cli/internal/registry"
	"github.com/sarjann/tiptap-cli/internal/report"
	"github.com/sarjann/tiptap-cli/internal/scaffold"
	"github.com/sarjann/tiptap-cli/internal/secrets"
	"github.com/sarjann/tiptap-cli/internal/transform"
	"github.com/sarjann/tiptap-cli/internal/updater"
)

// Choice is one option offered by a Prompter. Group names the section the
// option is listed under, if any.
type Choice struct {
	Label string
	Value string
	Group string
}

// Prompter asks the user questions. A cancelled prompt yields the zero
// answer and no error.
type Prompter interface {
	Select(label string, choices []Choice) (string, error)
	MultiSelect(label string, choices []Choice) ([]string, error)
	Confirm(message string) (bool, error)
	Text(label string, mask bool) (string, error)
}

type ProjectCreator interface {
	CreateProject(ctx context.Context, fw scaffold.Framework, name, cwd string) (string, error)
}

type Installer interface {
	InstallPackages(ctx context.Context, names []string, dev bool, cwd string) error
}

type TokenStore interface {
	GetToken(ctx context.Context, cwd string) (string, error)
	SaveToken(ctx context.Context, token, cwd string) (string, error)
	RemoveToken(ctx context.Context, cwd string) ([]string, error)
}

// Deps are the collaborators a Manager works through.
type Deps struct {
	Prompter  Prompter
	Reporter  *report.Reporter
	Configs   *config.Store
	Tokens    TokenStore
	Installer Installer
	// Creator builds a ProjectCreator for the requested src-dir layout.
	Creator    func(srcDir bool) ProjectCreator
	HTTPClient *http.Client
}

type Manager struct {
	prompter  Prompter
	reporter  *report.Reporter
	configs   *config.Store
	tokens    TokenStore
	installer Installer
	creator   func(srcDir bool) ProjectCreator
	http      *http.Client
	writer    *updater.Writer
}

func New(d Deps) *Manager {
	if d.Reporter == nil {
		d.Reporter = report.Discard()
	}
	return &Manager{
		prompter:  d.Prompter,
		reporter:  d.Reporter,
		configs:   d.Configs,
		tokens:    d.Tokens,
		installer: d.Installer,
		creator:   d.Creator,
		http:      d.HTTPClient,
		writer:    updater.NewWriter(d.Prompter, transform.Default(), d.Reporter),
	}
}

// NewManager wires a Manager against the real filesystem, package manager
// and OS keychain.
func NewManager(prompter Prompter, reporter *report.Reporter) (*Manager, error) {
	if reporter == nil {
		reporter = report.Discard()
	}
	configs, err := config.NewStore()
	if err != nil {
		return nil, err
	}
	dirs, err := adapters.DefaultDirs()
	if err != nil {
		return nil, err
	}
	log := reporter.Logger()
	runner := pkgmgr.ExecRunner{}

	return New(Deps{
		Prompter:  prompter,
		Reporter:  reporter,
		Configs:   configs,
		Tokens:    auth.NewStore(runner, secrets.NewKeyringStore(), dirs, log),
		Installer: pkgmgr.NewInstaller(runner, log),
		Creator: func(srcDir bool) ProjectCreator {
			return scaffold.NewCreator(runner, scaffold.Options{SrcDir: srcDir}, log)
		},
	}), nil
}

// registryClient returns a client for the registry configured for cwd,
// authenticated with the project's token when one is found.
func (m *Manager) registryClient(ctx context.Context, cwd string) (*registry.Client, string, error) {
	env := config.LoadEnv(cwd)
	token := m.token(ctx, cwd)
	c, err := registry.NewClient(registry.Options{
		BaseURL:           env.RegistryURL,
		Token:             token,
		RequestsPerSecond: env.RequestsPerSecond,
		HTTPClient:        m.http,
		Logger:            m.reporter.Logger(),
	})
	if err != nil {
		return nil, "", err
	}
	m.reporter.Debugf("registry %s (authenticated: %t)", c.BaseURL(), token != "")
	return c, token, nil
}

func (m *Manager) authClient(cwd string) *auth.Client {
	return auth.NewClient(config.LoadEnv(cwd).RegistryURL, m.http)
}

func (m *Manager) token(ctx context.Context, cwd string) string {
	if m.tokens == nil {
		return ""
	}
	token, err := m.tokens.GetToken(ctx, cwd)
	if err != nil {
		m.reporter.Debugf("token lookup failed: %v", err)
		return ""
	}
	return token
}
