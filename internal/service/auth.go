package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sarjann/tiptap-cli/internal/auth"
	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/pkgmgr"
	"github.com/sarjann/tiptap-cli/internal/report"
)

var ErrAuthCanceled = errors.New("authentication cancelled")

type LoginOptions struct {
	Cwd      string
	Email    string
	Password string
	// WriteConfig is asked for interactively when nil.
	WriteConfig *bool
}

type LoginResult struct {
	Token          string
	PackageManager pkgmgr.Name
	// Location is where the token was saved; empty when it was not saved.
	Location string
}

type AuthStatus struct {
	Authenticated bool
	User          auth.User
	// Token is the verified token, masked for display.
	Token string
}

// Login exchanges credentials for a registry token and optionally saves it
// where the project's package manager reads it.
func (m *Manager) Login(ctx context.Context, opts LoginOptions) (LoginResult, error) {
	email, password := opts.Email, opts.Password
	var err error
	if email == "" {
		if email, err = m.prompter.Text("Email:", false); err != nil {
			return LoginResult{}, err
		}
	}
	if password == "" {
		if password, err = m.prompter.Text("Password:", true); err != nil {
			return LoginResult{}, err
		}
	}
	if email == "" || password == "" {
		return LoginResult{}, ErrAuthCanceled
	}

	pm := pkgmgr.Detect(opts.Cwd)
	write := false
	if opts.WriteConfig != nil {
		write = *opts.WriteConfig
	} else {
		write, err = m.prompter.Confirm(fmt.Sprintf("Would you like to save the auth token to your %s?", ConfigFileName(pm)))
		if err != nil {
			return LoginResult{}, err
		}
	}

	token, err := m.authClient(opts.Cwd).Login(ctx, email, password)
	if err != nil {
		return LoginResult{}, fmt.Errorf("authentication failed: %w", err)
	}
	res := LoginResult{Token: token, PackageManager: pm}
	if !write {
		return res, nil
	}
	if res.Location, err = m.tokens.SaveToken(ctx, token, opts.Cwd); err != nil {
		return res, err
	}
	m.reporter.Debugf("token saved to %s", res.Location)
	return res, nil
}

// Status verifies the project's registry token.
func (m *Manager) Status(ctx context.Context, cwd string) (AuthStatus, error) {
	token := m.token(ctx, cwd)
	if token == "" {
		return AuthStatus{}, nil
	}
	u, err := m.authClient(cwd).Verify(ctx, token)
	if errors.Is(err, auth.ErrUnauthenticated) {
		m.reporter.Debugf("token rejected: %v", err)
		return AuthStatus{}, nil
	}
	if err != nil {
		return AuthStatus{}, err
	}
	return AuthStatus{Authenticated: true, User: u, Token: auth.MaskToken(token)}, nil
}

// Logout removes the registry token from every location that holds it.
func (m *Manager) Logout(ctx context.Context, cwd string) ([]string, error) {
	return m.tokens.RemoveToken(ctx, cwd)
}

// ConfigFileName names the file the package manager keeps registry auth in.
func ConfigFileName(pm pkgmgr.Name) string {
	switch pm {
	case pkgmgr.Yarn:
		return ".yarnrc.yml"
	case pkgmgr.Bun:
		return "bunfig.toml"
	}
	return ".npmrc"
}

// TokenInstructions prints how to configure token by hand for pm.
func TokenInstructions(r *report.Reporter, pm pkgmgr.Name, token string, yarnBerry bool) {
	r.Info("To use this token manually, add it to your package manager configuration:")
	switch {
	case pm == pkgmgr.NPM || (pm == pkgmgr.Yarn && !yarnBerry):
		r.Info("%s config set %s:registry %s", pm, model.TiptapRegistryScope, model.TiptapRegistry)
		r.Info("%s config set //registry.tiptap.dev/:_authToken %s", pm, token)
	case pm == pkgmgr.Yarn:
		r.Info("Add to .yarnrc.yml:\nnpmScopes:\n  tiptap-pro:\n    npmRegistryServer: \"%s\"\n    npmAuthToken: \"%s\"", model.TiptapRegistry, token)
	case pm == pkgmgr.Bun:
		r.Info("Add to bunfig.toml:\n[install.scopes.tiptap-pro]\ntoken = \"%s\"\nurl = \"%s\"", token, model.TiptapRegistry)
	default:
		r.Info("Add to .npmrc:\n%s:registry=%s\n//registry.tiptap.dev/:_authToken=%s", model.TiptapRegistryScope, model.TiptapRegistry, token)
	}
}
