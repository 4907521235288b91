package adapters

import (
	"context"

	"github.com/sarjann/tiptap-cli/internal/model"
)

const (
	// AuthTokenKey is the npm config key holding the registry token.
	AuthTokenKey = "//registry.tiptap.dev/:_authToken"
	// ScopeRegistryKey routes the @tiptap-pro scope to the private registry.
	ScopeRegistryKey = model.TiptapRegistryScope + ":registry"
	scopeName        = "tiptap-pro"
)

// Adapter reads and writes the private registry token in one package
// manager configuration location. ReadToken returns "" when none is set.
type Adapter interface {
	Name() string
	Path() string
	ReadToken(ctx context.Context) (string, error)
	WriteToken(ctx context.Context, token string) error
	RemoveToken(ctx context.Context) error
}
