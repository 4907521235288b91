package model

type AliasKey string

const (
	AliasComponents         AliasKey = "components"
	AliasContexts           AliasKey = "contexts"
	AliasHooks              AliasKey = "hooks"
	AliasTiptapIcons        AliasKey = "tiptapIcons"
	AliasLib                AliasKey = "lib"
	AliasTiptapExtensions   AliasKey = "tiptapExtensions"
	AliasTiptapNodes        AliasKey = "tiptapNodes"
	AliasTiptapUI           AliasKey = "tiptapUi"
	AliasTiptapUIPrimitives AliasKey = "tiptapUiPrimitives"
	AliasTiptapUIUtils      AliasKey = "tiptapUiUtils"
	AliasStyles             AliasKey = "styles"
)

// AliasKeys lists every alias in a stable order.
var AliasKeys = []AliasKey{
	AliasComponents,
	AliasContexts,
	AliasHooks,
	AliasTiptapIcons,
	AliasLib,
	AliasTiptapExtensions,
	AliasTiptapNodes,
	AliasTiptapUI,
	AliasTiptapUIPrimitives,
	AliasTiptapUIUtils,
	AliasStyles,
}

type Aliases struct {
	Components         string `json:"components"`
	Contexts           string `json:"contexts,omitempty"`
	Hooks              string `json:"hooks,omitempty"`
	TiptapIcons        string `json:"tiptapIcons,omitempty"`
	Lib                string `json:"lib,omitempty"`
	TiptapExtensions   string `json:"tiptapExtensions,omitempty"`
	TiptapNodes        string `json:"tiptapNodes,omitempty"`
	TiptapUI           string `json:"tiptapUi,omitempty"`
	TiptapUIPrimitives string `json:"tiptapUiPrimitives,omitempty"`
	TiptapUIUtils      string `json:"tiptapUiUtils,omitempty"`
	Styles             string `json:"styles,omitempty"`
}

func (a *Aliases) field(key AliasKey) *string {
	switch key {
	case AliasComponents:
		return &a.Components
	case AliasContexts:
		return &a.Contexts
	case AliasHooks:
		return &a.Hooks
	case AliasTiptapIcons:
		return &a.TiptapIcons
	case AliasLib:
		return &a.Lib
	case AliasTiptapExtensions:
		return &a.TiptapExtensions
	case AliasTiptapNodes:
		return &a.TiptapNodes
	case AliasTiptapUI:
		return &a.TiptapUI
	case AliasTiptapUIPrimitives:
		return &a.TiptapUIPrimitives
	case AliasTiptapUIUtils:
		return &a.TiptapUIUtils
	case AliasStyles:
		return &a.Styles
	}
	return nil
}

func (a Aliases) Get(key AliasKey) string {
	if p := a.field(key); p != nil {
		return *p
	}
	return ""
}

func (a *Aliases) Set(key AliasKey, value string) {
	if p := a.field(key); p != nil {
		*p = value
	}
}

// RawConfig is the on-disk shape of components.json.
type RawConfig struct {
	Schema  string  `json:"$schema,omitempty"`
	RSC     bool    `json:"rsc"`
	TSX     bool    `json:"tsx"`
	Aliases Aliases `json:"aliases"`
}

// ResolvedPaths holds absolute directories for the project root and every alias.
type ResolvedPaths struct {
	Cwd   string
	paths map[AliasKey]string
}

func NewResolvedPaths(cwd string) ResolvedPaths {
	return ResolvedPaths{Cwd: cwd, paths: map[AliasKey]string{}}
}

func (r ResolvedPaths) Get(key AliasKey) string {
	return r.paths[key]
}

func (r *ResolvedPaths) Set(key AliasKey, dir string) {
	if r.paths == nil {
		r.paths = map[AliasKey]string{}
	}
	r.paths[key] = dir
}

type Config struct {
	RawConfig
	ResolvedPaths ResolvedPaths
}

func (c Config) Cwd() string {
	return c.ResolvedPaths.Cwd
}

// WorkspaceConfig maps an alias to the config of the package that owns it.
type WorkspaceConfig map[AliasKey]Config
