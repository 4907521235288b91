package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	ConfigFileName      = "components.json"
	DefaultRegistryURL  = "https://template.tiptap.dev"
	TiptapRegistry      = "https://registry.tiptap.dev/"
	TiptapRegistryScope = "@tiptap-pro"
	PlanFree            = "free"
	PlanPaid            = "paid"
)

type ItemType string

const (
	TypeUI          ItemType = "registry:ui"
	TypeUIPrimitive ItemType = "registry:ui-primitive"
	TypeUIUtils     ItemType = "registry:ui-utils"
	TypeExtension   ItemType = "registry:extension"
	TypeNode        ItemType = "registry:node"
	TypeHook        ItemType = "registry:hook"
	TypeLib         ItemType = "registry:lib"
	TypeContext     ItemType = "registry:context"
	TypeTemplate    ItemType = "registry:template"
	TypeIcon        ItemType = "registry:icon"
	TypeStyle       ItemType = "registry:style"
	TypeComponent   ItemType = "registry:component"
	TypePage        ItemType = "registry:page"
	TypeAsset       ItemType = "registry:asset"
)

var knownTypes = map[ItemType]bool{
	TypeUI: true, TypeUIPrimitive: true, TypeUIUtils: true, TypeExtension: true,
	TypeNode: true, TypeHook: true, TypeLib: true, TypeContext: true,
	TypeTemplate: true, TypeIcon: true, TypeStyle: true, TypeComponent: true,
	TypePage: true, TypeAsset: true,
}

func (t ItemType) Valid() bool {
	return knownTypes[t]
}

// Short returns the type without its "registry:" prefix.
func (t ItemType) Short() string {
	return strings.TrimPrefix(string(t), "registry:")
}

type RegistryFile struct {
	Path    string   `json:"path"`
	Content string   `json:"content,omitempty"`
	Type    ItemType `json:"type"`
	Target  string   `json:"target,omitempty"`
}

// UnmarshalJSON accepts the bare-string form used by the registry index.
func (f *RegistryFile) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*f = RegistryFile{Path: path}
		return nil
	}
	type plain RegistryFile
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = RegistryFile(p)
	return nil
}

type RegistryItem struct {
	Name                 string         `json:"name"`
	Type                 ItemType       `json:"type"`
	Description          string         `json:"description,omitempty"`
	Dependencies         []string       `json:"dependencies,omitempty"`
	DevDependencies      []string       `json:"devDependencies,omitempty"`
	RegistryDependencies []string       `json:"registryDependencies,omitempty"`
	Files                []RegistryFile `json:"files,omitempty"`
	Meta                 map[string]any `json:"meta,omitempty"`
	Plan                 string         `json:"plan,omitempty"`
	Hidden               bool           `json:"hidden,omitempty"`
}

func (it RegistryItem) Validate() error {
	if strings.TrimSpace(it.Name) == "" {
		return fmt.Errorf("registry item has empty name")
	}
	if !it.Type.Valid() {
		return fmt.Errorf("registry item %q has unknown type %q", it.Name, it.Type)
	}
	if it.Plan != "" && it.Plan != PlanFree && it.Plan != PlanPaid {
		return fmt.Errorf("registry item %q has unknown plan %q", it.Name, it.Plan)
	}
	for _, f := range it.Files {
		if f.Path == "" {
			return fmt.Errorf("registry item %q has a file without path", it.Name)
		}
		if f.Type != "" && !f.Type.Valid() {
			return fmt.Errorf("registry item %q file %q has unknown type %q", it.Name, f.Path, f.Type)
		}
	}
	return nil
}

// ResolvedTree is the merged view of a resolved set of registry items.
type ResolvedTree struct {
	Items           []RegistryItem
	Dependencies    []string
	DevDependencies []string
	Files           []RegistryFile
}

type FileError struct {
	File  string
	Error string
}

type FileOperationResult struct {
	Created []string
	Updated []string
	Skipped []string
	Errors  []FileError
}

func (r FileOperationResult) HasChanges() bool {
	return len(r.Created) > 0 || len(r.Updated) > 0
}

func (r FileOperationResult) Empty() bool {
	return !r.HasChanges() && len(r.Skipped) == 0 && len(r.Errors) == 0
}

type Framework string

const (
	FrameworkNextApp       Framework = "next-app"
	FrameworkNextPages     Framework = "next-pages"
	FrameworkRemix         Framework = "remix"
	FrameworkReactRouter   Framework = "react-router"
	FrameworkVite          Framework = "vite"
	FrameworkAstro         Framework = "astro"
	FrameworkLaravel       Framework = "laravel"
	FrameworkTanstackStart Framework = "tanstack-start"
	FrameworkGatsby        Framework = "gatsby"
	FrameworkManual        Framework = "manual"
)

type ProjectInfo struct {
	Framework   Framework
	IsSrcDir    bool
	IsRSC       bool
	IsTSX       bool
	AliasPrefix string
}
