package registry

import (
	"context"

	"github.com/sarjann/tiptap-cli/internal/model"
)

const indexItem = "index"

// ResolveItems walks registryDependencies from names and returns the
// canonical URLs of every reachable item, in discovery order, each once.
func (c *Client) ResolveItems(ctx context.Context, names []string) ([]string, error) {
	visited := map[string]bool{}
	seenNames := map[string]bool{}
	var order []string

	for _, name := range prioritizeIndex(names) {
		stack := []string{name}
		for len(stack) > 0 {
			ref := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			key, err := c.ItemURL(ref)
			if err != nil {
				return nil, err
			}
			if visited[key] {
				continue
			}
			visited[key] = true

			item, err := c.FetchItem(ctx, key)
			if err != nil {
				return nil, err
			}
			// The same item reached under a second URL form is not walked again.
			if seenNames[item.Name] {
				c.log.WithField("item", item.Name).WithField("url", key).Debug("duplicate registry item")
				continue
			}
			seenNames[item.Name] = true
			order = append(order, key)

			for i := len(item.RegistryDependencies) - 1; i >= 0; i-- {
				stack = append(stack, item.RegistryDependencies[i])
			}
		}
	}
	return order, nil
}

// ResolveTree resolves names and merges the dependencies and files of every
// reachable item.
func (c *Client) ResolveTree(ctx context.Context, names []string, framework model.Framework) (model.ResolvedTree, error) {
	keys, err := c.ResolveItems(ctx, names)
	if err != nil {
		return model.ResolvedTree{}, err
	}
	items, err := c.FetchItems(ctx, keys)
	if err != nil {
		return model.ResolvedTree{}, err
	}
	return MergeItems(items, framework), nil
}

// MergeItems unions dependencies in first-seen order and concatenates files.
func MergeItems(items []model.RegistryItem, framework model.Framework) model.ResolvedTree {
	tree := model.ResolvedTree{Items: items}
	var deps, devDeps [][]string
	for _, it := range items {
		deps = append(deps, it.Dependencies)
		devDeps = append(devDeps, it.DevDependencies)
		tree.Files = append(tree.Files, it.Files...)
	}
	tree.Dependencies = unique(deps...)
	tree.DevDependencies = FilterDevDependencies(unique(devDeps...), framework)
	return tree
}

// FilterDevDependencies drops whichever of sass/sass-embedded the framework
// does not use when both are requested.
func FilterDevDependencies(deps []string, framework model.Framework) []string {
	hasSass, hasEmbedded := false, false
	for _, d := range deps {
		switch d {
		case "sass":
			hasSass = true
		case "sass-embedded":
			hasEmbedded = true
		}
	}
	if !hasSass || !hasEmbedded {
		return deps
	}
	var drop string
	switch framework {
	case model.FrameworkVite:
		drop = "sass"
	case model.FrameworkNextApp, model.FrameworkNextPages:
		drop = "sass-embedded"
	default:
		return deps
	}
	out := make([]string, 0, len(deps)-1)
	for _, d := range deps {
		if d != drop {
			out = append(out, d)
		}
	}
	return out
}

// ParentMap maps each dependency reference to the item that declared it.
// When several items declare the same dependency the last one wins.
func ParentMap(items []model.RegistryItem) map[string]model.RegistryItem {
	m := map[string]model.RegistryItem{}
	for _, it := range items {
		for _, dep := range it.RegistryDependencies {
			m[dep] = it
		}
	}
	return m
}

func prioritizeIndex(names []string) []string {
	out := make([]string, 0, len(names))
	hasIndex := false
	for _, n := range names {
		if n == indexItem || n == indexItem+".json" {
			hasIndex = true
			continue
		}
		out = append(out, n)
	}
	if hasIndex {
		out = append([]string{indexItem}, out...)
	}
	return out
}

func unique(lists ...[]string) []string {
	seen := map[string]bool{}
	var out []string
	for _, list := range lists {
		for _, s := range list {
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
