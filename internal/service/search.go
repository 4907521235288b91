package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode"

	"github.com/sahilm/fuzzy"

	"github.com/sarjann/tiptap-cli/internal/model"
)

var planLabels = map[string]string{
	model.PlanFree: "Free",
	model.PlanPaid: "Paid",
}

// SearchResult is an index entry that matched a query.
type SearchResult struct {
	Item           model.RegistryItem
	Score          int
	MatchedIndexes []int
}

type indexSource []model.RegistryItem

func (s indexSource) String(i int) string { return s[i].Name }
func (s indexSource) Len() int            { return len(s) }

// Search fuzzy-matches query against the names of visible index items,
// best match first. An empty query lists every visible item.
func (m *Manager) Search(ctx context.Context, cwd, query string) ([]SearchResult, error) {
	items, err := m.List(ctx, cwd)
	if err != nil {
		return nil, err
	}
	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]SearchResult, 0, len(items))
		for _, it := range items {
			out = append(out, SearchResult{Item: it})
		}
		return out, nil
	}
	matches := fuzzy.FindFrom(query, indexSource(items))
	out := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		out = append(out, SearchResult{Item: items[match.Index], Score: match.Score, MatchedIndexes: match.MatchedIndexes})
	}
	return out, nil
}

// List returns the visible registry index sorted by type and name.
func (m *Manager) List(ctx context.Context, cwd string) ([]model.RegistryItem, error) {
	client, _, err := m.registryClient(ctx, cwd)
	if err != nil {
		return nil, err
	}
	index, err := client.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	items := visible(index)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Type != items[j].Type {
			return items[i].Type < items[j].Type
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// Info fetches the full definition of one registry item.
func (m *Manager) Info(ctx context.Context, cwd, name string) (model.RegistryItem, error) {
	if strings.TrimSpace(name) == "" {
		return model.RegistryItem{}, errors.New("component name is required")
	}
	client, _, err := m.registryClient(ctx, cwd)
	if err != nil {
		return model.RegistryItem{}, err
	}
	return client.FetchItem(ctx, name)
}

// PromptForComponents lets the user pick templates or components from the
// registry index. Without a registry token only free items are offered.
func (m *Manager) PromptForComponents(ctx context.Context, cwd string) ([]string, error) {
	client, token, err := m.registryClient(ctx, cwd)
	if err != nil {
		return nil, err
	}
	index, err := client.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	items := visible(index)

	byType := func(t model.ItemType) []model.RegistryItem {
		var out []model.RegistryItem
		for _, it := range items {
			if it.Type == t {
				out = append(out, it)
			}
		}
		return out
	}
	templates := byType(model.TypeTemplate)
	ui := byType(model.TypeUI)
	nodes := byType(model.TypeNode)
	primitives := byType(model.TypeUIPrimitive)

	var kinds []Choice
	if len(templates) > 0 {
		kinds = append(kinds, Choice{Label: "Templates", Value: "templates"})
	}
	if len(ui) > 0 || len(nodes) > 0 {
		kinds = append(kinds, Choice{Label: "Components", Value: "components"})
	}
	if len(kinds) == 0 {
		m.reporter.Error("No components or templates found")
		return nil, nil
	}
	kind, err := m.prompter.Select("What would you like to integrate:", kinds)
	if err != nil || kind == "" {
		return nil, err
	}

	allowed := func(model.RegistryItem) bool { return true }
	if token == "" {
		free, err := client.FetchFree(ctx)
		if err != nil {
			return nil, err
		}
		freeSet := make(map[string]bool, len(free))
		for _, n := range free {
			freeSet[n] = true
		}
		allowed = func(it model.RegistryItem) bool { return freeSet[it.Name] }
	}

	var choices []Choice
	label := "Select the templates you want to add:"
	if kind == "templates" {
		for _, it := range templates {
			if !allowed(it) {
				continue
			}
			name := ReadableName(it.Name)
			if it.Description != "" {
				name += " - " + it.Description
			}
			choices = append(choices, Choice{Label: name + " (" + planLabel(it.Plan) + ")", Value: it.Name})
		}
	} else {
		label = "Select the components you want to add:"
		sections := []struct {
			title string
			items []model.RegistryItem
		}{
			{"UI COMPONENTS", ui},
			{"NODE COMPONENTS", nodes},
			{"PRIMITIVES", primitives},
		}
		for _, s := range sections {
			for _, it := range s.items {
				if !allowed(it) {
					continue
				}
				choices = append(choices, Choice{
					Label: ReadableName(it.Name) + " (" + planLabel(it.Plan) + ")",
					Value: it.Name,
					Group: s.title,
				})
			}
		}
	}
	if len(choices) == 0 {
		m.reporter.Error("No components or templates found")
		return nil, nil
	}
	m.reporter.Warn("Some components (marked as Paid) require an active subscription!")
	return m.prompter.MultiSelect(label, choices)
}

func visible(items []model.RegistryItem) []model.RegistryItem {
	out := make([]model.RegistryItem, 0, len(items))
	for _, it := range items {
		if it.Name == "" || it.Hidden {
			continue
		}
		out = append(out, it)
	}
	return out
}

func planLabel(plan string) string {
	if l, ok := planLabels[plan]; ok {
		return l
	}
	return planLabels[model.PlanFree]
}

// ReadableName turns kebab-case or snake_case into Title Case.
func ReadableName(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' })
	for i, w := range words {
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		words[i] = string(rs)
	}
	return strings.Join(words, " ")
}
