package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"

	"github.com/sarjann/tiptap-cli/internal/report"
	"github.com/sarjann/tiptap-cli/internal/service"
)

const doneLabel = "Done"

func runTUI(ctx context.Context, out io.Writer, r *report.Reporter, mgr *service.Manager) error {
	fmt.Fprintln(out, "tiptap interactive mode")
	fmt.Fprintln(out, "Use arrow keys + Enter. Press Ctrl+C to exit.")

	items := []string{
		"Initialize project",
		"Add components",
		"Search registry",
		"Check auth status",
		"Quit",
	}

	for {
		fmt.Fprintln(out)
		choice, err := selectOne("Action", items)
		if err != nil {
			if isPromptCanceled(err) {
				fmt.Fprintln(out)
				return nil
			}
			return err
		}

		var actionErr error
		switch choice {
		case "Initialize project":
			_, actionErr = mgr.Init(ctx, service.InitOptions{Cwd: "."})
		case "Add components":
			actionErr = tuiAdd(ctx, mgr)
		case "Search registry":
			actionErr = tuiSearch(ctx, out, mgr)
		case "Check auth status":
			actionErr = printStatus(ctx, r, mgr, ".")
		case "Quit":
			fmt.Fprintln(out, "Goodbye.")
			return nil
		}
		if actionErr != nil {
			printError(r, actionErr)
		}
	}
}

func tuiAdd(ctx context.Context, mgr *service.Manager) error {
	cwd, err := absCwd(".")
	if err != nil {
		return err
	}
	names, err := mgr.PromptForComponents(ctx, cwd)
	if err != nil || len(names) == 0 {
		return err
	}
	cfg, err := loadProjectConfig(cwd)
	if err != nil {
		return err
	}
	_, err = mgr.AddComponents(ctx, names, cfg, service.AddOptions{})
	return err
}

func tuiSearch(ctx context.Context, out io.Writer, mgr *service.Manager) error {
	query, err := promptText("Search query")
	if err != nil {
		return err
	}
	results, err := mgr.Search(ctx, ".", query)
	if err != nil {
		return err
	}
	return printResults(out, results)
}

// promptuiPrompter answers service prompts on the terminal.
type promptuiPrompter struct{}

func (promptuiPrompter) Select(label string, choices []service.Choice) (string, error) {
	if len(choices) == 0 {
		return "", nil
	}
	items := make([]string, 0, len(choices))
	for _, c := range choices {
		items = append(items, choiceLabel(c))
	}
	prompt := promptui.Select{Label: label, Items: items, Size: min(len(items), 20)}
	idx, _, err := prompt.Run()
	if err != nil {
		if isPromptCanceled(err) {
			return "", nil
		}
		return "", err
	}
	return choices[idx].Value, nil
}

// MultiSelect toggles choices one at a time until Done is picked.
func (promptuiPrompter) MultiSelect(label string, choices []service.Choice) ([]string, error) {
	if len(choices) == 0 {
		return nil, nil
	}
	picked := make([]bool, len(choices))
	cursor := 0
	for {
		items := make([]string, 0, len(choices)+1)
		for i, c := range choices {
			mark := "[ ]"
			if picked[i] {
				mark = "[x]"
			}
			items = append(items, mark+" "+choiceLabel(c))
		}
		items = append(items, doneLabel)

		prompt := promptui.Select{
			Label:     label,
			Items:     items,
			Size:      min(len(items), 20),
			CursorPos: cursor,
		}
		idx, _, err := prompt.Run()
		if err != nil {
			if isPromptCanceled(err) {
				return nil, nil
			}
			return nil, err
		}
		if idx == len(choices) {
			break
		}
		picked[idx] = !picked[idx]
		cursor = idx
	}
	var out []string
	for i, c := range choices {
		if picked[i] {
			out = append(out, c.Value)
		}
	}
	return out, nil
}

func (promptuiPrompter) Confirm(message string) (bool, error) {
	ok, err := promptYesNo(message)
	if isPromptCanceled(err) {
		return false, nil
	}
	return ok, err
}

func (promptuiPrompter) Text(label string, mask bool) (string, error) {
	prompt := promptui.Prompt{Label: label}
	if mask {
		prompt.Mask = '*'
	}
	out, err := prompt.Run()
	if err != nil {
		if isPromptCanceled(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func choiceLabel(c service.Choice) string {
	if c.Group == "" {
		return c.Label
	}
	return fmt.Sprintf("%s  %s", c.Label, report.Highlight(strings.ToLower(c.Group)))
}

func promptText(label string) (string, error) {
	prompt := promptui.Prompt{Label: label}
	out, err := prompt.Run()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func promptYesNo(label string) (bool, error) {
	choice, err := selectOne(label, []string{"yes", "no"})
	if err != nil {
		return false, err
	}
	return choice == "yes", nil
}

func selectOne(label string, items []string) (string, error) {
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  len(items),
	}
	_, selected, err := prompt.Run()
	return selected, err
}

func isPromptCanceled(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF)
}
