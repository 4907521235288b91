package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sarjann/tiptap-cli/internal/config"
	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/pkgmgr"
	"github.com/sarjann/tiptap-cli/internal/project"
	"github.com/sarjann/tiptap-cli/internal/registry"
	"github.com/sarjann/tiptap-cli/internal/report"
	"github.com/sarjann/tiptap-cli/internal/service"
)

func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "tiptap",
		Short:         "Add Tiptap editor components and templates to your project",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			out := cmd.OutOrStdout()
			if !isInteractiveSession(in, out) {
				return cmd.Help()
			}
			r := newReporter(cmd)
			mgr, err := managerOrDie(r)
			if err != nil {
				return err
			}
			return runTUI(cmd.Context(), out, r, mgr)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().Bool("verbose", false, "Print debug output")

	cmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newSearchCmd(),
		newListCmd(),
		newInfoCmd(),
		newAuthCmd(),
	)

	return cmd
}

// Execute runs the root command and prints any error it returns.
func Execute(ctx context.Context) error {
	cmd := NewRootCmd()
	err := cmd.ExecuteContext(ctx)
	if err != nil {
		printError(newReporter(cmd), err)
	}
	return err
}

func managerOrDie(r *report.Reporter) (*service.Manager, error) {
	return service.NewManager(promptuiPrompter{}, r)
}

func newReporter(cmd *cobra.Command) *report.Reporter {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return report.New(cmd.OutOrStdout(), cmd.ErrOrStderr(), report.ParseLevel(verbose))
}

func isInteractiveSession(in io.Reader, out io.Writer) bool {
	inFile, ok := in.(*os.File)
	if !ok {
		return false
	}
	outFile, ok := out.(*os.File)
	if !ok {
		return false
	}
	inInfo, err := inFile.Stat()
	if err != nil {
		return false
	}
	outInfo, err := outFile.Stat()
	if err != nil {
		return false
	}
	return inInfo.Mode()&os.ModeCharDevice != 0 && outInfo.Mode()&os.ModeCharDevice != 0
}

func printError(r *report.Reporter, err error) {
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		if config.IsKind(err, config.KindInvalid) {
			r.Error("An invalid %s file was found at %s.", model.ConfigFileName, filepath.Dir(cfgErr.Path))
		}
		r.Error("%s", cfgErr.Error())
		if cfgErr.Suggestion != "" {
			r.Info("%s", cfgErr.Suggestion)
		}
		return
	}
	var regErr *registry.Error
	if errors.As(err, &regErr) {
		if registry.IsKind(err, registry.KindNetwork) {
			r.Error("%s", regErr.Error())
			r.Info("%s", "Check your network connection or the REGISTRY_URL setting.")
			return
		}
		r.Error("%s", regErr.Message)
		return
	}
	r.Error("%s", err)
}

func absCwd(cwd string) (string, error) {
	abs, err := filepath.Abs(cwd)
	if err != nil {
		return "", fmt.Errorf("resolve working directory: %w", err)
	}
	return abs, nil
}

func newInitCmd() *cobra.Command {
	var (
		framework string
		cwd       string
		silent    bool
		srcDir    bool
	)

	cmd := &cobra.Command{
		Use:   "init [components...]",
		Short: "Initialize your project and install dependencies",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := absCwd(cwd)
			if err != nil {
				return err
			}
			r := newReporter(cmd)
			mgr, err := managerOrDie(r)
			if err != nil {
				return err
			}
			res, err := mgr.Init(cmd.Context(), service.InitOptions{
				Cwd:        dir,
				Components: args,
				Silent:     silent,
				SrcDir:     srcDir,
				Framework:  framework,
			})
			if err != nil {
				return err
			}
			if res.Config.Cwd() == "" {
				return nil
			}
			r = r.Silenced(silent)
			r.Break()
			r.Success("%s", "Project initialization completed.")
			if res.IsNewProject {
				rel, err := filepath.Rel(dir, res.ProjectPath)
				if err != nil {
					rel = res.ProjectPath
				}
				r.Info("Get started with %s", report.Highlight("cd "+rel))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&framework, "framework", "f", "", "Framework for a new project (next, vite)")
	cmd.Flags().StringVarP(&cwd, "cwd", "c", ".", "The working directory")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Mute output")
	cmd.Flags().BoolVar(&srcDir, "src-dir", false, "Use the src directory when creating a new project")
	return cmd
}

func newAddCmd() *cobra.Command {
	var (
		overwrite bool
		cwd       string
		silent    bool
		backup    bool
	)

	cmd := &cobra.Command{
		Use:   "add [components...]",
		Short: "Add components or templates to your project",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := absCwd(cwd)
			if err != nil {
				return err
			}
			r := newReporter(cmd)
			mgr, err := managerOrDie(r)
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names, err = mgr.PromptForComponents(cmd.Context(), dir)
				if err != nil {
					return err
				}
				if len(names) == 0 {
					r.Warn("%s", "No components selected. Exiting.")
					return nil
				}
			}
			cfg, err := loadProjectConfig(dir)
			if err != nil {
				return err
			}
			_, err = mgr.AddComponents(cmd.Context(), names, cfg, service.AddOptions{
				Overwrite: overwrite,
				Silent:    silent,
				Backup:    backup,
			})
			return err
		},
	}
	cmd.Flags().BoolVarP(&overwrite, "overwrite", "o", false, "Overwrite existing files")
	cmd.Flags().StringVarP(&cwd, "cwd", "c", ".", "The working directory")
	cmd.Flags().BoolVarP(&silent, "silent", "s", false, "Mute output")
	cmd.Flags().BoolVar(&backup, "backup", false, "Back up files before overwriting them")
	return cmd
}

// loadProjectConfig checks that dir holds a project with a usable components.json.
func loadProjectConfig(dir string) (model.Config, error) {
	if !project.HasPackageJSON(dir) {
		return model.Config{}, service.ErrMissingProject
	}
	return config.Load(dir)
}

func newSearchCmd() *cobra.Command {
	var cwd string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the registry by component name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := managerOrDie(newReporter(cmd))
			if err != nil {
				return err
			}
			results, err := mgr.Search(cmd.Context(), cwd, args[0])
			if err != nil {
				return err
			}
			return printResults(cmd.OutOrStdout(), results)
		},
	}
	cmd.Flags().StringVarP(&cwd, "cwd", "c", ".", "The working directory")
	return cmd
}

func printResults(out io.Writer, results []service.SearchResult) error {
	if len(results) == 0 {
		fmt.Fprintln(out, "No results")
		return nil
	}
	items := make([]model.RegistryItem, 0, len(results))
	for _, res := range results {
		items = append(items, res.Item)
	}
	return printItems(out, items)
}

func printItems(out io.Writer, items []model.RegistryItem) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTYPE\tPLAN\tDESCRIPTION")
	for _, it := range items {
		plan := it.Plan
		if plan == "" {
			plan = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", it.Name, it.Type.Short(), plan, it.Description)
	}
	return tw.Flush()
}

func newListCmd() *cobra.Command {
	var (
		cwd    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available registry components",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := managerOrDie(newReporter(cmd))
			if err != nil {
				return err
			}
			items, err := mgr.List(cmd.Context(), cwd)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No components available")
				return nil
			}
			return printItems(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().StringVarP(&cwd, "cwd", "c", ".", "The working directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON output")
	return cmd
}

func newInfoCmd() *cobra.Command {
	var (
		cwd    string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "info <component>",
		Short: "Show a component's dependencies and files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := managerOrDie(newReporter(cmd))
			if err != nil {
				return err
			}
			item, err := mgr.Info(cmd.Context(), cwd, args[0])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), item)
			}
			printInfo(cmd.OutOrStdout(), item)
			return nil
		},
	}
	cmd.Flags().StringVarP(&cwd, "cwd", "c", ".", "The working directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the registry item as JSON")
	return cmd
}

func printInfo(out io.Writer, item model.RegistryItem) {
	fmt.Fprintf(out, "%s (%s)\n", service.ReadableName(item.Name), item.Type.Short())
	if item.Description != "" {
		fmt.Fprintln(out, item.Description)
	}
	printList(out, "Dependencies", item.Dependencies)
	printList(out, "Dev dependencies", item.DevDependencies)
	printList(out, "Registry dependencies", item.RegistryDependencies)
	files := make([]string, 0, len(item.Files))
	for _, f := range item.Files {
		files = append(files, f.Path)
	}
	printList(out, "Files", files)
}

func printList(out io.Writer, title string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, v := range values {
		fmt.Fprintf(out, "  - %s\n", v)
	}
}

func writeJSON(out io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with the Tiptap registry",
	}
	cmd.AddCommand(newAuthLoginCmd(), newAuthStatusCmd(), newAuthLogoutCmd())
	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		email       string
		password    string
		writeConfig bool
		cwd         string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the Tiptap registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := absCwd(cwd)
			if err != nil {
				return err
			}
			r := newReporter(cmd)
			mgr, err := managerOrDie(r)
			if err != nil {
				return err
			}
			opts := service.LoginOptions{Cwd: dir, Email: email, Password: password}
			if cmd.Flags().Changed("write-config") {
				opts.WriteConfig = &writeConfig
			}
			res, err := mgr.Login(cmd.Context(), opts)
			if err != nil {
				return err
			}

			r.Success("%s", "Authentication successful.")
			if res.Location != "" {
				r.Info("Registry token saved to %s", report.Highlight(res.Location))
				return nil
			}
			r.Break()
			r.Log("Your registry token: %s", report.Highlight(res.Token))
			berry := false
			if res.PackageManager == pkgmgr.Yarn {
				berry, err = pkgmgr.IsYarnBerry(cmd.Context(), pkgmgr.ExecRunner{}, dir)
				if err != nil {
					r.Debugf("yarn version: %v", err)
				}
			}
			service.TokenInstructions(r, res.PackageManager, res.Token, berry)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "Save the token to the package manager config")
	cmd.Flags().StringVarP(&cwd, "cwd", "c", ".", "The working directory")
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	var cwd string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current authentication status",
		RunE: func(cmd *cobra.Command, args []string) error {
			r := newReporter(cmd)
			mgr, err := managerOrDie(r)
			if err != nil {
				return err
			}
			return printStatus(cmd.Context(), r, mgr, cwd)
		},
	}
	cmd.Flags().StringVarP(&cwd, "cwd", "c", ".", "The working directory")
	return cmd
}

func printStatus(ctx context.Context, r *report.Reporter, mgr *service.Manager, cwd string) error {
	dir, err := absCwd(cwd)
	if err != nil {
		return err
	}
	st, err := mgr.Status(ctx, dir)
	if err != nil {
		return err
	}
	if !st.Authenticated {
		r.Info("%s", "Not authenticated with the Tiptap registry.")
		r.Info("Run %s to authenticate.", report.Highlight("tiptap auth login"))
		return nil
	}
	name := st.User.Name()
	if name == "" {
		name = "unknown user"
	}
	r.Success("Authenticated as %s", report.Highlight(name))
	plan := st.User.Plan
	if plan == "" {
		plan = model.PlanFree
	}
	r.Info("Plan: %s", strings.ToUpper(plan[:1])+plan[1:])
	if st.Token != "" {
		r.Info("Token: %s", st.Token)
	}
	if st.User.Expires != "" {
		r.Info("Token expires: %s", st.User.Expires)
	}
	return nil
}

func newAuthLogoutCmd() *cobra.Command {
	var cwd string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Remove saved registry tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := absCwd(cwd)
			if err != nil {
				return err
			}
			r := newReporter(cmd)
			mgr, err := managerOrDie(r)
			if err != nil {
				return err
			}
			removed, err := mgr.Logout(cmd.Context(), dir)
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				r.Info("%s", "No saved registry token found.")
				return nil
			}
			for _, loc := range removed {
				r.Success("Removed registry token from %s", loc)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cwd, "cwd", "c", ".", "The working directory")
	return cmd
}
