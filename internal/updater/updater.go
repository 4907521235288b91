package updater

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sarjann/tiptap-cli/internal/fsutil"
	"github.com/sarjann/tiptap-cli/internal/model"
	"github.com/sarjann/tiptap-cli/internal/placement"
	"github.com/sarjann/tiptap-cli/internal/report"
	"github.com/sarjann/tiptap-cli/internal/transform"
)

type Confirmer interface {
	Confirm(message string) (bool, error)
}

type Options struct {
	Overwrite bool
	Silent    bool
	// BackupDir, when set, receives a copy of every file before it is overwritten.
	BackupDir string
	Project   placement.Context
}

type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpNoop   Op = "noop"
)

// Change is the planned effect of writing one registry file.
type Change struct {
	Source  string
	Path    string
	Op      Op
	Content string
}

// Writer applies registry files to a project without clobbering local edits.
type Writer struct {
	confirm     Confirmer
	transformer transform.Transformer
	reporter    *report.Reporter
}

func NewWriter(confirm Confirmer, transformer transform.Transformer, reporter *report.Reporter) *Writer {
	if transformer == nil {
		transformer = transform.Default()
	}
	if reporter == nil {
		reporter = report.Discard()
	}
	return &Writer{confirm: confirm, transformer: transformer, reporter: reporter}
}

// UpdateFiles writes files into the project described by cfg. A failure on
// one file is recorded and does not stop the others.
func (w *Writer) UpdateFiles(ctx context.Context, files []model.RegistryFile, cfg model.Config, opts Options) model.FileOperationResult {
	var res model.FileOperationResult
	if len(files) == 0 {
		return res
	}
	sources := make([]string, 0, len(files))
	for _, f := range files {
		sources = append(sources, f.Path)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			res.Errors = append(res.Errors, model.FileError{File: file.Path, Error: err.Error()})
			continue
		}
		if file.Content == "" {
			continue
		}
		pc := opts.Project
		pc.CommonRoot = placement.FindCommonRoot(sources, file.Path)

		change, err := w.plan(file, cfg, pc)
		if err != nil {
			res.Errors = append(res.Errors, model.FileError{File: relPath(cfg.Cwd(), change.Path, file.Path), Error: err.Error()})
			continue
		}
		if change.Path == "" {
			w.reporter.Debugf("no destination for %s in %s", file.Path, pc.Framework)
			continue
		}
		rel := relPath(cfg.Cwd(), change.Path, file.Path)
		w.reporter.Debugf("%s %s -> %s (root %s)", change.Op, file.Path, rel, pc.CommonRoot)

		switch change.Op {
		case OpNoop:
			res.Skipped = append(res.Skipped, rel)
			continue
		case OpUpdate:
			if !opts.Overwrite {
				ok, err := w.confirmOverwrite(filepath.Base(file.Path))
				if err != nil {
					res.Errors = append(res.Errors, model.FileError{File: rel, Error: fmt.Sprintf("confirm overwrite: %v", err)})
					continue
				}
				if !ok {
					res.Skipped = append(res.Skipped, rel)
					continue
				}
			}
			if opts.BackupDir != "" {
				backup, err := fsutil.BackupFile(change.Path, opts.BackupDir)
				if err != nil {
					res.Errors = append(res.Errors, model.FileError{File: rel, Error: fmt.Sprintf("back up file: %v", err)})
					continue
				}
				w.reporter.Debugf("backed up %s to %s", rel, backup)
			}
		}

		if err := fsutil.AtomicWriteFile(change.Path, []byte(change.Content), 0o644); err != nil {
			res.Errors = append(res.Errors, model.FileError{File: rel, Error: fmt.Sprintf("write file: %v", err)})
			continue
		}
		if change.Op == OpCreate {
			res.Created = append(res.Created, rel)
		} else {
			res.Updated = append(res.Updated, rel)
		}
	}

	sort.Strings(res.Created)
	sort.Strings(res.Updated)
	sort.Strings(res.Skipped)
	sort.SliceStable(res.Errors, func(i, j int) bool { return res.Errors[i].File < res.Errors[j].File })

	r := w.reporter.Silenced(opts.Silent)
	r.Files(res)
	r.Break()
	return res
}

func (w *Writer) plan(file model.RegistryFile, cfg model.Config, pc placement.Context) (Change, error) {
	change := Change{Source: file.Path}
	dest, err := placement.ResolvePath(file, cfg, pc)
	if err != nil {
		return change, fmt.Errorf("resolve file path: %w", err)
	}
	if dest == "" {
		return change, nil
	}
	change.Path = dest

	content, err := w.transformer.Transform(file.Content, transform.Context{Filename: file.Path, Config: cfg, Framework: pc.Framework})
	if err != nil {
		return change, fmt.Errorf("transform content: %w", err)
	}
	change.Content = content

	existing, err := os.ReadFile(dest)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		change.Op = OpCreate
		return change, nil
	case err != nil:
		return change, fmt.Errorf("read existing file: %w", err)
	}
	if Normalize(string(existing)) == Normalize(content) {
		change.Op = OpNoop
		return change, nil
	}
	w.reporter.Debugf("content differs for %s: %s != %s", dest, fsutil.SHA256Hex(existing), fsutil.SHA256Hex([]byte(content)))
	change.Op = OpUpdate
	return change, nil
}

func (w *Writer) confirmOverwrite(name string) (bool, error) {
	if w.confirm == nil {
		return false, nil
	}
	return w.confirm.Confirm(fmt.Sprintf("The file %s already exists. Would you like to overwrite?", report.Highlight(name)))
}

// Normalize makes content comparable across line endings and surrounding whitespace.
func Normalize(content string) string {
	return strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
}

func relPath(cwd, dest, fallback string) string {
	if dest == "" {
		return fallback
	}
	rel, err := filepath.Rel(cwd, dest)
	if err != nil {
		return dest
	}
	return filepath.ToSlash(rel)
}
