package transform

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sarjann/tiptap-cli/internal/model"
)

// Context describes the file being rewritten and the project it lands in.
type Context struct {
	Filename  string
	Config    model.Config
	Framework model.Framework
}

type Transformer interface {
	Transform(content string, tc Context) (string, error)
}

// Func adapts a plain function to Transformer.
type Func func(content string, tc Context) (string, error)

func (f Func) Transform(content string, tc Context) (string, error) {
	return f(content, tc)
}

// Pipeline runs transformers in order. Files that are not scripts pass
// through untouched.
type Pipeline []Transformer

func Default() Pipeline {
	return Pipeline{Func(ImportAliases), Func(RemoveUseClient), Func(EnvVars)}
}

func (p Pipeline) Transform(content string, tc Context) (string, error) {
	if !IsScript(tc.Filename) {
		return content, nil
	}
	var err error
	for _, t := range p {
		content, err = t.Transform(content, tc)
		if err != nil {
			return "", fmt.Errorf("transform %s: %w", tc.Filename, err)
		}
	}
	return content, nil
}

var scriptExts = map[string]bool{
	".ts": true, ".tsx": true, ".js": true, ".jsx": true, ".mjs": true, ".cjs": true, ".mts": true, ".cts": true,
}

func IsScript(name string) bool {
	return scriptExts[strings.ToLower(filepath.Ext(name))]
}
