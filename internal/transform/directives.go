package transform

import (
	"regexp"

	"github.com/sarjann/tiptap-cli/internal/model"
)

var (
	useClientRe     = regexp.MustCompile(`\A\s*["']use client["'];?[ \t]*(?:\r?\n)*`)
	nextPublicEnvRe = regexp.MustCompile(`process\.env\.NEXT_PUBLIC_([A-Za-z0-9_]+)`)
	processEnvRe    = regexp.MustCompile(`process\.env\.([A-Za-z0-9_]+)`)
)

// RemoveUseClient drops a leading "use client" directive from projects
// that do not use React Server Components.
func RemoveUseClient(content string, tc Context) (string, error) {
	if tc.Config.RSC {
		return content, nil
	}
	return useClientRe.ReplaceAllLiteralString(content, ""), nil
}

// EnvVars rewrites process.env lookups to import.meta.env for Vite.
func EnvVars(content string, tc Context) (string, error) {
	if tc.Framework != model.FrameworkVite {
		return content, nil
	}
	content = nextPublicEnvRe.ReplaceAllString(content, "import.meta.env.VITE_$1")
	return processEnvRe.ReplaceAllString(content, "import.meta.env.$1"), nil
}
