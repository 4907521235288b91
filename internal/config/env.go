package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sarjann/tiptap-cli/internal/model"
)

const defaultRequestsPerSecond = 10

// Env holds settings read from the process environment and an optional .env file.
type Env struct {
	RegistryURL       string
	RequestsPerSecond float64
}

// LoadEnv loads cwd/.env without overriding variables that are already set.
func LoadEnv(cwd string) Env {
	_ = godotenv.Load(filepath.Join(cwd, ".env"))

	env := Env{
		RegistryURL:       strings.TrimRight(strings.TrimSpace(os.Getenv("REGISTRY_URL")), "/"),
		RequestsPerSecond: defaultRequestsPerSecond,
	}
	if env.RegistryURL == "" {
		env.RegistryURL = model.DefaultRegistryURL
	}
	if raw := os.Getenv("TIPTAP_REGISTRY_RPS"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			env.RequestsPerSecond = v
		}
	}
	return env
}
