package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	domainerr "inkpipe/internal/domain/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"SITE_URL", "NEXT_PUBLIC_SITE_URL", "INKPIPE_AI_PROVIDER", "INKPIPE_AI_BASE_URL",
		"INKPIPE_AI_MODEL", "OPENAI_API_KEY", "GEMINI_API_KEY", "API_KEY", "UNSPLASH_ACCESS_KEY"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, text string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(Default().CategoryKeys(), ","); got != "blog,practice,ai" {
		t.Errorf("keys = %s", got)
	}
}

func TestLoadYAML(t *testing.T) {
	clearEnv(t)
	p := writeFile(t, "site.yaml", `
site:
  site_url: https://blog.example.com
  author: someone
completion:
  batch_delay: 2s
categories:
  - key: notes
    folder: notes
    path: /notes
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Site.SiteURL != "https://blog.example.com" || cfg.Site.Author != "someone" {
		t.Errorf("site = %+v", cfg.Site)
	}
	if cfg.Completion.BatchDelay != 2*time.Second || cfg.Completion.ReadingSpeed != 300 {
		t.Errorf("completion = %+v", cfg.Completion)
	}
	if len(cfg.Categories) != 1 || cfg.Categories[0].Key != "notes" {
		t.Errorf("categories = %+v", cfg.Categories)
	}
	if cfg.Build.Now.IsZero() {
		t.Error("Now not set")
	}
}

func TestLoadTOMLAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SITE_URL", "https://env.example.com")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	p := writeFile(t, "site.toml", `
[ai]
provider = "openai"
model = "gpt-4o-mini"

[serve]
addr = ":9090"
`)
	cfg, err := Load(p)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Site.SiteURL != "https://env.example.com" {
		t.Errorf("site url = %q", cfg.Site.SiteURL)
	}
	if cfg.AI.Provider != "openai" || cfg.AI.APIKey != "sk-test" || cfg.AI.Model != "gpt-4o-mini" {
		t.Errorf("ai = %+v", cfg.AI)
	}
	if cfg.Serve.Addr != ":9090" || cfg.Serve.Debounce != 300*time.Millisecond {
		t.Errorf("serve = %+v", cfg.Serve)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	clearEnv(t)
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Content.DocsDir != filepath.Join("public", "docs") {
		t.Errorf("docs dir = %q", cfg.Content.DocsDir)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load should fail on a missing file")
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	cfg := Default()
	cfg.Site.SiteURL = "not a url"
	cfg.Categories = append(cfg.Categories, Category{Key: "blog", Folder: "x"}, Category{Key: "y"})
	cfg.AI.Provider = "claude"

	err := cfg.Validate()
	if !errors.Is(err, domainerr.ErrInvalidConfig) {
		t.Fatalf("err = %v", err)
	}
	var ve domainerr.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("not a ValidationError: %T", err)
	}
	if got := strings.Join(ve.Keys(), ","); got != "site.site_url,categories,ai.provider" {
		t.Errorf("keys = %s", got)
	}
	if len(ve.Problems) != 4 || !strings.Contains(err.Error(), "(4 problems)") {
		t.Errorf("error = %v", err)
	}
}
