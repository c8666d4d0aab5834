package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"inkpipe/internal/backup"
	"inkpipe/internal/domain/config"
	"inkpipe/internal/enrich"
	"inkpipe/internal/ingest"
	"inkpipe/internal/pipeline"
)

func TestDocRel(t *testing.T) {
	docs := t.TempDir()
	full := filepath.Join(docs, "blog", "a.md")
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{full, "blog/a.md", false},
		{"blog/new.md", "blog/new.md", false},
		{"blog/../ai/x.md", "ai/x.md", false},
		{"../escape.md", "", true},
		{filepath.Join(os.TempDir(), "nope-inkpipe", "x.md"), "", true},
	}
	for _, tt := range tests {
		got, err := docRel(docs, tt.arg)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("docRel(%q) = %q, %v", tt.arg, got, err)
		}
	}
}

func TestListedDocsNeedsListUnlessScanning(t *testing.T) {
	root := t.TempDir()
	cfg := config.Default()
	cfg.Content.DocsDir = filepath.Join(root, "docs")
	cfg.Content.PostsList = filepath.Join(root, "posts-list.json")
	if err := os.MkdirAll(filepath.Join(cfg.Content.DocsDir, "blog"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Content.DocsDir, "blog", "a.md"), []byte("a"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := listedDocs(cfg, false); !errors.Is(err, ingest.ErrListMissing) {
		t.Fatalf("err = %v", err)
	}
	if _, err := os.Stat(cfg.Content.PostsList); !os.IsNotExist(err) {
		t.Fatalf("list written without --scan: %v", err)
	}

	rels, err := listedDocs(cfg, true)
	if err != nil || strings.Join(rels, ",") != "blog/a.md" {
		t.Fatalf("scan = %v, %v", rels, err)
	}
	rels, err = listedDocs(cfg, false)
	if err != nil || strings.Join(rels, ",") != "blog/a.md" {
		t.Fatalf("list = %v, %v", rels, err)
	}
}

func TestRunProcessAllKeepsGoingPastFailures(t *testing.T) {
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	if err := os.MkdirAll(filepath.Join(docs, "blog"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docs, "blog", "ok.md"), []byte("body"), 0o644); err != nil {
		t.Fatal(err)
	}
	p := &pipeline.Processor{
		DocsDir: docs,
		Engine:  enrich.New(enrich.Options{}, nil, nil, nil),
		Writer:  backup.Writer{Root: docs, BackupRoot: filepath.Join(root, "bak")},
	}

	var out bytes.Buffer
	if err := runProcessAll(context.Background(), p, []string{"blog/gone.md", "blog/ok.md"}, &out); err != nil {
		t.Fatalf("per-document failure became an error: %v", err)
	}
	if !strings.Contains(out.String(), "1 changed, 0 skipped, 1 failed") || !strings.Contains(out.String(), "blog/gone.md") {
		t.Errorf("summary = %q", out.String())
	}
}
