// Package main is the entrypoint for the inkpipe CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"inkpipe/internal/ai"
	"inkpipe/internal/backup"
	"inkpipe/internal/domain/config"
	"inkpipe/internal/enrich"
	"inkpipe/internal/imagesearch"
	"inkpipe/internal/index"
	"inkpipe/internal/ingest"
)

// Version is set at build time via ldflags.
var Version = "dev"

var (
	configPath string
	verbose    bool
)

func main() {
	root := &cobra.Command{
		Use:           "inkpipe",
		Short:         "Frontmatter completion and metadata pipeline for a markdown blog",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
	}

	root.AddCommand(processCmd())
	root.AddCommand(processAllCmd())
	root.AddCommand(buildIndexCmd())
	root.AddCommand(buildFeedCmd())
	root.AddCommand(buildSitemapCmd())
	root.AddCommand(buildCmd())
	root.AddCommand(lintCmd())
	root.AddCommand(optimizeCmd())
	root.AddCommand(lookupCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(versionCmd())

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "site.yaml", "Config file (.yaml or .toml); missing file means defaults")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the inkpipe version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(Version)
		},
	}
}

func logger(component string) *logrus.Entry {
	return logrus.WithField("component", component)
}

func loadConfig() (config.Config, error) {
	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return cfg, fmt.Errorf("config %s: %w", configPath, err)
	}
	return cfg, nil
}

func openStore(cfg config.Config, readOnly bool) (*index.Store, error) {
	if readOnly {
		if _, err := os.Stat(cfg.Content.IndexPath); err != nil {
			return nil, fmt.Errorf("index %s not found, run build-index first", cfg.Content.IndexPath)
		}
	}
	st, err := index.Open(index.OpenOptions{Path: cfg.Content.IndexPath, ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	return st, nil
}

func backupWriter(cfg config.Config) backup.Writer {
	return backup.Writer{Root: cfg.Content.DocsDir, BackupRoot: cfg.Content.BackupDir}
}

// newEngine wires the text generator and the image chain. A disabled
// generator is not an error; the engine then uses its offline fallbacks.
func newEngine(cfg config.Config) (*enrich.Engine, bool) {
	log := logger("cli")

	gen, err := ai.NewClient(cfg.AI)
	if err != nil {
		if errors.Is(err, ai.ErrDisabled) {
			log.WithError(err).Warn("AI generation disabled, using offline fallbacks")
		} else {
			log.WithError(err).Error("AI client setup failed, using offline fallbacks")
		}
		gen = nil
	}

	images := &imagesearch.Chain{
		Providers: []imagesearch.Provider{&imagesearch.Unsplash{
			AccessKey:  cfg.Images.UnsplashAccessKey,
			Endpoint:   cfg.Images.UnsplashEndpoint,
			Width:      cfg.Images.Width,
			HTTPClient: &http.Client{Timeout: cfg.Images.Timeout},
		}},
		PlaceholderBase: cfg.Images.PlaceholderBase,
		Width:           cfg.Images.Width,
		Height:          cfg.Images.Height,
		Log:             logger("imagesearch"),
	}

	eng := enrich.New(enrich.OptionsFromConfig(cfg), gen, images, logrus.NewEntry(logrus.StandardLogger()))
	if cfg.Completion.GuardPrompts {
		eng.WithGuard(enrich.NewPromptGuard(cfg.Completion.PromptBodyChars * 4))
	}
	return eng, gen != nil
}

// listedDocs returns the posts list. Only scan rediscovers the category
// folders and rewrites the list; a missing list is an error otherwise.
func listedDocs(cfg config.Config, scan bool) ([]string, error) {
	if !scan {
		rels, err := ingest.ReadList(cfg.Content.PostsList)
		if errors.Is(err, ingest.ErrListMissing) {
			return nil, fmt.Errorf("%w: %s (run build-index or pass --scan)", err, cfg.Content.PostsList)
		}
		return rels, err
	}
	rels, err := ingest.Discover(cfg.Content.DocsDir, categoryFolders(cfg))
	if err != nil {
		return nil, err
	}
	if err := ingest.WriteList(cfg.Content.PostsList, rels); err != nil {
		return nil, err
	}
	logger("cli").WithField("count", len(rels)).Info("posts list rescanned")
	return rels, nil
}

func categoryFolders(cfg config.Config) []string {
	out := make([]string, 0, len(cfg.Categories))
	for _, c := range cfg.Categories {
		out = append(out, c.Folder)
	}
	return out
}

// docRel turns a CLI path argument into a docs-relative, slash-separated
// path. Paths that exist on disk are resolved against the docs directory;
// anything else is taken as already docs-relative.
func docRel(docsDir, arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		absDocs, err := filepath.Abs(docsDir)
		if err != nil {
			return "", err
		}
		absArg, err := filepath.Abs(arg)
		if err != nil {
			return "", err
		}
		rel, err := filepath.Rel(absDocs, absArg)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%s is outside the docs directory %s", arg, docsDir)
		}
		return filepath.ToSlash(rel), nil
	}
	rel := filepath.ToSlash(filepath.Clean(arg))
	if filepath.IsAbs(arg) || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%s is outside the docs directory %s", arg, docsDir)
	}
	return rel, nil
}
