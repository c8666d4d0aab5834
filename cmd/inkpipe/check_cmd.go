package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"inkpipe/internal/lint"
	"inkpipe/internal/optimize"
)

func lintCmd() *cobra.Command {
	var scan bool
	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check every listed document for metadata problems and write a JSON report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rels, err := listedDocs(cfg, scan)
			if err != nil {
				return err
			}
			rep, err := lint.New(cfg.Content.DocsDir, logger("lint")).Run(cmd.Context(), rels)
			if err != nil {
				return err
			}
			if err := lint.Write(cfg.Build.ReportPath, rep); err != nil {
				return err
			}
			fmt.Printf("%d posts: %d errors, %d warnings, %d infos\n", rep.TotalPosts, rep.Errors, rep.Warnings, rep.Infos)
			for _, r := range rep.Recommendations {
				fmt.Printf("  → %s\n", r)
			}
			fmt.Printf("Report written to %s\n", cfg.Build.ReportPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&scan, "scan", false, "Rescan the category folders and rewrite the posts list first")
	return cmd
}

func optimizeCmd() *cobra.Command {
	var scan, dryRun bool
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Fix short excerpts, long titles, missing tags and image alt text",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rels, err := listedDocs(cfg, scan)
			if err != nil {
				return err
			}
			o := optimize.New(cfg.Content.DocsDir, backupWriter(cfg), logger("optimize"))
			o.DryRun = dryRun

			results, st, err := o.OptimizeAll(cmd.Context(), rels)
			for _, r := range results {
				if r.Err != nil {
					fmt.Printf("✗ %s: %v\n", r.File, r.Err)
					continue
				}
				if !r.Changed() {
					continue
				}
				fmt.Printf("✓ %s\n", r.File)
				for _, c := range r.Changes {
					fmt.Printf("    %s\n", c)
				}
			}
			if err != nil {
				return err
			}

			kinds := make([]string, 0, len(st.ByKind))
			for k := range st.ByKind {
				kinds = append(kinds, string(k))
			}
			sort.Strings(kinds)
			fmt.Printf("%d files: %d optimized, %d skipped, %d errors\n", st.Total, st.Optimized, st.Skipped, st.Errors)
			for _, k := range kinds {
				fmt.Printf("  %s: %d\n", k, st.ByKind[optimize.ChangeKind(k)])
			}
			if dryRun {
				fmt.Println("(dry run, nothing written)")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&scan, "scan", false, "Rescan the category folders and rewrite the posts list first")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report changes without writing")
	return cmd
}

func lookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <slug>",
		Short: "Print one indexed post as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st, err := openStore(cfg, true)
			if err != nil {
				return err
			}
			defer st.Close()

			post, err := st.Lookup(args[0])
			if err != nil {
				return fmt.Errorf("lookup %q: %w", args[0], err)
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			return enc.Encode(post)
		},
	}
}
