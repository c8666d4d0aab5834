package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"inkpipe/internal/pipeline"
)

func newProcessor(onlyMissing bool) (*pipeline.Processor, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	eng, aiEnabled := newEngine(cfg)
	p := &pipeline.Processor{
		DocsDir:     cfg.Content.DocsDir,
		Engine:      eng,
		Writer:      backupWriter(cfg),
		OnlyMissing: onlyMissing,
		Log:         logger("pipeline"),
	}
	// 只有真的调用模型时才需要限速
	if aiEnabled {
		p.Delay = cfg.Completion.BatchDelay
	}
	return p, nil
}

func processCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <path>",
		Short: "Complete the frontmatter of one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newProcessor(false)
			if err != nil {
				return err
			}
			rel, err := docRel(p.DocsDir, args[0])
			if err != nil {
				return err
			}
			out, err := p.ProcessOne(cmd.Context(), rel)
			if err != nil {
				return err
			}
			switch {
			case out.Changed:
				fmt.Printf("✓ %s updated\n", rel)
			default:
				fmt.Printf("· %s already complete\n", rel)
			}
			return nil
		},
	}
}

func processAllCmd() *cobra.Command {
	var scan, onlyMissing bool
	cmd := &cobra.Command{
		Use:   "process-all",
		Short: "Complete the frontmatter of every listed document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			rels, err := listedDocs(cfg, scan)
			if err != nil {
				return err
			}
			p, err := newProcessor(onlyMissing)
			if err != nil {
				return err
			}
			return runProcessAll(cmd.Context(), p, rels, os.Stdout)
		},
	}
	cmd.Flags().BoolVar(&scan, "scan", false, "Rescan the category folders and rewrite the posts list first")
	cmd.Flags().BoolVar(&onlyMissing, "only-missing", false, "Only touch documents without a frontmatter block")
	return cmd
}

// runProcessAll prints the batch summary. Per-document failures are listed
// but only an aborted batch is an error.
func runProcessAll(ctx context.Context, p *pipeline.Processor, rels []string, w io.Writer) error {
	st, err := p.ProcessAll(ctx, rels)
	fmt.Fprintf(w, "Processed %d documents: %d changed, %d skipped, %d failed\n", st.Total, st.Changed, st.Skipped, st.Failed)
	for _, f := range st.Failures {
		fmt.Fprintf(w, "  ✗ %s\n", f)
	}
	return err
}
