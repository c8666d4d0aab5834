package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"inkpipe/internal/build"
)

// withBuilder opens the index, runs fn and closes the index again.
func withBuilder(ctx context.Context, setup func(b *build.Builder), fn func(ctx context.Context, b *build.Builder) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	b := &build.Builder{Cfg: cfg, Store: st, Log: logger("build")}
	if setup != nil {
		setup(b)
	}
	return fn(ctx, b)
}

func buildIndexCmd() *cobra.Command {
	var fromList bool
	cmd := &cobra.Command{
		Use:   "build-index",
		Short: "Rebuild the posts list and the post index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBuilder(cmd.Context(), func(b *build.Builder) { b.FromList = fromList },
				func(ctx context.Context, b *build.Builder) error {
					res, err := b.BuildIndex(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("Indexed %d posts (%d warnings)\n", res.Posts, len(res.Warnings))
					return nil
				})
		},
	}
	cmd.Flags().BoolVar(&fromList, "from-list", false, "Use the existing posts list instead of scanning the docs")
	return cmd
}

func buildFeedCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "build-feed",
		Short: "Write the RSS feed from the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBuilder(cmd.Context(), func(b *build.Builder) { b.Force = force },
				func(ctx context.Context, b *build.Builder) error {
					wrote, err := b.BuildFeed(ctx)
					if err != nil {
						return err
					}
					report(b.Cfg.Build.FeedPath, wrote)
					return nil
				})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Write even when nothing changed")
	return cmd
}

func buildSitemapCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "build-sitemap",
		Short: "Write the XML sitemap from the index",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBuilder(cmd.Context(), func(b *build.Builder) { b.Force = force },
				func(ctx context.Context, b *build.Builder) error {
					wrote, err := b.BuildSitemap(ctx)
					if err != nil {
						return err
					}
					report(b.Cfg.Build.SitemapPath, wrote)
					return nil
				})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Write even when nothing changed")
	return cmd
}

func buildCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the index, the feed and the sitemap",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBuilder(cmd.Context(), func(b *build.Builder) { b.Force = force },
				func(ctx context.Context, b *build.Builder) error {
					res, err := b.Run(ctx)
					if err != nil {
						return err
					}
					fmt.Printf("Built %d posts (%d warnings)\n", res.Posts, len(res.Warnings))
					return nil
				})
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Write artifacts even when nothing changed")
	return cmd
}

func report(path string, wrote bool) {
	if wrote {
		fmt.Printf("✓ wrote %s\n", path)
		return
	}
	fmt.Printf("· %s unchanged\n", path)
}
