package main

import (
	"github.com/spf13/cobra"

	"inkpipe/internal/build"
	mcpserver "inkpipe/internal/mcp"
	"inkpipe/internal/serve"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API and public files, rebuilding on changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Serve.Addr
			}
			st, err := openStore(cfg, false)
			if err != nil {
				return err
			}
			defer st.Close()

			b := &build.Builder{Cfg: cfg, Store: st, Log: logger("build")}
			s := serve.New(cfg, st, b, nil)
			defer s.Close()
			return s.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :8080)")
	return cmd
}

func mcpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Expose the post index to AI tools over MCP (stdio)",
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

			mcpserver.Version = Version
			return mcpserver.New(st).Run(cmd.Context())
		},
	}
}
