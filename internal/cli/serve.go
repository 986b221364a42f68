package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelscope/internal/server"
)

// serveCommand runs the HTTP API until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags renderFlags
		addr  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve exploration sessions over HTTP",
		Long: `Serve starts the HTTP API. Each POST /sessions creates a session that is
zoomed and recolored through its own routes; frames are served as PNG.

The render flags set the defaults for new sessions.`,
		Example: `  mandelscope serve --addr :9000
  curl -X POST localhost:9000/sessions -d '{"region":"seahorse"}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, c.Config)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("addr") {
				addr = c.Config.Server.Addr
			}
			ctx := cmd.Context()

			runner := c.newRunner(ctx, opts, flags.noCache)
			defer runner.Close()

			srv := server.New(server.Config{
				Addr:       addr,
				Runner:     runner,
				Logger:     c.Logger,
				SessionTTL: c.Config.Server.SessionTTL.Duration,
				Defaults:   opts,
			})
			return srv.ListenAndServe(ctx)
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, else :8080)")
	return cmd
}
