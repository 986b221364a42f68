package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelscope/pkg/session"
)

// defaultPreviewCols is the terminal width of a printed frame.
const defaultPreviewCols = 80

// renderCommand creates the render command for one-shot frames.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		flags renderFlags
		zooms []string
		cols  int
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one frame to the terminal",
		Long: `Render computes one frame of the Mandelbrot set and prints it with
half-block characters, scaled to --cols terminal columns.

Each --zoom x,y zooms into the box of --margin pixels around that pixel of a
--width x --height frame, in order.`,
		Example: `  mandelscope render
  mandelscope render --region seahorse --color viridis
  mandelscope render --zoom 300,300 --zoom 120,80 --cols 120`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.resolve(cmd, c.Config)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			runner := c.newRunner(ctx, opts, flags.noCache)
			defer runner.Close()

			ex, err := session.Open(opts.Precise, opts.Resolution(), opts.Gradient, opts.MaxIters, opts.Inverted,
				session.WithRunner(runner), session.WithRegion(opts.Region))
			if err != nil {
				return err
			}
			for _, z := range zooms {
				x, y, err := parsePoint(z)
				if err != nil {
					return err
				}
				if err := ex.ZoomIn(x, y, session.Square(opts.Margin)); err != nil {
					return err
				}
			}

			res := previewResolution(opts.Resolution(), cols)

			watch := startStopwatch(logger)
			spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Computing %dx%d", res.Width, res.Height))
			spinner.Start()
			buf, err := ex.Recompute(session.WithProgress(ctx, spinner.SetProgress), res)
			spinner.Stop()
			if err != nil {
				return err
			}
			watch.done(fmt.Sprintf("Rendered %dx%d frame", buf.Width(), buf.Height()))

			fmt.Fprint(cmd.OutOrStdout(), halfBlocks(ex.Image()))

			st := ex.State()
			printKeyValue("numeric", st.Numeric)
			printKeyValue("depth", fmt.Sprint(st.Depth))
			printKeyValue("gradient", st.Gradient)
			printKeyValue("region", formatBounds(st.Rect))
			if st.Skipped > 0 {
				printWarning("%d pixels could not be evaluated", st.Skipped)
			}
			printNextStep("Explore interactively", "mandelscope explore --region "+opts.Region)
			return nil
		},
	}

	flags.register(cmd, true)
	cmd.Flags().StringArrayVar(&zooms, "zoom", nil, "zoom into pixel x,y (repeatable)")
	cmd.Flags().IntVar(&cols, "cols", defaultPreviewCols, "terminal columns of the printed frame")

	return cmd
}
