package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelscope/pkg/config"
	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/gradient"
	"github.com/matzehuels/mandelscope/pkg/pipeline"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

// renderFlags binds the render settings shared by render, explore and serve.
// Values only count when the user sets them; otherwise the config file
// (or the built-in default) wins.
type renderFlags struct {
	opts    pipeline.Options
	noCache bool
}

func (f *renderFlags) register(cmd *cobra.Command, withSize bool) {
	fl := cmd.Flags()
	if withSize {
		fl.IntVar(&f.opts.Width, "width", pipeline.DefaultWidth, "frame width in pixels")
		fl.IntVar(&f.opts.Height, "height", pipeline.DefaultHeight, "frame height in pixels")
	}
	fl.IntVar(&f.opts.MaxIters, "max-iters", pipeline.DefaultMaxIters, "iteration limit")
	fl.StringVar(&f.opts.Gradient, "color", pipeline.DefaultGradient, "color gradient (see 'mandelscope gradients')")
	fl.BoolVar(&f.opts.Inverted, "inverse", false, "invert the gradient")
	fl.BoolVar(&f.opts.Precise, "precise", false, "use arbitrary-precision arithmetic (slow, for deep zooms)")
	fl.StringVar(&f.opts.Region, "region", pipeline.DefaultRegion, "start region: "+strings.Join(viewport.RegionNames(), ", "))
	fl.IntVar(&f.opts.Margin, "margin", pipeline.DefaultMargin, "half-size of the zoom box in pixels")
	fl.IntVar(&f.opts.Workers, "workers", 0, "parallel columns (0 = all CPUs)")
	fl.BoolVar(&f.noCache, "no-cache", false, "disable the buffer cache")

	_ = cmd.RegisterFlagCompletionFunc("color", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return gradient.Default().Names(), cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("region", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return viewport.RegionNames(), cobra.ShellCompDirectiveNoFileComp
	})
}

// resolve merges config and explicitly set flags, then validates.
func (f *renderFlags) resolve(cmd *cobra.Command, cfg config.Config) (pipeline.Options, error) {
	opts := cfg.Options()
	overrides := []struct {
		flag  string
		apply func()
	}{
		{"width", func() { opts.Width = f.opts.Width }},
		{"height", func() { opts.Height = f.opts.Height }},
		{"max-iters", func() { opts.MaxIters = f.opts.MaxIters }},
		{"color", func() { opts.Gradient = f.opts.Gradient }},
		{"inverse", func() { opts.Inverted = f.opts.Inverted }},
		{"precise", func() { opts.Precise = f.opts.Precise }},
		{"region", func() { opts.Region = f.opts.Region }},
		{"margin", func() { opts.Margin = f.opts.Margin }},
		{"workers", func() { opts.Workers = f.opts.Workers }},
	}
	for _, o := range overrides {
		if fl := cmd.Flags().Lookup(o.flag); fl != nil && fl.Changed {
			o.apply()
		}
	}
	// cfg already carries the defaults; an explicit zero must fail here.
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// parsePoint parses a pixel position written as "x,y".
func parsePoint(s string) (x, y int, err error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, errs.New(errs.ErrCodeInvalidInput, "zoom point %q: want x,y", s)
	}
	if x, err = strconv.Atoi(strings.TrimSpace(xs)); err != nil {
		return 0, 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "zoom point %q", s)
	}
	if y, err = strconv.Atoi(strings.TrimSpace(ys)); err != nil {
		return 0, 0, errs.Wrap(errs.ErrCodeInvalidInput, err, "zoom point %q", s)
	}
	if x < 0 || y < 0 {
		return 0, 0, errs.New(errs.ErrCodeInvalidInput, "zoom point %q: negative coordinate", s)
	}
	return x, y, nil
}

// previewResolution fits res into cols terminal columns. Each cell shows two
// pixel rows, so the height is kept even.
func previewResolution(res viewport.Resolution, cols int) viewport.Resolution {
	if cols < 1 {
		cols = 1
	}
	h := (cols*res.Height + res.Width/2) / res.Width
	h += h % 2
	if h < 2 {
		h = 2
	}
	return viewport.Resolution{Width: cols, Height: h}
}

// scaleMargin converts a margin given for full resolution to a frame that
// is width pixels wide.
func scaleMargin(margin, full, width int) int {
	m := margin * width / full
	if m < 1 {
		return 1
	}
	return m
}

func formatBounds(b [4]string) string {
	return fmt.Sprintf("x ∈ [%s, %s]  y ∈ [%s, %s]", b[0], b[1], b[2], b[3])
}
