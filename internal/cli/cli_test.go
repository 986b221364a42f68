package cli

import (
	"bytes"
	"context"
	"image"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mandelscope/pkg/config"
	errs "github.com/matzehuels/mandelscope/pkg/errors"
	"github.com/matzehuels/mandelscope/pkg/gradient"
	"github.com/matzehuels/mandelscope/pkg/pipeline"
	"github.com/matzehuels/mandelscope/pkg/session"
	"github.com/matzehuels/mandelscope/pkg/viewport"
)

func TestRootCommand(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	want := map[string]bool{"render": false, "explore": false, "serve": false, "gradients": false, "cache": false, "completion": false}
	for _, cmd := range root.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q missing", name)
		}
	}
}

func TestRenderFlagsPrecedence(t *testing.T) {
	cfg := config.Default()
	cfg.Width = 300
	cfg.Color = "viridis"
	cfg.MaxIters = 200

	var flags renderFlags
	cmd := &cobra.Command{Use: "test"}
	flags.register(cmd, true)
	if err := cmd.ParseFlags([]string{"--color", "plasma", "--height", "120"}); err != nil {
		t.Fatal(err)
	}

	opts, err := flags.resolve(cmd, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if opts.Width != 300 || opts.MaxIters != 200 {
		t.Errorf("config values lost: %+v", opts)
	}
	if opts.Gradient != "plasma" || opts.Height != 120 {
		t.Errorf("flag values lost: %+v", opts)
	}
}

func TestRenderFlagsRejectExplicitZero(t *testing.T) {
	tests := []struct {
		args []string
		code errs.Code
	}{
		{[]string{"--max-iters", "0"}, errs.ErrCodeInvalidInput},
		{[]string{"--margin", "0"}, errs.ErrCodeInvalidInput},
		{[]string{"--width", "0"}, errs.ErrCodeInvalidResolution},
		{[]string{"--height", "0"}, errs.ErrCodeInvalidResolution},
	}
	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			var flags renderFlags
			cmd := &cobra.Command{Use: "test"}
			flags.register(cmd, true)
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			if _, err := flags.resolve(cmd, config.Default()); !errs.Is(err, tt.code) {
				t.Errorf("resolve error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestRenderCommandRejectsZeroIterations(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"render", "--no-cache", "--cols", "8", "--max-iters", "0"})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error = %v", err)
	}
}

func TestParsePoint(t *testing.T) {
	tests := []struct {
		in     string
		x, y   int
		wantOK bool
	}{
		{"300,200", 300, 200, true},
		{" 4 , 5 ", 4, 5, true},
		{"300", 0, 0, false},
		{"a,1", 0, 0, false},
		{"1,-1", 0, 0, false},
	}
	for _, tt := range tests {
		x, y, err := parsePoint(tt.in)
		if (err == nil) != tt.wantOK || x != tt.x || y != tt.y {
			t.Errorf("parsePoint(%q) = %d, %d, %v", tt.in, x, y, err)
		}
	}
}

func TestPreviewResolution(t *testing.T) {
	tests := []struct {
		res  viewport.Resolution
		cols int
		want viewport.Resolution
	}{
		{viewport.Resolution{Width: 600, Height: 600}, 80, viewport.Resolution{Width: 80, Height: 80}},
		{viewport.Resolution{Width: 800, Height: 600}, 80, viewport.Resolution{Width: 80, Height: 60}},
		{viewport.Resolution{Width: 600, Height: 250}, 10, viewport.Resolution{Width: 10, Height: 4}},
		{viewport.Resolution{Width: 600, Height: 1}, 10, viewport.Resolution{Width: 10, Height: 2}},
	}
	for _, tt := range tests {
		if got := previewResolution(tt.res, tt.cols); got != tt.want {
			t.Errorf("previewResolution(%v, %d) = %v, want %v", tt.res, tt.cols, got, tt.want)
		}
	}
	if got := scaleMargin(50, 600, 40); got != 3 {
		t.Errorf("scaleMargin = %d, want 3", got)
	}
	if got := scaleMargin(1, 600, 40); got != 1 {
		t.Errorf("scaleMargin floor = %d, want 1", got)
	}
}

func TestHalfBlocks(t *testing.T) {
	out := halfBlocks(image.NewRGBA(image.Rect(0, 0, 4, 3)))
	if n := strings.Count(out, "\n"); n != 2 {
		t.Errorf("lines = %d, want 2", n)
	}
	if n := strings.Count(out, upperHalf); n != 8 {
		t.Errorf("cells = %d, want 8", n)
	}
}

func TestExploreModel(t *testing.T) {
	opts := pipeline.Options{MaxIters: 30}
	opts.SetDefaults()
	ex, err := session.Open(false, opts.Resolution(), "magma", opts.MaxIters, false)
	if err != nil {
		t.Fatal(err)
	}
	m := newExploreModel(context.Background(), ex, opts)

	step := func(msg tea.Msg) tea.Cmd {
		t.Helper()
		model, cmd := m.Update(msg)
		m = model.(exploreModel)
		return cmd
	}
	settle := func(cmd tea.Cmd) {
		t.Helper()
		if cmd == nil {
			t.Fatal("expected a recompute")
		}
		step(cmd())
	}

	settle(step(tea.WindowSizeMsg{Width: 40, Height: 22}))
	if m.res != (viewport.Resolution{Width: 40, Height: 40}) || m.margin != 3 {
		t.Fatalf("res = %v, margin = %d", m.res, m.margin)
	}
	if m.frame == "" || m.computing {
		t.Fatal("frame not drawn")
	}

	settle(step(tea.KeyMsg{Type: tea.KeyEnter}))
	if d := ex.State().Depth; d != 2 {
		t.Errorf("depth after enter = %d", d)
	}
	settle(step(tea.KeyMsg{Type: tea.KeyBackspace}))
	if d := ex.State().Depth; d != 1 {
		t.Errorf("depth after backspace = %d", d)
	}
	if cmd := step(tea.KeyMsg{Type: tea.KeyBackspace}); cmd != nil {
		t.Error("zoom out at the root recomputed")
	}

	gen := ex.State().Generation
	step(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("]")})
	if g := ex.State().Gradient; g != gradient.Default().Next("magma") {
		t.Errorf("gradient after ] = %q", g)
	}
	step(tea.KeyMsg{Type: tea.KeyTab})
	if !ex.State().Inverted {
		t.Error("tab did not invert")
	}
	if ex.State().Generation != gen {
		t.Error("recoloring recomputed")
	}

	before := m.boxX
	step(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("l")})
	if m.boxX <= before {
		t.Errorf("box did not move right: %d -> %d", before, m.boxX)
	}

	step(frameMsg{err: errs.New(errs.ErrCodeSuperseded, "stale")})
	if m.err != nil {
		t.Errorf("superseded result surfaced: %v", m.err)
	}

	if !strings.Contains(m.View(), "depth 1") {
		t.Errorf("status line missing depth: %q", m.View())
	}

	cmd := step(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestRenderCommandPrintsFrame(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	var out bytes.Buffer
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&out)
	root.SetArgs([]string{"render", "--width", "12", "--height", "8", "--max-iters", "20",
		"--zoom", "6,4", "--margin", "3", "--cols", "12"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}

	frame := out.String()
	if n := strings.Count(frame, "\n"); n != 4 {
		t.Errorf("frame lines = %d, want 4", n)
	}
	if n := strings.Count(frame, upperHalf); n != 48 {
		t.Errorf("frame cells = %d, want 48", n)
	}
}

func TestRenderCommandRejectsBadZoom(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetArgs([]string{"render", "--no-cache", "--zoom", "nowhere"})
	root.SetErr(&bytes.Buffer{})
	if err := root.ExecuteContext(context.Background()); !errs.Is(err, errs.ErrCodeInvalidInput) {
		t.Errorf("error = %v", err)
	}
}
