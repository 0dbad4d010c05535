package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"golang.org/x/term"

	"github.com/rubiojr/usinglower/lower"
)

// palette holds the styles diagnostics are rendered with.
type palette struct {
	pos  lipgloss.Style
	kind map[lower.Kind]lipgloss.Style
	err  lipgloss.Style
	ok   lipgloss.Style
	fail lipgloss.Style
	dim  lipgloss.Style
}

func newPalette(w io.Writer, color bool) *palette {
	r := lipgloss.NewRenderer(w)
	if !color {
		r.SetColorProfile(termenv.Ascii)
	}
	return &palette{
		pos: r.NewStyle().Bold(true),
		kind: map[lower.Kind]lipgloss.Style{
			lower.KindUnsupported: r.NewStyle().Foreground(lipgloss.Color("#FFB86C")),
			lower.KindInvalid:     r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
			lower.KindInternal:    r.NewStyle().Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4")),
		},
		err:  r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		ok:   r.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		fail: r.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		dim:  r.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// colorEnabled reports whether w should receive ANSI colors: never when
// disabled or NO_COLOR is set, and only when w is a terminal.
func colorEnabled(w io.Writer, disabled bool) bool {
	if disabled || os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func paletteFor(cmd *cli.Command, w io.Writer) *palette {
	return newPalette(w, colorEnabled(w, cmd.Bool("no-color")))
}

// report prints every error combined in err, one per line. Lowering
// diagnostics are tagged with their kind.
func report(w io.Writer, pal *palette, err error) {
	for _, e := range multierr.Errors(err) {
		for _, d := range diagnostics(e) {
			fmt.Fprintln(w, pal.line(d))
		}
	}
}

// diagnostics flattens e into its lowering diagnostics, or returns e
// itself when it carries none.
func diagnostics(e error) []error {
	ds := lower.Errors(e)
	if len(ds) == 0 {
		return []error{e}
	}
	out := make([]error, len(ds))
	for i, d := range ds {
		out[i] = d
	}
	return out
}

func (p *palette) line(e error) string {
	var d *lower.Error
	if !errors.As(e, &d) {
		return p.err.Render("error:") + " " + e.Error()
	}
	tag := p.kind[d.Kind].Render(d.Kind.String() + ":")
	if d.Pos.Line == 0 {
		return tag + " " + d.Msg
	}
	pos := fmt.Sprintf("%d:%d:", d.Pos.Line, d.Pos.Column)
	if d.Pos.Filename != "" {
		pos = d.Pos.Filename + ":" + pos
	}
	return p.pos.Render(pos) + " " + tag + " " + d.Msg
}
