// Package diagfmt renders diag.Diagnostic values for a terminal: a
// located, severity-coloured header line followed by the offending
// source line and a caret underline beneath the reported column.
package diagfmt

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/source"
)

// PathMode selects how a diagnostic's file path is displayed.
type PathMode uint8

const (
	// PathModeAuto shows a path relative to the working directory when
	// it doesn't escape it, and the absolute path otherwise.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// Options configures Render.
type Options struct {
	// Color enables ANSI severity coloring. Callers typically set this
	// from AutoColor(os.Stderr) rather than a hardcoded true/false.
	Color bool

	// Context is the number of source lines shown before and after the
	// reported line; 0 means just the reported line itself.
	Context uint8

	PathMode PathMode

	// Width caps the printed source line's visual width; 0 leaves it
	// unbounded.
	Width int
}

// AutoColor reports whether f looks like a color-capable terminal, for
// a CLI's --color=auto default.
func AutoColor(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// TerminalWidth returns f's current column width, or 0 if f is not a
// terminal or the size can't be read.
func TerminalWidth(f *os.File) int {
	if !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	w, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return w
}

// Render writes one formatted block per diagnostic to w, separated by
// blank lines, in the order given.
func Render(w io.Writer, diags []*diag.Diagnostic, fs *source.FileSet, opts Options) {
	prev := color.NoColor
	defer func() { color.NoColor = prev }()
	color.NoColor = !opts.Color

	var (
		errorColor   = color.New(color.FgRed, color.Bold)
		warningColor = color.New(color.FgYellow, color.Bold)
		infoColor    = color.New(color.FgCyan, color.Bold)
		pathColor    = color.New(color.FgWhite, color.Bold)
		lineNumColor = color.New(color.FgBlue)
		caretColor   = color.New(color.FgRed, color.Bold)
	)

	sevColor := func(sev diag.Severity) *color.Color {
		switch sev {
		case diag.SevError:
			return errorColor
		case diag.SevWarning:
			return warningColor
		default:
			return infoColor
		}
	}

	for i, d := range diags {
		if i > 0 {
			fmt.Fprintln(w)
		}

		path := formatPath(fs.Path(d.Loc.File), opts.PathMode)
		fmt.Fprintf(w, "%s: %s: %s\n",
			pathColor.Sprint(path),
			sevColor(d.Severity).Sprint(d.Severity.String()),
			d.Message)

		start := d.Loc.Line
		if uint32(opts.Context) < start {
			start = d.Loc.Line - uint32(opts.Context)
		} else {
			start = 1
		}
		end := d.Loc.Line + uint32(opts.Context)

		width := len(fmt.Sprintf("%d", end))
		if width < 3 {
			width = 3
		}

		for line := start; line <= end; line++ {
			text := fs.LineText(d.Loc.File, line)
			if text == "" && line != d.Loc.Line {
				continue
			}

			if opts.Width > 0 && runewidth.StringWidth(text) > opts.Width {
				text = runewidth.Truncate(text, opts.Width, "...")
			}

			gutter := fmt.Sprintf("%*d | ", width, line)
			fmt.Fprintf(w, "%s%s\n", lineNumColor.Sprint(gutter), text)

			if line == d.Loc.Line {
				col := visualColumn(text, d.Loc.Column, 8)
				var caret strings.Builder
				caret.WriteString(strings.Repeat(" ", width+3))
				caret.WriteString(strings.Repeat(" ", col))
				caret.WriteByte('^')
				fmt.Fprintln(w, caretColor.Sprint(caret.String()))
			}
		}
	}
}

// visualColumn converts a 1-based byte column into the 0-based visual
// column text displays at, expanding tabs to tabWidth and measuring
// wide runes with go-runewidth.
func visualColumn(text string, col uint32, tabWidth int) int {
	if col <= 1 {
		return 0
	}
	bytePos, visual := 0, 0
	for _, r := range text {
		if bytePos >= int(col-1) {
			break
		}
		if r == '\t' {
			visual = (visual + tabWidth) / tabWidth * tabWidth
		} else {
			visual += runewidth.RuneWidth(r)
		}
		bytePos += len(string(r))
	}
	return visual
}

func formatPath(path string, mode PathMode) string {
	if path == "" {
		return "<unknown>"
	}
	switch mode {
	case PathModeBasename:
		return filepath.Base(path)
	case PathModeAbsolute:
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	case PathModeRelative:
		wd, err := os.Getwd()
		if err != nil {
			return path
		}
		rel, err := filepath.Rel(wd, path)
		if err != nil {
			return path
		}
		return rel
	case PathModeAuto:
		wd, err := os.Getwd()
		if err != nil {
			return path
		}
		rel, err := filepath.Rel(wd, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			if abs, err := filepath.Abs(path); err == nil {
				return abs
			}
			return path
		}
		return rel
	default:
		return path
	}
}
