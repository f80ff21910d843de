package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/source"
)

func TestRenderBasic(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.Add("test.mdl", []byte("fn:: i64 {\n ret bad;\n}\n"))
	d := diag.Errorf(source.Location{File: fid, Line: 2, Column: 9}, "undeclared name %q", "bad")

	var buf bytes.Buffer
	Render(&buf, []*diag.Diagnostic{d}, fs, Options{})

	out := buf.String()
	for _, want := range []string{"test.mdl", "error", "undeclared name \"bad\"", "ret bad;", "^"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderPathModes(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.Add("/a/b/c/test.mdl", []byte("x\n"))
	d := diag.Errorf(source.Location{File: fid, Line: 1, Column: 1}, "bad")

	var buf bytes.Buffer
	Render(&buf, []*diag.Diagnostic{d}, fs, Options{PathMode: PathModeBasename})
	if !strings.Contains(buf.String(), "test.mdl") || strings.Contains(buf.String(), "/a/b/c/") {
		t.Fatalf("expected basename-only path, got:\n%s", buf.String())
	}
}

func TestRenderContext(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.Add("test.mdl", []byte("line1\nline2\nline3\n"))
	d := diag.New(diag.SevWarning, source.Location{File: fid, Line: 2, Column: 1}, "note")

	var buf bytes.Buffer
	Render(&buf, []*diag.Diagnostic{d}, fs, Options{Context: 1})

	out := buf.String()
	for _, want := range []string{"line1", "line2", "line3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected context line %q in output:\n%s", want, out)
		}
	}
}

func TestRenderMultipleSeparatedByBlankLine(t *testing.T) {
	fs := source.NewFileSet()
	fid := fs.Add("test.mdl", []byte("a\nb\n"))
	d1 := diag.Errorf(source.Location{File: fid, Line: 1, Column: 1}, "first")
	d2 := diag.Errorf(source.Location{File: fid, Line: 2, Column: 1}, "second")

	var buf bytes.Buffer
	Render(&buf, []*diag.Diagnostic{d1, d2}, fs, Options{})

	out := buf.String()
	if !strings.Contains(out, "first") || !strings.Contains(out, "second") {
		t.Fatalf("expected both diagnostics, got:\n%s", out)
	}
	if !strings.Contains(out, "\n\n") {
		t.Fatalf("expected a blank line between diagnostics, got:\n%s", out)
	}
}
