package diag_test

import (
	"testing"

	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/source"
)

func TestFormat(t *testing.T) {
	fs:= source.NewFileSet()
	id:= fs.Add("/tmp/test.md", []byte("fix x: i64 = 1;"))
	loc:= source.Location{File: id, Line: 1, Column: 5}

	d:= diag.Errorf(loc, "unresolved type %q", "Foo")
	got:= diag.Format(fs, d)
	want:= "/tmp/test.md:1:5: error: unresolved type \"Foo\""
	if got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
	if d.Error() != `unresolved type "Foo"` {
		t.Fatalf("Error = %q", d.Error())
	}
}

func TestSeverityString(t *testing.T) {
	cases:= map[diag.Severity]string{
		diag.SevInfo: "info",
		diag.SevWarning: "warning",
		diag.SevError: "error",
	}
	for sev, want:= range cases {
		if got:= sev.String(); got != want {
			t.Errorf("Severity(%d).String = %q, want %q", sev, got, want)
		}
	}
}
