package driver

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRunSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.mdl", `test::() i64 { ret 0; }`)

	res, err := Run([]string{path}, Options{NamedMIR: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !strings.Contains(res.MIR, "ret i64 0") {
		t.Fatalf("expected literal return in MIR, got:\n%s", res.MIR)
	}
}

func TestRunTimeOption(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.mdl", `test::() i64 { ret 1; }`)

	if _, err := Run([]string{path}, Options{Time: true}); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRunFatalOnParseError(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "main.mdl", `test::() i64 { ret `)

	if _, err := Run([]string{path}, Options{}); err == nil {
		t.Fatal("expected a fatal error for malformed source")
	}
}
