package mir_test

import (
	"strings"
	"testing"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/lexer"
	"github.com/nwmarino/meddle/internal/mir"
	"github.com/nwmarino/meddle/internal/parser"
	"github.com/nwmarino/meddle/internal/resolve"
	"github.com/nwmarino/meddle/internal/sema"
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/unit"
)

// lowerSource runs the full pipeline describes (lex, parse,
// use-resolve, name-resolve, sema, sanitate, lower) over a single-file
// program and returns its MIR Segment, matching the end-to-end
// golden-output scenarios.
func lowerSource(t *testing.T, named bool, src string) *mir.Segment {
	t.Helper()
	fs:= source.NewFileSet()
	fid:= fs.Add("test.mdl", []byte(src))
	toks, err:= lexer.Lex(fs, fid)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	astUnit, _, err:= parser.Parse("test.mdl", toks)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	mgr:= unit.NewManager(fs)
	mgr.Add(&unit.TranslationUnit{File: fid, Path: "test.mdl", AST: astUnit, Imports: make(map[ast.DeclID]*unit.TranslationUnit)})

	if err:= unit.ResolveUses(mgr); err != nil {
		t.Fatalf("ResolveUses: %v", err)
	}
	if err:= resolve.Run(mgr); err != nil {
		t.Fatalf("resolve.Run: %v", err)
	}
	if err:= sema.Run(mgr); err != nil {
		t.Fatalf("sema.Run: %v", err)
	}
	if err:= astUnit.Types.Sanitate(); err != nil {
		t.Fatalf("Sanitate: %v", err)
	}

	seg, err:= mir.Lower(mgr, named)
	if err != nil {
		t.Fatalf("Lower: %v", err)
	}
	if err:= mir.Validate(seg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return seg
}

func TestLowerReturnLiteral(t *testing.T) {
	seg:= lowerSource(t, true, `test::() i64 { ret 0; }`)
	fnID, ok:= seg.FuncByName("test")
	if !ok {
		t.Fatal("function test not found")
	}
	fn:= seg.Func(fnID)
	if len(fn.Blocks) != 1 || fn.Blocks[0].Name != "entry" {
		t.Fatalf("expected a single entry block, got %+v", fn.Blocks)
	}
	out:= mir.Print(seg)
	if !strings.Contains(out, "ret i64 0") {
		t.Fatalf("expected literal return, got:\n%s", out)
	}
}

func TestLowerLocalVariable(t *testing.T) {
	seg:= lowerSource(t, true, `test::() i64 { fix x: i64 = 42; ret x; }`)
	out:= mir.Print(seg)
	for _, want:= range []string{"$x = slot i64", "store i64 42 -> $x", "load i64 $x", "ret"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLowerIfThenOnly(t *testing.T) {
	seg:= lowerSource(t, true, `test::() { if 1 { ret; } }`)
	fnID, _:= seg.FuncByName("test")
	fn:= seg.Func(fnID)

	var names []string
	for _, b:= range fn.Blocks {
		names = append(names, b.Name)
	}
	wantAny:= func(substr string) bool {
		for _, n:= range names {
			if strings.Contains(n, substr) {
				return true
			}
		}
		return false
	}
	if !wantAny("if.then") || !wantAny("if.merge") {
		t.Fatalf("expected if.then/if.merge blocks, got %v", names)
	}
	out:= mir.Print(seg)
	if !strings.Contains(out, "brif i64 1, if.then, if.merge") {
		t.Fatalf("expected brif, got:\n%s", out)
	}
}

func TestLowerUntilBreakContinue(t *testing.T) {
	seg:= lowerSource(t, true, `test::() { until 1 { if 2 { continue; } else break; } }`)
	fnID, _:= seg.FuncByName("test")
	fn:= seg.Func(fnID)
	if len(fn.Blocks) != 6 {
		t.Fatalf("expected 6 blocks, got %d: %+v", len(fn.Blocks), fn.Blocks)
	}
	wantNames:= map[string]bool{
		"entry": false, "until.cond": false, "until.body": false,
		"if.then": false, "if.else": false, "until.merge": false,
	}
	for _, b:= range fn.Blocks {
		if _, ok:= wantNames[b.Name]; ok {
			wantNames[b.Name] = true
		}
	}
	for name, seen:= range wantNames {
		if !seen {
			t.Fatalf("missing block %q among %+v", name, fn.Blocks)
		}
	}
}

func TestLowerStringInitCpy(t *testing.T) {
	seg:= lowerSource(t, true, `test::() { fix x: char[7] = "hello\n"; }`)
	out:= mir.Print(seg)
	if !strings.Contains(out, `data @`) {
		t.Fatalf("expected a readonly string Data, got:\n%s", out)
	}
	if !strings.Contains(out, "cpy i64 7, i8[7]* @.str.0, align 1 -> i8[7]* $x, align 1") {
		t.Fatalf("expected a byte-aligned cpy of the 7-byte string literal, got:\n%s", out)
	}
}

func TestLowerCastTruncSext(t *testing.T) {
	seg:= lowerSource(t, true, `test::() { fix x: i64 = cast<i64> cast<i32> 5; }`)
	out:= mir.Print(seg)
	if !strings.Contains(out, "trunc") || !strings.Contains(out, "sext") {
		t.Fatalf("expected trunc then sext, got:\n%s", out)
	}
}
