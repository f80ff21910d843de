package lexer_test

import (
	"testing"

	"github.com/nwmarino/meddle/internal/lexer"
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/token"
)

func lexString(t *testing.T, input string) []token.Token {
	t.Helper()
	fs:= source.NewFileSet()
	id:= fs.Add("test.md", []byte(input))
	toks, err:= lexer.Lex(fs, id)
	if err != nil {
		t.Fatalf("Lex(%q) returned error: %v", input, err)
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out:= make([]token.Kind, len(toks))
	for i, tok:= range toks {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, input string, want...token.Kind) {
	t.Helper()
	got:= kinds(lexString(t, input))
	want = append(want, token.EOF)
	if len(got) != len(want) {
		t.Fatalf("Lex(%q) = %v, want %v", input, got, want)
	}
	for i:= range got {
		if got[i] != want[i] {
			t.Fatalf("Lex(%q)[%d] = %s, want %s", input, i, got[i], want[i])
		}
	}
}

func TestLexIdentsAndKeywords(t *testing.T) {
	assertKinds(t, "foo", token.Ident)
	assertKinds(t, "fix mut use if else until match ret break continue cast sizeof true false nil",
		token.KwFix, token.KwMut, token.KwUse, token.KwIf, token.KwElse, token.KwUntil,
		token.KwMatch, token.KwRet, token.KwBreak, token.KwContinue, token.KwCast,
		token.KwSizeof, token.KwTrue, token.KwFalse, token.KwNil)
	assertKinds(t, "_", token.Ident)
}

func TestLexNumbers(t *testing.T) {
	cases:= []struct {
		input string
		kind token.Kind
		lit token.LiteralKind
	}{
		{"0", token.IntLit, token.LiteralInteger},
		{"42", token.IntLit, token.LiteralInteger},
		{"-7", token.IntLit, token.LiteralInteger},
		{"3.14", token.FloatLit, token.LiteralFloat},
		{"-0.5", token.FloatLit, token.LiteralFloat},
	}
	for _, c:= range cases {
		toks:= lexString(t, c.input)
		if len(toks) != 2 {
			t.Fatalf("Lex(%q) produced %d tokens, want 2", c.input, len(toks))
		}
		if toks[0].Kind != c.kind {
			t.Errorf("Lex(%q).Kind = %s, want %s", c.input, toks[0].Kind, c.kind)
		}
		if toks[0].LiteralKind != c.lit {
			t.Errorf("Lex(%q).LiteralKind = %d, want %d", c.input, toks[0].LiteralKind, c.lit)
		}
		if toks[0].Text != c.input {
			t.Errorf("Lex(%q).Text = %q, want %q", c.input, toks[0].Text, c.input)
		}
	}
}

func TestLexNumberFollowedByRange(t *testing.T) {
	// "5.." must lex as IntLit(5) DotDot, not a malformed float.
	assertKinds(t, "5..10", token.IntLit, token.DotDot, token.IntLit)
}

func TestLexCharLiteral(t *testing.T) {
	toks:= lexString(t, `'a'`)
	if toks[0].Kind != token.CharLit || toks[0].Text != "a" {
		t.Fatalf("got %+v", toks[0])
	}
	toks = lexString(t, `'\n'`)
	if toks[0].Kind != token.CharLit || toks[0].Text != "\n" {
		t.Fatalf("got %+v", toks[0])
	}
}

func TestLexCharLiteralErrors(t *testing.T) {
	if _, err:= lexer.Lex(fileSetWith(t, `'a`), 0); err == nil {
		t.Fatal("expected error for unterminated char literal")
	}
	if _, err:= lexer.Lex(fileSetWith(t, `'\q'`), 0); err == nil {
		t.Fatal("expected error for unknown escape sequence")
	}
}

func TestLexStringLiteral(t *testing.T) {
	toks:= lexString(t, `"hello\nworld"`)
	want:= "hello\nworld"
	if toks[0].Kind != token.StringLit || toks[0].Text != want {
		t.Fatalf("got %+v, want text %q", toks[0], want)
	}
}

func TestLexStringLiteralUnterminated(t *testing.T) {
	if _, err:= lexer.Lex(fileSetWith(t, `"hello`), 0); err == nil {
		t.Fatal("expected error for unterminated string literal")
	}
}

func TestLexOperators(t *testing.T) {
	assertKinds(t, "<<= >>= << >> <= >= -> =>::.. && || += -= *= /= %= &= |= ^=",
		token.ShlAssign, token.ShrAssign, token.Shl, token.Shr, token.LtEq, token.GtEq,
		token.Arrow, token.FatArrow, token.ColonColon, token.DotDot, token.AmpAmp,
		token.PipePipe, token.PlusAssign, token.MinusAssign, token.StarAssign,
		token.SlashAssign, token.PercentAssign, token.AmpAssign, token.PipeAssign,
		token.CaretAssign)
	assertKinds(t, "+ - * / % = ! < > & | ^: ~ () { } [ ]. ;, ? @ # $",
		token.Plus, token.Minus, token.Star, token.Slash, token.Percent, token.Assign,
		token.Bang, token.Lt, token.Gt, token.Amp, token.Pipe, token.Caret, token.Colon,
		token.Tilde, token.LParen, token.RParen, token.LBrace, token.RBrace,
		token.LBracket, token.RBracket, token.Dot, token.Semicolon, token.Comma,
		token.Question, token.At, token.Hash, token.Dollar)
}

func TestLexUnknownCharacter(t *testing.T) {
	if _, err:= lexer.Lex(fileSetWith(t, "`"), 0); err == nil {
		t.Fatal("expected error for unknown character")
	}
}

func TestLexCommentsAreSkipped(t *testing.T) {
	assertKinds(t, "fix // trailing comment\nmut", token.KwFix, token.KwMut)
	assertKinds(t, "fix /* block\ncomment */ mut", token.KwFix, token.KwMut)
}

func TestLexUnterminatedBlockComment(t *testing.T) {
	if _, err:= lexer.Lex(fileSetWith(t, "/* never closed"), 0); err == nil {
		t.Fatal("expected error for unterminated block comment")
	}
}

func TestLexLocationTracking(t *testing.T) {
	toks:= lexString(t, "fix\nmut")
	if toks[0].Loc.Line != 1 || toks[0].Loc.Column != 1 {
		t.Fatalf("first token loc = %+v, want 1:1", toks[0].Loc)
	}
	if toks[1].Loc.Line != 2 || toks[1].Loc.Column != 1 {
		t.Fatalf("second token loc = %+v, want 2:1", toks[1].Loc)
	}
}

func fileSetWith(t *testing.T, input string) *source.FileSet {
	t.Helper()
	fs:= source.NewFileSet()
	fs.Add("test.md", []byte(input))
	return fs
}
