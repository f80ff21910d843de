package lexer

import (
	"fmt"

	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/token"
)

// op pairs a token kind with the lexeme width it consumes.
type op struct {
	kind token.Kind
	width int
}

// scanOperator scans punctuation and operator tokens, matching the
// longest lexeme first (three characters, then two, then one) before
// falling back to a fatal unknown-character error.
func scanOperator(c *cursor, file source.FileID, start source.Location) (token.Token, error) {
	emit:= func(o op) token.Token {
		text:= string(c.src[c.pos: c.pos+o.width])
		c.advance(o.width)
		return token.Token{Kind: o.kind, Text: text, Loc: start}
	}

	a, b, d:= c.curr(), c.at(1), c.at(2)

	switch {
	case a == '<' && b == '<' && d == '=':
		return emit(op{token.ShlAssign, 3}), nil
	case a == '>' && b == '>' && d == '=':
		return emit(op{token.ShrAssign, 3}), nil
	}

	switch {
	case a == '+' && b == '+':
		return emit(op{token.PlusPlus, 2}), nil
	case a == '+' && b == '=':
		return emit(op{token.PlusAssign, 2}), nil
	case a == '-' && b == '-':
		return emit(op{token.MinusMinus, 2}), nil
	case a == '-' && b == '=':
		return emit(op{token.MinusAssign, 2}), nil
	case a == '-' && b == '>':
		return emit(op{token.Arrow, 2}), nil
	case a == '*' && b == '=':
		return emit(op{token.StarAssign, 2}), nil
	case a == '/' && b == '=':
		return emit(op{token.SlashAssign, 2}), nil
	case a == '<' && b == '<':
		return emit(op{token.Shl, 2}), nil
	case a == '<' && b == '=':
		return emit(op{token.LtEq, 2}), nil
	case a == '>' && b == '>':
		return emit(op{token.Shr, 2}), nil
	case a == '>' && b == '=':
		return emit(op{token.GtEq, 2}), nil
	case a == '&' && b == '&':
		return emit(op{token.AmpAmp, 2}), nil
	case a == '&' && b == '=':
		return emit(op{token.AmpAssign, 2}), nil
	case a == '|' && b == '|':
		return emit(op{token.PipePipe, 2}), nil
	case a == '|' && b == '=':
		return emit(op{token.PipeAssign, 2}), nil
	case a == '^' && b == '=':
		return emit(op{token.CaretAssign, 2}), nil
	case a == '%' && b == '=':
		return emit(op{token.PercentAssign, 2}), nil
	case a == '=' && b == '=':
		return emit(op{token.EqEq, 2}), nil
	case a == '=' && b == '>':
		return emit(op{token.FatArrow, 2}), nil
	case a == '!' && b == '=':
		return emit(op{token.BangEq, 2}), nil
	case a == ':' && b == ':':
		return emit(op{token.ColonColon, 2}), nil
	case a == '.' && b == '.':
		return emit(op{token.DotDot, 2}), nil
	}

	if kind, ok:= singlePunct[a]; ok {
		return emit(op{kind, 1}), nil
	}

	return token.Token{}, &Error{Loc: start, Msg: fmt.Sprintf(
		"%s: error: unknown character '%c'", fmtLoc(start), a)}
}

var singlePunct = map[byte]token.Kind{
	'+': token.Plus,
	'-': token.Minus,
	'*': token.Star,
	'/': token.Slash,
	'<': token.Lt,
	'>': token.Gt,
	'&': token.Amp,
	'|': token.Pipe,
	'^': token.Caret,
	'%': token.Percent,
	'=': token.Assign,
	'!': token.Bang,
	':': token.Colon,
	'~': token.Tilde,
	'(': token.LParen,
	')': token.RParen,
	'{': token.LBrace,
	'}': token.RBrace,
	'[': token.LBracket,
	']': token.RBracket,
	'.': token.Dot,
	';': token.Semicolon,
	',': token.Comma,
	'?': token.Question,
	'@': token.At,
	'#': token.Hash,
	'$': token.Dollar,
}
