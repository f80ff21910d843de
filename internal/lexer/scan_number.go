package lexer

import (
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/token"
)

// scanNumber scans an integer or float literal. An optional leading '-' is
// part of the lexeme only when immediately followed by a digit; exactly one
// '.' makes the literal a float, two consecutive digit runs with no '.'
// stays an integer. Malformed literals (e.g. "1.2.3") are not rejected
// here — that is sema's job.
func scanNumber(c *cursor, file source.FileID, start source.Location) token.Token {
	begin:= c.pos
	if c.curr() == '-' {
		c.advance(1)
	}

	isFloat:= false
	for {
		switch {
		case isDigit(c.curr()):
			c.advance(1)
		case c.curr() == '.' && !isFloat && isDigit(c.at(1)):
			isFloat = true
			c.advance(1)
		default:
			text:= string(c.src[begin:c.pos])
			kind:= token.IntLit
			litKind:= token.LiteralInteger
			if isFloat {
				kind = token.FloatLit
				litKind = token.LiteralFloat
			}
			return token.Token{Kind: kind, LiteralKind: litKind, Text: text, Loc: start}
		}
	}
}
