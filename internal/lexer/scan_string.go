package lexer

import (
	"fmt"

	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/token"
)

// escapes maps the escape set `{0,n,t,r,b,f,v,\,'}` shared by char and
// string literals to their decoded byte. '"' is accepted too, decoding
// to itself, since string literals otherwise could not embed a quote.
var escapes = map[byte]byte{
	'0': 0,
	'n': '\n',
	't': '\t',
	'r': '\r',
	'b': '\b',
	'f': '\f',
	'v': '\v',
	'\\': '\\',
	'\'': '\'',
	'"': '"',
}

// scanChar scans 'c' or '\e' for an escape e in the shared escape set.
func scanChar(c *cursor, file source.FileID, start source.Location) (token.Token, error) {
	c.advance(1) // opening '
	var value byte
	if c.curr() == '\\' {
		c.advance(1)
		decoded, ok:= escapes[c.curr()]
		if !ok {
			return token.Token{}, &Error{Loc: start, Msg: fmt.Sprintf(
				"%s: error: unknown escape sequence '\\%c'", fmtLoc(start), c.curr())}
		}
		value = decoded
		c.advance(1)
	} else {
		if c.eof() || c.curr() == '\'' {
			return token.Token{}, &Error{Loc: start, Msg: fmt.Sprintf(
				"%s: error: empty char literal", fmtLoc(start))}
		}
		value = c.curr()
		c.advance(1)
	}
	if c.curr() != '\'' {
		return token.Token{}, &Error{Loc: start, Msg: fmt.Sprintf(
			"%s: error: unterminated char literal", fmtLoc(start))}
	}
	c.advance(1) // closing '
	return token.Token{
		Kind: token.CharLit,
		LiteralKind: token.LiteralChar,
		Text: string(value),
		Loc: start,
	}, nil
}

// scanString scans "..." with the same escape set as char literals.
func scanString(c *cursor, file source.FileID, start source.Location) (token.Token, error) {
	c.advance(1) // opening "
	var text []byte
	for {
		if c.eof() || c.curr() == '\n' {
			return token.Token{}, &Error{Loc: start, Msg: fmt.Sprintf(
				"%s: error: unterminated string literal", fmtLoc(start))}
		}
		if c.curr() == '"' {
			c.advance(1)
			break
		}
		if c.curr() == '\\' {
			c.advance(1)
			decoded, ok:= escapes[c.curr()]
			if !ok {
				return token.Token{}, &Error{Loc: start, Msg: fmt.Sprintf(
					"%s: error: unknown escape sequence '\\%c'", fmtLoc(start), c.curr())}
			}
			text = append(text, decoded)
			c.advance(1)
			continue
		}
		text = append(text, c.curr())
		c.advance(1)
	}
	return token.Token{
		Kind: token.StringLit,
		LiteralKind: token.LiteralString,
		Text: string(text),
		Loc: start,
	}, nil
}
