// Package lexer turns source text into a token stream.
//
// Lexing is single-pass and non-backtracking: whitespace and comments
// are consumed without being emitted. The errors raised here are an
// unknown character, an unterminated block comment, an empty, unterminated
// or invalid char literal, and an unterminated string literal or bad
// escape in one. Malformed numeric literals are accepted as tokens and
// left for sema to reject.
package lexer

import (
	"fmt"

	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/token"
)

// Error reports a fatal lexical error at a source location.
type Error struct {
	Loc source.Location
	Msg string
}

func (e *Error) Error() string { return e.Msg }

// Lex scans the full contents of file within fs into an ordered token
// stream terminated by a single EOF token.
func Lex(fs *source.FileSet, file source.FileID) ([]token.Token, error) {
	f:= fs.Get(file)
	if f == nil {
		return nil, fmt.Errorf("lexer: unknown file id %d", file)
	}
	c:= newCursor(f.Content)
	var out []token.Token
	for {
		tok, err:= next(c, file)
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}

func loc(c *cursor, file source.FileID) source.Location {
	return source.Location{File: file, Line: c.line, Column: c.col}
}

// next scans and returns the next token, skipping whitespace and comments.
func next(c *cursor, file source.FileID) (token.Token, error) {
	for {
		skipWhitespace(c)
		if c.curr() == '/' && c.at(1) == '/' {
			skipLineComment(c)
			continue
		}
		if c.curr() == '/' && c.at(1) == '*' {
			if err:= skipBlockComment(c, file); err != nil {
				return token.Token{}, err
			}
			continue
		}
		break
	}

	start:= loc(c, file)

	if c.eof() {
		return token.Token{Kind: token.EOF, Loc: start}, nil
	}

	ch:= c.curr()
	switch {
	case isIdentStart(ch):
		return scanIdent(c, file, start), nil
	case isDigit(ch) || (ch == '-' && isDigit(c.at(1))):
		return scanNumber(c, file, start), nil
	case ch == '\'':
		return scanChar(c, file, start)
	case ch == '"':
		return scanString(c, file, start)
	default:
		return scanOperator(c, file, start)
	}
}

func skipWhitespace(c *cursor) {
	for {
		switch c.curr() {
		case ' ', '\t', '\r', '\n':
			c.advance(1)
		default:
			return
		}
	}
}

func skipLineComment(c *cursor) {
	for c.curr() != '\n' && !c.eof() {
		c.advance(1)
	}
}

func skipBlockComment(c *cursor, file source.FileID) error {
	start:= loc(c, file)
	c.advance(2) // consume "/*"
	for {
		if c.eof() {
			return &Error{Loc: start, Msg: fmt.Sprintf("%s: error: unterminated block comment", fmtLoc(start))}
		}
		if c.curr() == '*' && c.at(1) == '/' {
			c.advance(2)
			return nil
		}
		c.advance(1)
	}
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || isDigit(b)
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func fmtLoc(l source.Location) string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}
