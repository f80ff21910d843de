package lexer

import (
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/token"
)

// scanIdent scans `[A-Za-z_][A-Za-z0-9_]*` and resolves it against the
// keyword table.
func scanIdent(c *cursor, file source.FileID, start source.Location) token.Token {
	begin:= c.pos
	for isIdentCont(c.curr()) {
		c.advance(1)
	}
	text:= string(c.src[begin:c.pos])

	kind:= token.Ident
	if kw, ok:= token.Lookup(text); ok {
		kind = kw
	}
	return token.Token{Kind: kind, Text: text, Loc: start}
}
