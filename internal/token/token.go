package token

import "github.com/nwmarino/meddle/internal/source"

// LiteralKind narrows what a literal token's Text represents.
type LiteralKind uint8

const (
	// LiteralNone indicates the token is not a literal.
	LiteralNone LiteralKind = iota
	LiteralChar
	LiteralString
	LiteralInteger
	LiteralFloat
)

// Token is a single lexed unit of source text.
type Token struct {
	Kind Kind
	LiteralKind LiteralKind
	Text string
	Loc source.Location
}

// IsLiteral reports whether the token carries a literal payload.
func (t Token) IsLiteral() bool {
	return t.LiteralKind != LiteralNone
}
