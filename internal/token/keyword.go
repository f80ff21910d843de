package token

const (
	// KwFix represents the 'fix' keyword (immutable global/local binding).
	KwFix Kind = iota + Dollar + 1
	// KwMut represents the 'mut' keyword (mutable global/local binding).
	KwMut
	// KwUse represents the 'use' keyword.
	KwUse
	// KwIf represents the 'if' keyword.
	KwIf
	// KwElse represents the 'else' keyword.
	KwElse
	// KwUntil represents the 'until' keyword (pre-test loop).
	KwUntil
	// KwMatch represents the 'match' keyword.
	KwMatch
	// KwRet represents the 'ret' keyword.
	KwRet
	// KwBreak represents the 'break' keyword.
	KwBreak
	// KwContinue represents the 'continue' keyword.
	KwContinue
	// KwCast represents the 'cast' keyword.
	KwCast
	// KwSizeof represents the 'sizeof' keyword.
	KwSizeof
	// KwTrue represents the 'true' literal keyword.
	KwTrue
	// KwFalse represents the 'false' literal keyword.
	KwFalse
	// KwNil represents the 'nil' literal keyword.
	KwNil
)

// keywords maps keyword spelling to its token kind.
var keywords = map[string]Kind{
	"fix": KwFix,
	"mut": KwMut,
	"use": KwUse,
	"if": KwIf,
	"else": KwElse,
	"until": KwUntil,
	"match": KwMatch,
	"ret": KwRet,
	"break": KwBreak,
	"continue": KwContinue,
	"cast": KwCast,
	"sizeof": KwSizeof,
	"true": KwTrue,
	"false": KwFalse,
	"nil": KwNil,
}

// Lookup returns the keyword Kind for text, or (Ident, false) if text is a
// plain identifier.
func Lookup(text string) (Kind, bool) {
	k, ok:= keywords[text]
	if !ok {
		return Ident, false
	}
	return k, ok
}

// IsKeyword reports whether k is one of the reserved words above.
func (k Kind) IsKeyword() bool {
	return k >= KwFix && k <= KwNil
}
