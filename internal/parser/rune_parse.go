package parser

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/token"
)

// parseRunes parses an optional `$name` or `$[a, b]` prefix. Unknown
// runes warn and are ignored rather than failing the parse.
func (p *Parser) parseRunes() (ast.Runes, error) {
	var runes ast.Runes
	if _, ok := p.accept(token.Dollar); !ok {
		return runes, nil
	}

	collect := func() error {
		nameTok, err := p.expect(token.Ident)
		if err != nil {
			return err
		}
		if bit, ok := ast.LookupRune(nameTok.Text); ok {
			runes |= bit
		} else {
			p.warnf("unknown rune %q ignored", nameTok.Text)
		}
		return nil
	}

	if _, ok := p.accept(token.LBracket); ok {
		for {
			if err := collect(); err != nil {
				return runes, err
			}
			if _, ok := p.accept(token.Comma); !ok {
				break
			}
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return runes, err
		}
		return runes, nil
	}

	if err := collect(); err != nil {
		return runes, err
	}
	return runes, nil
}
