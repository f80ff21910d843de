// Package parser implements a strictly top-down, predictive parser with
// Pratt-style operator precedence for expressions. It does
// not perform name resolution: unresolved identifiers become Ref
// expressions pinned to a best-effort local scope lookup, and unknown
// type names become Deferred types, both reconciled later by
// internal/resolve and internal/types' Sanitate.
package parser

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/token"
)

// Parser holds the state for parsing one file's token stream into a Unit.
type Parser struct {
	toks []token.Token
	pos int
	unit *ast.Unit
	scope ast.ScopeID
	warnings []*diag.Diagnostic

	// structInitAllowed is false while parsing the condition of an if,
	// until, or match, where a bare `Name {` must start that statement's
	// block rather than a struct initialiser. Cleared by parseCondExpr
	// and true elsewhere.
	structInitAllowed bool
}

// Parse consumes toks (as produced by internal/lexer, already EOF-terminated)
// and produces the Unit for path. The first parse error is fatal: the
// parser does not recover or continue.
func Parse(path string, toks []token.Token) (*ast.Unit, []*diag.Diagnostic, error) {
	if len(toks) == 0 {
		toks = []token.Token{{Kind: token.EOF}}
	}
	p:= &Parser{toks: toks, unit: ast.NewUnit(path), structInitAllowed: true}
	p.scope = p.unit.Scopes.Root()

	for !p.check(token.EOF) {
		if p.check(token.KwUse) {
			id, err:= p.parseUse()
			if err != nil {
				return nil, p.warnings, err
			}
			p.unit.Top = append(p.unit.Top, id)
			continue
		}
		id, err:= p.parseDecl()
		if err != nil {
			return nil, p.warnings, err
		}
		p.unit.Top = append(p.unit.Top, id)
	}
	return p.unit, p.warnings, nil
}

func (p *Parser) cur() token.Token { return p.toks[p.pos] }

func (p *Parser) at(n int) token.Token {
	i:= p.pos + n
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t:= p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) accept(k token.Kind) (token.Token, bool) {
	if p.check(k) {
		return p.advance(), true
	}
	return token.Token{}, false
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.check(k) {
		return p.advance(), nil
	}
	return token.Token{}, p.errorf("expected %s, found %s", k, p.cur().Kind)
}

func (p *Parser) errorf(format string, args ...any) error {
	return diag.Errorf(p.cur().Loc, format, args...)
}

func (p *Parser) warnf(format string, args ...any) {
	p.warnings = append(p.warnings, diag.New(diag.SevWarning, p.cur().Loc, format, args...))
}

// parseCondExpr parses an expression with struct initialisers suppressed,
// for use in if/until/match subject position ahead of a `{` block.
func (p *Parser) parseCondExpr() (ast.ExprID, error) {
	prev:= p.structInitAllowed
	p.structInitAllowed = false
	expr, err:= p.parseExpr(1)
	p.structInitAllowed = prev
	return expr, err
}

// pushScope pushes a child of the parser's current scope and enters it,
// returning a function that restores the previous scope.
func (p *Parser) pushScope() (ast.ScopeID, func()) {
	parent := p.scope
	child := p.unit.Scopes.Push(parent)
	p.scope = child
	return child, func() { p.scope = parent }
}

// declareLocal inserts name into the parser's current scope, pinned to decl.
// A name already declared in that same scope is a fatal redeclaration
// error; shadowing of an enclosing scope's name is checked later, by
// internal/resolve.
func (p *Parser) declareLocal(name string, decl ast.DeclID, loc source.Location) error {
	if name == "_" {
		return nil // the match-default placeholder is never a real binding
	}
	if !p.unit.Scopes.Insert(p.scope, name, decl) {
		return diag.Errorf(loc, "redeclaration of %q in this scope", name)
	}
	return nil
}
