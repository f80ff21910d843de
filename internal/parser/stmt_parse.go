package parser

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/token"
)

// parseCompoundStmt implements `compound::= '{' stmt* '}'`, pushing a
// fresh scope for the duration of the block.
func (p *Parser) parseCompoundStmt() (ast.StmtID, error) {
	tok, err:= p.expect(token.LBrace)
	if err != nil {
		return ast.NoStmtID, err
	}
	scope, restore:= p.pushScope()
	defer restore()

	var stmts []ast.StmtID
	for !p.check(token.RBrace) {
		s, err:= p.parseStmt()
		if err != nil {
			return ast.NoStmtID, err
		}
		stmts = append(stmts, s)
	}
	if _, err:= p.expect(token.RBrace); err != nil {
		return ast.NoStmtID, err
	}
	return p.unit.AddStmt(ast.Stmt{Kind: ast.StmtCompound, Loc: tok.Loc, Scope: scope, Stmts: stmts}), nil
}

// parseStmt implements `stmt::= compound | if | until | match | ret |
// break | continue | decl-stmt | expr-stmt`.
func (p *Parser) parseStmt() (ast.StmtID, error) {
	switch p.cur().Kind {
	case token.LBrace:
		return p.parseCompoundStmt()
	case token.KwIf:
		return p.parseIfStmt()
	case token.KwUntil:
		return p.parseUntilStmt()
	case token.KwMatch:
		return p.parseMatchStmt()
	case token.KwRet:
		return p.parseRetStmt()
	case token.KwBreak:
		tok:= p.advance()
		if _, err:= p.expect(token.Semicolon); err != nil {
			return ast.NoStmtID, err
		}
		return p.unit.AddStmt(ast.Stmt{Kind: ast.StmtBreak, Loc: tok.Loc}), nil
	case token.KwContinue:
		tok:= p.advance()
		if _, err:= p.expect(token.Semicolon); err != nil {
			return ast.NoStmtID, err
		}
		return p.unit.AddStmt(ast.Stmt{Kind: ast.StmtContinue, Loc: tok.Loc}), nil
	case token.KwFix, token.KwMut:
		return p.parseDeclStmt()
	default:
		return p.parseExprStmt()
	}
}

// parseIfStmt implements `if::= 'if' expr compound ('else' stmt)?`.
func (p *Parser) parseIfStmt() (ast.StmtID, error) {
	tok:= p.advance() // 'if'
	cond, err:= p.parseCondExpr()
	if err != nil {
		return ast.NoStmtID, err
	}
	then, err:= p.parseCompoundStmt()
	if err != nil {
		return ast.NoStmtID, err
	}
	elseStmt:= ast.NoStmtID
	if _, ok:= p.accept(token.KwElse); ok {
		elseStmt, err = p.parseStmt()
		if err != nil {
			return ast.NoStmtID, err
		}
	}
	return p.unit.AddStmt(ast.Stmt{Kind: ast.StmtIf, Loc: tok.Loc, Cond: cond, Then: then, Else: elseStmt}), nil
}

// parseUntilStmt implements `until::= 'until' expr compound`, a pre-test
// loop: cond is checked before each iteration and the body runs while
// cond does not hold.
func (p *Parser) parseUntilStmt() (ast.StmtID, error) {
	tok:= p.advance() // 'until'
	cond, err:= p.parseCondExpr()
	if err != nil {
		return ast.NoStmtID, err
	}
	body, err:= p.parseCompoundStmt()
	if err != nil {
		return ast.NoStmtID, err
	}
	return p.unit.AddStmt(ast.Stmt{Kind: ast.StmtUntil, Loc: tok.Loc, Cond: cond, Body: body}), nil
}

// parseMatchStmt implements `match::= 'match' expr '{' (expr '=>' stmt ',')* ('_' '=>' stmt ','?)? '}'`.
func (p *Parser) parseMatchStmt() (ast.StmtID, error) {
	tok:= p.advance() // 'match'
	subject, err:= p.parseCondExpr()
	if err != nil {
		return ast.NoStmtID, err
	}
	if _, err:= p.expect(token.LBrace); err != nil {
		return ast.NoStmtID, err
	}

	var cases []ast.MatchCase
	defaultStmt:= ast.NoStmtID
	for !p.check(token.RBrace) {
		if p.check(token.Ident) && p.cur().Text == "_" {
			p.advance()
			if _, err:= p.expect(token.FatArrow); err != nil {
				return ast.NoStmtID, err
			}
			body, err:= p.parseStmt()
			if err != nil {
				return ast.NoStmtID, err
			}
			defaultStmt = body
		} else {
			pattern, err:= p.parseExpr(1)
			if err != nil {
				return ast.NoStmtID, err
			}
			if _, err:= p.expect(token.FatArrow); err != nil {
				return ast.NoStmtID, err
			}
			body, err:= p.parseStmt()
			if err != nil {
				return ast.NoStmtID, err
			}
			cases = append(cases, ast.MatchCase{Pattern: pattern, Body: body})
		}
		if _, ok:= p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err:= p.expect(token.RBrace); err != nil {
		return ast.NoStmtID, err
	}
	return p.unit.AddStmt(ast.Stmt{Kind: ast.StmtMatch, Loc: tok.Loc, Subject: subject, Cases: cases, Default: defaultStmt}), nil
}

// parseRetStmt implements `ret::= 'ret' expr? ';'`.
func (p *Parser) parseRetStmt() (ast.StmtID, error) {
	tok:= p.advance() // 'ret'
	value:= ast.NoExprID
	if !p.check(token.Semicolon) {
		var err error
		value, err = p.parseExpr(1)
		if err != nil {
			return ast.NoStmtID, err
		}
	}
	if _, err:= p.expect(token.Semicolon); err != nil {
		return ast.NoStmtID, err
	}
	return p.unit.AddStmt(ast.Stmt{Kind: ast.StmtRet, Loc: tok.Loc, Value: value}), nil
}

// parseDeclStmt implements a local binding: `('fix'|'mut') ident ':' type ('=' expr)? ';'`.
func (p *Parser) parseDeclStmt() (ast.StmtID, error) {
	mutTok:= p.advance() // 'fix' or 'mut'
	mutable:= mutTok.Kind == token.KwMut

	nameTok, err:= p.expect(token.Ident)
	if err != nil {
		return ast.NoStmtID, err
	}
	if _, err:= p.expect(token.Colon); err != nil {
		return ast.NoStmtID, err
	}
	ty, err:= p.parseType()
	if err != nil {
		return ast.NoStmtID, err
	}

	init:= ast.NoExprID
	if _, ok:= p.accept(token.Assign); ok {
		init, err = p.parseExpr(1)
		if err != nil {
			return ast.NoStmtID, err
		}
	}
	if _, err:= p.expect(token.Semicolon); err != nil {
		return ast.NoStmtID, err
	}

	id:= p.unit.AddDecl(ast.Decl{
		Kind: ast.DeclVar, Name: nameTok.Text, Loc: nameTok.Loc, Scope: p.scope,
		Type: ty, Mutable: mutable, Init: init,
	})
	if err:= p.declareLocal(nameTok.Text, id, nameTok.Loc); err != nil {
		return ast.NoStmtID, err
	}
	return p.unit.AddStmt(ast.Stmt{Kind: ast.StmtDecl, Loc: nameTok.Loc, DeclID: id}), nil
}

// parseExprStmt implements `expr-stmt::= expr ';'`, covering assignments
// (parsed as ExprBinary with an assignment Op) and bare calls.
func (p *Parser) parseExprStmt() (ast.StmtID, error) {
	loc:= p.cur().Loc
	expr, err:= p.parseExpr(1)
	if err != nil {
		return ast.NoStmtID, err
	}
	if _, err:= p.expect(token.Semicolon); err != nil {
		return ast.NoStmtID, err
	}
	return p.unit.AddStmt(ast.Stmt{Kind: ast.StmtExpr, Loc: loc, Expr: expr}), nil
}
