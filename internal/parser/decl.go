package parser

import (
	"strconv"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/token"
	"github.com/nwmarino/meddle/internal/types"
)

// parseDecl implements `decl::= runes? ident template-params? '::' decl-body`,
// dispatching on the token that follows '::' to the function, struct,
// global, or enum production.
func (p *Parser) parseDecl() (ast.DeclID, error) {
	runes, err:= p.parseRunes()
	if err != nil {
		return ast.NoDeclID, err
	}

	nameTok, err:= p.expect(token.Ident)
	if err != nil {
		return ast.NoDeclID, err
	}
	name:= nameTok.Text
	loc:= nameTok.Loc

	var tparamNames []string
	isTemplate:= false
	if p.check(token.Lt) {
		isTemplate = true
		tparamNames, err = p.parseTemplateParamNames()
		if err != nil {
			return ast.NoDeclID, err
		}
	}

	if _, err:= p.expect(token.ColonColon); err != nil {
		return ast.NoDeclID, err
	}

	switch {
	case p.check(token.LParen):
		return p.parseFunctionDecl(name, loc, runes, tparamNames, isTemplate)
	case p.check(token.LBrace):
		return p.parseStructDecl(name, loc, runes, tparamNames, isTemplate)
	case p.check(token.KwFix) || p.check(token.KwMut):
		if isTemplate {
			return ast.NoDeclID, p.errorf("global variable %q may not be templated", name)
		}
		return p.parseGlobalDecl(name, loc, runes)
	default:
		if isTemplate {
			return ast.NoDeclID, p.errorf("enum %q may not be templated", name)
		}
		return p.parseEnumDecl(name, loc, runes)
	}
}

func (p *Parser) parseFunctionDecl(name string, loc source.Location, runes ast.Runes, tparamNames []string, isTemplate bool) (ast.DeclID, error) {
	kind:= ast.DeclFunction
	if isTemplate {
		kind = ast.DeclTemplateFunction
	}

	id:= p.unit.AddDecl(ast.Decl{Kind: kind, Name: name, Loc: loc, Runes: runes, Scope: p.scope, Body: ast.NoStmtID})
	if err:= p.declareLocal(name, id, loc); err != nil {
		return ast.NoDeclID, err
	}

	bodyScope, restore:= p.pushScope()
	defer restore()
	p.unit.Decl(id).BodyScope = bodyScope

	var tparamDecls []ast.DeclID
	for i, tn:= range tparamNames {
		tpID:= p.unit.AddDecl(ast.Decl{Kind: ast.DeclTemplateParam, Name: tn, Loc: loc, Scope: bodyScope, Owner: id, Index: i})
		if err:= p.declareLocal(tn, tpID, loc); err != nil {
			return ast.NoDeclID, err
		}
		tparamDecls = append(tparamDecls, tpID)
	}
	p.unit.Decl(id).TemplateParams = tparamDecls

	if _, err:= p.expect(token.LParen); err != nil {
		return ast.NoDeclID, err
	}
	params, err:= p.parseParamList()
	if err != nil {
		return ast.NoDeclID, err
	}
	if _, err:= p.expect(token.RParen); err != nil {
		return ast.NoDeclID, err
	}
	p.unit.Decl(id).Params = params

	ret:= p.unit.Types.Builtins().Void
	if !p.check(token.LBrace) && !p.check(token.Semicolon) {
		ret, err = p.parseType()
		if err != nil {
			return ast.NoDeclID, err
		}
	}
	p.unit.Decl(id).Ret = ret

	paramTypes:= make([]types.TypeID, len(params))
	for i, pid:= range params {
		paramTypes[i] = p.unit.Decl(pid).Type
	}
	p.unit.Decl(id).Type = p.unit.Types.MakeFunction(paramTypes, ret)

	if _, ok:= p.accept(token.Semicolon); ok {
		return id, nil
	}
	body, err:= p.parseCompoundStmt()
	if err != nil {
		return ast.NoDeclID, err
	}
	p.unit.Decl(id).Body = body
	return id, nil
}

func (p *Parser) parseParamList() ([]ast.DeclID, error) {
	var params []ast.DeclID
	if p.check(token.RParen) {
		return params, nil
	}
	for {
		nameTok, err:= p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		if _, err:= p.expect(token.Colon); err != nil {
			return nil, err
		}
		ty, err:= p.parseType()
		if err != nil {
			return nil, err
		}
		id:= p.unit.AddDecl(ast.Decl{Kind: ast.DeclParam, Name: nameTok.Text, Loc: nameTok.Loc, Scope: p.scope, Type: ty, Index: len(params)})
		if err:= p.declareLocal(nameTok.Text, id, nameTok.Loc); err != nil {
			return nil, err
		}
		params = append(params, id)
		if _, ok:= p.accept(token.Comma); !ok {
			break
		}
	}
	return params, nil
}

func (p *Parser) parseStructDecl(name string, loc source.Location, runes ast.Runes, tparamNames []string, isTemplate bool) (ast.DeclID, error) {
	kind:= ast.DeclStruct
	if isTemplate {
		kind = ast.DeclTemplateStruct
	}
	id:= p.unit.AddDecl(ast.Decl{Kind: kind, Name: name, Loc: loc, Runes: runes, Scope: p.scope})
	if err:= p.declareLocal(name, id, loc); err != nil {
		return ast.NoDeclID, err
	}

	memberScope, restore:= p.pushScope()
	defer restore()
	p.unit.Decl(id).BodyScope = memberScope

	var tparamDecls []ast.DeclID
	for i, tn:= range tparamNames {
		tpID:= p.unit.AddDecl(ast.Decl{Kind: ast.DeclTemplateParam, Name: tn, Loc: loc, Scope: memberScope, Owner: id, Index: i})
		if err:= p.declareLocal(tn, tpID, loc); err != nil {
			return ast.NoDeclID, err
		}
		tparamDecls = append(tparamDecls, tpID)
	}
	p.unit.Decl(id).TemplateParams = tparamDecls

	if _, err:= p.expect(token.LBrace); err != nil {
		return ast.NoDeclID, err
	}

	var fields []ast.DeclID
	for !p.check(token.RBrace) {
		if p.isFieldStart() {
			fieldID, err:= p.parseField(len(fields))
			if err != nil {
				return ast.NoDeclID, err
			}
			fields = append(fields, fieldID)
			continue
		}
		if _, err:= p.parseDecl(); err != nil {
			return ast.NoDeclID, err
		}
	}
	if _, err:= p.expect(token.RBrace); err != nil {
		return ast.NoDeclID, err
	}

	fieldTypes:= make([]types.TypeID, len(fields))
	for i, f:= range fields {
		fieldTypes[i] = p.unit.Decl(f).Type
	}
	structType:= p.unit.Types.MakeStruct(name, fieldTypes)
	p.unit.Decl(id).Type = structType
	p.unit.Decl(id).Fields = fields

	// Every nested function decl without the `associated` rune is a
	// method: it gets an implicit `self` receiver.
	for _, dID:= range p.unit.Scopes.Decls(memberScope) {
		d:= p.unit.Decl(dID)
		if d.Kind == ast.DeclFunction && !d.Runes.Has(ast.RuneAssociated) {
			d.IsMethod = true
			d.Receiver = structType
		}
	}
	return id, nil
}

func (p *Parser) isFieldStart() bool {
	if !p.check(token.Ident) {
		return false
	}
	return p.at(1).Kind == token.Colon
}

func (p *Parser) parseField(index int) (ast.DeclID, error) {
	nameTok, err:= p.expect(token.Ident)
	if err != nil {
		return ast.NoDeclID, err
	}
	if _, err:= p.expect(token.Colon); err != nil {
		return ast.NoDeclID, err
	}
	ty, err:= p.parseType()
	if err != nil {
		return ast.NoDeclID, err
	}
	if _, err:= p.expect(token.Semicolon); err != nil {
		return ast.NoDeclID, err
	}
	id:= p.unit.AddDecl(ast.Decl{Kind: ast.DeclField, Name: nameTok.Text, Loc: nameTok.Loc, Scope: p.scope, Type: ty, Index: index})
	if err:= p.declareLocal(nameTok.Text, id, nameTok.Loc); err != nil {
		return ast.NoDeclID, err
	}
	return id, nil
}

func (p *Parser) parseGlobalDecl(name string, loc source.Location, runes ast.Runes) (ast.DeclID, error) {
	mutTok:= p.advance() // 'fix' or 'mut'
	mutable:= mutTok.Kind == token.KwMut

	ty, err:= p.parseType()
	if err != nil {
		return ast.NoDeclID, err
	}
	if _, err:= p.expect(token.Assign); err != nil {
		return ast.NoDeclID, err
	}
	init, err:= p.parseExpr(1)
	if err != nil {
		return ast.NoDeclID, err
	}
	if _, err:= p.expect(token.Semicolon); err != nil {
		return ast.NoDeclID, err
	}

	id:= p.unit.AddDecl(ast.Decl{
		Kind: ast.DeclVar, Name: name, Loc: loc, Runes: runes, Scope: p.scope,
		Type: ty, Mutable: mutable, Init: init,
	})
	if err:= p.declareLocal(name, id, loc); err != nil {
		return ast.NoDeclID, err
	}
	return id, nil
}

func (p *Parser) parseEnumDecl(name string, loc source.Location, runes ast.Runes) (ast.DeclID, error) {
	underlying, err:= p.parseType()
	if err != nil {
		return ast.NoDeclID, err
	}
	if _, err:= p.expect(token.LBrace); err != nil {
		return ast.NoDeclID, err
	}

	id:= p.unit.AddDecl(ast.Decl{Kind: ast.DeclEnum, Name: name, Loc: loc, Runes: runes, Scope: p.scope, Underlying: underlying})
	if err:= p.declareLocal(name, id, loc); err != nil {
		return ast.NoDeclID, err
	}

	memberScope, restore:= p.pushScope()
	defer restore()
	p.unit.Decl(id).BodyScope = memberScope

	var variants []ast.DeclID
	var next int64
	for !p.check(token.RBrace) {
		vTok, err:= p.expect(token.Ident)
		if err != nil {
			return ast.NoDeclID, err
		}
		value:= next
		if _, ok:= p.accept(token.Assign); ok {
			numTok, err:= p.expect(token.IntLit)
			if err != nil {
				return ast.NoDeclID, err
			}
			n, convErr:= strconv.ParseInt(numTok.Text, 10, 64)
			if convErr != nil {
				return ast.NoDeclID, p.errorf("invalid enum value %q", numTok.Text)
			}
			value = n
		}
		vID:= p.unit.AddDecl(ast.Decl{Kind: ast.DeclEnumVariant, Name: vTok.Text, Loc: vTok.Loc, Scope: memberScope, Type: underlying, Index: len(variants), Value: value})
		if err:= p.declareLocal(vTok.Text, vID, vTok.Loc); err != nil {
			return ast.NoDeclID, err
		}
		variants = append(variants, vID)
		next = value + 1
		if _, ok:= p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err:= p.expect(token.RBrace); err != nil {
		return ast.NoDeclID, err
	}

	names:= make([]string, len(variants))
	for i, v:= range variants {
		names[i] = p.unit.Decl(v).Name
	}
	p.unit.Decl(id).Type = p.unit.Types.MakeEnum(name, underlying, names)
	p.unit.Decl(id).Variants = variants
	return id, nil
}

// parseUse implements `use::= 'use' (ident '=' | '{' ident (',' ident)* '}' '=')? string ';'`.
func (p *Parser) parseUse() (ast.DeclID, error) {
	useTok, err:= p.expect(token.KwUse)
	if err != nil {
		return ast.NoDeclID, err
	}
	loc:= useTok.Loc

	var alias string
	var listed []string
	switch {
	case p.check(token.Ident):
		aliasTok:= p.advance()
		if _, err:= p.expect(token.Assign); err != nil {
			return ast.NoDeclID, err
		}
		alias = aliasTok.Text
	case p.check(token.LBrace):
		p.advance()
		for {
			nameTok, err:= p.expect(token.Ident)
			if err != nil {
				return ast.NoDeclID, err
			}
			listed = append(listed, nameTok.Text)
			if _, ok:= p.accept(token.Comma); !ok {
				break
			}
		}
		if _, err:= p.expect(token.RBrace); err != nil {
			return ast.NoDeclID, err
		}
		if _, err:= p.expect(token.Assign); err != nil {
			return ast.NoDeclID, err
		}
	}

	pathTok, err:= p.expect(token.StringLit)
	if err != nil {
		return ast.NoDeclID, err
	}
	if _, err:= p.expect(token.Semicolon); err != nil {
		return ast.NoDeclID, err
	}

	id:= p.unit.AddDecl(ast.Decl{Kind: ast.DeclUse, Loc: loc, Scope: p.scope, Path: pathTok.Text, Alias: alias, Listed: listed})
	if alias != "" {
		if err:= p.declareLocal(alias, id, loc); err != nil {
			return ast.NoDeclID, err
		}
	}
	return id, nil
}
