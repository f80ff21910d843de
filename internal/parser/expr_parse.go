package parser

import (
	"strconv"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/token"
)

// precedence implements the table: `* / %` (11), `+ -` (10),
// `<< >>` (9), `< <= > >=` (8), `== !=` (7), `&` (6), `^` (5), `|` (4),
// `&& ||` (3, 2), assignment family (1). Only assignment right-associates.
var precedence = map[token.Kind]int{
	token.Star: 11, token.Slash: 11, token.Percent: 11,
	token.Plus: 10, token.Minus: 10,
	token.Shl: 9, token.Shr: 9,
	token.Lt: 8, token.LtEq: 8, token.Gt: 8, token.GtEq: 8,
	token.EqEq: 7, token.BangEq: 7,
	token.Amp: 6,
	token.Caret: 5,
	token.Pipe: 4,
	token.AmpAmp: 3,
	token.PipePipe: 2,
	token.Assign: 1, token.PlusAssign: 1, token.MinusAssign: 1, token.StarAssign: 1,
	token.SlashAssign: 1, token.PercentAssign: 1, token.AmpAssign: 1, token.PipeAssign: 1,
	token.CaretAssign: 1, token.ShlAssign: 1, token.ShrAssign: 1,
}

var binaryOps = map[token.Kind]ast.BinaryOp{
	token.Plus: ast.OpAdd, token.Minus: ast.OpSub, token.Star: ast.OpMul,
	token.Slash: ast.OpDiv, token.Percent: ast.OpMod,
	token.Shl: ast.OpShl, token.Shr: ast.OpShr,
	token.Lt: ast.OpLt, token.LtEq: ast.OpLtEq, token.Gt: ast.OpGt, token.GtEq: ast.OpGtEq,
	token.EqEq: ast.OpEq, token.BangEq: ast.OpNotEq,
	token.Amp: ast.OpBitAnd, token.Caret: ast.OpBitXor, token.Pipe: ast.OpBitOr,
	token.AmpAmp: ast.OpLogAnd, token.PipePipe: ast.OpLogOr,
	token.Assign: ast.OpAssign, token.PlusAssign: ast.OpAddAssign, token.MinusAssign: ast.OpSubAssign,
	token.StarAssign: ast.OpMulAssign, token.SlashAssign: ast.OpDivAssign, token.PercentAssign: ast.OpModAssign,
	token.AmpAssign: ast.OpAndAssign, token.PipeAssign: ast.OpOrAssign, token.CaretAssign: ast.OpXorAssign,
	token.ShlAssign: ast.OpShlAssign, token.ShrAssign: ast.OpShrAssign,
}

func isRightAssoc(prec int) bool { return prec == 1 }

// parseExpr is the Pratt-style precedence-climbing entry point; minPrec
// is the minimum binding power an operator must have to be consumed here.
func (p *Parser) parseExpr(minPrec int) (ast.ExprID, error) {
	lhs, err:= p.parseUnary()
	if err != nil {
		return ast.NoExprID, err
	}
	for {
		kind:= p.cur().Kind
		prec, ok:= precedence[kind]
		if !ok || prec < minPrec {
			return lhs, nil
		}
		opTok:= p.advance()
		nextMin:= prec + 1
		if isRightAssoc(prec) {
			nextMin = prec
		}
		rhs, err:= p.parseExpr(nextMin)
		if err != nil {
			return ast.NoExprID, err
		}
		lhs = p.unit.AddExpr(ast.Expr{Kind: ast.ExprBinary, Loc: opTok.Loc, Op: binaryOps[kind], LHS: lhs, RHS: rhs})
	}
}

// parseUnary handles prefix operators, casts, sizeof, then falls through
// to postfix/primary parsing.
func (p *Parser) parseUnary() (ast.ExprID, error) {
	tok:= p.cur()
	switch tok.Kind {
	case token.Minus:
		p.advance()
		operand, err:= p.parseUnary()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprUnary, Loc: tok.Loc, UOp: ast.OpNeg, Operand: operand}), nil
	case token.Bang:
		p.advance()
		operand, err:= p.parseUnary()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprUnary, Loc: tok.Loc, UOp: ast.OpNot, Operand: operand}), nil
	case token.Tilde:
		p.advance()
		operand, err:= p.parseUnary()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprUnary, Loc: tok.Loc, UOp: ast.OpBitNot, Operand: operand}), nil
	case token.Amp:
		p.advance()
		operand, err:= p.parseUnary()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprUnary, Loc: tok.Loc, UOp: ast.OpAddr, Operand: operand}), nil
	case token.Star:
		p.advance()
		operand, err:= p.parseUnary()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprUnary, Loc: tok.Loc, UOp: ast.OpDeref, Operand: operand}), nil
	case token.PlusPlus:
		p.advance()
		operand, err:= p.parseUnary()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprUnary, Loc: tok.Loc, UOp: ast.OpPreInc, Operand: operand}), nil
	case token.MinusMinus:
		p.advance()
		operand, err:= p.parseUnary()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprUnary, Loc: tok.Loc, UOp: ast.OpPreDec, Operand: operand}), nil
	case token.KwCast:
		p.advance()
		if _, err:= p.expect(token.Lt); err != nil {
			return ast.NoExprID, err
		}
		target, err:= p.parseType()
		if err != nil {
			return ast.NoExprID, err
		}
		if _, err:= p.expect(token.Gt); err != nil {
			return ast.NoExprID, err
		}
		operand, err:= p.parseUnary()
		if err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprCast, Loc: tok.Loc, TargetType: target, Operand: operand}), nil
	case token.KwSizeof:
		p.advance()
		paren:= false
		if _, ok:= p.accept(token.LParen); ok {
			paren = true
		}
		ty, err:= p.parseType()
		if err != nil {
			return ast.NoExprID, err
		}
		if paren {
			if _, err:= p.expect(token.RParen); err != nil {
				return ast.NoExprID, err
			}
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprSizeof, Loc: tok.Loc, TargetType: ty}), nil
	default:
		return p.parsePostfix()
	}
}

// parsePostfix handles call, method-call, field access, subscript, and
// post-increment/decrement applied to a primary expression.
func (p *Parser) parsePostfix() (ast.ExprID, error) {
	expr, err:= p.parsePrimary()
	if err != nil {
		return ast.NoExprID, err
	}
	for {
		switch {
		case p.check(token.LParen):
			tok:= p.advance()
			args, err:= p.parseArgList()
			if err != nil {
				return ast.NoExprID, err
			}
			expr = p.unit.AddExpr(ast.Expr{Kind: ast.ExprCall, Loc: tok.Loc, Callee: expr, Args: args, ResolvedFn: ast.NoDeclID})
		case p.check(token.Dot):
			p.advance()
			nameTok, err:= p.expect(token.Ident)
			if err != nil {
				return ast.NoExprID, err
			}
			if p.check(token.LParen) {
				p.advance()
				args, err:= p.parseArgList()
				if err != nil {
					return ast.NoExprID, err
				}
				expr = p.unit.AddExpr(ast.Expr{Kind: ast.ExprMethodCall, Loc: nameTok.Loc, Base: expr, Method: nameTok.Text, Args: args, ResolvedFn: ast.NoDeclID})
			} else {
				expr = p.unit.AddExpr(ast.Expr{Kind: ast.ExprField, Loc: nameTok.Loc, Base: expr, Field: nameTok.Text, FieldDecl: ast.NoDeclID})
			}
		case p.check(token.LBracket):
			p.advance()
			idx, err:= p.parseExpr(1)
			if err != nil {
				return ast.NoExprID, err
			}
			tok, err:= p.expect(token.RBracket)
			if err != nil {
				return ast.NoExprID, err
			}
			expr = p.unit.AddExpr(ast.Expr{Kind: ast.ExprIndex, Loc: tok.Loc, Base: expr, IndexExpr: idx})
		case p.check(token.PlusPlus):
			tok:= p.advance()
			expr = p.unit.AddExpr(ast.Expr{Kind: ast.ExprUnary, Loc: tok.Loc, UOp: ast.OpPostInc, Operand: expr})
		case p.check(token.MinusMinus):
			tok:= p.advance()
			expr = p.unit.AddExpr(ast.Expr{Kind: ast.ExprUnary, Loc: tok.Loc, UOp: ast.OpPostDec, Operand: expr})
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parseArgList() ([]ast.ExprID, error) {
	var args []ast.ExprID
	if p.check(token.RParen) {
		p.advance()
		return args, nil
	}
	for {
		arg, err:= p.parseExpr(1)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if _, ok:= p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err:= p.expect(token.RParen); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *Parser) parsePrimary() (ast.ExprID, error) {
	tok:= p.cur()
	switch tok.Kind {
	case token.KwTrue:
		p.advance()
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprLiteralBool, Loc: tok.Loc, BoolVal: true}), nil
	case token.KwFalse:
		p.advance()
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprLiteralBool, Loc: tok.Loc, BoolVal: false}), nil
	case token.KwNil:
		p.advance()
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprLiteralNil, Loc: tok.Loc}), nil
	case token.IntLit:
		p.advance()
		n, err:= strconv.ParseInt(tok.Text, 10, 64)
		if err != nil {
			return ast.NoExprID, p.errorf("invalid integer literal %q", tok.Text)
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprLiteralInt, Loc: tok.Loc, IntVal: n}), nil
	case token.FloatLit:
		p.advance()
		f, err:= strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return ast.NoExprID, p.errorf("invalid float literal %q", tok.Text)
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprLiteralFloat, Loc: tok.Loc, FloatVal: f}), nil
	case token.CharLit:
		p.advance()
		var c byte
		if len(tok.Text) > 0 {
			c = tok.Text[0]
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprLiteralChar, Loc: tok.Loc, CharVal: c}), nil
	case token.StringLit:
		p.advance()
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprLiteralString, Loc: tok.Loc, StringVal: tok.Text}), nil
	case token.LParen:
		p.advance()
		inner, err:= p.parseExpr(1)
		if err != nil {
			return ast.NoExprID, err
		}
		if _, err:= p.expect(token.RParen); err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{Kind: ast.ExprParen, Loc: tok.Loc, Operand: inner}), nil
	case token.Ident:
		return p.parseIdentPrimary()
	default:
		return ast.NoExprID, p.errorf("unexpected token %s in expression", tok.Kind)
	}
}

// parseIdentPrimary parses an identifier-led primary expression: a plain
// reference, a qualified `A::B` form (type-spec or use-spec, disambiguated
// later by internal/resolve), or a struct initialiser `Name { a: 1, b: 2 }`.
func (p *Parser) parseIdentPrimary() (ast.ExprID, error) {
	nameTok:= p.advance()

	if _, ok:= p.accept(token.ColonColon); ok {
		memberTok, err:= p.expect(token.Ident)
		if err != nil {
			return ast.NoExprID, err
		}
		return p.unit.AddExpr(ast.Expr{
			Kind: ast.ExprTypeSpec, Loc: nameTok.Loc,
			EnumName: nameTok.Text, VariantName: memberTok.Text,
		}), nil
	}

	if p.check(token.LBrace) && p.structInitAllowed {
		return p.parseStructInit(nameTok)
	}

	return p.unit.AddExpr(ast.Expr{Kind: ast.ExprRef, Loc: nameTok.Loc, Name: nameTok.Text, Decl: ast.NoDeclID}), nil
}

func (p *Parser) parseStructInit(nameTok token.Token) (ast.ExprID, error) {
	p.advance() // '{'
	var inits []ast.FieldInit
	for !p.check(token.RBrace) {
		fieldTok, err:= p.expect(token.Ident)
		if err != nil {
			return ast.NoExprID, err
		}
		if _, err:= p.expect(token.Colon); err != nil {
			return ast.NoExprID, err
		}
		value, err:= p.parseExpr(1)
		if err != nil {
			return ast.NoExprID, err
		}
		inits = append(inits, ast.FieldInit{Name: fieldTok.Text, Value: value})
		if _, ok:= p.accept(token.Comma); !ok {
			break
		}
	}
	if _, err:= p.expect(token.RBrace); err != nil {
		return ast.NoExprID, err
	}
	return p.unit.AddExpr(ast.Expr{
		Kind: ast.ExprStructInit, Loc: nameTok.Loc,
		StructName: nameTok.Text, FieldInits: inits,
	}), nil
}
