package sema

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/types"
)

// cloneStmt deep-copies a statement tree into fresh arena slots, pushing a
// fresh child scope of curScope for every nested StmtCompound (mirroring
// the parser's own scope-per-block discipline) and registering any
// StmtDecl local it encounters into cl.declMap so later ExprRef clones
// resolve to the copy rather than the template's original.
func (cl *cloner) cloneStmt(id ast.StmtID, curScope ast.ScopeID) ast.StmtID {
	if id == ast.NoStmtID {
		return ast.NoStmtID
	}
	old:= *cl.u.Stmt(id)
	ns:= old

	switch old.Kind {
	case ast.StmtCompound:
		newScope:= cl.u.Scopes.Push(curScope)
		newStmts:= make([]ast.StmtID, len(old.Stmts))
		for i, s:= range old.Stmts {
			newStmts[i] = cl.cloneStmt(s, newScope)
		}
		ns.Scope = newScope
		ns.Stmts = newStmts

	case ast.StmtIf:
		ns.Cond = cl.cloneExpr(old.Cond)
		ns.Then = cl.cloneStmt(old.Then, curScope)
		ns.Else = cl.cloneStmt(old.Else, curScope)

	case ast.StmtUntil:
		ns.Cond = cl.cloneExpr(old.Cond)
		ns.Body = cl.cloneStmt(old.Body, curScope)

	case ast.StmtMatch:
		ns.Subject = cl.cloneExpr(old.Subject)
		newCases:= make([]ast.MatchCase, len(old.Cases))
		for i, cs:= range old.Cases {
			newCases[i] = ast.MatchCase{Pattern: cl.cloneExpr(cs.Pattern), Body: cl.cloneStmt(cs.Body, curScope)}
		}
		ns.Cases = newCases
		ns.Default = cl.cloneStmt(old.Default, curScope)

	case ast.StmtRet:
		ns.Value = cl.cloneExpr(old.Value)

	case ast.StmtDecl:
		od:= cl.u.Decl(old.DeclID)
		nd:= ast.Decl{
			Kind: ast.DeclVar, Name: od.Name, Loc: od.Loc, Scope: curScope,
			Type: substituteType(cl.u.Types, od.Type, cl.owner, cl.args), Mutable: od.Mutable,
		}
		ndID:= cl.u.AddDecl(nd)
		cl.declMap[old.DeclID] = ndID
		cl.u.Decl(ndID).Init = cl.cloneExpr(od.Init)
		cl.u.Scopes.Insert(curScope, od.Name, ndID)
		ns.DeclID = ndID

	case ast.StmtExpr:
		ns.Expr = cl.cloneExpr(old.Expr)
	}
	return cl.u.AddStmt(ns)
}

// cloneExpr deep-copies an expression tree, remapping ExprRef.Decl through
// cl.declMap when it points at a cloned param/local, substituting types
// wherever a cast or sizeof names one explicitly, and otherwise clearing
// every field Sema computes (Type, LValue, FieldDecl, ResolvedFn) so the
// ordinary typeExpr pass recomputes them against the substituted types.
// ExprTypeSpec/ExprUseSpec are exempt: they name fixed enum variants or
// imported symbols unaffected by this instantiation, already resolved and
// typed once by internal/resolve, so their Decl/Type are copied as-is.
func (cl *cloner) cloneExpr(id ast.ExprID) ast.ExprID {
	if id == ast.NoExprID {
		return ast.NoExprID
	}
	old:= *cl.u.Expr(id)
	ne:= old
	ne.Type = types.NoTypeID
	ne.LValue = false
	ne.FieldDecl = ast.NoDeclID
	ne.ResolvedFn = ast.NoDeclID

	switch old.Kind {
	case ast.ExprRef:
		if mapped, ok:= cl.declMap[old.Decl]; ok {
			ne.Decl = mapped
		}
	case ast.ExprBinary:
		ne.LHS = cl.cloneExpr(old.LHS)
		ne.RHS = cl.cloneExpr(old.RHS)
	case ast.ExprUnary, ast.ExprParen:
		ne.Operand = cl.cloneExpr(old.Operand)
	case ast.ExprCast:
		ne.Operand = cl.cloneExpr(old.Operand)
		ne.TargetType = substituteType(cl.u.Types, old.TargetType, cl.owner, cl.args)
	case ast.ExprSizeof:
		ne.TargetType = substituteType(cl.u.Types, old.TargetType, cl.owner, cl.args)
	case ast.ExprField:
		ne.Base = cl.cloneExpr(old.Base)
	case ast.ExprIndex:
		ne.Base = cl.cloneExpr(old.Base)
		ne.IndexExpr = cl.cloneExpr(old.IndexExpr)
	case ast.ExprCall:
		ne.Callee = cl.cloneExpr(old.Callee)
		ne.Args = cl.cloneExprList(old.Args)
	case ast.ExprMethodCall:
		ne.Base = cl.cloneExpr(old.Base)
		ne.Args = cl.cloneExprList(old.Args)
	case ast.ExprStructInit:
		newInits:= make([]ast.FieldInit, len(old.FieldInits))
		for i, fi:= range old.FieldInits {
			newInits[i] = ast.FieldInit{Name: fi.Name, Value: cl.cloneExpr(fi.Value)}
		}
		ne.FieldInits = newInits
	case ast.ExprTypeSpec, ast.ExprUseSpec:
		ne.Type = old.Type
	}
	return cl.u.AddExpr(ne)
}

func (cl *cloner) cloneExprList(ids []ast.ExprID) []ast.ExprID {
	if ids == nil {
		return nil
	}
	out:= make([]ast.ExprID, len(ids))
	for i, id:= range ids {
		out[i] = cl.cloneExpr(id)
	}
	return out
}
