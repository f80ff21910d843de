// Package resolve implements: binding every Ref expression
// to a concrete Decl, resolving `Ident::Ident` into either an enum
// variant (ExprTypeSpec) or an aliased-use member (ExprUseSpec), and
// enforcing the shadowing rule that an inner scope may not redeclare a
// name already visible through its parent chain.
//
// Per the Open Questions, the source contains two overlapping
// name-resolution strategies (one phase-based, one unit-manager-driven);
// this package implements only the two-phase, UnitManager-driven variant
// designated canonical there. "Shallow" registration of top-level names
// is already done by the parser (each decl is inserted into its scope as
// it is parsed) and by internal/unit's use-symbol import, so this
// package's single pass is the "recurse" phase: it walks every function
// body, global initializer, and struct member looking for Ref/TypeSpec
// expressions to pin down, threading the enclosing ast.ScopeID down
// through statements and expressions (neither carries one directly — only
// Decl and StmtCompound do). Field access and call-target resolution are
// deferred to internal/sema, since both require the base expression's
// type, which this phase does not yet compute (types
// bottom-up over the same AST this phase has already bound names in).
package resolve

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/unit"
)

// Run resolves names across every unit in m, in the manager's load order.
func Run(m *unit.Manager) error {
	for _, u:= range m.Units() {
		if err:= resolveUnit(u); err != nil {
			return err
		}
	}
	for _, u:= range m.Units() {
		if err:= checkShadowing(u); err != nil {
			return err
		}
	}
	return nil
}

func resolveUnit(u *unit.TranslationUnit) error {
	root:= u.AST.Scopes.Root()
	for _, id:= range u.AST.Top {
		if err:= resolveDecl(u, root, id); err != nil {
			return err
		}
	}
	return nil
}

func resolveDecl(u *unit.TranslationUnit, scope ast.ScopeID, id ast.DeclID) error {
	d:= u.AST.Decl(id)
	switch d.Kind {
	case ast.DeclFunction, ast.DeclTemplateFunction:
		if d.Body != ast.NoStmtID {
			return resolveStmt(u, d.BodyScope, d.Body)
		}
	case ast.DeclVar:
		if d.Init != ast.NoExprID {
			return resolveExpr(u, scope, d.Init)
		}
	case ast.DeclStruct, ast.DeclTemplateStruct:
		for _, mID:= range u.AST.Scopes.Decls(d.BodyScope) {
			md:= u.AST.Decl(mID)
			if md.Kind == ast.DeclFunction {
				if err:= resolveDecl(u, d.BodyScope, mID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func resolveStmt(u *unit.TranslationUnit, scope ast.ScopeID, id ast.StmtID) error {
	if id == ast.NoStmtID {
		return nil
	}
	s:= u.AST.Stmt(id)
	switch s.Kind {
	case ast.StmtCompound:
		for _, c:= range s.Stmts {
			if err:= resolveStmt(u, s.Scope, c); err != nil {
				return err
			}
		}
	case ast.StmtIf:
		if err:= resolveExpr(u, scope, s.Cond); err != nil {
			return err
		}
		if err:= resolveStmt(u, scope, s.Then); err != nil {
			return err
		}
		return resolveStmt(u, scope, s.Else)
	case ast.StmtUntil:
		if err:= resolveExpr(u, scope, s.Cond); err != nil {
			return err
		}
		return resolveStmt(u, scope, s.Body)
	case ast.StmtMatch:
		if err:= resolveExpr(u, scope, s.Subject); err != nil {
			return err
		}
		for _, c:= range s.Cases {
			if err:= resolveExpr(u, scope, c.Pattern); err != nil {
				return err
			}
			if err:= resolveStmt(u, scope, c.Body); err != nil {
				return err
			}
		}
		return resolveStmt(u, scope, s.Default)
	case ast.StmtRet:
		if s.Value != ast.NoExprID {
			return resolveExpr(u, scope, s.Value)
		}
	case ast.StmtDecl:
		dd:= u.AST.Decl(s.DeclID)
		if dd.Init != ast.NoExprID {
			return resolveExpr(u, scope, dd.Init)
		}
	case ast.StmtExpr:
		return resolveExpr(u, scope, s.Expr)
	}
	return nil
}

func resolveExpr(u *unit.TranslationUnit, scope ast.ScopeID, id ast.ExprID) error {
	if id == ast.NoExprID {
		return nil
	}
	e:= u.AST.Expr(id)
	switch e.Kind {
	case ast.ExprRef:
		decl, ok:= u.AST.Scopes.Lookup(scope, e.Name)
		if !ok {
			return diag.Errorf(e.Loc, "unresolved name %q", e.Name)
		}
		e.Decl = decl
	case ast.ExprBinary:
		if err:= resolveExpr(u, scope, e.LHS); err != nil {
			return err
		}
		return resolveExpr(u, scope, e.RHS)
	case ast.ExprUnary, ast.ExprCast, ast.ExprParen:
		return resolveExpr(u, scope, e.Operand)
	case ast.ExprSizeof:
		// TargetType only; sizeof has no sub-expression to resolve.
	case ast.ExprField:
		return resolveExpr(u, scope, e.Base)
	case ast.ExprIndex:
		if err:= resolveExpr(u, scope, e.Base); err != nil {
			return err
		}
		return resolveExpr(u, scope, e.IndexExpr)
	case ast.ExprCall:
		if err:= resolveExpr(u, scope, e.Callee); err != nil {
			return err
		}
		for _, a:= range e.Args {
			if err:= resolveExpr(u, scope, a); err != nil {
				return err
			}
		}
	case ast.ExprMethodCall:
		if err:= resolveExpr(u, scope, e.Base); err != nil {
			return err
		}
		for _, a:= range e.Args {
			if err:= resolveExpr(u, scope, a); err != nil {
				return err
			}
		}
	case ast.ExprStructInit:
		for _, fi:= range e.FieldInits {
			if err:= resolveExpr(u, scope, fi.Value); err != nil {
				return err
			}
		}
	case ast.ExprTypeSpec:
		return resolveTypeSpec(u, scope, id)
	}
	return nil
}
