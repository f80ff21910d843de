package sema

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/types"
)

func (c *ctx) typeStmt(id ast.StmtID) error {
	if id == ast.NoStmtID {
		return nil
	}
	s:= c.u.AST.Stmt(id)
	switch s.Kind {
	case ast.StmtCompound:
		for _, child:= range s.Stmts {
			if err:= c.typeStmt(child); err != nil {
				return err
			}
		}

	case ast.StmtIf:
		if err:= c.typeExpr(s.Cond, c.u.AST.Types.Builtins().Bool); err != nil {
			return err
		}
		if ct:= c.u.AST.Expr(s.Cond).Type; ct != c.u.AST.Types.Builtins().Bool && !isNumeric(c.u.AST.Types, ct) && !isPointer(c.u.AST.Types, ct) {
			return diag.Errorf(s.Loc, "if condition must be bool, numeric or a pointer")
		}
		if err:= c.typeStmt(s.Then); err != nil {
			return err
		}
		return c.typeStmt(s.Else)

	case ast.StmtUntil:
		if err:= c.typeExpr(s.Cond, c.u.AST.Types.Builtins().Bool); err != nil {
			return err
		}
		if ct:= c.u.AST.Expr(s.Cond).Type; ct != c.u.AST.Types.Builtins().Bool && !isNumeric(c.u.AST.Types, ct) && !isPointer(c.u.AST.Types, ct) {
			return diag.Errorf(s.Loc, "until condition must be bool, numeric or a pointer")
		}
		c.loopDepth++
		err:= c.typeStmt(s.Body)
		c.loopDepth--
		return err

	case ast.StmtMatch:
		return c.typeMatch(s)

	case ast.StmtRet:
		return c.typeRet(s)

	case ast.StmtBreak, ast.StmtContinue:
		if c.loopDepth == 0 {
			return diag.Errorf(s.Loc, "%s outside of an enclosing until-loop", s.Kind)
		}

	case ast.StmtDecl:
		d:= c.u.AST.Decl(s.DeclID)
		if d.Init != ast.NoExprID {
			init, target, loc, name:= d.Init, d.Type, d.Loc, d.Name
			if err:= c.typeExpr(init, target); err != nil {
				return err
			}
			// re-fetch: typeExpr may have triggered template instantiation,
			// which appends to the Decl arena and can invalidate d
			d = c.u.AST.Decl(s.DeclID)
			if !c.assignable(d.Type, c.u.AST.Expr(init).Type) {
				return diag.Errorf(loc, "cannot initialize %q with a mismatched type", name)
			}
		}

	case ast.StmtExpr:
		return c.typeExpr(s.Expr, types.NoTypeID)
	}
	return nil
}

func (c *ctx) typeRet(s *ast.Stmt) error {
	retType:= types.NoTypeID
	if c.fn != nil {
		retType = c.fn.Ret
	}
	voidID:= c.u.AST.Types.Builtins().Void
	if s.Value == ast.NoExprID {
		if retType != types.NoTypeID && retType != voidID {
			return diag.Errorf(s.Loc, "bare ret in a function returning a value")
		}
		return nil
	}
	if retType == voidID {
		return diag.Errorf(s.Loc, "ret with a value in a void function")
	}
	if err:= c.typeExpr(s.Value, retType); err != nil {
		return err
	}
	if !c.assignable(retType, c.u.AST.Expr(s.Value).Type) {
		return diag.Errorf(s.Loc, "ret value has a mismatched type")
	}
	return nil
}

// typeMatch types a match statement's subject, every case pattern (each
// must be a constant expression comparable to the subject's type, per
//), and every case/default body.
func (c *ctx) typeMatch(s *ast.Stmt) error {
	if err:= c.typeExpr(s.Subject, types.NoTypeID); err != nil {
		return err
	}
	subjType:= c.u.AST.Expr(s.Subject).Type
	for _, cs:= range s.Cases {
		if err:= c.typeExpr(cs.Pattern, subjType); err != nil {
			return err
		}
		if !isConstantExpr(c.u.AST, cs.Pattern) {
			return diag.Errorf(s.Loc, "match pattern must be a constant expression")
		}
		pat:= c.u.AST.Expr(cs.Pattern)
		if !c.assignable(subjType, pat.Type) {
			return diag.Errorf(s.Loc, "match pattern has a type incompatible with the subject")
		}
		if err:= c.typeStmt(cs.Body); err != nil {
			return err
		}
	}
	return c.typeStmt(s.Default)
}
