// Package sema implements: typing every expression bottom-up
// (with a target type flowing top-down where one is known), validating
// statement well-formedness, and performing on-demand template
// monomorphisation (§4.6's last paragraph). It runs after internal/unit's
// use resolution and internal/resolve's name resolution, and before
// internal/types.Context.Sanitate / internal/mir lowering: every Ref,
// TypeSpec, and UseSpec node it touches already carries a concrete Decl.
package sema

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/types"
	"github.com/nwmarino/meddle/internal/unit"
)

// ctx carries the per-unit state threaded through a Sema pass: the
// function currently being typed (for `ret`'s type check and a method's
// implicit receiver) and the loop-nesting depth (for break/continue).
type ctx struct {
	u *unit.TranslationUnit
	m *unit.Manager
	fn *ast.Decl
	loopDepth int
}

// Run types every unit in m, in load order. Units are otherwise
// independent once use resolution has merged imported symbols into each
// importer's own scope and TypeContext, so there is no cross-unit state
// carried between iterations here.
func Run(m *unit.Manager) error {
	for _, u:= range m.Units() {
		c:= &ctx{u: u, m: m}
		for _, id:= range u.AST.Top {
			if err:= c.topDecl(id); err != nil {
				return err
			}
		}
	}
	return nil
}

// topDecl types one top-level declaration (and recurses into struct
// members). Template declarations themselves are never typed directly —
// only their on-demand specializations are, immediately after cloning
// (see template.go) — matching the "do not re-enter Sema on
// already-specialised decls".
func (c *ctx) topDecl(id ast.DeclID) error {
	d:= c.u.AST.Decl(id)
	switch d.Kind {
	case ast.DeclFunction, ast.DeclFunctionSpecialization:
		return c.typeFunction(id)
	case ast.DeclVar:
		return c.typeGlobal(id)
	case ast.DeclStruct, ast.DeclStructSpecialization:
		for _, mID:= range c.u.AST.Scopes.Decls(d.BodyScope) {
			if c.u.AST.Decl(mID).Kind == ast.DeclFunction {
				if err:= c.typeFunction(mID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (c *ctx) typeFunction(id ast.DeclID) error {
	if c.u.AST.Decl(id).IsMethod {
		if err:= c.bindImplicitSelf(id); err != nil {
			return err
		}
	}
	d:= c.u.AST.Decl(id) // re-fetch: bindImplicitSelf's AddDecl may have grown the arena
	if d.Body == ast.NoStmtID {
		return nil
	}
	prev:= c.fn
	c.fn = d
	err:= c.typeStmt(d.Body)
	c.fn = prev
	return err
}

// bindImplicitSelf injects the `self: Receiver*` parameter 's
// Open Question #1 (and) resolves in favour of
// implementing end-to-end: a non-associated struct method receives an
// implicit first parameter ahead of any declared ones. Idempotent, so a
// function processed twice (e.g. a specialization created and typed
// inline, then revisited by the normal top-level walk) is only patched once.
// Takes a DeclID rather than a pointer and re-fetches after AddDecl, since
// AddDecl may grow the Unit's Decl arena and invalidate any pointer held
// across the call.
func (c *ctx) bindImplicitSelf(id ast.DeclID) error {
	d:= c.u.AST.Decl(id)
	if len(d.Params) > 0 && c.u.AST.Decl(d.Params[0]).Name == "self" {
		return nil
	}
	selfType:= c.u.AST.Types.MakePointer(d.Receiver)
	selfID:= c.u.AST.AddDecl(ast.Decl{
		Kind: ast.DeclParam, Name: "self", Loc: d.Loc, Scope: d.BodyScope,
		Type: selfType, Index: 0,
	})
	d = c.u.AST.Decl(id)
	if !c.u.AST.Scopes.Insert(d.BodyScope, "self", selfID) {
		return diag.Errorf(d.Loc, "method %q: implicit self binding collides with a declared parameter", d.Name)
	}
	for i, pID:= range d.Params {
		c.u.AST.Decl(pID).Index = i + 1
	}
	d.Params = append([]ast.DeclID{selfID}, d.Params...)

	ft:= c.u.AST.Types.MustLookup(d.Type)
	params:= append([]types.TypeID{selfType}, ft.Params...)
	d.Type = c.u.AST.Types.MakeFunction(params, ft.Return)
	return nil
}

// typeGlobal types id's initializer, re-fetching the Decl pointer after
// typeExpr since typing a call or struct-init may trigger template
// monomorphisation, which appends to the Unit's Decl arena and can
// invalidate any pointer held across that call.
func (c *ctx) typeGlobal(id ast.DeclID) error {
	d:= c.u.AST.Decl(id)
	if d.Init == ast.NoExprID {
		return nil
	}
	init, target:= d.Init, d.Type
	if err:= c.typeExpr(init, target); err != nil {
		return err
	}
	d = c.u.AST.Decl(id)
	if d.Scope == c.u.AST.Scopes.Root() {
		if !isConstantExpr(c.u.AST, d.Init) {
			return diag.Errorf(d.Loc, "global %q: initializer is not a constant expression", d.Name)
		}
	}
	if !c.assignable(d.Type, c.u.AST.Expr(d.Init).Type) {
		return diag.Errorf(d.Loc, "cannot initialize %q with a value of a different type", d.Name)
	}
	return nil
}

// assignable reports whether a value of type src may be stored into a
// destination of type dst. Both handles live in the same unit's
// TypeContext (imports are already re-interned there by internal/unit),
// so identical structural types share one handle and plain equality
// suffices; the two exceptions are `nil` (any pointer) and an untyped
// literal already pinned to dst by typeExpr's target-type propagation.
func (c *ctx) assignable(dst, src types.TypeID) bool {
	if dst == src {
		return true
	}
	dt, ok1:= c.u.AST.Types.Lookup(dst)
	st, ok2:= c.u.AST.Types.Lookup(src)
	if !ok1 || !ok2 {
		return false
	}
	if dt.Kind == types.KindPointer && st.Kind == types.KindPointer && st.Pointee == types.NoTypeID {
		return true // nil literal, typed void*
	}
	return false
}

func isNumeric(c *types.Context, t types.TypeID) bool {
	ty, ok:= c.Lookup(t)
	return ok && ty.Kind == types.KindPrimitive && (ty.Prim.IsInteger() || ty.Prim.IsFloat())
}

func isInteger(c *types.Context, t types.TypeID) bool {
	ty, ok:= c.Lookup(t)
	return ok && ty.Kind == types.KindPrimitive && ty.Prim.IsInteger()
}

func isFloatType(c *types.Context, t types.TypeID) bool {
	ty, ok:= c.Lookup(t)
	return ok && ty.Kind == types.KindPrimitive && ty.Prim.IsFloat()
}

func isPointer(c *types.Context, t types.TypeID) bool {
	ty, ok:= c.Lookup(t)
	return ok && ty.Kind == types.KindPointer
}
