package sema

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/types"
)

// typeExpr types id bottom-up, honoring target as the type context flowing
// down from an enclosing var initializer, ret, call argument, or field
// initializer. target may be types.NoTypeID when no context
// is available (e.g. a bare expression statement), in which case an
// untyped literal defaults per the rules below.
//
// Every helper below takes id rather than a *ast.Expr and re-fetches its
// pointer by id after any call that may recurse into typeExpr or trigger
// template instantiation (fetchFunctionSpecialization/fetchStructSpecialization),
// since both append to the Unit's arenas and can reallocate the backing
// slice out from under a pointer held across the call.
func (c *ctx) typeExpr(id ast.ExprID, target types.TypeID) error {
	if id == ast.NoExprID {
		return nil
	}
	e:= c.u.AST.Expr(id)
	b := c.u.AST.Types.Builtins()
	tc:= c.u.AST.Types

	switch e.Kind {
	case ast.ExprLiteralBool:
		e.Type = b.Bool

	case ast.ExprLiteralInt:
		if target != types.NoTypeID && isNumeric(tc, target) {
			e.Type = target
		} else {
			e.Type = b.I64
		}

	case ast.ExprLiteralFloat:
		if target != types.NoTypeID && isFloatType(tc, target) {
			e.Type = target
		} else {
			e.Type = b.F64
		}

	case ast.ExprLiteralChar:
		e.Type = b.Char

	case ast.ExprLiteralString:
		// A string literal denotes its contents, including the implicit
		// NUL terminator, as a fixed-size char array (example
		// `fix x: char[7] = "hello\n";"); the MIR lowering visitor decides
		// whether that materializes as a `cpy` into an aggregate place or
		// decays to a data pointer depending on how the value is used.
		e.Type = tc.MakeArray(b.Char, uint64(len(e.StringVal))+1)

	case ast.ExprLiteralNil:
		if target != types.NoTypeID && isPointer(tc, target) {
			e.Type = target
		} else {
			e.Type = tc.MakePointer(b.Void)
		}

	case ast.ExprRef:
		d:= c.u.AST.Decl(e.Decl)
		e.Type = refType(d)
		e.LValue = isLValueDecl(d.Kind)

	case ast.ExprBinary:
		return c.typeBinary(id, target)

	case ast.ExprUnary:
		return c.typeUnary(id)

	case ast.ExprCast:
		if err:= c.typeExpr(e.Operand, types.NoTypeID); err != nil {
			return err
		}
		e = c.u.AST.Expr(id)
		if !castValid(tc, c.u.AST.Expr(e.Operand).Type, e.TargetType) {
			return diag.Errorf(e.Loc, "invalid cast")
		}
		e.Type = e.TargetType

	case ast.ExprParen:
		if err:= c.typeExpr(e.Operand, target); err != nil {
			return err
		}
		e = c.u.AST.Expr(id)
		inner:= c.u.AST.Expr(e.Operand)
		e.Type = inner.Type
		e.LValue = inner.LValue

	case ast.ExprField:
		return c.typeField(id)

	case ast.ExprIndex:
		return c.typeIndex(id)

	case ast.ExprCall:
		return c.typeCall(id)

	case ast.ExprMethodCall:
		return c.typeMethodCall(id)

	case ast.ExprStructInit:
		return c.typeStructInit(id, target)

	case ast.ExprSizeof:
		e.Type = b.U64

	case ast.ExprTypeSpec:
		// Already bound and typed by internal/resolve (enum variant).
	case ast.ExprUseSpec:
		// Already bound and typed by internal/resolve (imported symbol).
	}
	return nil
}

func refType(d *ast.Decl) types.TypeID {
	if d.Kind == ast.DeclEnumVariant {
		return d.Type // the enum's underlying integer type
	}
	return d.Type
}

func isLValueDecl(k ast.DeclKind) bool {
	switch k {
	case ast.DeclVar, ast.DeclParam, ast.DeclField:
		return true
	default:
		return false
	}
}

func (c *ctx) typeBinary(id ast.ExprID, target types.TypeID) error {
	tc:= c.u.AST.Types
	b := tc.Builtins()
	e:= c.u.AST.Expr(id)

	if e.Op.IsAssignment() {
		lhsID, rhsID, loc, op:= e.LHS, e.RHS, e.Loc, e.Op
		if err:= c.typeExpr(lhsID, types.NoTypeID); err != nil {
			return err
		}
		lhs:= c.u.AST.Expr(lhsID)
		if !lhs.LValue {
			return diag.Errorf(loc, "left-hand side of %q is not assignable", op)
		}
		lhsType:= lhs.Type
		if err:= c.typeExpr(rhsID, lhsType); err != nil {
			return err
		}
		rhs:= c.u.AST.Expr(rhsID)
		if !c.assignable(lhsType, rhs.Type) {
			return diag.Errorf(loc, "cannot assign mismatched types with %q", op)
		}
		e = c.u.AST.Expr(id)
		e.Type = lhsType
		e.LValue = false
		return nil
	}

	// Non-assignment binary: for arithmetic/bitwise operators a target
	// propagates down to both operands (so `x + 1` with x: i32 types the
	// literal 1 as i32); comparisons and logical operators have no useful
	// target to propagate since their own result type is always bool.
	lhsID, rhsID, loc, op:= e.LHS, e.RHS, e.Loc, e.Op
	propagate:= target
	switch op {
	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq, ast.OpEq, ast.OpNotEq,
		ast.OpLogAnd, ast.OpLogOr:
		propagate = types.NoTypeID
	}
	if err:= c.typeExpr(lhsID, propagate); err != nil {
		return err
	}
	lhs:= c.u.AST.Expr(lhsID)
	if propagate == types.NoTypeID {
		propagate = lhs.Type
	}
	lhsType:= lhs.Type
	if err:= c.typeExpr(rhsID, propagate); err != nil {
		return err
	}
	rhs:= c.u.AST.Expr(rhsID)
	rhsType:= rhs.Type
	e = c.u.AST.Expr(id)

	switch op {
	case ast.OpLogAnd, ast.OpLogOr:
		if lhsType != b.Bool || rhsType != b.Bool {
			return diag.Errorf(loc, "operands of %q must be bool", op)
		}
		e.Type = b.Bool
	case ast.OpLt, ast.OpLtEq, ast.OpGt, ast.OpGtEq, ast.OpEq, ast.OpNotEq:
		if !c.assignable(lhsType, rhsType) && !c.assignable(rhsType, lhsType) {
			return diag.Errorf(loc, "cannot compare mismatched types")
		}
		e.Type = b.Bool
	default: // arithmetic, shift, bitwise
		if lhsType != rhsType {
			return diag.Errorf(loc, "operands of %q have mismatched types", op)
		}
		if !isNumeric(tc, lhsType) && !(isPointer(tc, lhsType) && (op == ast.OpAdd || op == ast.OpSub)) {
			return diag.Errorf(loc, "operator %q requires numeric operands", op)
		}
		e.Type = lhsType
	}
	return nil
}

func (c *ctx) typeUnary(id ast.ExprID) error {
	tc:= c.u.AST.Types
	e:= c.u.AST.Expr(id)
	uop, operandID, loc:= e.UOp, e.Operand, e.Loc

	switch uop {
	case ast.OpAddr:
		if err:= c.typeExpr(operandID, types.NoTypeID); err != nil {
			return err
		}
		operand:= c.u.AST.Expr(operandID)
		if !operand.LValue {
			return diag.Errorf(loc, "cannot take the address of a non-lvalue")
		}
		pt:= tc.MakePointer(operand.Type)
		e = c.u.AST.Expr(id)
		e.Type = pt
		e.LValue = false
	case ast.OpDeref:
		if err:= c.typeExpr(operandID, types.NoTypeID); err != nil {
			return err
		}
		operand:= c.u.AST.Expr(operandID)
		if !isPointer(tc, operand.Type) {
			return diag.Errorf(loc, "cannot dereference a non-pointer")
		}
		pointee:= tc.MustLookup(operand.Type).Pointee
		e = c.u.AST.Expr(id)
		e.Type = pointee
		e.LValue = true
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		if err:= c.typeExpr(operandID, types.NoTypeID); err != nil {
			return err
		}
		operand:= c.u.AST.Expr(operandID)
		if !operand.LValue {
			return diag.Errorf(loc, "operand of %q is not assignable", uop)
		}
		if !isNumeric(tc, operand.Type) && !isPointer(tc, operand.Type) {
			return diag.Errorf(loc, "operand of %q must be numeric or a pointer", uop)
		}
		e = c.u.AST.Expr(id)
		e.Type = operand.Type
		e.LValue = operand.LValue
	default: // OpNeg, OpNot, OpBitNot
		if err:= c.typeExpr(operandID, types.NoTypeID); err != nil {
			return err
		}
		operand:= c.u.AST.Expr(operandID)
		e = c.u.AST.Expr(id)
		e.Type = operand.Type
	}
	return nil
}

// typeField resolves a.b, per the Open Question #3: the base
// must already be a struct value (not a pointer-to-struct) — deref it
// explicitly (`(*p).field`) first. This keeps field access unambiguous
// about whether the result is the field's own lvalue or a read through a
// pointer, a distinction method dispatch (typeMethodCall) does not need to
// make since a method's receiver is always passed by pointer regardless.
func (c *ctx) typeField(id ast.ExprID) error {
	e:= c.u.AST.Expr(id)
	baseID, field, loc:= e.Base, e.Field, e.Loc
	if err:= c.typeExpr(baseID, types.NoTypeID); err != nil {
		return err
	}
	base:= c.u.AST.Expr(baseID)
	tc:= c.u.AST.Types
	bt, ok:= tc.Lookup(base.Type)
	if !ok || bt.Kind != types.KindStruct {
		return diag.Errorf(loc, "field access requires a struct value; dereference the pointer explicitly first")
	}
	fieldID, fieldIdx:= findStructField(c, bt.Name, field)
	if fieldID == ast.NoDeclID {
		return diag.Errorf(loc, "struct %q has no field %q", bt.Name, field)
	}
	_ = fieldIdx
	e = c.u.AST.Expr(id)
	e.FieldDecl = fieldID
	e.Type = c.u.AST.Decl(fieldID).Type
	e.LValue = base.LValue
	return nil
}

// findStructField locates struct structName's field decl by name, via the
// owning unit's scope of the struct declaration registered under that name.
func findStructField(c *ctx, structName, field string) (ast.DeclID, int) {
	declID, ok:= c.u.AST.Scopes.Lookup(c.u.AST.Scopes.Root(), structName)
	if !ok {
		return ast.NoDeclID, -1
	}
	d:= c.u.AST.Decl(declID)
	if d.Kind != ast.DeclStruct && d.Kind != ast.DeclStructSpecialization {
		return ast.NoDeclID, -1
	}
	for i, fID:= range d.Fields {
		if c.u.AST.Decl(fID).Name == field {
			return fID, i
		}
	}
	return ast.NoDeclID, -1
}

func (c *ctx) typeIndex(id ast.ExprID) error {
	e:= c.u.AST.Expr(id)
	baseID, idxID, loc:= e.Base, e.IndexExpr, e.Loc
	if err:= c.typeExpr(baseID, types.NoTypeID); err != nil {
		return err
	}
	if err:= c.typeExpr(idxID, types.NoTypeID); err != nil {
		return err
	}
	base:= c.u.AST.Expr(baseID)
	idx:= c.u.AST.Expr(idxID)
	tc:= c.u.AST.Types
	if !isInteger(tc, idx.Type) {
		return diag.Errorf(loc, "array/pointer index must be an integer")
	}
	bt, ok:= tc.Lookup(base.Type)
	if !ok || (bt.Kind != types.KindArray && bt.Kind != types.KindPointer) {
		return diag.Errorf(loc, "cannot index a non-array, non-pointer value")
	}
	e = c.u.AST.Expr(id)
	if bt.Kind == types.KindArray {
		e.Type = bt.Elem
	} else {
		e.Type = bt.Pointee
	}
	e.LValue = true
	return nil
}

func (c *ctx) typeCall(id ast.ExprID) error {
	e:= c.u.AST.Expr(id)
	loc, calleeID, args:= e.Loc, e.Callee, e.Args

	calleeExpr:= c.u.AST.Expr(calleeID)
	if calleeExpr.Kind != ast.ExprRef && calleeExpr.Kind != ast.ExprUseSpec {
		return diag.Errorf(loc, "call target must be a function name")
	}
	fnID:= calleeExpr.Decl
	fn:= c.u.AST.Decl(fnID)
	c.u.AST.Expr(calleeID).Type = fn.Type

	if fn.Kind == ast.DeclTemplateFunction {
		argTypes:= make([]types.TypeID, len(args))
		for i, a:= range args {
			if err:= c.typeExpr(a, types.NoTypeID); err != nil {
				return err
			}
			argTypes[i] = c.u.AST.Expr(a).Type
		}
		specID, err:= c.fetchFunctionSpecialization(fnID, argTypes)
		if err != nil {
			return err
		}
		fnID = specID
		fn = c.u.AST.Decl(fnID)
		calleeExpr = c.u.AST.Expr(calleeID)
		calleeExpr.Decl = fnID
		calleeExpr.Type = fn.Type
	} else {
		for _, a:= range args {
			if err:= c.typeExpr(a, types.NoTypeID); err != nil {
				return err
			}
		}
	}

	if fn.Kind != ast.DeclFunction && fn.Kind != ast.DeclFunctionSpecialization {
		return diag.Errorf(loc, "%q is not callable", fn.Name)
	}
	if len(args) != len(fn.Params) {
		return diag.Errorf(loc, "%q expects %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	for i, a:= range args {
		pType:= c.u.AST.Decl(fn.Params[i]).Type
		if err:= c.typeExpr(a, pType); err != nil {
			return err
		}
		if !c.assignable(pType, c.u.AST.Expr(a).Type) {
			return diag.Errorf(loc, "argument %d of %q has a mismatched type", i+1, fn.Name)
		}
	}
	e = c.u.AST.Expr(id)
	e.ResolvedFn = fnID
	e.Type = fn.Ret
	return nil
}

// typeMethodCall resolves base.method(args): the base is typed first,
// unqualified by the field-access deref rule (typeField) since a method's
// implicit self parameter is always a pointer regardless of whether base
// itself is a struct value or already a pointer to one.
func (c *ctx) typeMethodCall(id ast.ExprID) error {
	e:= c.u.AST.Expr(id)
	loc, baseID, method, args:= e.Loc, e.Base, e.Method, e.Args
	if err:= c.typeExpr(baseID, types.NoTypeID); err != nil {
		return err
	}
	base:= c.u.AST.Expr(baseID)
	tc:= c.u.AST.Types
	bt, ok:= tc.Lookup(base.Type)
	if ok && bt.Kind == types.KindPointer {
		pt, ok2:= tc.Lookup(bt.Pointee)
		if !ok2 || pt.Kind != types.KindStruct {
			return diag.Errorf(loc, "method call requires a struct or struct pointer receiver")
		}
		bt = pt
	} else if !ok || bt.Kind != types.KindStruct {
		return diag.Errorf(loc, "method call requires a struct or struct pointer receiver")
	}

	methodID, ok:= findStructMethod(c, bt.Name, method)
	if !ok {
		return diag.Errorf(loc, "struct %q has no method %q", bt.Name, method)
	}
	fn:= c.u.AST.Decl(methodID)
	if len(args) != len(fn.Params)-1 {
		return diag.Errorf(loc, "%q expects %d arguments, got %d", fn.Name, len(fn.Params)-1, len(args))
	}
	for i, a:= range args {
		pType:= c.u.AST.Decl(fn.Params[i+1]).Type
		if err:= c.typeExpr(a, pType); err != nil {
			return err
		}
		if !c.assignable(pType, c.u.AST.Expr(a).Type) {
			return diag.Errorf(loc, "argument %d of %q has a mismatched type", i+1, fn.Name)
		}
	}
	e = c.u.AST.Expr(id)
	e.ResolvedFn = methodID
	e.Type = fn.Ret
	return nil
}

func findStructMethod(c *ctx, structName, method string) (ast.DeclID, bool) {
	declID, ok:= c.u.AST.Scopes.Lookup(c.u.AST.Scopes.Root(), structName)
	if !ok {
		return ast.NoDeclID, false
	}
	d:= c.u.AST.Decl(declID)
	for _, mID:= range c.u.AST.Scopes.Decls(d.BodyScope) {
		md:= c.u.AST.Decl(mID)
		if md.Kind == ast.DeclFunction && md.Name == method && md.IsMethod {
			return mID, true
		}
	}
	return ast.NoDeclID, false
}

// typeStructInit types `Name { field: value,... }`, matching
// §4.6's aggregate-initializer rule: every declared field must appear
// exactly once, structurally matched by name rather than position.
func (c *ctx) typeStructInit(id ast.ExprID, target types.TypeID) error {
	e:= c.u.AST.Expr(id)
	loc, structName:= e.Loc, e.StructName
	declID, ok:= c.u.AST.Scopes.Lookup(c.u.AST.Scopes.Root(), structName)
	if !ok {
		return diag.Errorf(loc, "unresolved struct %q", structName)
	}
	d:= c.u.AST.Decl(declID)
	if d.Kind == ast.DeclTemplateStruct {
		if target == types.NoTypeID {
			return diag.Errorf(loc, "cannot infer type arguments for %q without a target type", structName)
		}
		tt:= c.u.AST.Types.MustLookup(target)
		if tt.Kind != types.KindTemplateStruct && tt.Kind != types.KindStruct {
			return diag.Errorf(loc, "%q is a template struct; a concrete target type is required", structName)
		}
		var args []types.TypeID
		if tt.Kind == types.KindTemplateStruct {
			args = tt.Args
		}
		specID, err:= c.fetchStructSpecialization(declID, args)
		if err != nil {
			return err
		}
		declID = specID
		d = c.u.AST.Decl(declID)
	}
	if d.Kind != ast.DeclStruct && d.Kind != ast.DeclStructSpecialization {
		return diag.Errorf(loc, "%q is not a struct", structName)
	}

	// e may be stale after fetchStructSpecialization's cloning; re-fetch
	// before reading/writing FieldInits below.
	e = c.u.AST.Expr(id)
	seen:= make(map[string]bool, len(d.Fields))
	fieldInits:= e.FieldInits
	for i:= range fieldInits {
		fi:= &fieldInits[i]
		fieldID, _:= findStructField(c, d.Name, fi.Name)
		if fieldID == ast.NoDeclID {
			return diag.Errorf(loc, "struct %q has no field %q", d.Name, fi.Name)
		}
		if seen[fi.Name] {
			return diag.Errorf(loc, "field %q initialized more than once", fi.Name)
		}
		seen[fi.Name] = true
		fType:= c.u.AST.Decl(fieldID).Type
		if err:= c.typeExpr(fi.Value, fType); err != nil {
			return err
		}
		if !c.assignable(fType, c.u.AST.Expr(fi.Value).Type) {
			return diag.Errorf(loc, "field %q initializer has a mismatched type", fi.Name)
		}
	}
	if len(seen) != len(d.Fields) {
		return diag.Errorf(loc, "struct %q: not every field was initialized", d.Name)
	}
	e = c.u.AST.Expr(id)
	e.StructType = d.Type
	e.Type = d.Type
	return nil
}

// isConstantExpr reports whether e denotes a compile-time constant, the
// rule requires for a global variable's initializer and for
// a match case's pattern.
func isConstantExpr(u *ast.Unit, id ast.ExprID) bool {
	if id == ast.NoExprID {
		return false
	}
	e:= u.Expr(id)
	switch e.Kind {
	case ast.ExprLiteralBool, ast.ExprLiteralInt, ast.ExprLiteralFloat,
		ast.ExprLiteralChar, ast.ExprLiteralString, ast.ExprLiteralNil:
		return true
	case ast.ExprTypeSpec:
		return true // enum variant
	case ast.ExprParen:
		return isConstantExpr(u, e.Operand)
	case ast.ExprUnary:
		switch e.UOp {
		case ast.OpNeg, ast.OpNot, ast.OpBitNot:
			return isConstantExpr(u, e.Operand)
		default:
			return false
		}
	case ast.ExprCast:
		return isConstantExpr(u, e.Operand)
	default:
		return false
	}
}
