package mir

import (
	"fmt"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/unit"
)

// lowerExprRValue lowers id for its value: for a scalar this yields the
// loaded value; for an aggregate this yields the address the aggregate
// currently lives at (the caller is expected to `cpy` from it, never to
// treat it as a scalar SSA value — the aggregate convention).
func (fl *funcLowerer) lowerExprRValue(id ast.ExprID) (Value, error) {
	e:= fl.tu.AST.Expr(id)
	ty:= fl.tc.Convert(e.Type)

	switch e.Kind {
	case ast.ExprLiteralBool:
		v:= int64(0)
		if e.BoolVal {
			v = 1
		}
		return ConstInt64(ty, v), nil
	case ast.ExprLiteralInt:
		return ConstInt64(ty, e.IntVal), nil
	case ast.ExprLiteralFloat:
		return ConstFloat64(ty, e.FloatVal), nil
	case ast.ExprLiteralChar:
		return ConstInt64(ty, int64(e.CharVal)), nil
	case ast.ExprLiteralString:
		dataID:= fl.l.constString(e.StringVal)
		ptrTy:= fl.l.seg.Types.Pointer(fl.l.seg.Data[dataID].Type)
		return DataValue(dataID, ptrTy), nil
	case ast.ExprLiteralNil:
		return ConstNilPtr(ty), nil
	case ast.ExprRef:
		return fl.lowerRef(e, ty)
	case ast.ExprParen:
		return fl.lowerExprRValue(e.Operand)
	case ast.ExprBinary:
		return fl.lowerBinary(e, ty)
	case ast.ExprUnary:
		return fl.lowerUnary(e, ty)
	case ast.ExprCast:
		return fl.lowerCast(e, ty)
	case ast.ExprField:
		addr, err:= fl.lowerFieldAddr(e)
		if err != nil {
			return Value{}, err
		}
		if isAggregate(fl.l.seg, ty) {
			return addr, nil
		}
		return fl.b.Load(ty, addr, 0), nil
	case ast.ExprIndex:
		addr, err:= fl.lowerIndexAddr(e)
		if err != nil {
			return Value{}, err
		}
		if isAggregate(fl.l.seg, ty) {
			return addr, nil
		}
		return fl.b.Load(ty, addr, 0), nil
	case ast.ExprCall:
		return fl.lowerCall(e, ty)
	case ast.ExprMethodCall:
		return fl.lowerMethodCall(e, ty)
	case ast.ExprStructInit:
		slot:= fl.b.Slot("", ty)
		if err:= fl.lowerStructInitInto(e, slot, ty); err != nil {
			return Value{}, err
		}
		return slot, nil
	case ast.ExprSizeof:
		return ConstInt64(ty, int64(typeSizeOf(fl.l.seg, fl.tc.Convert(e.TargetType)))), nil
	case ast.ExprTypeSpec:
		// resolveTypeSpec (internal/resolve) already bound e.Decl to the
		// variant's DeclEnumVariant in this same unit.
		return fl.lowerRef(e, ty)
	case ast.ExprUseSpec:
		return fl.lowerUseSpec(e, ty)
	}
	return Value{}, fmt.Errorf("mir: unhandled expression kind %s", e.Kind)
}

// lowerCond lowers id and, when its type isn't already i1, synthesizes
// the comparison-against-zero the inject_cmp rule requires
// for a brif condition: `icmp_ne v, 0` for an integer, `fcmp_one v, 0.0`
// for a float, `pcmp_ne v, nil` for a pointer.
func (fl *funcLowerer) lowerCond(id ast.ExprID) (Value, error) {
	v, err:= fl.lowerExprRValue(id)
	if err != nil {
		return Value{}, err
	}
	return fl.injectCmp(v), nil
}

func (fl *funcLowerer) injectCmp(v Value) Value {
	ty:= fl.l.seg.Types.Lookup(v.Type)
	switch {
	case ty.Kind == KindI1:
		return v
	case ty.Kind.IsInteger():
		return fl.b.Cmp(InstICmpNe, v, ConstInt64(v.Type, 0))
	case ty.Kind.IsFloat():
		return fl.b.Cmp(InstFCmpOne, v, ConstFloat64(v.Type, 0))
	case ty.Kind == KindPointer:
		return fl.b.Cmp(InstPCmpNe, v, ConstNilPtr(v.Type))
	default:
		return v
	}
}

// lowerShortCircuit lowers && / || through a two-predecessor phi,
// re-capturing the current block after lowering the right-hand side
// since evaluating it may itself have branched.
func (fl *funcLowerer) lowerShortCircuit(e *ast.Expr) (Value, error) {
	lhs, err:= fl.lowerCond(e.LHS)
	if err != nil {
		return Value{}, err
	}
	lhsBlk:= fl.b.Current()

	rhsBlk:= fl.b.NewBlock("land.rhs")
	mergeBlk:= fl.b.NewBlock("lor.merge")

	if e.Op == ast.OpLogAnd {
		fl.b.Brif(lhs, rhsBlk, mergeBlk)
	} else {
		fl.b.Brif(lhs, mergeBlk, rhsBlk)
	}

	fl.b.SetBlock(rhsBlk)
	rhs, err:= fl.lowerCond(e.RHS)
	if err != nil {
		return Value{}, err
	}
	rhsBlk = fl.b.Current() // re-capture: the RHS may have branched internally
	fl.b.Jmp(mergeBlk)

	fl.b.SetBlock(mergeBlk)
	i1:= fl.l.seg.Types.I1()
	short:= ConstInt64(i1, boolConst(e.Op == ast.OpLogOr))
	return fl.b.Phi(i1, []PhiEdge{
		{Value: short, Block: lhsBlk},
		{Value: rhs, Block: rhsBlk},
	}), nil
}

func boolConst(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func (fl *funcLowerer) lowerRef(e *ast.Expr, ty TypeID) (Value, error) {
	d:= fl.tu.AST.Decl(e.Decl)
	switch d.Kind {
	case ast.DeclFunction, ast.DeclFunctionSpecialization:
		name:= mangledName(fl.tu, d)
		fnID, ok:= fl.l.seg.FuncByName(name)
		if !ok {
			return Value{}, fmt.Errorf("mir: function %q not lowered", name)
		}
		return FuncValue(fnID, fl.l.seg.Func(fnID).Type), nil
	case ast.DeclEnumVariant:
		return ConstInt64(ty, d.Value), nil
	case ast.DeclVar:
		if d.Scope == fl.tu.AST.Scopes.Root() {
			return fl.lowerGlobalRef(d, ty)
		}
		fallthrough
	case ast.DeclParam:
		addr, ok:= fl.locals[e.Decl]
		if !ok {
			return Value{}, fmt.Errorf("mir: reference to %q before its declaration", d.Name)
		}
		if isAggregate(fl.l.seg, ty) {
			return addr, nil
		}
		return fl.b.Load(ty, addr, 0), nil
	}
	return Value{}, fmt.Errorf("mir: unhandled ref to decl kind %s", d.Kind)
}

// lowerGlobalRef lowers a reference to a root-scope `DeclVar`, which
// Sema guarantees is constant-initialized. The initializer is folded at
// lowering time (constFold) into a Data's backing bytes; a non-foldable
// initializer (one Sema still accepted as "constant" by a wider notion
// than constFold implements) falls back to a zeroed Data of the right
// size.
func (fl *funcLowerer) lowerGlobalRef(d *ast.Decl, ty TypeID) (Value, error) {
	name:= fl.tu.Path + "::" + d.Name
	for i:= range fl.l.seg.Data {
		if fl.l.seg.Data[i].Name == name {
			if isAggregate(fl.l.seg, ty) {
				return DataValue(DataID(i), fl.l.seg.Types.Pointer(ty)), nil
			}
			return fl.b.Load(ty, DataValue(DataID(i), fl.l.seg.Types.Pointer(ty)), 0), nil
		}
	}
	bytes, ok:= constFold(fl.tu.AST, d.Init)
	if !ok {
		bytes = make([]byte, typeSizeOf(fl.l.seg, ty))
	}
	id:= fl.l.seg.AddData(Data{Name: name, Type: ty, Bytes: bytes, Linkage: LinkageInternal})
	if isAggregate(fl.l.seg, ty) {
		return DataValue(id, fl.l.seg.Types.Pointer(ty)), nil
	}
	return fl.b.Load(ty, DataValue(id, fl.l.seg.Types.Pointer(ty)), 0), nil
}

// lowerUseSpec lowers `UseName::Sym`, a reference into a foreign unit
// e.Decl is an ast.DeclID valid in that OTHER unit's arena (resolveTypeSpec,
// internal/resolve/typespec.go), so it can't be looked up through fl.tu
// like an ordinary ExprRef. The target unit is found back through the
// `use` alias decl in fl.tu's own root scope.
func (fl *funcLowerer) lowerUseSpec(e *ast.Expr, ty TypeID) (Value, error) {
	useDeclID, ok:= fl.tu.AST.Scopes.Lookup(fl.tu.AST.Scopes.Root(), e.UseName)
	if !ok {
		return Value{}, fmt.Errorf("mir: use alias %q not found", e.UseName)
	}
	target, ok:= fl.tu.Imports[useDeclID]
	if !ok {
		return Value{}, fmt.Errorf("mir: use alias %q never resolved to a unit", e.UseName)
	}
	d:= target.AST.Decl(e.Decl)
	switch d.Kind {
	case ast.DeclFunction, ast.DeclFunctionSpecialization:
		name:= mangledName(target, d)
		fnID, fnOk:= fl.l.seg.FuncByName(name)
		if !fnOk {
			return Value{}, fmt.Errorf("mir: function %q not lowered", name)
		}
		return FuncValue(fnID, fl.l.seg.Func(fnID).Type), nil
	case ast.DeclEnumVariant:
		return ConstInt64(ty, d.Value), nil
	case ast.DeclVar:
		targetConv:= fl.l.typeConv(target.AST)
		return fl.lowerForeignGlobalRef(target, d, targetConv.Convert(d.Type))
	}
	return Value{}, fmt.Errorf("mir: unhandled use-qualified reference to decl kind %s", d.Kind)
}

// lowerForeignGlobalRef is lowerGlobalRef generalized to a Data entry
// qualified by another unit's path, for a `use`-imported global.
func (fl *funcLowerer) lowerForeignGlobalRef(target *unit.TranslationUnit, d *ast.Decl, ty TypeID) (Value, error) {
	name:= target.Path + "::" + d.Name
	for i:= range fl.l.seg.Data {
		if fl.l.seg.Data[i].Name == name {
			if isAggregate(fl.l.seg, ty) {
				return DataValue(DataID(i), fl.l.seg.Types.Pointer(ty)), nil
			}
			return fl.b.Load(ty, DataValue(DataID(i), fl.l.seg.Types.Pointer(ty)), 0), nil
		}
	}
	bytes, ok:= constFold(target.AST, d.Init)
	if !ok {
		bytes = make([]byte, typeSizeOf(fl.l.seg, ty))
	}
	id:= fl.l.seg.AddData(Data{Name: name, Type: ty, Bytes: bytes, Linkage: LinkageInternal})
	if isAggregate(fl.l.seg, ty) {
		return DataValue(id, fl.l.seg.Types.Pointer(ty)), nil
	}
	return fl.b.Load(ty, DataValue(id, fl.l.seg.Types.Pointer(ty)), 0), nil
}

func typeSizeOf(seg *Segment, ty TypeID) uint64 {
	t:= seg.Types.Lookup(ty)
	switch t.Kind {
	case KindI1, KindI8:
		return 1
	case KindI16:
		return 2
	case KindI32, KindF32:
		return 4
	case KindI64, KindF64, KindPointer, KindFunction:
		return 8
	case KindArray:
		return t.Size * typeSizeOf(seg, t.Elem)
	case KindStruct:
		var sz uint64
		for _, m:= range t.Members {
			sz += typeSizeOf(seg, m)
		}
		return sz
	default:
		return 0
	}
}

// alignOf returns ty's natural alignment: an array's is its element's
// (a `char[7]` has no 8-byte-aligned member to widen it to), a struct's
// is the widest of its members', matching the System V x86_64 ABI's
// natural-alignment rule rather than a fixed 8-byte assumption.
func alignOf(seg *Segment, ty TypeID) uint32 {
	t:= seg.Types.Lookup(ty)
	switch t.Kind {
	case KindI1, KindI8:
		return 1
	case KindI16:
		return 2
	case KindI32, KindF32:
		return 4
	case KindI64, KindF64, KindPointer, KindFunction:
		return 8
	case KindArray:
		return alignOf(seg, t.Elem)
	case KindStruct:
		var a uint32 = 1
		for _, m:= range t.Members {
			if ma:= alignOf(seg, m); ma > a {
				a = ma
			}
		}
		return a
	default:
		return 1
	}
}
