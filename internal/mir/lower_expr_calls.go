package mir

import (
	"fmt"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/types"
)

func (fl *funcLowerer) lowerCall(e *ast.Expr, ty TypeID) (Value, error) {
	callee:= fl.tu.AST.Decl(e.ResolvedFn)
	name:= mangledName(fl.tu, callee)
	fnID, ok:= fl.l.seg.FuncByName(name)
	if !ok {
		return Value{}, fmt.Errorf("mir: call to undeclared function %q", name)
	}
	return fl.emitCall(fnID, e.Args, nil, ty)
}

func (fl *funcLowerer) lowerMethodCall(e *ast.Expr, ty TypeID) (Value, error) {
	callee:= fl.tu.AST.Decl(e.ResolvedFn)
	name:= mangledName(fl.tu, callee)
	fnID, ok:= fl.l.seg.FuncByName(name)
	if !ok {
		return Value{}, fmt.Errorf("mir: call to undeclared method %q", name)
	}
	self, lErr:= fl.lowerLValueAddr(e.Base)
	if lErr != nil {
		// The receiver is a temporary (e.g. a call result); materialize
		// it into a slot so the method still receives a stable pointer.
		recvVal, rvErr:= fl.lowerExprRValue(e.Base)
		if rvErr != nil {
			return Value{}, rvErr
		}
		slot:= fl.b.Slot("", recvVal.Type)
		fl.b.Store(recvVal, slot, 0)
		self = slot
	}
	return fl.emitCall(fnID, e.Args, &self, ty)
}

// emitCall applies the ARet/AArg calling convention (
// §13.1) around a plain `call` instruction: an aggregate return gets a
// caller-allocated slot prepended as the ARet argument and the call's
// own MIR type stays void; an aggregate argument passes the pointer
// lowerExprRValue already produced for it.
func (fl *funcLowerer) emitCall(fnID FuncID, astArgs []ast.ExprID, self *Value, ty TypeID) (Value, error) {
	fn:= fl.l.seg.Func(fnID)
	idx:= 0
	var args []Value
	var aretSlot Value
	haveARet:= len(fn.Args) > idx && fn.Args[idx].Attr == AttrARet
	if haveARet {
		pointee:= fl.l.seg.Types.Lookup(fn.Args[idx].Type).Pointee
		aretSlot = fl.b.Slot("", pointee)
		args = append(args, aretSlot)
		idx++
	}
	if self != nil {
		args = append(args, *self)
		idx++
	}
	for _, a:= range astArgs {
		// An AArg parameter's Value is already the aggregate's address,
		// per lowerExprRValue's aggregate convention, so it passes
		// through unchanged regardless of the parameter's attribute.
		v, err:= fl.lowerExprRValue(a)
		if err != nil {
			return Value{}, err
		}
		args = append(args, v)
		idx++
	}

	retTy:= fl.l.seg.Types.Lookup(fn.Type).Return
	callee:= FuncValue(fnID, fn.Type)
	result:= fl.b.Call(callee, args, retTy)
	if haveARet {
		return aretSlot, nil
	}
	return result, nil
}

// lowerInitInto lowers an expression whose value is an aggregate
// directly into dest (a pointer), avoiding a redundant temporary slot
// and `cpy` when the source is already itself an address (a struct
// literal, a call through ARet, or another aggregate lvalue).
func (fl *funcLowerer) lowerInitInto(id ast.ExprID, dest Value, ty TypeID) error {
	e:= fl.tu.AST.Expr(id)
	if e.Kind == ast.ExprStructInit {
		return fl.lowerStructInitInto(e, dest, ty)
	}
	src, err:= fl.lowerExprRValue(id)
	if err != nil {
		return err
	}
	size:= ConstInt64(fl.l.seg.Types.I64(), int64(typeSizeOf(fl.l.seg, ty)))
	align:= alignOf(fl.l.seg, ty)
	fl.b.Cpy(size, src, align, dest, align)
	return nil
}

// lowerStructInitInto lowers `Name{field: value,...}` by storing each
// field directly into dest, avoiding a whole-struct intermediate.
func (fl *funcLowerer) lowerStructInitInto(e *ast.Expr, dest Value, ty TypeID) error {
	for _, fi:= range e.FieldInits {
		idx, fieldTy, ok:= findField(fl.tu.AST, e.StructType, fi.Name)
		if !ok {
			return fmt.Errorf("mir: struct init references unknown field %q", fi.Name)
		}
		mirFieldTy:= fl.tc.Convert(fieldTy)
		addr:= fl.b.ApField(mirFieldTy, dest, idx)
		if isAggregate(fl.l.seg, mirFieldTy) {
			if err:= fl.lowerInitInto(fi.Value, addr, mirFieldTy); err != nil {
				return err
			}
			continue
		}
		v, err:= fl.lowerExprRValue(fi.Value)
		if err != nil {
			return err
		}
		fl.b.Store(v, addr, 0)
	}
	return nil
}

// structFieldDecls finds the DeclStruct/DeclStructSpecialization whose
// Name matches structTy and returns its ordered field Decls. Struct
// literals only name a struct Sema has already bound by name, so a
// linear scan of the unit's Decl arena (populated by the parser and any
// template-instantiation clones) always finds it.
func structFieldDecls(u *ast.Unit, structTy types.TypeID) []ast.DeclID {
	t, ok:= u.Types.Lookup(structTy)
	if !ok {
		return nil
	}
	for i:= range u.Decls {
		d:= &u.Decls[i]
		if (d.Kind == ast.DeclStruct || d.Kind == ast.DeclStructSpecialization) && d.Name == t.Name {
			return d.Fields
		}
	}
	return nil
}

func findField(u *ast.Unit, structTy types.TypeID, name string) (int, types.TypeID, bool) {
	t, ok:= u.Types.Lookup(structTy)
	if !ok || t.Kind != types.KindStruct {
		return 0, types.NoTypeID, false
	}
	for i, fid:= range structFieldDecls(u, structTy) {
		if u.Decl(fid).Name == name {
			return i, t.Fields[i], true
		}
	}
	return 0, types.NoTypeID, false
}
