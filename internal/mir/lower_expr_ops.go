package mir

import (
	"fmt"

	"github.com/nwmarino/meddle/internal/ast"
)

func (fl *funcLowerer) lowerBinary(e *ast.Expr, ty TypeID) (Value, error) {
	if e.Op == ast.OpLogAnd || e.Op == ast.OpLogOr {
		return fl.lowerShortCircuit(e)
	}
	if e.Op.IsAssignment() {
		return fl.lowerAssign(e, ty)
	}

	lhs, err:= fl.lowerExprRValue(e.LHS)
	if err != nil {
		return Value{}, err
	}
	rhs, err:= fl.lowerExprRValue(e.RHS)
	if err != nil {
		return Value{}, err
	}
	unsigned:= IsUnsigned(fl.tu.AST.Types, fl.tu.AST.Expr(e.LHS).Type)
	operandTy:= fl.l.seg.Types.Lookup(lhs.Type)

	if kind, ok:= comparisonKind(e.Op, operandTy, unsigned); ok {
		return fl.b.Cmp(kind, lhs, rhs), nil
	}

	kind, err:= arithKind(e.Op, operandTy, unsigned)
	if err != nil {
		return Value{}, err
	}
	return fl.b.BinOp(kind, ty, lhs, rhs), nil
}

func comparisonKind(op ast.BinaryOp, ty Type, unsigned bool) (InstKind, bool) {
	isFloat:= ty.Kind.IsFloat()
	isPtr:= ty.Kind == KindPointer
	switch op {
	case ast.OpEq:
		switch {
		case isFloat:
			return InstFCmpOeq, true
		case isPtr:
			return InstPCmpEq, true
		default:
			return InstICmpEq, true
		}
	case ast.OpNotEq:
		switch {
		case isFloat:
			return InstFCmpOne, true
		case isPtr:
			return InstPCmpNe, true
		default:
			return InstICmpNe, true
		}
	case ast.OpLt:
		switch {
		case isFloat:
			return InstFCmpOlt, true
		case isPtr:
			return InstPCmpLt, true
		case unsigned:
			return InstICmpUlt, true
		default:
			return InstICmpSlt, true
		}
	case ast.OpLtEq:
		switch {
		case isFloat:
			return InstFCmpOle, true
		case isPtr:
			return InstPCmpLe, true
		case unsigned:
			return InstICmpUle, true
		default:
			return InstICmpSle, true
		}
	case ast.OpGt:
		switch {
		case isFloat:
			return InstFCmpOgt, true
		case isPtr:
			return InstPCmpGt, true
		case unsigned:
			return InstICmpUgt, true
		default:
			return InstICmpSgt, true
		}
	case ast.OpGtEq:
		switch {
		case isFloat:
			return InstFCmpOge, true
		case isPtr:
			return InstPCmpGe, true
		case unsigned:
			return InstICmpUge, true
		default:
			return InstICmpSge, true
		}
	}
	return InstInvalid, false
}

func arithKind(op ast.BinaryOp, ty Type, unsigned bool) (InstKind, error) {
	isFloat:= ty.Kind.IsFloat()
	switch op {
	case ast.OpAdd:
		if isFloat {
			return InstFAdd, nil
		}
		return InstAdd, nil
	case ast.OpSub:
		if isFloat {
			return InstFSub, nil
		}
		return InstSub, nil
	case ast.OpMul:
		if isFloat {
			return InstFMul, nil
		}
		if unsigned {
			return InstUMul, nil
		}
		return InstSMul, nil
	case ast.OpDiv:
		if isFloat {
			return InstFDiv, nil
		}
		if unsigned {
			return InstUDiv, nil
		}
		return InstSDiv, nil
	case ast.OpMod:
		if isFloat {
			return InstInvalid, fmt.Errorf("mir: floating-point modulo has no MIR instruction")
		}
		if unsigned {
			return InstURem, nil
		}
		return InstSRem, nil
	case ast.OpBitAnd:
		return InstAnd, nil
	case ast.OpBitOr:
		return InstOr, nil
	case ast.OpBitXor:
		return InstXor, nil
	case ast.OpShl:
		return InstShl, nil
	case ast.OpShr:
		if unsigned {
			return InstLShr, nil
		}
		return InstAShr, nil
	}
	return InstInvalid, fmt.Errorf("mir: unhandled binary operator %s", op)
}

func (fl *funcLowerer) lowerUnary(e *ast.Expr, ty TypeID) (Value, error) {
	switch e.UOp {
	case ast.OpAddr:
		return fl.lowerLValueAddr(e.Operand)
	case ast.OpDeref:
		ptr, err:= fl.lowerExprRValue(e.Operand)
		if err != nil {
			return Value{}, err
		}
		if isAggregate(fl.l.seg, ty) {
			return ptr, nil
		}
		return fl.b.Load(ty, ptr, 0), nil
	case ast.OpNeg:
		v, err:= fl.lowerExprRValue(e.Operand)
		if err != nil {
			return Value{}, err
		}
		if fl.l.seg.Types.Lookup(ty).Kind.IsFloat() {
			return fl.b.Unary(InstFNeg, ty, v), nil
		}
		return fl.b.Unary(InstNeg, ty, v), nil
	case ast.OpNot:
		v, err:= fl.lowerExprRValue(e.Operand)
		if err != nil {
			return Value{}, err
		}
		return fl.b.Unary(InstNot, ty, fl.injectCmp(v)), nil
	case ast.OpBitNot:
		v, err:= fl.lowerExprRValue(e.Operand)
		if err != nil {
			return Value{}, err
		}
		return fl.b.Unary(InstNot, ty, v), nil
	case ast.OpPreInc, ast.OpPreDec, ast.OpPostInc, ast.OpPostDec:
		return fl.lowerIncDec(e, ty)
	}
	return Value{}, fmt.Errorf("mir: unhandled unary operator %s", e.UOp)
}

func (fl *funcLowerer) lowerIncDec(e *ast.Expr, ty TypeID) (Value, error) {
	addr, err:= fl.lowerLValueAddr(e.Operand)
	if err != nil {
		return Value{}, err
	}
	old:= fl.b.Load(ty, addr, 0)
	one:= ConstInt64(ty, 1)
	if fl.l.seg.Types.Lookup(ty).Kind.IsFloat() {
		one = ConstFloat64(ty, 1)
	}
	kind:= InstAdd
	if e.UOp == ast.OpPreDec || e.UOp == ast.OpPostDec {
		kind = InstSub
	}
	if fl.l.seg.Types.Lookup(ty).Kind.IsFloat() {
		if kind == InstAdd {
			kind = InstFAdd
		} else {
			kind = InstFSub
		}
	}
	updated:= fl.b.BinOp(kind, ty, old, one)
	fl.b.Store(updated, addr, 0)
	if e.UOp == ast.OpPreInc || e.UOp == ast.OpPreDec {
		return updated, nil
	}
	return old, nil
}

// lowerLValueAddr returns the address an lvalue expression's storage
// lives at, for `&x`, assignment, field/index writes, and ++/--.
func (fl *funcLowerer) lowerLValueAddr(id ast.ExprID) (Value, error) {
	e:= fl.tu.AST.Expr(id)
	switch e.Kind {
	case ast.ExprRef:
		d:= fl.tu.AST.Decl(e.Decl)
		if d.Scope == fl.tu.AST.Scopes.Root() {
			// Address-of a global: force its Data into existence via
			// lowerGlobalRef's load path is wrong for an address; look
			// it up/create it directly as a pointer value.
			_, err:= fl.lowerGlobalRef(d, fl.tc.Convert(d.Type))
			if err != nil {
				return Value{}, err
			}
			name:= fl.tu.Path + "::" + d.Name
			for i:= range fl.l.seg.Data {
				if fl.l.seg.Data[i].Name == name {
					return DataValue(DataID(i), fl.l.seg.Types.Pointer(fl.tc.Convert(d.Type))), nil
				}
			}
		}
		addr, ok:= fl.locals[e.Decl]
		if !ok {
			return Value{}, fmt.Errorf("mir: address of %q before its declaration", d.Name)
		}
		return addr, nil
	case ast.ExprUnary:
		if e.UOp == ast.OpDeref {
			return fl.lowerExprRValue(e.Operand)
		}
	case ast.ExprField:
		return fl.lowerFieldAddr(e)
	case ast.ExprIndex:
		return fl.lowerIndexAddr(e)
	case ast.ExprParen:
		return fl.lowerLValueAddr(e.Operand)
	}
	return Value{}, fmt.Errorf("mir: expression kind %s is not an lvalue", e.Kind)
}

func (fl *funcLowerer) lowerFieldAddr(e *ast.Expr) (Value, error) {
	base, err:= fl.lowerLValueAddr(e.Base)
	if err != nil {
		return Value{}, err
	}
	fieldTy:= fl.tc.Convert(fl.tu.AST.Decl(e.FieldDecl).Type)
	return fl.b.ApField(fieldTy, base, fl.tu.AST.Decl(e.FieldDecl).Index), nil
}

func (fl *funcLowerer) lowerIndexAddr(e *ast.Expr) (Value, error) {
	base, err:= fl.lowerLValueAddr(e.Base)
	if err != nil {
		return Value{}, err
	}
	idx, err:= fl.lowerExprRValue(e.IndexExpr)
	if err != nil {
		return Value{}, err
	}
	elemTy:= fl.tc.Convert(e.Type)
	return fl.b.Ap(elemTy, base, idx), nil
}

func (fl *funcLowerer) lowerCast(e *ast.Expr, to TypeID) (Value, error) {
	v, err:= fl.lowerExprRValue(e.Operand)
	if err != nil {
		return Value{}, err
	}
	from:= fl.l.seg.Types.Lookup(v.Type)
	toT:= fl.l.seg.Types.Lookup(to)
	srcUnsigned:= IsUnsigned(fl.tu.AST.Types, fl.tu.AST.Expr(e.Operand).Type)

	switch {
	case v.Type == to:
		return v, nil
	case from.Kind.IsInteger() && toT.Kind.IsInteger():
		fromW, toW:= from.Width(), toT.Width()
		switch {
		case toW < fromW:
			return fl.b.Convert(InstTrunc, to, v), nil
		case toW > fromW && srcUnsigned:
			return fl.b.Convert(InstZExt, to, v), nil
		case toW > fromW:
			return fl.b.Convert(InstSExt, to, v), nil
		default:
			return fl.b.Convert(InstReint, to, v), nil
		}
	case from.Kind.IsFloat() && toT.Kind.IsFloat():
		if toT.Width() < from.Width() {
			return fl.b.Convert(InstFTrunc, to, v), nil
		}
		return fl.b.Convert(InstFExt, to, v), nil
	case from.Kind.IsInteger() && toT.Kind.IsFloat():
		if srcUnsigned {
			return fl.b.Convert(InstUi2fp, to, v), nil
		}
		return fl.b.Convert(InstSi2fp, to, v), nil
	case from.Kind.IsFloat() && toT.Kind.IsInteger():
		dstUnsigned:= IsUnsigned(fl.tu.AST.Types, e.TargetType)
		if dstUnsigned {
			return fl.b.Convert(InstFp2ui, to, v), nil
		}
		return fl.b.Convert(InstFp2si, to, v), nil
	case from.Kind == KindPointer && toT.Kind.IsInteger():
		return fl.b.Convert(InstPtr2int, to, v), nil
	case from.Kind.IsInteger() && toT.Kind == KindPointer:
		return fl.b.Convert(InstInt2ptr, to, v), nil
	case from.Kind == KindPointer && toT.Kind == KindPointer:
		return fl.b.Convert(InstReint, to, v), nil
	default:
		return fl.b.Convert(InstReint, to, v), nil
	}
}

// lowerAssign lowers `lhs = rhs` and the compound-assignment family
// (`lhs op= rhs`, desugared here to `lhs = lhs op rhs`), yielding the
// stored value.
func (fl *funcLowerer) lowerAssign(e *ast.Expr, ty TypeID) (Value, error) {
	addr, err:= fl.lowerLValueAddr(e.LHS)
	if err != nil {
		return Value{}, err
	}
	if e.Op == ast.OpAssign {
		if isAggregate(fl.l.seg, ty) {
			if err:= fl.lowerInitInto(e.RHS, addr, ty); err != nil {
				return Value{}, err
			}
			return addr, nil
		}
		v, err:= fl.lowerExprRValue(e.RHS)
		if err != nil {
			return Value{}, err
		}
		fl.b.Store(v, addr, 0)
		return v, nil
	}

	base, compound:= compoundBaseOp(e.Op)
	if !compound {
		return Value{}, fmt.Errorf("mir: unhandled assignment operator %s", e.Op)
	}
	old:= fl.b.Load(ty, addr, 0)
	rhs, err:= fl.lowerExprRValue(e.RHS)
	if err != nil {
		return Value{}, err
	}
	unsigned:= IsUnsigned(fl.tu.AST.Types, fl.tu.AST.Expr(e.LHS).Type)
	kind, err:= arithKind(base, fl.l.seg.Types.Lookup(ty), unsigned)
	if err != nil {
		return Value{}, err
	}
	updated:= fl.b.BinOp(kind, ty, old, rhs)
	fl.b.Store(updated, addr, 0)
	return updated, nil
}

func compoundBaseOp(op ast.BinaryOp) (ast.BinaryOp, bool) {
	switch op {
	case ast.OpAddAssign:
		return ast.OpAdd, true
	case ast.OpSubAssign:
		return ast.OpSub, true
	case ast.OpMulAssign:
		return ast.OpMul, true
	case ast.OpDivAssign:
		return ast.OpDiv, true
	case ast.OpModAssign:
		return ast.OpMod, true
	case ast.OpAndAssign:
		return ast.OpBitAnd, true
	case ast.OpOrAssign:
		return ast.OpBitOr, true
	case ast.OpXorAssign:
		return ast.OpBitXor, true
	case ast.OpShlAssign:
		return ast.OpShl, true
	case ast.OpShrAssign:
		return ast.OpShr, true
	}
	return 0, false
}
