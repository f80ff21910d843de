package mir

import (
	"encoding/binary"
	"math"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/types"
)

// constFold folds a root-scope global's initializer into its Data's
// little-endian backing bytes (the x86_64 target fixes).
// Sema already requires such an initializer to be a constant expression;
// this only recognizes the literal forms directly, which covers every
// global initializer that is a plain literal. Arithmetic in an
// initializer is not folded: constFold reports false for it and the
// caller zero-fills the Data instead.
func constFold(u *ast.Unit, id ast.ExprID) ([]byte, bool) {
	if id == ast.NoExprID {
		return nil, false
	}
	e:= u.Expr(id)
	switch e.Kind {
	case ast.ExprParen:
		return constFold(u, e.Operand)
	case ast.ExprLiteralBool:
		if e.BoolVal {
			return []byte{1}, true
		}
		return []byte{0}, true
	case ast.ExprLiteralChar:
		return []byte{e.CharVal}, true
	case ast.ExprLiteralInt:
		return encodeIntWidth(e.IntVal, widthOf(u, e.Type)), true
	case ast.ExprLiteralFloat:
		return encodeFloatWidth(e.FloatVal, widthOf(u, e.Type)), true
	case ast.ExprLiteralNil:
		return make([]byte, 8), true
	case ast.ExprUnary:
		if e.UOp == ast.OpNeg {
			inner, ok:= constFold(u, e.Operand)
			if !ok {
				return nil, false
			}
			return negateBytes(inner, u.Expr(e.Operand).Kind == ast.ExprLiteralFloat), true
		}
	}
	return nil, false
}

func widthOf(u *ast.Unit, ty types.TypeID) int {
	t, ok:= u.Types.Lookup(ty)
	if !ok || t.Kind != types.KindPrimitive {
		return 8
	}
	switch t.Prim {
	case types.I8, types.U8, types.Char, types.Bool:
		return 1
	case types.I16, types.U16:
		return 2
	case types.I32, types.U32, types.F32:
		return 4
	default:
		return 8
	}
}

func encodeIntWidth(v int64, width int) []byte {
	buf:= make([]byte, width)
	switch width {
	case 1:
		buf[0] = byte(v)
	case 2:
		binary.LittleEndian.PutUint16(buf, uint16(v))
	case 4:
		binary.LittleEndian.PutUint32(buf, uint32(v))
	default:
		binary.LittleEndian.PutUint64(buf, uint64(v))
	}
	return buf
}

func encodeFloatWidth(v float64, width int) []byte {
	buf:= make([]byte, width)
	if width == 4 {
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	} else {
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	}
	return buf
}

func negateBytes(b []byte, isFloat bool) []byte {
	switch len(b) {
	case 4:
		if isFloat {
			return encodeFloatWidth(float64(-math.Float32frombits(binary.LittleEndian.Uint32(b))), 4)
		}
		return encodeIntWidth(-int64(int32(binary.LittleEndian.Uint32(b))), 4)
	case 8:
		if isFloat {
			return encodeFloatWidth(-math.Float64frombits(binary.LittleEndian.Uint64(b)), 8)
		}
		return encodeIntWidth(-int64(binary.LittleEndian.Uint64(b)), 8)
	case 2:
		return encodeIntWidth(-int64(int16(binary.LittleEndian.Uint16(b))), 2)
	default:
		return encodeIntWidth(-int64(int8(b[0])), 1)
	}
}
