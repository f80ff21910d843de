// Package types implements the per-unit type context: interning,
// structural deduplication, and deferred-type resolution.
package types

// Kind discriminates the variant a Type value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindPrimitive
	KindArray
	KindPointer
	KindFunction
	KindEnum
	KindStruct
	KindTemplateParam
	KindTemplateStruct
	KindDependentTemplateStruct
	KindDeferred
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	case KindFunction:
		return "function"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindTemplateParam:
		return "template-param"
	case KindTemplateStruct:
		return "template-struct"
	case KindDependentTemplateStruct:
		return "dependent-template-struct"
	case KindDeferred:
		return "deferred"
	default:
		return "invalid"
	}
}

// Prim enumerates the primitive kinds: void, bool, char, i8..i64, u8..u64, f32, f64.
type Prim uint8

const (
	Void Prim = iota
	Bool
	Char
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
)

var primNames = map[Prim]string{
	Void: "void", Bool: "bool", Char: "char",
	I8: "i8", I16: "i16", I32: "i32", I64: "i64",
	U8: "u8", U16: "u16", U32: "u32", U64: "u64",
	F32: "f32", F64: "f64",
}

func (p Prim) String() string {
	if s, ok:= primNames[p]; ok {
		return s
	}
	return "invalid"
}

// IsInteger reports whether p is one of the signed or unsigned integer widths.
func (p Prim) IsInteger() bool {
	switch p {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	default:
		return false
	}
}

// IsSigned reports whether p is a signed integer width.
func (p Prim) IsSigned() bool {
	switch p {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether p is a floating-point width.
func (p Prim) IsFloat() bool {
	return p == F32 || p == F64
}
