package mir

import (
	"strconv"
	"strings"
)

// Kind discriminates the variant an MIR Type holds. Strictly structural,
// per: "i1, i8, i16, i32, i64, f32, f64, void, array(T,N),
// ptr(T), fn(params, ret), struct(name, members)". There is no enum,
// template, or deferred variant here — Sema has already resolved those
// away by the time lowering runs.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindVoid
	KindI1
	KindI8
	KindI16
	KindI32
	KindI64
	KindF32
	KindF64
	KindArray
	KindPointer
	KindFunction
	KindStruct
)

func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindI1:
		return "i1"
	case KindI8:
		return "i8"
	case KindI16:
		return "i16"
	case KindI32:
		return "i32"
	case KindI64:
		return "i64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindArray:
		return "array"
	case KindPointer:
		return "pointer"
	case KindFunction:
		return "function"
	case KindStruct:
		return "struct"
	default:
		return "invalid"
	}
}

// IsInteger reports whether k is one of the fixed-width integer kinds
// (i1 included, since it behaves as a one-bit integer for icmp results).
func (k Kind) IsInteger() bool {
	switch k {
	case KindI1, KindI8, KindI16, KindI32, KindI64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether k is a floating-point kind.
func (k Kind) IsFloat() bool { return k == KindF32 || k == KindF64 }

// Type is a tagged union over every MIR type variant, mirroring the
// Kind-plus-fields idiom internal/types.Type already uses.
type Type struct {
	Kind Kind

	// KindArray
	Elem TypeID
	Size uint64

	// KindPointer
	Pointee TypeID

	// KindFunction
	Params []TypeID
	Return TypeID

	// KindStruct
	Name string
	Members []TypeID
}

// Width returns the bit width of an integer or float kind, used for
// trunc/sext/zext/ftrunc/fext selection during cast lowering.
func (t Type) Width() int {
	switch t.Kind {
	case KindI1:
		return 1
	case KindI8:
		return 8
	case KindI16:
		return 16
	case KindI32, KindF32:
		return 32
	case KindI64, KindF64:
		return 64
	default:
		return 0
	}
}

// Context interns and deduplicates MIR Type values, one per Segment.
type Context struct {
	types []Type
	index map[string]TypeID

	void, i1, i8, i16, i32, i64, f32, f64 TypeID
}

// NewContext constructs a Context with every primitive kind pre-interned.
func NewContext() *Context {
	c:= &Context{index: make(map[string]TypeID, 32)}
	c.void = c.intern(Type{Kind: KindVoid})
	c.i1 = c.intern(Type{Kind: KindI1})
	c.i8 = c.intern(Type{Kind: KindI8})
	c.i16 = c.intern(Type{Kind: KindI16})
	c.i32 = c.intern(Type{Kind: KindI32})
	c.i64 = c.intern(Type{Kind: KindI64})
	c.f32 = c.intern(Type{Kind: KindF32})
	c.f64 = c.intern(Type{Kind: KindF64})
	return c
}

func (c *Context) Void() TypeID { return c.void }
func (c *Context) I1() TypeID { return c.i1 }
func (c *Context) I8() TypeID { return c.i8 }
func (c *Context) I16() TypeID { return c.i16 }
func (c *Context) I32() TypeID { return c.i32 }
func (c *Context) I64() TypeID { return c.i64 }
func (c *Context) F32() TypeID { return c.f32 }
func (c *Context) F64() TypeID { return c.f64 }

func (c *Context) intern(t Type) TypeID {
	key:= keyOf(t)
	if id, ok:= c.index[key]; ok {
		return id
	}
	id:= TypeID(len(c.types))
	c.types = append(c.types, t)
	c.index[key] = id
	return id
}

// Array interns an array(elem, size) type.
func (c *Context) Array(elem TypeID, size uint64) TypeID {
	return c.intern(Type{Kind: KindArray, Elem: elem, Size: size})
}

// Pointer interns a ptr(pointee) type.
func (c *Context) Pointer(pointee TypeID) TypeID {
	return c.intern(Type{Kind: KindPointer, Pointee: pointee})
}

// Function interns an fn(params, ret) type.
func (c *Context) Function(params []TypeID, ret TypeID) TypeID {
	return c.intern(Type{Kind: KindFunction, Params: params, Return: ret})
}

// Struct interns a struct(name, members) type.
func (c *Context) Struct(name string, members []TypeID) TypeID {
	return c.intern(Type{Kind: KindStruct, Name: name, Members: members})
}

// SetStructMembers rewrites the Members of an already-interned struct
// type in place. Struct identity is by Name alone (see keyOf), so a
// second Struct(name,...) call would not update a previously-reserved
// handle's Members; this lets the type converter reserve a struct's
// TypeID before resolving its fields, so a self-referential field (a
// pointer back to the enclosing struct) resolves to the same ID instead
// of recursing forever.
func (c *Context) SetStructMembers(id TypeID, members []TypeID) {
	t:= &c.types[id]
	if t.Kind == KindStruct {
		t.Members = members
	}
}

// Lookup returns the Type for id.
func (c *Context) Lookup(id TypeID) Type {
	if id == NoTypeID || int(id) >= len(c.types) {
		return Type{}
	}
	return c.types[id]
}

// keyOf builds the structural-equality key used to intern a Type value,
// the same delimited-string hash-consing idiom internal/types.keyOf uses.
func keyOf(t Type) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(t.Kind)))
	b.WriteByte(':')
	switch t.Kind {
	case KindArray:
		b.WriteString(strconv.Itoa(int(t.Elem)))
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(t.Size, 10))
	case KindPointer:
		b.WriteString(strconv.Itoa(int(t.Pointee)))
	case KindFunction:
		for i, p:= range t.Params {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(strconv.Itoa(int(p)))
		}
		b.WriteString("->")
		b.WriteString(strconv.Itoa(int(t.Return)))
	case KindStruct:
		b.WriteString(t.Name)
	}
	return b.String()
}
