package types

import "github.com/nwmarino/meddle/internal/source"

// TypeID identifies an interned Type within a TypeContext.
type TypeID int32

// NoTypeID indicates the absence of a type.
const NoTypeID TypeID = -1

// Type is a tagged union over every type variant the language has.
// Only the fields relevant to Kind are meaningful; this mirrors the
// Kind-enum-plus-embedded-fields idiom used throughout this codebase's
// node representations rather than an interface-per-variant hierarchy.
type Type struct {
	Kind Kind

	// KindPrimitive
	Prim Prim

	// KindArray
	Elem TypeID
	Size uint64

	// KindPointer
	Pointee TypeID

	// KindFunction
	Params []TypeID
	Return TypeID

	// KindEnum / KindStruct: identity is by Name within a unit.
	Name string
	Fields []TypeID // KindStruct: ordered field types
	Underlying TypeID // KindEnum: underlying integer type
	Variants []string // KindEnum: ordered variant names

	// KindTemplateParam
	Owner string // declared name of the owning template decl
	Index int

	// KindTemplateStruct / KindDependentTemplateStruct
	Template string
	Args []TypeID

	// KindDeferred
	DeferredName string
	Loc source.Location
	Resolved TypeID // filled in by sanitate; NoTypeID until then
}
