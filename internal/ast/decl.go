package ast

import (
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/types"
)

// DeclKind discriminates the variant a Decl holds.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclFunction
	DeclVar
	DeclParam
	DeclField
	DeclEnumVariant
	DeclEnum
	DeclStruct
	DeclTemplateParam
	DeclTemplateFunction
	DeclTemplateStruct
	DeclFunctionSpecialization
	DeclStructSpecialization
	DeclUse
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunction:
		return "function"
	case DeclVar:
		return "var"
	case DeclParam:
		return "param"
	case DeclField:
		return "field"
	case DeclEnumVariant:
		return "enum-variant"
	case DeclEnum:
		return "enum"
	case DeclStruct:
		return "struct"
	case DeclTemplateParam:
		return "template-param"
	case DeclTemplateFunction:
		return "template-function"
	case DeclTemplateStruct:
		return "template-struct"
	case DeclFunctionSpecialization:
		return "function-specialization"
	case DeclStructSpecialization:
		return "struct-specialization"
	case DeclUse:
		return "use"
	default:
		return "invalid"
	}
}

// Decl is a named entity bound in a scope: a tagged union over every
// declaration variant the language has.
type Decl struct {
	Kind DeclKind
	Name string
	Loc source.Location
	Runes Runes
	Scope ScopeID // the scope this decl was declared into

	Type types.TypeID // the decl's own type (function type, var type, field type,...)

	// DeclFunction / DeclTemplateFunction / DeclFunctionSpecialization
	Params []DeclID // ordered Param children
	Ret types.TypeID
	Body StmtID // NoStmtID for a declaration-only function
	BodyScope ScopeID
	IsMethod bool // implicit self receiver
	Receiver types.TypeID // the struct type, when IsMethod

	// DeclTemplateFunction / DeclTemplateStruct
	TemplateParams []DeclID
	Specializations []DeclID // cache of already-monomorphised specializations

	// DeclVar / DeclParam
	Mutable bool // `mut` vs `fix`
	Init ExprID // NoExprID if no initializer

	// DeclParam / DeclField / DeclEnumVariant / DeclTemplateParam
	Index int

	// DeclEnumVariant
	Value int64

	// DeclEnum
	Underlying types.TypeID
	Variants []DeclID

	// DeclStruct / DeclTemplateStruct / DeclStructSpecialization
	Fields []DeclID

	// DeclTemplateParam
	Owner DeclID

	// DeclFunctionSpecialization / DeclStructSpecialization
	Template DeclID
	Args []types.TypeID // concrete type args, positional

	// DeclUse
	Path string
	Alias string // "" for the flat-import form
	Listed []string // named-import list; empty for flat/aliased forms
}
