package ast

import (
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/types"
)

// ExprKind discriminates the variant an Expr holds.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprLiteralBool
	ExprLiteralInt
	ExprLiteralFloat
	ExprLiteralChar
	ExprLiteralString
	ExprLiteralNil
	ExprRef
	ExprBinary
	ExprUnary
	ExprCast
	ExprParen
	ExprField
	ExprIndex
	ExprCall
	ExprMethodCall
	ExprStructInit
	ExprSizeof
	ExprTypeSpec
	ExprUseSpec
)

func (k ExprKind) String() string {
	switch k {
	case ExprLiteralBool:
		return "literal-bool"
	case ExprLiteralInt:
		return "literal-int"
	case ExprLiteralFloat:
		return "literal-float"
	case ExprLiteralChar:
		return "literal-char"
	case ExprLiteralString:
		return "literal-string"
	case ExprLiteralNil:
		return "literal-nil"
	case ExprRef:
		return "ref"
	case ExprBinary:
		return "binary"
	case ExprUnary:
		return "unary"
	case ExprCast:
		return "cast"
	case ExprParen:
		return "paren"
	case ExprField:
		return "field"
	case ExprIndex:
		return "index"
	case ExprCall:
		return "call"
	case ExprMethodCall:
		return "method-call"
	case ExprStructInit:
		return "struct-init"
	case ExprSizeof:
		return "sizeof"
	case ExprTypeSpec:
		return "type-spec"
	case ExprUseSpec:
		return "use-spec"
	default:
		return "invalid"
	}
}

// FieldInit is one `name: value` pair inside a struct initialiser.
type FieldInit struct {
	Name string
	Value ExprID
}

// Expr is a tagged union over every expression shape the language has.
// Every expression carries a Type (resolved by Sema) and an LValue flag.
type Expr struct {
	Kind ExprKind
	Loc source.Location
	Type types.TypeID
	LValue bool

	// literals
	BoolVal bool
	IntVal int64
	FloatVal float64
	CharVal byte
	StringVal string

	// ExprRef
	Name string
	Decl DeclID // resolved by name resolution; NoDeclID until then

	// ExprBinary
	Op BinaryOp
	LHS ExprID
	RHS ExprID

	// ExprUnary / ExprCast / ExprParen / ExprSizeof (Operand) share Operand
	UOp UnaryOp
	Operand ExprID

	// ExprCast / ExprSizeof
	TargetType types.TypeID

	// ExprField / ExprIndex / ExprMethodCall share Base
	Base ExprID
	Field string
	FieldDecl DeclID
	IndexExpr ExprID

	// ExprCall / ExprMethodCall
	Callee ExprID // ExprCall: the function-ref expression
	Method string // ExprMethodCall only
	Args []ExprID
	ResolvedFn DeclID

	// ExprStructInit
	StructName string
	StructType types.TypeID
	FieldInits []FieldInit

	// ExprTypeSpec: EnumType::Variant
	EnumName string
	VariantName string

	// ExprUseSpec: UseName::Sym
	UseName string
	Sym string
}
