package mir

// ValueKind discriminates the variant a Value holds: any operand or
// result in the MIR ("MIR value" data-model entry).
type ValueKind uint8

const (
	ValInvalid ValueKind = iota
	ValConstant
	ValData
	ValArgument
	ValBlock
	ValFunction
	ValInst
)

// Value is a lightweight reference to an MIR operand: a tagged union
// over the arena ID of the entity it names, plus that entity's type.
// It is passed by value (not by pointer) everywhere an instruction field
// or builder argument needs "some SSA value" — the arenas it points into
// (Function.Insts, Function.Slots, Function.Args, Segment.Data) are the
// sole owners of the referenced data.
type Value struct {
	Kind ValueKind
	Type TypeID

	Const Constant
	Data DataID
	Arg ArgID
	Block BlockID
	Func FuncID
	Inst InstID
}

// ConstKind discriminates the variant a Constant holds.
type ConstKind uint8

const (
	ConstInt ConstKind = iota
	ConstFP
	ConstNil
	ConstString
	ConstAggregate
)

// Constant is an immediate MIR value: 's
// "Constant{Int,FP,Nil,String,Aggregate}".
type Constant struct {
	Kind ConstKind

	Int int64
	FP float64
	String string
	// Aggregate holds one Value per element/field, for a struct or array
	// constant built entirely from other constants.
	Aggregate []Value
}

// ConstInt64 builds an integer constant Value of the given MIR type.
func ConstInt64(ty TypeID, v int64) Value {
	return Value{Kind: ValConstant, Type: ty, Const: Constant{Kind: ConstInt, Int: v}}
}

// ConstFloat64 builds a floating-point constant Value of the given MIR type.
func ConstFloat64(ty TypeID, v float64) Value {
	return Value{Kind: ValConstant, Type: ty, Const: Constant{Kind: ConstFP, FP: v}}
}

// ConstNilPtr builds a typed nil pointer constant.
func ConstNilPtr(ty TypeID) Value {
	return Value{Kind: ValConstant, Type: ty, Const: Constant{Kind: ConstNil}}
}

// DataValue builds a Value referencing module-scope Data d, typed as a
// pointer to d's element array (the address a string/aggregate literal
// decays to when used as an RValue).
func DataValue(d DataID, ptrType TypeID) Value {
	return Value{Kind: ValData, Type: ptrType, Data: d}
}

// ArgValue builds a Value referencing Function argument a.
func ArgValue(a ArgID, ty TypeID) Value {
	return Value{Kind: ValArgument, Type: ty, Arg: a}
}

// BlockValue builds a Value naming a BasicBlock (used as a branch/phi
// incoming-edge operand, never itself typed).
func BlockValue(b BlockID) Value {
	return Value{Kind: ValBlock, Type: NoTypeID, Block: b}
}

// FuncValue builds a Value naming a whole Function (a call target or a
// function-pointer constant).
func FuncValue(f FuncID, ty TypeID) Value {
	return Value{Kind: ValFunction, Type: ty, Func: f}
}

// InstValue builds a Value referencing instruction i's own result.
func InstValue(i InstID, ty TypeID) Value {
	return Value{Kind: ValInst, Type: ty, Inst: i}
}

// IsValid reports whether v names something (as opposed to a Value
// zero value used as a "no operand" placeholder).
func (v Value) IsValid() bool { return v.Kind != ValInvalid }
