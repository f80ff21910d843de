package mir

// InstKind enumerates every MIR instruction mnemonic from
// Each instruction is itself an SSA value (its InstID doubles as the
// handle other instructions reference as an operand), so Inst carries
// its own result Type directly rather than through a separate node.
type InstKind uint8

const (
	InstInvalid InstKind = iota

	// Integer arithmetic and bitwise.
	InstAdd
	InstSub
	InstSMul
	InstUMul
	InstSDiv
	InstUDiv
	InstSRem
	InstURem
	InstAnd
	InstOr
	InstXor
	InstShl
	InstAShr
	InstLShr

	// Float arithmetic.
	InstFAdd
	InstFSub
	InstFMul
	InstFDiv
	InstFNeg

	// Unary.
	InstNot
	InstNeg

	// Integer comparisons.
	InstICmpEq
	InstICmpNe
	InstICmpSlt
	InstICmpUlt
	InstICmpSle
	InstICmpUle
	InstICmpSgt
	InstICmpUgt
	InstICmpSge
	InstICmpUge

	// Float comparisons (ordered, per the oeq/one/olt/ole/ogt/oge set).
	InstFCmpOeq
	InstFCmpOne
	InstFCmpOlt
	InstFCmpOle
	InstFCmpOgt
	InstFCmpOge

	// Pointer comparisons.
	InstPCmpEq
	InstPCmpNe
	InstPCmpLt
	InstPCmpLe
	InstPCmpGt
	InstPCmpGe

	// Conversions.
	InstTrunc
	InstSExt
	InstZExt
	InstFTrunc
	InstFExt
	InstSi2fp
	InstUi2fp
	InstFp2si
	InstFp2ui
	InstReint
	InstPtr2int
	InstInt2ptr

	// Memory and control.
	InstSlot
	InstStore
	InstLoad
	InstCpy
	InstAp
	InstBrif
	InstJmp
	InstRet
	InstCall
	InstSyscall
	InstPhi
)

var instNames = map[InstKind]string{
	InstAdd: "add", InstSub: "sub", InstSMul: "smul", InstUMul: "umul",
	InstSDiv: "sdiv", InstUDiv: "udiv", InstSRem: "srem", InstURem: "urem",
	InstAnd: "and", InstOr: "or", InstXor: "xor",
	InstShl: "shl", InstAShr: "ashr", InstLShr: "lshr",
	InstFAdd: "fadd", InstFSub: "fsub", InstFMul: "fmul", InstFDiv: "fdiv", InstFNeg: "fneg",
	InstNot: "not", InstNeg: "neg",
	InstICmpEq: "icmp_eq", InstICmpNe: "icmp_ne", InstICmpSlt: "icmp_slt", InstICmpUlt: "icmp_ult",
	InstICmpSle: "icmp_sle", InstICmpUle: "icmp_ule", InstICmpSgt: "icmp_sgt", InstICmpUgt: "icmp_ugt",
	InstICmpSge: "icmp_sge", InstICmpUge: "icmp_uge",
	InstFCmpOeq: "fcmp_oeq", InstFCmpOne: "fcmp_one", InstFCmpOlt: "fcmp_olt",
	InstFCmpOle: "fcmp_ole", InstFCmpOgt: "fcmp_ogt", InstFCmpOge: "fcmp_oge",
	InstPCmpEq: "pcmp_eq", InstPCmpNe: "pcmp_ne", InstPCmpLt: "pcmp_lt",
	InstPCmpLe: "pcmp_le", InstPCmpGt: "pcmp_gt", InstPCmpGe: "pcmp_ge",
	InstTrunc: "trunc", InstSExt: "sext", InstZExt: "zext",
	InstFTrunc: "ftrunc", InstFExt: "fext",
	InstSi2fp: "si2fp", InstUi2fp: "ui2fp", InstFp2si: "fp2si", InstFp2ui: "fp2ui",
	InstReint: "reint", InstPtr2int: "ptr2int", InstInt2ptr: "int2ptr",
	InstSlot: "slot", InstStore: "store", InstLoad: "load", InstCpy: "cpy", InstAp: "ap",
	InstBrif: "brif", InstJmp: "jmp", InstRet: "ret", InstCall: "call",
	InstSyscall: "syscall", InstPhi: "phi",
}

func (k InstKind) String() string {
	if s, ok:= instNames[k]; ok {
		return s
	}
	return "invalid"
}

// IsTerminator reports whether k ends a basic block (
// "brif, jmp, ret" are the only terminators).
func (k InstKind) IsTerminator() bool {
	return k == InstBrif || k == InstJmp || k == InstRet
}

// PhiEdge is one `[val, block]` incoming edge of a phi instruction.
type PhiEdge struct {
	Value Value
	Block BlockID
}

// Inst is a tagged union over every MIR instruction shape. It is itself
// the SSA value its result names: any other instruction's operand that
// references "this instruction's result" holds a Value{Kind: ValInst,
// Inst: this ID}. Uses accumulates the InstIDs of every instruction that
// takes this one as an operand, the back-link requires of
// every non-constant MIR value.
type Inst struct {
	ID InstID
	Kind InstKind
	Type TypeID // result type; KindVoid for store/brif/jmp/ret
	Name string // mnemonic name of a named local's slot ("$x"); "" for every other instruction
	Block BlockID
	Uses []InstID

	// Binary arithmetic/bitwise/comparison ops share LHS/RHS.
	LHS Value
	RHS Value

	// Unary ops (not, neg, fneg) and every conversion share Operand.
	Operand Value

	// InstSlot: the allocated (pointee) type; Type is ptr(AllocType).
	AllocType TypeID
	SlotName string // the declared local's name, for $-sigil printing

	// InstStore
	StoreValue Value
	StoreDest Value
	Offset int64 // InstStore / InstLoad byte offset

	// InstLoad
	LoadSrc Value

	// InstCpy
	CpySize Value
	CpySrc Value
	CpySrcAlign uint32
	CpyDest Value
	CpyDestAlign uint32

	// InstAp: base pointer plus either a dynamic Index (array) or a
	// constant FieldIndex (struct field), mutually exclusive.
	Base Value
	Index Value
	IsField bool
	FieldIndex int

	// InstBrif
	Cond Value
	True BlockID
	False BlockID

	// InstJmp
	Target BlockID

	// InstRet
	HasValue bool
	RetValue Value

	// InstCall / InstSyscall
	Callee Value
	Args []Value

	// InstPhi
	Incoming []PhiEdge
}
