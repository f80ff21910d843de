package mir

// Builder accumulates instructions into the current Function/Block pair,
// assigning SSA IDs and maintaining every value's Uses back-link as each
// instruction is emitted. One Builder lowers one Function at a time;
// lower.go constructs a fresh Builder per function ('s
// "per-Segment and per-Function counters", per the design note
// replacing the original's global SSA/name counters).
type Builder struct {
	Seg *Segment
	Fn *Function
	Named bool // NamedMIR: blocks/slots get mnemonic names

	block BlockID
	mnemonic map[string]int // per-function counter, for disambiguating block names
}

// NewBuilder constructs a Builder lowering into fn within seg.
func NewBuilder(seg *Segment, fn *Function, named bool) *Builder {
	return &Builder{Seg: seg, Fn: fn, Named: named, mnemonic: make(map[string]int)}
}

// NewBlock pushes a fresh block onto the current function and returns
// its ID, without making it current. When Named is set, name carries a
// mnemonic suffix (e.g. "if.then") disambiguated by a per-name counter
// when the same mnemonic recurs ("Basic-block naming").
func (b *Builder) NewBlock(name string) BlockID {
	id:= BlockID(len(b.Fn.Blocks))
	blockName:= ""
	if b.Named {
		blockName = b.disambiguate(name)
	}
	b.Fn.Blocks = append(b.Fn.Blocks, Block{ID: id, Name: blockName, Func: b.Fn.ID})
	return id
}

func (b *Builder) disambiguate(name string) string {
	n:= b.mnemonic[name]
	b.mnemonic[name] = n + 1
	if n == 0 {
		return name
	}
	return name + "." + itoa(n)
}

// SetBlock makes id the block subsequent Emit calls append to.
func (b *Builder) SetBlock(id BlockID) { b.block = id }

// Current returns the block currently receiving emitted instructions.
func (b *Builder) Current() BlockID { return b.block }

// Terminated reports whether the current block already ends in a
// terminator (brif/jmp/ret); callers use this to skip an unreachable
// fallthrough jump, per the if/else and until lowering rules.
func (b *Builder) Terminated() bool {
	return b.Fn.Block(b.block).HasTerminator(b.Fn)
}

// emit appends inst to the current block, assigning its ID and result
// type, and records a Uses back-link on every operand it references.
func (b *Builder) emit(inst Inst) InstID {
	id:= InstID(len(b.Fn.insts))
	inst.ID = id
	inst.Block = b.block
	b.Fn.insts = append(b.Fn.insts, inst)
	blk:= b.Fn.Block(b.block)
	blk.Insts = append(blk.Insts, id)
	b.recordUses(id, &b.Fn.insts[id])
	return id
}

func (b *Builder) recordUses(user InstID, inst *Inst) {
	use:= func(v Value) {
		switch v.Kind {
		case ValInst:
			op:= b.Fn.Inst(v.Inst)
			op.Uses = append(op.Uses, user)
		case ValArgument:
			arg:= b.Fn.Arg(v.Arg)
			arg.Uses = append(arg.Uses, user)
		case ValFunction:
			if fn:= b.Seg.Func(v.Func); fn != nil {
				fn.Uses = append(fn.Uses, user)
			}
		case ValData:
			if int(v.Data) < len(b.Seg.Data) {
				b.Seg.Data[v.Data].Uses = append(b.Seg.Data[v.Data].Uses, user)
			}
		}
	}
	use(inst.LHS)
	use(inst.RHS)
	use(inst.Operand)
	use(inst.StoreValue)
	use(inst.StoreDest)
	use(inst.LoadSrc)
	use(inst.CpySize)
	use(inst.CpySrc)
	use(inst.CpyDest)
	use(inst.Base)
	use(inst.Index)
	use(inst.Cond)
	use(inst.Callee)
	use(inst.RetValue)
	for _, a:= range inst.Args {
		use(a)
	}
	for _, in:= range inst.Incoming {
		use(in.Value)
	}
}

// --- Slots and scalar memory ops ---

// Slot emits `slot T`, a named function-scope stack allocation, and
// registers it in Fn.Slots under name for later by-name lookup.
func (b *Builder) Slot(name string, allocType TypeID) Value {
	mnemonic:= ""
	slotName:= ""
	if b.Named {
		slotName = name
		mnemonic = "$" + name
	}
	id:= b.emit(Inst{Kind: InstSlot, Type: b.Seg.Types.Pointer(allocType), AllocType: allocType, SlotName: slotName, Name: mnemonic})
	b.Fn.Slots[name] = id
	return InstValue(id, b.Seg.Types.Pointer(allocType))
}

// Store emits `store value -> dest [+ offset]`.
func (b *Builder) Store(value, dest Value, offset int64) {
	b.emit(Inst{Kind: InstStore, Type: b.Seg.Types.Void(), StoreValue: value, StoreDest: dest, Offset: offset})
}

// Load emits `load T, src [+ offset]`.
func (b *Builder) Load(ty TypeID, src Value, offset int64) Value {
	id:= b.emit(Inst{Kind: InstLoad, Type: ty, LoadSrc: src, Offset: offset})
	return InstValue(id, ty)
}

// Cpy emits `cpy size, src align -> dest align` (memcpy).
func (b *Builder) Cpy(size, src Value, srcAlign uint32, dest Value, destAlign uint32) {
	b.emit(Inst{
		Kind: InstCpy, Type: b.Seg.Types.Void(),
		CpySize: size, CpySrc: src, CpySrcAlign: srcAlign, CpyDest: dest, CpyDestAlign: destAlign,
	})
}

// Ap emits `ap T, base, index` for an array element (dynamic index).
func (b *Builder) Ap(elemType TypeID, base, index Value) Value {
	ptrTy:= b.Seg.Types.Pointer(elemType)
	id:= b.emit(Inst{Kind: InstAp, Type: ptrTy, Base: base, Index: index})
	return InstValue(id, ptrTy)
}

// ApField emits `ap T, base, #idx` for a struct field (constant index).
func (b *Builder) ApField(fieldType TypeID, base Value, fieldIdx int) Value {
	ptrTy:= b.Seg.Types.Pointer(fieldType)
	id:= b.emit(Inst{Kind: InstAp, Type: ptrTy, Base: base, IsField: true, FieldIndex: fieldIdx})
	return InstValue(id, ptrTy)
}

// --- Arithmetic, bitwise, comparisons ---

// BinOp emits a binary arithmetic/bitwise instruction of kind, typed ty.
func (b *Builder) BinOp(kind InstKind, ty TypeID, lhs, rhs Value) Value {
	id:= b.emit(Inst{Kind: kind, Type: ty, LHS: lhs, RHS: rhs})
	return InstValue(id, ty)
}

// Cmp emits a comparison instruction of kind, always typed i1.
func (b *Builder) Cmp(kind InstKind, lhs, rhs Value) Value {
	id:= b.emit(Inst{Kind: kind, Type: b.Seg.Types.I1(), LHS: lhs, RHS: rhs})
	return InstValue(id, b.Seg.Types.I1())
}

// Unary emits not/neg/fneg.
func (b *Builder) Unary(kind InstKind, ty TypeID, operand Value) Value {
	id:= b.emit(Inst{Kind: kind, Type: ty, Operand: operand})
	return InstValue(id, ty)
}

// Convert emits a conversion instruction (trunc/sext/zext/ftrunc/fext/
// si2fp/ui2fp/fp2si/fp2ui/reint/ptr2int/int2ptr) producing type to.
func (b *Builder) Convert(kind InstKind, to TypeID, operand Value) Value {
	id:= b.emit(Inst{Kind: kind, Type: to, Operand: operand})
	return InstValue(id, to)
}

// --- Calls ---

// Call emits `call fn, args`, typed ret (which may be void).
func (b *Builder) Call(callee Value, args []Value, ret TypeID) Value {
	id:= b.emit(Inst{Kind: InstCall, Type: ret, Callee: callee, Args: args})
	return InstValue(id, ret)
}

// Syscall emits `syscall num, args`, always typed i64 per the
// System V x86-64 return-register convention.
func (b *Builder) Syscall(num Value, args []Value) Value {
	id:= b.emit(Inst{Kind: InstSyscall, Type: b.Seg.Types.I64(), Callee: num, Args: args})
	return InstValue(id, b.Seg.Types.I64())
}

// --- Terminators ---

// Brif emits `brif cond, true, false` and wires the block's successor
// links for both targets.
func (b *Builder) Brif(cond Value, trueBlock, falseBlock BlockID) {
	b.emit(Inst{Kind: InstBrif, Type: b.Seg.Types.Void(), Cond: cond, True: trueBlock, False: falseBlock})
	b.link(b.block, trueBlock)
	b.link(b.block, falseBlock)
}

// Jmp emits `jmp target` and wires the block's successor link.
func (b *Builder) Jmp(target BlockID) {
	b.emit(Inst{Kind: InstJmp, Type: b.Seg.Types.Void(), Target: target})
	b.link(b.block, target)
}

// Ret emits a bare `ret` or `ret value`.
func (b *Builder) Ret(value Value, hasValue bool) {
	b.emit(Inst{Kind: InstRet, Type: b.Seg.Types.Void(), RetValue: value, HasValue: hasValue})
}

func (b *Builder) link(from, to BlockID) {
	fromBlk:= b.Fn.Block(from)
	toBlk:= b.Fn.Block(to)
	fromBlk.Succs = append(fromBlk.Succs, to)
	toBlk.Preds = append(toBlk.Preds, from)
}

// --- Phi ---

// Phi emits `phi T [val, block]...`.
func (b *Builder) Phi(ty TypeID, incoming []PhiEdge) Value {
	id:= b.emit(Inst{Kind: InstPhi, Type: ty, Incoming: incoming})
	return InstValue(id, ty)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg:= n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i:= len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
