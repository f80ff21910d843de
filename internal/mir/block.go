package mir

// Block is a basic block: an ordered instruction list owned by one
// Function, plus predecessor/successor links maintained by the builder
// as branches are emitted ("MIR basic block").
type Block struct {
	ID BlockID
	Name string // mnemonic ("entry", "if.then",...) when NamedMIR is set
	Func FuncID
	Insts []InstID

	Preds []BlockID
	Succs []BlockID
}

// HasTerminator reports whether b's last instruction is brif/jmp/ret.
// A freshly-pushed block with no instructions yet has no terminator.
func (b *Block) HasTerminator(f *Function) bool {
	if len(b.Insts) == 0 {
		return false
	}
	last:= f.Inst(b.Insts[len(b.Insts)-1])
	return last.Kind.IsTerminator()
}
