package mir

import (
	"fmt"
	"strconv"
	"strings"
)

// Print renders seg as the textual MIR listing describes: a
// target line, struct definitions, module-scope data, then functions in
// declaration order. This is the format the golden-output tests in §8
// compare against.
func Print(seg *Segment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "target:: %s %s %s\n", seg.Arch, seg.OS, seg.ABI)

	for _, id:= range seg.Structs {
		b.WriteByte('\n')
		printStruct(&b, seg, id)
	}

	for _, d:= range seg.Data {
		b.WriteByte('\n')
		printData(&b, seg, d)
	}

	for _, fn:= range seg.Funcs {
		b.WriteByte('\n')
		printFunc(&b, seg, fn)
	}

	return b.String()
}

func printStruct(b *strings.Builder, seg *Segment, id TypeID) {
	t:= seg.Types.Lookup(id)
	fmt.Fprintf(b, "struct %s {\n", t.Name)
	for i, m:= range t.Members {
		fmt.Fprintf(b, " %d: %s,\n", i, typeString(seg, m))
	}
	b.WriteString("}\n")
}

func printData(b *strings.Builder, seg *Segment, d Data) {
	linkage:= ""
	if d.Linkage == LinkageInternal {
		linkage = "readonly "
	}
	fmt.Fprintf(b, "%sdata @%s: %s = %s\n", linkage, d.Name, typeString(seg, d.Type), quoteBytes(d.Bytes))
}

func printFunc(b *strings.Builder, seg *Segment, fn *Function) {
	args:= make([]string, len(fn.Args))
	for i, a:= range fn.Args {
		attr:= ""
		switch a.Attr {
		case AttrARet:
			attr = "aret "
		case AttrAArg:
			attr = "aarg "
		}
		args[i] = fmt.Sprintf("%s%%%s: %s", attr, a.Name, typeString(seg, a.Type))
	}

	fnType:= seg.Types.Lookup(fn.Type)
	linkage:= ""
	if fn.Linkage == LinkageExternal {
		linkage = "extern "
	}
	fmt.Fprintf(b, "%sfn %s(%s) %s {\n", linkage, fn.Name, strings.Join(args, ", "), typeString(seg, fnType.Return))

	names:= assignNames(seg, fn)
	for bi:= range fn.Blocks {
		blk:= &fn.Blocks[bi]
		fmt.Fprintf(b, "%s:\n", blockLabel(fn, blk.ID))
		for _, iid:= range blk.Insts {
			inst:= fn.Inst(iid)
			fmt.Fprintf(b, " %s\n", instString(seg, fn, names, inst))
		}
	}

	b.WriteString("}\n")
}

// assignNames builds the print-time SSA numbering describes
// an instruction with a Name already set (a `slot`, carrying its "$local"
// mnemonic) keeps it; every other result-producing instruction gets a
// sequential "%N" assigned in emission order.
func assignNames(seg *Segment, fn *Function) map[InstID]string {
	names:= make(map[InstID]string, len(fn.insts))
	voidTy:= seg.Types.Void()
	n:= 0
	for i:= range fn.insts {
		inst:= &fn.insts[i]
		if inst.Name != "" {
			names[inst.ID] = inst.Name
			continue
		}
		if inst.Type == NoTypeID || inst.Type == voidTy {
			continue
		}
		names[inst.ID] = "%" + strconv.Itoa(n)
		n++
	}
	return names
}

func blockLabel(fn *Function, id BlockID) string {
	blk:= fn.Block(id)
	if blk.Name != "" {
		return blk.Name
	}
	return "bb" + strconv.Itoa(int(id))
}

func instString(seg *Segment, fn *Function, names map[InstID]string, inst *Inst) string {
	dst:= names[inst.ID]
	ty:= typeString(seg, inst.Type)
	bare:= func(v Value) string { return valueString(seg, fn, names, v) }
	typed:= func(v Value) string { return typeString(seg, v.Type) + " " + bare(v) }

	switch inst.Kind {
	case InstSlot:
		return fmt.Sprintf("%s = slot %s", dst, typeString(seg, inst.AllocType))
	case InstStore:
		off:= offsetSuffix(inst.Offset)
		return fmt.Sprintf("store %s -> %s%s", typed(inst.StoreValue), bare(inst.StoreDest), off)
	case InstLoad:
		off:= offsetSuffix(inst.Offset)
		return fmt.Sprintf("%s = load %s %s%s", dst, ty, bare(inst.LoadSrc), off)
	case InstCpy:
		return fmt.Sprintf("cpy %s, %s, align %d -> %s, align %d",
			typed(inst.CpySize), typed(inst.CpySrc), inst.CpySrcAlign, typed(inst.CpyDest), inst.CpyDestAlign)
	case InstAp:
		if inst.IsField {
			return fmt.Sprintf("%s = ap %s %s, #%d", dst, ty, bare(inst.Base), inst.FieldIndex)
		}
		return fmt.Sprintf("%s = ap %s %s, %s", dst, ty, bare(inst.Base), bare(inst.Index))
	case InstBrif:
		return fmt.Sprintf("brif %s, %s, %s", typed(inst.Cond), blockLabel(fn, inst.True), blockLabel(fn, inst.False))
	case InstJmp:
		return fmt.Sprintf("jmp %s", blockLabel(fn, inst.Target))
	case InstRet:
		if !inst.HasValue {
			return "ret"
		}
		return fmt.Sprintf("ret %s", typed(inst.RetValue))
	case InstCall:
		return fmt.Sprintf("%scall %s(%s)", callDstPrefix(dst), bare(inst.Callee), joinTyped(seg, fn, names, inst.Args))
	case InstSyscall:
		return fmt.Sprintf("%s = syscall %s(%s)", dst, bare(inst.Callee), joinTyped(seg, fn, names, inst.Args))
	case InstPhi:
		edges:= make([]string, len(inst.Incoming))
		for i, e:= range inst.Incoming {
			edges[i] = fmt.Sprintf("[%s, %s]", bare(e.Value), blockLabel(fn, e.Block))
		}
		return fmt.Sprintf("%s = phi %s %s", dst, ty, strings.Join(edges, ", "))
	case InstNot, InstNeg, InstFNeg:
		return fmt.Sprintf("%s = %s %s %s", dst, inst.Kind, ty, bare(inst.Operand))
	case InstTrunc, InstSExt, InstZExt, InstFTrunc, InstFExt,
		InstSi2fp, InstUi2fp, InstFp2si, InstFp2ui, InstReint, InstPtr2int, InstInt2ptr:
		return fmt.Sprintf("%s = %s %s -> %s", dst, inst.Kind, typed(inst.Operand), ty)
	default:
		// Binary arithmetic, bitwise, and comparison ops all share the
		// "%dst = op T lhs, rhs" shape.
		return fmt.Sprintf("%s = %s %s %s, %s", dst, inst.Kind, ty, bare(inst.LHS), bare(inst.RHS))
	}
}

func callDstPrefix(dst string) string {
	if dst == "" {
		return ""
	}
	return dst + " = "
}

func joinTyped(seg *Segment, fn *Function, names map[InstID]string, vals []Value) string {
	parts:= make([]string, len(vals))
	for i, v:= range vals {
		parts[i] = typeString(seg, v.Type) + " " + valueString(seg, fn, names, v)
	}
	return strings.Join(parts, ", ")
}

// valueString renders v's bare text with no type prefix: the caller
// decides, per the mixed-format golden examples, whether this
// instruction's grammar wants the operand's type shown at all (`store`
// shows it once; `brif`'s block targets never do).
func valueString(seg *Segment, fn *Function, names map[InstID]string, v Value) string {
	switch v.Kind {
	case ValConstant:
		return constString(v.Const)
	case ValData:
		return "@" + seg.Data[v.Data].Name
	case ValArgument:
		return "%" + fn.Args[v.Arg].Name
	case ValBlock:
		return blockLabel(fn, v.Block)
	case ValFunction:
		return "@" + seg.Funcs[v.Func].Name
	case ValInst:
		if name, ok:= names[v.Inst]; ok {
			return name
		}
		return "%" + strconv.Itoa(int(v.Inst))
	default:
		return "<invalid>"
	}
}

func constString(c Constant) string {
	switch c.Kind {
	case ConstInt:
		return strconv.FormatInt(c.Int, 10)
	case ConstFP:
		return strconv.FormatFloat(c.FP, 'g', -1, 64)
	case ConstNil:
		return "nil"
	case ConstString:
		return strconv.Quote(c.String)
	case ConstAggregate:
		parts:= make([]string, len(c.Aggregate))
		for i, e:= range c.Aggregate {
			parts[i] = constString(e.Const)
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return "<const?>"
	}
}

func offsetSuffix(off int64) string {
	if off == 0 {
		return ""
	}
	if off > 0 {
		return " + " + strconv.FormatInt(off, 10)
	}
	return " - " + strconv.FormatInt(-off, 10)
}

func typeString(seg *Segment, id TypeID) string {
	if id == NoTypeID {
		return "?"
	}
	t:= seg.Types.Lookup(id)
	switch t.Kind {
	case KindArray:
		return fmt.Sprintf("%s[%d]", typeString(seg, t.Elem), t.Size)
	case KindPointer:
		return typeString(seg, t.Pointee) + "*"
	case KindFunction:
		params:= make([]string, len(t.Params))
		for i, p:= range t.Params {
			params[i] = typeString(seg, p)
		}
		return fmt.Sprintf("fn(%s) %s", strings.Join(params, ", "), typeString(seg, t.Return))
	case KindStruct:
		return t.Name
	default:
		return t.Kind.String()
	}
}

// quoteBytes renders a Data payload's bytes as a Go-quoted string literal,
// matching example 5's `"hello\n\0"` rendering of a readonly
// array(i8, N) constant.
func quoteBytes(bs []byte) string {
	return strconv.Quote(string(bs))
}
