package mir

import (
	"errors"
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// Validate checks the universal invariants lists for any MIR
// produced by lowering, across every function in seg. Errors accumulate
// (unlike the rest of the pipeline's fatal-on-first-error policy — this
// is a post-hoc consistency check over already-built MIR, not a phase a
// user-facing diagnostic aborts mid-way) and are joined into one error.
func Validate(seg *Segment) error {
	var errs []error
	for _, fn:= range seg.Funcs {
		if err:= validateFunc(seg, fn); err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", fn.Name, err))
		}
	}
	return errors.Join(errs...)
}

func validateFunc(seg *Segment, fn *Function) error {
	var errs []error
	if err:= validateTerminators(fn); err != nil {
		errs = append(errs, err)
	}
	if err:= validateReachable(fn); err != nil {
		errs = append(errs, err)
	}
	if err:= validateUses(fn); err != nil {
		errs = append(errs, err)
	}
	if err:= validateAArg(seg, fn); err != nil {
		errs = append(errs, err)
	}
	if err:= validateARet(seg, fn); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// validateTerminators checks the "exactly one terminator" per
// block: the block's last instruction must be a terminator, and no
// terminator may appear earlier in the block.
func validateTerminators(fn *Function) error {
	var errs []error
	for bi:= range fn.Blocks {
		blk:= &fn.Blocks[bi]
		label:= blockLabel(fn, blk.ID)
		if len(blk.Insts) == 0 {
			errs = append(errs, fmt.Errorf("%s: unterminated block", label))
			continue
		}
		for i, iid:= range blk.Insts {
			term:= fn.Inst(iid).Kind.IsTerminator()
			last:= i == len(blk.Insts)-1
			if term && !last {
				errs = append(errs, fmt.Errorf("%s: terminator before end of block", label))
			}
			if last && !term {
				errs = append(errs, fmt.Errorf("%s: unterminated block", label))
			}
		}
	}
	return errors.Join(errs...)
}

// validateReachable walks the block graph from entry (
// "Validate...uses the same structure keyed by BlockID" as use-resolution's
// visited/stack bitsets) and flags any block with a predecessor/successor
// edge into a block never reached, which would indicate a builder bug in
// linking rather than a legitimately dead (never-reached-by-any-jmp) block.
func validateReachable(fn *Function) error {
	reached:= bitset.New(uint(len(fn.Blocks)))
	var walk func(id BlockID)
	walk = func(id BlockID) {
		if reached.Test(uint(id)) {
			return
		}
		reached.Set(uint(id))
		for _, s:= range fn.Block(id).Succs {
			walk(s)
		}
	}
	if len(fn.Blocks) > 0 {
		walk(fn.Entry)
	}

	var errs []error
	for bi:= range fn.Blocks {
		blk:= &fn.Blocks[bi]
		for _, s:= range blk.Succs {
			if !reached.Test(uint(s)) {
				errs = append(errs, fmt.Errorf("%s: successor %s unreachable from entry",
					blockLabel(fn, blk.ID), blockLabel(fn, s)))
			}
		}
	}
	return errors.Join(errs...)
}

// validateUses checks the "for every SSA value, each use's
// operand equals that value": every InstID recorded in an operand's
// Uses list must actually reference that operand among its own fields.
func validateUses(fn *Function) error {
	var errs []error
	references:= func(user *Inst, target InstID) bool {
		check:= func(v Value) bool { return v.Kind == ValInst && v.Inst == target }
		if check(user.LHS) || check(user.RHS) || check(user.Operand) ||
			check(user.StoreValue) || check(user.StoreDest) || check(user.LoadSrc) ||
			check(user.CpySize) || check(user.CpySrc) || check(user.CpyDest) ||
			check(user.Base) || check(user.Index) || check(user.Cond) ||
			check(user.Callee) || check(user.RetValue) {
			return true
		}
		for _, a:= range user.Args {
			if check(a) {
				return true
			}
		}
		for _, e:= range user.Incoming {
			if check(e.Value) {
				return true
			}
		}
		return false
	}

	for i:= range fn.insts {
		inst:= &fn.insts[i]
		for _, userID:= range inst.Uses {
			user:= fn.Inst(userID)
			if user == nil || !references(user, inst.ID) {
				errs = append(errs, fmt.Errorf("%%%d: dangling use recorded from instruction %d", inst.ID, userID))
			}
		}
	}
	return errors.Join(errs...)
}

// validateAArg checks the "for every AArg-attributed argument,
// the function entry block contains a cpy from the argument into its
// slot" (function-lowering contract).
func validateAArg(seg *Segment, fn *Function) error {
	var errs []error
	for _, arg:= range fn.Args {
		if arg.Attr != AttrAArg {
			continue
		}
		if !entryCopiesArg(seg, fn, arg.ID) {
			errs = append(errs, fmt.Errorf("aarg %%%s: no cpy from argument into a slot in entry", arg.Name))
		}
	}
	return errors.Join(errs...)
}

func entryCopiesArg(seg *Segment, fn *Function, arg ArgID) bool {
	if len(fn.Blocks) == 0 {
		return false
	}
	entry:= fn.Block(fn.Entry)
	for _, iid:= range entry.Insts {
		inst:= fn.Inst(iid)
		if inst.Kind != InstCpy {
			continue
		}
		if inst.CpySrc.Kind == ValArgument && inst.CpySrc.Arg == arg {
			return true
		}
	}
	return false
}

// validateARet checks the "for every ARet-attributed function,
// the MIR return type is void and the first parameter is a pointer".
func validateARet(seg *Segment, fn *Function) error {
	if len(fn.Args) == 0 || fn.Args[0].Attr != AttrARet {
		return nil
	}
	var errs []error
	fnTy:= seg.Types.Lookup(fn.Type)
	if fnTy.Return != seg.Types.Void() {
		errs = append(errs, fmt.Errorf("aret function %s: return type is not void", fn.Name))
	}
	if seg.Types.Lookup(fn.Args[0].Type).Kind != KindPointer {
		errs = append(errs, fmt.Errorf("aret function %s: first parameter is not a pointer", fn.Name))
	}
	return errors.Join(errs...)
}
