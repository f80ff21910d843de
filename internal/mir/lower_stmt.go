package mir

import "github.com/nwmarino/meddle/internal/ast"

// lowerStmt lowers one statement, appending instructions to fl.b's
// current block. Control-flow statements may leave the builder pointed
// at a different block than the one current on entry (e.g. an if's
// merge block), matching the block-structured lowering.
func (fl *funcLowerer) lowerStmt(id ast.StmtID) error {
	s:= fl.tu.AST.Stmt(id)
	switch s.Kind {
	case ast.StmtCompound:
		for _, child:= range s.Stmts {
			if fl.b.Terminated() {
				break // unreachable code after a break/continue/ret
			}
			if err:= fl.lowerStmt(child); err != nil {
				return err
			}
		}
		return nil
	case ast.StmtIf:
		return fl.lowerIf(s)
	case ast.StmtUntil:
		return fl.lowerUntil(s)
	case ast.StmtMatch:
		return fl.lowerMatch(s)
	case ast.StmtRet:
		return fl.lowerRet(s)
	case ast.StmtBreak:
		loop, ok:= fl.currentLoop()
		if ok {
			fl.b.Jmp(loop.breakTarget)
		}
		return nil
	case ast.StmtContinue:
		loop, ok:= fl.currentLoop()
		if ok {
			fl.b.Jmp(loop.continueTarget)
		}
		return nil
	case ast.StmtDecl:
		return fl.lowerDeclStmt(s)
	case ast.StmtExpr:
		_, err:= fl.lowerExprRValue(s.Expr)
		return err
	}
	return nil
}

func (fl *funcLowerer) lowerDeclStmt(s *ast.Stmt) error {
	d:= fl.tu.AST.Decl(s.DeclID)
	ty:= fl.tc.Convert(d.Type)
	slot:= fl.b.Slot(d.Name, ty)
	fl.locals[s.DeclID] = slot
	if d.Init == ast.NoExprID {
		return nil
	}
	if isAggregate(fl.l.seg, ty) {
		return fl.lowerInitInto(d.Init, slot, ty)
	}
	v, err:= fl.lowerExprRValue(d.Init)
	if err != nil {
		return err
	}
	fl.b.Store(v, slot, 0)
	return nil
}

func (fl *funcLowerer) lowerRet(s *ast.Stmt) error {
	if s.Value == ast.NoExprID {
		fl.b.Ret(Value{}, false)
		return nil
	}
	retTy:= fl.tc.Convert(fl.tu.AST.Expr(s.Value).Type)
	if isAggregate(fl.l.seg, retTy) {
		if err:= fl.lowerInitInto(s.Value, fl.retSlot, retTy); err != nil {
			return err
		}
		fl.b.Ret(Value{}, false)
		return nil
	}
	v, err:= fl.lowerExprRValue(s.Value)
	if err != nil {
		return err
	}
	fl.b.Ret(v, true)
	return nil
}

// lowerIf lowers `if cond then [else]`: a brif to a then-block and
// either an else-block or directly the merge block, with the merge
// block only receiving a jmp from a predecessor that didn't already
// terminate (e.g. both arms return) per
func (fl *funcLowerer) lowerIf(s *ast.Stmt) error {
	cond, err:= fl.lowerCond(s.Cond)
	if err != nil {
		return err
	}
	thenBlk:= fl.b.NewBlock("if.then")
	var elseBlk, mergeBlk BlockID
	hasElse:= s.Else != ast.NoStmtID
	if hasElse {
		elseBlk = fl.b.NewBlock("if.else")
		fl.b.Brif(cond, thenBlk, elseBlk)
	} else {
		mergeBlk = fl.b.NewBlock("if.merge")
		fl.b.Brif(cond, thenBlk, mergeBlk)
	}

	fl.b.SetBlock(thenBlk)
	if err:= fl.lowerStmt(s.Then); err != nil {
		return err
	}
	thenFalls:= !fl.b.Terminated()

	elseFalls:= false
	if hasElse {
		fl.b.SetBlock(elseBlk)
		if err:= fl.lowerStmt(s.Else); err != nil {
			return err
		}
		elseFalls = !fl.b.Terminated()
		if thenFalls || elseFalls {
			mergeBlk = fl.b.NewBlock("if.merge")
			if thenFalls {
				save:= fl.b.Current()
				fl.b.SetBlock(thenBlk)
				fl.b.Jmp(mergeBlk)
				fl.b.SetBlock(save)
			}
			if elseFalls {
				fl.b.Jmp(mergeBlk)
			}
			fl.b.SetBlock(mergeBlk)
		}
		// Neither arm falls through: the if-statement itself is a dead
		// end (both branches return/break/continue); leave the builder
		// on the else block, matching its current (terminated) state.
		return nil
	}

	if thenFalls {
		save:= fl.b.Current()
		fl.b.SetBlock(thenBlk)
		fl.b.Jmp(mergeBlk)
		fl.b.SetBlock(save)
	}
	fl.b.SetBlock(mergeBlk)
	return nil
}

// lowerUntil lowers meddle's `until cond body` pre-test loop: a cond
// block re-evaluated each iteration, a body block, and a merge block
// that break targets; continue targets the cond block ('s
// until-loop lowering).
func (fl *funcLowerer) lowerUntil(s *ast.Stmt) error {
	condBlk:= fl.b.NewBlock("until.cond")
	bodyBlk:= fl.b.NewBlock("until.body")
	mergeBlk:= fl.b.NewBlock("until.merge")

	fl.b.Jmp(condBlk)
	fl.b.SetBlock(condBlk)
	cond, err:= fl.lowerCond(s.Cond)
	if err != nil {
		return err
	}
	// `until` runs the body while cond is false, the mirror of a C
	// while-loop's test polarity (GLOSSARY: "until" loops until true).
	fl.b.Brif(cond, mergeBlk, bodyBlk)

	fl.b.SetBlock(bodyBlk)
	fl.pushLoop(mergeBlk, condBlk)
	err = fl.lowerStmt(s.Body)
	fl.popLoop()
	if err != nil {
		return err
	}
	if !fl.b.Terminated() {
		fl.b.Jmp(condBlk)
	}

	fl.b.SetBlock(mergeBlk)
	return nil
}

// lowerMatch lowers a match statement as a chain of compare-and-branch
// blocks, one per case, falling through to a default block (or directly
// to merge when no default is present), per the match
// lowering.
func (fl *funcLowerer) lowerMatch(s *ast.Stmt) error {
	subject, err:= fl.lowerExprRValue(s.Subject)
	if err != nil {
		return err
	}
	mergeBlk:= fl.b.NewBlock("match.merge")
	anyFalls:= false

	for _, c:= range s.Cases {
		pat, err:= fl.lowerExprRValue(c.Pattern)
		if err != nil {
			return err
		}
		eq:= fl.cmpEq(subject, pat)
		caseBlk:= fl.b.NewBlock("match.case")
		nextBlk:= fl.b.NewBlock("match.chain")
		fl.b.Brif(eq, caseBlk, nextBlk)

		fl.b.SetBlock(caseBlk)
		if err:= fl.lowerStmt(c.Body); err != nil {
			return err
		}
		if !fl.b.Terminated() {
			fl.b.Jmp(mergeBlk)
			anyFalls = true
		}

		fl.b.SetBlock(nextBlk)
	}

	if s.Default != ast.NoStmtID {
		if err:= fl.lowerStmt(s.Default); err != nil {
			return err
		}
	}
	if !fl.b.Terminated() {
		fl.b.Jmp(mergeBlk)
		anyFalls = true
	}

	fl.b.SetBlock(mergeBlk)
	if !anyFalls {
		// No case or default fell through to merge: it has no
		// predecessors. Leave it in place (still valid, just
		// unreachable); the validator's reachability pass flags this
		// only if the whole function's entry can't reach it, which a
		// match statement alone never causes.
		_ = anyFalls
	}
	return nil
}

func (fl *funcLowerer) cmpEq(a, b Value) Value {
	ty:= fl.l.seg.Types.Lookup(a.Type)
	switch {
	case ty.Kind.IsFloat():
		return fl.b.Cmp(InstFCmpOeq, a, b)
	case ty.Kind == KindPointer:
		return fl.b.Cmp(InstPCmpEq, a, b)
	default:
		return fl.b.Cmp(InstICmpEq, a, b)
	}
}
