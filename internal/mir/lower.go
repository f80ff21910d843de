package mir

import (
	"fmt"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/unit"
)

// loopCtx records the break/continue targets of one enclosing until
// loop, pushed and popped around lowerUntil so nested loops resolve
// break/continue against their own innermost loop.
type loopCtx struct {
	breakTarget BlockID
	continueTarget BlockID
}

// funcLowerer lowers one function's body into fn's block list, tracking
// the locals-to-slot map and the enclosing loop stack. Grounded on the
// teacher's own funcLowerer (internal/mir/lower.go), pared down to the
// subset needs: no async/blocking-capture machinery.
type funcLowerer struct {
	l *lowerer
	tu *unit.TranslationUnit
	tc *TypeConverter
	fn *Function
	b *Builder

	// locals maps a var/param Decl to the Value addressing its storage
	// always an InstSlot pointer, including an AArg aggregate parameter,
	// whose pointee is cpy'd into a fresh slot at entry.
	locals map[ast.DeclID]Value

	// retSlot holds the ARet destination pointer, valid only when the
	// function returns an aggregate.
	retSlot Value

	loops []loopCtx
}

func (fl *funcLowerer) pushLoop(breakTo, continueTo BlockID) {
	fl.loops = append(fl.loops, loopCtx{breakTarget: breakTo, continueTarget: continueTo})
}

func (fl *funcLowerer) popLoop() {
	fl.loops = fl.loops[:len(fl.loops)-1]
}

func (fl *funcLowerer) currentLoop() (loopCtx, bool) {
	if len(fl.loops) == 0 {
		return loopCtx{}, false
	}
	return fl.loops[len(fl.loops)-1], true
}

// Lower walks every loaded translation unit and produces the single
// Segment describes: a flat collection of functions and
// module-scope data sharing one interned MIR type system, named per
// `named` (the `--named-mir` driver flag,).
func Lower(mgr *unit.Manager, named bool) (*Segment, error) {
	seg:= NewSegment()
	l:= &lowerer{seg: seg, named: named, strings: make(map[string]DataID)}

	// Pass 1: declare every function's shell (type, linkage, arguments)
	// before lowering any body, so a forward call resolves regardless of
	// definition order (two-pass lowering requirement).
	for _, tu:= range mgr.Units() {
		for _, id:= range tu.AST.Top {
			if err:= l.declareTop(tu, id); err != nil {
				return nil, err
			}
		}
	}

	// Pass 2: lower every function body.
	for _, tu:= range mgr.Units() {
		for _, id:= range tu.AST.Top {
			if err:= l.defineTop(tu, id); err != nil {
				return nil, err
			}
		}
	}

	return seg, nil
}

// lowerer carries the cross-function state of one Lower call: the
// Segment under construction, the per-unit type converters (one per
// ast.Unit since each owns its own types.Context), and the dedup table
// for string-literal Data.
type lowerer struct {
	seg *Segment
	named bool
	convs map[*ast.Unit]*TypeConverter
	strings map[string]DataID
}

func (l *lowerer) typeConv(u *ast.Unit) *TypeConverter {
	if l.convs == nil {
		l.convs = make(map[*ast.Unit]*TypeConverter)
	}
	tc, ok:= l.convs[u]
	if !ok {
		tc = NewTypeConverter(u.Types, l.seg)
		l.convs[u] = tc
	}
	return tc
}

// isAggregate reports whether ty needs pass-by-pointer/cpy treatment
// rather than a scalar load/store — example 5 requires a
// `cpy`, not a `store`, for a fixed-size array local (a string literal
// initializing a `char[N]`), the same convention structs already get.
func isAggregate(seg *Segment, ty TypeID) bool {
	k:= seg.Types.Lookup(ty).Kind
	return k == KindStruct || k == KindArray
}

// mangledName gives every function a globally-unique Segment name
// a monomorphised specialization is already uniquely named by Sema
// (mangleTemplateName) and a no_mangle function keeps its declared name;
// everything else is qualified by its unit path.
func mangledName(tu *unit.TranslationUnit, d *ast.Decl) string {
	if d.Kind == ast.DeclFunctionSpecialization || d.Runes.Has(ast.RuneNoMangle) {
		return d.Name
	}
	return tu.Path + "::" + d.Name
}

// declareTop registers the MIR shell of every function-shaped top-level
// declaration (declare-then-define pass).
func (l *lowerer) declareTop(tu *unit.TranslationUnit, id ast.DeclID) error {
	d:= tu.AST.Decl(id)
	switch d.Kind {
	case ast.DeclFunction, ast.DeclFunctionSpecialization:
		return l.declareFunc(tu, id)
	case ast.DeclTemplateFunction:
		for _, spec:= range d.Specializations {
			if err:= l.declareFunc(tu, spec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *lowerer) defineTop(tu *unit.TranslationUnit, id ast.DeclID) error {
	d:= tu.AST.Decl(id)
	switch d.Kind {
	case ast.DeclFunction, ast.DeclFunctionSpecialization:
		return l.defineFunc(tu, id)
	case ast.DeclTemplateFunction:
		for _, spec:= range d.Specializations {
			if err:= l.defineFunc(tu, spec); err != nil {
				return err
			}
		}
	}
	return nil
}

// declareFunc builds fn's Argument list and registers it in the Segment
// under its mangled name, applying the ARet/AArg convention: an
// aggregate return becomes an implicit leading `ptr` argument tagged
// ARet (and the MIR return type becomes void); an aggregate parameter
// becomes a `ptr` argument tagged AArg. A method's
// argument order is ARet, self, then the declared parameters.
func (l *lowerer) declareFunc(tu *unit.TranslationUnit, id ast.DeclID) error {
	d:= tu.AST.Decl(id)
	tc:= l.typeConv(tu.AST)
	name:= mangledName(tu, d)
	if _, exists:= l.seg.FuncByName(name); exists {
		return nil
	}

	retTy:= tc.Convert(d.Ret)
	var args []Argument
	if isAggregate(l.seg, retTy) {
		args = append(args, Argument{Type: l.seg.Types.Pointer(retTy), Attr: AttrARet, Name: "ret"})
		retTy = l.seg.Types.Void()
	}
	for _, pid:= range d.Params {
		p:= tu.AST.Decl(pid)
		pty:= tc.Convert(p.Type)
		attr:= AttrNone
		if isAggregate(l.seg, pty) {
			pty = l.seg.Types.Pointer(pty)
			attr = AttrAArg
		}
		args = append(args, Argument{Type: pty, Attr: attr, Name: p.Name})
	}
	for i:= range args {
		args[i].ID = ArgID(i)
	}

	paramTys:= make([]TypeID, len(args))
	for i, a:= range args {
		paramTys[i] = a.Type
	}
	fnID:= FuncID(len(l.seg.Funcs))
	fn:= &Function{
		ID: fnID, Name: name, Type: l.seg.Types.Function(paramTys, retTy),
		Linkage: LinkageInternal, Args: args, Entry: NoBlockID,
		Slots: make(map[string]InstID),
	}
	if d.Body == ast.NoStmtID {
		fn.Linkage = LinkageExternal
	}
	l.seg.AddFunc(fn)
	return nil
}

// defineFunc lowers id's body into the previously-declared Function's
// block list. A declaration-only function (extern, no Body) is left
// with an empty block list.
func (l *lowerer) defineFunc(tu *unit.TranslationUnit, id ast.DeclID) error {
	d:= tu.AST.Decl(id)
	if d.Body == ast.NoStmtID {
		return nil
	}
	tc:= l.typeConv(tu.AST)
	name:= mangledName(tu, d)
	fnID, ok:= l.seg.FuncByName(name)
	if !ok {
		return fmt.Errorf("mir: function %q not declared", name)
	}
	fn:= l.seg.Func(fnID)

	fl:= &funcLowerer{
		l: l, tu: tu, tc: tc, fn: fn,
		b: NewBuilder(l.seg, fn, l.named),
		locals: make(map[ast.DeclID]Value),
	}

	entry:= fl.b.NewBlock("entry")
	fn.Entry = entry
	fl.b.SetBlock(entry)

	// Spill every argument into a slot so locals, params, and self are
	// addressed uniformly (a later mem2reg-style pass is out of scope;
	// every local round-trips through its own slot, matching
	// §8's golden MIR listings).
	argIdx:= 0
	if isAggregate(l.seg, tc.Convert(d.Ret)) {
		argIdx++ // the ARet pointer has no source-level name to bind
	}
	for _, pid:= range d.Params {
		p:= tu.AST.Decl(pid)
		arg:= fn.Args[argIdx]
		av:= ArgValue(ArgID(argIdx), arg.Type)
		if arg.Attr == AttrAArg {
			// The incoming pointer addresses the caller's own copy; per
			// ("cpy's each AArg pointer's pointee into a new
			// slot"), the callee gets its own by-value copy in a fresh
			// slot rather than aliasing the caller's storage.
			pointee:= l.seg.Types.Lookup(arg.Type).Pointee
			slot:= fl.b.Slot(p.Name, pointee)
			size:= ConstInt64(l.seg.Types.I64(), int64(typeSizeOf(l.seg, pointee)))
			align:= alignOf(l.seg, pointee)
			fl.b.Cpy(size, av, align, slot, align)
			fl.locals[pid] = slot
		} else {
			slot:= fl.b.Slot(p.Name, arg.Type)
			fl.b.Store(av, slot, 0)
			fl.locals[pid] = slot
		}
		argIdx++
	}
	// self, when present, is bindImplicitSelf's synthesized first
	// declared param (internal/sema), already spilled by the loop above.
	if isAggregate(l.seg, tc.Convert(d.Ret)) {
		fl.retSlot = ArgValue(ArgID(0), fn.Args[0].Type)
	}

	if err:= fl.lowerStmt(d.Body); err != nil {
		return err
	}
	if !fl.b.Terminated() {
		// Sema guarantees every path through a non-void function already
		// ends in a ret; an unterminated fallthrough here only occurs for
		// a void function's implicit end-of-body return.
		fl.b.Ret(Value{}, false)
	}
	return nil
}

// constString interns s as readonly module data, deduplicating by
// content, and returns the Data's ID.
func (l *lowerer) constString(s string) DataID {
	if id, ok:= l.strings[s]; ok {
		return id
	}
	bytes:= append([]byte(s), 0)
	arrTy:= l.seg.Types.Array(l.seg.Types.I8(), uint64(len(bytes)))
	id:= l.seg.AddData(Data{
		Name: fmt.Sprintf(".str.%d", len(l.seg.Data)), Type: arrTy, Bytes: bytes, Linkage: LinkageInternal,
	})
	l.strings[s] = id
	return id
}
