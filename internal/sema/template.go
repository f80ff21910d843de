package sema

import (
	"strings"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/types"
)

// cloner deep-copies a template body's Stmt/Expr tree into fresh arena
// slots for one on-demand specialization, remapping references to the
// template's own params/locals (declMap) and substituting every
// TemplateParam-owned type along the way (, last paragraph).
// References to anything outside the template (globals, other functions)
// are left pointing at the same, shared DeclID.
type cloner struct {
	u *ast.Unit
	owner string
	args []types.TypeID
	declMap map[ast.DeclID]ast.DeclID
}

// bindTemplateParamTypes reclassifies every Deferred type occurrence in
// d's signature (or fields, for a struct template) that names one of d's
// own template parameters, so substitution and deduction see
// types.KindTemplateParam rather than an unresolved Deferred. Idempotent
// a type already rewritten is a KindTemplateParam leaf and recursion stops.
func bindTemplateParamTypes(u *ast.Unit, d *ast.Decl) {
	tc:= u.Types
	names:= make(map[string]int, len(d.TemplateParams))
	for i, tpID:= range d.TemplateParams {
		names[u.Decl(tpID).Name] = i
	}
	for _, pID:= range d.Params {
		bindTemplateParamsInType(tc, u.Decl(pID).Type, names, d.Name)
	}
	bindTemplateParamsInType(tc, d.Ret, names, d.Name)
	for _, fID:= range d.Fields {
		bindTemplateParamsInType(tc, u.Decl(fID).Type, names, d.Name)
	}
}

func bindTemplateParamsInType(tc *types.Context, id types.TypeID, names map[string]int, owner string) {
	if id == types.NoTypeID {
		return
	}
	t, ok:= tc.Lookup(id)
	if !ok {
		return
	}
	switch t.Kind {
	case types.KindDeferred:
		if idx, ok:= names[t.DeferredName]; ok {
			tc.BindTemplateParam(id, owner, idx)
		}
	case types.KindPointer:
		bindTemplateParamsInType(tc, t.Pointee, names, owner)
	case types.KindArray:
		bindTemplateParamsInType(tc, t.Elem, names, owner)
	case types.KindFunction:
		for _, p:= range t.Params {
			bindTemplateParamsInType(tc, p, names, owner)
		}
		bindTemplateParamsInType(tc, t.Return, names, owner)
	case types.KindTemplateStruct, types.KindDependentTemplateStruct:
		for _, a:= range t.Args {
			bindTemplateParamsInType(tc, a, names, owner)
		}
	}
}

// substituteType rewrites every TemplateParam(owner, i) leaf reachable
// from id into args[i], recursing through the structural wrappers
// (pointer, array, function, nested template-struct arguments).
func substituteType(tc *types.Context, id types.TypeID, owner string, args []types.TypeID) types.TypeID {
	if id == types.NoTypeID {
		return id
	}
	t:= tc.MustLookup(id)
	switch t.Kind {
	case types.KindTemplateParam:
		if t.Owner == owner && t.Index < len(args) {
			return args[t.Index]
		}
		return id
	case types.KindPointer:
		return tc.MakePointer(substituteType(tc, t.Pointee, owner, args))
	case types.KindArray:
		return tc.MakeArray(substituteType(tc, t.Elem, owner, args), t.Size)
	case types.KindFunction:
		params:= make([]types.TypeID, len(t.Params))
		for i, p:= range t.Params {
			params[i] = substituteType(tc, p, owner, args)
		}
		return tc.MakeFunction(params, substituteType(tc, t.Return, owner, args))
	case types.KindTemplateStruct, types.KindDependentTemplateStruct:
		newArgs:= make([]types.TypeID, len(t.Args))
		for i, a:= range t.Args {
			newArgs[i] = substituteType(tc, a, owner, args)
		}
		return tc.MakeTemplateStruct(t.Template, newArgs)
	default:
		return id
	}
}

// deduce performs the classic argument-type-deduction walk: it compares a
// template function's declared (possibly parameterized) parameter type
// against the concrete type of the call argument in the same position,
// filling bindings[i] the first time TemplateParam(owner, i) is reached.
// A conflicting second binding, or a structural mismatch (pointer vs
// non-pointer, array vs non-array), is fatal; an already-concrete
// parameter type that simply doesn't match is left for the ordinary
// argument-assignability check in typeCall to report.
func deduce(tc *types.Context, paramType, argType types.TypeID, owner string, bindings []types.TypeID) error {
	pt, ok:= tc.Lookup(paramType)
	if !ok {
		return nil
	}
	if pt.Kind == types.KindTemplateParam && pt.Owner == owner {
		if bindings[pt.Index] == types.NoTypeID {
			bindings[pt.Index] = argType
			return nil
		}
		if bindings[pt.Index] != argType {
			return diag.Errorf(source.Location{}, "conflicting deduction for template parameter %d", pt.Index+1)
		}
		return nil
	}
	at, ok:= tc.Lookup(argType)
	if !ok {
		return nil
	}
	switch pt.Kind {
	case types.KindPointer:
		if at.Kind != types.KindPointer {
			return nil
		}
		return deduce(tc, pt.Pointee, at.Pointee, owner, bindings)
	case types.KindArray:
		if at.Kind != types.KindArray {
			return nil
		}
		return deduce(tc, pt.Elem, at.Elem, owner, bindings)
	default:
		return nil
	}
}

// fetchFunctionSpecialization returns the cached specialization of tmplID
// for argTypes' deduced template arguments, cloning and typing a fresh one
// on a cache miss (on-demand monomorphisation).
func (c *ctx) fetchFunctionSpecialization(tmplID ast.DeclID, argTypes []types.TypeID) (ast.DeclID, error) {
	tc:= c.u.AST.Types
	tmpl:= c.u.AST.Decl(tmplID)
	bindTemplateParamTypes(c.u.AST, tmpl)

	bindings:= make([]types.TypeID, len(tmpl.TemplateParams))
	for i:= range bindings {
		bindings[i] = types.NoTypeID
	}
	for i, pID:= range tmpl.Params {
		if i >= len(argTypes) {
			break
		}
		if err:= deduce(tc, c.u.AST.Decl(pID).Type, argTypes[i], tmpl.Name, bindings); err != nil {
			return ast.NoDeclID, err
		}
	}
	for i, b:= range bindings {
		if b == types.NoTypeID {
			return ast.NoDeclID, diag.Errorf(tmpl.Loc, "cannot deduce template argument %d of %q", i+1, tmpl.Name)
		}
	}

	for _, specID:= range tmpl.Specializations {
		if argsEqual(c.u.AST.Decl(specID).Args, bindings) {
			return specID, nil
		}
	}

	specID, err:= c.cloneFunctionForSpecialization(tmplID, bindings)
	if err != nil {
		return ast.NoDeclID, err
	}
	tmpl = c.u.AST.Decl(tmplID) // re-fetch: AddDecl may have resized the arena
	tmpl.Specializations = append(tmpl.Specializations, specID)
	c.u.AST.Top = append(c.u.AST.Top, specID)
	if err:= c.typeFunction(specID); err != nil {
		return ast.NoDeclID, err
	}
	return specID, nil
}

func (c *ctx) cloneFunctionForSpecialization(tmplID ast.DeclID, args []types.TypeID) (ast.DeclID, error) {
	u:= c.u.AST
	tmpl:= u.Decl(tmplID)
	owner:= tmpl.Name
	parent:= u.Scopes.Parent(tmpl.BodyScope)
	newBodyScope:= u.Scopes.Push(parent)

	cl:= &cloner{u: u, owner: owner, args: args, declMap: make(map[ast.DeclID]ast.DeclID, len(tmpl.Params))}

	newParams:= make([]ast.DeclID, len(tmpl.Params))
	paramTypes:= make([]types.TypeID, len(tmpl.Params))
	for i, pID:= range tmpl.Params {
		p:= u.Decl(pID)
		nt:= substituteType(u.Types, p.Type, owner, args)
		npID:= u.AddDecl(ast.Decl{Kind: ast.DeclParam, Name: p.Name, Loc: p.Loc, Scope: newBodyScope, Type: nt, Index: p.Index})
		if !u.Scopes.Insert(newBodyScope, p.Name, npID) {
			return ast.NoDeclID, diag.Errorf(p.Loc, "internal: duplicate parameter %q while specializing %q", p.Name, tmpl.Name)
		}
		cl.declMap[pID] = npID
		newParams[i] = npID
		paramTypes[i] = nt
	}
	newRet:= substituteType(u.Types, tmpl.Ret, owner, args)
	newFnType:= u.Types.MakeFunction(paramTypes, newRet)

	specID:= u.AddDecl(ast.Decl{
		Kind: ast.DeclFunctionSpecialization, Name: tmpl.Name, Loc: tmpl.Loc, Runes: tmpl.Runes,
		Scope: tmpl.Scope, BodyScope: newBodyScope, Params: newParams, Ret: newRet, Type: newFnType,
		IsMethod: tmpl.IsMethod, Receiver: tmpl.Receiver, Template: tmplID, Args: args,
	})
	tmpl = u.Decl(tmplID)
	spec:= u.Decl(specID)
	spec.Body = cl.cloneStmt(tmpl.Body, newBodyScope)
	return specID, nil
}

// fetchStructSpecialization returns the cached specialization of tmplID
// for the given concrete args, cloning its fields and methods on a cache
// miss. The specialization's mangled name is both its Decl.Name (so it is
// addressable via the unit's root scope, matching how every other
// struct-typed lookup works) and the interned struct type's Name.
func (c *ctx) fetchStructSpecialization(tmplID ast.DeclID, args []types.TypeID) (ast.DeclID, error) {
	u:= c.u.AST
	tmpl:= u.Decl(tmplID)
	bindTemplateParamTypes(u, tmpl)

	for _, specID:= range tmpl.Specializations {
		if argsEqual(u.Decl(specID).Args, args) {
			return specID, nil
		}
	}

	owner:= tmpl.Name
	name:= mangleTemplateName(u.Types, tmpl.Name, args)
	newBodyScope:= u.Scopes.Push(u.Scopes.Parent(tmpl.BodyScope))

	fields:= make([]ast.DeclID, len(tmpl.Fields))
	fieldTypes:= make([]types.TypeID, len(tmpl.Fields))
	for i, fID:= range tmpl.Fields {
		f:= u.Decl(fID)
		nt:= substituteType(u.Types, f.Type, owner, args)
		nfID:= u.AddDecl(ast.Decl{Kind: ast.DeclField, Name: f.Name, Loc: f.Loc, Scope: newBodyScope, Type: nt, Index: f.Index})
		if !u.Scopes.Insert(newBodyScope, f.Name, nfID) {
			return ast.NoDeclID, diag.Errorf(f.Loc, "internal: duplicate field %q while specializing %q", f.Name, tmpl.Name)
		}
		fields[i] = nfID
		fieldTypes[i] = nt
	}
	structType:= u.Types.MakeStruct(name, fieldTypes)

	specID:= u.AddDecl(ast.Decl{
		Kind: ast.DeclStructSpecialization, Name: name, Loc: tmpl.Loc, Runes: tmpl.Runes,
		Scope: tmpl.Scope, BodyScope: newBodyScope, Type: structType, Fields: fields,
		Template: tmplID, Args: args,
	})
	if !u.Scopes.Insert(u.Scopes.Root(), name, specID) {
		// Already present under this mangled name from a concurrent lookup
		// path; fall through and still record it in the template's cache.
	}

	for _, mID:= range u.Scopes.Decls(tmpl.BodyScope) {
		md:= u.Decl(mID)
		if md.Kind != ast.DeclFunction {
			continue
		}
		if _, err:= c.cloneMethodForSpecialization(mID, owner, args, newBodyScope, structType); err != nil {
			return ast.NoDeclID, err
		}
	}

	tmpl = u.Decl(tmplID)
	tmpl.Specializations = append(tmpl.Specializations, specID)
	u.Top = append(u.Top, specID)
	return specID, nil
}

func (c *ctx) cloneMethodForSpecialization(tmplMethodID ast.DeclID, owner string, args []types.TypeID, memberScope ast.ScopeID, structType types.TypeID) (ast.DeclID, error) {
	u:= c.u.AST
	md:= u.Decl(tmplMethodID)
	newBodyScope:= u.Scopes.Push(memberScope)

	cl:= &cloner{u: u, owner: owner, args: args, declMap: make(map[ast.DeclID]ast.DeclID, len(md.Params))}
	newParams:= make([]ast.DeclID, len(md.Params))
	paramTypes:= make([]types.TypeID, len(md.Params))
	for i, pID:= range md.Params {
		p:= u.Decl(pID)
		nt:= substituteType(u.Types, p.Type, owner, args)
		npID:= u.AddDecl(ast.Decl{Kind: ast.DeclParam, Name: p.Name, Loc: p.Loc, Scope: newBodyScope, Type: nt, Index: p.Index})
		if !u.Scopes.Insert(newBodyScope, p.Name, npID) {
			return ast.NoDeclID, diag.Errorf(p.Loc, "internal: duplicate parameter %q while specializing method %q", p.Name, md.Name)
		}
		cl.declMap[pID] = npID
		newParams[i] = npID
		paramTypes[i] = nt
	}
	newRet:= substituteType(u.Types, md.Ret, owner, args)
	newFnType:= u.Types.MakeFunction(paramTypes, newRet)

	specID:= u.AddDecl(ast.Decl{
		Kind: ast.DeclFunctionSpecialization, Name: md.Name, Loc: md.Loc, Runes: md.Runes,
		Scope: memberScope, BodyScope: newBodyScope, Params: newParams, Ret: newRet, Type: newFnType,
		IsMethod: md.IsMethod, Receiver: structType, Template: tmplMethodID, Args: args,
	})
	if !u.Scopes.Insert(memberScope, md.Name, specID) {
		return ast.NoDeclID, diag.Errorf(md.Loc, "internal: duplicate method %q while specializing its owning struct", md.Name)
	}
	md = u.Decl(tmplMethodID)
	spec:= u.Decl(specID)
	spec.Body = cl.cloneStmt(md.Body, newBodyScope)
	if err:= c.typeFunction(specID); err != nil {
		return ast.NoDeclID, err
	}
	return specID, nil
}

func argsEqual(a, b []types.TypeID) bool {
	if len(a) != len(b) {
		return false
	}
	for i:= range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// mangleTemplateName produces a specialization's display/lookup name,
// e.g. "Pair<i64,i64>", used both as the Decl's Name (addressable through
// the unit's root scope) and the interned struct type's Name.
func mangleTemplateName(tc *types.Context, base string, args []types.TypeID) string {
	var b strings.Builder
	b.WriteString(base)
	b.WriteByte('<')
	for i, a:= range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(typeName(tc, a))
	}
	b.WriteByte('>')
	return b.String()
}

func typeName(tc *types.Context, id types.TypeID) string {
	t, ok:= tc.Lookup(id)
	if !ok {
		return "?"
	}
	switch t.Kind {
	case types.KindPrimitive:
		return t.Prim.String()
	case types.KindPointer:
		return typeName(tc, t.Pointee) + "*"
	case types.KindArray:
		return typeName(tc, t.Elem) + "[]"
	case types.KindStruct, types.KindEnum:
		return t.Name
	default:
		return mangleTemplateName(tc, t.Template, t.Args)
	}
}
