package types

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/source"
)

// Builtins holds the TypeIDs of every primitive, interned once per context.
type Builtins struct {
	Void TypeID
	Bool TypeID
	Char TypeID
	I8 TypeID
	I16 TypeID
	I32 TypeID
	I64 TypeID
	U8 TypeID
	U16 TypeID
	U32 TypeID
	U64 TypeID
	F32 TypeID
	F64 TypeID
}

// Context interns and deduplicates Type values for one translation unit.
// Equality of TypeIDs is identity; Compare provides structural equality
// separately, per the value model's distinction between the two.
type Context struct {
	types []Type
	index map[string]TypeID
	named map[string]TypeID // struct/enum lookup by name, for sanitate
	builtins Builtins
	deferred int // counter so defer never collides with a real key
}

// NewContext constructs a Context with every primitive pre-interned.
func NewContext() *Context {
	c:= &Context{index: make(map[string]TypeID, 64), named: make(map[string]TypeID, 16)}
	c.builtins.Void = c.Intern(Type{Kind: KindPrimitive, Prim: Void})
	c.builtins.Bool = c.Intern(Type{Kind: KindPrimitive, Prim: Bool})
	c.builtins.Char = c.Intern(Type{Kind: KindPrimitive, Prim: Char})
	c.builtins.I8 = c.Intern(Type{Kind: KindPrimitive, Prim: I8})
	c.builtins.I16 = c.Intern(Type{Kind: KindPrimitive, Prim: I16})
	c.builtins.I32 = c.Intern(Type{Kind: KindPrimitive, Prim: I32})
	c.builtins.I64 = c.Intern(Type{Kind: KindPrimitive, Prim: I64})
	c.builtins.U8 = c.Intern(Type{Kind: KindPrimitive, Prim: U8})
	c.builtins.U16 = c.Intern(Type{Kind: KindPrimitive, Prim: U16})
	c.builtins.U32 = c.Intern(Type{Kind: KindPrimitive, Prim: U32})
	c.builtins.U64 = c.Intern(Type{Kind: KindPrimitive, Prim: U64})
	c.builtins.F32 = c.Intern(Type{Kind: KindPrimitive, Prim: F32})
	c.builtins.F64 = c.Intern(Type{Kind: KindPrimitive, Prim: F64})
	return c
}

// Builtins returns the primitive TypeIDs for this context.
func (c *Context) Builtins() Builtins { return c.builtins }

// Intern returns the unique canonical handle for t's structural key,
// interning it if this is the first occurrence.
func (c *Context) Intern(t Type) TypeID {
	key:= keyOf(t)
	if id, ok:= c.index[key]; ok {
		return id
	}
	return c.internRaw(t, key)
}

func (c *Context) internRaw(t Type, key string) TypeID {
	n, err:= safecast.Conv[int32](len(c.types))
	if err != nil {
		panic(fmt.Errorf("types: type count overflow: %w", err))
	}
	id:= TypeID(n)
	c.types = append(c.types, t)
	c.index[key] = id
	if t.Kind == KindStruct || t.Kind == KindEnum {
		c.named[t.Name] = id
	}
	return id
}

// Defer returns a fresh Deferred type bound to name; unlike Intern, each
// call produces a distinct handle even for a repeated name, since the
// binding is resolved per occurrence at Sanitate time.
func (c *Context) Defer(name string, loc source.Location) TypeID {
	c.deferred++
	key:= fmt.Sprintf("deferred#%d:%s", c.deferred, name)
	return c.internRaw(Type{
		Kind: KindDeferred,
		DeferredName: name,
		Loc: loc,
		Resolved: NoTypeID,
	}, key)
}

// MakeArray interns an Array(element, size) type.
func (c *Context) MakeArray(elem TypeID, size uint64) TypeID {
	return c.Intern(Type{Kind: KindArray, Elem: elem, Size: size})
}

// MakePointer interns a Pointer(pointee) type.
func (c *Context) MakePointer(pointee TypeID) TypeID {
	return c.Intern(Type{Kind: KindPointer, Pointee: pointee})
}

// MakeFunction interns a Function(params, return) type.
func (c *Context) MakeFunction(params []TypeID, ret TypeID) TypeID {
	return c.Intern(Type{Kind: KindFunction, Params: params, Return: ret})
}

// MakeStruct interns a Struct(name, fields) type.
func (c *Context) MakeStruct(name string, fields []TypeID) TypeID {
	return c.Intern(Type{Kind: KindStruct, Name: name, Fields: fields})
}

// MakeEnum interns an Enum(name, underlying, variants) type.
func (c *Context) MakeEnum(name string, underlying TypeID, variants []string) TypeID {
	return c.Intern(Type{Kind: KindEnum, Name: name, Underlying: underlying, Variants: variants})
}

// MakeTemplateParam interns a TemplateParam(owner, index) type.
func (c *Context) MakeTemplateParam(name, owner string, index int) TypeID {
	return c.Intern(Type{Kind: KindTemplateParam, Name: name, Owner: owner, Index: index})
}

// MakeTemplateStruct interns a TemplateStruct(template, args) type, used
// once every argument is a concrete type.
func (c *Context) MakeTemplateStruct(template string, args []TypeID) TypeID {
	return c.Intern(Type{Kind: KindTemplateStruct, Template: template, Args: args})
}

// MakeDependentTemplateStruct interns a DependentTemplateStruct(template,
// args) type, used when some arguments are still TemplateParam leaves.
func (c *Context) MakeDependentTemplateStruct(template string, args []TypeID) TypeID {
	return c.Intern(Type{Kind: KindDependentTemplateStruct, Template: template, Args: args})
}

// Import re-interns a type handle owned by a foreign Context (e.g. an
// imported struct/enum's field or underlying type) into c, recursing
// through every structural variant so nested imports land fully in c's
// own arena instead of holding a dangling cross-context handle. Named
// types (struct/enum) already registered under the same name in c are
// returned as-is rather than re-imported, so re-importing the same
// transitively-used type through two different `use` paths converges on
// one handle.
func (c *Context) Import(from *Context, id TypeID) TypeID {
	t, ok:= from.Lookup(id)
	if !ok {
		return NoTypeID
	}
	switch t.Kind {
	case KindPrimitive:
		return c.Intern(Type{Kind: KindPrimitive, Prim: t.Prim})
	case KindArray:
		return c.MakeArray(c.Import(from, t.Elem), t.Size)
	case KindPointer:
		return c.MakePointer(c.Import(from, t.Pointee))
	case KindFunction:
		params:= make([]TypeID, len(t.Params))
		for i, p:= range t.Params {
			params[i] = c.Import(from, p)
		}
		return c.MakeFunction(params, c.Import(from, t.Return))
	case KindStruct:
		if id, ok:= c.named[t.Name]; ok {
			return id
		}
		fields:= make([]TypeID, len(t.Fields))
		for i, f:= range t.Fields {
			fields[i] = c.Import(from, f)
		}
		return c.MakeStruct(t.Name, fields)
	case KindEnum:
		if id, ok:= c.named[t.Name]; ok {
			return id
		}
		return c.MakeEnum(t.Name, c.Import(from, t.Underlying), append([]string(nil), t.Variants...))
	case KindTemplateParam:
		return c.MakeTemplateParam(t.Name, t.Owner, t.Index)
	case KindTemplateStruct:
		args:= make([]TypeID, len(t.Args))
		for i, a:= range t.Args {
			args[i] = c.Import(from, a)
		}
		return c.MakeTemplateStruct(t.Template, args)
	case KindDependentTemplateStruct:
		args:= make([]TypeID, len(t.Args))
		for i, a:= range t.Args {
			args[i] = c.Import(from, a)
		}
		return c.MakeDependentTemplateStruct(t.Template, args)
	case KindDeferred:
		return c.Defer(t.DeferredName, t.Loc)
	default:
		return NoTypeID
	}
}

// BindTemplateParam rewrites a Deferred type in place to a TemplateParam.
// parseType has no notion of which bare names are template parameters, so
// every occurrence of `T` inside a template's signature or fields is first
// recorded as an ordinary Deferred("T"); once Sema knows the enclosing
// template's own parameter list it calls this to reclassify the handle
// before Sanitate runs, so Sanitate never has to search a parallel
// template-param namespace. Safe to call in place because a Deferred
// type's handle is never shared across occurrences (Defer mints a fresh
// slot every call, unlike Intern).
func (c *Context) BindTemplateParam(id TypeID, owner string, index int) {
	t:= &c.types[id]
	if t.Kind != KindDeferred {
		return
	}
	*t = Type{Kind: KindTemplateParam, Name: t.DeferredName, Owner: owner, Index: index}
}

// Lookup returns the Type for id.
func (c *Context) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(c.types) {
		return Type{}, false
	}
	return c.types[id], true
}

// MustLookup panics when id is invalid; used where a prior pass already
// guarantees id's validity.
func (c *Context) MustLookup(id TypeID) Type {
	t, ok:= c.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return t
}

// Resolve follows a Deferred type's Resolved indirection to its final
// concrete handle. Non-Deferred ids are returned unchanged.
func (c *Context) Resolve(id TypeID) TypeID {
	t, ok:= c.Lookup(id)
	if !ok || t.Kind != KindDeferred || t.Resolved == NoTypeID {
		return id
	}
	return c.Resolve(t.Resolved)
}

// Sanitate resolves every Deferred type against the names now registered
// in this context (primitives, struct/enum decls, imports already merged
// in by use resolution), then re-walks Function types to replace any
// Deferred parameter or return type with its concrete. An unresolved
// Deferred is fatal at its original location.
func (c *Context) Sanitate() error {
	builtinNames:= map[string]TypeID{
		"void": c.builtins.Void, "bool": c.builtins.Bool, "char": c.builtins.Char,
		"i8": c.builtins.I8, "i16": c.builtins.I16, "i32": c.builtins.I32, "i64": c.builtins.I64,
		"u8": c.builtins.U8, "u16": c.builtins.U16, "u32": c.builtins.U32, "u64": c.builtins.U64,
		"f32": c.builtins.F32, "f64": c.builtins.F64,
	}

	for i:= range c.types {
		t:= &c.types[i]
		if t.Kind != KindDeferred || t.Resolved != NoTypeID {
			continue
		}
		if id, ok:= builtinNames[t.DeferredName]; ok {
			t.Resolved = id
			continue
		}
		if id, ok:= c.named[t.DeferredName]; ok {
			t.Resolved = id
			continue
		}
		return diag.Errorf(t.Loc, "unresolved type %q", t.DeferredName)
	}

	for i:= range c.types {
		t:= &c.types[i]
		if t.Kind != KindFunction {
			continue
		}
		for j, p:= range t.Params {
			t.Params[j] = c.Resolve(p)
		}
		t.Return = c.Resolve(t.Return)
	}
	return nil
}

// keyOf builds the structural-equality key used by Intern. Go map keys
// cannot hold slices directly, so variable-length fields (Params, Fields,
// Variants, Args) are folded into a delimited string; this is the
// standard idiom for hash-consing a recursive value shape in Go and does
// not warrant a third-party dependency.
func keyOf(t Type) string {
	var b strings.Builder
	b.WriteString(strconv.Itoa(int(t.Kind)))
	b.WriteByte(':')
	switch t.Kind {
	case KindPrimitive:
		b.WriteString(strconv.Itoa(int(t.Prim)))
	case KindArray:
		b.WriteString(strconv.Itoa(int(t.Elem)))
		b.WriteByte(',')
		b.WriteString(strconv.FormatUint(t.Size, 10))
	case KindPointer:
		b.WriteString(strconv.Itoa(int(t.Pointee)))
	case KindFunction:
		writeIDs(&b, t.Params)
		b.WriteString("->")
		b.WriteString(strconv.Itoa(int(t.Return)))
	case KindStruct:
		b.WriteString(t.Name)
	case KindEnum:
		b.WriteString(t.Name)
	case KindTemplateParam:
		b.WriteString(t.Owner)
		b.WriteByte('#')
		b.WriteString(strconv.Itoa(t.Index))
	case KindTemplateStruct, KindDependentTemplateStruct:
		b.WriteString(t.Template)
		b.WriteByte('<')
		writeIDs(&b, t.Args)
		b.WriteByte('>')
	case KindDeferred:
		// never deduplicated; key is unique per Defer call.
		b.WriteString(t.DeferredName)
	}
	return b.String()
}

func writeIDs(b *strings.Builder, ids []TypeID) {
	for i, id:= range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
}
