package types

// Compare reports whether a (in ca) and b (in cb) are structurally equal,
// independent of handle identity. Within a single Context two handles are
// equal iff they are the same TypeID (interning guarantees that); Compare
// exists for the cross-context case, e.g. checking an imported decl's
// type against the importer's own notion of the same structural type.
func Compare(ca *Context, a TypeID, cb *Context, b TypeID) bool {
	a = ca.Resolve(a)
	b = cb.Resolve(b)
	ta, ok:= ca.Lookup(a)
	if !ok {
		return false
	}
	tb, ok:= cb.Lookup(b)
	if !ok {
		return false
	}
	if ta.Kind != tb.Kind {
		return false
	}

	switch ta.Kind {
	case KindPrimitive:
		return ta.Prim == tb.Prim
	case KindArray:
		return ta.Size == tb.Size && Compare(ca, ta.Elem, cb, tb.Elem)
	case KindPointer:
		return Compare(ca, ta.Pointee, cb, tb.Pointee)
	case KindFunction:
		return compareLists(ca, ta.Params, cb, tb.Params) && Compare(ca, ta.Return, cb, tb.Return)
	case KindStruct, KindEnum:
		return ta.Name == tb.Name
	case KindTemplateParam:
		return ta.Owner == tb.Owner && ta.Index == tb.Index
	case KindTemplateStruct, KindDependentTemplateStruct:
		return ta.Template == tb.Template && compareLists(ca, ta.Args, cb, tb.Args)
	case KindDeferred:
		return ta.DeferredName == tb.DeferredName
	default:
		return false
	}
}

func compareLists(ca *Context, as []TypeID, cb *Context, bs []TypeID) bool {
	if len(as) != len(bs) {
		return false
	}
	for i:= range as {
		if !Compare(ca, as[i], cb, bs[i]) {
			return false
		}
	}
	return true
}
