package mir

import (
	"fmt"

	"github.com/nwmarino/meddle/internal/types"
)

// TypeConverter maps a translation unit's AST-level types.TypeID handles
// onto this Segment's own, simpler MIR type system (: sema
// has already resolved away enum/template/deferred variants by the time
// lowering runs, so every surviving AST type has a direct MIR mirror).
type TypeConverter struct {
	src *types.Context
	seg *Segment
	cache map[types.TypeID]TypeID
}

// NewTypeConverter constructs a converter pulling from src into seg's
// own mir.Context, memoizing per AST TypeID for the lifetime of one
// lowering pass.
func NewTypeConverter(src *types.Context, seg *Segment) *TypeConverter {
	return &TypeConverter{src: src, seg: seg, cache: make(map[types.TypeID]TypeID)}
}

// Convert returns the MIR type mirroring id, lowering (and registering
// in the Segment, for structs) on first reference.
func (tc *TypeConverter) Convert(id types.TypeID) TypeID {
	if id == types.NoTypeID {
		return NoTypeID
	}
	if mid, ok:= tc.cache[id]; ok {
		return mid
	}
	// Break potential recursion through a self-referential struct field
	// (a pointer to the enclosing struct) by reserving the slot before
	// recursing into Fields.
	t:= tc.src.MustLookup(id)
	switch t.Kind {
	case types.KindPrimitive:
		return tc.cacheSet(id, tc.convertPrim(t.Prim))
	case types.KindArray:
		elem:= tc.Convert(t.Elem)
		return tc.cacheSet(id, tc.seg.Types.Array(elem, t.Size))
	case types.KindPointer:
		if t.Pointee == types.NoTypeID {
			// Pointer to void, i.e. an opaque/any pointer.
			return tc.cacheSet(id, tc.seg.Types.Pointer(tc.seg.Types.I8()))
		}
		mid:= tc.seg.Types.Pointer(NoTypeID)
		tc.cache[id] = mid // tentative, in case Pointee recurses back to id
		pointee:= tc.Convert(t.Pointee)
		mid = tc.seg.Types.Pointer(pointee)
		return tc.cacheSet(id, mid)
	case types.KindFunction:
		params:= make([]TypeID, len(t.Params))
		for i, p:= range t.Params {
			params[i] = tc.Convert(p)
		}
		ret:= tc.Convert(t.Return)
		return tc.cacheSet(id, tc.seg.Types.Function(params, ret))
	case types.KindEnum:
		// Enums lower to their underlying integer type.
		return tc.cacheSet(id, tc.Convert(t.Underlying))
	case types.KindStruct:
		// Reserve the struct's TypeID and cache it before resolving
		// fields, so a field that points back to this struct (directly
		// or through another struct) finds a valid handle here instead
		// of recursing without end.
		mid:= tc.seg.Types.Struct(t.Name, nil)
		tc.cache[id] = mid
		fields:= make([]TypeID, len(t.Fields))
		for i, f:= range t.Fields {
			fields[i] = tc.Convert(f)
		}
		tc.seg.Types.SetStructMembers(mid, fields)
		tc.seg.AddStruct(mid)
		return mid
	default:
		panic(fmt.Sprintf("mir: type kind %s reached lowering; sema should have resolved it away", t.Kind))
	}
}

func (tc *TypeConverter) cacheSet(id types.TypeID, mid TypeID) TypeID {
	tc.cache[id] = mid
	return mid
}

func (tc *TypeConverter) convertPrim(p types.Prim) TypeID {
	switch p {
	case types.Void:
		return tc.seg.Types.Void()
	case types.Bool:
		return tc.seg.Types.I1()
	case types.Char, types.I8, types.U8:
		return tc.seg.Types.I8()
	case types.I16, types.U16:
		return tc.seg.Types.I16()
	case types.I32, types.U32:
		return tc.seg.Types.I32()
	case types.I64, types.U64:
		return tc.seg.Types.I64()
	case types.F32:
		return tc.seg.Types.F32()
	case types.F64:
		return tc.seg.Types.F64()
	default:
		panic(fmt.Sprintf("mir: unhandled primitive %s", p))
	}
}

// IsUnsigned reports whether an AST primitive type converts to an
// unsigned-arithmetic MIR lowering (udiv/urem/ucmp instead of the signed
// variants), since MIR's own Type carries no sign.
func IsUnsigned(src *types.Context, id types.TypeID) bool {
	t, ok:= src.Lookup(id)
	if !ok || t.Kind != types.KindPrimitive {
		return false
	}
	switch t.Prim {
	case types.U8, types.U16, types.U32, types.U64, types.Bool, types.Char:
		return true
	default:
		return false
	}
}
