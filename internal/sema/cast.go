package sema

import "github.com/nwmarino/meddle/internal/types"

// castValid implements the explicit-cast matrix: numeric
// widths freely convert to one another (widening or narrowing), any
// pointer converts to any other pointer, and a pointer converts to/from
// an integer wide enough to hold one (u64/i64, matching the target's
// pointer width). Every other pairing — struct/enum to anything,
// array-to-anything but its own decay — is rejected.
func castValid(c *types.Context, from, to types.TypeID) bool {
	if from == to {
		return true
	}
	ft, ok1:= c.Lookup(from)
	tt, ok2:= c.Lookup(to)
	if !ok1 || !ok2 {
		return false
	}

	switch {
	case ft.Kind == types.KindPrimitive && tt.Kind == types.KindPrimitive:
		return (ft.Prim.IsInteger() || ft.Prim.IsFloat()) && (tt.Prim.IsInteger() || tt.Prim.IsFloat())
	case ft.Kind == types.KindPointer && tt.Kind == types.KindPointer:
		return true
	case ft.Kind == types.KindPointer && tt.Kind == types.KindPrimitive:
		return tt.Prim == types.I64 || tt.Prim == types.U64
	case ft.Kind == types.KindPrimitive && tt.Kind == types.KindPointer:
		return ft.Prim == types.I64 || ft.Prim == types.U64
	case ft.Kind == types.KindArray && tt.Kind == types.KindPointer:
		return ft.Elem == tt.Pointee
	default:
		return false
	}
}
