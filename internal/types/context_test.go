package types_test

import (
	"testing"

	"github.com/nwmarino/meddle/internal/source"
	"github.com/nwmarino/meddle/internal/types"
)

func TestInternIsIdempotent(t *testing.T) {
	c := types.NewContext()
	a := c.MakeArray(c.Builtins().I64, 4)
	b := c.MakeArray(c.Builtins().I64, 4)
	if a != b {
		t.Fatalf("Intern(same key) = %d, %d, want equal handles", a, b)
	}
	other := c.MakeArray(c.Builtins().I64, 8)
	if a == other {
		t.Fatalf("arrays of different size interned to the same handle")
	}
}

func TestBuiltinsDistinct(t *testing.T) {
	b := types.NewContext().Builtins()
	ids := []types.TypeID{b.Void, b.Bool, b.Char, b.I8, b.I64, b.U8, b.U64, b.F32, b.F64}
	seen := make(map[types.TypeID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("builtin TypeID %d reused", id)
		}
		seen[id] = true
	}
}

func TestPointerAndFunctionInterning(t *testing.T) {
	c := types.NewContext()
	i64 := c.Builtins().I64
	p1 := c.MakePointer(i64)
	p2 := c.MakePointer(i64)
	if p1 != p2 {
		t.Fatalf("MakePointer not deduplicated")
	}
	fn1 := c.MakeFunction([]types.TypeID{i64, i64}, c.Builtins().Bool)
	fn2 := c.MakeFunction([]types.TypeID{i64, i64}, c.Builtins().Bool)
	if fn1 != fn2 {
		t.Fatalf("MakeFunction not deduplicated")
	}
}

func TestDeferIsAlwaysFresh(t *testing.T) {
	c := types.NewContext()
	loc := source.Location{Line: 1, Column: 1}
	d1 := c.Defer("Foo", loc)
	d2 := c.Defer("Foo", loc)
	if d1 == d2 {
		t.Fatalf("Defer returned the same handle for two calls")
	}
}

func TestSanitateResolvesDeferredPrimitive(t *testing.T) {
	c := types.NewContext()
	loc := source.Location{Line: 1, Column: 1}
	d := c.Defer("i64", loc)
	if err := c.Sanitate(); err != nil {
		t.Fatalf("Sanitate error = %v", err)
	}
	if got := c.Resolve(d); got != c.Builtins().I64 {
		t.Fatalf("Resolve(deferred i64) = %d, want %d", got, c.Builtins().I64)
	}
}

func TestSanitateResolvesDeferredStruct(t *testing.T) {
	c := types.NewContext()
	loc := source.Location{Line: 1, Column: 1}
	st := c.MakeStruct("Point", []types.TypeID{c.Builtins().I64, c.Builtins().I64})
	d := c.Defer("Point", loc)
	if err := c.Sanitate(); err != nil {
		t.Fatalf("Sanitate error = %v", err)
	}
	if got := c.Resolve(d); got != st {
		t.Fatalf("Resolve(deferred Point) = %d, want %d", got, st)
	}
}

func TestSanitateUnresolvedIsFatal(t *testing.T) {
	c := types.NewContext()
	loc := source.Location{Line: 3, Column: 9}
	c.Defer("Nope", loc)
	if err := c.Sanitate(); err == nil {
		t.Fatal("Sanitate with an unknown Deferred name did not error")
	}
}

func TestSanitateRewalksFunctionParams(t *testing.T) {
	c := types.NewContext()
	loc := source.Location{Line: 1, Column: 1}
	d := c.Defer("i32", loc)
	fn := c.MakeFunction([]types.TypeID{d}, d)

	if err := c.Sanitate(); err != nil {
		t.Fatalf("Sanitate error = %v", err)
	}
	got, ok := c.Lookup(fn)
	if !ok {
		t.Fatalf("function type vanished after Sanitate")
	}
	if got.Params[0] != c.Builtins().I32 || got.Return != c.Builtins().I32 {
		t.Fatalf("function not rewalked: %+v", got)
	}
}

func TestCompareAcrossContexts(t *testing.T) {
	ca := types.NewContext()
	cb := types.NewContext()
	pa := ca.MakePointer(ca.Builtins().I64)
	pb := cb.MakePointer(cb.Builtins().I64)
	if !types.Compare(ca, pa, cb, pb) {
		t.Fatal("Compare = false for structurally identical pointer types in different contexts")
	}
	pc := cb.MakePointer(cb.Builtins().F64)
	if types.Compare(ca, pa, cb, pc) {
		t.Fatal("Compare = true for structurally different pointer types")
	}
}
