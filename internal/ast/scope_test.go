package ast_test

import (
	"testing"

	"github.com/nwmarino/meddle/internal/ast"
)

func TestScopeInsertAndLookup(t *testing.T) {
	st:= ast.NewScopeTree()
	root:= st.Root()
	if !st.Insert(root, "x", 0) {
		t.Fatal("first insert of x failed")
	}
	if st.Insert(root, "x", 1) {
		t.Fatal("duplicate insert of x in the same scope should fail")
	}
	id, ok:= st.Lookup(root, "x")
	if !ok || id != 0 {
		t.Fatalf("Lookup(x) = %d, %v, want 0, true", id, ok)
	}
}

func TestScopeLookupWalksParentChain(t *testing.T) {
	st:= ast.NewScopeTree()
	root:= st.Root()
	st.Insert(root, "outer", 7)

	child:= st.Push(root)
	if _, ok:= st.Lookup(child, "outer"); !ok {
		t.Fatal("Lookup from child scope did not find parent's decl")
	}
	if _, ok:= st.LookupLocal(child, "outer"); ok {
		t.Fatal("LookupLocal should not see parent-scope names")
	}
}

func TestUnitArenaIDsAreSequential(t *testing.T) {
	u:= ast.NewUnit("test.md")
	d0:= u.AddDecl(ast.Decl{Kind: ast.DeclVar, Name: "a"})
	d1:= u.AddDecl(ast.Decl{Kind: ast.DeclVar, Name: "b"})
	if d0 == d1 {
		t.Fatal("distinct decls got the same ID")
	}
	if u.Decl(d0).Name != "a" || u.Decl(d1).Name != "b" {
		t.Fatal("Decl did not return the stored declarations")
	}
}
