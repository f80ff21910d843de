package ast

import "github.com/nwmarino/meddle/internal/types"

// Unit is the arena for one translation unit's parsed AST: every Decl,
// Expr, and Stmt lives here, addressed by ID. The unit also owns the
// scope tree and type context that Parser and Sema both read and write.
type Unit struct {
	Path string

	Decls []Decl
	Exprs []Expr
	Stmts []Stmt

	Scopes *ScopeTree
	Types *types.Context

	// Top holds the top-level declarations, in source order.
	Top []DeclID
}

// NewUnit constructs an empty Unit rooted at path.
func NewUnit(path string) *Unit {
	return &Unit{
		Path: path,
		Scopes: NewScopeTree(),
		Types: types.NewContext(),
	}
}

// AddDecl appends d to the arena and returns its ID.
func (u *Unit) AddDecl(d Decl) DeclID {
	id:= DeclID(len(u.Decls))
	u.Decls = append(u.Decls, d)
	return id
}

// Decl returns a pointer to the Decl addressed by id, for in-place mutation.
func (u *Unit) Decl(id DeclID) *Decl { return &u.Decls[id] }

// AddExpr appends e to the arena and returns its ID.
func (u *Unit) AddExpr(e Expr) ExprID {
	id:= ExprID(len(u.Exprs))
	u.Exprs = append(u.Exprs, e)
	return id
}

// Expr returns a pointer to the Expr addressed by id, for in-place mutation.
func (u *Unit) Expr(id ExprID) *Expr { return &u.Exprs[id] }

// AddStmt appends s to the arena and returns its ID.
func (u *Unit) AddStmt(s Stmt) StmtID {
	id:= StmtID(len(u.Stmts))
	u.Stmts = append(u.Stmts, s)
	return id
}

// Stmt returns a pointer to the Stmt addressed by id, for in-place mutation.
func (u *Unit) Stmt(id StmtID) *Stmt { return &u.Stmts[id] }
