// Package ast holds the parsed representation of one translation unit
// declarations, expressions, statements, and their enclosing scope tree.
// Every node is addressed by a small integer ID into an arena owned by
// Unit, rather than by pointer, so that the back-references scope and
// MIR lowering both need (decl -> parent scope, expr -> enclosing decl)
// stay as plain indices instead of ownership cycles.
package ast

// DeclID addresses a Decl within a Unit's arena.
type DeclID int32

// NoDeclID marks the absence of a declaration.
const NoDeclID DeclID = -1

// ExprID addresses an Expr within a Unit's arena.
type ExprID int32

// NoExprID marks the absence of an expression.
const NoExprID ExprID = -1

// StmtID addresses a Stmt within a Unit's arena.
type StmtID int32

// NoStmtID marks the absence of a statement.
const NoStmtID StmtID = -1
