package parser_test

import (
	"testing"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/lexer"
	"github.com/nwmarino/meddle/internal/parser"
	"github.com/nwmarino/meddle/internal/source"
)

func parseString(t *testing.T, input string) *ast.Unit {
	t.Helper()
	fs:= source.NewFileSet()
	id:= fs.Add("test.md", []byte(input))
	toks, err:= lexer.Lex(fs, id)
	if err != nil {
		t.Fatalf("Lex(%q) returned error: %v", input, err)
	}
	unit, _, err:= parser.Parse("test.md", toks)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", input, err)
	}
	return unit
}

func TestParseGlobalVar(t *testing.T) {
	unit:= parseString(t, `x:: fix i32 = 1;`)
	if len(unit.Top) != 1 {
		t.Fatalf("expected 1 top-level decl, got %d", len(unit.Top))
	}
	d:= unit.Decl(unit.Top[0])
	if d.Kind != ast.DeclVar || d.Name != "x" || d.Mutable {
		t.Fatalf("unexpected decl: %+v", d)
	}
	init:= unit.Expr(d.Init)
	if init.Kind != ast.ExprLiteralInt || init.IntVal != 1 {
		t.Fatalf("unexpected init expr: %+v", init)
	}
}

func TestParseFunctionDecl(t *testing.T) {
	unit:= parseString(t, `add:: (a: i32, b: i32) i32 { ret a + b; }`)
	d:= unit.Decl(unit.Top[0])
	if d.Kind != ast.DeclFunction || d.Name != "add" {
		t.Fatalf("unexpected decl: %+v", d)
	}
	if len(d.Params) != 2 {
		t.Fatalf("expected 2 params, got %d", len(d.Params))
	}
	body:= unit.Stmt(d.Body)
	if body.Kind != ast.StmtCompound || len(body.Stmts) != 1 {
		t.Fatalf("unexpected body: %+v", body)
	}
	ret:= unit.Stmt(body.Stmts[0])
	if ret.Kind != ast.StmtRet {
		t.Fatalf("expected ret stmt, got %+v", ret)
	}
	bin:= unit.Expr(ret.Value)
	if bin.Kind != ast.ExprBinary || bin.Op != ast.OpAdd {
		t.Fatalf("unexpected ret value: %+v", bin)
	}
}

func TestParseOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 should parse as 1 + (2 * 3): the outer node is the '+'.
	unit:= parseString(t, `x:: fix i32 = 1 + 2 * 3;`)
	d:= unit.Decl(unit.Top[0])
	top:= unit.Expr(d.Init)
	if top.Kind != ast.ExprBinary || top.Op != ast.OpAdd {
		t.Fatalf("expected outer '+', got %+v", top)
	}
	rhs:= unit.Expr(top.RHS)
	if rhs.Kind != ast.ExprBinary || rhs.Op != ast.OpMul {
		t.Fatalf("expected rhs '*', got %+v", rhs)
	}
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	unit:= parseString(t, `f:: () { a = b = 1; }`)
	d:= unit.Decl(unit.Top[0])
	body:= unit.Stmt(d.Body)
	exprStmt:= unit.Stmt(body.Stmts[0])
	outer:= unit.Expr(exprStmt.Expr)
	if outer.Kind != ast.ExprBinary || outer.Op != ast.OpAssign {
		t.Fatalf("expected outer assign, got %+v", outer)
	}
	inner:= unit.Expr(outer.RHS)
	if inner.Kind != ast.ExprBinary || inner.Op != ast.OpAssign {
		t.Fatalf("expected nested assign as rhs, got %+v", inner)
	}
}

func TestParseUnaryAndCast(t *testing.T) {
	unit:= parseString(t, `x:: fix i32 = cast<i32>(-y);`)
	d:= unit.Decl(unit.Top[0])
	cast:= unit.Expr(d.Init)
	if cast.Kind != ast.ExprCast {
		t.Fatalf("expected cast expr, got %+v", cast)
	}
	inner:= unit.Expr(cast.Operand)
	if inner.Kind != ast.ExprParen {
		t.Fatalf("expected paren expr, got %+v", inner)
	}
	neg:= unit.Expr(inner.Operand)
	if neg.Kind != ast.ExprUnary || neg.UOp != ast.OpNeg {
		t.Fatalf("expected unary neg, got %+v", neg)
	}
}

func TestParseCallAndFieldAccess(t *testing.T) {
	unit:= parseString(t, `f:: () { p.x.y(1, 2); }`)
	d:= unit.Decl(unit.Top[0])
	body:= unit.Stmt(d.Body)
	exprStmt:= unit.Stmt(body.Stmts[0])
	call:= unit.Expr(exprStmt.Expr)
	if call.Kind != ast.ExprMethodCall || call.Method != "y" {
		t.Fatalf("expected method call 'y', got %+v", call)
	}
	if len(call.Args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(call.Args))
	}
	field:= unit.Expr(call.Base)
	if field.Kind != ast.ExprField || field.Field != "x" {
		t.Fatalf("expected field access 'x' as receiver, got %+v", field)
	}
}

func TestParseStructDeclWithMethod(t *testing.T) {
	unit:= parseString(t, `
Point:: {
	x: i32;
	y: i32;

	sum:: () i32 { ret 0; }
}`)
	d:= unit.Decl(unit.Top[0])
	if d.Kind != ast.DeclStruct || d.Name != "Point" {
		t.Fatalf("unexpected decl: %+v", d)
	}
	if len(d.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(d.Fields))
	}
	var method *ast.Decl
	for _, declID:= range unit.Scopes.Decls(d.BodyScope) {
		cand:= unit.Decl(declID)
		if cand.Kind == ast.DeclFunction {
			method = cand
		}
	}
	if method == nil {
		t.Fatal("expected to find nested method decl")
	}
	if !method.IsMethod {
		t.Fatalf("expected method.IsMethod, got %+v", method)
	}
	if method.Receiver != d.Type {
		t.Fatalf("expected method.Receiver to be the struct type")
	}
}

func TestParseStructInitInExprPosition(t *testing.T) {
	unit:= parseString(t, `f:: () { mut p: Point = Point { x: 1, y: 2 }; }`)
	d:= unit.Decl(unit.Top[0])
	body:= unit.Stmt(d.Body)
	declStmt:= unit.Stmt(body.Stmts[0])
	local:= unit.Decl(declStmt.DeclID)
	init:= unit.Expr(local.Init)
	if init.Kind != ast.ExprStructInit || init.StructName != "Point" {
		t.Fatalf("unexpected init: %+v", init)
	}
	if len(init.FieldInits) != 2 {
		t.Fatalf("expected 2 field inits, got %d", len(init.FieldInits))
	}
}

func TestParseIfElseSuppressesStructInitInCondition(t *testing.T) {
	unit:= parseString(t, `f:: () { if cond { } else { } }`)
	d:= unit.Decl(unit.Top[0])
	body:= unit.Stmt(d.Body)
	ifStmt:= unit.Stmt(body.Stmts[0])
	if ifStmt.Kind != ast.StmtIf {
		t.Fatalf("expected if stmt, got %+v", ifStmt)
	}
	cond:= unit.Expr(ifStmt.Cond)
	if cond.Kind != ast.ExprRef || cond.Name != "cond" {
		t.Fatalf("expected bare ref cond, got %+v", cond)
	}
	if ifStmt.Else == ast.NoStmtID {
		t.Fatal("expected else branch")
	}
}

func TestParseUntilLoop(t *testing.T) {
	unit:= parseString(t, `f:: () { until i < 10 { i = i + 1; } }`)
	d:= unit.Decl(unit.Top[0])
	body:= unit.Stmt(d.Body)
	untilStmt:= unit.Stmt(body.Stmts[0])
	if untilStmt.Kind != ast.StmtUntil {
		t.Fatalf("expected until stmt, got %+v", untilStmt)
	}
	cond:= unit.Expr(untilStmt.Cond)
	if cond.Kind != ast.ExprBinary || cond.Op != ast.OpLt {
		t.Fatalf("unexpected cond: %+v", cond)
	}
}

func TestParseMatchWithDefault(t *testing.T) {
	unit:= parseString(t, `
f:: () {
	match x {
		1 => ret;,
		_ => ret;,
	}
}`)
	d:= unit.Decl(unit.Top[0])
	body:= unit.Stmt(d.Body)
	matchStmt:= unit.Stmt(body.Stmts[0])
	if matchStmt.Kind != ast.StmtMatch {
		t.Fatalf("expected match stmt, got %+v", matchStmt)
	}
	if len(matchStmt.Cases) != 1 {
		t.Fatalf("expected 1 explicit case, got %d", len(matchStmt.Cases))
	}
	if matchStmt.Default == ast.NoStmtID {
		t.Fatal("expected default arm")
	}
}

func TestParseEnumDecl(t *testing.T) {
	unit:= parseString(t, `
Color:: i32 {
	Red,
	Green,
	Blue = 10,
}`)
	d:= unit.Decl(unit.Top[0])
	if d.Kind != ast.DeclEnum || len(d.Variants) != 3 {
		t.Fatalf("unexpected decl: %+v", d)
	}
	blue:= unit.Decl(d.Variants[2])
	if blue.Name != "Blue" || blue.Value != 10 {
		t.Fatalf("unexpected variant: %+v", blue)
	}
}

func TestParseUseForms(t *testing.T) {
	unit:= parseString(t, `use "std/io";`)
	d:= unit.Decl(unit.Top[0])
	if d.Kind != ast.DeclUse || d.Path != "std/io" {
		t.Fatalf("unexpected use decl: %+v", d)
	}
}

func TestParseUseWithAlias(t *testing.T) {
	unit:= parseString(t, `use io = "std/io";`)
	d:= unit.Decl(unit.Top[0])
	if d.Alias != "io" {
		t.Fatalf("unexpected alias: %+v", d)
	}
}

func TestParseRedeclarationIsFatal(t *testing.T) {
	fs:= source.NewFileSet()
	input:= `f:: () { fix x: i32 = 1; fix x: i32 = 2; }`
	id:= fs.Add("test.md", []byte(input))
	toks, err:= lexer.Lex(fs, id)
	if err != nil {
		t.Fatalf("Lex returned error: %v", err)
	}
	if _, _, err:= parser.Parse("test.md", toks); err == nil {
		t.Fatal("expected redeclaration error, got nil")
	}
}

func TestParseTemplateFunctionDecl(t *testing.T) {
	unit:= parseString(t, `identity<T>:: (v: T) T { ret v; }`)
	d:= unit.Decl(unit.Top[0])
	if d.Kind != ast.DeclTemplateFunction {
		t.Fatalf("expected template function, got %+v", d)
	}
	if len(d.TemplateParams) != 1 {
		t.Fatalf("expected 1 template param, got %d", len(d.TemplateParams))
	}
}
