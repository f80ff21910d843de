package resolve

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/unit"
)

// resolveTypeSpec disambiguates an `Ident::Ident` expression parsed as a
// bare ExprTypeSpec (EnumName/VariantName). A name that resolves to a
// DeclUse (an aliased `use Alias = "path"`, which the parser already
// inserts into scope under its alias) reinterprets the node as
// ExprUseSpec, per the `UseName::Sym` shape; a name that
// resolves to a DeclEnum keeps it as an enum-variant reference. Any other
// resolution, or no resolution at all, is fatal — this is the same
// qualifier ambiguity the grammar leaves for a later pass to
// settle, and the two spellings are otherwise indistinguishable at parse
// time.
func resolveTypeSpec(u *unit.TranslationUnit, scope ast.ScopeID, id ast.ExprID) error {
	e:= u.AST.Expr(id)
	declID, ok:= u.AST.Scopes.Lookup(scope, e.EnumName)
	if !ok {
		return diag.Errorf(e.Loc, "unresolved name %q", e.EnumName)
	}
	d:= u.AST.Decl(declID)
	switch d.Kind {
	case ast.DeclEnum:
		for _, vID:= range d.Variants {
			v:= u.AST.Decl(vID)
			if v.Name == e.VariantName {
				e.Decl = vID
				e.Type = d.Type
				return nil
			}
		}
		return diag.Errorf(e.Loc, "enum %q has no variant %q", e.EnumName, e.VariantName)
	case ast.DeclUse:
		target:= u.Imports[declID]
		if target == nil {
			return diag.Errorf(e.Loc, "internal: use alias %q never resolved to a unit", e.EnumName)
		}
		symID, ok:= target.AST.Scopes.Lookup(target.AST.Scopes.Root(), e.VariantName)
		if !ok {
			return diag.Errorf(e.Loc, "%q has no symbol %q", e.EnumName, e.VariantName)
		}
		symDecl:= target.AST.Decl(symID)
		if !symDecl.Runes.Has(ast.RunePublic) {
			return diag.Errorf(e.Loc, "%s::%s is not public", e.EnumName, e.VariantName)
		}
		e.Kind = ast.ExprUseSpec
		e.UseName = e.EnumName
		e.Sym = e.VariantName
		e.Decl = symID
		e.Type = u.AST.Types.Import(target.AST.Types, symDecl.Type)
		return nil
	default:
		return diag.Errorf(e.Loc, "%q is neither an enum nor a use alias", e.EnumName)
	}
}
