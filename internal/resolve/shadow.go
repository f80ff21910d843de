package resolve

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/diag"
	"github.com/nwmarino/meddle/internal/unit"
)

// checkShadowing enforces the rule that an inner scope may not
// redeclare a name already visible through its parent chain. The parser
// only rejects a redeclaration within the *same* scope (ast.ScopeTree's
// Insert); the cross-scope check needs the full scope tree, which only
// exists once every scope in a unit has been pushed, so it runs as its
// own pass after every unit's refs are bound.
func checkShadowing(u *unit.TranslationUnit) error {
	st:= u.AST.Scopes
	for s:= 1; s < st.Count(); s++ {
		scope:= ast.ScopeID(s)
		parent:= st.Parent(scope)
		if parent == ast.NoScopeID {
			continue
		}
		for _, declID:= range st.Decls(scope) {
			d:= u.AST.Decl(declID)
			if _, shadowed:= st.Lookup(parent, d.Name); shadowed {
				return diag.Errorf(d.Loc, "declaration of %q shadows a visible outer declaration", d.Name)
			}
		}
	}
	return nil
}
