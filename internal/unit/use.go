package unit

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/diag"
)

// useResolver walks the `use` edges between units with a depth-first
// traversal, maintaining dense visited/stack bitsets per
// ("Maintain visited and stack sets; if a dependency is on the stack,
// fatal 'cyclical use'"). New units reachable only through a `use` path
// (never named on the command line) are loaded on demand.
type useResolver struct {
	m *Manager
	visited *bitset.BitSet
	stack *bitset.BitSet
	index map[string]uint
	next uint
}

// ResolveUses resolves every `use` declaration across every unit in m,
// loading transitively-reachable files as needed, detecting import
// cycles, and importing exported symbols into each importer's scope.
func ResolveUses(m *Manager) error {
	r:= &useResolver{m: m, visited: bitset.New(64), stack: bitset.New(64), index: make(map[string]uint)}
	// m.Units grows as r.visit loads transitively-reachable files, so
	// re-read its length each iteration rather than snapshotting it.
	for i:= 0; i < len(m.Units()); i++ {
		if err:= r.visit(m.Units()[i]); err != nil {
			return err
		}
	}
	return nil
}

func (r *useResolver) denseIndex(path string) uint {
	if i, ok:= r.index[path]; ok {
		return i
	}
	i:= r.next
	r.next++
	r.index[path] = i
	return i
}

func (r *useResolver) visit(u *TranslationUnit) error {
	id:= r.denseIndex(u.Path)
	if r.visited.Test(id) {
		return nil
	}
	r.stack.Set(id)

	for _, declID:= range u.AST.Top {
		d:= u.AST.Decl(declID)
		if d.Kind != ast.DeclUse {
			continue
		}
		target, err:= r.getOrLoad(u, d)
		if err != nil {
			return err
		}
		tid:= r.denseIndex(target.Path)
		if r.stack.Test(tid) {
			return diag.Errorf(d.Loc, "cyclical use of %q", d.Path)
		}
		if !r.visited.Test(tid) {
			if err:= r.visit(target); err != nil {
				return err
			}
		}
		u.Imports[declID] = target
		if err:= importSymbols(u, target, d); err != nil {
			return err
		}
	}

	r.stack.Clear(id)
	r.visited.Set(id)
	return nil
}

func (r *useResolver) getOrLoad(importer *TranslationUnit, d *ast.Decl) (*TranslationUnit, error) {
	resolved:= ResolvePath(importer.Path, d.Path)
	if tu, ok:= r.m.Lookup(resolved); ok {
		return tu, nil
	}
	tu, err:= load(r.m.Files, resolved)
	if err != nil {
		return nil, diag.Errorf(d.Loc, "cannot resolve use %q: %v", d.Path, err)
	}
	r.m.Add(tu)
	return tu, nil
}

// importSymbols binds target's exported declarations into importer per
// the three forms of `use`: flat, aliased, or listed.
func importSymbols(importer, target *TranslationUnit, use *ast.Decl) error {
	root:= importer.AST.Scopes.Root()

	bind:= func(name string, id ast.DeclID) error {
		if !importer.AST.Scopes.Insert(root, name, id) {
			return diag.Errorf(use.Loc, "duplicate import of %q from %q", name, use.Path)
		}
		importTypeIfNamed(importer, target, id, name)
		return nil
	}

	switch {
	case len(use.Listed) > 0:
		for _, name:= range use.Listed {
			id, ok:= target.AST.Scopes.Lookup(target.AST.Scopes.Root(), name)
			if !ok {
				return diag.Errorf(use.Loc, "%q has no exported symbol %q", use.Path, name)
			}
			if !target.AST.Decl(id).Runes.Has(ast.RunePublic) {
				return diag.Errorf(use.Loc, "%q::%q is not public", use.Path, name)
			}
			if err:= bind(name, id); err != nil {
				return err
			}
		}
	case use.Alias != "":
		// No flat import: symbols stay reachable only via Alias::Name,
		// resolved later by internal/resolve once it knows the alias
		// qualifies a use rather than an enum.
	default:
		for _, topID:= range target.AST.Top {
			td:= target.AST.Decl(topID)
			if td.Kind == ast.DeclUse || !td.Runes.Has(ast.RunePublic) {
				continue
			}
			if err:= bind(td.Name, topID); err != nil {
				return err
			}
		}
	}
	return nil
}

// importTypeIfNamed mirrors an imported struct/enum decl's type into the
// importer's own TypeContext, so `parseType`'s Deferred-name lookups (and
// Sanitate, later) can find it without reaching across units.
func importTypeIfNamed(importer, target *TranslationUnit, id ast.DeclID, localName string) {
	d:= target.AST.Decl(id)
	if d.Kind != ast.DeclStruct && d.Kind != ast.DeclEnum {
		return
	}
	_ = localName // the struct/enum's own Name already matches localName for flat/listed imports
	importer.AST.Types.Import(target.AST.Types, d.Type)
}
