// Package unit owns every TranslationUnit produced by the parser and
// orchestrates the cross-file work that only makes sense once every file
// has been parsed: use resolution and the import graph it
// builds on. Name resolution, sema, and MIR lowering run per-unit but are
// driven from here in source order.
package unit

import (
	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/source"
)

// TranslationUnit pairs a parsed ast.Unit with the FileID it was lexed
// from and the set of units it imports via `use`.
type TranslationUnit struct {
	File source.FileID
	Path string // canonical path, the UnitManager's lookup key
	AST *ast.Unit

	// Imports records, per `use` decl (keyed by its DeclID), the
	// resolved target unit. Populated by ResolveUses.
	Imports map[ast.DeclID]*TranslationUnit
}

// Manager owns every TranslationUnit keyed by canonical file path, plus
// the FileSet all of their locations are resolved against.
type Manager struct {
	Files *source.FileSet

	units []*TranslationUnit
	index map[string]*TranslationUnit
}

// NewManager constructs an empty Manager over fs.
func NewManager(fs *source.FileSet) *Manager {
	return &Manager{Files: fs, index: make(map[string]*TranslationUnit)}
}

// Add registers u under its canonical path. Add does not check for a unit
// already registered under that path, and LoadAll adds one unit per path
// it is given.
func (m *Manager) Add(u *TranslationUnit) {
	m.units = append(m.units, u)
	m.index[u.Path] = u
}

// Lookup returns the unit already loaded for a canonical path, if any.
func (m *Manager) Lookup(path string) (*TranslationUnit, bool) {
	u, ok:= m.index[path]
	return u, ok
}

// Units returns every loaded unit, in the order they were added (which
// LoadAll preserves as the order files were named on the command line).
func (m *Manager) Units() []*TranslationUnit { return m.units }
