package unit

import (
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/nwmarino/meddle/internal/ast"
	"github.com/nwmarino/meddle/internal/lexer"
	"github.com/nwmarino/meddle/internal/parser"
	"github.com/nwmarino/meddle/internal/source"
)

// LoadAll lexes and parses every named path into a Manager. Every file is
// first read into the shared FileSet one at a time; after that each file
// owns its own types.Context and ast.Unit, so lexing and parsing fan out
// across an errgroup bounded by GOMAXPROCS. Running goroutines are not
// interrupted by a failure; the first error is returned once the group
// has finished, preserving the fatal-on-first-error policy.
func LoadAll(fs *source.FileSet, paths []string) (*Manager, error) {
	for _, p := range paths {
		if _, err := fs.Load(p); err != nil {
			return nil, err
		}
	}
	results := make([]*TranslationUnit, len(paths))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			tu, err := load(fs, p)
			if err != nil {
				return err
			}
			results[i] = tu
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	m := NewManager(fs)
	for _, tu := range results {
		m.Add(tu)
	}
	return m, nil
}

func load(fs *source.FileSet, path string) (*TranslationUnit, error) {
	fid, err := fs.Load(path)
	if err != nil {
		return nil, err
	}
	toks, err := lexer.Lex(fs, fid)
	if err != nil {
		return nil, err
	}
	canon := fs.Path(fid)
	u, _, err := parser.Parse(canon, toks)
	if err != nil {
		return nil, err
	}
	return &TranslationUnit{File: fid, Path: canon, AST: u, Imports: make(map[ast.DeclID]*TranslationUnit)}, nil
}

// ResolvePath turns a `use` path (relative to importer's directory,
// `.mdl` appended if absent) into a canonical absolute path, matching
// the rule for resolving `use` targets.
func ResolvePath(importerPath, used string) string {
	if filepath.Ext(used) == "" {
		used += ".mdl"
	}
	if filepath.IsAbs(used) {
		return filepath.Clean(used)
	}
	dir := filepath.Dir(importerPath)
	return filepath.Clean(filepath.Join(dir, used))
}

// SortedPaths returns the manager's unit paths sorted lexically, rather
// than in the order the units were added.
func SortedPaths(m *Manager) []string {
	paths := make([]string, 0, len(m.Units()))
	for _, u := range m.Units() {
		paths = append(paths, u.Path)
	}
	sort.Strings(paths)
	return paths
}
