// Package project locates and parses a meddle.toml project manifest:
// the compiler options (NamedMIR, Debug, Time) plus an ordered list of
// source files and directories to compile.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// ErrPackageSectionMissing indicates [package] is absent from a manifest.
var ErrPackageSectionMissing = errors.New("missing [package]")

// Options mirrors the CLI options, settable from either the
// manifest's [build] table or a command-line flag (the flag wins —
// see cmd/meddle's flag/manifest merge).
type Options struct {
	NamedMIR bool
	Debug    bool
	Time     bool
}

// Manifest is a parsed meddle.toml: its own location, the resolved
// options, and the ordered file/directory list under [package].
type Manifest struct {
	Path    string
	Root    string
	Name    string
	Options Options
	Sources []string
}

type manifestFile struct {
	Package packageConfig `toml:"package"`
	Build   buildConfig   `toml:"build"`
}

type packageConfig struct {
	Name    string   `toml:"name"`
	Sources []string `toml:"sources"`
}

type buildConfig struct {
	NamedMIR bool `toml:"named_mir"`
	Debug    bool `toml:"debug"`
	Time     bool `toml:"time"`
}

// Find walks up from startDir looking for meddle.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "meddle.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load parses the manifest at path, resolving each relative source
// entry against the manifest's own directory.
func Load(path string) (*Manifest, error) {
	var cfg manifestFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if strings.TrimSpace(cfg.Package.Name) == "" {
		return nil, fmt.Errorf("%s: missing [package].name", path)
	}
	if len(cfg.Package.Sources) == 0 {
		return nil, fmt.Errorf("%s: [package].sources is empty", path)
	}

	root := filepath.Dir(path)
	sources := make([]string, len(cfg.Package.Sources))
	for i, s := range cfg.Package.Sources {
		s = filepath.FromSlash(strings.TrimSpace(s))
		if filepath.IsAbs(s) {
			sources[i] = filepath.Clean(s)
		} else {
			sources[i] = filepath.Join(root, s)
		}
	}

	return &Manifest{
		Path: path,
		Root: root,
		Name: strings.TrimSpace(cfg.Package.Name),
		Options: Options{
			NamedMIR: cfg.Build.NamedMIR,
			Debug:    cfg.Build.Debug,
			Time:     cfg.Build.Time,
		},
		Sources: sources,
	}, nil
}

// ExpandSources walks each manifest source entry, returning every
// .mdl file directly inside a directory entry (sorted by name;
// subdirectories are not searched) and every file entry verbatim. Mirrors the file/dir duality a meddle.toml [package].sources
// list allows.
func ExpandSources(sources []string) ([]string, error) {
	var files []string
	for _, s := range sources {
		info, err := os.Stat(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		if !info.IsDir() {
			files = append(files, s)
			continue
		}
		entries, err := os.ReadDir(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s, err)
		}
		var dirFiles []string
		for _, e := range entries {
			if e.IsDir() || filepath.Ext(e.Name()) != ".mdl" {
				continue
			}
			dirFiles = append(dirFiles, filepath.Join(s, e.Name()))
		}
		files = append(files, dirFiles...)
	}
	return files, nil
}
