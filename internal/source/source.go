// Package source manages loaded source files and the locations within them.
package source

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileID identifies a loaded file within a FileSet.
type FileID int32

// NoFileID indicates no file.
const NoFileID FileID = -1

// File holds the normalized content of one loaded source file.
type File struct {
	ID FileID
	Path string // canonicalised, absolute
	Content []byte
	Hash [32]byte
}

// Location is a human-facing source position: file, 1-based line, 1-based column.
type Location struct {
	File FileID
	Line uint32
	Column uint32
}

// String renders a location as "line:column"; use FileSet.Format for the file name.
func (l Location) String() string {
	return fmt.Sprintf("%d:%d", l.Line, l.Column)
}

// FileSet owns every loaded File, indexed by FileID and by canonical path.
type FileSet struct {
	files []File
	index map[string]FileID
}

// NewFileSet constructs an empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{index: make(map[string]FileID)}
}

// Add registers file content under path, returning a fresh FileID.
func (fs *FileSet) Add(path string, content []byte) FileID {
	n, err:= safecast.Conv[int32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("source: file count overflow: %w", err))
	}
	id:= FileID(n)
	fs.files = append(fs.files, File{
		ID: id,
		Path: path,
		Content: content,
		Hash: sha256.Sum256(content),
	})
	fs.index[path] = id
	return id
}

// Load reads and canonicalises a path, registering it as a File.
func (fs *FileSet) Load(path string) (FileID, error) {
	abs, err:= filepath.Abs(path)
	if err != nil {
		return NoFileID, err
	}
	real, err:= filepath.EvalSymlinks(abs)
	if err != nil {
		// File may not exist yet on disk in tests; fall back to the
		// lexically-cleaned absolute path.
		real = filepath.Clean(abs)
	}
	if id, ok:= fs.index[real]; ok {
		return id, nil
	}
	// #nosec G304 -- path originates from the driver's own file arguments.
	content, err:= os.ReadFile(path)
	if err != nil {
		return NoFileID, err
	}
	return fs.Add(real, content), nil
}

// Get returns the File for id.
func (fs *FileSet) Get(id FileID) *File {
	if id == NoFileID || int(id) >= len(fs.files) {
		return nil
	}
	return &fs.files[id]
}

// Path returns the canonical path registered for a file, or "" if unknown.
func (fs *FileSet) Path(id FileID) string {
	if f:= fs.Get(id); f != nil {
		return f.Path
	}
	return ""
}

// LineText returns the 1-based line's text, without its terminating newline,
// or "" if the line does not exist. Used by diagnostic rendering.
func (fs *FileSet) LineText(file FileID, line uint32) string {
	f:= fs.Get(file)
	if f == nil || line == 0 {
		return ""
	}
	lines:= bytes.Split(f.Content, []byte("\n"))
	idx:= int(line) - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return string(lines[idx])
}

// Format renders a Location as "<path>:<line>:<col>" for diagnostics.
func (fs *FileSet) Format(loc Location) string {
	return fmt.Sprintf("%s:%d:%d", fs.Path(loc.File), loc.Line, loc.Column)
}
