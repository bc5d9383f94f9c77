package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FileSet owns the files of one compilation session. IDs start at 1 so the
// zero FileID stays free for location-less diagnostics.
//
// FileSet не потокобезопасен: все Add должны завершиться до параллельного
// чтения.
type FileSet struct {
	files   []*File
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{files: make([]*File, 0, 4)}
}

// NewFileSetWithBase creates a FileSet showing paths relative to dir.
func NewFileSetWithBase(dir string) *FileSet {
	fs := NewFileSet()
	fs.SetBaseDir(dir)
	return fs
}

// SetBaseDir sets the directory paths are shown relative to.
func (fs *FileSet) SetBaseDir(dir string) {
	fs.baseDir = dir
}

// Add registers file content and returns its ID.
func (fs *FileSet) Add(path string, content []byte) FileID {
	id := FileID(len(fs.files) + 1)
	fs.files = append(fs.files, newFile(id, path, content))
	return id
}

// Load reads the file from disk and registers it.
func (fs *FileSet) Load(path string) (FileID, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return NoFile, err
	}
	return fs.Add(path, content), nil
}

// Get returns the file for id, or nil for NoFile / unknown IDs.
func (fs *FileSet) Get(id FileID) *File {
	if id == 0 || int(id) > len(fs.files) {
		return nil
	}
	return fs.files[id-1]
}

// Pos is a resolved human-readable source position.
type Pos struct {
	Path string
	Line uint32
	Col  uint32
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.Path, p.Line, p.Col)
}

// Position resolves the start of span into a path/line/column triple.
// Spans with NoFile resolve to an empty Pos.
func (fs *FileSet) Position(span Span) Pos {
	f := fs.Get(span.File)
	if f == nil {
		return Pos{}
	}
	line, col := f.LineCol(span.Start)
	return Pos{Path: fs.displayPath(f.Path), Line: line, Col: col}
}

func (fs *FileSet) displayPath(path string) string {
	if fs.baseDir == "" {
		return path
	}
	rel, err := filepath.Rel(fs.baseDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
