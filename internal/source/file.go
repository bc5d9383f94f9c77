package source

import "sort"

// File holds the content of one source file together with a precomputed
// line offset table for fast position lookups.
type File struct {
	ID      FileID
	Path    string
	Content []byte

	// lineStarts[i] — байтовое смещение начала строки i (нумерация с нуля).
	lineStarts []uint32
}

func newFile(id FileID, path string, content []byte) *File {
	starts := make([]uint32, 1, 16)
	starts[0] = 0
	for i, b := range content {
		if b == '\n' {
			starts = append(starts, uint32(i)+1)
		}
	}
	return &File{
		ID:         id,
		Path:       path,
		Content:    content,
		lineStarts: starts,
	}
}

// LineCol converts a byte offset into a 1-based line/column pair.
// Columns count bytes; the grammar is ASCII so this matches characters.
func (f *File) LineCol(offset uint32) (line, col uint32) {
	idx := sort.Search(len(f.lineStarts), func(i int) bool {
		return f.lineStarts[i] > offset
	}) - 1
	if idx < 0 {
		idx = 0
	}
	return uint32(idx) + 1, offset - f.lineStarts[idx] + 1
}

// Line returns the text of the 1-based line n without the trailing newline.
func (f *File) Line(n uint32) string {
	if n == 0 || int(n) > len(f.lineStarts) {
		return ""
	}
	start := f.lineStarts[n-1]
	end := uint32(len(f.Content))
	if int(n) < len(f.lineStarts) {
		end = f.lineStarts[n] - 1
	}
	return string(f.Content[start:end])
}
