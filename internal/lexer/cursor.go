package lexer

import (
	"plume/internal/source"
)

// Cursor is a byte cursor over one file's content.
type Cursor struct {
	file *source.File
	off  uint32
}

func NewCursor(file *source.File) Cursor {
	return Cursor{file: file}
}

func (c *Cursor) EOF() bool {
	return int(c.off) >= len(c.file.Content)
}

// Peek возвращает текущий байт, не сдвигая курсор. На EOF — 0.
func (c *Cursor) Peek() byte {
	if c.EOF() {
		return 0
	}
	return c.file.Content[c.off]
}

// Peek2 returns the current and the next byte when both exist.
func (c *Cursor) Peek2() (b0, b1 byte, ok bool) {
	if int(c.off)+1 >= len(c.file.Content) {
		return 0, 0, false
	}
	return c.file.Content[c.off], c.file.Content[c.off+1], true
}

func (c *Cursor) Bump() byte {
	b := c.Peek()
	if !c.EOF() {
		c.off++
	}
	return b
}

func (c *Cursor) Offset() uint32 {
	return c.off
}

// SpanFrom builds a span from a saved start offset to the current position.
func (c *Cursor) SpanFrom(start uint32) source.Span {
	return source.Span{File: c.file.ID, Start: start, End: c.off}
}
