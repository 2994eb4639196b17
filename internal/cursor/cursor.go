// Package cursor implements the caret and selection model over a document.
// Columns are grapheme indexes. Vertical moves remember a preferred column
// so that passing through a short line does not lose horizontal position.
package cursor

import (
	"github.com/kobzarvs/qtext/internal/document"
)

// Doc is the read side of a document needed for cursor math.
type Doc interface {
	LineCount() int
	Line(i int) string
	LineLen(i int) int
}

// NoPreferred marks a cursor without a remembered column.
const NoPreferred = -1

type Cursor struct {
	Line      int
	Col       int
	Preferred int
}

// At returns a cursor at (line, col) with no preferred column.
func At(line, col int) Cursor {
	return Cursor{Line: line, Col: col, Preferred: NoPreferred}
}

// FromPos converts a document position.
func FromPos(p document.Pos) Cursor {
	return At(p.Line, p.Col)
}

func (c Cursor) Pos() document.Pos {
	return document.Pos{Line: c.Line, Col: c.Col}
}

// Clamp pulls the cursor inside doc. The preferred column is kept.
func (c Cursor) Clamp(doc Doc) Cursor {
	last := doc.LineCount() - 1
	if c.Line < 0 {
		c.Line = 0
	}
	if c.Line > last {
		c.Line = last
		c.Col = doc.LineLen(last)
	}
	if c.Col < 0 {
		c.Col = 0
	}
	if n := doc.LineLen(c.Line); c.Col > n {
		c.Col = n
	}
	return c
}

func (c Cursor) preferred() int {
	if c.Preferred >= 0 {
		return c.Preferred
	}
	return c.Col
}

func (c Cursor) vertical(doc Doc, line int) Cursor {
	pref := c.preferred()
	line = max(0, min(line, doc.LineCount()-1))
	return Cursor{Line: line, Col: min(pref, doc.LineLen(line)), Preferred: pref}
}

// Up moves n lines up, keeping the preferred column.
func (c Cursor) Up(doc Doc, n int) Cursor {
	return c.vertical(doc, c.Line-n)
}

// Down moves n lines down, keeping the preferred column.
func (c Cursor) Down(doc Doc, n int) Cursor {
	return c.vertical(doc, c.Line+n)
}

// Left moves n graphemes left, wrapping to the end of the previous line.
func (c Cursor) Left(doc Doc, n int) Cursor {
	c = c.Clamp(doc)
	for ; n > 0; n-- {
		if c.Col > 0 {
			c.Col--
		} else if c.Line > 0 {
			c.Line--
			c.Col = doc.LineLen(c.Line)
		} else {
			break
		}
	}
	c.Preferred = NoPreferred
	return c
}

// Right moves n graphemes right, wrapping to the start of the next line.
func (c Cursor) Right(doc Doc, n int) Cursor {
	c = c.Clamp(doc)
	for ; n > 0; n-- {
		if c.Col < doc.LineLen(c.Line) {
			c.Col++
		} else if c.Line < doc.LineCount()-1 {
			c.Line++
			c.Col = 0
		} else {
			break
		}
	}
	c.Preferred = NoPreferred
	return c
}

func (c Cursor) LineStart() Cursor {
	return At(c.Line, 0)
}

func (c Cursor) LineEnd(doc Doc) Cursor {
	c = c.Clamp(doc)
	return At(c.Line, doc.LineLen(c.Line))
}

// FirstNonBlank moves to the first non-whitespace grapheme of the line.
func (c Cursor) FirstNonBlank(doc Doc) Cursor {
	c = c.Clamp(doc)
	for i, g := range document.Graphemes(doc.Line(c.Line)) {
		if document.ClassOf(g) != document.ClassSpace {
			return At(c.Line, i)
		}
	}
	return c.LineEnd(doc)
}

func DocumentStart() Cursor {
	return At(0, 0)
}

func DocumentEnd(doc Doc) Cursor {
	last := doc.LineCount() - 1
	return At(last, doc.LineLen(last))
}

// WordRight skips the run under the cursor and any whitespace after it.
// At line end it moves to the next line start.
func (c Cursor) WordRight(doc Doc) Cursor {
	c = c.Clamp(doc)
	gs := document.Graphemes(doc.Line(c.Line))
	if c.Col >= len(gs) {
		return c.Right(doc, 1)
	}
	i := c.Col
	class := document.ClassOf(gs[i])
	if class != document.ClassSpace {
		for i < len(gs) && document.ClassOf(gs[i]) == class {
			i++
		}
	}
	for i < len(gs) && document.ClassOf(gs[i]) == document.ClassSpace {
		i++
	}
	return At(c.Line, i)
}

// WordLeft skips whitespace before the cursor, then the run before it.
// At line start it moves to the previous line end.
func (c Cursor) WordLeft(doc Doc) Cursor {
	c = c.Clamp(doc)
	if c.Col == 0 {
		return c.Left(doc, 1)
	}
	gs := document.Graphemes(doc.Line(c.Line))
	i := c.Col
	for i > 0 && document.ClassOf(gs[i-1]) == document.ClassSpace {
		i--
	}
	if i > 0 {
		class := document.ClassOf(gs[i-1])
		for i > 0 && document.ClassOf(gs[i-1]) == class {
			i--
		}
	}
	return At(c.Line, i)
}
