package cursor

import "github.com/kobzarvs/qtext/internal/document"

// Selection is an anchor plus the active end that carries the caret. An
// empty selection is just a cursor.
type Selection struct {
	Anchor document.Pos
	Active Cursor
}

// Point returns a collapsed selection at c.
func Point(c Cursor) Selection {
	return Selection{Anchor: c.Pos(), Active: c}
}

func (s Selection) Empty() bool {
	return s.Anchor == s.Active.Pos()
}

// Range returns the selected span with Start <= End.
func (s Selection) Range() document.Range {
	return document.Range{Start: s.Anchor, End: s.Active.Pos()}.Normalize()
}

// Collapse drops the anchor onto the caret.
func (s Selection) Collapse() Selection {
	return Point(s.Active)
}

// Clamp keeps both ends inside doc.
func (s Selection) Clamp(doc Doc) Selection {
	s.Active = s.Active.Clamp(doc)
	a := At(s.Anchor.Line, s.Anchor.Col).Clamp(doc)
	s.Anchor = a.Pos()
	return s
}

// MoveTo places the caret at c. With extend the anchor stays put,
// otherwise the selection collapses onto c.
func (s Selection) MoveTo(c Cursor, extend bool) Selection {
	if extend {
		s.Active = c
		return s
	}
	return Point(c)
}

// Direction names a caret motion.
type Direction int

const (
	DirLeft Direction = iota
	DirRight
	DirUp
	DirDown
	DirWordLeft
	DirWordRight
	DirLineStart
	DirLineEnd
	DirFirstNonBlank
	DirDocStart
	DirDocEnd
)

// Move applies d n times. A plain horizontal move on a non-empty selection
// collapses to the matching edge instead of moving.
func (s Selection) Move(doc Doc, d Direction, n int, extend bool) Selection {
	if n < 1 {
		n = 1
	}
	if !extend && !s.Empty() {
		r := s.Range()
		switch d {
		case DirLeft:
			return Point(FromPos(r.Start))
		case DirRight:
			return Point(FromPos(r.End))
		}
	}
	c := s.Active
	switch d {
	case DirLeft:
		c = c.Left(doc, n)
	case DirRight:
		c = c.Right(doc, n)
	case DirUp:
		c = c.Up(doc, n)
	case DirDown:
		c = c.Down(doc, n)
	case DirWordLeft:
		for i := 0; i < n; i++ {
			c = c.WordLeft(doc)
		}
	case DirWordRight:
		for i := 0; i < n; i++ {
			c = c.WordRight(doc)
		}
	case DirLineStart:
		c = c.LineStart()
	case DirLineEnd:
		c = c.LineEnd(doc)
	case DirFirstNonBlank:
		// Toggle between indentation and column zero.
		fnb := c.FirstNonBlank(doc)
		if c.Col == fnb.Col {
			c = c.LineStart()
		} else {
			c = fnb
		}
	case DirDocStart:
		c = DocumentStart()
	case DirDocEnd:
		c = DocumentEnd(doc)
	}
	return s.MoveTo(c, extend)
}

// SelectAll spans the whole document with the caret at the end.
func SelectAll(doc Doc) Selection {
	return Selection{Anchor: document.Pos{}, Active: DocumentEnd(doc)}
}

// SelectWord selects the run of same-class graphemes around p.
func SelectWord(doc Doc, p document.Pos) Selection {
	c := FromPos(p).Clamp(doc)
	gs := document.Graphemes(doc.Line(c.Line))
	if len(gs) == 0 {
		return Point(c)
	}
	i := min(c.Col, len(gs)-1)
	class := document.ClassOf(gs[i])
	from, to := i, i+1
	for from > 0 && document.ClassOf(gs[from-1]) == class {
		from--
	}
	for to < len(gs) && document.ClassOf(gs[to]) == class {
		to++
	}
	return Selection{
		Anchor: document.Pos{Line: c.Line, Col: from},
		Active: At(c.Line, to),
	}
}

// SelectLine selects line i including its terminator when there is one.
func SelectLine(doc Doc, i int) Selection {
	c := At(i, 0).Clamp(doc)
	end := At(c.Line+1, 0)
	if c.Line == doc.LineCount()-1 {
		end = c.LineEnd(doc)
	}
	return Selection{Anchor: c.Pos(), Active: end}
}
