package cursor

import (
	"testing"

	"github.com/kobzarvs/qtext/internal/document"
)

func TestPreferredColumnSurvivesShortLine(t *testing.T) {
	doc := document.FromString("hello world\nab\nhello world")
	c := At(0, 5)
	c = c.Down(doc, 1)
	if c.Line != 1 || c.Col != 2 {
		t.Fatalf("after down = (%d,%d), want (1,2)", c.Line, c.Col)
	}
	if c.Preferred != 5 {
		t.Fatalf("Preferred = %d, want 5", c.Preferred)
	}
	c = c.Down(doc, 1)
	if c.Line != 2 || c.Col != 5 {
		t.Fatalf("after second down = (%d,%d), want (2,5)", c.Line, c.Col)
	}
}

func TestHorizontalMoveResetsPreferred(t *testing.T) {
	doc := document.FromString("hello world\nab\nhello world")
	c := At(0, 5).Down(doc, 1).Left(doc, 1)
	if c.Preferred != NoPreferred {
		t.Fatalf("Preferred = %d, want none", c.Preferred)
	}
	c = c.Down(doc, 1)
	if c.Col != 1 {
		t.Fatalf("Col = %d, want 1", c.Col)
	}
}

func TestVerticalMoveClampsAtEdges(t *testing.T) {
	doc := document.FromString("abc\ndef")
	if c := At(0, 2).Up(doc, 1); c.Line != 0 || c.Col != 2 {
		t.Fatalf("up at top = (%d,%d)", c.Line, c.Col)
	}
	if c := At(1, 1).Down(doc, 10); c.Line != 1 || c.Col != 1 {
		t.Fatalf("down at bottom = (%d,%d)", c.Line, c.Col)
	}
}

func TestLeftRightCrossLines(t *testing.T) {
	doc := document.FromString("ab\ncd")
	c := At(1, 0).Left(doc, 1)
	if c.Line != 0 || c.Col != 2 {
		t.Fatalf("left across = (%d,%d), want (0,2)", c.Line, c.Col)
	}
	c = c.Right(doc, 1)
	if c.Line != 1 || c.Col != 0 {
		t.Fatalf("right across = (%d,%d), want (1,0)", c.Line, c.Col)
	}
	if c := At(0, 0).Left(doc, 3); c.Line != 0 || c.Col != 0 {
		t.Fatalf("left at start = (%d,%d)", c.Line, c.Col)
	}
}

func TestWordMotions(t *testing.T) {
	doc := document.FromString("foo  bar_baz;qux")
	c := At(0, 0).WordRight(doc)
	if c.Col != 5 {
		t.Fatalf("WordRight from 0 = %d, want 5", c.Col)
	}
	c = c.WordRight(doc)
	if c.Col != 12 {
		t.Fatalf("WordRight from 5 = %d, want 12", c.Col)
	}
	c = At(0, 16).WordLeft(doc)
	if c.Col != 13 {
		t.Fatalf("WordLeft from 16 = %d, want 13", c.Col)
	}
	c = c.WordLeft(doc)
	if c.Col != 12 {
		t.Fatalf("WordLeft from 13 = %d, want 12", c.Col)
	}
}

func TestWordMotionWrapsLines(t *testing.T) {
	doc := document.FromString("ab\ncd")
	if c := At(0, 2).WordRight(doc); c.Line != 1 || c.Col != 0 {
		t.Fatalf("WordRight at eol = (%d,%d)", c.Line, c.Col)
	}
	if c := At(1, 0).WordLeft(doc); c.Line != 0 || c.Col != 2 {
		t.Fatalf("WordLeft at bol = (%d,%d)", c.Line, c.Col)
	}
}

func TestMoveGraphemeClusters(t *testing.T) {
	doc := document.FromString("a🇯🇵b")
	c := At(0, 0).Right(doc, 2)
	if c.Col != 2 {
		t.Fatalf("Col = %d, want 2", c.Col)
	}
	if doc.LineLen(0) != 3 {
		t.Fatalf("LineLen = %d, want 3", doc.LineLen(0))
	}
}

func TestClampKeepsPreferred(t *testing.T) {
	doc := document.FromString("abc")
	c := Cursor{Line: 4, Col: 9, Preferred: 7}.Clamp(doc)
	if c.Line != 0 || c.Col != 3 || c.Preferred != 7 {
		t.Fatalf("Clamp = %+v", c)
	}
}
