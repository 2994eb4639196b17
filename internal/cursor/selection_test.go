package cursor

import (
	"testing"

	"github.com/kobzarvs/qtext/internal/document"
)

func TestExtendKeepsAnchor(t *testing.T) {
	doc := document.FromString("hello\nworld")
	s := Point(At(0, 1))
	s = s.Move(doc, DirRight, 3, true)
	s = s.Move(doc, DirDown, 1, true)
	if s.Anchor != (document.Pos{Line: 0, Col: 1}) {
		t.Fatalf("Anchor = %+v", s.Anchor)
	}
	if got := doc.Slice(s.Range()); got != "ello\nworl" {
		t.Fatalf("selected = %q", got)
	}
}

func TestPlainMoveCollapses(t *testing.T) {
	doc := document.FromString("hello")
	s := Selection{Anchor: document.Pos{Col: 1}, Active: At(0, 4)}
	if got := s.Move(doc, DirLeft, 1, false); got.Active.Col != 1 || !got.Empty() {
		t.Fatalf("left collapse = %+v", got)
	}
	if got := s.Move(doc, DirRight, 1, false); got.Active.Col != 4 || !got.Empty() {
		t.Fatalf("right collapse = %+v", got)
	}
	if got := s.Move(doc, DirLineEnd, 1, false); got.Active.Col != 5 || !got.Empty() {
		t.Fatalf("line end = %+v", got)
	}
}

func TestReversedSelectionRange(t *testing.T) {
	s := Selection{Anchor: document.Pos{Line: 2, Col: 0}, Active: At(1, 3)}
	r := s.Range()
	if r.Start != (document.Pos{Line: 1, Col: 3}) || r.End != (document.Pos{Line: 2}) {
		t.Fatalf("Range = %+v", r)
	}
}

func TestFirstNonBlankToggles(t *testing.T) {
	doc := document.FromString("    code")
	s := Point(At(0, 6)).Move(doc, DirFirstNonBlank, 1, false)
	if s.Active.Col != 4 {
		t.Fatalf("Col = %d, want 4", s.Active.Col)
	}
	s = s.Move(doc, DirFirstNonBlank, 1, false)
	if s.Active.Col != 0 {
		t.Fatalf("Col = %d, want 0", s.Active.Col)
	}
}

func TestSelectWordAndLine(t *testing.T) {
	doc := document.FromString("let foo_bar = 1\nnext")
	if got := doc.Slice(SelectWord(doc, document.Pos{Col: 6}).Range()); got != "foo_bar" {
		t.Fatalf("SelectWord = %q", got)
	}
	if got := doc.Slice(SelectLine(doc, 0).Range()); got != "let foo_bar = 1\n" {
		t.Fatalf("SelectLine(0) = %q", got)
	}
	if got := doc.Slice(SelectLine(doc, 1).Range()); got != "next" {
		t.Fatalf("SelectLine(1) = %q", got)
	}
	if got := doc.Slice(SelectAll(doc).Range()); got != doc.Text() {
		t.Fatalf("SelectAll = %q", got)
	}
}

func TestSelectionClamp(t *testing.T) {
	doc := document.FromString("ab")
	s := Selection{Anchor: document.Pos{Line: 3, Col: 3}, Active: At(5, 0)}.Clamp(doc)
	if s.Anchor != (document.Pos{Col: 2}) || s.Active.Pos() != (document.Pos{Col: 2}) {
		t.Fatalf("Clamp = %+v", s)
	}
}
