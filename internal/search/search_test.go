package search

import (
	"errors"
	"strings"
	"testing"

	"github.com/kobzarvs/qtext/internal/document"
)

func pos(line, col int) document.Pos {
	return document.Pos{Line: line, Col: col}
}

func TestNextPreviousWrap(t *testing.T) {
	doc := document.FromString("foo bar\nbar foo\nfoo")
	e := New(0)
	if err := e.SetQuery("foo", Options{}); err != nil {
		t.Fatalf("SetQuery: %v", err)
	}
	ms := e.Matches(doc)
	if len(ms) != 3 {
		t.Fatalf("len(matches) = %d, want 3", len(ms))
	}

	r, ok := e.Next(doc, pos(2, 1))
	if !ok || r.Match.Start != pos(0, 0) || !r.Wrapped {
		t.Fatalf("Next after last = %+v, %v", r, ok)
	}
	r, ok = e.Previous(doc, pos(0, 0))
	if !ok || r.Match.Start != pos(2, 0) || !r.Wrapped {
		t.Fatalf("Previous before first = %+v, %v", r, ok)
	}
	r, _ = e.Next(doc, pos(0, 0))
	if r.Match.Start != pos(1, 4) || r.Index != 1 || r.Total != 3 {
		t.Fatalf("Next from match start = %+v", r)
	}
	r, _ = e.Previous(doc, pos(1, 4))
	if r.Match.Start != pos(0, 0) {
		t.Fatalf("Previous from match start = %+v", r)
	}
	if i, n := e.Current(); i != 0 || n != 3 {
		t.Fatalf("Current = %d/%d", i, n)
	}
}

func TestEmptyQueryAndNoMatch(t *testing.T) {
	doc := document.FromString("abc")
	e := New(0)
	if _, ok := e.Next(doc, pos(0, 0)); ok {
		t.Fatalf("Next with empty query returned ok")
	}
	_ = e.SetQuery("zzz", Options{})
	if _, ok := e.Previous(doc, pos(0, 0)); ok {
		t.Fatalf("Previous with no matches returned ok")
	}
}

func TestCaseModes(t *testing.T) {
	doc := document.FromString("Go go GO")
	e := New(0)
	_ = e.SetQuery("go", Options{})
	if n := len(e.Matches(doc)); n != 3 {
		t.Fatalf("insensitive matches = %d, want 3", n)
	}
	_ = e.SetQuery("go", Options{CaseSensitive: true})
	if n := len(e.Matches(doc)); n != 1 {
		t.Fatalf("sensitive matches = %d, want 1", n)
	}
	_ = e.SetQuery("Go", Options{SmartCase: true})
	if n := len(e.Matches(doc)); n != 1 {
		t.Fatalf("smart case upper matches = %d, want 1", n)
	}
	_ = e.SetQuery("go", Options{SmartCase: true})
	if n := len(e.Matches(doc)); n != 3 {
		t.Fatalf("smart case lower matches = %d, want 3", n)
	}
}

func TestLiteralQueryEscapesMeta(t *testing.T) {
	doc := document.FromString("a.b axb a.b")
	e := New(0)
	_ = e.SetQuery("a.b", Options{})
	if n := len(e.Matches(doc)); n != 2 {
		t.Fatalf("literal matches = %d, want 2", n)
	}
	_ = e.SetQuery("a.b", Options{Regex: true})
	if n := len(e.Matches(doc)); n != 3 {
		t.Fatalf("regex matches = %d, want 3", n)
	}
}

func TestInvalidPattern(t *testing.T) {
	doc := document.FromString("abc")
	e := New(0)
	err := e.SetQuery("a(b", Options{Regex: true})
	var se *SearchError
	if !errors.As(err, &se) || se.Kind != InvalidPattern {
		t.Fatalf("err = %v, want InvalidPattern", err)
	}
	r, ok := e.Next(doc, pos(0, 0))
	if ok || r.Err == nil {
		t.Fatalf("Next with bad pattern = %+v, %v", r, ok)
	}
}

func TestStaleListRebuilt(t *testing.T) {
	doc := document.FromString("one two one")
	e := New(0)
	_ = e.SetQuery("one", Options{})
	if n := len(e.Matches(doc)); n != 2 {
		t.Fatalf("matches = %d, want 2", n)
	}
	doc.Insert(pos(0, 0), "xx ")
	r, ok := e.Next(doc, pos(0, 0))
	if !ok || r.Match.Start != pos(0, 3) {
		t.Fatalf("Next after edit = %+v", r)
	}
}

func TestApplyPatchesTouchedLines(t *testing.T) {
	doc := document.FromString("cat\ndog\ncat dog\ncat")
	e := New(0)
	_ = e.SetQuery("cat", Options{})
	e.Matches(doc)

	edits := []func() document.Change{
		func() document.Change { return doc.Insert(pos(1, 0), "cat ") },
		func() document.Change { return doc.Insert(pos(0, 3), "\nnew\ncat") },
		func() document.Change { return doc.Delete(document.Range{Start: pos(0, 1), End: pos(3, 2)}) },
	}
	for i, edit := range edits {
		ch := edit()
		e.Apply(doc, ch)
		got := append([]Match(nil), e.Matches(doc)...)

		fresh := New(0)
		_ = fresh.SetQuery("cat", Options{})
		want := fresh.Matches(doc)
		if len(got) != len(want) {
			t.Fatalf("edit %d: %d matches, want %d (%q)", i, len(got), len(want), doc.Text())
		}
		for j := range want {
			if got[j] != want[j] {
				t.Fatalf("edit %d: match %d = %+v, want %+v", i, j, got[j], want[j])
			}
		}
	}
}

func TestMatchesUseGraphemeColumns(t *testing.T) {
	doc := document.FromString("日本🇯🇵 key ékey")
	e := New(0)
	_ = e.SetQuery("key", Options{})
	ms := e.Matches(doc)
	if len(ms) != 2 {
		t.Fatalf("matches = %d, want 2", len(ms))
	}
	if ms[0].Start != pos(0, 4) || ms[0].End != pos(0, 7) {
		t.Fatalf("first match = %+v", ms[0])
	}
	if ms[1].Start != pos(0, 9) {
		t.Fatalf("second match = %+v", ms[1])
	}
}

func TestMaxMatchesTruncates(t *testing.T) {
	doc := document.FromString(strings.Repeat("x ", 50))
	e := New(10)
	_ = e.SetQuery("x", Options{})
	if n := len(e.Matches(doc)); n != 10 {
		t.Fatalf("matches = %d, want 10", n)
	}
	if !e.Truncated() {
		t.Fatalf("Truncated = false")
	}
}

func TestEmptyRegexMatchesSkipped(t *testing.T) {
	doc := document.FromString("aab")
	e := New(0)
	_ = e.SetQuery("a*", Options{Regex: true})
	ms := e.Matches(doc)
	if len(ms) != 1 || ms[0].End != pos(0, 2) {
		t.Fatalf("matches = %+v", ms)
	}
}

func TestAgainFollowsDirection(t *testing.T) {
	doc := document.FromString("x x x")
	e := New(0)
	_ = e.SetQuery("x", Options{Direction: Backward})
	r, _ := e.Again(doc, pos(0, 2), false)
	if r.Match.Start != pos(0, 0) {
		t.Fatalf("Again backward = %+v", r)
	}
	r, _ = e.Again(doc, pos(0, 2), true)
	if r.Match.Start != pos(0, 4) {
		t.Fatalf("Again reversed = %+v", r)
	}
}

func TestInLines(t *testing.T) {
	doc := document.FromString("a\nb a\na\nb")
	e := New(0)
	_ = e.SetQuery("a", Options{})
	if got := e.InLines(doc, 1, 3); len(got) != 2 || got[0].Start != pos(1, 2) {
		t.Fatalf("InLines = %+v", got)
	}
}

func TestApplyWithoutPattern(t *testing.T) {
	for _, tc := range []struct {
		name  string
		query string
		opts  Options
	}{
		{"empty", "", Options{}},
		{"invalid regex", "(", Options{Regex: true}},
	} {
		doc := document.FromString("hello\nworld")
		e := New(0)
		_ = e.SetQuery(tc.query, tc.opts)
		e.InLines(doc, 0, 2)
		e.Matches(doc)
		e.Apply(doc, doc.Insert(pos(0, 0), "x"))
		if n := len(e.Matches(doc)); n != 0 {
			t.Fatalf("%s: %d matches, want 0", tc.name, n)
		}

		// A valid query afterwards builds against the edited text.
		_ = e.SetQuery("xh", Options{})
		e.Apply(doc, doc.Insert(pos(1, 0), "y"))
		if ms := e.Matches(doc); len(ms) != 1 || ms[0].Start != pos(0, 0) {
			t.Fatalf("%s: matches after new query = %+v", tc.name, ms)
		}
	}
}
