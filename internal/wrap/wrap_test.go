package wrap

import (
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/kobzarvs/qtext/internal/document"
)

func TestHardBreakWithoutBoundary(t *testing.T) {
	doc := document.FromString("a\nbb\nccc")
	got := ComputeWrapPoints(doc.Line(2), 2, 4)
	if !slices.Equal(got, []int{2}) {
		t.Fatalf("points = %v, want [2]", got)
	}
	c := NewCache(doc, 2, 4)
	if n := c.VirtualLineCount(); n != 4 {
		t.Fatalf("VirtualLineCount = %d, want 4", n)
	}
	var rows []string
	for seg := 0; seg < c.Rows(2); seg++ {
		from, to := c.Segment(2, seg)
		rows = append(rows, doc.LineSlice(2, from, to))
	}
	if !slices.Equal(rows, []string{"cc", "c"}) {
		t.Fatalf("rows = %q", rows)
	}
}

func TestWrapAtWordBoundary(t *testing.T) {
	cases := []struct {
		line  string
		width int
		want  []int
	}{
		{"hello world", 8, []int{6}},
		{"hello world foo", 11, []int{12}},
		{"foo.bar.baz", 9, []int{8}},
		{"short", 10, nil},
		{"", 4, nil},
		{"abcdefgh", 3, []int{3, 6}},
		{"a    b", 2, []int{5}},
		{"trailing   ", 8, nil},
	}
	for _, tc := range cases {
		got := ComputeWrapPoints(tc.line, tc.width, 4)
		if !slices.Equal(got, tc.want) {
			t.Fatalf("ComputeWrapPoints(%q, %d) = %v, want %v", tc.line, tc.width, got, tc.want)
		}
	}
}

func TestWrapWideAndTabs(t *testing.T) {
	// Each CJK glyph is two cells.
	if got := ComputeWrapPoints("中文字符", 5, 4); !slices.Equal(got, []int{2}) {
		t.Fatalf("wide points = %v, want [2]", got)
	}
	// A glyph wider than the row still gets a row of its own.
	if got := ComputeWrapPoints("中中", 1, 4); !slices.Equal(got, []int{1}) {
		t.Fatalf("narrow points = %v, want [1]", got)
	}
	// "ab" + tab reaches cell 4, so "cd" no longer fits in 5.
	if got := ComputeWrapPoints("ab\tcd", 5, 4); !slices.Equal(got, []int{3}) {
		t.Fatalf("tab points = %v, want [3]", got)
	}
	// With tab size 3 the tab is a single cell.
	if got := ComputeWrapPoints("ab\tcd", 5, 3); got != nil {
		t.Fatalf("tab size 3 points = %v, want none", got)
	}
}

func TestWrapPointsInvariants(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	alphabet := []string{"a", "b", " ", ".", "\t", "中", "🇯🇵", "é", "-"}
	for i := 0; i < 500; i++ {
		var b strings.Builder
		for n := rng.Intn(60); n > 0; n-- {
			b.WriteString(alphabet[rng.Intn(len(alphabet))])
		}
		line := b.String()
		width := rng.Intn(12) + 1
		tab := rng.Intn(8) + 1
		got := ComputeWrapPoints(line, width, tab)
		again := ComputeWrapPoints(line, width, tab)
		if !slices.Equal(got, again) {
			t.Fatalf("non-deterministic for %q", line)
		}
		prev := 0
		for _, p := range got {
			if p <= prev {
				t.Fatalf("points %v not strictly increasing for %q", got, line)
			}
			prev = p
		}
		if prev > document.GraphemeCount(line) {
			t.Fatalf("last point %d past line length for %q", prev, line)
		}
	}
}

func TestDisplayWidth(t *testing.T) {
	cases := []struct {
		s    string
		want int
	}{
		{"abc", 3},
		{"中文", 4},
		{"é", 1},
		{"\tx", 5},
		{"ab\tx", 5},
	}
	for _, tc := range cases {
		if got := Width(tc.s, 4); got != tc.want {
			t.Fatalf("Width(%q) = %d, want %d", tc.s, got, tc.want)
		}
	}
	if got := CellOf("a中b", 2, 4); got != 3 {
		t.Fatalf("CellOf = %d, want 3", got)
	}
	if got := ColAt("a中b", 2, 4); got != 1 {
		t.Fatalf("ColAt inside wide glyph = %d, want 1", got)
	}
	if got := ColAt("a中b", 10, 4); got != 3 {
		t.Fatalf("ColAt past end = %d, want 3", got)
	}
}
