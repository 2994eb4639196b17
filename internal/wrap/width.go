package wrap

import (
	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"

	"github.com/kobzarvs/qtext/internal/document"
)

const DefaultTabSize = 4

func tabAdvance(cell, tabSize int) int {
	if tabSize <= 0 {
		tabSize = DefaultTabSize
	}
	return tabSize - cell%tabSize
}

// GraphemeWidth returns the cells taken by cluster g drawn at cell.
// Tabs run to the next tab stop; wide glyphs take two cells.
func GraphemeWidth(g string, cell, tabSize int) int {
	if g == "\t" {
		return tabAdvance(cell, tabSize)
	}
	if len(g) == 1 {
		if g[0] < 0x20 || g[0] == 0x7f {
			return 0
		}
		return 1
	}
	w := runewidth.StringWidth(g)
	if w <= 0 {
		w = max(uniseg.StringWidth(g), 0)
	}
	return w
}

// Width returns the display width of s starting at cell 0.
func Width(s string, tabSize int) int {
	cell := 0
	for _, g := range document.Graphemes(s) {
		cell += GraphemeWidth(g, cell, tabSize)
	}
	return cell
}

// CellOf returns the cell where grapheme col of s starts.
func CellOf(s string, col, tabSize int) int {
	cell := 0
	for i, g := range document.Graphemes(s) {
		if i >= col {
			break
		}
		cell += GraphemeWidth(g, cell, tabSize)
	}
	return cell
}

// ColAt returns the grapheme column drawn at cell. Cells past the end map
// to the line length; a cell inside a wide glyph maps to that glyph.
func ColAt(s string, cell, tabSize int) int {
	pos := 0
	gs := document.Graphemes(s)
	for i, g := range gs {
		w := GraphemeWidth(g, pos, tabSize)
		if cell < pos+w {
			return i
		}
		pos += w
	}
	return len(gs)
}
