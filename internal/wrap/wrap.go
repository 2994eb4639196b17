// Package wrap breaks logical lines into display rows and keeps a per-line
// cache of the results with prefix row counts for viewport math.
package wrap

import "github.com/kobzarvs/qtext/internal/document"

// ComputeWrapPoints returns the grapheme columns where line breaks into a
// new row at the given width. Tab stops are measured from the start of each
// row. The result is strictly increasing and every row keeps at least one
// grapheme. A width <= 0 disables wrapping.
func ComputeWrapPoints(line string, width, tabSize int) []int {
	if width <= 0 || line == "" {
		return nil
	}
	gs := document.Graphemes(line)
	var points []int
	for start := 0; start < len(gs); {
		used, i := 0, start
		for i < len(gs) {
			w := GraphemeWidth(gs[i], used, tabSize)
			if i > start && used+w > width {
				break
			}
			used += w
			i++
		}
		if i >= len(gs) {
			break
		}

		var br int
		if document.ClassOf(gs[i]) == document.ClassSpace {
			// Whitespace at the limit hangs off the current row.
			br = i
			for br < len(gs) && document.ClassOf(gs[br]) == document.ClassSpace {
				br++
			}
			if br >= len(gs) {
				break
			}
		} else {
			br = wordBreak(gs, start, i)
		}
		points = append(points, br)
		start = br
	}
	return points
}

// wordBreak finds the last boundary in (start, overflow]. Without one it
// hard-breaks at overflow.
func wordBreak(gs []string, start, overflow int) int {
	for k := overflow; k > start; k-- {
		prev, cur := document.ClassOf(gs[k-1]), document.ClassOf(gs[k])
		if prev == document.ClassSpace && cur != document.ClassSpace {
			return k
		}
		if prev == document.ClassPunct && cur == document.ClassWord {
			return k
		}
	}
	return overflow
}

// SegmentOf returns the row index of col within points.
func SegmentOf(points []int, col int) int {
	seg := 0
	for seg < len(points) && col >= points[seg] {
		seg++
	}
	return seg
}

// SegmentBounds returns the grapheme range [from, to) of row seg. lineLen
// closes the last row.
func SegmentBounds(points []int, seg, lineLen int) (from, to int) {
	if seg > 0 && seg-1 < len(points) {
		from = points[seg-1]
	}
	to = lineLen
	if seg < len(points) {
		to = points[seg]
	}
	return from, to
}
