package wrap

import "github.com/kobzarvs/qtext/internal/document"

// Source is the document surface the cache reads.
type Source interface {
	LineCount() int
	Line(i int) string
	LineLen(i int) int
}

type entry struct {
	text   string
	points []int
	valid  bool
}

// Cache holds wrap points per logical line. Entries are recomputed lazily
// and only for lines that changed; a row tree over the entries answers
// virtual row queries and absorbs line inserts and removals in O(log n).
type Cache struct {
	src     Source
	width   int
	tabSize int
	enabled bool

	tree    rowTree
	pending []int
	stale   bool
}

// NewCache returns a cache over src. Wrapping is enabled when width > 0.
func NewCache(src Source, width, tabSize int) *Cache {
	c := &Cache{src: src, width: width, tabSize: tabSize, enabled: true}
	c.Reset()
	return c
}

// Reset drops every entry, for a new or reloaded document.
func (c *Cache) Reset() {
	c.tree = newRowTree(make([]entry, c.src.LineCount()))
	c.pending = c.pending[:0]
	c.stale = true
}

// SetSource swaps the document and resets.
func (c *Cache) SetSource(src Source) {
	c.src = src
	c.Reset()
}

func (c *Cache) Width() int { return c.width }

func (c *Cache) SetWidth(width int) {
	if width != c.width {
		c.width = width
		c.invalidateAll()
	}
}

func (c *Cache) TabSize() int { return c.tabSize }

func (c *Cache) SetTabSize(tabSize int) {
	if tabSize != c.tabSize {
		c.tabSize = tabSize
		c.invalidateAll()
	}
}

// Enabled reports whether lines wrap. Disabled, every line is one row.
func (c *Cache) Enabled() bool {
	return c.enabled && c.width > 0
}

func (c *Cache) SetEnabled(on bool) {
	if on != c.enabled {
		c.enabled = on
		c.invalidateAll()
	}
}

// invalidateAll leaves every line to be rewrapped on the next query.
func (c *Cache) invalidateAll() {
	c.pending = c.pending[:0]
	c.stale = true
}

// Invalidate marks line i for recomputation. Its old row count stands
// until then.
func (c *Cache) Invalidate(i int) {
	if c.stale || i < 0 || i >= c.tree.len() {
		return
	}
	e := c.tree.get(i)
	if !e.valid {
		return
	}
	e.valid = false
	c.tree.set(i, e)
	c.pending = append(c.pending, i)
}

// Shift accounts for delta lines inserted (delta > 0) or removed
// (delta < 0) starting at line at.
func (c *Cache) Shift(at, delta int) {
	if delta == 0 {
		return
	}
	at = max(0, min(at, c.tree.len()))
	if delta > 0 {
		c.tree.insert(at, make([]entry, delta))
		if c.stale {
			return
		}
		for k, i := range c.pending {
			if i >= at {
				c.pending[k] = i + delta
			}
		}
		for i := at; i < at+delta; i++ {
			c.pending = append(c.pending, i)
		}
		return
	}
	to := min(at-delta, c.tree.len())
	c.tree.remove(at, to)
	if c.stale {
		return
	}
	kept := c.pending[:0]
	for _, i := range c.pending {
		switch {
		case i < at:
			kept = append(kept, i)
		case i >= to:
			kept = append(kept, i-(to-at))
		}
	}
	c.pending = kept
}

// Apply updates the cache for one document change. Only the lines the
// change touched are recomputed.
func (c *Cache) Apply(ch document.Change) {
	if ch.Empty() {
		return
	}
	if d := ch.LinesDelta(); d != 0 {
		c.Shift(ch.Start.Line+1, d)
	}
	for i := ch.Start.Line; i <= ch.NewEnd.Line; i++ {
		c.Invalidate(i)
	}
	if c.tree.len() != c.src.LineCount() {
		c.Reset()
	}
}

func (c *Cache) compute(i int) entry {
	e := entry{text: c.src.Line(i), valid: true}
	if c.Enabled() {
		e.points = ComputeWrapPoints(e.text, c.width, c.tabSize)
	}
	return e
}

func (c *Cache) sync() {
	if c.stale {
		entries := c.tree.all()
		for i := range entries {
			entries[i] = c.compute(i)
		}
		c.tree = newRowTree(entries)
		c.pending = c.pending[:0]
		c.stale = false
		return
	}
	for _, i := range c.pending {
		if i < c.tree.len() && !c.tree.get(i).valid {
			c.tree.set(i, c.compute(i))
		}
	}
	c.pending = c.pending[:0]
}

// Points returns the wrap points of line i.
func (c *Cache) Points(i int) []int {
	if i < 0 || i >= c.tree.len() {
		return nil
	}
	c.sync()
	e := c.tree.get(i)
	if e.text != c.src.Line(i) {
		e = c.compute(i)
		c.tree.set(i, e)
	}
	return e.points
}

// Rows returns how many rows line i occupies.
func (c *Cache) Rows(i int) int {
	return len(c.Points(i)) + 1
}

// VirtualLineCount is the total number of rows.
func (c *Cache) VirtualLineCount() int {
	c.sync()
	return c.tree.rows()
}

// RowStart returns the first row of line i.
func (c *Cache) RowStart(i int) int {
	c.sync()
	return c.tree.prefix(max(0, min(i, c.tree.len())))
}

// VisualRow returns the row that holds p.
func (c *Cache) VisualRow(p document.Pos) int {
	if c.tree.len() == 0 {
		return 0
	}
	line := max(0, min(p.Line, c.tree.len()-1))
	return c.RowStart(line) + SegmentOf(c.Points(line), p.Col)
}

// LineForRow maps a row to its logical line and segment. Rows past the end
// clamp to the last row.
func (c *Cache) LineForRow(row int) (line, seg int) {
	c.sync()
	n := c.tree.len()
	if n == 0 {
		return 0, 0
	}
	total := c.tree.rows()
	row = max(0, min(row, total-1))
	line, before := c.tree.search(row)
	if line >= n {
		line = n - 1
		before = c.tree.prefix(line)
	}
	return line, row - before
}

// PosForRow returns the position at cell within row, measured from the
// row start.
func (c *Cache) PosForRow(row, cell int) document.Pos {
	line, seg := c.LineForRow(row)
	from, to := SegmentBounds(c.Points(line), seg, c.src.LineLen(line))
	text := document.SliceCols(c.src.Line(line), from, to)
	col := from + ColAt(text, cell, c.tabSize)
	// Landing past a wrapped row's end puts the caret on its last grapheme.
	if col >= to && to < c.src.LineLen(line) {
		col = max(from, to-1)
	}
	return document.Pos{Line: line, Col: col}
}

// Segment returns the grapheme range of row seg of line i.
func (c *Cache) Segment(i, seg int) (from, to int) {
	return SegmentBounds(c.Points(i), seg, c.src.LineLen(i))
}
