package wrap

// Tree shape limits for the row tree.
const (
	maxLeafEntries = 64
	maxRowChildren = 16
)

func (e *entry) rowCount() int {
	return len(e.points) + 1
}

// rowNode is a node of the row tree. Leaves hold per-line entries;
// internal nodes cache the line and row totals of their subtree.
type rowNode struct {
	entries  []entry
	children []*rowNode
	lines    int
	rows     int
}

func (n *rowNode) leaf() bool {
	return n.children == nil
}

func (n *rowNode) recount() {
	n.lines, n.rows = 0, 0
	if n.leaf() {
		n.lines = len(n.entries)
		for i := range n.entries {
			n.rows += n.entries[i].rowCount()
		}
		return
	}
	for _, c := range n.children {
		n.lines += c.lines
		n.rows += c.rows
	}
}

// rowTree keeps line entries in a balanced tree. Reading or replacing an
// entry, the rows before a line, the line holding a row, and inserting or
// removing lines all cost O(log n) plus the size of one leaf.
type rowTree struct {
	root *rowNode
}

func newRowTree(entries []entry) rowTree {
	return rowTree{root: rowRoot(rowLeaves(entries))}
}

func rowLeaves(entries []entry) []*rowNode {
	out := make([]*rowNode, 0, len(entries)/maxLeafEntries+1)
	for len(entries) > 0 {
		n := min(len(entries), maxLeafEntries)
		chunk := make([]entry, n)
		copy(chunk, entries[:n])
		leaf := &rowNode{entries: chunk}
		leaf.recount()
		out = append(out, leaf)
		entries = entries[n:]
	}
	return out
}

func rowGroup(nodes []*rowNode) []*rowNode {
	out := make([]*rowNode, 0, len(nodes)/maxRowChildren+1)
	for len(nodes) > 0 {
		n := min(len(nodes), maxRowChildren)
		children := make([]*rowNode, n)
		copy(children, nodes[:n])
		parent := &rowNode{children: children}
		parent.recount()
		out = append(out, parent)
		nodes = nodes[n:]
	}
	return out
}

func rowRoot(nodes []*rowNode) *rowNode {
	if len(nodes) == 0 {
		return &rowNode{}
	}
	for len(nodes) > 1 {
		nodes = rowGroup(nodes)
	}
	return nodes[0]
}

func (t rowTree) len() int  { return t.root.lines }
func (t rowTree) rows() int { return t.root.rows }

// get returns entry i, which must be in range.
func (t rowTree) get(i int) entry {
	n := t.root
	for !n.leaf() {
		for _, c := range n.children {
			if i < c.lines {
				n = c
				break
			}
			i -= c.lines
		}
	}
	return n.entries[i]
}

// set replaces entry i and fixes the row totals above it.
func (t rowTree) set(i int, e entry) {
	if i < 0 || i >= t.root.lines {
		return
	}
	t.root.set(i, e)
}

func (n *rowNode) set(i int, e entry) {
	if n.leaf() {
		n.rows += e.rowCount() - n.entries[i].rowCount()
		n.entries[i] = e
		return
	}
	for _, c := range n.children {
		if i < c.lines {
			before := c.rows
			c.set(i, e)
			n.rows += c.rows - before
			return
		}
		i -= c.lines
	}
}

// insert adds entries before line at; at == len() appends.
func (t *rowTree) insert(at int, entries []entry) {
	if len(entries) == 0 {
		return
	}
	at = max(0, min(at, t.root.lines))
	t.root = rowRoot(t.root.insert(at, entries))
}

func (n *rowNode) insert(at int, entries []entry) []*rowNode {
	if n.leaf() {
		merged := make([]entry, 0, len(n.entries)+len(entries))
		merged = append(merged, n.entries[:at]...)
		merged = append(merged, entries...)
		merged = append(merged, n.entries[at:]...)
		if len(merged) <= maxLeafEntries {
			n.entries = merged
			n.recount()
			return []*rowNode{n}
		}
		return rowLeaves(merged)
	}
	idx := len(n.children) - 1
	for i, c := range n.children {
		if at <= c.lines {
			idx = i
			break
		}
		at -= c.lines
	}
	repl := n.children[idx].insert(at, entries)
	children := make([]*rowNode, 0, len(n.children)+len(repl)-1)
	children = append(children, n.children[:idx]...)
	children = append(children, repl...)
	children = append(children, n.children[idx+1:]...)
	if len(children) <= maxRowChildren {
		n.children = children
		n.recount()
		return []*rowNode{n}
	}
	return rowGroup(children)
}

// remove drops lines [from, to).
func (t *rowTree) remove(from, to int) {
	from = max(0, from)
	to = min(to, t.root.lines)
	if from >= to {
		return
	}
	t.root.remove(from, to)
	for !t.root.leaf() && len(t.root.children) == 1 {
		t.root = t.root.children[0]
	}
	if !t.root.leaf() && len(t.root.children) == 0 {
		t.root = &rowNode{}
	}
}

func (n *rowNode) remove(from, to int) {
	if n.leaf() {
		entries := make([]entry, 0, len(n.entries)-(to-from))
		entries = append(entries, n.entries[:from]...)
		entries = append(entries, n.entries[to:]...)
		n.entries = entries
		n.recount()
		return
	}
	kept := n.children[:0]
	offset := 0
	for _, c := range n.children {
		start, end := offset, offset+c.lines
		offset = end
		lo, hi := max(from, start), min(to, end)
		if lo < hi {
			c.remove(lo-start, hi-start)
		}
		if c.lines == 0 {
			continue
		}
		if k := len(kept); k > 0 && kept[k-1].leaf() && c.leaf() && kept[k-1].lines+c.lines <= maxLeafEntries {
			prev := kept[k-1]
			prev.entries = append(prev.entries, c.entries...)
			prev.recount()
			continue
		}
		kept = append(kept, c)
	}
	for i := len(kept); i < len(n.children); i++ {
		n.children[i] = nil
	}
	n.children = kept
	n.recount()
}

// all returns a copy of every entry in line order.
func (t rowTree) all() []entry {
	return t.root.collect(make([]entry, 0, t.root.lines))
}

func (n *rowNode) collect(out []entry) []entry {
	if n.leaf() {
		return append(out, n.entries...)
	}
	for _, c := range n.children {
		out = c.collect(out)
	}
	return out
}

// prefix returns the number of rows in lines [0, i).
func (t rowTree) prefix(i int) int {
	if i <= 0 {
		return 0
	}
	if i >= t.root.lines {
		return t.root.rows
	}
	sum := 0
	n := t.root
	for !n.leaf() {
		for _, c := range n.children {
			if i < c.lines {
				n = c
				break
			}
			i -= c.lines
			sum += c.rows
		}
	}
	for k := range n.entries[:i] {
		sum += n.entries[k].rowCount()
	}
	return sum
}

// search returns the line whose rows contain row, with the rows before it.
// Rows past the end return (len(), rows()).
func (t rowTree) search(row int) (line, before int) {
	if row >= t.root.rows {
		return t.root.lines, t.root.rows
	}
	n := t.root
	for !n.leaf() {
		for _, c := range n.children {
			if row < c.rows {
				n = c
				break
			}
			row -= c.rows
			line += c.lines
			before += c.rows
		}
	}
	for k := range n.entries {
		r := n.entries[k].rowCount()
		if row < r {
			return line, before
		}
		row -= r
		line++
		before += r
	}
	return line, before
}
