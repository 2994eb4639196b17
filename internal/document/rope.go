package document

// Tree shape limits for the line rope.
const (
	maxLeafLines = 64
	maxChildren  = 16
)

// node is a node of the line rope. Leaves hold line text without
// separators; internal nodes hold children and cache subtree totals.
type node struct {
	lines    []string
	children []*node
	count    int // lines in subtree
	size     int // bytes in subtree, separators excluded
}

func (n *node) leaf() bool {
	return n.children == nil
}

func (n *node) recount() {
	n.count, n.size = 0, 0
	if n.leaf() {
		n.count = len(n.lines)
		for _, l := range n.lines {
			n.size += len(l)
		}
		return
	}
	for _, c := range n.children {
		n.count += c.count
		n.size += c.size
	}
}

// rope stores the document as a balanced tree of line chunks. Line lookup,
// single-line replacement and line insertion/removal cost O(log n) in the
// number of lines plus the size of the touched chunk.
type rope struct {
	root *node
}

func newRope(lines []string) *rope {
	return &rope{root: rootOf(buildLeaves(lines))}
}

func buildLeaves(lines []string) []*node {
	out := make([]*node, 0, len(lines)/maxLeafLines+1)
	for len(lines) > 0 {
		n := min(len(lines), maxLeafLines)
		chunk := make([]string, n)
		copy(chunk, lines[:n])
		leaf := &node{lines: chunk}
		leaf.recount()
		out = append(out, leaf)
		lines = lines[n:]
	}
	return out
}

func group(nodes []*node) []*node {
	out := make([]*node, 0, len(nodes)/maxChildren+1)
	for len(nodes) > 0 {
		n := min(len(nodes), maxChildren)
		children := make([]*node, n)
		copy(children, nodes[:n])
		parent := &node{children: children}
		parent.recount()
		out = append(out, parent)
		nodes = nodes[n:]
	}
	return out
}

func rootOf(nodes []*node) *node {
	if len(nodes) == 0 {
		return &node{}
	}
	for len(nodes) > 1 {
		nodes = group(nodes)
	}
	return nodes[0]
}

// Len returns the number of lines.
func (r *rope) Len() int {
	return r.root.count
}

// Size returns the number of bytes, separators excluded.
func (r *rope) Size() int {
	return r.root.size
}

// Line returns line i. Out-of-range indexes return "".
func (r *rope) Line(i int) string {
	if i < 0 || i >= r.root.count {
		return ""
	}
	n := r.root
	for !n.leaf() {
		for _, c := range n.children {
			if i < c.count {
				n = c
				break
			}
			i -= c.count
		}
	}
	return n.lines[i]
}

// Set replaces the text of line i.
func (r *rope) Set(i int, text string) {
	if i < 0 || i >= r.root.count {
		return
	}
	r.root.set(i, text)
}

func (n *node) set(i int, text string) {
	if n.leaf() {
		n.size += len(text) - len(n.lines[i])
		n.lines[i] = text
		return
	}
	for _, c := range n.children {
		if i < c.count {
			before := c.size
			c.set(i, text)
			n.size += c.size - before
			return
		}
		i -= c.count
	}
}

// Insert inserts lines before index at; at == Len() appends.
func (r *rope) Insert(at int, lines []string) {
	if len(lines) == 0 {
		return
	}
	at = max(0, min(at, r.root.count))
	r.root = rootOf(r.root.insert(at, lines))
}

func (n *node) insert(at int, lines []string) []*node {
	if n.leaf() {
		merged := make([]string, 0, len(n.lines)+len(lines))
		merged = append(merged, n.lines[:at]...)
		merged = append(merged, lines...)
		merged = append(merged, n.lines[at:]...)
		if len(merged) <= maxLeafLines {
			n.lines = merged
			n.recount()
			return []*node{n}
		}
		return buildLeaves(merged)
	}
	idx := len(n.children) - 1
	for i, c := range n.children {
		if at <= c.count {
			idx = i
			break
		}
		at -= c.count
	}
	repl := n.children[idx].insert(at, lines)
	children := make([]*node, 0, len(n.children)+len(repl)-1)
	children = append(children, n.children[:idx]...)
	children = append(children, repl...)
	children = append(children, n.children[idx+1:]...)
	if len(children) <= maxChildren {
		n.children = children
		n.recount()
		return []*node{n}
	}
	return group(children)
}

// Delete removes lines [from, to).
func (r *rope) Delete(from, to int) {
	from = max(0, from)
	to = min(to, r.root.count)
	if from >= to {
		return
	}
	r.root.remove(from, to)
	for !r.root.leaf() && len(r.root.children) == 1 {
		r.root = r.root.children[0]
	}
	if !r.root.leaf() && len(r.root.children) == 0 {
		r.root = &node{}
	}
}

func (n *node) remove(from, to int) {
	if n.leaf() {
		lines := make([]string, 0, len(n.lines)-(to-from))
		lines = append(lines, n.lines[:from]...)
		lines = append(lines, n.lines[to:]...)
		n.lines = lines
		n.recount()
		return
	}
	kept := n.children[:0]
	offset := 0
	for _, c := range n.children {
		start, end := offset, offset+c.count
		offset = end
		lo, hi := max(from, start), min(to, end)
		if lo < hi {
			c.remove(lo-start, hi-start)
		}
		if c.count == 0 {
			continue
		}
		if k := len(kept); k > 0 && kept[k-1].leaf() && c.leaf() && kept[k-1].count+c.count <= maxLeafLines {
			prev := kept[k-1]
			prev.lines = append(prev.lines, c.lines...)
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

// Slice returns a copy of lines [from, to).
func (r *rope) Slice(from, to int) []string {
	from = max(0, from)
	to = min(to, r.root.count)
	if from >= to {
		return nil
	}
	out := make([]string, 0, to-from)
	return r.root.collect(from, to, out)
}

func (n *node) collect(from, to int, out []string) []string {
	if n.leaf() {
		return append(out, n.lines[from:to]...)
	}
	offset := 0
	for _, c := range n.children {
		start, end := offset, offset+c.count
		offset = end
		lo, hi := max(from, start), min(to, end)
		if lo < hi {
			out = c.collect(lo-start, hi-start, out)
		}
		if end >= to {
			break
		}
	}
	return out
}

// LineStartByte returns the offset of line i in the text joined with
// single-byte separators.
func (r *rope) LineStartByte(i int) int {
	if i <= 0 {
		return 0
	}
	if i >= r.root.count {
		return r.root.size + r.root.count
	}
	off := 0
	n := r.root
	for !n.leaf() {
		for _, c := range n.children {
			if i < c.count {
				n = c
				break
			}
			i -= c.count
			off += c.size + c.count
		}
	}
	for _, l := range n.lines[:i] {
		off += len(l) + 1
	}
	return off
}

// LineAtByte maps an offset in the separator-joined text to a line and
// byte column. Offsets past the end land on the last line's end.
func (r *rope) LineAtByte(off int) (line, col int) {
	if off <= 0 || r.root.count == 0 {
		return 0, 0
	}
	n := r.root
	for !n.leaf() {
		found := false
		for _, c := range n.children {
			if off < c.size+c.count {
				n = c
				found = true
				break
			}
			off -= c.size + c.count
			line += c.count
		}
		if !found {
			last := r.root.count - 1
			return last, len(r.Line(last))
		}
	}
	for _, l := range n.lines {
		if off <= len(l) {
			return line, off
		}
		off -= len(l) + 1
		line++
	}
	last := r.root.count - 1
	return last, len(r.Line(last))
}
