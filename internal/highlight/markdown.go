package highlight

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tree_sitter_markdown_inline "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown-inline"
)

// fence is a fenced code block. offsets holds the byte column where the
// content of each row starts.
type fence struct {
	lang       string
	startRow   int
	endRow     int
	contentRow int
	contentEnd int
	offsets    map[int]int
}

// markdownHighlights layers three passes: the block grammar, the inline
// grammar on every row outside a fence, and the fence language inside
// fences. Pipe table borders are marked last.
func (h *Highlighter) markdownHighlights(f *file, startLine, endLine int) map[int][]Span {
	if f.tree == nil {
		return nil
	}
	out := queryHighlights(h.queries["markdown"], f.tree, f.source, startLine, endLine)
	if out == nil {
		out = make(map[int][]Span)
	}
	lines := strings.Split(string(f.source), "\n")
	endLine = min(endLine, len(lines)-1)

	root := f.tree.RootNode()
	fences := collectFences(root, f.source)
	inFence := make(map[int]bool)
	for _, b := range fences {
		for row := b.startRow; row <= b.endRow; row++ {
			inFence[row] = true
		}
	}

	if h.mdInline != nil {
		parser := sitter.NewParser()
		parser.SetLanguage(tree_sitter_markdown_inline.GetLanguage())
		for row := startLine; row <= endLine; row++ {
			if inFence[row] || lines[row] == "" {
				continue
			}
			src := []byte(lines[row])
			tree, _ := parser.ParseCtx(context.Background(), nil, src)
			if tree == nil {
				continue
			}
			out[row] = append(out[row], queryHighlights(h.mdInline, tree, src, 0, 0)[0]...)
		}
	}

	for _, b := range fences {
		h.highlightFence(out, b, lines, startLine, endLine)
	}

	tables := collectTableRows(root)
	for row := startLine; row <= endLine; row++ {
		if inFence[row] || !tables[row] {
			continue
		}
		line := lines[row]
		sep := isTableSeparator(line)
		for i := 0; i < len(line); i++ {
			if c := line[i]; c == '|' || (sep && (c == '-' || c == ':')) {
				out[row] = append(out[row], Span{StartCol: i, EndCol: i + 1, Kind: "punctuation"})
			}
		}
	}
	return out
}

func walkNamed(root *sitter.Node, visit func(*sitter.Node)) {
	if root == nil {
		return
	}
	stack := []*sitter.Node{root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(n)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if c := n.NamedChild(i); c != nil {
				stack = append(stack, c)
			}
		}
	}
}

func collectFences(root *sitter.Node, source []byte) []fence {
	var out []fence
	walkNamed(root, func(n *sitter.Node) {
		if n.Type() != "fenced_code_block" {
			return
		}
		if b, ok := buildFence(n, source); ok {
			out = append(out, b)
		}
	})
	return out
}

func collectTableRows(root *sitter.Node) map[int]bool {
	rows := make(map[int]bool)
	walkNamed(root, func(n *sitter.Node) {
		if n.Type() != "pipe_table_row" && n.Type() != "pipe_table_delimiter_row" && n.Type() != "pipe_table_header" {
			return
		}
		for row := int(n.StartPoint().Row); row <= int(n.EndPoint().Row); row++ {
			rows[row] = true
		}
	})
	return rows
}

func isTableSeparator(line string) bool {
	t := strings.TrimSpace(line)
	if !strings.Contains(t, "|") || !strings.Contains(t, "-") {
		return false
	}
	return strings.Trim(t, "|-: \t") == ""
}

func buildFence(n *sitter.Node, source []byte) (fence, bool) {
	b := fence{
		startRow:   int(n.StartPoint().Row),
		endRow:     int(n.EndPoint().Row),
		contentRow: -1,
		contentEnd: -1,
		offsets:    make(map[int]int),
	}
	// The block node ends at column 0 of the row after the closing fence.
	if n.EndPoint().Column == 0 && b.endRow > b.startRow {
		b.endRow--
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Type() {
		case "info_string":
			if lang := findNamedChild(c, "language"); lang != nil {
				b.lang = nodeText(lang, source)
			} else if fields := strings.Fields(nodeText(c, source)); len(fields) > 0 {
				b.lang = fields[0]
			}
		case "code_fence_content":
			start, end := c.StartPoint(), c.EndPoint()
			b.contentRow = int(start.Row)
			b.contentEnd = int(end.Row)
			if end.Column == 0 && b.contentEnd > b.contentRow {
				b.contentEnd--
			}
			b.offsets[b.contentRow] = int(start.Column)
		}
	}
	if b.contentRow < 0 {
		return fence{}, false
	}
	b.lang = fenceLanguage(b.lang)
	return b, true
}

func findNamedChild(n *sitter.Node, kind string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c != nil && c.Type() == kind {
			return c
		}
	}
	return nil
}

func nodeText(n *sitter.Node, source []byte) string {
	start, end := int(n.StartByte()), int(n.EndByte())
	if start < 0 || end < start || end > len(source) {
		return ""
	}
	return strings.TrimSpace(string(source[start:end]))
}

func fenceLanguage(info string) string {
	s := strings.ToLower(strings.Trim(strings.TrimSpace(info), "{}."))
	switch s {
	case "golang":
		return "go"
	case "yml":
		return "yaml"
	case "shell", "sh", "zsh", "console":
		return "bash"
	case "jsonc":
		return "json"
	}
	return s
}

func (h *Highlighter) highlightFence(out map[int][]Span, b fence, lines []string, startLine, endLine int) {
	end := min(b.contentEnd, len(lines)-1)
	if end < startLine || b.contentRow > endLine || b.contentRow > end {
		return
	}
	content := make([]string, 0, end-b.contentRow+1)
	offsets := make([]int, 0, cap(content))
	for row := b.contentRow; row <= end; row++ {
		off := min(b.offsets[row], len(lines[row]))
		offsets = append(offsets, off)
		content = append(content, lines[row][off:])
	}
	emit := func(i int, spans []Span) {
		row := b.contentRow + i
		if row < startLine || row > endLine {
			return
		}
		for _, s := range spans {
			out[row] = append(out[row], Span{StartCol: s.StartCol + offsets[i], EndCol: s.EndCol + offsets[i], Kind: s.Kind})
		}
	}

	if regexLanguage(b.lang) {
		for i, text := range content {
			emit(i, regexLine(b.lang, text))
		}
		return
	}
	query, lang := h.queries[b.lang], tsLanguage(b.lang)
	if b.lang == "markdown" || query == nil || lang == nil {
		kind := "string"
		if b.lang == "" {
			kind = "comment"
		}
		for i, text := range content {
			if text != "" {
				emit(i, []Span{{StartCol: 0, EndCol: len(text), Kind: kind}})
			}
		}
		return
	}
	src := []byte(strings.Join(content, "\n"))
	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree, _ := parser.ParseCtx(context.Background(), nil, src)
	for i, spans := range queryHighlights(query, tree, src, 0, len(content)-1) {
		emit(i, spans)
	}
}
