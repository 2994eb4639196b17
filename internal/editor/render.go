package editor

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/document"
	"github.com/kobzarvs/qtext/internal/search"
	"github.com/kobzarvs/qtext/internal/wrap"
)

// VisualLine is one display row: segment Seg of logical line Line,
// covering graphemes [From, To).
type VisualLine struct {
	Row  int
	Line int
	Seg  int
	From int
	To   int
}

// visibleRows returns the virtual rows [first, last) in the window.
func (e *Editor) visibleRows() (first, last int) {
	total := e.wrap.VirtualLineCount()
	first = max(0, min(e.view.Top, total))
	return first, min(total, first+e.view.Height)
}

// VisibleLines returns the rows the viewport shows, top to bottom.
func (e *Editor) VisibleLines() []VisualLine {
	first, last := e.visibleRows()
	out := make([]VisualLine, 0, max(0, last-first))
	for row := first; row < last; row++ {
		line, seg := e.wrap.LineForRow(row)
		from, to := e.wrap.Segment(line, seg)
		out = append(out, VisualLine{Row: row, Line: line, Seg: seg, From: from, To: to})
	}
	return out
}

// VisibleLineRange returns the first and last logical lines on screen.
func (e *Editor) VisibleLineRange() (first, last int) {
	top, bottom := e.visibleRows()
	first, _ = e.wrap.LineForRow(top)
	last, _ = e.wrap.LineForRow(max(top, bottom-1))
	return first, last
}

// CursorCell returns the caret cell relative to the editor rect and
// whether it is on screen.
func (e *Editor) CursorCell() (x, y int, ok bool) {
	p := e.sel.Active.Pos()
	row := e.wrap.VisualRow(p)
	if !e.view.Visible(row) {
		return 0, 0, false
	}
	_, seg := e.wrap.LineForRow(row)
	from, _ := e.wrap.Segment(p.Line, seg)
	cell := wrap.Width(document.SliceCols(e.doc.Line(p.Line), from, p.Col), e.tabWidth)
	if !e.wrap.Enabled() {
		cell -= e.view.Left
	}
	if cell < 0 || cell >= e.view.Width {
		return 0, 0, false
	}
	return e.gutterWidth() + cell, row - e.view.Top, true
}

// gutterWidth is the diff marker cell, the line number and one space.
func (e *Editor) gutterWidth() int {
	if e.lineNumberMode == LineNumberOff {
		return 0
	}
	digits := len(strconv.Itoa(e.doc.LineCount()))
	return 1 + max(2, digits) + 1
}

// Render draws the editor into r of s: text rows, then the status line
// and the command line on the last two rows. It never moves the viewport
// to follow the caret.
func (e *Editor) Render(s tcell.Screen, r Rect) {
	if r.W <= 0 || r.H <= 0 {
		return
	}
	if r != e.rect || e.gutterWidth() != e.rect.W-e.view.Width {
		e.layout(r)
	}
	th := e.theme
	e.view.Clamp(e.wrap.VirtualLineCount())

	gw := e.gutterWidth()
	rows := e.VisibleLines()
	for y := 0; y < e.view.Height; y++ {
		if y >= len(rows) {
			fill(s, r.X, r.Y+y, r.W, th.Main)
			continue
		}
		vl := rows[y]
		e.drawGutter(s, r.X, r.Y+y, gw, vl, th)
		e.drawRow(s, r.X+gw, r.Y+y, r.W-gw, vl, th)
	}

	statusY, cmdY := r.Y+r.H-2, r.Y+r.H-1
	if r.H >= 2 {
		e.drawStatus(s, r.X, statusY, r.W, th)
	}
	cx := e.drawCommandline(s, r.X, cmdY, r.W, th)

	switch {
	case e.mode == ModeSearch || e.mode == ModeGoto:
		s.SetCursorStyle(tcell.CursorStyleSteadyBar)
		s.ShowCursor(r.X+min(cx, r.W-1), cmdY)
	default:
		x, y, ok := e.CursorCell()
		if !ok {
			s.HideCursor()
			return
		}
		style := tcell.CursorStyleSteadyBlock
		if e.mode == ModeInsert {
			style = tcell.CursorStyleSteadyBar
		}
		s.SetCursorStyle(style)
		s.ShowCursor(r.X+x, r.Y+y)
	}
}

func fill(s tcell.Screen, x, y, w int, style tcell.Style) {
	for i := 0; i < w; i++ {
		s.SetContent(x+i, y, ' ', nil, style)
	}
}

func (e *Editor) drawGutter(s tcell.Screen, x, y, w int, vl VisualLine, th Theme) {
	if w == 0 {
		return
	}
	fill(s, x, y, w, th.Main)
	if vl.Seg != 0 {
		return
	}
	switch e.diffAt(vl.Line) {
	case DiffAdded:
		s.SetContent(x, y, '▎', nil, th.DiffAdded)
	case DiffModified:
		s.SetContent(x, y, '▎', nil, th.DiffModified)
	case DiffDeleted:
		s.SetContent(x, y, '▁', nil, th.DiffDeleted)
	}
	caret := e.sel.Active.Line
	n := vl.Line + 1
	style := th.LineNumber
	if vl.Line == caret {
		style = th.LineNumberActive
	} else if e.lineNumberMode == LineNumberRelative {
		n = vl.Line - caret
		if n < 0 {
			n = -n
		}
	}
	label := strconv.Itoa(n)
	start := x + w - 1 - len(label)
	for i, ch := range label {
		s.SetContent(start+i, y, ch, nil, style)
	}
}

func (e *Editor) drawRow(s tcell.Screen, x, y, w int, vl VisualLine, th Theme) {
	fill(s, x, y, w, th.Main)
	if w <= 0 {
		return
	}
	text := e.doc.Line(vl.Line)
	gs := document.Graphemes(text)
	spans := e.highlightsFor(vl.Line)
	sel := e.sel.Range()
	selected := !e.sel.Empty()

	var matches []search.Match
	cur, hasCur := search.Match{}, false
	if e.search.Query() != "" {
		matches = e.search.InLines(e.doc, vl.Line, vl.Line+1)
		cur, hasCur = e.currentMatch()
	}

	left := 0
	if !e.wrap.Enabled() {
		left = e.view.Left
	}
	cell := 0
	for col := vl.From; col < vl.To && col < len(gs); col++ {
		g := gs[col]
		gw := wrap.GraphemeWidth(g, cell, e.tabWidth)
		start := cell - left
		cell += gw
		if gw == 0 || cell <= left {
			continue
		}
		if start >= w {
			break
		}

		style := th.Main
		if kind, ok := highlightKindAt(spans, col); ok {
			if st, ok := th.Syntax[kind]; ok {
				style = st
			}
		}
		p := document.Pos{Line: vl.Line, Col: col}
		inCurrent := false
		for _, m := range matches {
			if p.Less(m.Start) || !p.Less(m.End) {
				continue
			}
			inCurrent = hasCur && m == cur
			style = withBackground(style, th.SearchMatch)
			break
		}
		if selected && !p.Less(sel.Start) && p.Less(sel.End) {
			style = withBackground(style, th.Selection)
		}
		// The current match is usually also the selection.
		if inCurrent {
			style = withBackground(style, th.SearchCurrent)
		}

		switch {
		case g == "\t":
			for i := max(start, 0); i < start+gw && i < w; i++ {
				s.SetContent(x+i, y, ' ', nil, style)
			}
		case start < 0 || start+gw > w:
			// Wide glyph cut by an edge.
			for i := max(start, 0); i < start+gw && i < w; i++ {
				s.SetContent(x+i, y, ' ', nil, style)
			}
		default:
			rs := []rune(g)
			s.SetContent(x+start, y, rs[0], rs[1:], style)
		}
	}

	// A selection running past the line end marks the newline.
	if selected && vl.To == len(gs) {
		p := document.Pos{Line: vl.Line, Col: len(gs)}
		if !p.Less(sel.Start) && p.Less(sel.End) {
			if at := cell - left; at >= 0 && at < w {
				s.SetContent(x+at, y, ' ', nil, withBackground(th.Main, th.Selection))
			}
		}
	}
}

func (e *Editor) currentMatch() (search.Match, bool) {
	i, n := e.search.Current()
	if i < 0 || i >= n {
		return search.Match{}, false
	}
	return e.search.Matches(e.doc)[i], true
}

func (e *Editor) drawStatus(s tcell.Screen, x, y, w int, th Theme) {
	fill(s, x, y, w, th.Statusline)
	col := x
	if e.gitBranch != "" {
		label := " " + formatGitBranch(e.cfg.Editor.GitBranchSymbol, e.gitBranch) + " "
		for _, ch := range label {
			if col >= x+w {
				return
			}
			s.SetContent(col, y, ch, nil, th.Branch)
			col++
		}
	}
	for i, ch := range composeStatusLine(e.statusLeft(), e.statusRight(), w-(col-x)) {
		s.SetContent(col+i, y, ch, nil, th.Statusline)
	}
}

func (e *Editor) statusLeft() string {
	name := e.path
	if name == "" {
		name = "[scratch]"
	}
	left := " " + e.mode.String() + "  " + name
	if e.Modified() {
		left += " [+]"
	}
	if e.readOnly {
		left += " [RO]"
	}
	return left
}

func (e *Editor) statusRight() string {
	var parts []string
	if q, i, n := e.SearchState(); q != "" && n > 0 && i > 0 {
		parts = append(parts, fmt.Sprintf("[%d/%d]", i, n))
	}
	if e.large {
		parts = append(parts, "large")
	}
	p := e.sel.Active.Pos()
	parts = append(parts, fmt.Sprintf("%d:%d", p.Line+1, p.Col+1))
	le := e.doc.LineEnding().Name()
	if e.doc.MixedLineEndings() {
		le += "*"
	}
	parts = append(parts, le)
	return strings.Join(parts, "  ") + " "
}

// drawCommandline shows the open prompt or the last status message and
// returns the cell after the prompt text.
func (e *Editor) drawCommandline(s tcell.Screen, x, y, w int, th Theme) int {
	fill(s, x, y, w, th.Commandline)
	var text []rune
	switch e.mode {
	case ModeSearch:
		prefix := "/"
		if e.searchOpts.Direction == search.Backward {
			prefix = "?"
		}
		text = append([]rune(prefix), e.prompt...)
	case ModeGoto:
		text = append([]rune("goto: "), e.prompt...)
	default:
		text = []rune(e.statusText)
	}
	for i, ch := range text {
		if i >= w {
			break
		}
		s.SetContent(x+i, y, ch, nil, th.Commandline)
	}
	return len(text)
}

func composeStatusLine(left, right string, width int) []rune {
	if width <= 0 {
		return nil
	}
	leftRunes := []rune(left)
	rightRunes := []rune(right)
	if len(leftRunes)+len(rightRunes) > width {
		if len(rightRunes) >= width {
			rightRunes = rightRunes[len(rightRunes)-width:]
			leftRunes = nil
		} else {
			leftRunes = leftRunes[:width-len(rightRunes)]
		}
	}
	line := make([]rune, 0, width)
	line = append(line, leftRunes...)
	for i := len(leftRunes) + len(rightRunes); i < width; i++ {
		line = append(line, ' ')
	}
	return append(line, rightRunes...)
}

func formatGitBranch(symbol, branch string) string {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		symbol = "git:"
	}
	if strings.HasSuffix(symbol, ":") {
		return symbol + branch
	}
	return symbol + " " + branch
}
