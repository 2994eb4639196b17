package editor

import (
	"fmt"
	"strings"

	"github.com/kobzarvs/qtext/internal/cursor"
	"github.com/kobzarvs/qtext/internal/document"
	"github.com/kobzarvs/qtext/internal/history"
)

// trackedDoc lets history replay edits through the editor so the caches
// follow undo and redo too.
type trackedDoc struct {
	e *Editor
}

func (t trackedDoc) Replace(r document.Range, text string) document.Change {
	ch := t.e.doc.Replace(r, text)
	t.e.applied(ch)
	return ch
}

// applied brings every derived structure up to date with ch.
func (e *Editor) applied(ch document.Change) {
	if ch.Empty() {
		return
	}
	e.wrap.Apply(ch)
	e.search.Apply(e.doc, ch)
	e.checkLarge()
	e.emit(Event{Kind: ContentChanged, Change: ch})
}

func (e *Editor) writable() bool {
	if e.readOnly {
		e.setStatus("read-only")
		return false
	}
	return true
}

// edit replaces r with text as one recorded action and leaves the caret
// after the inserted text.
func (e *Editor) edit(r document.Range, text string, boundary bool) bool {
	if !e.writable() {
		return false
	}
	before := e.sel
	ch := e.doc.Replace(r, text)
	if ch.Empty() {
		return false
	}
	after := cursor.Point(cursor.FromPos(ch.NewEnd))
	a := history.FromChange(ch, before, after)
	a.Boundary = boundary
	e.hist.Record(a)
	e.applied(ch)
	e.setSelection(after)
	e.follow()
	return true
}

// InsertText types text at the caret, replacing any selection.
func (e *Editor) InsertText(text string) {
	e.edit(e.sel.Range(), text, false)
}

// InsertNewline breaks the line at the caret and carries its indentation.
func (e *Editor) InsertNewline() {
	line := e.doc.Line(e.sel.Range().Start.Line)
	indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	e.edit(e.sel.Range(), "\n"+indent, true)
}

// Backspace deletes the selection or the grapheme left of the caret.
func (e *Editor) Backspace() {
	if !e.sel.Empty() {
		e.edit(e.sel.Range(), "", true)
		return
	}
	end := e.sel.Active
	start := end.Left(e.doc, 1)
	e.edit(document.Range{Start: start.Pos(), End: end.Pos()}, "", false)
}

// DeleteForward deletes the selection or the grapheme under the caret.
func (e *Editor) DeleteForward() {
	if !e.sel.Empty() {
		e.edit(e.sel.Range(), "", true)
		return
	}
	start := e.sel.Active
	end := start.Right(e.doc, 1)
	e.edit(document.Range{Start: start.Pos(), End: end.Pos()}, "", false)
}

// DeleteWordLeft deletes back to the previous word start in its own undo
// step.
func (e *Editor) DeleteWordLeft() {
	if !e.sel.Empty() {
		e.edit(e.sel.Range(), "", true)
		return
	}
	end := e.sel.Active
	start := end.WordLeft(e.doc)
	e.edit(document.Range{Start: start.Pos(), End: end.Pos()}, "", true)
}

// selectedLines returns the lines the selection covers. A selection ending
// at column 0 does not include that line.
func (e *Editor) selectedLines() (first, last int) {
	r := e.sel.Range()
	first, last = r.Start.Line, r.End.Line
	if r.End.Col == 0 && last > first {
		last--
	}
	return first, last
}

// Indent inserts a tab at the start of every selected line. In insert mode
// with no selection it types a tab instead.
func (e *Editor) Indent() {
	if e.mode == ModeInsert && e.sel.Empty() {
		e.edit(e.sel.Range(), "\t", false)
		return
	}
	if !e.writable() {
		return
	}
	first, last := e.selectedLines()
	shifted := make(map[int]int, last-first+1)
	e.transaction(func() {
		for line := first; line <= last; line++ {
			if e.doc.LineLen(line) == 0 && first != last {
				continue
			}
			p := document.Pos{Line: line}
			e.record(document.Range{Start: p, End: p}, "\t")
			shifted[line] = 1
		}
	}, shifted)
}

// Unindent removes one tab or up to a tab width of spaces from every
// selected line.
func (e *Editor) Unindent() {
	if !e.writable() {
		return
	}
	first, last := e.selectedLines()
	shifted := make(map[int]int, last-first+1)
	e.transaction(func() {
		for line := first; line <= last; line++ {
			text := e.doc.Line(line)
			n := 0
			if strings.HasPrefix(text, "\t") {
				n = 1
			} else {
				for n < e.tabWidth && n < len(text) && text[n] == ' ' {
					n++
				}
			}
			if n == 0 {
				continue
			}
			e.record(document.Range{Start: document.Pos{Line: line}, End: document.Pos{Line: line, Col: n}}, "")
			shifted[line] = -n
		}
	}, shifted)
}

// transaction runs fn as one undo step. shifted, filled by fn, moves the
// selection ends on the lines it names by that many columns.
func (e *Editor) transaction(fn func(), shifted map[int]int) {
	before := e.sel
	e.hist.Begin()
	fn()
	e.hist.End()
	if len(shifted) == 0 {
		return
	}
	move := func(p document.Pos) document.Pos {
		if d, ok := shifted[p.Line]; ok {
			p.Col = max(0, p.Col+d)
		}
		return p
	}
	sel := cursor.Selection{
		Anchor: move(before.Anchor),
		Active: cursor.FromPos(move(before.Active.Pos())),
	}
	e.setSelection(sel.Clamp(e.doc))
	e.hist.Patch(before, e.sel)
	e.follow()
}

// record applies one edit inside a transaction without moving the caret.
func (e *Editor) record(r document.Range, text string) {
	ch := e.doc.Replace(r, text)
	if ch.Empty() {
		return
	}
	e.hist.Record(history.FromChange(ch, e.sel, e.sel))
	e.applied(ch)
}

// Undo reverts the last group of edits and restores the caret from before
// it.
func (e *Editor) Undo() bool {
	if !e.writable() {
		return false
	}
	sel, ok := e.hist.Undo(trackedDoc{e})
	if !ok {
		e.setStatus("already at oldest change")
		return false
	}
	e.setSelection(sel.Clamp(e.doc))
	e.follow()
	return true
}

// Redo re-applies the last undone group.
func (e *Editor) Redo() bool {
	if !e.writable() {
		return false
	}
	sel, ok := e.hist.Redo(trackedDoc{e})
	if !ok {
		e.setStatus("already at newest change")
		return false
	}
	e.setSelection(sel.Clamp(e.doc))
	e.follow()
	return true
}

// copyText is the selection, or the caret line with its newline when the
// selection is empty.
func (e *Editor) copyText() (string, document.Range) {
	if !e.sel.Empty() {
		r := e.sel.Range()
		return e.doc.Slice(r), r
	}
	r := cursor.SelectLine(e.doc, e.sel.Active.Line).Range()
	text := e.doc.Slice(r)
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text, r
}

// Copy puts the selection on the clipboard.
func (e *Editor) Copy() {
	text, _ := e.copyText()
	if err := e.clip.WriteText(text); err != nil {
		e.setStatus("clipboard unavailable: " + err.Error())
		return
	}
	e.setStatus(fmt.Sprintf("copied %d bytes", len(text)))
}

// Cut copies the selection, then deletes it as its own undo step.
func (e *Editor) Cut() {
	if !e.writable() {
		return
	}
	text, r := e.copyText()
	if err := e.clip.WriteText(text); err != nil {
		e.setStatus("clipboard unavailable: " + err.Error())
		return
	}
	e.edit(r, "", true)
}

// Paste replaces the selection with the clipboard text as its own undo
// step.
func (e *Editor) Paste() {
	if !e.writable() {
		return
	}
	text, err := e.clip.ReadText()
	if err != nil {
		e.setStatus("clipboard unavailable: " + err.Error())
		return
	}
	if text == "" {
		e.setStatus("clipboard empty")
		return
	}
	e.edit(e.sel.Range(), text, true)
}
