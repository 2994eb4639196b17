package editor

import (
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/cursor"
	"github.com/kobzarvs/qtext/internal/document"
)

const (
	wheelStep        = 3
	doubleClickDelay = 400 * time.Millisecond
)

// HandleMouse applies a mouse event for an editor drawn in r.
func (e *Editor) HandleMouse(ev *tcell.EventMouse, r Rect) []Event {
	if r != e.rect {
		e.layout(r)
	}
	x, y := ev.Position()
	buttons := ev.Buttons()
	switch {
	case buttons&tcell.WheelUp != 0:
		e.ScrollBy(-wheelStep)
	case buttons&tcell.WheelDown != 0:
		e.ScrollBy(wheelStep)
	case buttons&tcell.Button1 != 0:
		if e.mode == ModeSearch || e.mode == ModeGoto {
			e.cancelPrompt()
		}
		if !e.mouseDown {
			if !r.Contains(x, y) || y-r.Y >= e.view.Height {
				break
			}
			e.mouseDown = true
			e.click(e.posAt(x-r.X, y-r.Y), ev.Modifiers()&tcell.ModShift != 0)
		} else {
			e.setSelection(e.sel.MoveTo(cursor.FromPos(e.posAt(x-r.X, y-r.Y)), true))
			e.follow()
		}
	case buttons == tcell.ButtonNone:
		e.mouseDown = false
	}
	return e.flush()
}

// click places the caret. Quick repeated clicks on the same cell select
// the word, then the whole line.
func (e *Editor) click(p document.Pos, extend bool) {
	now := e.now()
	c := cursor.FromPos(p)
	if !extend && e.clicks > 0 && c.Pos() == e.lastClickAt.Pos() && now.Sub(e.lastClick) <= doubleClickDelay {
		e.clicks++
		e.lastClick = now
		switch e.clicks {
		case 2:
			e.setSelection(cursor.SelectWord(e.doc, p))
			return
		case 3:
			e.setSelection(cursor.SelectLine(e.doc, p.Line))
			e.clicks = 0
			e.follow()
			return
		}
	}
	e.clicks = 1
	e.lastClick = now
	e.lastClickAt = c
	e.setSelection(e.sel.MoveTo(c, extend))
	e.follow()
}

// posAt maps a cell inside the editor rect to a document position.
// Rows past the text land at the end of the document.
func (e *Editor) posAt(x, y int) document.Pos {
	y = max(0, min(y, e.view.Height-1))
	row := e.view.Top + y
	if row >= e.wrap.VirtualLineCount() {
		return document.Pos{Line: e.doc.LineCount() - 1, Col: e.doc.LineLen(e.doc.LineCount() - 1)}
	}
	cell := max(0, x-e.gutterWidth())
	if !e.wrap.Enabled() {
		cell += e.view.Left
	}
	return e.wrap.PosForRow(row, cell)
}
