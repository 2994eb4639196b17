package editor

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/cursor"
	"github.com/kobzarvs/qtext/internal/search"
)

// HandleKey applies one key press and returns what changed.
func (e *Editor) HandleKey(ev *tcell.EventKey) []Event {
	switch e.mode {
	case ModeSearch, ModeGoto:
		e.handlePrompt(ev)
	case ModeInsert:
		e.handleInsert(ev)
	default:
		e.handleNormal(ev)
	}
	return e.flush()
}

func (e *Editor) handleNormal(ev *tcell.EventKey) {
	key := keyString(ev)
	if action, ok := e.keymapNormal[key]; ok {
		e.Exec(action)
	}
}

func (e *Editor) handleInsert(ev *tcell.EventKey) {
	key := keyString(ev)
	if action, ok := e.keymapInsert[key]; ok {
		e.Exec(action)
		return
	}
	if ev.Key() == tcell.KeyRune && ev.Modifiers()&(tcell.ModCtrl|tcell.ModMeta) == 0 {
		e.InsertText(string(ev.Rune()))
	}
}

// Actions lists every action name Exec understands.
var Actions = []string{
	"move_left", "move_right", "move_up", "move_down",
	"select_left", "select_right", "select_up", "select_down",
	"word_left", "word_right", "select_word_left", "select_word_right",
	"line_start", "line_end", "first_non_blank", "select_line_start", "select_line_end",
	"file_start", "file_end", "page_up", "page_down", "scroll_up", "scroll_down",
	"enter_insert", "enter_normal", "append", "append_line_end", "open_below",
	"select_all", "select_line", "collapse_selection",
	"newline", "backspace", "delete_char", "delete_word_left", "delete_selection",
	"indent", "unindent", "copy", "cut", "paste", "undo", "redo",
	"search_forward", "search_backward", "search_next", "search_prev",
	"goto_line_prompt", "toggle_line_numbers", "toggle_wrap",
	"save", "help", "quit",
}

// Exec runs a named action and reports whether the name was known.
func (e *Editor) Exec(action string) bool {
	switch action {
	case "move_left":
		e.move(cursor.DirLeft, 1, false)
	case "move_right":
		e.move(cursor.DirRight, 1, false)
	case "move_up":
		e.move(cursor.DirUp, 1, false)
	case "move_down":
		e.move(cursor.DirDown, 1, false)
	case "select_left":
		e.move(cursor.DirLeft, 1, true)
	case "select_right":
		e.move(cursor.DirRight, 1, true)
	case "select_up":
		e.move(cursor.DirUp, 1, true)
	case "select_down":
		e.move(cursor.DirDown, 1, true)
	case "word_left":
		e.move(cursor.DirWordLeft, 1, false)
	case "word_right":
		e.move(cursor.DirWordRight, 1, false)
	case "select_word_left":
		e.move(cursor.DirWordLeft, 1, true)
	case "select_word_right":
		e.move(cursor.DirWordRight, 1, true)
	case "line_start":
		e.move(cursor.DirLineStart, 1, false)
	case "line_end":
		e.move(cursor.DirLineEnd, 1, false)
	case "first_non_blank":
		e.move(cursor.DirFirstNonBlank, 1, false)
	case "select_line_start":
		e.move(cursor.DirFirstNonBlank, 1, true)
	case "select_line_end":
		e.move(cursor.DirLineEnd, 1, true)
	case "file_start":
		e.move(cursor.DirDocStart, 1, false)
	case "file_end":
		e.move(cursor.DirDocEnd, 1, false)
	case "page_up":
		e.page(-1)
	case "page_down":
		e.page(1)
	case "scroll_up":
		e.ScrollBy(-1)
	case "scroll_down":
		e.ScrollBy(1)
	case "enter_insert":
		e.enterInsert()
	case "enter_normal":
		e.enterNormal()
	case "append":
		if e.writable() {
			c := e.sel.Range().End
			if c.Col < e.doc.LineLen(c.Line) {
				c.Col++
			}
			e.setSelection(cursor.Point(cursor.FromPos(c)))
			e.enterInsert()
		}
	case "append_line_end":
		if e.writable() {
			e.move(cursor.DirLineEnd, 1, false)
			e.enterInsert()
		}
	case "open_below":
		if e.writable() {
			e.move(cursor.DirLineEnd, 1, false)
			e.InsertNewline()
			e.enterInsert()
		}
	case "select_all":
		e.setSelection(cursor.SelectAll(e.doc))
		e.follow()
	case "select_line":
		e.selectLine()
	case "collapse_selection":
		e.setSelection(e.sel.Collapse())
	case "newline":
		e.InsertNewline()
	case "backspace":
		e.Backspace()
	case "delete_char":
		e.DeleteForward()
	case "delete_word_left":
		e.DeleteWordLeft()
	case "delete_selection":
		e.DeleteForward()
	case "indent":
		e.Indent()
	case "unindent":
		e.Unindent()
	case "copy":
		e.Copy()
	case "cut":
		e.Cut()
	case "paste":
		e.Paste()
	case "undo":
		e.Undo()
	case "redo":
		e.Redo()
	case "search_forward":
		e.startSearch(search.Forward)
	case "search_backward":
		e.startSearch(search.Backward)
	case "search_next":
		e.SearchAgain(false)
	case "search_prev":
		e.SearchAgain(true)
	case "goto_line_prompt":
		e.startPrompt(ModeGoto)
	case "toggle_line_numbers":
		e.toggleLineNumbers()
	case "toggle_wrap":
		e.SetWordWrap(!e.wordWrap)
		if e.large && e.wordWrap {
			e.setStatus("wrap disabled for large file")
		} else {
			e.setStatus(fmt.Sprintf("wrap %s", onOff(e.wordWrap)))
		}
	case "save":
		if err := e.Save(""); err != nil {
			e.setStatus("save failed: " + err.Error())
		}
	case "help":
		e.emit(Event{Kind: ShowHelp})
	case "quit":
		e.emit(Event{Kind: Quit})
	default:
		return false
	}
	return true
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}

func (e *Editor) move(d cursor.Direction, n int, extend bool) {
	e.setSelection(e.sel.Move(e.doc, d, n, extend))
	e.follow()
}

// page moves the caret and the viewport by one screen.
func (e *Editor) page(dir int) {
	n := max(1, e.view.Height)
	e.view.Scroll(dir*n, e.wrap.VirtualLineCount())
	if dir < 0 {
		e.move(cursor.DirUp, n, false)
	} else {
		e.move(cursor.DirDown, n, false)
	}
	e.emit(Event{Kind: RequestScroll})
}

// ScrollBy moves the viewport without touching the caret.
func (e *Editor) ScrollBy(delta int) {
	top := e.view.Top
	e.view.Scroll(delta, e.wrap.VirtualLineCount())
	if e.view.Top != top {
		e.emit(Event{Kind: RequestScroll})
	}
}

func (e *Editor) enterInsert() {
	if !e.writable() {
		return
	}
	e.mode = ModeInsert
}

func (e *Editor) enterNormal() {
	e.mode = ModeNormal
	e.hist.Seal()
}

// selectLine selects the caret line, or grows a whole-line selection by
// the next line.
func (e *Editor) selectLine() {
	r := e.sel.Range()
	if !e.sel.Empty() && r.Start.Col == 0 && r.End.Col == 0 && r.End.Line > r.Start.Line {
		next := cursor.SelectLine(e.doc, r.End.Line)
		e.setSelection(cursor.Selection{Anchor: r.Start, Active: next.Active})
	} else {
		e.setSelection(cursor.SelectLine(e.doc, e.sel.Active.Line))
	}
	e.follow()
}

func (e *Editor) toggleLineNumbers() {
	switch e.lineNumberMode {
	case LineNumberAbsolute:
		e.lineNumberMode = LineNumberRelative
		e.setStatus("line numbers relative")
	case LineNumberRelative:
		e.lineNumberMode = LineNumberOff
		e.setStatus("line numbers off")
	default:
		e.lineNumberMode = LineNumberAbsolute
		e.setStatus("line numbers absolute")
	}
	e.layout(e.rect)
}

func parseLineNumberMode(value string) LineNumberMode {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "relative", "rel":
		return LineNumberRelative
	case "off", "none", "false":
		return LineNumberOff
	default:
		return LineNumberAbsolute
	}
}

func keyString(ev *tcell.EventKey) string {
	mods := ev.Modifiers()
	shift := mods&tcell.ModShift != 0
	if mods&tcell.ModAlt != 0 {
		prefix := "alt+"
		if shift {
			prefix = "alt+shift+"
		}
		switch ev.Key() {
		case tcell.KeyUp:
			return prefix + "up"
		case tcell.KeyDown:
			return prefix + "down"
		case tcell.KeyLeft:
			return prefix + "left"
		case tcell.KeyRight:
			return prefix + "right"
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			return "alt+backspace"
		case tcell.KeyRune:
			return "alt+" + strings.ToLower(string(ev.Rune()))
		}
	}
	if mods&tcell.ModCtrl != 0 {
		switch ev.Key() {
		case tcell.KeyHome:
			return "ctrl+home"
		case tcell.KeyEnd:
			return "ctrl+end"
		}
	}
	if mods&tcell.ModMeta != 0 {
		prefix := "cmd+"
		if shift {
			prefix = "cmd+shift+"
		}
		switch ev.Key() {
		case tcell.KeyRune:
			r := ev.Rune()
			if r == ' ' {
				return prefix + "space"
			}
			return prefix + strings.ToLower(string(r))
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			return "cmd+backspace"
		case tcell.KeyEnter:
			return "cmd+enter"
		case tcell.KeyLeft:
			return prefix + "left"
		case tcell.KeyRight:
			return prefix + "right"
		case tcell.KeyUp:
			return prefix + "up"
		case tcell.KeyDown:
			return prefix + "down"
		case tcell.KeyHome:
			return prefix + "home"
		case tcell.KeyEnd:
			return prefix + "end"
		}
	}
	if ev.Key() == tcell.KeyRune {
		r := ev.Rune()
		if r == ' ' {
			return "space"
		}
		return string(r)
	}
	// Named keys first: several share codes with ctrl+letter.
	switch ev.Key() {
	case tcell.KeyTab:
		if shift {
			return "shift+tab"
		}
		return "tab"
	case tcell.KeyBacktab:
		return "shift+tab"
	case tcell.KeyEnter:
		return "enter"
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		return "backspace"
	case tcell.KeyEscape:
		return "esc"
	}
	if name := ctrlKeyName(ev.Key()); name != "" {
		return name
	}
	name := ""
	switch ev.Key() {
	case tcell.KeyUp:
		name = "up"
	case tcell.KeyDown:
		name = "down"
	case tcell.KeyLeft:
		name = "left"
	case tcell.KeyRight:
		name = "right"
	case tcell.KeyPgUp:
		name = "pgup"
	case tcell.KeyPgDn:
		name = "pgdn"
	case tcell.KeyHome:
		name = "home"
	case tcell.KeyEnd:
		name = "end"
	case tcell.KeyDelete:
		name = "del"
	default:
		if ev.Key() >= tcell.KeyF1 && ev.Key() <= tcell.KeyF12 {
			return fmt.Sprintf("f%d", int(ev.Key()-tcell.KeyF1)+1)
		}
		return ""
	}
	if shift {
		return "shift+" + name
	}
	return name
}

func ctrlKeyName(key tcell.Key) string {
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return "ctrl+" + string(rune('a'+int(key-tcell.KeyCtrlA)))
	}
	return ""
}
