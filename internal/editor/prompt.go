package editor

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/cursor"
	"github.com/kobzarvs/qtext/internal/search"
)

func (e *Editor) startSearch(dir search.Direction) {
	e.searchOpts.Direction = dir
	e.startPrompt(ModeSearch)
}

func (e *Editor) startPrompt(mode Mode) {
	e.mode = mode
	e.prompt = e.prompt[:0]
	e.promptOrigin = e.sel
	e.promptTop = e.view.Top
}

func (e *Editor) handlePrompt(ev *tcell.EventKey) {
	switch keyString(ev) {
	case "esc", "ctrl+c":
		e.cancelPrompt()
		return
	case "enter":
		e.commitPrompt()
		return
	case "backspace":
		if len(e.prompt) == 0 {
			e.cancelPrompt()
			return
		}
		e.prompt = e.prompt[:len(e.prompt)-1]
	case "alt+c", "ctrl+t":
		if e.mode == ModeSearch {
			e.searchOpts.CaseSensitive = !e.searchOpts.CaseSensitive
			e.searchOpts.SmartCase = false
		}
	case "alt+r", "ctrl+r":
		if e.mode == ModeSearch {
			e.searchOpts.Regex = !e.searchOpts.Regex
		}
	default:
		if ev.Key() != tcell.KeyRune {
			return
		}
		r := ev.Rune()
		if e.mode == ModeGoto && (r < '0' || r > '9') {
			return
		}
		e.prompt = append(e.prompt, r)
	}
	if e.mode == ModeSearch {
		e.incrementalSearch()
	}
}

// incrementalSearch shows the match nearest the caret position the prompt
// was opened at, or restores that position when nothing matches.
func (e *Editor) incrementalSearch() {
	query := string(e.prompt)
	if err := e.search.SetQuery(query, e.searchOpts); err != nil {
		e.setStatus(err.Error())
		return
	}
	if query == "" {
		e.restoreOrigin()
		return
	}
	from := e.promptOrigin.Active.Pos()
	var r search.Result
	var ok bool
	if e.searchOpts.Direction == search.Backward {
		r, ok = e.search.Previous(e.doc, from)
	} else {
		r, ok = e.search.Nearest(e.doc, from)
	}
	if !ok {
		e.restoreOrigin()
		e.setStatus("no matches: " + query)
		return
	}
	e.showMatch(r)
}

func (e *Editor) restoreOrigin() {
	e.setSelection(e.promptOrigin)
	if e.view.Top != e.promptTop {
		e.view.Top = e.promptTop
		e.view.Clamp(e.wrap.VirtualLineCount())
		e.emit(Event{Kind: RequestScroll})
	}
}

// showMatch selects m with the caret on its first grapheme.
func (e *Editor) showMatch(r search.Result) {
	e.setSelection(cursor.Selection{Anchor: r.Match.End, Active: cursor.FromPos(r.Match.Start)})
	e.follow()
	msg := fmt.Sprintf("[%d/%d] %s", r.Index+1, r.Total, e.search.Query())
	if e.search.Truncated() {
		msg = fmt.Sprintf("[%d/%d+] %s", r.Index+1, r.Total, e.search.Query())
	}
	if r.Wrapped {
		msg += " (wrapped)"
	}
	e.setStatus(msg)
}

func (e *Editor) cancelPrompt() {
	if e.mode == ModeSearch {
		e.search.Clear()
	}
	e.restoreOrigin()
	e.mode = ModeNormal
	e.prompt = e.prompt[:0]
}

func (e *Editor) commitPrompt() {
	mode := e.mode
	text := strings.TrimSpace(string(e.prompt))
	e.mode = ModeNormal
	e.prompt = e.prompt[:0]
	switch mode {
	case ModeGoto:
		if text == "" {
			e.restoreOrigin()
			return
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			e.setStatus("invalid line: " + text)
			return
		}
		e.GotoLine(n)
	case ModeSearch:
		if e.search.Err() != nil {
			e.restoreOrigin()
			e.setStatus(e.search.Err().Error())
		}
	}
}

// Search sets the query and jumps to the first match after the caret in
// the query's direction.
func (e *Editor) Search(query string, opts search.Options) error {
	e.searchOpts = opts
	if err := e.search.SetQuery(query, opts); err != nil {
		e.setStatus(err.Error())
		return err
	}
	e.SearchAgain(false)
	return nil
}

// SearchAgain steps to the next match in the query's direction, or the
// opposite one when reverse is set. Both ends wrap around.
func (e *Editor) SearchAgain(reverse bool) {
	if e.search.Query() == "" {
		e.setStatus("no search pattern")
		return
	}
	r, ok := e.search.Again(e.doc, e.sel.Active.Pos(), reverse)
	if !ok {
		var se *search.SearchError
		if errors.As(r.Err, &se) {
			e.setStatus(se.Error())
			return
		}
		e.setStatus("no matches: " + e.search.Query())
		return
	}
	e.showMatch(r)
}

// SearchState returns the query and the current match position, 1-based,
// with zero meaning no current match.
func (e *Editor) SearchState() (query string, index, total int) {
	n := len(e.search.Matches(e.doc))
	i, _ := e.search.Current()
	return e.search.Query(), i + 1, n
}

// GotoLine moves the caret to the start of 1-based line n and centres it.
func (e *Editor) GotoLine(n int) {
	line := max(0, min(n-1, e.doc.LineCount()-1))
	e.setSelection(cursor.Point(cursor.At(line, 0).FirstNonBlank(e.doc)))
	e.view.Center(e.wrap.VisualRow(e.sel.Active.Pos()), e.wrap.VirtualLineCount())
	e.follow()
	e.emit(Event{Kind: RequestScroll})
}
