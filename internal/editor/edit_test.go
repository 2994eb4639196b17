package editor

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/config"
	"github.com/kobzarvs/qtext/internal/cursor"
	"github.com/kobzarvs/qtext/internal/document"
)

type fakeClipboard struct {
	text string
	err  error
}

func (c *fakeClipboard) WriteText(text string) error {
	if c.err != nil {
		return c.err
	}
	c.text = text
	return nil
}

func (c *fakeClipboard) ReadText() (string, error) {
	return c.text, c.err
}

func TestTypingUndoesAsOneStep(t *testing.T) {
	e, _ := newClockEditor("")
	e.HandleKey(key('i'))
	typeText(e, "hello")
	if e.Text() != "hello" {
		t.Fatalf("Text = %q", e.Text())
	}
	e.HandleKey(special(tcell.KeyEscape))
	e.HandleKey(key('u'))
	if e.Text() != "" {
		t.Fatalf("Text after undo = %q, want empty", e.Text())
	}
	if got := e.Cursor(); got != (document.Pos{}) {
		t.Fatalf("Cursor = %v, want 0:0", got)
	}
	e.HandleKey(key('U'))
	if e.Text() != "hello" {
		t.Fatalf("Text after redo = %q", e.Text())
	}
	if got := e.Cursor(); got.Col != 5 {
		t.Fatalf("Cursor after redo = %v, want col 5", got)
	}
}

func TestPauseSplitsTyping(t *testing.T) {
	e, clock := newClockEditor("")
	e.Exec("enter_insert")
	typeText(e, "ab")
	clock.advance(2 * time.Second)
	typeText(e, "cd")
	e.Undo()
	if e.Text() != "ab" {
		t.Fatalf("Text = %q, want %q", e.Text(), "ab")
	}
}

func TestNewlineCarriesIndentAndBreaksGroup(t *testing.T) {
	e, _ := newClockEditor("  foo")
	e.Exec("line_end")
	e.Exec("enter_insert")
	typeText(e, "x")
	e.HandleKey(special(tcell.KeyEnter))
	typeText(e, "y")
	if e.Text() != "  foox\n  y" {
		t.Fatalf("Text = %q", e.Text())
	}
	want := []string{"  foox\n  ", "  foox", "  foo"}
	for _, w := range want {
		e.Undo()
		if e.Text() != w {
			t.Fatalf("Text after undo = %q, want %q", e.Text(), w)
		}
	}
	if e.Undo() {
		t.Fatalf("Undo past oldest succeeded")
	}
	if e.Status() != "already at oldest change" {
		t.Fatalf("Status = %q", e.Status())
	}
}

func TestBackspaceJoinsLines(t *testing.T) {
	e := newTestEditor("ab", "cd")
	e.SetSelection(cursor.Point(cursor.At(1, 0)))
	e.Backspace()
	if e.Text() != "abcd" {
		t.Fatalf("Text = %q", e.Text())
	}
	if got := e.Cursor(); got != (document.Pos{Line: 0, Col: 2}) {
		t.Fatalf("Cursor = %v, want 0:2", got)
	}
	// At the document start nothing happens.
	e.SetSelection(cursor.Point(cursor.At(0, 0)))
	e.Backspace()
	if e.Text() != "abcd" {
		t.Fatalf("Text = %q", e.Text())
	}
}

func TestDeleteForwardJoinsLines(t *testing.T) {
	e := newTestEditor("ab", "cd")
	e.Exec("line_end")
	e.DeleteForward()
	if e.Text() != "abcd" {
		t.Fatalf("Text = %q", e.Text())
	}
}

func TestBackspaceRemovesWholeGrapheme(t *testing.T) {
	e := newTestEditor("aéb")
	e.Exec("line_end")
	e.Exec("move_left")
	e.Backspace()
	if e.Text() != "ab" {
		t.Fatalf("Text = %q, want %q", e.Text(), "ab")
	}
}

func TestDeleteSelection(t *testing.T) {
	e := newTestEditor("hello world")
	e.SetSelection(cursor.Selection{Anchor: document.Pos{Col: 5}, Active: cursor.At(0, 11)})
	e.HandleKey(key('d'))
	if e.Text() != "hello" {
		t.Fatalf("Text = %q", e.Text())
	}
	e.Undo()
	if e.Text() != "hello world" {
		t.Fatalf("Text after undo = %q", e.Text())
	}
	if s := e.Selection(); s.Empty() {
		t.Fatalf("undo did not restore the selection")
	}
}

func TestDeleteWordLeft(t *testing.T) {
	e := newTestEditor("foo bar")
	e.Exec("line_end")
	e.Exec("enter_insert")
	e.HandleKey(tcell.NewEventKey(tcell.KeyCtrlW, 0, tcell.ModCtrl))
	if e.Text() != "foo " {
		t.Fatalf("Text = %q", e.Text())
	}
}

func TestIndentSelectionIsOneUndoStep(t *testing.T) {
	e := newTestEditor("a", "b", "c")
	e.Exec("select_line")
	e.Exec("select_line")
	e.Exec("indent")
	if e.Text() != "\ta\n\tb\nc" {
		t.Fatalf("Text = %q", e.Text())
	}
	e.Undo()
	if e.Text() != "a\nb\nc" {
		t.Fatalf("Text after undo = %q", e.Text())
	}
	e.Redo()
	if e.Text() != "\ta\n\tb\nc" {
		t.Fatalf("Text after redo = %q", e.Text())
	}
}

func TestIndentInInsertModeTypesTab(t *testing.T) {
	e := newTestEditor("ab")
	e.Exec("move_right")
	e.Exec("enter_insert")
	e.HandleKey(special(tcell.KeyTab))
	if e.Text() != "a\tb" {
		t.Fatalf("Text = %q", e.Text())
	}
}

func TestUnindent(t *testing.T) {
	e := newTestEditor("      a", "\tb", "c")
	e.Exec("select_all")
	e.Exec("unindent")
	if e.Text() != "  a\nb\nc" {
		t.Fatalf("Text = %q", e.Text())
	}
	e.Undo()
	if e.Text() != "      a\n\tb\nc" {
		t.Fatalf("Text after undo = %q", e.Text())
	}
}

func TestCopyEmptySelectionCopiesLine(t *testing.T) {
	clip := &fakeClipboard{}
	e := New(config.Default(), WithClipboard(clip))
	e.SetText("one\ntwo")
	e.Exec("move_down")
	e.Exec("copy")
	if clip.text != "two\n" {
		t.Fatalf("clipboard = %q", clip.text)
	}
	e.Exec("move_up")
	e.Exec("line_start")
	e.Exec("paste")
	if e.Text() != "two\none\ntwo" {
		t.Fatalf("Text = %q", e.Text())
	}
}

func TestCutPaste(t *testing.T) {
	clip := &fakeClipboard{}
	e := New(config.Default(), WithClipboard(clip))
	e.SetText("hello world")
	e.SetSelection(cursor.Selection{Anchor: document.Pos{}, Active: cursor.At(0, 5)})
	e.Exec("cut")
	if clip.text != "hello" || e.Text() != " world" {
		t.Fatalf("clipboard = %q, text = %q", clip.text, e.Text())
	}
	e.Exec("line_end")
	e.Exec("paste")
	if e.Text() != " worldhello" {
		t.Fatalf("Text = %q", e.Text())
	}
	e.Undo()
	if e.Text() != " world" {
		t.Fatalf("paste did not undo alone: %q", e.Text())
	}
}

func TestClipboardFailureLeavesText(t *testing.T) {
	clip := &fakeClipboard{err: errors.New("no display")}
	e := New(config.Default(), WithClipboard(clip))
	e.SetText("abc")
	e.Exec("select_all")
	e.Exec("cut")
	if e.Text() != "abc" {
		t.Fatalf("Text = %q", e.Text())
	}
	if !strings.Contains(e.Status(), "no display") {
		t.Fatalf("Status = %q", e.Status())
	}
	e.Exec("paste")
	if e.Text() != "abc" {
		t.Fatalf("Text = %q", e.Text())
	}
}

func TestPasteEmptyClipboard(t *testing.T) {
	e := newTestEditor("abc")
	e.Exec("paste")
	if e.Status() != "clipboard empty" || e.Text() != "abc" {
		t.Fatalf("Status = %q, Text = %q", e.Status(), e.Text())
	}
}

func TestOpenBelow(t *testing.T) {
	e := newTestEditor("\tfoo", "bar")
	e.HandleKey(key('o'))
	if e.Mode() != ModeInsert {
		t.Fatalf("Mode = %v", e.Mode())
	}
	typeText(e, "x")
	if e.Text() != "\tfoo\n\tx\nbar" {
		t.Fatalf("Text = %q", e.Text())
	}
}

func TestUndoKeepsSearchInStep(t *testing.T) {
	e := newTestEditor("foo")
	if err := e.Search("foo", e.searchOpts); err != nil {
		t.Fatal(err)
	}
	e.Exec("line_end")
	e.InsertText(" foo")
	if _, _, n := e.SearchState(); n != 2 {
		t.Fatalf("matches = %d, want 2", n)
	}
	e.Undo()
	if _, _, n := e.SearchState(); n != 1 {
		t.Fatalf("matches after undo = %d, want 1", n)
	}
}
