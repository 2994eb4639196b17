package editor

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/config"
	"github.com/kobzarvs/qtext/internal/document"
)

func newTestEditor(lines ...string) *Editor {
	if len(lines) == 0 {
		lines = []string{""}
	}
	e := New(config.Default())
	e.SetText(strings.Join(lines, "\n"))
	e.flush()
	return e
}

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClockEditor(lines ...string) (*Editor, *testClock) {
	clock := &testClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	e := New(config.Default(), WithClock(clock.now))
	e.SetText(strings.Join(lines, "\n"))
	e.flush()
	return e, clock
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func special(k tcell.Key) *tcell.EventKey {
	return tcell.NewEventKey(k, 0, tcell.ModNone)
}

func typeText(e *Editor, text string) {
	for _, r := range text {
		e.HandleKey(key(r))
	}
}

func numberedLines(n int) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = "line " + strings.Repeat("x", i%5)
	}
	return lines
}

func TestOpenReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := New(config.Default())
	if err := e.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got := e.LineCount(); got != 3 {
		t.Fatalf("LineCount = %d, want 3", got)
	}
	if e.Modified() {
		t.Fatalf("fresh file reported modified")
	}
	evs := e.Events()
	if !HasKind(evs, ContentChanged) || !HasKind(evs, Status) {
		t.Fatalf("events = %v, want content and status", evs)
	}
}

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.txt")
	e := New(config.Default())
	if err := e.Open(path); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if e.Text() != "" {
		t.Fatalf("Text = %q, want empty", e.Text())
	}
	if !strings.HasPrefix(e.Status(), "[new file]") {
		t.Fatalf("Status = %q", e.Status())
	}
	e.InsertText("hi")
	if err := e.Save(""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "hi" {
		t.Fatalf("saved %q, want %q", data, "hi")
	}
}

func TestOpenTooLargeRefusesSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.txt")
	if err := os.WriteFile(path, []byte("0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.Editor.MaxFileBytes = 4
	e := New(cfg)
	err := e.Open(path)
	if !document.IsLoadError(err, document.FileTooLarge) {
		t.Fatalf("Open err = %v, want file too large", err)
	}
	if e.Text() != "" {
		t.Fatalf("Text = %q, want empty", e.Text())
	}
	if err := e.Save(""); err == nil {
		t.Fatalf("Save after failed load succeeded")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "0123456789" {
		t.Fatalf("file overwritten: %q", data)
	}
}

func TestOpenInvalidUTF8(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bin")
	if err := os.WriteFile(path, []byte{0xff, 0xfe, 'a'}, 0o644); err != nil {
		t.Fatal(err)
	}
	e := New(config.Default())
	err := e.Open(path)
	var le *document.LoadError
	if !errors.As(err, &le) || le.Kind != document.InvalidEncoding {
		t.Fatalf("Open err = %v, want invalid encoding", err)
	}
}

func TestSaveKeepsLineEndingAndClearsModified(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crlf.txt")
	if err := os.WriteFile(path, []byte("a\r\nb\r\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := New(config.Default())
	if err := e.Open(path); err != nil {
		t.Fatal(err)
	}
	e.InsertText("x")
	if !e.Modified() {
		t.Fatalf("Modified = false after edit")
	}
	e.flush()
	if err := e.Save(""); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if e.Modified() {
		t.Fatalf("Modified = true after save")
	}
	if !HasKind(e.Events(), Saved) {
		t.Fatalf("no saved event")
	}
	data, _ := os.ReadFile(path)
	if string(data) != "xa\r\nb\r\n" {
		t.Fatalf("saved %q", data)
	}
}

func TestReloadKeepsCaret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.txt")
	if err := os.WriteFile(path, []byte("aaa\nbbb\nccc"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := New(config.Default())
	if err := e.Open(path); err != nil {
		t.Fatal(err)
	}
	e.Exec("move_down")
	e.Exec("move_down")
	if err := os.WriteFile(path, []byte("aaa\nbbb"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := e.Cursor(); got != (document.Pos{Line: 1, Col: 0}) {
		t.Fatalf("Cursor = %v, want clamped to line 1", got)
	}
}

func TestReloadKeepsVersionIncreasing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "v.txt")
	if err := os.WriteFile(path, []byte("one"), 0o644); err != nil {
		t.Fatal(err)
	}
	e := New(config.Default())
	if err := e.Open(path); err != nil {
		t.Fatal(err)
	}
	e.InsertText("x")
	e.Undo()
	before := e.Version()
	if !e.SetDiffMarkers(before, map[int]DiffKind{0: DiffModified}) {
		t.Fatalf("markers refused at the current version")
	}
	if err := os.WriteFile(path, []byte("two"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := e.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if e.Version() <= before {
		t.Fatalf("Version = %d after reload, want above %d", e.Version(), before)
	}
	if e.DiffCurrent() {
		t.Fatalf("markers of the old text survived the reload")
	}
	e.InsertText("y")
	e.Undo()
	if e.SetDiffMarkers(before, nil) {
		t.Fatalf("markers for the old text accepted after reload")
	}
	e.SetText("fresh")
	if e.Version() <= before {
		t.Fatalf("Version = %d after SetText, want above %d", e.Version(), before)
	}
}

func TestLargeFileDisablesWrap(t *testing.T) {
	cfg := config.Default()
	cfg.Editor.LargeFileThreshold = 8
	e := New(cfg)
	e.SetText("short")
	if !e.WordWrap() {
		t.Fatalf("WordWrap = false for small doc")
	}
	e.InsertText("-now-long")
	if e.WordWrap() {
		t.Fatalf("WordWrap = true above threshold")
	}
	e.Undo()
	if !e.WordWrap() {
		t.Fatalf("WordWrap = false after shrinking")
	}
}

func TestEditEmitsContentAndSelection(t *testing.T) {
	e := newTestEditor("abc")
	e.HandleKey(key('i'))
	evs := e.HandleKey(key('x'))
	var got *Event
	for i := range evs {
		if evs[i].Kind == ContentChanged {
			got = &evs[i]
		}
	}
	if got == nil {
		t.Fatalf("events = %v, want content change", evs)
	}
	if got.Change.Inserted != "x" || got.Change.Version != e.Version() {
		t.Fatalf("change = %+v", got.Change)
	}
	if !HasKind(evs, SelectionChanged) {
		t.Fatalf("no selection event")
	}
}

func TestReadOnlyRefusesEdits(t *testing.T) {
	e := New(config.Default(), ReadOnly())
	e.SetText("abc")
	e.HandleKey(key('i'))
	if e.Mode() != ModeNormal {
		t.Fatalf("Mode = %v, want normal", e.Mode())
	}
	if e.Status() != "read-only" {
		t.Fatalf("Status = %q", e.Status())
	}
	e.InsertText("x")
	e.Exec("paste")
	e.Exec("indent")
	if e.Text() != "abc" {
		t.Fatalf("Text = %q", e.Text())
	}
	e.Exec("move_right")
	if got := e.Cursor(); got.Col != 1 {
		t.Fatalf("Cursor = %v, movement should still work", got)
	}
}

func TestDefaultScrollIsMinimal(t *testing.T) {
	e := newTestEditor(numberedLines(50)...)
	e.Resize(Rect{W: 40, H: 12})
	for i := 0; i < 9; i++ {
		e.Exec("move_down")
	}
	if top := e.Viewport().Top; top != 0 {
		t.Fatalf("Top = %d with the caret on the last visible row, want 0", top)
	}
	e.Exec("move_down")
	if top := e.Viewport().Top; top != 1 {
		t.Fatalf("Top = %d, want 1", top)
	}
	for i := 0; i < 3; i++ {
		e.Exec("move_down")
	}
	if top := e.Viewport().Top; top != 4 {
		t.Fatalf("Top = %d, want 4", top)
	}
	for i := 0; i < 9; i++ {
		e.Exec("move_up")
	}
	if top := e.Viewport().Top; top != 4 {
		t.Fatalf("Top = %d with the caret still in view, want 4", top)
	}
	e.Exec("move_up")
	if top := e.Viewport().Top; top != 3 {
		t.Fatalf("Top = %d, want 3", top)
	}
}

func TestResizeFollowsCaret(t *testing.T) {
	e := newTestEditor(numberedLines(50)...)
	e.Resize(Rect{W: 40, H: 12})
	e.Exec("file_end")
	v := e.Viewport()
	if v.Top != 40 {
		t.Fatalf("Top = %d, want 40", v.Top)
	}
	e.Resize(Rect{W: 40, H: 7})
	v = e.Viewport()
	if row := 49; row < v.Top || row >= v.Top+v.Height {
		t.Fatalf("caret row 49 outside [%d, %d)", v.Top, v.Top+v.Height)
	}
}
