package editor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/kobzarvs/qtext/internal/config"
	"github.com/kobzarvs/qtext/internal/cursor"
	"github.com/kobzarvs/qtext/internal/document"
	"github.com/kobzarvs/qtext/internal/history"
	"github.com/kobzarvs/qtext/internal/logger"
	"github.com/kobzarvs/qtext/internal/search"
	"github.com/kobzarvs/qtext/internal/viewport"
	"github.com/kobzarvs/qtext/internal/wrap"
)

type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
	ModeSearch
	ModeGoto
)

func (m Mode) String() string {
	switch m {
	case ModeInsert:
		return "INS"
	case ModeSearch:
		return "SRCH"
	case ModeGoto:
		return "GOTO"
	default:
		return "NOR"
	}
}

type LineNumberMode int

const (
	LineNumberAbsolute LineNumberMode = iota
	LineNumberRelative
	LineNumberOff
)

// Clipboard is the system clipboard as the editor sees it.
type Clipboard interface {
	WriteText(text string) error
	ReadText() (string, error)
}

// memClipboard keeps text in process when no system clipboard is wired.
type memClipboard struct {
	text string
}

func (c *memClipboard) WriteText(text string) error {
	c.text = text
	return nil
}

func (c *memClipboard) ReadText() (string, error) {
	return c.text, nil
}

// Rect is a screen area in cells.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Editor is one editing session: a document with its caret, history,
// wrap cache, viewport and search state, kept in step on every edit.
type Editor struct {
	cfg   config.Config
	theme Theme
	clip  Clipboard
	now   func() time.Time

	doc    *document.Document
	sel    cursor.Selection
	hist   *history.History
	wrap   *wrap.Cache
	view   *viewport.Viewport
	search *search.Engine

	path     string
	loadErr  error
	readOnly bool

	mode         Mode
	prompt       []rune
	promptOrigin cursor.Selection
	promptTop    int
	searchOpts   search.Options

	keymapNormal map[string]string
	keymapInsert map[string]string

	lineNumberMode LineNumberMode
	wordWrap       bool
	large          bool
	tabWidth       int
	gitBranch      string

	highlights       map[int][]HighlightSpan
	highlightVersion uint64
	highlightStart   int
	highlightEnd     int
	hasHighlights    bool

	diff        map[int]DiffKind
	diffVersion uint64
	hasDiff     bool

	rect        Rect
	statusText  string
	events      []Event
	mouseDown   bool
	lastClick   time.Time
	lastClickAt cursor.Cursor
	clicks      int
}

// Option customizes New.
type Option func(*Editor)

// WithClipboard routes copy and paste through c.
func WithClipboard(c Clipboard) Option {
	return func(e *Editor) {
		if c != nil {
			e.clip = c
		}
	}
}

// WithClock replaces time.Now for history grouping and double clicks.
func WithClock(now func() time.Time) Option {
	return func(e *Editor) {
		e.now = now
	}
}

// ReadOnly makes every editing action a no-op.
func ReadOnly() Option {
	return func(e *Editor) {
		e.readOnly = true
	}
}

func New(cfg config.Config, opts ...Option) *Editor {
	e := &Editor{
		cfg:            cfg,
		theme:          NewTheme(cfg.Theme),
		clip:           &memClipboard{},
		now:            time.Now,
		doc:            document.New(),
		keymapNormal:   cfg.Keymap.Normal,
		keymapInsert:   cfg.Keymap.Insert,
		lineNumberMode: parseLineNumberMode(cfg.Editor.LineNumbers),
		wordWrap:       cfg.Editor.WordWrap,
		tabWidth:       cfg.Editor.TabWidth,
		rect:           Rect{W: 80, H: 24},
	}
	if e.tabWidth < 1 {
		e.tabWidth = wrap.DefaultTabSize
	}
	for _, opt := range opts {
		opt(e)
	}
	e.searchOpts = search.Options{SmartCase: cfg.Editor.SmartCase}
	e.hist = history.New(history.Options{
		MergeWindow: time.Duration(cfg.Editor.UndoMergeWindowMs) * time.Millisecond,
		MaxGroups:   cfg.Editor.UndoMaxGroups,
		MaxBytes:    cfg.Editor.UndoMaxBytes,
		Clock:       func() time.Time { return e.now() },
	})
	e.wrap = wrap.NewCache(e.doc, 0, e.tabWidth)
	e.view = viewport.New(0, 0)
	e.view.ScrollOff = cfg.Editor.ScrollOff
	e.search = search.New(cfg.Editor.SearchMaxMatches)
	e.layout(e.rect)
	return e
}

// Open loads path. A missing file opens as a new empty document; any other
// load error leaves an empty document, reports it in the status line and
// is returned.
func (e *Editor) Open(path string) error {
	doc, err := document.LoadFile(path, e.cfg.Editor.MaxFileBytes)
	e.path = path
	e.loadErr = nil
	if err != nil {
		var le *document.LoadError
		if errors.As(err, &le) && le.Kind == document.IOError && errors.Is(err, fs.ErrNotExist) {
			e.SetDocument(document.New())
			e.setStatus("[new file] " + path)
			return nil
		}
		logger.Warn("load failed", "path", path, "error", err)
		e.loadErr = err
		e.SetDocument(document.New())
		e.setStatus(err.Error())
		return err
	}
	e.SetDocument(doc)
	e.setStatus(fmt.Sprintf("%q %dL, %dB", path, doc.LineCount(), doc.Size()))
	return nil
}

// SetText replaces the document with text, as a fresh load.
func (e *Editor) SetText(text string) {
	e.SetDocument(document.FromString(text))
}

// SetDocument swaps in doc and resets the caret, history and derived
// caches together.
func (e *Editor) SetDocument(doc *document.Document) {
	doc.Follow(e.doc)
	e.doc = doc
	e.sel = cursor.Point(cursor.At(0, 0))
	e.hist.Reset()
	e.resetDerived()
	e.view.Top, e.view.Left = 0, 0
	e.emit(Event{Kind: ContentChanged, Reset: true})
	e.emit(Event{Kind: SelectionChanged})
}

func (e *Editor) resetDerived() {
	e.wrap.SetSource(e.doc)
	e.checkLarge()
	// The match list belongs to the old text; force a rescan.
	_ = e.search.SetQuery(e.search.Query(), e.search.Options())
	e.hasHighlights = false
	e.highlights = nil
	e.hasDiff = false
	e.diff = nil
}

// Reload re-reads the file from disk, keeping the caret and scroll
// position where they still fit.
func (e *Editor) Reload() error {
	if e.path == "" {
		return errors.New("no file name")
	}
	doc, err := document.LoadFile(e.path, e.cfg.Editor.MaxFileBytes)
	if err != nil {
		e.setStatus(err.Error())
		return err
	}
	sel, top := e.sel, e.view.Top
	e.loadErr = nil
	doc.Follow(e.doc)
	e.doc = doc
	e.hist.Reset()
	e.resetDerived()
	e.sel = sel.Clamp(e.doc)
	e.view.Top = top
	e.view.Clamp(e.wrap.VirtualLineCount())
	e.emit(Event{Kind: ContentChanged, Reset: true})
	e.emit(Event{Kind: SelectionChanged})
	e.setStatus("reloaded " + e.path)
	return nil
}

// Save writes the document to path, or to the current file when path is
// empty.
func (e *Editor) Save(path string) error {
	if path == "" {
		if e.path == "" {
			return errors.New("no file name")
		}
		path = e.path
	}
	if e.loadErr != nil && path == e.path {
		return fmt.Errorf("not overwriting %s after failed load: %w", path, e.loadErr)
	}
	data := e.doc.Serialize()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	e.path = path
	e.hist.MarkSaved()
	e.emit(Event{Kind: Saved})
	e.setStatus(fmt.Sprintf("%q %dL, %dB written", path, e.doc.LineCount(), len(data)))
	return nil
}

func (e *Editor) Document() *document.Document { return e.doc }
func (e *Editor) Path() string                 { return e.path }
func (e *Editor) Mode() Mode                   { return e.mode }
func (e *Editor) Selection() cursor.Selection  { return e.sel }
func (e *Editor) Modified() bool               { return e.hist.Modified() }
func (e *Editor) ReadOnly() bool               { return e.readOnly }
func (e *Editor) Status() string               { return e.statusText }
func (e *Editor) Viewport() viewport.Viewport  { return *e.view }
func (e *Editor) Version() uint64              { return e.doc.Version() }
func (e *Editor) Text() string                 { return e.doc.Text() }
func (e *Editor) LineCount() int               { return e.doc.LineCount() }

// Cursor returns the caret position.
func (e *Editor) Cursor() document.Pos { return e.sel.Active.Pos() }

// SetSelection places the selection, clamped to the document.
func (e *Editor) SetSelection(sel cursor.Selection) {
	e.setSelection(sel.Clamp(e.doc))
	e.follow()
}

// Restore puts the caret at pos and the viewport top at top, for session
// restore.
func (e *Editor) Restore(pos document.Pos, top int) {
	e.sel = cursor.Point(cursor.FromPos(e.doc.Clamp(pos)))
	e.view.Top = top
	e.view.Clamp(e.wrap.VirtualLineCount())
	e.follow()
}

func (e *Editor) SetGitBranch(branch string) {
	e.gitBranch = branch
}

func (e *Editor) GitBranch() string { return e.gitBranch }

// WordWrap reports whether lines are currently wrapped.
func (e *Editor) WordWrap() bool { return e.wrap.Enabled() }

func (e *Editor) SetWordWrap(on bool) {
	e.wordWrap = on
	e.checkLarge()
	e.follow()
}

// checkLarge turns wrapping off for documents above the configured size.
func (e *Editor) checkLarge() {
	limit := e.cfg.Editor.LargeFileThreshold
	e.large = limit > 0 && e.doc.Size() > limit
	e.wrap.SetEnabled(e.wordWrap && !e.large)
	if e.wrap.Enabled() {
		e.view.Left = 0
	}
}

// Large reports whether the document is over the large-file threshold.
func (e *Editor) Large() bool { return e.large }

// SetStatus shows msg on the command line.
func (e *Editor) SetStatus(msg string) { e.setStatus(msg) }

func (e *Editor) setStatus(msg string) {
	e.statusText = msg
	e.emit(Event{Kind: Status, Text: msg})
}

func (e *Editor) emit(ev Event) {
	e.events = append(e.events, ev)
}

// flush hands the queued events to the caller.
func (e *Editor) flush() []Event {
	out := e.events
	e.events = nil
	return out
}

// Events drains events queued outside HandleKey and HandleMouse, such as
// those from Open or Save.
func (e *Editor) Events() []Event {
	return e.flush()
}

// Resize lays the editor out in r, as Render would.
func (e *Editor) Resize(r Rect) {
	e.layout(r)
	e.follow()
}

// layout sizes the text area and the wrap width for r.
func (e *Editor) layout(r Rect) {
	e.rect = r
	gw := e.gutterWidth()
	textW := max(0, r.W-gw)
	textH := max(0, r.H-2)
	e.view.Resize(textW, textH)
	e.wrap.SetWidth(textW)
	e.wrap.SetTabSize(e.tabWidth)
}

// follow scrolls the minimum needed to show the caret.
func (e *Editor) follow() {
	p := e.sel.Active.Pos()
	moved := e.view.ScrollToRow(e.wrap.VisualRow(p), e.wrap.VirtualLineCount())
	if !e.wrap.Enabled() {
		line := e.doc.Line(p.Line)
		cell := wrap.CellOf(line, p.Col, e.tabWidth)
		w := 1
		if p.Col < e.doc.LineLen(p.Line) {
			w = max(1, wrap.CellOf(line, p.Col+1, e.tabWidth)-cell)
		}
		if e.view.ScrollToColumn(cell, w) {
			moved = true
		}
	}
	if moved {
		e.emit(Event{Kind: RequestScroll})
	}
}

func (e *Editor) setSelection(sel cursor.Selection) {
	if sel == e.sel {
		return
	}
	e.sel = sel
	e.emit(Event{Kind: SelectionChanged})
}
