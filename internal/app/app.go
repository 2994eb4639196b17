package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/clipboard"
	"github.com/kobzarvs/qtext/internal/config"
	"github.com/kobzarvs/qtext/internal/document"
	"github.com/kobzarvs/qtext/internal/editor"
	"github.com/kobzarvs/qtext/internal/gitinfo"
	"github.com/kobzarvs/qtext/internal/highlight"
	"github.com/kobzarvs/qtext/internal/logger"
	"github.com/kobzarvs/qtext/internal/panel"
	"github.com/kobzarvs/qtext/internal/session"
	"github.com/kobzarvs/qtext/internal/watch"
)

const branchPollInterval = 2 * time.Second

// App is the top-level runtime for qtext.
type App struct {
	args []string
}

func New(args []string) *App {
	return &App{args: args}
}

// Run owns the process: it loads configuration, sets up logging and the
// terminal, and then runs the event loop until the user quits.
func (a *App) Run() error {
	if err := logger.Init(os.Getenv("QTEXT_DEBUG") == "1"); err != nil {
		return err
	}
	defer logger.Close()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	langs, err := config.LoadLanguages()
	if err != nil {
		logger.Warn("languages.toml ignored", "error", err)
	}

	s, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := s.Init(); err != nil {
		return err
	}
	s.EnableMouse()
	defer s.Fini()

	w, err := newWindow(s, cfg, langs, clipboard.New())
	if err != nil {
		return err
	}
	defer w.close()

	if sm, err := session.NewManager(); err != nil {
		logger.Warn("session disabled", "error", err)
	} else {
		w.sessions = sm
		sm.Start()
	}

	if len(a.args) > 0 {
		w.open(a.args[0])
	} else if cwd, err := os.Getwd(); err == nil {
		w.branchPath = cwd
	}
	w.refreshBranch()
	w.start()
	return w.loop()
}

// window is the UI-goroutine state: the panels, and the background
// services whose results come back as interrupt events.
type window struct {
	screen tcell.Screen
	cfg    config.Config

	hl       *highlight.Highlighter
	differ   *gitinfo.Differ
	watcher  *watch.Watcher
	sessions *session.Manager
	roots    gitinfo.RootCache

	ed     *editor.Editor
	main   *panel.Panel
	help   *panel.Panel
	active *panel.Panel

	absPath    string
	branchPath string
	quitArmed  bool

	// highlight bookkeeping
	changes    []document.Change
	parsedFor  uint64
	parsed     bool
	requested  uint64
	asked      bool
	spansFor   uint64
	spansRange [2]int

	diffAsked   uint64
	diffPending bool
	diffFailed  bool

	stopTick chan struct{}
}

func newWindow(s tcell.Screen, cfg config.Config, langs config.Languages, clip editor.Clipboard) (*window, error) {
	w := &window{
		screen:   s,
		cfg:      cfg,
		hl:       highlight.New(langs),
		differ:   gitinfo.NewDiffer(),
		stopTick: make(chan struct{}),
	}
	watcher, err := watch.New(watch.DefaultDelay)
	if err != nil {
		logger.Warn("file watching disabled", "error", err)
	} else {
		w.watcher = watcher
	}
	w.ed = editor.New(cfg, editor.WithClipboard(clip))
	w.main = panel.NewEditor(w.ed)
	w.active = w.main
	return w, nil
}

func (w *window) open(path string) {
	if err := w.ed.Open(path); err != nil {
		logger.Warn("open failed", "path", path, "error", err)
	}
	w.ed.Events()
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	w.absPath = abs
	w.branchPath = abs
	w.resetDerived()
	if w.sessions != nil {
		if st, ok := w.sessions.FileState(abs); ok {
			w.ed.Restore(document.Pos{Line: st.Line, Col: st.Col}, st.Top)
		}
	}
	if w.watcher != nil {
		if err := w.watcher.Watch(abs); err != nil {
			logger.Warn("watch failed", "path", abs, "error", err)
		}
	}
}

// start launches the background services and forwards their results to
// the screen as interrupts, so all state changes happen in loop.
func (w *window) start() {
	w.hl.Start()
	w.differ.Start()
	var fileEvents <-chan watch.Event
	if w.watcher != nil {
		fileEvents = w.watcher.Events()
	}
	go func() {
		ticker := time.NewTicker(branchPollInterval)
		defer ticker.Stop()
		for {
			var data any
			select {
			case <-w.stopTick:
				return
			case ev := <-w.hl.Events():
				data = ev
			case res := <-w.differ.Results():
				data = res
			case ev := <-fileEvents:
				data = ev
			case <-ticker.C:
				data = branchTick{}
			}
			_ = w.screen.PostEvent(tcell.NewEventInterrupt(data))
		}
	}()
}

type branchTick struct{}

func (w *window) close() {
	close(w.stopTick)
	w.hl.Stop()
	w.differ.Stop()
	if w.watcher != nil {
		_ = w.watcher.Close()
	}
	if w.sessions != nil {
		w.saveSession()
		if err := w.sessions.Stop(); err != nil {
			logger.Warn("session save failed", "error", err)
		}
	}
}

func (w *window) loop() error {
	w.sync()
	w.render()
	for {
		ev := w.screen.PollEvent()
		if ev == nil {
			return nil
		}
		if w.handle(ev) {
			return nil
		}
		w.sync()
		w.render()
	}
}

func (w *window) rect() editor.Rect {
	width, height := w.screen.Size()
	return editor.Rect{W: width, H: height}
}

// handle processes one terminal or interrupt event and reports whether
// the program should exit.
func (w *window) handle(ev tcell.Event) bool {
	var evs []editor.Event
	switch ev := ev.(type) {
	case *tcell.EventKey:
		evs = w.active.HandleKey(ev)
	case *tcell.EventMouse:
		evs = w.active.HandleMouse(ev, w.rect())
	case *tcell.EventResize:
		w.screen.Sync()
		w.active.Resize(w.rect())
	case *tcell.EventInterrupt:
		w.interrupt(ev.Data())
	}
	return w.dispatch(evs)
}

func (w *window) dispatch(evs []editor.Event) bool {
	if w.active.Kind == panel.KindHelp {
		if editor.HasKind(evs, editor.Quit) {
			w.active = w.main
			w.main.Resize(w.rect())
		}
		return false
	}
	for _, ev := range evs {
		switch ev.Kind {
		case editor.ContentChanged:
			w.quitArmed = false
			if ev.Reset {
				w.resetDerived()
			} else {
				w.changes = append(w.changes, ev.Change)
			}
		case editor.ShowHelp:
			w.showHelp()
		case editor.Quit:
			if w.ed.Modified() && !w.quitArmed {
				w.quitArmed = true
				w.ed.SetStatus("unsaved changes, quit again to discard")
				continue
			}
			return true
		}
	}
	return false
}

// resetDerived forgets every result computed for the previous document;
// versions restart when a document is loaded.
func (w *window) resetDerived() {
	w.changes = nil
	w.parsed, w.asked = false, false
	w.spansFor = 0
	w.diffPending, w.diffFailed = false, false
	if w.absPath != "" {
		w.hl.Forget(w.absPath)
		w.differ.Forget(w.absPath)
	}
}

func (w *window) showHelp() {
	if w.help == nil {
		w.help = panel.NewHelp(w.cfg)
	}
	w.active = w.help
	w.help.Resize(w.rect())
}

func (w *window) interrupt(data any) {
	switch d := data.(type) {
	case highlight.Event:
		if d.Path == w.absPath {
			w.parsedFor, w.parsed = d.Version, true
			w.spansFor = 0
		}
	case gitinfo.DiffResult:
		if d.Path != w.absPath {
			return
		}
		w.diffPending = false
		if d.Err != nil {
			// Untracked or outside HEAD; ask again after a branch change.
			w.diffFailed = true
			return
		}
		w.ed.SetDiffMarkers(d.Version, diffMarkers(d.Markers))
	case watch.Event:
		w.fileChanged(d)
	case branchTick:
		w.refreshBranch()
	}
}

// fileChanged reloads the buffer when the file changed on disk and there
// are no local edits to lose.
func (w *window) fileChanged(ev watch.Event) {
	if ev.Path != w.absPath {
		return
	}
	if ev.Removed {
		w.ed.SetStatus("file removed on disk")
		return
	}
	data, err := os.ReadFile(ev.Path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("read after change failed", "path", ev.Path, "error", err)
		}
		return
	}
	if bytes.Equal(data, w.ed.Document().Serialize()) {
		return
	}
	if w.ed.Modified() {
		w.ed.SetStatus("file changed on disk; buffer has unsaved changes")
		return
	}
	if err := w.ed.Reload(); err != nil {
		logger.Warn("reload failed", "path", ev.Path, "error", err)
	}
	w.dispatch(w.ed.Events())
}

func (w *window) refreshBranch() {
	if w.branchPath == "" {
		return
	}
	branch := gitinfo.Branch(w.branchPath)
	if branch != w.ed.GitBranch() {
		// A branch switch changes HEAD content.
		w.differ.Forget(w.absPath)
		w.diffPending, w.diffFailed = false, false
		w.roots.Invalidate()
	}
	w.ed.SetGitBranch(branch)
}

// sync brings highlights, diff markers and the session entry up to date
// with the document after a round of events.
func (w *window) sync() {
	if w.absPath == "" || w.active != w.main {
		return
	}
	w.syncHighlights()
	w.syncDiff()
	w.saveSession()
}

func (w *window) syncHighlights() {
	version := w.ed.Version()
	if !w.parsed || w.parsedFor != version {
		if w.ed.Large() {
			// Parsed in the background; the finished parse arrives as an
			// interrupt.
			w.changes = nil
			if !w.asked || w.requested != version {
				w.asked = w.hl.Parse(w.absPath, w.ed.Text(), version)
				w.requested = version
			}
			return
		}
		changes := w.changes
		w.changes = nil
		if !w.parsed {
			changes = nil
		}
		if !w.hl.Update(w.absPath, w.ed.Text(), version, changes) {
			return
		}
		w.parsed, w.parsedFor = true, version
		w.spansFor = 0
	}
	first, last := w.ed.VisibleLineRange()
	if w.spansFor == version && w.ed.HighlightsCurrent() && w.spansRange == [2]int{first, last} {
		return
	}
	spans, v, ok := w.hl.Spans(w.absPath, first, last)
	if !ok {
		return
	}
	if w.ed.SetHighlights(v, first, last, editorSpans(spans)) {
		w.spansFor = v
		w.spansRange = [2]int{first, last}
	}
}

func (w *window) syncDiff() {
	if _, ok := w.roots.Lookup(w.absPath); !ok {
		return
	}
	version := w.ed.Version()
	if w.diffFailed || w.diffPending {
		return
	}
	if w.diffAsked == version && w.ed.DiffCurrent() {
		return
	}
	w.diffAsked = version
	w.diffPending = true
	w.differ.Request(gitinfo.DiffRequest{Path: w.absPath, Text: w.ed.Text(), Version: version})
}

func (w *window) saveSession() {
	if w.sessions == nil || w.absPath == "" {
		return
	}
	pos := w.ed.Cursor()
	view := w.ed.Viewport()
	w.sessions.SetFileState(w.absPath, session.FileState{Line: pos.Line, Col: pos.Col, Top: view.Top, Left: view.Left})
}

func (w *window) render() {
	w.screen.Clear()
	w.active.Render(w.screen, w.rect())
	w.screen.Show()
}

func editorSpans(spans map[int][]highlight.Span) map[int][]editor.HighlightSpan {
	out := make(map[int][]editor.HighlightSpan, len(spans))
	for line, lineSpans := range spans {
		dst := make([]editor.HighlightSpan, len(lineSpans))
		for i, span := range lineSpans {
			dst[i] = editor.HighlightSpan{StartCol: span.StartCol, EndCol: span.EndCol, Kind: span.Kind}
		}
		out[line] = dst
	}
	return out
}

func diffMarkers(m map[int]gitinfo.Marker) map[int]editor.DiffKind {
	out := make(map[int]editor.DiffKind, len(m))
	for line, marker := range m {
		switch marker {
		case gitinfo.MarkerAdded:
			out[line] = editor.DiffAdded
		case gitinfo.MarkerModified:
			out[line] = editor.DiffModified
		case gitinfo.MarkerDeleted:
			out[line] = editor.DiffDeleted
		}
	}
	return out
}
