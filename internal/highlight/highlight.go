// Package highlight turns document text into syntax spans with tree-sitter.
// Trees are kept per path and stamped with the document version they were
// parsed from, so callers can drop results that no longer match.
package highlight

import (
	"context"
	"math"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	"github.com/smacker/go-tree-sitter/golang"
	tree_sitter_markdown "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown"
	tree_sitter_markdown_inline "github.com/smacker/go-tree-sitter/markdown/tree-sitter-markdown-inline"
	"github.com/smacker/go-tree-sitter/toml"
	"github.com/smacker/go-tree-sitter/yaml"

	"github.com/kobzarvs/qtext/internal/config"
	"github.com/kobzarvs/qtext/internal/document"
	"github.com/kobzarvs/qtext/internal/logger"
)

// Span colors bytes [StartCol, EndCol) of one line.
type Span struct {
	StartCol int
	EndCol   int
	Kind     string
}

// Event reports that path now has spans for version.
type Event struct {
	Path    string
	Version uint64
}

type file struct {
	lang    string
	tree    *sitter.Tree
	source  []byte
	version uint64
}

type parseRequest struct {
	path    string
	lang    string
	text    string
	version uint64
}

type Highlighter struct {
	langs    config.Languages
	mu       sync.Mutex
	parsers  map[string]*sitter.Parser
	queries  map[string]*sitter.Query
	mdInline *sitter.Query
	files    map[string]*file

	reqCh    chan parseRequest
	events   chan Event
	stopCh   chan struct{}
	stopOnce sync.Once
}

func New(langs config.Languages) *Highlighter {
	h := &Highlighter{
		langs:   langs,
		parsers: make(map[string]*sitter.Parser),
		queries: make(map[string]*sitter.Query),
		files:   make(map[string]*file),
		reqCh:   make(chan parseRequest, 8),
		events:  make(chan Event, 16),
		stopCh:  make(chan struct{}),
	}
	for name, src := range querySources {
		q, err := sitter.NewQuery([]byte(src), tsLanguage(name))
		if err != nil {
			logger.Warn("highlight query failed", "language", name, "error", err)
			continue
		}
		h.queries[name] = q
	}
	if q, err := sitter.NewQuery([]byte(markdownInlineHighlightQuery), tree_sitter_markdown_inline.GetLanguage()); err == nil {
		h.mdInline = q
	}
	return h
}

// Start runs the background parser used by Parse.
func (h *Highlighter) Start() {
	go h.loop()
}

func (h *Highlighter) Stop() {
	h.stopOnce.Do(func() { close(h.stopCh) })
}

// Events delivers one event per finished background parse.
func (h *Highlighter) Events() <-chan Event {
	return h.events
}

// Language returns the grammar used for path, or "" when there is none.
func (h *Highlighter) Language(path string) string {
	lang := h.langs.Match(path)
	if lang == nil {
		return ""
	}
	name := lang.GrammarName()
	if regexLanguage(name) || tsLanguage(name) != nil {
		return name
	}
	return ""
}

func tsLanguage(name string) *sitter.Language {
	switch name {
	case "go":
		return golang.GetLanguage()
	case "markdown":
		return tree_sitter_markdown.GetLanguage()
	case "yaml":
		return yaml.GetLanguage()
	case "toml":
		return toml.GetLanguage()
	case "bash":
		return bash.GetLanguage()
	default:
		return nil
	}
}

// Update brings the tree for path to version. When changes carry the file
// from its last parsed version to version one step at a time the old tree
// is edited and reparsed incrementally; otherwise text is parsed from
// scratch. It reports whether path has a grammar.
func (h *Highlighter) Update(path, text string, version uint64, changes []document.Change) bool {
	lang := h.Language(path)
	if lang == "" {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.files[path]
	if f != nil && f.lang == lang && f.version == version && len(changes) == 0 && string(f.source) == text {
		return true
	}
	var prev *sitter.Tree
	if f != nil && f.lang == lang && f.tree != nil && consecutive(f.version, version, changes) {
		prev = f.tree
		for _, ch := range changes {
			prev.Edit(editInput(ch))
		}
	}
	h.parseLocked(path, lang, text, version, prev)
	return true
}

// consecutive reports whether changes lead from version from to version to
// with no gaps.
func consecutive(from, to uint64, changes []document.Change) bool {
	if len(changes) == 0 {
		return false
	}
	v := from
	for _, ch := range changes {
		if ch.Version != v+1 {
			return false
		}
		v = ch.Version
	}
	return v == to
}

func editInput(ch document.Change) sitter.EditInput {
	return sitter.EditInput{
		StartIndex:  uint32(ch.StartByte),
		OldEndIndex: uint32(ch.OldEndByte),
		NewEndIndex: uint32(ch.NewEndByte),
		StartPoint:  sitter.Point{Row: uint32(ch.Start.Line), Column: uint32(ch.StartByteCol)},
		OldEndPoint: sitter.Point{Row: uint32(ch.OldEnd.Line), Column: uint32(ch.OldEndByteCol)},
		NewEndPoint: sitter.Point{Row: uint32(ch.NewEnd.Line), Column: uint32(ch.NewEndByteCol)},
	}
}

func (h *Highlighter) parseLocked(path, lang, text string, version uint64, prev *sitter.Tree) {
	f := &file{lang: lang, source: []byte(text), version: version}
	if !regexLanguage(lang) {
		parser := h.parsers[lang]
		if parser == nil {
			parser = sitter.NewParser()
			parser.SetLanguage(tsLanguage(lang))
			h.parsers[lang] = parser
		}
		tree, err := parser.ParseCtx(context.Background(), prev, f.source)
		if err != nil {
			logger.Warn("parse failed", "path", path, "error", err)
		}
		f.tree = tree
	}
	h.files[path] = f
}

// Parse queues a full parse of text in the background. When the queue is
// full the oldest request gives way.
func (h *Highlighter) Parse(path, text string, version uint64) bool {
	lang := h.Language(path)
	if lang == "" {
		return false
	}
	req := parseRequest{path: path, lang: lang, text: text, version: version}
	for {
		select {
		case h.reqCh <- req:
			return true
		default:
		}
		select {
		case <-h.reqCh:
		default:
		}
	}
}

func (h *Highlighter) loop() {
	for {
		select {
		case <-h.stopCh:
			return
		case req := <-h.reqCh:
			h.mu.Lock()
			h.parseLocked(req.path, req.lang, req.text, req.version, nil)
			h.mu.Unlock()
			select {
			case h.events <- Event{Path: req.path, Version: req.version}:
			default:
			}
		}
	}
}

// Forget drops the tree kept for path.
func (h *Highlighter) Forget(path string) {
	h.mu.Lock()
	delete(h.files, path)
	h.mu.Unlock()
}

// Version returns the document version the spans of path belong to.
func (h *Highlighter) Version(path string) (uint64, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.files[path]
	if f == nil {
		return 0, false
	}
	return f.version, true
}

// Spans returns spans for lines [start, end] of path in byte columns, and
// the version they were computed from.
func (h *Highlighter) Spans(path string, start, end int) (map[int][]Span, uint64, bool) {
	if start < 0 || end < start {
		return nil, 0, false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	f := h.files[path]
	if f == nil {
		return nil, 0, false
	}
	var out map[int][]Span
	switch f.lang {
	case "json", "gitignore":
		out = regexHighlights(f.lang, f.source, start, end)
	case "markdown":
		out = h.markdownHighlights(f, start, end)
	default:
		out = queryHighlights(h.queries[f.lang], f.tree, f.source, start, end)
	}
	if out == nil {
		out = map[int][]Span{}
	}
	return out, f.version, true
}

func queryHighlights(query *sitter.Query, tree *sitter.Tree, source []byte, startLine, endLine int) map[int][]Span {
	if query == nil || tree == nil {
		return nil
	}
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.SetPointRange(
		sitter.Point{Row: uint32(startLine), Column: 0},
		sitter.Point{Row: uint32(endLine + 1), Column: 0},
	)
	cursor.Exec(query, tree.RootNode())

	out := make(map[int][]Span)
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}
		match = cursor.FilterPredicates(match, source)
		if match == nil {
			continue
		}
		for _, capture := range match.Captures {
			kind := query.CaptureNameForId(capture.Index)
			start := capture.Node.StartPoint()
			end := capture.Node.EndPoint()
			startRow, endRow := int(start.Row), int(end.Row)
			for row := max(startRow, startLine); row <= min(endRow, endLine); row++ {
				from, to := 0, math.MaxInt32
				if row == startRow {
					from = int(start.Column)
				}
				if row == endRow {
					to = int(end.Column)
				}
				if to <= from {
					continue
				}
				out[row] = append(out[row], Span{StartCol: from, EndCol: to, Kind: kind})
			}
		}
	}
	return out
}
