// Package search finds query matches in a document and steps through them
// relative to the caret, wrapping at both ends.
package search

import (
	"fmt"
	"regexp"
	"slices"
	"unicode"

	"github.com/kobzarvs/qtext/internal/document"
)

// Source is the document surface searched.
type Source interface {
	LineCount() int
	Line(i int) string
	Version() uint64
}

type ErrorKind int

const (
	InvalidPattern ErrorKind = iota
)

// SearchError reports a query that cannot be compiled.
type SearchError struct {
	Kind    ErrorKind
	Pattern string
	Err     error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

type Direction int

const (
	Forward Direction = iota
	Backward
)

type Options struct {
	CaseSensitive bool
	// SmartCase turns on case sensitivity when the query has an uppercase
	// letter.
	SmartCase bool
	Regex     bool
	Direction Direction
}

// Match is a grapheme range on one line.
type Match struct {
	Start document.Pos
	End   document.Pos
}

func (m Match) Range() document.Range {
	return document.Range{Start: m.Start, End: m.End}
}

// Result is the outcome of a navigation step.
type Result struct {
	Match   Match
	Index   int
	Total   int
	Wrapped bool
	Err     error
}

const DefaultMaxMatches = 100000

type Engine struct {
	query      string
	opts       Options
	re         *regexp.Regexp
	err        error
	maxMatches int

	matches   []Match
	version   uint64
	built     bool
	truncated bool
	current   int
}

// New returns an engine that stops scanning after maxMatches matches.
func New(maxMatches int) *Engine {
	if maxMatches <= 0 {
		maxMatches = DefaultMaxMatches
	}
	return &Engine{maxMatches: maxMatches, current: -1}
}

// SetQuery replaces the query. An invalid pattern returns *SearchError and
// leaves the engine with no matches until the next valid query.
func (e *Engine) SetQuery(query string, opts Options) error {
	e.query = query
	e.opts = opts
	e.re, e.err = nil, nil
	e.invalidate()
	if query == "" {
		return nil
	}
	pattern := query
	if !opts.Regex {
		pattern = regexp.QuoteMeta(query)
	}
	if !e.caseSensitive() {
		pattern = "(?i)" + pattern
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		e.err = &SearchError{Kind: InvalidPattern, Pattern: query, Err: err}
		return e.err
	}
	e.re = re
	return nil
}

func (e *Engine) caseSensitive() bool {
	if e.opts.CaseSensitive {
		return true
	}
	if e.opts.SmartCase {
		for _, r := range e.query {
			if unicode.IsUpper(r) {
				return true
			}
		}
	}
	return false
}

func (e *Engine) Query() string    { return e.query }
func (e *Engine) Options() Options { return e.opts }

// Err returns the compile error of the current query, if any.
func (e *Engine) Err() error { return e.err }

// Clear drops the query and matches.
func (e *Engine) Clear() {
	_ = e.SetQuery("", Options{})
}

func (e *Engine) invalidate() {
	e.matches = e.matches[:0]
	e.built = false
	e.truncated = false
	e.current = -1
}

// Truncated reports whether the last scan stopped at the match cap.
func (e *Engine) Truncated() bool { return e.truncated }

// Matches returns all matches, rebuilding the list if doc has changed
// since it was built.
func (e *Engine) Matches(doc Source) []Match {
	e.ensure(doc)
	return e.matches
}

func (e *Engine) ensure(doc Source) {
	if e.built && e.version == doc.Version() {
		return
	}
	e.invalidate()
	// Without a pattern the list stays empty and unbuilt.
	if e.re == nil {
		return
	}
	e.version = doc.Version()
	e.built = true
	for i := 0; i < doc.LineCount(); i++ {
		var full bool
		e.matches, full = e.scanLine(e.matches, i, doc.Line(i))
		if full {
			e.truncated = true
			return
		}
	}
}

func (e *Engine) scanLine(dst []Match, line int, text string) ([]Match, bool) {
	for _, loc := range e.re.FindAllStringIndex(text, -1) {
		if loc[0] == loc[1] {
			continue
		}
		if len(dst) >= e.maxMatches {
			return dst, true
		}
		dst = append(dst, Match{
			Start: document.Pos{Line: line, Col: document.ColFromByte(text, loc[0])},
			End:   document.Pos{Line: line, Col: endCol(text, loc[1])},
		})
	}
	return dst, false
}

// endCol rounds a byte offset up to the next grapheme boundary.
func endCol(text string, off int) int {
	col := document.ColFromByte(text, off)
	if document.ByteCol(text, col) < off {
		col++
	}
	return col
}

// Apply patches the match list for one change, rescanning only the lines
// it touched. Lists built against another version are left to rebuild.
func (e *Engine) Apply(doc Source, ch document.Change) {
	if e.re == nil || !e.built || ch.Empty() || e.truncated || e.version+1 != ch.Version {
		return
	}
	lo := e.lowerBound(document.Pos{Line: ch.Start.Line})
	hi := e.lowerBound(document.Pos{Line: ch.OldEnd.Line + 1})
	delta := ch.LinesDelta()
	var fresh []Match
	for i := ch.Start.Line; i <= ch.NewEnd.Line; i++ {
		fresh, _ = e.scanLine(fresh, i, doc.Line(i))
	}
	tail := e.matches[hi:]
	for j := range tail {
		tail[j].Start.Line += delta
		tail[j].End.Line += delta
	}
	e.matches = slices.Concat(e.matches[:lo], fresh, tail)
	if len(e.matches) > e.maxMatches {
		e.built = false
	}
	e.version = ch.Version
	e.current = -1
}

func (e *Engine) lowerBound(p document.Pos) int {
	i, _ := slices.BinarySearchFunc(e.matches, p, func(m Match, p document.Pos) int {
		switch {
		case m.Start.Less(p):
			return -1
		case m.Start == p:
			return 0
		default:
			return 1
		}
	})
	return i
}

// InLines returns the matches on lines [from, to).
func (e *Engine) InLines(doc Source, from, to int) []Match {
	e.ensure(doc)
	lo := e.lowerBound(document.Pos{Line: from})
	hi := e.lowerBound(document.Pos{Line: to})
	return e.matches[lo:hi]
}

// Current returns the index of the last visited match and the total.
func (e *Engine) Current() (int, int) {
	return e.current, len(e.matches)
}

func (e *Engine) result(i int, wrapped bool) (Result, bool) {
	e.current = i
	return Result{Match: e.matches[i], Index: i, Total: len(e.matches), Wrapped: wrapped}, true
}

func (e *Engine) usable(doc Source) (Result, bool) {
	if e.err != nil {
		return Result{Err: e.err}, false
	}
	e.ensure(doc)
	return Result{}, len(e.matches) > 0
}

// Next returns the first match starting after from, wrapping to the first
// match of the document.
func (e *Engine) Next(doc Source, from document.Pos) (Result, bool) {
	if r, ok := e.usable(doc); !ok {
		return r, false
	}
	i := e.lowerBound(from)
	if i < len(e.matches) && e.matches[i].Start == from {
		i++
	}
	if i >= len(e.matches) {
		return e.result(0, true)
	}
	return e.result(i, false)
}

// Nearest returns the first match starting at or after from, wrapping.
// Incremental search uses it so the match under the caret stays put.
func (e *Engine) Nearest(doc Source, from document.Pos) (Result, bool) {
	if r, ok := e.usable(doc); !ok {
		return r, false
	}
	i := e.lowerBound(from)
	if i >= len(e.matches) {
		return e.result(0, true)
	}
	return e.result(i, false)
}

// Previous returns the last match starting before from, wrapping to the
// last match of the document.
func (e *Engine) Previous(doc Source, from document.Pos) (Result, bool) {
	if r, ok := e.usable(doc); !ok {
		return r, false
	}
	i := e.lowerBound(from) - 1
	if i < 0 {
		return e.result(len(e.matches)-1, true)
	}
	return e.result(i, false)
}

// Again steps in the query's direction, or against it when reverse is set.
func (e *Engine) Again(doc Source, from document.Pos, reverse bool) (Result, bool) {
	backward := e.opts.Direction == Backward
	if reverse {
		backward = !backward
	}
	if backward {
		return e.Previous(doc, from)
	}
	return e.Next(doc, from)
}
