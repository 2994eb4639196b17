package editor

import "github.com/kobzarvs/qtext/internal/document"

// HighlightSpan colors columns [StartCol, EndCol) of a line with a syntax
// kind. SetHighlights takes byte columns; stored spans are in graphemes.
type HighlightSpan struct {
	StartCol int
	EndCol   int
	Kind     string
}

type DiffKind int

const (
	DiffNone DiffKind = iota
	DiffAdded
	DiffModified
	// DiffDeleted marks the line below which lines were removed.
	DiffDeleted
)

// SetHighlights installs spans for lines [start, end] computed from the
// document at version. Spans for any other version are refused.
func (e *Editor) SetHighlights(version uint64, start, end int, spans map[int][]HighlightSpan) bool {
	if version != e.doc.Version() {
		return false
	}
	out := make(map[int][]HighlightSpan, len(spans))
	for line, lineSpans := range spans {
		if line < 0 || line >= e.doc.LineCount() {
			continue
		}
		text := e.doc.Line(line)
		conv := make([]HighlightSpan, 0, len(lineSpans))
		for _, span := range lineSpans {
			from := document.ColFromByte(text, min(max(span.StartCol, 0), len(text)))
			to := ceilCol(text, min(max(span.EndCol, 0), len(text)))
			if to <= from {
				continue
			}
			conv = append(conv, HighlightSpan{StartCol: from, EndCol: to, Kind: span.Kind})
		}
		out[line] = conv
	}
	e.highlights = out
	e.highlightVersion = version
	e.highlightStart = start
	e.highlightEnd = end
	e.hasHighlights = true
	return true
}

// ceilCol is the grapheme column at or after byte offset off.
func ceilCol(text string, off int) int {
	col := document.ColFromByte(text, off)
	if document.ByteCol(text, col) < off {
		col++
	}
	return col
}

func (e *Editor) highlightsFor(line int) []HighlightSpan {
	if !e.hasHighlights || e.highlightVersion != e.doc.Version() {
		return nil
	}
	if line < e.highlightStart || line > e.highlightEnd {
		return nil
	}
	return e.highlights[line]
}

// HighlightsCurrent reports whether the installed spans match the
// document and cover every visible line.
func (e *Editor) HighlightsCurrent() bool {
	if !e.hasHighlights || e.highlightVersion != e.doc.Version() {
		return false
	}
	first, last := e.VisibleLineRange()
	return first >= e.highlightStart && last <= e.highlightEnd
}

// SetDiffMarkers installs gutter markers computed from the document at
// version. Markers for any other version are refused.
func (e *Editor) SetDiffMarkers(version uint64, markers map[int]DiffKind) bool {
	if version != e.doc.Version() {
		return false
	}
	e.diff = markers
	e.diffVersion = version
	e.hasDiff = true
	return true
}

// DiffCurrent reports whether the installed markers match the document.
func (e *Editor) DiffCurrent() bool {
	return e.hasDiff && e.diffVersion == e.doc.Version()
}

func (e *Editor) diffAt(line int) DiffKind {
	if !e.hasDiff || e.diffVersion != e.doc.Version() {
		return DiffNone
	}
	return e.diff[line]
}

func highlightPriority(kind string) int {
	switch kind {
	case "comment":
		return 7
	case "string":
		return 6
	case "keyword":
		return 5
	case "constant", "builtin":
		return 4
	case "type", "function", "number", "parameter":
		return 3
	case "field", "variable":
		return 2
	case "operator", "punctuation":
		return 1
	default:
		return 0
	}
}

func highlightKindAt(spans []HighlightSpan, col int) (string, bool) {
	bestKind := ""
	bestPriority := 0
	for _, span := range spans {
		if col < span.StartCol || col >= span.EndCol {
			continue
		}
		if priority := highlightPriority(span.Kind); priority > bestPriority {
			bestPriority = priority
			bestKind = span.Kind
		}
	}
	return bestKind, bestKind != ""
}
