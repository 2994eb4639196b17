package document

import (
	"strings"

	"github.com/kobzarvs/qtext/internal/logger"
)

// Pos is a position in grapheme units, zero-based.
type Pos struct {
	Line int
	Col  int
}

// Less reports whether p sorts before q.
func (p Pos) Less(q Pos) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Col < q.Col)
}

// Range is a span between two positions. Start may sort after End until
// the range is normalized.
type Range struct {
	Start Pos
	End   Pos
}

// Normalize returns r with Start <= End.
func (r Range) Normalize() Range {
	if r.End.Less(r.Start) {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

// Empty reports whether r covers nothing.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Contains reports whether p lies in the half-open range.
func (r Range) Contains(p Pos) bool {
	r = r.Normalize()
	return !p.Less(r.Start) && p.Less(r.End)
}

type LineEnding int

const (
	LF LineEnding = iota
	CRLF
)

func (le LineEnding) String() string {
	if le == CRLF {
		return "\r\n"
	}
	return "\n"
}

// Name returns the short label shown in the status line.
func (le LineEnding) Name() string {
	if le == CRLF {
		return "CRLF"
	}
	return "LF"
}

// Change describes one mutation exactly: the replaced span in old
// coordinates, where the inserted text ends in new coordinates, and the
// same edit in bytes of the LF-joined text.
type Change struct {
	Start  Pos
	OldEnd Pos
	NewEnd Pos

	StartByte  int
	OldEndByte int
	NewEndByte int

	StartByteCol  int
	OldEndByteCol int
	NewEndByteCol int

	Removed  string
	Inserted string
	Version  uint64
}

// Empty reports whether the change left the document untouched.
func (c Change) Empty() bool {
	return c.Removed == "" && c.Inserted == ""
}

// LinesDelta is the change in line count.
func (c Change) LinesDelta() int {
	return c.NewEnd.Line - c.OldEnd.Line
}

// Document is the text of one editing session, stored as a line rope.
// Exposed columns are grapheme indexes; there is always at least one line.
type Document struct {
	lines   *rope
	ending  LineEnding
	mixed   bool
	version uint64
	last    Change
	hasLast bool
}

// New returns an empty document: one empty line, LF endings.
func New() *Document {
	return &Document{lines: newRope([]string{""})}
}

// FromString builds a document from text, detecting its line ending.
func FromString(text string) *Document {
	ending, mixed := detectLineEnding(text)
	return &Document{
		lines:  newRope(splitText(text)),
		ending: ending,
		mixed:  mixed,
	}
}

func detectLineEnding(text string) (LineEnding, bool) {
	crlf := strings.Count(text, "\r\n")
	lf := strings.Count(text, "\n") - crlf
	switch {
	case crlf == 0:
		return LF, false
	case lf == 0:
		return CRLF, false
	case crlf > lf:
		return CRLF, true
	default:
		return LF, true
	}
}

func normalizeNewlines(text string) string {
	if !strings.Contains(text, "\r") {
		return text
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

func splitText(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}

func (d *Document) LineCount() int {
	return d.lines.Len()
}

// Line returns line i without its terminator.
func (d *Document) Line(i int) string {
	return d.lines.Line(i)
}

// LineLen returns the length of line i in graphemes.
func (d *Document) LineLen(i int) int {
	return GraphemeCount(d.lines.Line(i))
}

// Version increases on every mutation.
func (d *Document) Version() uint64 {
	return d.version
}

// Follow continues prev's version numbering in d, so a document loaded in
// place of another never reports a version its predecessor already used.
func (d *Document) Follow(prev *Document) {
	if prev != nil && prev.version >= d.version {
		d.version = prev.version + 1
	}
}

func (d *Document) LineEnding() LineEnding {
	return d.ending
}

// MixedLineEndings reports whether the loaded text used both styles.
func (d *Document) MixedLineEndings() bool {
	return d.mixed
}

// SetLineEnding changes the style used by Serialize.
func (d *Document) SetLineEnding(le LineEnding) {
	d.ending = le
	d.mixed = false
}

// Size is the byte length of the LF-joined text.
func (d *Document) Size() int {
	return d.lines.Size() + d.lines.Len() - 1
}

// Text returns the content joined with LF.
func (d *Document) Text() string {
	return strings.Join(d.lines.Slice(0, d.lines.Len()), "\n")
}

// LastChange returns the most recent mutation.
func (d *Document) LastChange() (Change, bool) {
	return d.last, d.hasLast
}

// Clamp returns the nearest valid position to p.
func (d *Document) Clamp(p Pos) Pos {
	if p.Line < 0 {
		return Pos{}
	}
	if last := d.LineCount() - 1; p.Line > last {
		return Pos{Line: last, Col: d.LineLen(last)}
	}
	if p.Col < 0 {
		p.Col = 0
	}
	if n := d.LineLen(p.Line); p.Col > n {
		p.Col = n
	}
	return p
}

// clampEdit clamps a caller-supplied edit position. Out-of-range input is a
// caller bug; it is absorbed and only reported at debug level.
func (d *Document) clampEdit(p Pos) Pos {
	c := d.Clamp(p)
	if c != p {
		logger.Debug("edit position clamped", "pos", p, "clamped", c, "lines", d.LineCount())
	}
	return c
}

// ByteOffset returns the offset of p in the LF-joined text.
func (d *Document) ByteOffset(p Pos) int {
	p = d.Clamp(p)
	return d.lines.LineStartByte(p.Line) + ByteCol(d.Line(p.Line), p.Col)
}

// PosFromByte maps an offset in the LF-joined text to a position.
func (d *Document) PosFromByte(off int) Pos {
	line, col := d.lines.LineAtByte(off)
	return Pos{Line: line, Col: ColFromByte(d.Line(line), col)}
}

// Slice returns the text covered by r, lines joined with LF.
func (d *Document) Slice(r Range) string {
	r = r.Normalize()
	r.Start, r.End = d.Clamp(r.Start), d.Clamp(r.End)
	if r.Start.Line == r.End.Line {
		return SliceCols(d.Line(r.Start.Line), r.Start.Col, r.End.Col)
	}
	lines := d.lines.Slice(r.Start.Line, r.End.Line+1)
	first := lines[0]
	lines[0] = first[ByteCol(first, r.Start.Col):]
	last := lines[len(lines)-1]
	lines[len(lines)-1] = last[:ByteCol(last, r.End.Col)]
	return strings.Join(lines, "\n")
}

// LineSlice returns graphemes [from, to) of line i, for rendering.
func (d *Document) LineSlice(i, from, to int) string {
	return SliceCols(d.Line(i), from, to)
}

// Insert inserts text at p.
func (d *Document) Insert(p Pos, text string) Change {
	return d.Replace(Range{Start: p, End: p}, text)
}

// Delete removes the text covered by r.
func (d *Document) Delete(r Range) Change {
	return d.Replace(r, "")
}

// Replace swaps the text covered by r for text. Positions are clamped;
// CR and CRLF in text become line breaks.
func (d *Document) Replace(r Range, text string) Change {
	r = r.Normalize()
	start := d.clampEdit(r.Start)
	end := start
	if r.End != r.Start {
		end = d.clampEdit(r.End)
	}
	text = normalizeNewlines(text)

	first := d.Line(start.Line)
	last := first
	if end.Line != start.Line {
		last = d.Line(end.Line)
	}
	startByteCol := ByteCol(first, start.Col)
	endByteCol := ByteCol(last, end.Col)
	removed := d.Slice(Range{Start: start, End: end})

	ch := Change{
		Start:         start,
		OldEnd:        end,
		StartByte:     d.lines.LineStartByte(start.Line) + startByteCol,
		StartByteCol:  startByteCol,
		OldEndByteCol: endByteCol,
		Removed:       removed,
		Inserted:      text,
	}
	ch.OldEndByte = ch.StartByte + len(removed)
	ch.NewEndByte = ch.StartByte + len(text)
	if ch.Empty() {
		ch.NewEnd = start
		ch.NewEndByteCol = startByteCol
		ch.Version = d.version
		return ch
	}

	prefix, suffix := first[:startByteCol], last[endByteCol:]
	parts := strings.Split(text, "\n")
	parts[0] = prefix + parts[0]
	tail := parts[len(parts)-1]
	parts[len(parts)-1] = tail + suffix

	oldCount := end.Line - start.Line + 1
	if oldCount == 1 && len(parts) == 1 {
		d.lines.Set(start.Line, parts[0])
	} else {
		shared := min(oldCount, len(parts))
		for i := 0; i < shared; i++ {
			d.lines.Set(start.Line+i, parts[i])
		}
		if oldCount > len(parts) {
			d.lines.Delete(start.Line+shared, start.Line+oldCount)
		} else if len(parts) > oldCount {
			d.lines.Insert(start.Line+shared, parts[shared:])
		}
	}

	endLine := start.Line + len(parts) - 1
	endText := d.Line(endLine)
	ch.NewEndByteCol = len(endText) - len(suffix)
	ch.NewEnd = Pos{Line: endLine, Col: ColFromByte(endText, ch.NewEndByteCol)}

	d.version++
	ch.Version = d.version
	d.last = ch
	d.hasLast = true
	return ch
}
