// Package history keeps linear undo/redo stacks of action groups.
//
// Consecutive edits of the same kind at contiguous positions inside the
// merge window collapse into one group, so a burst of typing undoes in one
// step. Newlines, pastes and word deletions always stand alone. Recording
// after an undo discards the redo stack; there is no undo tree.
package history

import (
	"strings"
	"time"

	"github.com/kobzarvs/qtext/internal/cursor"
	"github.com/kobzarvs/qtext/internal/document"
)

type Kind int

const (
	Insert Kind = iota
	Delete
	Replace
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Delete:
		return "delete"
	default:
		return "replace"
	}
}

// Action is one recorded mutation. Start/OldEnd span the removed text in
// the document before the edit; Start/NewEnd span the inserted text after.
type Action struct {
	Kind     Kind
	Start    document.Pos
	OldEnd   document.Pos
	NewEnd   document.Pos
	Removed  string
	Inserted string
	Before   cursor.Selection
	After    cursor.Selection
	At       time.Time

	// Boundary puts the action in a group of its own.
	Boundary bool
}

// FromChange builds an action for ch. The zero At is filled by Record.
func FromChange(ch document.Change, before, after cursor.Selection) Action {
	kind := Replace
	switch {
	case ch.Removed == "":
		kind = Insert
	case ch.Inserted == "":
		kind = Delete
	}
	return Action{
		Kind:     kind,
		Start:    ch.Start,
		OldEnd:   ch.OldEnd,
		NewEnd:   ch.NewEnd,
		Removed:  ch.Removed,
		Inserted: ch.Inserted,
		Before:   before,
		After:    after,
	}
}

func (a Action) size() int {
	return len(a.Removed) + len(a.Inserted)
}

type group struct {
	actions []Action
	sealed  bool
	bytes   int
}

func (g *group) last() *Action {
	return &g.actions[len(g.actions)-1]
}

// Editable is the document surface undo and redo write through.
type Editable interface {
	Replace(r document.Range, text string) document.Change
}

// Options bound the history. Zero values select the defaults.
type Options struct {
	MergeWindow time.Duration
	MaxGroups   int
	MaxBytes    int
	Clock       func() time.Time
}

const (
	DefaultMergeWindow = time.Second
	DefaultMaxGroups   = 1000
	DefaultMaxBytes    = 64 << 20
)

type History struct {
	opts      Options
	undo      []*group
	redo      []*group
	bytes     int
	savePoint int

	// txn collects every action recorded between Begin and End.
	txn      bool
	txnGroup *group
}

func New(opts Options) *History {
	if opts.MergeWindow <= 0 {
		opts.MergeWindow = DefaultMergeWindow
	}
	if opts.MaxGroups <= 0 {
		opts.MaxGroups = DefaultMaxGroups
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = DefaultMaxBytes
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &History{opts: opts}
}

// Reset drops everything and treats the current document as saved.
func (h *History) Reset() {
	h.undo = nil
	h.redo = nil
	h.bytes = 0
	h.savePoint = 0
}

// Record adds a to the history, merging it into the open group when it
// continues that group's edit.
func (h *History) Record(a Action) {
	if a.Removed == "" && a.Inserted == "" {
		return
	}
	if a.At.IsZero() {
		a.At = h.opts.Clock()
	}
	if strings.Contains(a.Inserted, "\n") {
		a.Boundary = true
	}
	h.dropRedo()

	if h.txn {
		if h.txnGroup == nil {
			h.Seal()
			h.txnGroup = &group{sealed: true}
			h.undo = append(h.undo, h.txnGroup)
		}
		h.txnGroup.actions = append(h.txnGroup.actions, a)
		h.txnGroup.bytes += a.size()
		h.bytes += a.size()
	} else if !a.Boundary && h.canMerge(a) {
		g := h.undo[len(h.undo)-1]
		g.actions = append(g.actions, a)
		g.bytes += a.size()
		h.bytes += a.size()
	} else {
		h.Seal()
		g := &group{actions: []Action{a}, bytes: a.size(), sealed: a.Boundary}
		h.undo = append(h.undo, g)
		h.bytes += g.bytes
	}
	h.trim()
}

func (h *History) canMerge(a Action) bool {
	if len(h.undo) == 0 {
		return false
	}
	g := h.undo[len(h.undo)-1]
	if g.sealed {
		return false
	}
	last := g.last()
	if last.Kind != a.Kind || a.At.Sub(last.At) > h.opts.MergeWindow {
		return false
	}
	switch a.Kind {
	case Insert:
		return a.Start == last.NewEnd
	case Delete:
		// Backspace runs leftwards, forward delete stays put.
		return a.OldEnd == last.Start || a.Start == last.Start
	}
	return false
}

// Seal closes the open group so the next action starts a new one.
func (h *History) Seal() {
	if len(h.undo) > 0 {
		h.undo[len(h.undo)-1].sealed = true
	}
}

// Begin starts a transaction: actions recorded until End form one group
// that never merges with its neighbours.
func (h *History) Begin() {
	h.txn = true
	h.txnGroup = nil
}

// End closes the transaction opened by Begin.
func (h *History) End() {
	h.txn = false
	h.txnGroup = nil
}

func (h *History) dropRedo() {
	if len(h.redo) == 0 {
		return
	}
	for _, g := range h.redo {
		h.bytes -= g.bytes
	}
	if h.savePoint > len(h.undo) {
		h.savePoint = -1
	}
	h.redo = nil
}

func (h *History) trim() {
	drop := 0
	for len(h.undo)-drop > 1 && (len(h.undo)-drop > h.opts.MaxGroups || h.bytes > h.opts.MaxBytes) {
		h.bytes -= h.undo[drop].bytes
		drop++
	}
	if drop == 0 {
		return
	}
	h.undo = append([]*group(nil), h.undo[drop:]...)
	if h.savePoint >= 0 {
		h.savePoint -= drop
		if h.savePoint < 0 {
			h.savePoint = -1
		}
	}
}

// Undo reverts the newest group and returns the selection from before it.
func (h *History) Undo(doc Editable) (cursor.Selection, bool) {
	if len(h.undo) == 0 {
		return cursor.Selection{}, false
	}
	g := h.undo[len(h.undo)-1]
	g.sealed = true
	h.undo = h.undo[:len(h.undo)-1]
	for i := len(g.actions) - 1; i >= 0; i-- {
		a := g.actions[i]
		doc.Replace(document.Range{Start: a.Start, End: a.NewEnd}, a.Removed)
	}
	h.redo = append(h.redo, g)
	return g.actions[0].Before, true
}

// Redo re-applies the newest undone group and returns the selection after it.
func (h *History) Redo(doc Editable) (cursor.Selection, bool) {
	if len(h.redo) == 0 {
		return cursor.Selection{}, false
	}
	g := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	for _, a := range g.actions {
		doc.Replace(document.Range{Start: a.Start, End: a.OldEnd}, a.Inserted)
	}
	h.undo = append(h.undo, g)
	return g.last().After, true
}

func (h *History) CanUndo() bool { return len(h.undo) > 0 }
func (h *History) CanRedo() bool { return len(h.redo) > 0 }

// UndoDepth is the number of groups that can be undone.
func (h *History) UndoDepth() int { return len(h.undo) }

// RedoDepth is the number of groups that can be redone.
func (h *History) RedoDepth() int { return len(h.redo) }

// Bytes is the text retained across both stacks.
func (h *History) Bytes() int { return h.bytes }

// MarkSaved records the current state as the one on disk.
func (h *History) MarkSaved() {
	h.Seal()
	h.savePoint = len(h.undo)
}

// Modified reports whether the document differs from the saved state.
func (h *History) Modified() bool {
	return h.savePoint != len(h.undo)
}

// Patch sets the selections the newest group restores on undo and redo.
func (h *History) Patch(before, after cursor.Selection) {
	if len(h.undo) == 0 {
		return
	}
	g := h.undo[len(h.undo)-1]
	g.actions[0].Before = before
	g.last().After = after
}
