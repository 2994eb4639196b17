package editor

import "github.com/kobzarvs/qtext/internal/document"

type EventKind int

const (
	// ContentChanged carries the Change applied, or Reset when the whole
	// document was replaced.
	ContentChanged EventKind = iota
	SelectionChanged
	// RequestScroll means the viewport moved and the panel needs a redraw.
	RequestScroll
	Status
	Saved
	ShowHelp
	Quit
)

func (k EventKind) String() string {
	switch k {
	case ContentChanged:
		return "content"
	case SelectionChanged:
		return "selection"
	case RequestScroll:
		return "scroll"
	case Status:
		return "status"
	case Saved:
		return "saved"
	case ShowHelp:
		return "help"
	case Quit:
		return "quit"
	default:
		return "unknown"
	}
}

type Event struct {
	Kind   EventKind
	Change document.Change
	Reset  bool
	Text   string
}

// HasKind reports whether evs holds an event of kind k.
func HasKind(evs []Event, k EventKind) bool {
	for _, ev := range evs {
		if ev.Kind == k {
			return true
		}
	}
	return false
}
