// Package viewport tracks the visible window over a document's virtual
// (wrapped) rows. Scrolling to the caret moves the window by the smallest
// amount that brings it into view; only Center re-centres.
package viewport

type Viewport struct {
	Top    int // first visible virtual row
	Left   int // horizontal offset in cells, used when wrapping is off
	Width  int
	Height int

	// ScrollOff keeps this many rows between the caret and the window edge
	// when the window is tall enough.
	ScrollOff int
}

func New(width, height int) *Viewport {
	return &Viewport{Width: width, Height: height}
}

// Resize changes the window size. Top is kept; callers re-follow the caret.
func (v *Viewport) Resize(width, height int) {
	v.Width = max(0, width)
	v.Height = max(0, height)
}

func (v *Viewport) margin() int {
	if v.Height <= 0 {
		return 0
	}
	return max(0, min(v.ScrollOff, (v.Height-1)/2))
}

// ScrollToRow adjusts Top so row is visible and reports whether it moved.
func (v *Viewport) ScrollToRow(row, total int) bool {
	if v.Height <= 0 {
		return false
	}
	old := v.Top
	m := v.margin()
	if row-m < v.Top {
		v.Top = row - m
	} else if row+m >= v.Top+v.Height {
		// The margin does not scroll past the last row.
		v.Top = min(row+m-v.Height+1, max(row-v.Height+1, total-v.Height))
	}
	v.Clamp(total)
	return v.Top != old
}

// Center puts row in the middle of the window.
func (v *Viewport) Center(row, total int) {
	v.Top = row - v.Height/2
	v.Clamp(total)
}

// ScrollToColumn adjusts Left so the cell range [cell, cell+w) is visible.
func (v *Viewport) ScrollToColumn(cell, w int) bool {
	if v.Width <= 0 {
		return false
	}
	old := v.Left
	w = max(w, 1)
	if cell < v.Left {
		v.Left = cell
	} else if cell+w > v.Left+v.Width {
		v.Left = cell + w - v.Width
	}
	v.Left = max(0, v.Left)
	return v.Left != old
}

// Scroll moves the window by delta rows without touching the caret.
func (v *Viewport) Scroll(delta, total int) {
	v.Top += delta
	v.Clamp(total)
}

// Clamp keeps Top within [0, total-1].
func (v *Viewport) Clamp(total int) {
	v.Top = max(0, min(v.Top, total-1))
}

// Visible reports whether row is inside the window.
func (v *Viewport) Visible(row int) bool {
	return row >= v.Top && row < v.Top+v.Height
}

// Bottom is the last row the window can show.
func (v *Viewport) Bottom() int {
	return v.Top + v.Height - 1
}
