package gitinfo

import (
	"strings"
	"sync"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/kobzarvs/qtext/internal/logger"
)

type Marker int

const (
	MarkerNone Marker = iota
	MarkerAdded
	MarkerModified
	// MarkerDeleted sits on the line after the removed block.
	MarkerDeleted
)

// LineMarkers compares the committed text with the buffer text line by line.
// Keys are buffer lines.
func LineMarkers(head, text string) map[int]Marker {
	a := splitLines(head)
	b := splitLines(text)
	out := make(map[int]Marker)
	m := difflib.NewMatcher(a, b)
	for _, op := range m.GetOpCodes() {
		switch op.Tag {
		case 'i':
			for j := op.J1; j < op.J2; j++ {
				out[j] = MarkerAdded
			}
		case 'r':
			for j := op.J1; j < op.J2; j++ {
				out[j] = MarkerModified
			}
		case 'd':
			line := op.J1
			if line >= len(b) {
				line = len(b) - 1
			}
			if _, ok := out[line]; !ok && line >= 0 {
				out[line] = MarkerDeleted
			}
		}
	}
	return out
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

type DiffRequest struct {
	Path    string
	Text    string
	Version uint64
}

// DiffResult carries markers for the buffer at Version.
type DiffResult struct {
	Path    string
	Version uint64
	Markers map[int]Marker
	Err     error
}

// Differ computes line markers off the UI goroutine. Only the newest
// pending request is kept; HEAD content is cached per path until Forget.
type Differ struct {
	mu      sync.Mutex
	heads   map[string]string
	pending *DiffRequest
	wake    chan struct{}
	results chan DiffResult
	stopCh  chan struct{}
	once    sync.Once

	headContent func(path string) (string, error)
}

func NewDiffer() *Differ {
	return &Differ{
		heads:       make(map[string]string),
		wake:        make(chan struct{}, 1),
		results:     make(chan DiffResult, 4),
		stopCh:      make(chan struct{}),
		headContent: HeadContent,
	}
}

func (d *Differ) Start() {
	go d.loop()
}

func (d *Differ) Stop() {
	d.once.Do(func() { close(d.stopCh) })
}

func (d *Differ) Results() <-chan DiffResult {
	return d.results
}

// Request replaces any pending request.
func (d *Differ) Request(req DiffRequest) {
	d.mu.Lock()
	d.pending = &req
	d.mu.Unlock()
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Forget drops the cached HEAD content of path, e.g. after a commit or a
// branch switch.
func (d *Differ) Forget(path string) {
	d.mu.Lock()
	delete(d.heads, path)
	d.mu.Unlock()
}

func (d *Differ) loop() {
	for {
		select {
		case <-d.stopCh:
			return
		case <-d.wake:
		}
		d.mu.Lock()
		req := d.pending
		d.pending = nil
		d.mu.Unlock()
		if req == nil {
			continue
		}
		res := d.compute(*req)
		select {
		case d.results <- res:
		case <-d.stopCh:
			return
		}
	}
}

func (d *Differ) compute(req DiffRequest) DiffResult {
	d.mu.Lock()
	head, ok := d.heads[req.Path]
	d.mu.Unlock()
	if !ok {
		var err error
		head, err = d.headContent(req.Path)
		if err != nil {
			logger.Debug("head content unavailable", "path", req.Path, "error", err)
			return DiffResult{Path: req.Path, Version: req.Version, Err: err}
		}
		d.mu.Lock()
		d.heads[req.Path] = head
		d.mu.Unlock()
	}
	return DiffResult{Path: req.Path, Version: req.Version, Markers: LineMarkers(head, req.Text)}
}
