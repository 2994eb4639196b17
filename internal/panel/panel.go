// Package panel holds the views the window can show. Every panel kind
// answers the same three calls; code that needs the editing session asks
// for it through Editor, which only the editor kind provides.
package panel

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/config"
	"github.com/kobzarvs/qtext/internal/editor"
)

type Kind int

const (
	KindEditor Kind = iota
	KindHelp
)

func (k Kind) String() string {
	switch k {
	case KindEditor:
		return "editor"
	case KindHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Panel is a tagged view. The help kind is a read-only editor over
// generated text, so it scrolls, wraps, searches and copies like any file.
type Panel struct {
	Kind Kind
	view *editor.Editor
}

func NewEditor(ed *editor.Editor) *Panel {
	return &Panel{Kind: KindEditor, view: ed}
}

// NewHelp builds the key reference for cfg's keymap.
func NewHelp(cfg config.Config, opts ...editor.Option) *Panel {
	opts = append(opts, editor.ReadOnly())
	ed := editor.New(cfg, opts...)
	ed.SetText(HelpText(cfg.Keymap))
	ed.Events()
	return &Panel{Kind: KindHelp, view: ed}
}

// Editor returns the editing session, or nil for panels that have none.
func (p *Panel) Editor() *editor.Editor {
	switch p.Kind {
	case KindEditor:
		return p.view
	default:
		return nil
	}
}

func (p *Panel) Render(s tcell.Screen, r editor.Rect) {
	p.view.Render(s, r)
}

func (p *Panel) Resize(r editor.Rect) {
	p.view.Resize(r)
}

// HandleKey returns a Quit event when the help panel asks to be closed.
func (p *Panel) HandleKey(ev *tcell.EventKey) []editor.Event {
	if p.Kind == KindHelp && p.view.Mode() == editor.ModeNormal && closesHelp(ev) {
		return []editor.Event{{Kind: editor.Quit}}
	}
	return p.view.HandleKey(ev)
}

func (p *Panel) HandleMouse(ev *tcell.EventMouse, r editor.Rect) []editor.Event {
	return p.view.HandleMouse(ev, r)
}

func closesHelp(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyF1:
		return true
	case tcell.KeyRune:
		return ev.Rune() == 'q' && ev.Modifiers()&(tcell.ModCtrl|tcell.ModAlt|tcell.ModMeta) == 0
	}
	return false
}

// HelpText lists every action with the keys bound to it in each mode.
func HelpText(km config.Keymap) string {
	var b strings.Builder
	b.WriteString("qtext key reference (q or esc closes)\n")
	for _, m := range []struct {
		title string
		keys  map[string]string
	}{
		{"NORMAL", km.Normal},
		{"INSERT", km.Insert},
	} {
		byAction := make(map[string][]string)
		for k, action := range m.keys {
			byAction[action] = append(byAction[action], k)
		}
		fmt.Fprintf(&b, "\n%s\n", m.title)
		for _, action := range editor.Actions {
			keys := byAction[action]
			if len(keys) == 0 {
				continue
			}
			sort.Slice(keys, func(i, j int) bool {
				if len(keys[i]) != len(keys[j]) {
					return len(keys[i]) < len(keys[j])
				}
				return keys[i] < keys[j]
			})
			fmt.Fprintf(&b, "  %-22s %s\n", action, strings.Join(keys, ", "))
		}
	}
	if len(km.Insert) > 0 {
		b.WriteString("\nIn insert mode any other key types its character.\n")
	}
	b.WriteString("Search: alt+c toggles case, alt+r toggles regex, enter accepts, esc cancels.")
	return b.String()
}
