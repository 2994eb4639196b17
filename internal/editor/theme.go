package editor

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qtext/internal/config"
)

// Theme is the set of styles one render pass uses.
type Theme struct {
	Main             tcell.Style
	Statusline       tcell.Style
	Commandline      tcell.Style
	LineNumber       tcell.Style
	LineNumberActive tcell.Style
	Selection        tcell.Style
	SearchMatch      tcell.Style
	SearchCurrent    tcell.Style
	Branch           tcell.Style
	DiffAdded        tcell.Style
	DiffModified     tcell.Style
	DiffDeleted      tcell.Style
	Syntax           map[string]tcell.Style
}

func NewTheme(t config.Theme) Theme {
	fg := parseColor(t.Foreground, tcell.ColorDefault)
	bg := parseColor(t.Background, tcell.ColorDefault)
	main := tcell.StyleDefault.Foreground(fg).Background(bg)
	pair := func(f, b string) tcell.Style {
		return tcell.StyleDefault.Foreground(parseColor(f, fg)).Background(parseColor(b, bg))
	}
	on := func(f string) tcell.Style {
		return main.Foreground(parseColor(f, fg))
	}
	return Theme{
		Main:             main,
		Statusline:       pair(t.StatuslineForeground, t.StatuslineBackground),
		Commandline:      pair(t.CommandlineForeground, t.CommandlineBackground),
		LineNumber:       on(t.LineNumberForeground),
		LineNumberActive: on(t.LineNumberActiveForeground),
		Selection:        pair(t.SelectionForeground, t.SelectionBackground),
		SearchMatch:      pair(t.SearchMatchForeground, t.SearchMatchBackground),
		SearchCurrent:    pair(t.SearchCurrentForeground, t.SearchCurrentBackground),
		Branch:           pair(t.BranchForeground, t.BranchBackground),
		DiffAdded:        on(t.DiffAdded),
		DiffModified:     on(t.DiffModified),
		DiffDeleted:      on(t.DiffDeleted),
		Syntax: map[string]tcell.Style{
			"keyword":     on(t.SyntaxKeyword),
			"string":      on(t.SyntaxString),
			"comment":     on(t.SyntaxComment),
			"type":        on(t.SyntaxType),
			"function":    on(t.SyntaxFunction),
			"number":      on(t.SyntaxNumber),
			"constant":    on(t.SyntaxConstant),
			"operator":    on(t.SyntaxOperator),
			"punctuation": on(t.SyntaxPunctuation),
			"field":       on(t.SyntaxField),
			"builtin":     on(t.SyntaxBuiltin),
			"variable":    on(t.SyntaxVariable),
			"parameter":   on(t.SyntaxParameter),
		},
	}
}

// withBackground keeps the foreground of s and takes the background of
// overlay.
func withBackground(s, overlay tcell.Style) tcell.Style {
	_, bg, _ := overlay.Decompose()
	return s.Background(bg)
}

func parseColor(name string, fallback tcell.Color) tcell.Color {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	if strings.HasPrefix(name, "#") && len(name) == 7 {
		r, err1 := strconv.ParseInt(name[1:3], 16, 32)
		g, err2 := strconv.ParseInt(name[3:5], 16, 32)
		b, err3 := strconv.ParseInt(name[5:7], 16, 32)
		if err1 == nil && err2 == nil && err3 == nil {
			return tcell.NewRGBColor(int32(r), int32(g), int32(b))
		}
		return fallback
	}
	name = strings.ToLower(name)
	if name == "default" {
		return tcell.ColorDefault
	}
	c := tcell.GetColor(name)
	if c == tcell.ColorDefault {
		return fallback
	}
	return c
}
