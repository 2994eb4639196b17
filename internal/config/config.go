package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Keymap struct {
	Normal map[string]string `toml:"normal"`
	Insert map[string]string `toml:"insert"`
}

type EditorOptions struct {
	TabWidth        int    `toml:"tab-width"`
	LineNumbers     string `toml:"line-numbers"`
	GitBranchSymbol string `toml:"git-branch-symbol"`
	WordWrap        bool   `toml:"word-wrap"`
	ScrollOff       int    `toml:"scroll-off"`
	SmartCase       bool   `toml:"smart-case"`

	UndoMergeWindowMs int `toml:"undo-merge-window-ms"`
	UndoMaxGroups     int `toml:"undo-max-groups"`
	UndoMaxBytes      int `toml:"undo-max-bytes"`

	// MaxFileBytes refuses to open larger files. LargeFileThreshold turns
	// off word wrap for documents above it.
	MaxFileBytes       int64 `toml:"max-file-bytes"`
	LargeFileThreshold int   `toml:"large-file-threshold"`
	SearchMaxMatches   int   `toml:"search-max-matches"`
}

type Theme struct {
	Theme                      string `toml:"theme"`
	Foreground                 string `toml:"foreground"`
	Background                 string `toml:"background"`
	StatuslineForeground       string `toml:"statusline-foreground"`
	StatuslineBackground       string `toml:"statusline-background"`
	CommandlineForeground      string `toml:"commandline-foreground"`
	CommandlineBackground      string `toml:"commandline-background"`
	LineNumberForeground       string `toml:"line-number-foreground"`
	LineNumberActiveForeground string `toml:"line-number-active-foreground"`
	SelectionForeground        string `toml:"selection-foreground"`
	SelectionBackground        string `toml:"selection-background"`
	SearchMatchForeground      string `toml:"search-foreground"`
	SearchMatchBackground      string `toml:"search-background"`
	SearchCurrentForeground    string `toml:"search-current-foreground"`
	SearchCurrentBackground    string `toml:"search-current-background"`
	DiffAdded                  string `toml:"diff-added"`
	DiffModified               string `toml:"diff-modified"`
	DiffDeleted                string `toml:"diff-deleted"`
	SyntaxKeyword              string `toml:"syntax-keyword"`
	SyntaxString               string `toml:"syntax-string"`
	SyntaxComment              string `toml:"syntax-comment"`
	SyntaxType                 string `toml:"syntax-type"`
	SyntaxFunction             string `toml:"syntax-function"`
	SyntaxNumber               string `toml:"syntax-number"`
	SyntaxConstant             string `toml:"syntax-constant"`
	SyntaxOperator             string `toml:"syntax-operator"`
	SyntaxPunctuation          string `toml:"syntax-punctuation"`
	SyntaxField                string `toml:"syntax-field"`
	SyntaxBuiltin              string `toml:"syntax-builtin"`
	SyntaxVariable             string `toml:"syntax-variable"`
	SyntaxParameter            string `toml:"syntax-parameter"`
	BranchForeground           string `toml:"branch-foreground"`
	BranchBackground           string `toml:"branch-background"`
}

type Config struct {
	Editor EditorOptions `toml:"editor"`
	Theme  Theme         `toml:"theme"`
	Keymap Keymap        `toml:"keymap"`
}

func Default() Config {
	return Config{
		Editor: EditorOptions{
			TabWidth:           4,
			LineNumbers:        "absolute",
			GitBranchSymbol:    "git:",
			WordWrap:           true,
			ScrollOff:          0,
			SmartCase:          true,
			UndoMergeWindowMs:  1000,
			UndoMaxGroups:      1000,
			UndoMaxBytes:       64 << 20,
			MaxFileBytes:       256 << 20,
			LargeFileThreshold: 16 << 20,
			SearchMaxMatches:   100000,
		},
		Theme: Theme{
			Theme:                      "",
			Foreground:                 "#B3B1AD",
			Background:                 "#0A0E14",
			StatuslineForeground:       "#B3B1AD",
			StatuslineBackground:       "#0F1419",
			CommandlineForeground:      "#B3B1AD",
			CommandlineBackground:      "#0F1419",
			LineNumberForeground:       "#3E4B59",
			LineNumberActiveForeground: "#B3B1AD",
			SelectionForeground:        "#B3B1AD",
			SelectionBackground:        "#27425A",
			SearchMatchForeground:      "#000000",
			SearchMatchBackground:      "#FFD700",
			SearchCurrentForeground:    "#000000",
			SearchCurrentBackground:    "#FF8F40",
			DiffAdded:                  "#91B362",
			DiffModified:               "#6994BF",
			DiffDeleted:                "#D96C75",
			SyntaxKeyword:              "#FFA759",
			SyntaxString:               "#BAE67E",
			SyntaxComment:              "#5C6773",
			SyntaxType:                 "#5CCFE6",
			SyntaxFunction:             "#FFD173",
			SyntaxNumber:               "#D4BFFF",
			SyntaxConstant:             "#FFDD8E",
			SyntaxOperator:             "#F29668",
			SyntaxPunctuation:          "#C0C0C0",
			SyntaxField:                "#E6B673",
			SyntaxBuiltin:              "#73D0FF",
			SyntaxVariable:             "#B3B1AD",
			SyntaxParameter:            "#B3B1AD",
			BranchForeground:           "#0A0E14",
			BranchBackground:           "#59C2FF",
		},
		Keymap: Keymap{
			Normal: map[string]string{
				"h":               "move_left",
				"j":               "move_down",
				"k":               "move_up",
				"l":               "move_right",
				"left":            "move_left",
				"down":            "move_down",
				"up":              "move_up",
				"right":           "move_right",
				"shift+left":      "select_left",
				"shift+right":     "select_right",
				"shift+up":        "select_up",
				"shift+down":      "select_down",
				"shift+home":      "select_line_start",
				"shift+end":       "select_line_end",
				"home":            "first_non_blank",
				"end":             "line_end",
				"cmd+home":        "file_start",
				"cmd+end":         "file_end",
				"ctrl+home":       "file_start",
				"ctrl+end":        "file_end",
				"g":               "file_start",
				"G":               "file_end",
				"w":               "word_right",
				"b":               "word_left",
				"cmd+left":        "word_left",
				"cmd+right":       "word_right",
				"alt+left":        "word_left",
				"alt+right":       "word_right",
				"cmd+shift+left":  "select_word_left",
				"cmd+shift+right": "select_word_right",
				"pgup":            "page_up",
				"pgdn":            "page_down",
				"ctrl+y":          "scroll_up",
				"ctrl+e":          "scroll_down",

				"i": "enter_insert",
				"a": "append",
				"A": "append_line_end",
				"o": "open_below",

				"x":     "select_line",
				";":     "collapse_selection",
				"%":     "select_all",
				"cmd+a": "select_all",

				"d":             "delete_selection",
				"del":           "delete_char",
				"cmd+backspace": "delete_word_left",
				"y":             "copy",
				"p":             "paste",
				"cmd+c":         "copy",
				"cmd+x":         "cut",
				"cmd+v":         "paste",
				"tab":           "indent",
				"shift+tab":     "unindent",
				">":             "indent",
				"<":             "unindent",

				"u":           "undo",
				"U":           "redo",
				"ctrl+r":      "redo",
				"cmd+z":       "undo",
				"cmd+shift+z": "redo",

				"/":     "search_forward",
				"?":     "search_backward",
				"n":     "search_next",
				"N":     "search_prev",
				"cmd+f": "search_forward",

				"ctrl+g": "goto_line_prompt",
				"cmd+g":  "goto_line_prompt",
				"cmd+l":  "toggle_line_numbers",
				"alt+z":  "toggle_wrap",
				"f1":     "help",

				"cmd+s":  "save",
				"ctrl+s": "save",
				"ctrl+c": "quit",
				"ctrl+q": "quit",
			},
			Insert: map[string]string{
				"esc":             "enter_normal",
				"left":            "move_left",
				"down":            "move_down",
				"up":              "move_up",
				"right":           "move_right",
				"shift+left":      "select_left",
				"shift+right":     "select_right",
				"shift+up":        "select_up",
				"shift+down":      "select_down",
				"shift+home":      "select_line_start",
				"shift+end":       "select_line_end",
				"home":            "first_non_blank",
				"end":             "line_end",
				"cmd+home":        "file_start",
				"cmd+end":         "file_end",
				"ctrl+home":       "file_start",
				"ctrl+end":        "file_end",
				"cmd+left":        "word_left",
				"cmd+right":       "word_right",
				"alt+left":        "word_left",
				"alt+right":       "word_right",
				"cmd+shift+left":  "select_word_left",
				"cmd+shift+right": "select_word_right",
				"pgup":            "page_up",
				"pgdn":            "page_down",
				"backspace":       "backspace",
				"enter":           "newline",
				"del":             "delete_char",
				"cmd+backspace":   "delete_word_left",
				"alt+backspace":   "delete_word_left",
				"ctrl+w":          "delete_word_left",
				"tab":             "indent",
				"shift+tab":       "unindent",
				"cmd+a":           "select_all",
				"cmd+c":           "copy",
				"cmd+x":           "cut",
				"cmd+v":           "paste",
				"cmd+z":           "undo",
				"cmd+shift+z":     "redo",
				"cmd+s":           "save",
				"ctrl+s":          "save",
			},
		},
	}
}

func Load() (Config, error) {
	cfg := Default()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	var userCfg Config
	md, err := toml.Decode(string(data), &userCfg)
	if err != nil {
		return cfg, err
	}

	if userCfg.Editor.TabWidth > 0 {
		cfg.Editor.TabWidth = userCfg.Editor.TabWidth
	}
	if userCfg.Editor.LineNumbers != "" {
		cfg.Editor.LineNumbers = userCfg.Editor.LineNumbers
	}
	if userCfg.Editor.GitBranchSymbol != "" {
		cfg.Editor.GitBranchSymbol = userCfg.Editor.GitBranchSymbol
	}
	// Zero and false are meaningful for these, so presence decides.
	if md.IsDefined("editor", "word-wrap") {
		cfg.Editor.WordWrap = userCfg.Editor.WordWrap
	}
	if md.IsDefined("editor", "scroll-off") && userCfg.Editor.ScrollOff >= 0 {
		cfg.Editor.ScrollOff = userCfg.Editor.ScrollOff
	}
	if md.IsDefined("editor", "smart-case") {
		cfg.Editor.SmartCase = userCfg.Editor.SmartCase
	}
	if md.IsDefined("editor", "undo-merge-window-ms") && userCfg.Editor.UndoMergeWindowMs >= 0 {
		cfg.Editor.UndoMergeWindowMs = userCfg.Editor.UndoMergeWindowMs
	}
	if userCfg.Editor.UndoMaxGroups > 0 {
		cfg.Editor.UndoMaxGroups = userCfg.Editor.UndoMaxGroups
	}
	if userCfg.Editor.UndoMaxBytes > 0 {
		cfg.Editor.UndoMaxBytes = userCfg.Editor.UndoMaxBytes
	}
	if md.IsDefined("editor", "max-file-bytes") {
		cfg.Editor.MaxFileBytes = userCfg.Editor.MaxFileBytes
	}
	if md.IsDefined("editor", "large-file-threshold") {
		cfg.Editor.LargeFileThreshold = userCfg.Editor.LargeFileThreshold
	}
	if userCfg.Editor.SearchMaxMatches > 0 {
		cfg.Editor.SearchMaxMatches = userCfg.Editor.SearchMaxMatches
	}
	if userCfg.Theme.Theme != "" {
		cfg.Theme.Theme = userCfg.Theme.Theme
	}
	if cfg.Theme.Theme != "" {
		theme, err := LoadTheme(cfg.Theme.Theme)
		if err != nil {
			return cfg, err
		}
		mergeTheme(&cfg.Theme, theme)
	}
	mergeTheme(&cfg.Theme, userCfg.Theme)
	if userCfg.Keymap.Normal != nil {
		for k, v := range userCfg.Keymap.Normal {
			cfg.Keymap.Normal[k] = v
		}
	}
	if userCfg.Keymap.Insert != nil {
		for k, v := range userCfg.Keymap.Insert {
			cfg.Keymap.Insert[k] = v
		}
	}

	return cfg, nil
}

// mergeTheme copies every non-empty color of src into dst.
func mergeTheme(dst *Theme, src Theme) {
	set := func(d *string, s string) {
		if s != "" {
			*d = s
		}
	}
	set(&dst.Foreground, src.Foreground)
	set(&dst.Background, src.Background)
	set(&dst.StatuslineForeground, src.StatuslineForeground)
	set(&dst.StatuslineBackground, src.StatuslineBackground)
	set(&dst.CommandlineForeground, src.CommandlineForeground)
	set(&dst.CommandlineBackground, src.CommandlineBackground)
	set(&dst.LineNumberForeground, src.LineNumberForeground)
	set(&dst.LineNumberActiveForeground, src.LineNumberActiveForeground)
	set(&dst.SelectionForeground, src.SelectionForeground)
	set(&dst.SelectionBackground, src.SelectionBackground)
	set(&dst.SearchMatchForeground, src.SearchMatchForeground)
	set(&dst.SearchMatchBackground, src.SearchMatchBackground)
	set(&dst.SearchCurrentForeground, src.SearchCurrentForeground)
	set(&dst.SearchCurrentBackground, src.SearchCurrentBackground)
	set(&dst.DiffAdded, src.DiffAdded)
	set(&dst.DiffModified, src.DiffModified)
	set(&dst.DiffDeleted, src.DiffDeleted)
	set(&dst.SyntaxKeyword, src.SyntaxKeyword)
	set(&dst.SyntaxString, src.SyntaxString)
	set(&dst.SyntaxComment, src.SyntaxComment)
	set(&dst.SyntaxType, src.SyntaxType)
	set(&dst.SyntaxFunction, src.SyntaxFunction)
	set(&dst.SyntaxNumber, src.SyntaxNumber)
	set(&dst.SyntaxConstant, src.SyntaxConstant)
	set(&dst.SyntaxOperator, src.SyntaxOperator)
	set(&dst.SyntaxPunctuation, src.SyntaxPunctuation)
	set(&dst.SyntaxField, src.SyntaxField)
	set(&dst.SyntaxBuiltin, src.SyntaxBuiltin)
	set(&dst.SyntaxVariable, src.SyntaxVariable)
	set(&dst.SyntaxParameter, src.SyntaxParameter)
	set(&dst.BranchForeground, src.BranchForeground)
	set(&dst.BranchBackground, src.BranchBackground)
}

func ThemePath(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "theme", name+".toml"), nil
}

func LoadTheme(name string) (Theme, error) {
	path, err := ThemePath(name)
	if err != nil {
		return Theme{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	var t Theme
	if _, err := toml.Decode(string(data), &t); err == nil && t.Foreground+t.Background != "" {
		return t, nil
	}
	var wrap struct {
		Theme Theme `toml:"theme"`
	}
	if _, err := toml.Decode(string(data), &wrap); err != nil {
		return Theme{}, err
	}
	return wrap.Theme, nil
}

func ConfigDir() (string, error) {
	if v := os.Getenv("QTEXT_CONFIG_HOME"); v != "" {
		return filepath.Join(v), nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "qtext"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "qtext"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}
