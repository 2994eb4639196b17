package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestConfigDirEnv(t *testing.T) {
	t.Setenv("QTEXT_CONFIG_HOME", "/tmp/qtext-config")
	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/qtext-config" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/qtext-config")
	}

	t.Setenv("QTEXT_CONFIG_HOME", "")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	dir, err = ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir error: %v", err)
	}
	if dir != "/tmp/xdg/qtext" {
		t.Fatalf("ConfigDir = %q, want %q", dir, "/tmp/xdg/qtext")
	}
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	t.Setenv("QTEXT_CONFIG_HOME", t.TempDir())
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	def := Default()
	if cfg.Editor != def.Editor {
		t.Fatalf("Editor = %+v, want %+v", cfg.Editor, def.Editor)
	}
}

func TestLoadWithThemeAndOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTEXT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "test.toml"), `
foreground = "#111111"
background = "#222222"
statusline-foreground = "#333333"
`)

	writeFile(t, filepath.Join(dir, "config.toml"), `
[editor]
tab-width = 8
line-numbers = "relative"
git-branch-symbol = "branch"
undo-merge-window-ms = 250
large-file-threshold = 4096

[theme]
theme = "test"
commandline-background = "#123456"
diff-added = "green"

[keymap.normal]
x = "quit"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.TabWidth != 8 {
		t.Fatalf("TabWidth = %d, want 8", cfg.Editor.TabWidth)
	}
	if cfg.Editor.LineNumbers != "relative" {
		t.Fatalf("LineNumbers = %q, want %q", cfg.Editor.LineNumbers, "relative")
	}
	if cfg.Editor.GitBranchSymbol != "branch" {
		t.Fatalf("GitBranchSymbol = %q, want %q", cfg.Editor.GitBranchSymbol, "branch")
	}
	if cfg.Editor.UndoMergeWindowMs != 250 {
		t.Fatalf("UndoMergeWindowMs = %d, want 250", cfg.Editor.UndoMergeWindowMs)
	}
	if cfg.Editor.LargeFileThreshold != 4096 {
		t.Fatalf("LargeFileThreshold = %d, want 4096", cfg.Editor.LargeFileThreshold)
	}
	if !cfg.Editor.WordWrap || cfg.Editor.ScrollOff != 0 {
		t.Fatalf("unset keys changed: wrap=%v scroll-off=%d", cfg.Editor.WordWrap, cfg.Editor.ScrollOff)
	}
	if cfg.Theme.Foreground != "#111111" {
		t.Fatalf("Foreground = %q, want %q", cfg.Theme.Foreground, "#111111")
	}
	if cfg.Theme.Background != "#222222" {
		t.Fatalf("Background = %q, want %q", cfg.Theme.Background, "#222222")
	}
	if cfg.Theme.CommandlineBackground != "#123456" {
		t.Fatalf("CommandlineBackground = %q, want %q", cfg.Theme.CommandlineBackground, "#123456")
	}
	if cfg.Theme.DiffAdded != "green" {
		t.Fatalf("DiffAdded = %q, want %q", cfg.Theme.DiffAdded, "green")
	}
	if cfg.Keymap.Normal["x"] != "quit" {
		t.Fatalf("keymap x = %q, want %q", cfg.Keymap.Normal["x"], "quit")
	}
	if cfg.Keymap.Normal["h"] != "move_left" {
		t.Fatalf("keymap h = %q, want %q", cfg.Keymap.Normal["h"], "move_left")
	}
}

func TestLoadExplicitZeroAndFalse(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTEXT_CONFIG_HOME", dir)
	writeFile(t, filepath.Join(dir, "config.toml"), `
[editor]
word-wrap = false
scroll-off = 0
smart-case = false
max-file-bytes = 0
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Editor.WordWrap {
		t.Fatalf("WordWrap = true, want false")
	}
	if cfg.Editor.ScrollOff != 0 {
		t.Fatalf("ScrollOff = %d, want 0", cfg.Editor.ScrollOff)
	}
	if cfg.Editor.SmartCase {
		t.Fatalf("SmartCase = true, want false")
	}
	if cfg.Editor.MaxFileBytes != 0 {
		t.Fatalf("MaxFileBytes = %d, want 0", cfg.Editor.MaxFileBytes)
	}
}

func TestLoadBadTOML(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTEXT_CONFIG_HOME", dir)
	writeFile(t, filepath.Join(dir, "config.toml"), "[editor\n")
	cfg, err := Load()
	if err == nil {
		t.Fatalf("Load error = nil, want parse error")
	}
	if cfg.Editor.TabWidth != Default().Editor.TabWidth {
		t.Fatalf("TabWidth = %d, want default", cfg.Editor.TabWidth)
	}
}

func TestLoadThemeWrapped(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("QTEXT_CONFIG_HOME", dir)

	writeFile(t, filepath.Join(dir, "theme", "wrapped.toml"), `
[theme]
foreground = "#aaaaaa"
background = "#bbbbbb"
`)

	theme, err := LoadTheme("wrapped")
	if err != nil {
		t.Fatalf("LoadTheme error: %v", err)
	}
	if theme.Foreground != "#aaaaaa" {
		t.Fatalf("Foreground = %q, want %q", theme.Foreground, "#aaaaaa")
	}
	if theme.Background != "#bbbbbb" {
		t.Fatalf("Background = %q, want %q", theme.Background, "#bbbbbb")
	}
}
