package gitinfo

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func gitAvailable() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s failed: %v\n%s", strings.Join(args, " "), err, string(out))
	}
	return string(out)
}

func initRepo(t *testing.T) string {
	t.Helper()
	if !gitAvailable() {
		t.Skip("git not available")
	}
	dir := t.TempDir()
	runGit(t, dir, "init")
	runGit(t, dir, "config", "user.email", "test@example.com")
	runGit(t, dir, "config", "user.name", "Test")
	runGit(t, dir, "config", "commit.gpgsign", "false")
	return dir
}

func TestBranchAndRoot(t *testing.T) {
	dir := initRepo(t)
	runGit(t, dir, "checkout", "-b", "feature/x")

	if got := Branch(dir); got != "feature/x" {
		t.Fatalf("Branch = %q, want feature/x", got)
	}
	if root := Root(filepath.Join(dir, "missing.txt")); root != dir {
		t.Fatalf("Root = %q, want %q", root, dir)
	}
}

func TestRootOutsideRepo(t *testing.T) {
	dir := t.TempDir()
	if root := Root(dir); root != "" {
		t.Skipf("temp dir is inside a repository at %s", root)
	}
	if b := Branch(dir); b != "" {
		t.Fatalf("Branch = %q outside a repository", b)
	}
	if _, err := HeadContent(filepath.Join(dir, "a.txt")); !errors.Is(err, ErrNotRepo) {
		t.Fatalf("HeadContent err = %v, want ErrNotRepo", err)
	}
}

func TestRootCache(t *testing.T) {
	dir := initRepo(t)
	var c RootCache
	root, ok := c.Lookup(filepath.Join(dir, "a.txt"))
	if !ok || root != dir {
		t.Fatalf("Lookup = %q, %v", root, ok)
	}
	if c.state != rootPresent {
		t.Fatalf("state = %v, want present", c.state)
	}

	other := t.TempDir()
	if _, ok := c.Lookup(filepath.Join(other, "b.txt")); ok && Root(other) == "" {
		t.Fatalf("Lookup kept the old root for a new path")
	}
	c.Invalidate()
	if c.state != rootUnchecked {
		t.Fatalf("state = %v after Invalidate", c.state)
	}
}

func TestHeadContent(t *testing.T) {
	dir := initRepo(t)
	path := filepath.Join(dir, "sub", "file.txt")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("one\ntwo\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	runGit(t, dir, "add", ".")
	runGit(t, dir, "commit", "-m", "init")
	if err := os.WriteFile(path, []byte("changed\n"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	got, err := HeadContent(path)
	if err != nil {
		t.Fatalf("HeadContent error: %v", err)
	}
	if got != "one\ntwo\n" {
		t.Fatalf("HeadContent = %q", got)
	}
	if _, err := HeadContent(filepath.Join(dir, "untracked.txt")); err == nil {
		t.Fatalf("expected error for an untracked file")
	}
}

func TestLineMarkers(t *testing.T) {
	head := "a\nb\nc\nd\n"
	cases := []struct {
		text string
		want map[int]Marker
	}{
		{"a\nb\nc\nd\n", map[int]Marker{}},
		{"a\nb\nx\nc\nd\n", map[int]Marker{2: MarkerAdded}},
		{"a\nB\nc\nd\n", map[int]Marker{1: MarkerModified}},
		{"a\nd\n", map[int]Marker{1: MarkerDeleted}},
		{"a\nb\nc\n", map[int]Marker{2: MarkerDeleted}},
		{"a\r\nb\r\nc\r\nd\r\n", map[int]Marker{}},
	}
	for _, tc := range cases {
		got := LineMarkers(head, tc.text)
		if len(got) != len(tc.want) {
			t.Fatalf("LineMarkers(%q) = %v, want %v", tc.text, got, tc.want)
		}
		for line, m := range tc.want {
			if got[line] != m {
				t.Fatalf("LineMarkers(%q)[%d] = %v, want %v", tc.text, line, got[line], m)
			}
		}
	}
}

func TestDifferKeepsNewestRequest(t *testing.T) {
	d := NewDiffer()
	calls := 0
	d.headContent = func(string) (string, error) {
		calls++
		return "a\nb\n", nil
	}
	// Both requests land before the worker runs; only the second is served.
	d.Request(DiffRequest{Path: "f", Text: "a\n", Version: 1})
	d.Request(DiffRequest{Path: "f", Text: "a\nb\nc\n", Version: 2})
	d.Start()
	defer d.Stop()

	select {
	case res := <-d.Results():
		if res.Version != 2 || res.Markers[2] != MarkerAdded {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for diff")
	}

	d.Request(DiffRequest{Path: "f", Text: "a\nb\n", Version: 3})
	select {
	case res := <-d.Results():
		if res.Version != 3 || len(res.Markers) != 0 {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for diff")
	}
	if calls != 1 {
		t.Fatalf("head read %d times, want cached", calls)
	}
}

func TestDifferReportsHeadError(t *testing.T) {
	d := NewDiffer()
	d.headContent = func(string) (string, error) { return "", ErrNotRepo }
	d.Start()
	defer d.Stop()
	d.Request(DiffRequest{Path: "f", Text: "x", Version: 1})
	select {
	case res := <-d.Results():
		if !errors.Is(res.Err, ErrNotRepo) || res.Markers != nil {
			t.Fatalf("result = %+v", res)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timeout waiting for diff")
	}
}
