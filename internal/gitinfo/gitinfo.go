// Package gitinfo answers the few git questions the editor asks: where the
// repository root is, which branch is checked out, and how the buffer
// differs from the committed file.
package gitinfo

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

var ErrNotRepo = errors.New("not a git repository")

func Branch(path string) string {
	gitDir, err := findGitDir(path)
	if err != nil {
		return ""
	}
	branch, err := readHead(gitDir)
	if err != nil {
		return ""
	}
	return branch
}

func Root(path string) string {
	gitDir, err := findGitDir(path)
	if err != nil {
		return ""
	}
	return filepath.Dir(gitDir)
}

type rootState int

const (
	rootUnchecked rootState = iota
	rootAbsent
	rootPresent
)

// RootCache remembers the repository root of one path. The lookup runs
// once per path; asking for a different path starts over.
type RootCache struct {
	path  string
	state rootState
	root  string
}

// Lookup returns the repository root for path and whether there is one.
func (c *RootCache) Lookup(path string) (string, bool) {
	if path != c.path {
		c.path = path
		c.state = rootUnchecked
		c.root = ""
	}
	if c.state == rootUnchecked {
		c.root = Root(path)
		c.state = rootAbsent
		if c.root != "" {
			c.state = rootPresent
		}
	}
	return c.root, c.state == rootPresent
}

// Invalidate forces the next Lookup to search again.
func (c *RootCache) Invalidate() {
	c.state = rootUnchecked
	c.root = ""
}

// HeadContent returns the committed content of path at HEAD.
func HeadContent(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	root := Root(abs)
	if root == "" {
		return "", ErrNotRepo
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", err
	}
	cmd := exec.Command("git", "-C", root, "show", "HEAD:"+filepath.ToSlash(rel))
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(string(exitErr.Stderr))
			return "", fmt.Errorf("git show %s: %s", rel, msg)
		}
		return "", fmt.Errorf("git show %s: %w", rel, err)
	}
	return string(out), nil
}

func findGitDir(path string) (string, error) {
	start := path
	info, err := os.Stat(start)
	if err != nil {
		// A file that does not exist yet still lives in its directory.
		start = filepath.Dir(start)
		if info, err = os.Stat(start); err != nil {
			return "", err
		}
	}
	if !info.IsDir() {
		start = filepath.Dir(start)
	}
	for {
		gitPath := filepath.Join(start, ".git")
		if info, err := os.Stat(gitPath); err == nil {
			if info.IsDir() {
				return gitPath, nil
			}
			if info.Mode().IsRegular() {
				data, err := os.ReadFile(gitPath)
				if err != nil {
					return "", err
				}
				line := strings.TrimSpace(string(data))
				const prefix = "gitdir:"
				if strings.HasPrefix(line, prefix) {
					dir := strings.TrimSpace(strings.TrimPrefix(line, prefix))
					if !filepath.IsAbs(dir) {
						dir = filepath.Join(start, dir)
					}
					return dir, nil
				}
			}
		}
		parent := filepath.Dir(start)
		if parent == start {
			break
		}
		start = parent
	}
	return "", ErrNotRepo
}

func readHead(gitDir string) (string, error) {
	f, err := os.Open(filepath.Join(gitDir, "HEAD"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return "", errors.New("empty HEAD")
	}
	line := strings.TrimSpace(scanner.Text())
	const refPrefix = "ref:"
	if strings.HasPrefix(line, refPrefix) {
		ref := strings.TrimSpace(strings.TrimPrefix(line, refPrefix))
		return strings.TrimPrefix(ref, "refs/heads/"), nil
	}
	if len(line) >= 7 {
		return "detached:" + line[:7], nil
	}
	return "detached", nil
}
