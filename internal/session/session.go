// Package session remembers where the caret and view were in each file so
// reopening a file puts the user back in place.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/kobzarvs/qtext/internal/logger"
)

// MaxFiles bounds how many files are remembered; the least recently seen
// entries are dropped first.
const MaxFiles = 200

const autosaveInterval = 15 * time.Second

type FileState struct {
	Line int       `json:"line"`
	Col  int       `json:"col"`
	Top  int       `json:"top"`
	Left int       `json:"left,omitempty"`
	Seen time.Time `json:"seen"`
}

type state struct {
	Files      map[string]FileState `json:"files"`
	ActiveFile string               `json:"active_file,omitempty"`
	LastSaved  time.Time            `json:"last_saved"`
}

type Manager struct {
	mu     sync.RWMutex
	state  state
	path   string
	dirty  bool
	stopCh chan struct{}
	once   sync.Once
	now    func() time.Time
}

// NewManager opens the session file under XDG_STATE_HOME.
func NewManager() (*Manager, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return Open(path), nil
}

// Open loads the session stored at path. A missing or unreadable file
// starts an empty session.
func Open(path string) *Manager {
	m := &Manager{
		state:  state{Files: make(map[string]FileState)},
		path:   path,
		stopCh: make(chan struct{}),
		now:    time.Now,
	}
	m.load()
	return m
}

func Path() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "qtext", "session.json"), nil
}

func (m *Manager) load() {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("session read failed", "path", m.path, "error", err)
		}
		return
	}
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		logger.Warn("session decode failed", "path", m.path, "error", err)
		return
	}
	if st.Files == nil {
		st.Files = make(map[string]FileState)
	}
	m.state = st
}

// Save writes the session if anything changed since the last write.
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.dirty {
		return nil
	}
	m.state.LastSaved = m.now()
	data, err := json.MarshalIndent(m.state, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("session dir: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	m.dirty = false
	return nil
}

func (m *Manager) FileState(absPath string) (FileState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st, ok := m.state.Files[absPath]
	return st, ok
}

// SetFileState records st for absPath and makes it the active file.
func (m *Manager) SetFileState(absPath string, st FileState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	st.Seen = m.now()
	if old, ok := m.state.Files[absPath]; ok && old.Line == st.Line && old.Col == st.Col &&
		old.Top == st.Top && old.Left == st.Left && m.state.ActiveFile == absPath {
		return
	}
	m.state.Files[absPath] = st
	m.state.ActiveFile = absPath
	m.prune()
	m.dirty = true
}

func (m *Manager) ActiveFile() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.ActiveFile
}

func (m *Manager) prune() {
	if len(m.state.Files) <= MaxFiles {
		return
	}
	paths := make([]string, 0, len(m.state.Files))
	for p := range m.state.Files {
		paths = append(paths, p)
	}
	sort.Slice(paths, func(i, j int) bool {
		return m.state.Files[paths[i]].Seen.Before(m.state.Files[paths[j]].Seen)
	})
	for _, p := range paths[:len(paths)-MaxFiles] {
		delete(m.state.Files, p)
	}
}

// Start saves periodically until Stop.
func (m *Manager) Start() {
	go func() {
		ticker := time.NewTicker(autosaveInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := m.Save(); err != nil {
					logger.Warn("session autosave failed", "error", err)
				}
			case <-m.stopCh:
				return
			}
		}
	}()
}

// Stop ends autosave and writes the final state.
func (m *Manager) Stop() error {
	m.once.Do(func() { close(m.stopCh) })
	return m.Save()
}
