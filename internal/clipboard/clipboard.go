// Package clipboard connects the editor to the system clipboard.
package clipboard

import (
	"fmt"

	"github.com/atotto/clipboard"

	"github.com/kobzarvs/qtext/internal/logger"
)

// System reads and writes the OS clipboard. When no clipboard utility is
// available it keeps the text in process so copy and paste still work
// within one session.
type System struct {
	local    string
	fallback bool

	read  func() (string, error)
	write func(string) error
}

func New() *System {
	s := &System{
		fallback: clipboard.Unsupported,
		read:     clipboard.ReadAll,
		write:    clipboard.WriteAll,
	}
	if s.fallback {
		logger.Info("system clipboard unsupported, using process clipboard")
	}
	return s
}

// Local reports whether text stays inside the process.
func (s *System) Local() bool {
	return s.fallback
}

func (s *System) WriteText(text string) error {
	s.local = text
	if s.fallback {
		return nil
	}
	if err := s.write(text); err != nil {
		return fmt.Errorf("clipboard write: %w", err)
	}
	return nil
}

func (s *System) ReadText() (string, error) {
	if s.fallback {
		return s.local, nil
	}
	text, err := s.read()
	if err != nil {
		return "", fmt.Errorf("clipboard read: %w", err)
	}
	return text, nil
}
