package document

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

type LoadErrorKind int

const (
	IOError LoadErrorKind = iota
	InvalidEncoding
	FileTooLarge
)

func (k LoadErrorKind) String() string {
	switch k {
	case InvalidEncoding:
		return "invalid encoding"
	case FileTooLarge:
		return "file too large"
	default:
		return "i/o error"
	}
}

// LoadError is returned by Load and LoadFile.
type LoadError struct {
	Kind  LoadErrorKind
	Path  string
	Size  int64
	Limit int64
	Err   error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Path != "" {
		b.WriteString(": ")
		b.WriteString(e.Path)
	}
	if e.Kind == FileTooLarge {
		fmt.Fprintf(&b, " (%d bytes, limit %d)", e.Size, e.Limit)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err is a *LoadError of the given kind.
func IsLoadError(err error, kind LoadErrorKind) bool {
	var le *LoadError
	return errors.As(err, &le) && le.Kind == kind
}

// Load decodes data as UTF-8. maxBytes <= 0 disables the size limit.
func Load(data []byte, maxBytes int64) (*Document, error) {
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return nil, &LoadError{Kind: FileTooLarge, Size: int64(len(data)), Limit: maxBytes}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{Kind: InvalidEncoding, Err: errors.New("content is not valid UTF-8")}
	}
	return FromString(string(data)), nil
}

// LoadFile reads and loads path. The size limit is checked before reading.
func LoadFile(path string, maxBytes int64) (*Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{Kind: IOError, Path: path, Err: err}
	}
	if maxBytes > 0 && info.Size() > maxBytes {
		return nil, &LoadError{Kind: FileTooLarge, Path: path, Size: info.Size(), Limit: maxBytes}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Kind: IOError, Path: path, Err: err}
	}
	doc, err := Load(data, maxBytes)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.Path = path
		}
		return nil, err
	}
	return doc, nil
}

// Serialize renders the document with its line ending applied uniformly.
func (d *Document) Serialize() []byte {
	lines := d.lines.Slice(0, d.lines.Len())
	return []byte(strings.Join(lines, d.ending.String()))
}
