package document

import (
	"unicode"

	"github.com/rivo/uniseg"
)

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || s[i] == '\r' {
			return false
		}
	}
	return true
}

// GraphemeCount returns the number of grapheme clusters in s.
func GraphemeCount(s string) int {
	if isASCII(s) {
		return len(s)
	}
	return uniseg.GraphemeClusterCount(s)
}

// Graphemes splits s into grapheme clusters.
func Graphemes(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, len(s))
	if isASCII(s) {
		for i := 0; i < len(s); i++ {
			out = append(out, s[i:i+1])
		}
		return out
	}
	state := -1
	var cluster string
	for len(s) > 0 {
		cluster, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		out = append(out, cluster)
	}
	return out
}

// ByteCol returns the byte offset of grapheme column col in s. Columns
// past the end clamp to len(s).
func ByteCol(s string, col int) int {
	if col <= 0 {
		return 0
	}
	if isASCII(s) {
		return min(col, len(s))
	}
	off := 0
	state := -1
	var cluster string
	rest := s
	for i := 0; i < col && len(rest) > 0; i++ {
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		off += len(cluster)
	}
	return off
}

// ColFromByte returns the grapheme column containing byte offset off.
// Offsets inside a cluster round down to the cluster start.
func ColFromByte(s string, off int) int {
	if off <= 0 {
		return 0
	}
	if isASCII(s) {
		return min(off, len(s))
	}
	col, pos := 0, 0
	state := -1
	var cluster string
	rest := s
	for len(rest) > 0 {
		cluster, rest, _, state = uniseg.FirstGraphemeClusterInString(rest, state)
		if pos+len(cluster) > off {
			return col
		}
		pos += len(cluster)
		col++
	}
	return col
}

// SliceCols returns the graphemes [from, to) of s.
func SliceCols(s string, from, to int) string {
	if to <= from {
		return ""
	}
	start := ByteCol(s, from)
	end := start + ByteCol(s[start:], to-from)
	return s[start:end]
}

// Class is the lexical class of a grapheme cluster, used for word motion
// and wrap boundaries.
type Class int

const (
	ClassSpace Class = iota
	ClassWord
	ClassPunct
)

// ClassOf classifies a cluster by its first rune.
func ClassOf(cluster string) Class {
	for _, r := range cluster {
		switch {
		case unicode.IsSpace(r):
			return ClassSpace
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r):
			return ClassWord
		default:
			return ClassPunct
		}
	}
	return ClassSpace
}
