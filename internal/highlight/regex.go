package highlight

import (
	"bytes"
	"regexp"
	"strings"
)

// Grammars without a tree-sitter parser are colored line by line.
var (
	jsonString  = regexp.MustCompile(`"(?:[^"\\]|\\.)*"`)
	jsonLiteral = regexp.MustCompile(`-?\d+(?:\.\d+)?(?:[eE][+-]?\d+)?|\b(?:true|false|null)\b`)

	gitGlob = regexp.MustCompile(`\*\*|[*?]|\[[^\]]+\]`)
)

func regexLanguage(name string) bool {
	return name == "json" || name == "gitignore"
}

func regexHighlights(lang string, source []byte, startLine, endLine int) map[int][]Span {
	out := make(map[int][]Span)
	row := 0
	for len(source) > 0 || row == 0 {
		line := source
		if i := bytes.IndexByte(source, '\n'); i >= 0 {
			line, source = source[:i], source[i+1:]
		} else {
			source = nil
		}
		if row > endLine {
			break
		}
		if row >= startLine {
			if spans := regexLine(lang, string(line)); len(spans) > 0 {
				out[row] = spans
			}
		}
		row++
	}
	return out
}

func regexLine(lang, line string) []Span {
	switch lang {
	case "json":
		return jsonLine(line)
	case "gitignore":
		return gitignoreLine(line)
	}
	return nil
}

func jsonLine(line string) []Span {
	var spans []Span
	strs := jsonString.FindAllStringIndex(line, -1)
	for _, loc := range strs {
		kind := "string"
		if rest := strings.TrimLeft(line[loc[1]:], " \t"); strings.HasPrefix(rest, ":") {
			kind = "field"
		}
		spans = append(spans, Span{StartCol: loc[0], EndCol: loc[1], Kind: kind})
	}
	for _, loc := range jsonLiteral.FindAllStringIndex(line, -1) {
		if insideAny(strs, loc[0]) {
			continue
		}
		kind := "number"
		if c := line[loc[0]]; c == 't' || c == 'f' || c == 'n' {
			kind = "constant"
		}
		spans = append(spans, Span{StartCol: loc[0], EndCol: loc[1], Kind: kind})
	}
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '{', '}', '[', ']', ',', ':':
			if !insideAny(strs, i) {
				spans = append(spans, Span{StartCol: i, EndCol: i + 1, Kind: "punctuation"})
			}
		}
	}
	return spans
}

func insideAny(locs [][]int, at int) bool {
	for _, loc := range locs {
		if at >= loc[0] && at < loc[1] {
			return true
		}
	}
	return false
}

func gitignoreLine(line string) []Span {
	if line == "" {
		return nil
	}
	if strings.HasPrefix(line, "#") {
		return []Span{{StartCol: 0, EndCol: len(line), Kind: "comment"}}
	}
	var spans []Span
	if strings.HasPrefix(line, "!") {
		spans = append(spans, Span{StartCol: 0, EndCol: 1, Kind: "keyword"})
	}
	for _, loc := range gitGlob.FindAllStringIndex(line, -1) {
		spans = append(spans, Span{StartCol: loc[0], EndCol: loc[1], Kind: "operator"})
	}
	if strings.HasSuffix(line, "/") {
		spans = append(spans, Span{StartCol: len(line) - 1, EndCol: len(line), Kind: "punctuation"})
	}
	return spans
}
