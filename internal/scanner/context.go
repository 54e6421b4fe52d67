package scanner

import (
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/sensigrep/sensigrep/internal/types"
)

// JoinPath extends a relative path with the internal path of an entry.
// Example: JoinPath("logs/app.zip", "inner/a.log") -> "logs/app.zip/inner/a.log"
func JoinPath(parent, inner string) string {
	inner = strings.TrimPrefix(filepath.ToSlash(inner), "./")
	inner = strings.TrimLeft(inner, "/")
	if parent == "" {
		return inner
	}
	if inner == "" {
		return parent
	}
	return parent + PathSeparator + inner
}

// RelativePath renders full relative to root with forward slashes. When root
// is the file itself the base name is used.
func RelativePath(root, full string) string {
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." {
		return filepath.Base(full)
	}
	return filepath.ToSlash(rel)
}

// SplitLines splits text the way the matcher counts lines: on '\n', with a
// trailing '\r' removed and no empty final line for a trailing newline.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// ContextBlock joins the previous, current and next line around idx (0-based).
// A missing neighbour contributes an empty string.
func ContextBlock(lines []string, idx int) string {
	var prev, cur, next string
	if idx > 0 && idx-1 < len(lines) {
		prev = lines[idx-1]
	}
	if idx >= 0 && idx < len(lines) {
		cur = lines[idx]
	}
	if idx+1 >= 0 && idx+1 < len(lines) {
		next = lines[idx+1]
	}
	return prev + types.ContextSeparator + cur + types.ContextSeparator + next
}

// HighlightOffsets locates every occurrence of match in full and returns the
// spans in characters. The search cursor always moves past the end of the
// previous occurrence, so overlapping repeats are reported once per cursor step.
func HighlightOffsets(full, match string) []Span {
	if match == "" {
		return nil
	}
	var out []Span
	matchChars := utf8.RuneCountInString(match)
	cursor := 0
	chars := 0
	for cursor < len(full) {
		i := strings.Index(full[cursor:], match)
		if i < 0 {
			break
		}
		chars += utf8.RuneCountInString(full[cursor : cursor+i])
		out = append(out, Span{Start: chars, End: chars + matchChars})
		chars += matchChars
		cursor += i + len(match)
	}
	return out
}
