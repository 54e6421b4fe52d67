// Package ignore reads a .sensigrepignore file: one glob per line, '#'
// comments, a trailing '/' for directories.
package ignore

import (
	"bufio"
	"errors"
	"os"
	"path"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileName is looked up at the scan root.
const FileName = ".sensigrepignore"

// Matcher holds the parsed patterns. The zero value matches nothing.
type Matcher struct {
	patterns []string
	dirs     []string
}

// Load parses path. A missing file yields an empty matcher and no error.
func Load(p string) (Matcher, error) {
	var m Matcher
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return m, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		m.Add(sc.Text())
	}
	return m, sc.Err()
}

// Add appends one pattern line.
func (m *Matcher) Add(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	line = strings.TrimPrefix(line, "./")
	if strings.HasSuffix(line, "/") {
		m.dirs = append(m.dirs, strings.TrimSuffix(line, "/"))
		return
	}
	m.patterns = append(m.patterns, line)
}

// Match reports whether the slash-separated relative path is ignored.
func (m Matcher) Match(rel string) bool {
	rel = strings.TrimPrefix(strings.ReplaceAll(rel, "\\", "/"), "./")
	segs := strings.Split(rel, "/")
	for _, d := range m.dirs {
		for i := range segs[:len(segs)-1] {
			if ok, _ := doublestar.Match(d, strings.Join(segs[:i+1], "/")); ok {
				return true
			}
			if ok, _ := doublestar.Match(d, segs[i]); ok {
				return true
			}
		}
	}
	base := path.Base(rel)
	for _, p := range m.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}

// Empty reports whether no patterns were loaded.
func (m Matcher) Empty() bool { return len(m.patterns) == 0 && len(m.dirs) == 0 }
