// Package scanner holds the helpers that turn raw match positions into what a
// reviewer sees: relative paths through nested containers, three-line context
// blocks and character offsets for highlighting.
package scanner

// PathSeparator joins a container's relative path with the internal path of
// an entry inside it.
const PathSeparator = "/"

// Span is a half-open [Start, End) range measured in characters (code points).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}
