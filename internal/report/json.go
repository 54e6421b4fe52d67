package report

import (
	"encoding/json"
	"io"

	"github.com/sensigrep/sensigrep/internal/scanner"
	"github.com/sensigrep/sensigrep/internal/types"
)

// Document is the JSON output of one scan.
type Document struct {
	ScanID      string             `json:"scan_id,omitempty"`
	Root        string             `json:"root"`
	Partial     bool               `json:"partial"`
	Matches     []Match            `json:"matches"`
	Diagnostics []types.Diagnostic `json:"diagnostics,omitempty"`
	Stats       Stats              `json:"stats"`
}

// Match is a match result plus the character spans of the matched text
// inside its context.
type Match struct {
	types.MatchResult
	Highlights []scanner.Span `json:"highlights,omitempty"`
}

// Annotate attaches highlight spans to each match.
func Annotate(ms []types.MatchResult) []Match {
	out := make([]Match, 0, len(ms))
	for _, m := range ms {
		out = append(out, Match{MatchResult: m, Highlights: scanner.HighlightOffsets(m.Context, m.Match)})
	}
	return out
}

type Stats struct {
	FilesScanned   int    `json:"files_scanned"`
	EntriesScanned int    `json:"entries_scanned"`
	BytesScanned   int64  `json:"bytes_scanned"`
	Baselined      int    `json:"baselined"`
	Duration       string `json:"duration"`
}

// WriteJSON pretty-prints the document. Matches are never null.
func WriteJSON(w io.Writer, doc Document) error {
	if doc.Matches == nil {
		doc.Matches = []Match{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(doc)
}

// ReadJSON decodes a document written by WriteJSON.
func ReadJSON(r io.Reader) (Document, error) {
	var doc Document
	err := json.NewDecoder(r).Decode(&doc)
	return doc, err
}
