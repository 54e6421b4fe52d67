package types

import (
	"fmt"
	"sync"
)

// ContextSeparator joins the previous, matched and next line of a context block.
const ContextSeparator = "\n"

// MatchResult describes one accepted rule match at a relative path and
// 1-based line, together with the surrounding three-line context block.
type MatchResult struct {
	Path    string `json:"path"`
	Line    int    `json:"line"`
	Match   string `json:"match"`
	Context string `json:"context"`
	RuleID  string `json:"rule"`
}

// DiagnosticKind classifies why an entry or rule was skipped.
type DiagnosticKind string

const (
	DiagEntryDecode     DiagnosticKind = "not_text"
	DiagContainerFormat DiagnosticKind = "container_format"
	DiagRuleCompile     DiagnosticKind = "rule_compile"
	DiagRuleEval        DiagnosticKind = "rule_eval"
	DiagExternalTool    DiagnosticKind = "external_tool"
	DiagRead            DiagnosticKind = "read"
)

// Diagnostic records a non-fatal failure: the entry (or rule) was skipped and
// the scan continued.
type Diagnostic struct {
	Path string         `json:"path"`
	Kind DiagnosticKind `json:"kind"`
	Err  string         `json:"error"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%s)", d.Path, d.Err, d.Kind)
}

// Session is the single shared result collection of one scan. Every read and
// append goes through mu.
type Session struct {
	mu          sync.Mutex
	matches     []MatchResult
	diagnostics []Diagnostic
}

// NewSession returns an empty session.
func NewSession() *Session { return &Session{} }

// Append adds results in order. Results are never modified after appending.
func (s *Session) Append(rs ...MatchResult) {
	if len(rs) == 0 {
		return
	}
	s.mu.Lock()
	s.matches = append(s.matches, rs...)
	s.mu.Unlock()
}

// Report records a diagnostic for a skipped entry or rule.
func (s *Session) Report(d Diagnostic) {
	s.mu.Lock()
	s.diagnostics = append(s.diagnostics, d)
	s.mu.Unlock()
}

// Matches returns a copy of the accumulated results.
func (s *Session) Matches() []MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]MatchResult, len(s.matches))
	copy(out, s.matches)
	return out
}

// Diagnostics returns a copy of the recorded diagnostics.
func (s *Session) Diagnostics() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.diagnostics))
	copy(out, s.diagnostics)
	return out
}

// Len reports the number of results appended so far.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}
