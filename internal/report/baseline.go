package report

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/sensigrep/sensigrep/internal/types"
)

// Baseline holds fingerprints of accepted matches. Match values are not
// stored, only their hashes.
type Baseline struct {
	Items map[string]bool `json:"items"`
}

func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Items: map[string]bool{}}
	f, err := os.ReadFile(path)
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(f, &b); err != nil {
		return Baseline{Items: map[string]bool{}}, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	if b.Items == nil {
		b.Items = map[string]bool{}
	}
	return b, nil
}

func SaveBaseline(path string, matches []types.MatchResult) error {
	b := Baseline{Items: map[string]bool{}}
	for _, m := range matches {
		b.Items[Fingerprint(m)] = true
	}
	buf, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o600)
}

// FilterNew drops matches present in the baseline.
func FilterNew(matches []types.MatchResult, base Baseline) []types.MatchResult {
	var out []types.MatchResult
	for _, m := range matches {
		if !base.Items[Fingerprint(m)] {
			out = append(out, m)
		}
	}
	return out
}

// Fingerprint identifies a match by path, rule and value. Line numbers are
// left out so edits above a match do not resurface it.
func Fingerprint(m types.MatchResult) string {
	h := xxhash.New()
	_, _ = h.WriteString(m.Path)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(m.RuleID)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(m.Match)
	return strconv.FormatUint(h.Sum64(), 16)
}
