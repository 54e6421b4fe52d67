// Package rules defines pattern rules and the built-in rule catalogue.
package rules

import (
	"fmt"
	"strings"
)

// ValidatorKind selects the extra acceptance logic applied after a regex match.
// It is fixed when the rule is defined, never inferred from the pattern text.
type ValidatorKind string

const (
	None                 ValidatorKind = ""
	EmailStrict          ValidatorKind = "email_strict"
	IDChecksum           ValidatorKind = "id_checksum"
	QuotedSecretOverride ValidatorKind = "quoted_secret_override"
)

// ParseValidatorKind accepts the YAML spelling of a validator tag.
func ParseValidatorKind(s string) (ValidatorKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "email_strict", "email":
		return EmailStrict, nil
	case "id_checksum", "idcard", "id_card":
		return IDChecksum, nil
	case "quoted_secret_override", "quoted_secret":
		return QuotedSecretOverride, nil
	}
	return None, fmt.Errorf("unknown validator %q", s)
}

// PatternRule is one regex with an optional validator.
//
// Strict holds the companion pattern for EmailStrict (the pattern that must
// agree on the span) and QuotedSecretOverride (the replacement used for text
// recovered from compiled classes). When empty the catalogue default applies.
type PatternRule struct {
	ID        string        `json:"id" yaml:"id"`
	Group     string        `json:"group,omitempty" yaml:"group,omitempty"`
	Pattern   string        `json:"pattern" yaml:"pattern"`
	Validator ValidatorKind `json:"validator,omitempty" yaml:"validator,omitempty"`
	Strict    string        `json:"strict,omitempty" yaml:"strict,omitempty"`
	Enabled   bool          `json:"enabled" yaml:"enabled"`
}

// StrictPattern returns the companion pattern for the rule's validator.
func (r PatternRule) StrictPattern() string {
	if r.Strict != "" {
		return r.Strict
	}
	switch r.Validator {
	case EmailStrict:
		return EmailStrictPattern
	case QuotedSecretOverride:
		return QuotedSecretStrictPattern
	}
	return ""
}

// Enabled filters rs down to enabled rules, keeping order.
func Enabled(rs []PatternRule) []PatternRule {
	out := make([]PatternRule, 0, len(rs))
	for _, r := range rs {
		if r.Enabled {
			out = append(out, r)
		}
	}
	return out
}

// ByGroup returns the rules whose group is one of groups, keeping order.
func ByGroup(rs []PatternRule, groups ...string) []PatternRule {
	want := map[string]bool{}
	for _, g := range groups {
		want[g] = true
	}
	var out []PatternRule
	for _, r := range rs {
		if want[r.Group] {
			out = append(out, r)
		}
	}
	return out
}

// IDs lists rule IDs in order.
func IDs(rs []PatternRule) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}
