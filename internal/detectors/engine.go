// Package detectors compiles pattern rules and evaluates them line by line
// against decoded text, applying each rule's validator.
package detectors

import (
	"errors"
	"fmt"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/sensigrep/sensigrep/internal/rules"
	"github.com/sensigrep/sensigrep/internal/scanner"
	"github.com/sensigrep/sensigrep/internal/textdecode"
	"github.com/sensigrep/sensigrep/internal/types"
	v "github.com/sensigrep/sensigrep/internal/validate"
)

// DefaultMatchTimeout bounds a single regex evaluation on one line.
const DefaultMatchTimeout = 2 * time.Second

var (
	// ErrRuleCompile wraps an invalid rule pattern.
	ErrRuleCompile = errors.New("rule does not compile")
	// ErrRuleEval is returned when a rule failed on both the decoded text
	// and its GBK re-decode.
	ErrRuleEval = errors.New("rule evaluation failed")
)

// RuleError ties a compile or evaluation failure to its rule.
type RuleError struct {
	RuleID string
	Err    error
}

func (e *RuleError) Error() string { return e.RuleID + ": " + e.Err.Error() }

func (e *RuleError) Unwrap() error { return e.Err }

// Input is one decoded text entry handed to the engine.
type Input struct {
	Path string
	Text textdecode.Text
	// Raw is the undecoded content, used for the GBK retry.
	Raw []byte
	// FromClass marks text recovered by decompiling a class file.
	FromClass bool
}

type compiled struct {
	rule   rules.PatternRule
	re     *regexp2.Regexp
	strict *regexp2.Regexp
}

// Engine holds the compiled, enabled rules in evaluation order.
type Engine struct {
	rules []compiled
}

// Compile builds an engine from the enabled rules in rs. Rules that fail to
// compile are left out and returned as *RuleError wrapping ErrRuleCompile;
// they contribute no matches.
func Compile(rs []rules.PatternRule, timeout time.Duration) (*Engine, []error) {
	if timeout <= 0 {
		timeout = DefaultMatchTimeout
	}
	e := &Engine{}
	var errs []error
	for _, r := range rules.Enabled(rs) {
		c, err := compileRule(r, timeout)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		e.rules = append(e.rules, c)
	}
	return e, errs
}

func compileRule(r rules.PatternRule, timeout time.Duration) (compiled, error) {
	re, err := regexp2.Compile(r.Pattern, regexp2.None)
	if err != nil {
		return compiled{}, &RuleError{RuleID: r.ID, Err: fmt.Errorf("%w: %v", ErrRuleCompile, err)}
	}
	re.MatchTimeout = timeout
	c := compiled{rule: r, re: re}
	if sp := r.StrictPattern(); sp != "" {
		strict, err := regexp2.Compile(sp, regexp2.None)
		if err != nil {
			return compiled{}, &RuleError{RuleID: r.ID, Err: fmt.Errorf("%w: strict pattern: %v", ErrRuleCompile, err)}
		}
		strict.MatchTimeout = timeout
		c.strict = strict
	}
	return c, nil
}

// Len is the number of compiled rules.
func (e *Engine) Len() int { return len(e.rules) }

// Rule returns the i-th compiled rule.
func (e *Engine) Rule(i int) rules.PatternRule { return e.rules[i].rule }

// Run evaluates every rule in order. A rule that fails is skipped and its
// error returned alongside the matches of the others.
func (e *Engine) Run(in Input) ([]types.MatchResult, []error) {
	var out []types.MatchResult
	var errs []error
	for i := range e.rules {
		ms, err := e.RunRule(i, in)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, ms...)
	}
	return out, errs
}

// RunRule evaluates the i-th rule. If the regex engine errors, the whole rule
// is retried once against a GBK re-decode of the raw bytes.
func (e *Engine) RunRule(i int, in Input) ([]types.MatchResult, error) {
	c := e.rules[i]
	ms, err := c.search(in.Path, in.Text.Content, in.FromClass)
	if err == nil {
		return ms, nil
	}
	retry := textdecode.DecodeGBK(in.Raw)
	ms, err2 := c.search(in.Path, retry.Content, in.FromClass)
	if err2 != nil {
		return nil, &RuleError{RuleID: c.rule.ID, Err: fmt.Errorf("%w on %s: %v", ErrRuleEval, in.Path, err2)}
	}
	return ms, nil
}

func (c compiled) search(path, content string, fromClass bool) ([]types.MatchResult, error) {
	re := c.re
	if fromClass && c.rule.Validator == rules.QuotedSecretOverride && c.strict != nil {
		re = c.strict
	}
	lines := scanner.SplitLines(content)
	var out []types.MatchResult
	for idx, line := range lines {
		m, err := re.FindStringMatch(line)
		if err != nil {
			return nil, err
		}
		if m == nil {
			continue
		}
		ok, err := c.accept(line, m, fromClass)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		out = append(out, types.MatchResult{
			Path:    path,
			Line:    idx + 1,
			Match:   m.String(),
			Context: scanner.ContextBlock(lines, idx),
			RuleID:  c.rule.ID,
		})
	}
	return out, nil
}

func (c compiled) accept(line string, m *regexp2.Match, fromClass bool) (bool, error) {
	switch c.rule.Validator {
	case rules.EmailStrict:
		return sameSpan(c.strict, line, m)
	case rules.IDChecksum:
		return v.LooksLikeIDCard(m.String()), nil
	case rules.QuotedSecretOverride:
		if fromClass {
			return v.QuotedBothSides(m.String()), nil
		}
	}
	return true, nil
}

// sameSpan runs the strict pattern over the line. A strict match at a
// different span than the loose one rejects the loose match. When the strict
// pattern finds nothing the '*' was a masking placeholder and the loose match
// stands.
func sameSpan(strict *regexp2.Regexp, line string, loose *regexp2.Match) (bool, error) {
	if strict == nil {
		return true, nil
	}
	m, err := strict.FindStringMatch(line)
	if err != nil {
		return false, err
	}
	if m == nil {
		return true, nil
	}
	return m.Index == loose.Index && m.Length == loose.Length, nil
}
