package core

import (
	"context"

	"github.com/sensigrep/sensigrep/internal/artifacts"
	"github.com/sensigrep/sensigrep/internal/decompile"
	"github.com/sensigrep/sensigrep/internal/engine"
	"github.com/sensigrep/sensigrep/internal/rules"
	"github.com/sensigrep/sensigrep/internal/types"
)

// Re-export selected internal types as a stable public API surface.
type (
	Config      = engine.Config
	Result      = engine.Result
	Limits      = artifacts.Limits
	MatchResult = types.MatchResult
	Diagnostic  = types.Diagnostic
	PatternRule = rules.PatternRule
	Decompiler  = decompile.Decompiler
)

// ErrRoot is returned when the scan root cannot be read.
var ErrRoot = engine.ErrRoot

// Scan is the stable entrypoint for other programs. Only root errors and
// context cancellation are returned; unreadable entries show up as
// Result.Diagnostics.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	return engine.Scan(ctx, cfg)
}

// DefaultRules returns the built-in catalogue.
func DefaultRules() []PatternRule { return rules.Default() }

// RuleSet returns a named built-in set: "log", "package" or "all".
func RuleSet(name string) []PatternRule { return rules.Set(name) }

// NewDecompiler builds an external class decompiler from a command line.
func NewDecompiler(cmdline string) (Decompiler, error) {
	x, err := decompile.NewExec(cmdline)
	if err != nil {
		return nil, err
	}
	return x, nil
}
