// Package core provides a small, stable facade over sensigrep's internal
// scan engine for programs that embed the scanner.
//
// Example:
//
//	cfg := core.Config{Root: "logs", Rules: core.RuleSet("log"), Concurrency: 4}
//	res, err := core.Scan(ctx, cfg)
//	if err != nil { /* handle */ }
//	_ = core.MarshalMatches(os.Stdout, res.Matches)
package core
