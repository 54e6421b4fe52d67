// Package sensigrep provides the command-line interface for the sensigrep
// tool. It configures subcommands (scan, rules, baseline, history, version),
// parses flags, and executes the selected command.
//
// Typical usage from a main package:
//
//	package main
//	import "github.com/sensigrep/sensigrep/cmd/sensigrep"
//	func main() { sensigrep.Execute() }
package sensigrep
