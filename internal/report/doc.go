// Package report renders scan results as a table or JSON and manages
// baselines of previously accepted matches.
package report
