// Package engine coordinates a scan: it walks the root, unwraps every file
// through the artifact dispatcher, evaluates each (text entry, rule) pair and
// aggregates the results into one session. External consumers should use the
// stable facade in pkg/core.
package engine
