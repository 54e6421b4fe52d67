package report

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/sensigrep/sensigrep/internal/types"
	"golang.org/x/term"
)

type PrintOptions struct {
	NoColor bool
	// Reveal prints match values in full instead of masking them.
	Reveal   bool
	Duration time.Duration

	FilesScanned   int
	EntriesScanned int
	BytesScanned   int64
	Diagnostics    []types.Diagnostic
	Baselined      int
	// Partial is set when some entry could not be read or decoded.
	Partial bool
}

// ColorEnabled reports whether w is a terminal.
func ColorEnabled(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Location formats a match position as "path line N".
func Location(m types.MatchResult) string {
	return fmt.Sprintf("%s line %d", m.Path, m.Line)
}

// SortMatches orders matches by path, then line, then rule.
func SortMatches(ms []types.MatchResult) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Path != ms[j].Path {
			return ms[i].Path < ms[j].Path
		}
		if ms[i].Line != ms[j].Line {
			return ms[i].Line < ms[j].Line
		}
		return ms[i].RuleID < ms[j].RuleID
	})
}

func PrintTable(w io.Writer, matches []types.MatchResult, opts PrintOptions) error {
	ms := append([]types.MatchResult(nil), matches...)
	SortMatches(ms)

	rule := color.New(color.FgYellow)
	if opts.NoColor {
		rule.DisableColor()
	} else {
		rule.EnableColor()
	}

	if len(ms) == 0 {
		fmt.Fprintln(w, "No sensitive data found ✅")
	} else {
		rows := make([][]string, 0, len(ms))
		for _, m := range ms {
			v := m.Match
			if !opts.Reveal {
				v = maskValue(v)
			}
			rows = append(rows, []string{rule.Sprint(m.RuleID), Location(m), v})
		}
		table := tablewriter.NewWriter(w)
		table.Header("Rule", "Location", "Match")
		if err := table.Bulk(rows); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	printSummary(w, len(ms), opts)
	return nil
}

func printSummary(w io.Writer, n int, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned == 0 && len(opts.Diagnostics) == 0 && !opts.Partial {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Matches: %s", humanize.Comma(int64(n)))
	if opts.Baselined > 0 {
		fmt.Fprintf(w, " (%s baselined)", humanize.Comma(int64(opts.Baselined)))
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Files scanned: %s (%s entries, %s)\n",
		humanize.Comma(int64(opts.FilesScanned)),
		humanize.Comma(int64(opts.EntriesScanned)),
		humanize.Bytes(uint64(opts.BytesScanned)))
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	skipped, rulesFailed := 0, 0
	for _, d := range opts.Diagnostics {
		if d.Kind == types.DiagRuleCompile || d.Kind == types.DiagRuleEval {
			rulesFailed++
		} else {
			skipped++
		}
	}
	warn := color.New(color.FgRed)
	if opts.NoColor {
		warn.DisableColor()
	} else {
		warn.EnableColor()
	}
	if rulesFailed > 0 {
		fmt.Fprintln(w, warn.Sprintf("Rule failures: %s", humanize.Comma(int64(rulesFailed))))
	}
	if opts.Partial {
		fmt.Fprintln(w, warn.Sprintf("Completed with some unreadable files: %s skipped", humanize.Comma(int64(skipped))))
	}
}

// PrintDiagnostics lists skipped entries one per line.
func PrintDiagnostics(w io.Writer, diags []types.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(w, "skipped %s\n", d)
	}
}

func maskValue(s string) string {
	r := []rune(s)
	if len(r) <= 8 {
		return "********"
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}
