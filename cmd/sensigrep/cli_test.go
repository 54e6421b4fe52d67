package sensigrep

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sensigrep/sensigrep/internal/report"
	"github.com/sensigrep/sensigrep/internal/rules"
	"github.com/sensigrep/sensigrep/internal/scanner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default so runs do not leak state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("CI", "1")
	resetFlags(rootCmd)
	var stdout, stderr bytes.Buffer
	code := run(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func fixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.log"), []byte("boot\ncall 13812345678 now\nend\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("nothing here\n"), 0o644))
	return dir
}

func TestScanJSON(t *testing.T) {
	dir := fixture(t)
	code, out, stderr := execute(t, "scan", "--json", "-p", dir, "--baseline", "", "--decompiler", "none")
	require.Equal(t, 0, code, stderr)

	doc, err := report.ReadJSON(bytes.NewBufferString(out))
	require.NoError(t, err)
	require.Len(t, doc.Matches, 1)
	m := doc.Matches[0]
	assert.Equal(t, "app.log", m.Path)
	assert.Equal(t, 2, m.Line)
	assert.Equal(t, "13812345678", m.Match)
	assert.Equal(t, "phone", m.RuleID)
	assert.Equal(t, "boot\ncall 13812345678 now\nend", m.Context)
	assert.Equal(t, []scanner.Span{{Start: 10, End: 21}}, m.Highlights)
	assert.Equal(t, 2, doc.Stats.FilesScanned)
	assert.False(t, doc.Partial)
	assert.NotEmpty(t, doc.ScanID)
}

func TestScanTable(t *testing.T) {
	dir := fixture(t)
	code, out, _ := execute(t, "scan", "-p", dir, "--baseline", "", "--decompiler", "none", "--no-update-check", "--reveal")
	require.Equal(t, 0, code)
	assert.Contains(t, out, "app.log line 2")
	assert.Contains(t, out, "13812345678")
	assert.Contains(t, out, "Files scanned: 2")
}

func TestScanFailOnMatch(t *testing.T) {
	dir := fixture(t)
	code, _, _ := execute(t, "scan", "--json", "--fail-on-match", "-p", dir, "--baseline", "", "--decompiler", "none")
	assert.Equal(t, 1, code)

	clean := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(clean, "a.txt"), []byte("hello\n"), 0o644))
	code, _, _ = execute(t, "scan", "--json", "--fail-on-match", "-p", clean, "--baseline", "", "--decompiler", "none")
	assert.Equal(t, 0, code)
}

func TestScanMissingRootIsFatal(t *testing.T) {
	code, _, stderr := execute(t, "scan", "--json", "-p", filepath.Join(t.TempDir(), "missing"), "--decompiler", "none")
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "cannot scan root")
}

func TestScanUnknownRuleSet(t *testing.T) {
	code, _, stderr := execute(t, "scan", "--rules", "bogus", "-p", t.TempDir())
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "unknown rule set")
}

func TestBaselineSuppressesKnownMatches(t *testing.T) {
	dir := fixture(t)
	base := filepath.Join(t.TempDir(), "base.json")
	code, out, stderr := execute(t, "baseline", "update", "-p", dir, "--baseline", base, "--decompiler", "none")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "Baseline updated: 1 matches")

	code, out, _ = execute(t, "scan", "--json", "--fail-on-match", "-p", dir, "--baseline", base, "--decompiler", "none")
	assert.Equal(t, 0, code)
	doc, err := report.ReadJSON(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.Empty(t, doc.Matches)
	assert.Equal(t, 1, doc.Stats.Baselined)
}

func TestRulesCommand(t *testing.T) {
	code, out, _ := execute(t, "rules", "--json", "--rules", "log", "--decompiler", "none", "-p", t.TempDir())
	require.Equal(t, 0, code)
	var rs []rules.PatternRule
	require.NoError(t, json.Unmarshal([]byte(out), &rs))
	ids := rules.IDs(rs)
	assert.Contains(t, ids, "phone")
	assert.Contains(t, ids, "kw_password")
	assert.NotContains(t, ids, "pkg_assignment")
}

func TestLocalConfigRules(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".sensigrep.yml"), []byte(`
rules:
  - name: order_no
    patterns: ['ORD-\d{6}']
`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orders.log"), []byte("x ORD-123456 y 13812345678\n"), 0o644))

	code, out, stderr := execute(t, "scan", "--json", "-p", dir, "--baseline", "", "--decompiler", "none")
	require.Equal(t, 0, code, stderr)
	doc, err := report.ReadJSON(bytes.NewBufferString(out))
	require.NoError(t, err)
	require.Len(t, doc.Matches, 1)
	assert.Equal(t, "order_no", doc.Matches[0].RuleID)
	assert.Equal(t, "ORD-123456", doc.Matches[0].Match)

	code, out, _ = execute(t, "scan", "--json", "--rules", "log", "-p", dir, "--baseline", "", "--decompiler", "none")
	require.Equal(t, 0, code)
	doc, err = report.ReadJSON(bytes.NewBufferString(out))
	require.NoError(t, err)
	require.Len(t, doc.Matches, 1)
	assert.Equal(t, "phone", doc.Matches[0].RuleID)
}

func TestAuditAndHistory(t *testing.T) {
	dir := fixture(t)
	code, _, stderr := execute(t, "scan", "--json", "--audit", "-p", dir, "--baseline", "", "--decompiler", "none")
	require.Equal(t, 0, code, stderr)

	code, out, _ := execute(t, "history", "-p", dir)
	require.Equal(t, 0, code)
	assert.Contains(t, out, "matches=1 new=1 files=2 skipped=0")

	code, out, _ = execute(t, "scan", "--json", "-p", dir, "--baseline", "", "--decompiler", "none")
	require.Equal(t, 0, code)
	doc, err := report.ReadJSON(bytes.NewBufferString(out))
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Stats.FilesScanned, "audit history is not scanned")
}

func TestVersion(t *testing.T) {
	code, out, _ := execute(t, "version", "--check")
	require.Equal(t, 0, code)
	assert.Equal(t, "sensigrep "+version+"\n", out)
}

func TestPickHelpers(t *testing.T) {
	l, g := "local", "global"
	assert.Equal(t, "cli", pickString("cli", &l, &g))
	assert.Equal(t, "local", pickString("", &l, &g))
	assert.Equal(t, "global", pickString("", nil, &g))

	two, three := 2, 3
	assert.Equal(t, 2, pickInt(0, &two, &three))
	assert.Equal(t, 3, pickInt(0, nil, &three))

	f := false
	assert.True(t, pickBool(false, false, nil, nil, true))
	assert.False(t, pickBool(true, false, &f, nil, true))
	assert.False(t, pickBool(false, true, nil, nil, true))
}
