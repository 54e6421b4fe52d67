package audit

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sensigrep/sensigrep/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogScanAndHistory(t *testing.T) {
	dir := t.TempDir()
	a := NewAuditLog(dir)
	assert.Equal(t, filepath.Join(dir, FileName), a.Path())

	require.NoError(t, a.LogScan(ScanRecord{Root: dir, TotalMatches: 1}))
	require.NoError(t, a.LogScan(ScanRecord{Root: dir, TotalMatches: 2, ScanID: "fixed"}))

	hist, err := a.LoadHistory()
	require.NoError(t, err)
	require.Len(t, hist, 2)
	assert.Equal(t, 2, hist[0].TotalMatches, "newest first")
	assert.Equal(t, "fixed", hist[0].ScanID)
	_, err = uuid.Parse(hist[1].ScanID)
	assert.NoError(t, err)

	st, err := os.Stat(a.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestNewAuditLog_FileRoot(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "app.log")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	assert.Equal(t, filepath.Join(dir, FileName), NewAuditLog(p).Path())
}

func TestLoadHistory_Missing(t *testing.T) {
	_, err := NewAuditLog(t.TempDir()).LoadHistory()
	assert.Error(t, err)
}

func TestLogScan_ConcurrentWritersKeepLinesIntact(t *testing.T) {
	a := NewAuditLog(t.TempDir())
	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, a.LogScan(ScanRecord{TotalMatches: i}))
		}()
	}
	wg.Wait()
	raw, err := os.ReadFile(a.Path())
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(raw)), "\n"), 8)
	hist, err := a.LoadHistory()
	require.NoError(t, err)
	assert.Len(t, hist, 8)
}

func TestCreateScanRecord_OmitsValues(t *testing.T) {
	all := []types.MatchResult{
		{Path: "b.log", Line: 2, Match: "13812345678", RuleID: "phone"},
		{Path: "a.log", Line: 1, Match: "x@y.com", RuleID: "email"},
		{Path: "a.log", Line: 5, Match: "13900000000", RuleID: "phone"},
	}
	diags := []types.Diagnostic{{Path: "bad.zip", Kind: types.DiagContainerFormat}}
	rec := CreateScanRecord("id", "root", all, all[:2], diags, 3, 4, true, time.Second, "base.json")
	assert.Equal(t, 3, rec.TotalMatches)
	assert.Equal(t, 2, rec.NewMatches)
	assert.Equal(t, 1, rec.BaselinedCount)
	assert.Equal(t, map[string]int{"phone": 2, "email": 1}, rec.RuleCounts)
	assert.Equal(t, 1, rec.Skipped)
	assert.True(t, rec.Partial)
	require.Len(t, rec.TopMatches, 2)
	assert.Equal(t, MatchSummary{Path: "a.log", Rule: "email", Line: 1}, rec.TopMatches[0])
}
