// Package audit appends one JSON record per scan to a local history file.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/sensigrep/sensigrep/internal/types"
)

// FileName is the history file created next to the scanned data.
const FileName = ".sensigrep_audit.jsonl"

type ScanRecord struct {
	Timestamp      time.Time      `json:"timestamp"`
	ScanID         string         `json:"scan_id"`
	Root           string         `json:"root"`
	TotalMatches   int            `json:"total_matches"`
	NewMatches     int            `json:"new_matches"`
	BaselinedCount int            `json:"baselined_count"`
	RuleCounts     map[string]int `json:"rule_counts"`
	FilesScanned   int            `json:"files_scanned"`
	EntriesScanned int            `json:"entries_scanned"`
	Skipped        int            `json:"skipped"`
	Partial        bool           `json:"partial"`
	Duration       string         `json:"duration"`
	BaselineFile   string         `json:"baseline_file,omitempty"`
	TopMatches     []MatchSummary `json:"top_matches,omitempty"`
}

// MatchSummary locates a match without its value.
type MatchSummary struct {
	Path string `json:"path"`
	Rule string `json:"rule"`
	Line int    `json:"line"`
}

type AuditLog struct {
	logPath string
}

// NewAuditLog places the history in root, or next to root when it is a file.
func NewAuditLog(root string) *AuditLog {
	dir := root
	if st, err := os.Stat(root); err == nil && !st.IsDir() {
		dir = filepath.Dir(root)
	}
	return &AuditLog{logPath: filepath.Join(dir, FileName)}
}

func (a *AuditLog) Path() string { return a.logPath }

// LoadHistory returns records newest first. Corrupt lines are skipped.
func (a *AuditLog) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(a.logPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record ScanRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// LogScan appends record under an exclusive file lock so concurrent scans of
// the same tree do not interleave lines.
func (a *AuditLog) LogScan(record ScanRecord) error {
	if record.ScanID == "" {
		record.ScanID = uuid.NewString()
	}
	lock := flock.New(a.logPath + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock audit log: %w", err)
	}
	defer func() { _ = lock.Unlock() }()

	f, err := os.OpenFile(a.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

func CreateScanRecord(
	scanID string,
	root string,
	all []types.MatchResult,
	fresh []types.MatchResult,
	diags []types.Diagnostic,
	filesScanned, entriesScanned int,
	partial bool,
	duration time.Duration,
	baselineFile string,
) ScanRecord {
	counts := make(map[string]int)
	for _, m := range all {
		counts[m.RuleID]++
	}

	top := make([]MatchSummary, 0, 10)
	for _, m := range fresh {
		top = append(top, MatchSummary{Path: m.Path, Rule: m.RuleID, Line: m.Line})
	}
	sort.SliceStable(top, func(i, j int) bool {
		if top[i].Path != top[j].Path {
			return top[i].Path < top[j].Path
		}
		return top[i].Line < top[j].Line
	})
	if len(top) > 10 {
		top = top[:10]
	}

	return ScanRecord{
		Timestamp:      time.Now(),
		ScanID:         scanID,
		Root:           root,
		TotalMatches:   len(all),
		NewMatches:     len(fresh),
		BaselinedCount: len(all) - len(fresh),
		RuleCounts:     counts,
		FilesScanned:   filesScanned,
		EntriesScanned: entriesScanned,
		Skipped:        len(diags),
		Partial:        partial,
		Duration:       duration.String(),
		BaselineFile:   baselineFile,
		TopMatches:     top,
	}
}
