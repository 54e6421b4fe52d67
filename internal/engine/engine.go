package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sensigrep/sensigrep/internal/artifacts"
	"github.com/sensigrep/sensigrep/internal/decompile"
	"github.com/sensigrep/sensigrep/internal/detectors"
	"github.com/sensigrep/sensigrep/internal/ignore"
	"github.com/sensigrep/sensigrep/internal/pool"
	"github.com/sensigrep/sensigrep/internal/rules"
	"github.com/sensigrep/sensigrep/internal/types"
)

// ErrRoot wraps any failure to access the scan root. It is the only error
// that aborts a scan.
var ErrRoot = errors.New("cannot scan root")

// Config controls one scan. It is not modified while the scan runs.
type Config struct {
	Root string
	// Rules are evaluated in order; disabled rules are ignored.
	Rules []rules.PatternRule

	IncludeGlobs    string
	ExcludeGlobs    string
	DefaultExcludes bool
	// MaxBytes skips files larger than this on disk. Zero means no limit.
	MaxBytes int64

	// Concurrency above 1 evaluates (entry, rule) pairs on a bounded pool.
	Concurrency  int
	Limits       artifacts.Limits
	Decompiler   decompile.Decompiler
	MatchTimeout time.Duration

	Logger   *slog.Logger
	Progress func()
}

// Result is the aggregated outcome of a scan.
type Result struct {
	Matches        []types.MatchResult
	Diagnostics    []types.Diagnostic
	FilesScanned   int
	EntriesScanned int
	BytesScanned   int64
	Duration       time.Duration
	// PeakInFlight is the largest number of rule evaluations seen at once.
	PeakInFlight int
}

// Partial reports whether some files or entries could not be read, so the
// scan completed with gaps.
func (r Result) Partial() bool {
	for _, d := range r.Diagnostics {
		if d.Kind != types.DiagRuleCompile && d.Kind != types.DiagRuleEval {
			return true
		}
	}
	return false
}

// Scan walks cfg.Root and returns every accepted match. Per-entry failures
// are recorded as diagnostics; only root errors (ErrRoot) and context
// cancellation are returned.
func Scan(ctx context.Context, cfg Config) (Result, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	started := time.Now()
	var res Result

	info, err := os.Stat(cfg.Root)
	if err != nil {
		return res, fmt.Errorf("%w: %v", ErrRoot, err)
	}
	var ign ignore.Matcher
	if info.IsDir() {
		ign, err = ignore.Load(filepath.Join(cfg.Root, ignore.FileName))
		if err != nil {
			log.Warn("ignore file unreadable", "error", err)
		}
	}

	session := types.NewSession()
	eng, errs := detectors.Compile(cfg.Rules, cfg.MatchTimeout)
	for _, err := range errs {
		d := ruleDiagnostic(types.DiagRuleCompile, "", err)
		session.Report(d)
		log.Warn("rule skipped", "rule", d.Path, "error", err)
	}

	var workers *pool.Pool
	if cfg.Concurrency > 1 {
		workers = pool.New(cfg.Concurrency)
	}
	evaluate := func(i int, in detectors.Input) {
		ms, err := eng.RunRule(i, in)
		if err != nil {
			session.Report(ruleDiagnostic(types.DiagRuleEval, in.Path, err))
			log.Warn("rule failed", "path", in.Path, "error", err)
			return
		}
		session.Append(ms...)
	}

	var admitErr error
	visit := func(te artifacts.TextEntry) {
		res.EntriesScanned++
		res.BytesScanned += int64(len(te.Raw))
		in := detectors.Input{Path: te.Path, Text: te.Text, Raw: te.Raw, FromClass: te.FromClass}
		for i := 0; i < eng.Len(); i++ {
			if workers == nil {
				evaluate(i, in)
				continue
			}
			if err := workers.Go(ctx, func() { evaluate(i, in) }); err != nil {
				admitErr = err
				return
			}
		}
	}

	disp := &artifacts.Dispatcher{
		Limits:     cfg.Limits,
		Decompiler: cfg.Decompiler,
		Report:     session.Report,
		Logger:     log,
	}
	walkErr := Walk(ctx, cfg, ign, session.Report, func(rel string, data []byte) {
		res.FilesScanned++
		if cfg.Progress != nil {
			cfg.Progress()
		}
		log.Debug("scanning", "path", rel, "bytes", len(data))
		disp.Dispatch(ctx, artifacts.Entry{Path: rel, Data: data}, visit)
	})

	if workers != nil {
		workers.Wait()
		res.PeakInFlight = workers.Peak()
	} else if res.EntriesScanned > 0 && eng.Len() > 0 {
		res.PeakInFlight = 1
	}
	res.Matches = session.Matches()
	res.Diagnostics = session.Diagnostics()
	res.Duration = time.Since(started)

	if walkErr != nil {
		return res, walkErr
	}
	if admitErr != nil {
		return res, admitErr
	}
	log.Info("scan finished",
		"files", res.FilesScanned,
		"entries", res.EntriesScanned,
		"matches", len(res.Matches),
		"skipped", len(res.Diagnostics),
		"duration", res.Duration)
	return res, nil
}

func ruleDiagnostic(kind types.DiagnosticKind, path string, err error) types.Diagnostic {
	var re *detectors.RuleError
	if path == "" && errors.As(err, &re) {
		path = re.RuleID
	}
	return types.Diagnostic{Path: path, Kind: kind, Err: err.Error()}
}
