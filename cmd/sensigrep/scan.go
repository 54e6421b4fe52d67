package sensigrep

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/sensigrep/sensigrep/internal/audit"
	"github.com/sensigrep/sensigrep/internal/engine"
	"github.com/sensigrep/sensigrep/internal/logging"
	"github.com/sensigrep/sensigrep/internal/report"
	"github.com/sensigrep/sensigrep/internal/types"
	"github.com/sensigrep/sensigrep/internal/update"
	"github.com/spf13/cobra"
)

var (
	flagFailOnMatch bool
	flagAudit       bool
	flagReveal      bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan files, directories and archives for sensitive data",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	addScanFlags(cmd.Flags())
	cmd.Flags().BoolVar(&flagFailOnMatch, "fail-on-match", false, "exit 1 when new matches are found")
	cmd.Flags().BoolVar(&flagAudit, "audit", false, "append a record of this scan to the audit history")
	cmd.Flags().BoolVar(&flagReveal, "reveal", false, "print match values unmasked")
}

func runScan(cmd *cobra.Command, _ []string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	log := logging.New(stderr, flagVerbose)
	s, err := resolve(cmd, log)
	if err != nil {
		return err
	}
	cfg := s.engine

	if !flagJSON {
		if !flagNoUpdateCheck {
			if latest, newer, _ := (update.Checker{}).Check(cmd.Context(), version, false); newer {
				fmt.Fprintf(stderr, "(new version available: v%s)\n", latest)
			}
		}
		if report.ColorEnabled(stderr) && !flagVerbose {
			scanned := 0
			cfg.Progress = func() {
				scanned++
				if scanned%10 == 0 {
					fmt.Fprintf(stderr, "\rScanned %d files", scanned)
				}
			}
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	res, err := engine.Scan(ctx, cfg)
	if cfg.Progress != nil {
		fmt.Fprint(stderr, "\r")
	}
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	fresh, baselined := applyBaseline(res.Matches, log)
	scanID := uuid.NewString()

	if flagJSON {
		err = report.WriteJSON(stdout, report.Document{
			ScanID:      scanID,
			Root:        cfg.Root,
			Partial:     res.Partial(),
			Matches:     report.Annotate(fresh),
			Diagnostics: res.Diagnostics,
			Stats: report.Stats{
				FilesScanned:   res.FilesScanned,
				EntriesScanned: res.EntriesScanned,
				BytesScanned:   res.BytesScanned,
				Baselined:      baselined,
				Duration:       res.Duration.String(),
			},
		})
	} else {
		if flagVerbose {
			report.PrintDiagnostics(stderr, res.Diagnostics)
		}
		err = report.PrintTable(stdout, fresh, report.PrintOptions{
			NoColor:        s.noColor || !report.ColorEnabled(stdout),
			Reveal:         flagReveal,
			Duration:       res.Duration,
			FilesScanned:   res.FilesScanned,
			EntriesScanned: res.EntriesScanned,
			BytesScanned:   res.BytesScanned,
			Diagnostics:    res.Diagnostics,
			Baselined:      baselined,
			Partial:        res.Partial(),
		})
	}
	if err != nil {
		return err
	}

	if pickBool(flagAudit, cmd.Flags().Changed("audit"), s.local.Audit, s.global.Audit, false) {
		rec := audit.CreateScanRecord(scanID, cfg.Root, res.Matches, fresh, res.Diagnostics,
			res.FilesScanned, res.EntriesScanned, res.Partial(), res.Duration, flagBaseline)
		if err := audit.NewAuditLog(cfg.Root).LogScan(rec); err != nil {
			log.Warn("audit record not written", "error", err)
		}
	}

	if flagFailOnMatch && len(fresh) > 0 {
		return &exitError{code: 1}
	}
	return nil
}

// applyBaseline drops matches recorded in the baseline file. A missing file
// filters nothing.
func applyBaseline(ms []types.MatchResult, log *slog.Logger) ([]types.MatchResult, int) {
	if flagBaseline == "" {
		return ms, 0
	}
	base, err := report.LoadBaseline(flagBaseline)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Warn("baseline ignored", "path", flagBaseline, "error", err)
		}
		return ms, 0
	}
	fresh := report.FilterNew(ms, base)
	return fresh, len(ms) - len(fresh)
}
