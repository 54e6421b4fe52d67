package sensigrep

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/sensigrep/sensigrep/internal/audit"
	"github.com/spf13/cobra"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded scans (see scan --audit)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			abs, err := filepath.Abs(flagPath)
			if err != nil {
				return err
			}
			records, err := audit.NewAuditLog(abs).LoadHistory()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, r := range records {
				if flagHistoryLimit > 0 && i >= flagHistoryLimit {
					break
				}
				partial := ""
				if r.Partial {
					partial = " partial"
				}
				fmt.Fprintf(out, "%s  %s  matches=%d new=%d files=%d skipped=%d%s\n",
					r.ScanID, humanize.Time(r.Timestamp), r.TotalMatches, r.NewMatches, r.FilesScanned, r.Skipped, partial)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "scanned file or directory")
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 10, "records to show (0 = all)")
	rootCmd.AddCommand(cmd)
}
