package sensigrep

import (
	"fmt"

	"github.com/sensigrep/sensigrep/internal/engine"
	"github.com/sensigrep/sensigrep/internal/logging"
	"github.com/sensigrep/sensigrep/internal/report"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update",
		Short: "Update baseline from current scan",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New(cmd.ErrOrStderr(), flagVerbose)
			s, err := resolve(cmd, log)
			if err != nil {
				return err
			}
			res, err := engine.Scan(cmd.Context(), s.engine)
			if err != nil {
				return fmt.Errorf("scan error: %w", err)
			}
			if err := report.SaveBaseline(flagBaseline, res.Matches); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d matches in %s\n", len(res.Matches), flagBaseline)
			return nil
		},
	}
	addScanFlags(update.Flags())

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
