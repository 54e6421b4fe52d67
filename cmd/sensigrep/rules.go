package sensigrep

import (
	"encoding/json"

	"github.com/sensigrep/sensigrep/internal/logging"
	"github.com/sensigrep/sensigrep/internal/report"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the effective rule set",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New(cmd.ErrOrStderr(), flagVerbose)
			s, err := resolve(cmd, log)
			if err != nil {
				return err
			}
			if flagJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(s.engine.Rules)
			}
			return report.PrintRules(cmd.OutOrStdout(), s.engine.Rules)
		},
	}
	addScanFlags(cmd.Flags())
	rootCmd.AddCommand(cmd)
}
