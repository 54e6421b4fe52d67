package sensigrep

import (
	"fmt"

	"github.com/sensigrep/sensigrep/internal/update"
	"github.com/spf13/cobra"
)

var flagCheck bool

func init() {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sensigrep %s\n", version)
			if !flagCheck {
				return nil
			}
			latest, newer, err := update.Checker{}.Check(cmd.Context(), version, flagNoUpdateCheck)
			if err != nil {
				return err
			}
			switch {
			case newer:
				fmt.Fprintf(out, "new version available: v%s\n", latest)
			case latest != "":
				fmt.Fprintln(out, "up to date")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&flagCheck, "check", false, "check for a newer release")
	rootCmd.AddCommand(cmd)
}
