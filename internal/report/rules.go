package report

import (
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sensigrep/sensigrep/internal/rules"
)

// PrintRules lists rules in evaluation order.
func PrintRules(w io.Writer, rs []rules.PatternRule) error {
	table := tablewriter.NewWriter(w)
	table.Header("ID", "Group", "Validator", "Enabled")
	rows := make([][]string, 0, len(rs))
	for _, r := range rs {
		v := string(r.Validator)
		if v == "" {
			v = "-"
		}
		g := r.Group
		if g == "" {
			g = "-"
		}
		rows = append(rows, []string{r.ID, g, v, strconv.FormatBool(r.Enabled)})
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}
