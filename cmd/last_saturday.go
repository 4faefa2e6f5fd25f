package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/indicesp/indicesp/pkg/archival"
)

var lastSaturdayCmd = &cobra.Command{
	Use:   "last-saturday [YYYY-MM]",
	Short: "Print the last Saturday of a month, the only day snapshots are accepted for",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		page, _ := cmd.Flags().GetString("page")

		year, month := time.Now().Year(), time.Now().Month()
		if len(args) == 1 {
			var err error
			if year, month, err = parseMonth(args[0]); err != nil {
				return err
			}
		}
		return printLastSaturdays(cmd.OutOrStdout(), year, month, count, page)
	},
}

// parseMonth reads a YYYY-MM month.
func parseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("month must look like 2024-12: %q", s)
	}
	return t.Year(), t.Month(), nil
}

// printLastSaturdays lists count months starting at year/month. With a page
// URL, each line also carries the snapshot URL to submit.
func printLastSaturdays(w io.Writer, year int, month time.Month, count int, page string) error {
	if count < 1 {
		return fmt.Errorf("count must be at least 1")
	}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < count; i++ {
		m := first.AddDate(0, i, 0)
		d := archival.LastSaturday(m.Year(), m.Month())
		if page != "" {
			fmt.Fprintf(w, "%s\t%s\n", d, archival.CaptureURL(d, page))
		} else {
			fmt.Fprintln(w, d)
		}
	}
	return nil
}

func init() {
	rootCmd.AddCommand(lastSaturdayCmd)
	lastSaturdayCmd.Flags().IntP("count", "n", 1, "Number of consecutive months to print")
	lastSaturdayCmd.Flags().StringP("page", "p", "", "Supermarket page URL to build snapshot links for")
}
