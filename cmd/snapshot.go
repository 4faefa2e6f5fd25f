package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/indicesp/indicesp/internal/utils"
	"github.com/indicesp/indicesp/pkg/wayback"
)

// snapshotCmd represents the snapshot command
var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Look up and inspect Wayback Machine snapshots of supermarket pages",
}

var snapshotFindCmd = &cobra.Command{
	Use:   "find <page-url>",
	Short: "Find the snapshot of a page taken on the last Saturday of a month",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		monthStr, _ := cmd.Flags().GetString("month")
		asJSON, _ := cmd.Flags().GetBool("json")

		year, month := time.Now().Year(), time.Now().Month()
		if monthStr != "" {
			var err error
			if year, month, err = parseMonth(monthStr); err != nil {
				return err
			}
		}

		client, err := newWaybackClient(cmd)
		if err != nil {
			return err
		}
		res, err := client.FindLastSaturday(cmd.Context(), args[0], year, month)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), res)
		}
		printFindResult(cmd.OutOrStdout(), res)
		return nil
	},
}

var snapshotInspectCmd = &cobra.Command{
	Use:   "inspect <capture-url>",
	Short: "Download a snapshot and show its title, supermarket and prices",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		selector, _ := cmd.Flags().GetString("selector")
		maxPrices, _ := cmd.Flags().GetInt("max-prices")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, err := newWaybackClient(cmd)
		if err != nil {
			return err
		}
		ins, err := client.Inspect(cmd.Context(), args[0], wayback.InspectOptions{Selector: selector, MaxPrices: maxPrices})
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd.OutOrStdout(), ins)
		}
		printInspection(cmd.OutOrStdout(), ins)
		return nil
	},
}

func newWaybackClient(cmd *cobra.Command) (*wayback.Client, error) {
	proxy, _ := cmd.Flags().GetString("proxy")
	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}
	return wayback.New(wayback.Options{
		Endpoint: viper.GetString("wayback.endpoint"),
		RetryMax: viper.GetInt("wayback.retries"),
		Timeout:  viper.GetDuration("wayback.timeout"),
		Proxy:    proxy,
		Catalog:  cat,
		Log:      utils.Log,
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printFindResult(w io.Writer, res *wayback.LastSaturdayResult) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, "Target\t%s\n", res.Target)
	if res.Capture == nil {
		fmt.Fprintln(tw, "Capture\tnone archived")
		return
	}
	fmt.Fprintf(tw, "Capture\t%s\n", res.Capture.URL)
	fmt.Fprintf(tw, "Captured on\t%s\n", res.Capture.Date)
	if res.Match {
		fmt.Fprintln(tw, "Usable\tyes")
	} else {
		fmt.Fprintln(tw, "Usable\tno, closest capture is from another day")
	}
}

func printInspection(w io.Writer, ins *wayback.Inspection) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	defer tw.Flush()
	fmt.Fprintf(tw, "Capture\t%s\n", ins.CaptureURL)
	fmt.Fprintf(tw, "Original\t%s\n", ins.OriginalURL)
	fmt.Fprintf(tw, "Date\t%s (%s)\n", ins.Date, ins.Date.Weekday())
	fmt.Fprintf(tw, "Last Saturday\t%t\n", ins.LastSaturday)
	fmt.Fprintf(tw, "Status\t%d\n", ins.StatusCode)
	if ins.Title != "" {
		fmt.Fprintf(tw, "Title\t%s\n", ins.Title)
	}
	supermarket := ins.Supermarket
	if supermarket == "" {
		supermarket = "unknown"
	}
	fmt.Fprintf(tw, "Supermarket\t%s (%s)\n", supermarket, ins.Domain)
	if ins.SelectorText != "" {
		fmt.Fprintf(tw, "Selector\t%s\n", ins.SelectorText)
	}
	if len(ins.Prices) > 0 {
		fmt.Fprintf(tw, "Prices\t%s\n", strings.Join(ins.Prices, ", "))
	}
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotFindCmd)
	snapshotCmd.AddCommand(snapshotInspectCmd)
	snapshotCmd.PersistentFlags().Bool("json", false, "Print JSON instead of a table")

	snapshotFindCmd.Flags().StringP("month", "m", "", "Month to look at, as YYYY-MM (default: current month)")

	snapshotInspectCmd.Flags().StringP("selector", "s", "", "CSS selector of the price element")
	snapshotInspectCmd.Flags().Int("max-prices", 5, "Maximum number of prices to list")
}
